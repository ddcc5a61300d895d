package motoripc

import (
	"bytes"
	"errors"
	"testing"
)

func TestRequestMarshalBinary(t *testing.T) {
	tests := []struct {
		name string
		req  *Request
		want []byte
	}{
		{
			name: "read position",
			req:  NewReadPositionRequest(),
			want: []byte{0x01, 0x04},
		},
		{
			name: "opcode with payload",
			req:  &Request{Opcode: 0x07, Data: []byte{0xAA, 0xBB}},
			want: []byte{0x03, 0x07, 0xAA, 0xBB},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.req.MarshalBinary(); !bytes.Equal(got, tt.want) {
				t.Errorf("MarshalBinary() = % X, want % X", got, tt.want)
			}
		})
	}
}

func TestDecodePosition(t *testing.T) {
	valid := EncodePosition(&PositionSample{Position: 1.5, Seconds: 100, Nanos: 250})

	badLength := EncodePosition(&PositionSample{})
	badLength[0] = 0x02

	badOpcode := EncodePosition(&PositionSample{})
	badOpcode[1] = 0x05

	tests := []struct {
		name     string
		buf      []byte
		wantErr  bool
		wantPos  float64
		wantTime int64
	}{
		{
			name:     "position and timestamp",
			buf:      valid,
			wantPos:  1.5,
			wantTime: 100_000_000_250,
		},
		{
			name:    "short frame",
			buf:     valid[:10],
			wantErr: true,
		},
		{
			name:    "empty frame",
			buf:     nil,
			wantErr: true,
		},
		{
			name:    "bad length echo",
			buf:     badLength,
			wantErr: true,
		},
		{
			name:    "bad opcode echo",
			buf:     badOpcode,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sample, err := DecodePosition(OpReadPosition, tt.buf)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodePosition() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var perr *ProtocolError
				if !errors.As(err, &perr) {
					t.Errorf("DecodePosition() error = %T, want *ProtocolError", err)
				}
				return
			}
			if sample.Position != tt.wantPos {
				t.Errorf("Position = %v, want %v", sample.Position, tt.wantPos)
			}
			if sample.Timestamp() != tt.wantTime {
				t.Errorf("Timestamp() = %v, want %v", sample.Timestamp(), tt.wantTime)
			}
		})
	}
}

func TestPositionRoundTrip(t *testing.T) {
	tests := []*PositionSample{
		{},
		{Position: 1.5, Seconds: 100, Nanos: 250},
		{Position: -123.456789, Seconds: 1699999999, Nanos: 999999999},
		{Position: 0.1 + 0.2, Seconds: -5, Nanos: 42},
	}
	for _, want := range tests {
		got, err := DecodePosition(OpReadPosition, EncodePosition(want))
		if err != nil {
			t.Fatalf("DecodePosition() error = %v", err)
		}
		if *got != *want {
			t.Errorf("round trip = %+v, want %+v", got, want)
		}
	}
}

func TestTimestampArithmetic(t *testing.T) {
	s := &PositionSample{Seconds: 100, Nanos: 250}
	if got := s.Timestamp(); got != 100_000_000_250 {
		t.Errorf("Timestamp() = %d, want 100000000250", got)
	}
}
