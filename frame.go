package motoripc

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/fatih/color"
)

// Opcodes understood by the motor daemon.
const (
	OpReadPosition byte = 0x04
)

// PositionFrameSize is the exact size of a read-position response on the wire.
const PositionFrameSize = 26

// Request is one command frame. On the wire the first byte carries the
// number of payload bytes that follow, the second the opcode, and the
// rest is opcode specific data.
type Request struct {
	Opcode byte
	Data   []byte
}

func NewReadPositionRequest() *Request {
	return &Request{Opcode: OpReadPosition}
}

func (r *Request) Length() int {
	return 1 + len(r.Data)
}

func (r *Request) MarshalBinary() []byte {
	out := make([]byte, 0, 2+len(r.Data))
	out = append(out, byte(r.Length()), r.Opcode)
	return append(out, r.Data...)
}

func (r *Request) String() string {
	var out strings.Builder
	out.WriteString("<o> || ")
	out.WriteString(fmt.Sprintf("0x%02X", r.Opcode))
	out.WriteString(" || ")
	out.WriteString(fmt.Sprintf("%d", r.Length()))
	if len(r.Data) > 0 {
		out.WriteString(" || ")
		for i, b := range r.Data {
			out.WriteString(fmt.Sprintf("%02X", b))
			if i != len(r.Data)-1 {
				out.WriteString(" ")
			}
		}
	}
	return out.String()
}

// PositionSample is one decoded read-position response. Seconds and
// Nanos carry the daemon's CLOCK_MONOTONIC reading at sample time.
type PositionSample struct {
	Position float64
	Seconds  int64
	Nanos    int64
}

// Timestamp returns the sample time in nanoseconds on the daemon's
// monotonic clock.
func (s *PositionSample) Timestamp() int64 {
	return s.Seconds*1_000_000_000 + s.Nanos
}

var (
	green  = color.New(color.FgGreen).SprintfFunc()
	yellow = color.New(color.FgHiYellow).SprintfFunc()
)

func (s *PositionSample) String() string {
	var out strings.Builder
	out.WriteString("<i> || ")
	out.WriteString(fmt.Sprintf("%14.6f", s.Position))
	out.WriteString(" || ")
	out.WriteString(fmt.Sprintf("%d.%09d", s.Seconds, s.Nanos))
	return out.String()
}

func (s *PositionSample) ColorString() string {
	var out strings.Builder
	out.WriteString("<i> || ")
	out.WriteString(green("%14.6f", s.Position))
	out.WriteString(" || ")
	out.WriteString(yellow("%d.%09d", s.Seconds, s.Nanos))
	return out.String()
}

// DecodePosition parses a read-position response frame. The daemon runs
// on a little-endian board and writes native byte order. Both the
// length echo and the opcode echo must match the request that was sent.
func DecodePosition(opcode byte, buf []byte) (*PositionSample, error) {
	if len(buf) != PositionFrameSize {
		return nil, &ProtocolError{
			Op:     "decode",
			Reason: "truncated frame",
			Got:    len(buf),
			Want:   PositionFrameSize,
		}
	}
	if buf[0] != 0x01 {
		return nil, &ProtocolError{
			Op:     "decode",
			Reason: fmt.Sprintf("bad length echo 0x%02X", buf[0]),
		}
	}
	if buf[1] != opcode {
		return nil, &ProtocolError{
			Op:     "decode",
			Reason: fmt.Sprintf("opcode echo 0x%02X for request 0x%02X", buf[1], opcode),
		}
	}
	return &PositionSample{
		Position: math.Float64frombits(binary.LittleEndian.Uint64(buf[2:10])),
		Seconds:  int64(binary.LittleEndian.Uint64(buf[10:18])),
		Nanos:    int64(binary.LittleEndian.Uint64(buf[18:26])),
	}, nil
}

// EncodePosition builds the frame the daemon answers a read-position
// request with. Used by the mock transport and tests.
func EncodePosition(s *PositionSample) []byte {
	buf := make([]byte, PositionFrameSize)
	buf[0] = 0x01
	buf[1] = OpReadPosition
	binary.LittleEndian.PutUint64(buf[2:10], math.Float64bits(s.Position))
	binary.LittleEndian.PutUint64(buf[10:18], uint64(s.Seconds))
	binary.LittleEndian.PutUint64(buf[18:26], uint64(s.Nanos))
	return buf
}
