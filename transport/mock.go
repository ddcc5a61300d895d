package transport

import (
	"context"
	"fmt"
	"time"

	"github.com/pefmotion/motoripc"
)

func init() {
	if err := motoripc.RegisterTransport(&motoripc.TransportInfo{
		Name:        "mock",
		Description: "in-memory daemon stand-in",
		New:         NewMock,
	}); err != nil {
		panic(err)
	}
}

// Mock answers read-position requests without a daemon. Tests swap in
// their own Source; the default one sweeps the position over time.
type Mock struct {
	BaseTransport
	Source func() *motoripc.PositionSample
}

func NewMock(cfg *motoripc.TransportConfig) (motoripc.Transport, error) {
	start := time.Now()
	return &Mock{
		BaseTransport: NewBaseTransport("mock", cfg),
		Source: func() *motoripc.PositionSample {
			elapsed := time.Since(start)
			return &motoripc.PositionSample{
				Position: elapsed.Seconds(),
				Seconds:  int64(elapsed / time.Second),
				Nanos:    int64(elapsed % time.Second),
			}
		},
	}, nil
}

func (m *Mock) Open(ctx context.Context) error {
	go m.sendManager(ctx)
	return nil
}

func (m *Mock) Close() error {
	m.BaseTransport.Close()
	return nil
}

func (m *Mock) sendManager(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.closeChan:
			return
		case req := <-m.send:
			if req.Opcode != motoripc.OpReadPosition {
				m.SetError(&motoripc.ProtocolError{
					Op:     "mock",
					Reason: fmt.Sprintf("unsupported opcode 0x%02X", req.Opcode),
				})
				continue
			}
			// round-trips through the wire codec on purpose
			sample, err := motoripc.DecodePosition(req.Opcode, motoripc.EncodePosition(m.Source()))
			if err != nil {
				m.SetError(err)
				continue
			}
			select {
			case m.recv <- sample:
			default:
				m.SetError(motoripc.ErrResponseChannelFull)
			}
		}
	}
}
