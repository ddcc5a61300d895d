package motoripc_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pefmotion/motoripc"
	"github.com/pefmotion/motoripc/transport"
)

func newMockClient(t *testing.T, ctx context.Context, source func() *motoripc.PositionSample) *motoripc.Client {
	t.Helper()
	tr, err := motoripc.NewTransport("mock", &motoripc.TransportConfig{})
	if err != nil {
		t.Fatalf("NewTransport() error = %v", err)
	}
	if source != nil {
		tr.(*transport.Mock).Source = source
	}
	c, err := motoripc.New(ctx, tr)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestClientReadPosition(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := newMockClient(t, ctx, func() *motoripc.PositionSample {
		return &motoripc.PositionSample{Position: 1.5, Seconds: 100, Nanos: 250}
	})

	rctx, rcancel := context.WithTimeout(ctx, time.Second)
	defer rcancel()
	sample, err := c.ReadPosition(rctx)
	if err != nil {
		t.Fatalf("ReadPosition() error = %v", err)
	}
	if sample.Position != 1.5 {
		t.Errorf("Position = %v, want 1.5", sample.Position)
	}
	if sample.Timestamp() != 100_000_000_250 {
		t.Errorf("Timestamp() = %d, want 100000000250", sample.Timestamp())
	}
}

func TestClientReadPositionDropsStale(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls int32
	c := newMockClient(t, ctx, func() *motoripc.PositionSample {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			// lands after the first caller gave up
			time.Sleep(100 * time.Millisecond)
		}
		return &motoripc.PositionSample{Position: float64(n)}
	})

	rctx, rcancel := context.WithTimeout(ctx, 10*time.Millisecond)
	_, err := c.ReadPosition(rctx)
	rcancel()
	if err == nil {
		t.Fatal("expected the first read to time out")
	}

	// let the late response land in the receive buffer
	time.Sleep(150 * time.Millisecond)

	rctx, rcancel = context.WithTimeout(ctx, time.Second)
	sample, err := c.ReadPosition(rctx)
	rcancel()
	if err != nil {
		t.Fatalf("ReadPosition() error = %v", err)
	}
	if sample.Position != 2 {
		t.Errorf("Position = %v, want 2, got the stale response", sample.Position)
	}
}

func TestClientNilTransport(t *testing.T) {
	if _, err := motoripc.New(context.Background(), nil); err != motoripc.ErrNilTransport {
		t.Fatalf("New(nil) error = %v, want ErrNilTransport", err)
	}
}

func TestClientPollStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := newMockClient(t, ctx, nil)

	var count int32
	done := make(chan error, 1)
	go func() {
		done <- c.Poll(ctx, time.Millisecond, func(sample *motoripc.PositionSample) {
			if atomic.AddInt32(&count, 1) >= 5 {
				cancel()
			}
		}, nil)
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Poll() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Poll() did not stop after cancel")
	}
	if atomic.LoadInt32(&count) < 5 {
		t.Errorf("got %d samples, want at least 5", count)
	}
}

func TestClientPollDeliversSamples(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	want := &motoripc.PositionSample{Position: -42.25, Seconds: 7, Nanos: 123}
	c := newMockClient(t, ctx, func() *motoripc.PositionSample { return want })

	got := make(chan *motoripc.PositionSample, 1)
	go c.Poll(ctx, time.Millisecond, func(sample *motoripc.PositionSample) {
		select {
		case got <- sample:
		default:
		}
	}, nil)

	select {
	case sample := <-got:
		if *sample != *want {
			t.Errorf("sample = %+v, want %+v", sample, want)
		}
	case <-time.After(time.Second):
		t.Fatal("no sample delivered")
	}
}
