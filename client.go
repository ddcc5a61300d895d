// Package motoripc implements the motor-control daemon's IPC protocol:
// fixed-format binary request/response frames over a Unix domain
// stream socket.
package motoripc

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Client drives request/response exchanges against the motor daemon.
// The protocol is strictly one request in flight at a time; Client is
// not safe for concurrent exchanges.
type Client struct {
	transport Transport
}

func New(ctx context.Context, transport Transport) (*Client, error) {
	if transport == nil {
		return nil, ErrNilTransport
	}
	if err := transport.Open(ctx); err != nil {
		return nil, err
	}
	return &Client{transport: transport}, nil
}

func (c *Client) Close() error {
	return c.transport.Close()
}

// ReadPosition performs one read-position exchange.
func (c *Client) ReadPosition(ctx context.Context) (*PositionSample, error) {
	// drop responses whose caller gave up before they landed
drain:
	for {
		select {
		case <-c.transport.Recv():
		default:
			break drain
		}
	}
	select {
	case c.transport.Send() <- NewReadPositionRequest():
	default:
		return nil, ErrRequestChannelFull
	}
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("timeout: %w", ctx.Err())
	case err := <-c.transport.Err():
		return nil, err
	case sample, ok := <-c.transport.Recv():
		if !ok {
			return nil, ErrTransportClosed
		}
		return sample, nil
	}
}

// Poll reads the position every interval until ctx is cancelled or the
// transport fails. Request scoped errors go to onError and the loop
// keeps running; unrecoverable errors end the loop.
func (c *Client) Poll(ctx context.Context, interval time.Duration, onSample func(*PositionSample), onError func(error)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			sample, err := c.ReadPosition(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return nil
				}
				if !IsRecoverable(err) {
					return err
				}
				if onError != nil {
					onError(err)
				}
				continue
			}
			if onSample != nil {
				onSample(sample)
			}
		}
	}
}
