package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"os"
	"time"

	"github.com/avast/retry-go"
	"github.com/pefmotion/motoripc"
	"golang.org/x/sync/errgroup"
)

const waitPollInterval = 100 * time.Millisecond

func init() {
	if err := motoripc.RegisterTransport(&motoripc.TransportInfo{
		Name:        "unix",
		Description: "Unix domain socket to the motor daemon",
		New:         NewUnix,
	}); err != nil {
		panic(err)
	}
}

type Unix struct {
	BaseTransport
	conn net.Conn
}

func NewUnix(cfg *motoripc.TransportConfig) (motoripc.Transport, error) {
	if cfg.Path == "" {
		return nil, errors.New("socket path is empty")
	}
	return &Unix{
		BaseTransport: NewBaseTransport("unix", cfg),
	}, nil
}

func (tr *Unix) Open(ctx context.Context) error {
	if err := tr.waitForSocket(ctx); err != nil {
		return err
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", tr.cfg.Path)
	if err != nil {
		return &motoripc.ConnectError{Path: tr.cfg.Path, Err: err}
	}
	tr.conn = conn
	if tr.cfg.Debug {
		tr.cfg.OnMessage("connected to " + tr.cfg.Path)
	}
	go tr.run(ctx)
	return nil
}

func (tr *Unix) Close() error {
	tr.BaseTransport.Close()
	return nil
}

// waitForSocket polls for the daemon's backing file with exponential
// backoff until it exists or the wait budget runs out.
func (tr *Unix) waitForSocket(ctx context.Context) error {
	check := func() error {
		if _, err := os.Stat(tr.cfg.Path); err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("socket path %s not present", tr.cfg.Path)
			}
			return motoripc.Unrecoverable(err)
		}
		return nil
	}

	if tr.cfg.WaitTimeout <= 0 {
		if err := check(); err != nil {
			return &motoripc.ConnectError{Path: tr.cfg.Path, Err: err}
		}
		return nil
	}

	waitCtx, cancel := context.WithTimeout(ctx, tr.cfg.WaitTimeout)
	defer cancel()

	err := retry.Do(check,
		retry.Context(waitCtx),
		// the context deadline bounds the wait, Attempts(0) would mean
		// zero attempts here
		retry.Attempts(math.MaxUint32),
		retry.Delay(waitPollInterval),
		retry.MaxDelay(time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(motoripc.IsRecoverable),
		retry.OnRetry(func(n uint, err error) {
			if tr.cfg.Debug {
				tr.cfg.OnMessage(fmt.Sprintf("wait #%d: %v", n, err))
			}
		}),
		retry.LastErrorOnly(true),
	)
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || !motoripc.IsRecoverable(err) {
		return err
	}
	return &motoripc.TimeoutError{Op: "socket path", Timeout: tr.cfg.WaitTimeout}
}

func (tr *Unix) run(ctx context.Context) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return tr.exchangeManager(gctx)
	})
	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-tr.closeChan:
		}
		// unblocks any read in flight
		return tr.conn.Close()
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		if motoripc.IsRecoverable(err) {
			err = motoripc.Unrecoverable(err)
		}
		tr.SetError(err)
	}
}

func (tr *Unix) exchangeManager(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tr.closeChan:
			return nil
		case req := <-tr.send:
			sample, err := tr.exchange(req)
			if err != nil {
				if errors.Is(err, net.ErrClosed) {
					return nil
				}
				if !motoripc.IsRecoverable(err) {
					return err
				}
				tr.SetError(err)
				continue
			}
			select {
			case tr.recv <- sample:
			default:
				tr.SetError(motoripc.ErrResponseChannelFull)
			}
		}
	}
}

// exchange writes one request and assembles the full fixed-size
// response. A connection closed mid frame is unrecoverable since the
// stream can no longer be trusted to be frame aligned.
func (tr *Unix) exchange(req *motoripc.Request) (*motoripc.PositionSample, error) {
	if tr.cfg.ReadTimeout > 0 {
		if err := tr.conn.SetDeadline(time.Now().Add(tr.cfg.ReadTimeout)); err != nil {
			return nil, err
		}
	}
	if tr.cfg.Debug {
		tr.cfg.OnMessage("tx " + req.String())
	}
	if _, err := tr.conn.Write(req.MarshalBinary()); err != nil {
		return nil, fmt.Errorf("send: %w", err)
	}
	buf := make([]byte, motoripc.PositionFrameSize)
	n, err := io.ReadFull(tr.conn, buf)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, motoripc.Unrecoverable(&motoripc.ProtocolError{
				Op:     "recv",
				Reason: "connection closed mid frame",
				Got:    n,
				Want:   motoripc.PositionFrameSize,
			})
		}
		var nerr net.Error
		if errors.As(err, &nerr) && nerr.Timeout() {
			return nil, &motoripc.TimeoutError{Op: "response", Timeout: tr.cfg.ReadTimeout}
		}
		return nil, err
	}
	return motoripc.DecodePosition(req.Opcode, buf)
}
