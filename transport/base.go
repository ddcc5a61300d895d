package transport

import (
	"log"
	"sync"

	"github.com/pefmotion/motoripc"
)

type BaseTransport struct {
	name      string
	cfg       *motoripc.TransportConfig
	send      chan *motoripc.Request
	recv      chan *motoripc.PositionSample
	err       chan error
	closeChan chan struct{}
	once      sync.Once
}

func NewBaseTransport(name string, cfg *motoripc.TransportConfig) BaseTransport {
	return BaseTransport{
		name:      name,
		cfg:       cfg,
		send:      make(chan *motoripc.Request, 10),
		recv:      make(chan *motoripc.PositionSample, 10),
		err:       make(chan error, 10),
		closeChan: make(chan struct{}),
	}
}

func (base *BaseTransport) Name() string {
	return base.name
}

func (base *BaseTransport) Send() chan<- *motoripc.Request {
	return base.send
}

func (base *BaseTransport) Recv() <-chan *motoripc.PositionSample {
	return base.recv
}

func (base *BaseTransport) Err() <-chan error {
	return base.err
}

func (base *BaseTransport) Close() {
	base.once.Do(func() {
		close(base.closeChan)
	})
}

func (base *BaseTransport) SetError(err error) {
	select {
	case base.err <- err:
	default:
		log.Println("transport error channel full")
	}
}
