package motoripc

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"
)

type Transport interface {
	Name() string
	Open(context.Context) error
	Close() error
	Send() chan<- *Request
	Recv() <-chan *PositionSample
	Err() <-chan error
}

type TransportInfo struct {
	Name        string
	Description string
	New         func(*TransportConfig) (Transport, error)
}

func (t *TransportInfo) String() string {
	return fmt.Sprintf("%s | %s", t.Name, t.Description)
}

type TransportConfig struct {
	Path        string        // filesystem path of the daemon's socket
	WaitTimeout time.Duration // how long to wait for the path to appear, <= 0 means don't wait
	ReadTimeout time.Duration // per exchange response deadline, <= 0 means none
	Debug       bool
	OnMessage   func(string)
	OnError     func(error)
}

var transportMap = make(map[string]*TransportInfo)

func NewTransport(transportName string, cfg *TransportConfig) (Transport, error) {
	if cfg.OnMessage == nil {
		cfg.OnMessage = func(msg string) {
			_, file, no, ok := runtime.Caller(1)
			if ok {
				fmt.Printf("%s#%d %v\n", filepath.Base(file), no, msg)
			} else {
				log.Println(msg)
			}
		}
	}
	if cfg.OnError == nil {
		cfg.OnError = func(err error) {
			log.Println(err)
		}
	}
	if transport, found := transportMap[transportName]; found {
		return transport.New(cfg)
	}
	return nil, fmt.Errorf("unknown transport %q", transportName)
}

func RegisterTransport(transport *TransportInfo) error {
	if _, found := transportMap[transport.Name]; !found {
		transportMap[transport.Name] = transport
		return nil
	}
	return fmt.Errorf("transport %s already registered", transport.Name)
}

func ListTransportNames() []string {
	var out []string
	for name := range transportMap {
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i]) < strings.ToLower(out[j]) })
	return out
}

func ListTransports() []TransportInfo {
	var out []TransportInfo
	for _, transport := range transportMap {
		out = append(out, *transport)
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
	return out
}
