package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/pefmotion/motoripc/cmd/postool/cmd"
	// Init transports
	_ "github.com/pefmotion/motoripc/transport"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel() // Setup interrupt handler for ctrl-c
	quitChan := make(chan os.Signal, 1)
	signal.Notify(quitChan, os.Interrupt)
	go func() {
		s := <-quitChan
		log.Printf("got %v, exiting", s)
		cancel()
		// Failsafe if there are deadlocks
		<-time.After(10 * time.Second)
		log.Fatal("took too long to shutdown, forcefully exiting")
	}()
	cmd.Execute(ctx)
}
