package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/pefmotion/motoripc"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "postool",
	Short:        "motor daemon position diagnostics",
	Long:         `postool talks to the motor-control daemon over its IPC socket and decodes position frames for manual testing.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

const (
	flagSocket    = "socket"
	flagTransport = "transport"
	flagTimeout   = "timeout"
	flagInterval  = "interval"
	flagDebug     = "debug"
)

func init() {
	log.SetFlags(log.Lshortfile | log.LstdFlags)

	pf := rootCmd.PersistentFlags()
	pf.StringP(flagSocket, "s", defaultSocketPath(), "path to the daemon's unix socket")
	pf.StringP(flagTransport, "t", "unix", "what transport to use, * = pick interactively")
	pf.DurationP(flagTimeout, "T", 30*time.Second, "how long to wait for the socket to appear")
	pf.BoolP(flagDebug, "d", false, "debug mode")
}

func defaultSocketPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "sock_bf"
	}
	return filepath.Join(home, "pef_pr21", "sock_bf")
}

func initClient(ctx context.Context) (*motoripc.Client, error) {
	pf := rootCmd.PersistentFlags()
	socket, err := pf.GetString(flagSocket)
	if err != nil {
		return nil, err
	}
	transportName, err := pf.GetString(flagTransport)
	if err != nil {
		return nil, err
	}
	timeout, err := pf.GetDuration(flagTimeout)
	if err != nil {
		return nil, err
	}
	debug, err := pf.GetBool(flagDebug)
	if err != nil {
		return nil, err
	}

	if transportName == "*" {
		transportName, err = selectTransport()
		if err != nil {
			return nil, err
		}
	}

	transport, err := motoripc.NewTransport(transportName, &motoripc.TransportConfig{
		Path:        socket,
		WaitTimeout: timeout,
		ReadTimeout: 2 * time.Second,
		Debug:       debug,
		OnError: func(err error) {
			log.Println(err)
		},
	})
	if err != nil {
		return nil, err
	}
	return motoripc.New(ctx, transport)
}

func selectTransport() (string, error) {
	transports := motoripc.ListTransports()
	var items []string
	for _, transport := range transports {
		items = append(items, transport.String())
	}
	prompt := promptui.Select{
		Label:    "Transport",
		HideHelp: true,
		Items:    items,
	}
	i, _, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}
	return transports[i].Name, nil
}
