package cmd

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jroimartin/gocui"
	"github.com/pefmotion/motoripc"
	"github.com/pefmotion/motoripc/cmd/postool/pkg/ui"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(monitorCmd)
}

var intervalInput = &ui.Input{
	Name:      "interval",
	Title:     "Interval",
	X:         0,
	Y:         9,
	W:         25,
	MaxLength: 20,
}

var sampleCount int64

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "live view of the motor position",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c, err := initClient(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		g, err := gocui.NewGui(gocui.OutputNormal)
		if err != nil {
			return err
		}
		defer g.Close()
		g.Cursor = true
		g.SetManagerFunc(monitorLayout)

		intervalChan := make(chan time.Duration, 1)
		if err := monitorKeybindings(g, intervalChan); err != nil {
			return err
		}

		mctx, cancel := context.WithCancel(ctx)
		defer cancel()
		go monitorLoop(mctx, c, g, intervalChan)

		if err := g.MainLoop(); err != nil && err != gocui.ErrQuit {
			return err
		}
		return nil
	},
}

func monitorLayout(g *gocui.Gui) error {
	if v, err := g.SetView("position", 0, 0, 42, 4); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Position"
	}
	if v, err := g.SetView("stats", 0, 5, 42, 8); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Stats"
	}
	if err := intervalInput.Layout(g); err != nil {
		return err
	}
	if _, err := g.SetCurrentView("interval"); err != nil {
		return err
	}
	return nil
}

func monitorKeybindings(g *gocui.Gui, intervalChan chan<- time.Duration) error {
	quit := func(g *gocui.Gui, v *gocui.View) error {
		return gocui.ErrQuit
	}
	if err := g.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, quit); err != nil {
		return err
	}
	// new poll interval applies on enter, e.g. 250ms or 1s
	return g.SetKeybinding("interval", gocui.KeyEnter, gocui.ModNone, func(g *gocui.Gui, v *gocui.View) error {
		d, err := time.ParseDuration(strings.TrimSpace(v.Buffer()))
		if err != nil || d <= 0 {
			return nil
		}
		select {
		case intervalChan <- d:
		default:
		}
		return nil
	})
}

func monitorLoop(ctx context.Context, c *motoripc.Client, g *gocui.Gui, intervalChan <-chan time.Duration) {
	interval := 100 * time.Millisecond
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	var last *motoripc.PositionSample
	for {
		select {
		case <-ctx.Done():
			return
		case d := <-intervalChan:
			interval = d
			ticker.Reset(d)
		case <-ticker.C:
			sample, err := c.ReadPosition(ctx)
			if err != nil {
				if !motoripc.IsRecoverable(err) {
					g.Update(func(g *gocui.Gui) error {
						return gocui.ErrQuit
					})
					return
				}
				continue
			}
			count := atomic.AddInt64(&sampleCount, 1)
			prev := last
			last = sample
			g.Update(func(g *gocui.Gui) error {
				pv, err := g.View("position")
				if err != nil {
					return err
				}
				pv.Clear()
				fmt.Fprintf(pv, "\n    %14.6f\n", sample.Position)

				sv, err := g.View("stats")
				if err != nil {
					return err
				}
				sv.Clear()
				var delta float64
				if prev != nil {
					delta = sample.Position - prev.Position
				}
				fmt.Fprintf(sv, "samples %d || delta %+.6f || every %s\n", count, delta, interval)
				fmt.Fprintf(sv, "daemon clock %d.%09d\n", sample.Seconds, sample.Nanos)
				return nil
			})
		}
	}
}
