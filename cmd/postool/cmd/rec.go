package cmd

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/pefmotion/motoripc"
	"github.com/pefmotion/motoripc/cmd/postool/pkg/bar"
	"github.com/spf13/cobra"
)

const flagOutput = "output"

func init() {
	recCmd.Flags().DurationP(flagInterval, "i", 100*time.Millisecond, "time between position reads")
	recCmd.Flags().StringP(flagOutput, "o", "positions.csv", "output csv file")
	rootCmd.AddCommand(recCmd)
}

var recCmd = &cobra.Command{
	Use:   "rec <samples>",
	Short: "record position samples to a csv file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		count, err := strconv.Atoi(args[0])
		if err != nil || count <= 0 {
			return fmt.Errorf("invalid sample count %q", args[0])
		}
		interval, err := cmd.Flags().GetDuration(flagInterval)
		if err != nil {
			return err
		}
		output, err := cmd.Flags().GetString(flagOutput)
		if err != nil {
			return err
		}

		if _, err := os.Stat(output); err == nil {
			if !yesNo(fmt.Sprintf("overwrite %s?", output)) {
				return errors.New("aborted")
			}
		}
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
		w := csv.NewWriter(f)
		defer w.Flush()
		if err := w.Write([]string{"position", "seconds", "nanoseconds"}); err != nil {
			return err
		}

		c, err := initClient(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		pb := bar.New(count, fmt.Sprintf("recording %d samples", count))
		recorded := 0
		rctx, cancel := context.WithCancel(ctx)
		defer cancel()
		err = c.Poll(rctx, interval, func(sample *motoripc.PositionSample) {
			if err := w.Write([]string{
				strconv.FormatFloat(sample.Position, 'f', -1, 64),
				strconv.FormatInt(sample.Seconds, 10),
				strconv.FormatInt(sample.Nanos, 10),
			}); err != nil {
				log.Println(err)
			}
			pb.Add(1)
			recorded++
			if recorded >= count {
				cancel()
			}
		}, func(err error) {
			log.Println(err)
		})
		fmt.Println()
		if err != nil {
			return err
		}
		log.Printf("wrote %d samples to %s", recorded, output)
		return nil
	},
}

func yesNo(label string) bool {
	prompt := promptui.Select{
		Label:    label + " [Yes/No]",
		HideHelp: true,
		Items:    []string{"Yes", "No"},
	}
	_, result, err := prompt.Run()
	if err != nil {
		log.Fatalf("prompt failed: %v", err)
	}
	return result == "Yes"
}
