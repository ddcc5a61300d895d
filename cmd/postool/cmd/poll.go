package cmd

import (
	"log"
	"time"

	"github.com/pefmotion/motoripc"
	"github.com/spf13/cobra"
)

func init() {
	pollCmd.Flags().DurationP(flagInterval, "i", 100*time.Millisecond, "time between position reads")
	rootCmd.AddCommand(pollCmd)
}

var pollCmd = &cobra.Command{
	Use:   "poll",
	Short: "poll the motor position until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		interval, err := cmd.Flags().GetDuration(flagInterval)
		if err != nil {
			return err
		}
		c, err := initClient(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		return c.Poll(ctx, interval, func(sample *motoripc.PositionSample) {
			log.Println(sample.ColorString())
		}, func(err error) {
			log.Println(err)
		})
	},
}
