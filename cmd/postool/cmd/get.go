package cmd

import (
	"context"
	"log"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(getCmd)
}

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "read the current motor position once",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c, err := initClient(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		rctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		sample, err := c.ReadPosition(rctx)
		if err != nil {
			return err
		}
		log.Println(sample.ColorString())
		return nil
	},
}
