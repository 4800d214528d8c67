package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"zombie-scanner/internal/scanner"
)

func newPointsCommand(opts *rootOptions) *cobra.Command {
	var asJSON bool

	command := &cobra.Command{
		Use:   "points <address>",
		Short: "Print accrued points and tier for a wallet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), cfg, log, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.points.Points(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("%s (%w)", scanner.UserMessage(err), err)
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}

			fmt.Printf("Address:        %s\n", res.Address)
			fmt.Printf("Assets:         %d\n", res.AssetCount)
			fmt.Printf("Points per day: %d\n", res.PointsPerDay)
			fmt.Printf("Days active:    %.2f\n", res.DaysActive)
			fmt.Printf("Total points:   %d\n", res.TotalPoints)
			fmt.Printf("Tier:           %s\n", res.Tier)
			if res.NextTier != nil {
				fmt.Printf("Next tier:      %s (%d to go)\n", *res.NextTier, res.PointsToNextTier)
			}
			return nil
		},
	}
	command.Flags().BoolVarP(&asJSON, "json", "", false, "Print the result as JSON")
	return command
}
