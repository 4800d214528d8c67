package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"zombie-scanner/internal/domain"
	"zombie-scanner/internal/scanner"
	"zombie-scanner/internal/scoring"
)

func newScanCommand(opts *rootOptions) *cobra.Command {
	var refresh bool
	var asJSON bool

	command := &cobra.Command{
		Use:   "scan <address>",
		Short: "Scan one wallet and print its zombie assets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			cfg.Storage.UseMemory = true

			a, err := newApp(cmd.Context(), cfg, log, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			scan := a.scanner.Scan
			if refresh {
				scan = a.scanner.Refresh
			}
			assets, err := scan(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("%s (%w)", scanner.UserMessage(err), err)
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(assets)
			}
			return printAssets(os.Stdout, assets)
		},
	}
	command.Flags().BoolVarP(&refresh, "refresh", "r", false, "Bypass the scan cache")
	command.Flags().BoolVarP(&asJSON, "json", "", false, "Print assets as JSON")
	return command
}

func printAssets(out io.Writer, assets []domain.Asset) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tMINT\tNAME\tBALANCE\tUSD\tDORMANT DAYS\tPOINTS/DAY")
	for _, a := range assets {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			a.Category, a.Mint, optString(a.Name), optDecimal(a.Balance), optDecimal(a.USDValue), optInt(a.DormancyDays), a.Score.Total)
	}
	fmt.Fprintf(tw, "\n%d assets\t\t\t\t\t\t%d\n", len(assets), scoring.PointsPerDay(assets))
	return tw.Flush()
}

func optString(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func optInt(n *int) string {
	if n == nil {
		return "-"
	}
	return fmt.Sprint(*n)
}

func optDecimal(d *decimal.Decimal) string {
	if d == nil {
		return "-"
	}
	return d.String()
}
