package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lzops/lzops/zones"
)

var zonesEnvironment string

var zonesCmd = &cobra.Command{
	Use:   "zones",
	Short: "List landing zones from the registry",
	Example: `  lzops zones
  lzops zones -e prod`,
	RunE: runZones,
}

func init() {
	rootCmd.AddCommand(zonesCmd)
	zonesCmd.Flags().StringVarP(&zonesEnvironment, "environment", "e", "", "environment suffix filter (prod, nonprod, preprod)")
}

func runZones(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	url, err := cfg.RequireZonesURL()
	if err != nil {
		return err
	}

	all, err := zones.NewFetcher(zoneFetchTimeout).Fetch(url)
	if err != nil {
		return err
	}

	if zonesEnvironment != "" {
		all = zones.FilterByEnvironment(all, zonesEnvironment)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ACCOUNT\tZONE\tENVIRONMENT")
	for _, z := range all {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", z.AccountID, z.Name, z.Environment())
	}
	_ = w.Flush()

	fmt.Printf("\n%d zones\n", len(all))
	return nil
}
