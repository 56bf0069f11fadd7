package main

import (
	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	awsprovider "github.com/lzops/lzops/providers/aws"
	"github.com/lzops/lzops/report"
	"github.com/lzops/lzops/rules"
	"github.com/lzops/lzops/scanner"
	"github.com/lzops/lzops/zones"
)

var (
	scanZones      zoneSelection
	scanTagManaged bool
	scanOutputDir  string
)

var scanCmd = &cobra.Command{
	Use:   "scan-tags",
	Short: "Scan resources by tag rules across landing zones",
	Long: `Scan AWS resources across landing zones, keeping the ones that
satisfy the per-service include rules and trigger none of the exclude
rules. Matched resources are written to a CSV report per zone and can
optionally receive the management marker tag.`,
	Example: `  lzops scan-tags                          # all nonprod zones
  lzops scan-tags -l cmsnonprod            # one zone
  lzops scan-tags -e prod --tag-managed    # prod zones, apply marker tag
  lzops scan-tags --test                   # test account from settings`,
	RunE: runScanTags,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	addZoneFlags(scanCmd, &scanZones)
	scanCmd.Flags().BoolVar(&scanTagManaged, "tag-managed", false, "apply the nis_managed=true marker tag to matched resources")
	scanCmd.Flags().StringVarP(&scanOutputDir, "output-dir", "o", "results", "directory for CSV reports")
}

func runScanTags(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	selected, err := scanZones.resolve(cfg)
	if err != nil {
		return err
	}

	writer, err := report.NewWriter(scanOutputDir)
	if err != nil {
		return err
	}

	catalog := rules.DefaultCatalog()
	log.Info().Int("zones", len(selected)).Msg("scanning landing zones")

	totalMatched := 0
	var totalStats scanner.TagStats

	err = forEachZone(ctx, cfg, selected, "scan-tags", func(zone zones.Zone, awsCfg awssdk.Config) error {
		logger := log.With().Str("zone", zone.Name).Logger()
		logger.Info().Str("account", zone.AccountID).Msg("scanning zone")

		provider := awsprovider.NewProvider(awsCfg, logger)
		sc := scanner.New(catalog, provider, []scanner.DirectLister{
			provider.IAMRoles(),
			provider.Route53Zones(),
		}, logger)

		matched, err := sc.Scan(ctx)
		if err != nil {
			return err
		}

		if scanTagManaged && len(matched) > 0 {
			stats := scanner.MarkManaged(ctx, provider, matched, logger)
			totalStats.Succeeded += stats.Succeeded
			totalStats.Failed += stats.Failed
		}

		path, err := writer.WriteMatches(zone.Name, matched)
		if err != nil {
			return err
		}

		totalMatched += len(matched)
		logger.Info().Int("matched", len(matched)).Str("report", path).Msg("zone complete")
		return nil
	})
	if err != nil {
		return err
	}

	summary := log.Info().Int("total_matched", totalMatched)
	if scanTagManaged {
		summary = summary.Int("tagged", totalStats.Succeeded).Int("tag_failures", totalStats.Failed)
	}
	summary.Msg("scan finished")
	return nil
}
