package main

import (
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	awsprovider "github.com/lzops/lzops/providers/aws"
	"github.com/lzops/lzops/report"
	"github.com/lzops/lzops/zones"
)

var (
	snapshotZones     zoneSelection
	snapshotDays      int
	snapshotOutputDir string

	backupZones  zoneSelection
	backupDays   int
	backupDryRun bool
)

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "Report old EBS snapshots across landing zones",
	Long: `List self-owned EBS snapshots older than the age threshold in
every selected landing zone and write them to a CSV report.`,
	Example: `  lzops snapshots                 # all nonprod zones, 31 days
  lzops snapshots -l cms01nonprod --days 60
  lzops snapshots -e prod`,
	RunE: runSnapshots,
}

var backupsCmd = &cobra.Command{
	Use:   "cleanup-backups",
	Short: "Delete old AMIs and snapshots across landing zones",
	Long: `Deregister self-owned AMIs and delete self-owned snapshots older
than the age threshold. With --dry-run nothing is deleted; the command
only reports what would go.`,
	Example: `  lzops cleanup-backups --dry-run
  lzops cleanup-backups -e prod --days 60`,
	RunE: runCleanupBackups,
}

func init() {
	rootCmd.AddCommand(snapshotsCmd)
	addZoneFlags(snapshotsCmd, &snapshotZones)
	snapshotsCmd.Flags().IntVar(&snapshotDays, "days", 31, "age threshold in days")
	snapshotsCmd.Flags().StringVarP(&snapshotOutputDir, "output-dir", "o", "results", "directory for CSV reports")

	rootCmd.AddCommand(backupsCmd)
	addZoneFlags(backupsCmd, &backupZones)
	backupsCmd.Flags().IntVar(&backupDays, "days", 31, "age threshold in days")
	backupsCmd.Flags().BoolVar(&backupDryRun, "dry-run", false, "show what would be deleted without deleting")
}

func runSnapshots(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	selected, err := snapshotZones.resolve(cfg)
	if err != nil {
		return err
	}

	writer, err := report.NewWriter(snapshotOutputDir)
	if err != nil {
		return err
	}

	threshold := time.Duration(snapshotDays) * 24 * time.Hour
	log.Info().Int("zones", len(selected)).Int("days", snapshotDays).Msg("listing old snapshots")

	var records []report.SnapshotRecord
	err = forEachZone(ctx, cfg, selected, "list-snapshots", func(zone zones.Zone, awsCfg awssdk.Config) error {
		logger := log.With().Str("zone", zone.Name).Logger()
		provider := awsprovider.NewProvider(awsCfg, logger)

		old, err := provider.ListOldSnapshots(ctx, threshold)
		if err != nil {
			return err
		}

		for _, snap := range old {
			records = append(records, report.SnapshotRecord{
				Zone:       zone.Name,
				SnapshotID: snap.ID,
				StartTime:  snap.StartTime,
				Tags:       snap.Tags,
			})
		}

		logger.Info().Int("old_snapshots", len(old)).Msg("zone complete")
		return nil
	})
	if err != nil {
		return err
	}

	path, err := writer.WriteSnapshots(records)
	if err != nil {
		return err
	}

	log.Info().Int("old_snapshots", len(records)).Str("report", path).Msg("snapshot listing finished")
	return nil
}

func runCleanupBackups(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	selected, err := backupZones.resolve(cfg)
	if err != nil {
		return err
	}

	if backupDryRun {
		log.Info().Msg("dry run: no resources will be deleted")
	}

	threshold := time.Duration(backupDays) * 24 * time.Hour
	totalAMIs := 0
	totalSnapshots := 0

	err = forEachZone(ctx, cfg, selected, "delete-backups", func(zone zones.Zone, awsCfg awssdk.Config) error {
		logger := log.With().Str("zone", zone.Name).Logger()
		provider := awsprovider.NewProvider(awsCfg, logger)

		stats, err := provider.CleanupOldBackups(ctx, threshold, backupDryRun)
		if err != nil {
			return err
		}

		totalAMIs += stats.AMIs
		totalSnapshots += stats.Snapshots
		logger.Info().
			Int("amis", stats.AMIs).
			Int("snapshots", stats.Snapshots).
			Bool("dry_run", backupDryRun).
			Msg("zone complete")
		return nil
	})
	if err != nil {
		return err
	}

	log.Info().
		Int("amis", totalAMIs).
		Int("snapshots", totalSnapshots).
		Bool("dry_run", backupDryRun).
		Msg("backup cleanup finished")
	return nil
}
