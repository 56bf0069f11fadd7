package main

import (
	"fmt"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	awsprovider "github.com/lzops/lzops/providers/aws"
	"github.com/lzops/lzops/zones"
)

var (
	ssmZones      zoneSelection
	ssmInstanceID string
	ssmCommand    string
	ssmWait       time.Duration
)

var ssmCmd = &cobra.Command{
	Use:   "run-command",
	Short: "Run a PowerShell command on an instance via SSM",
	Example: `  lzops run-command -l cmsnonprod --instance-id i-0abc --command "Get-Service"
  lzops run-command --test --instance-id i-0abc --command "hostname" --wait 2m`,
	RunE: runSSMCommand,
}

func init() {
	rootCmd.AddCommand(ssmCmd)
	addZoneFlags(ssmCmd, &ssmZones)
	ssmCmd.Flags().StringVar(&ssmInstanceID, "instance-id", "", "target instance ID")
	ssmCmd.Flags().StringVar(&ssmCommand, "command", "", "PowerShell command to run")
	ssmCmd.Flags().DurationVar(&ssmWait, "wait", time.Minute, "how long to wait for the command to finish")
	_ = ssmCmd.MarkFlagRequired("instance-id")
	_ = ssmCmd.MarkFlagRequired("command")
}

func runSSMCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	selected, err := ssmZones.resolve(cfg)
	if err != nil {
		return err
	}
	if len(selected) != 1 {
		return fmt.Errorf("run-command targets exactly one zone, got %d", len(selected))
	}

	return forEachZone(ctx, cfg, selected, "run-command", func(zone zones.Zone, awsCfg awssdk.Config) error {
		logger := log.With().Str("zone", zone.Name).Logger()
		provider := awsprovider.NewProvider(awsCfg, logger)

		result, err := provider.RunPowerShell(ctx, ssmInstanceID, ssmCommand, ssmWait)
		if err != nil {
			return err
		}

		logger.Info().Str("status", result.Status).Msg("command finished")
		if result.Output != "" {
			fmt.Println(result.Output)
		}
		if result.ErrOutput != "" {
			fmt.Println(result.ErrOutput)
		}
		return nil
	})
}
