package main

import (
	"fmt"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	awsprovider "github.com/lzops/lzops/providers/aws"
	"github.com/lzops/lzops/report"
	"github.com/lzops/lzops/zones"
)

var (
	serverZones     zoneSelection
	serverPlatform  string
	serverOutputDir string
	serverName      string
	serverAll       bool
)

var serversCmd = &cobra.Command{
	Use:   "servers",
	Short: "List, start or stop servers across landing zones",
}

var serversListCmd = &cobra.Command{
	Use:   "list",
	Short: "List servers and write a CSV inventory",
	Example: `  lzops servers list --platform windows
  lzops servers list -e prod`,
	RunE: runServersList,
}

var serversStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start stopped CMS-managed servers",
	Example: `  lzops servers start --server-name web-01 -l cmsnonprod
  lzops servers start --all -l cmsnonprod`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServersPower(cmd, powerStart)
	},
}

var serversStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop running CMS-managed servers",
	Example: `  lzops servers stop --server-name web-01 -l cmsnonprod
  lzops servers stop --all -l cmsnonprod`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServersPower(cmd, powerStop)
	},
}

type powerAction int

const (
	powerStart powerAction = iota
	powerStop
)

func init() {
	rootCmd.AddCommand(serversCmd)

	serversCmd.AddCommand(serversListCmd)
	addZoneFlags(serversListCmd, &serverZones)
	serversListCmd.Flags().StringVarP(&serverPlatform, "platform", "p", "", "filter by platform (windows or linux)")
	serversListCmd.Flags().StringVarP(&serverOutputDir, "output-dir", "o", "results", "directory for CSV reports")

	for _, c := range []*cobra.Command{serversStartCmd, serversStopCmd} {
		serversCmd.AddCommand(c)
		addZoneFlags(c, &serverZones)
		c.Flags().StringVar(&serverName, "server-name", "", "Name tag of the server to act on")
		c.Flags().BoolVar(&serverAll, "all", false, "act on every managed server in the zone")
	}
}

func runServersList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if serverPlatform != "" && serverPlatform != "windows" && serverPlatform != "linux" {
		return fmt.Errorf("invalid platform %q (must be windows or linux)", serverPlatform)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	selected, err := serverZones.resolve(cfg)
	if err != nil {
		return err
	}

	writer, err := report.NewWriter(serverOutputDir)
	if err != nil {
		return err
	}

	var records []report.ServerRecord
	scanTime := time.Now().Format(time.RFC3339)

	err = forEachZone(ctx, cfg, selected, "list-servers", func(zone zones.Zone, awsCfg awssdk.Config) error {
		logger := log.With().Str("zone", zone.Name).Logger()
		provider := awsprovider.NewProvider(awsCfg, logger)

		servers, err := provider.ListServers(ctx, serverPlatform)
		if err != nil {
			return err
		}

		for _, s := range servers {
			records = append(records, report.ServerRecord{
				Zone:            zone.Name,
				Region:          provider.Region(),
				Name:            s.Name,
				InstanceID:      s.InstanceID,
				InstanceType:    s.InstanceType,
				State:           s.State,
				Platform:        s.Platform,
				PlatformDetails: s.PlatformDetails,
				PrivateIP:       s.PrivateIP,
				PublicIP:        s.PublicIP,
				LaunchTime:      s.LaunchTime.Format(time.RFC3339),
				VpcID:           s.VpcID,
				SubnetID:        s.SubnetID,
				SecurityGroups:  s.SecurityGroupList(),
				KeyName:         s.KeyName,
				ScanTime:        scanTime,
			})
		}

		logger.Info().Int("servers", len(servers)).Msg("zone complete")
		return nil
	})
	if err != nil {
		return err
	}

	path, err := writer.WriteServers(records)
	if err != nil {
		return err
	}

	log.Info().Int("servers", len(records)).Str("report", path).Msg("server listing finished")
	return nil
}

func runServersPower(cmd *cobra.Command, action powerAction) error {
	ctx := cmd.Context()

	if serverName == "" && !serverAll {
		return fmt.Errorf("either --server-name or --all is required")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	selected, err := serverZones.resolve(cfg)
	if err != nil {
		return err
	}

	total := 0
	err = forEachZone(ctx, cfg, selected, "manage-servers", func(zone zones.Zone, awsCfg awssdk.Config) error {
		logger := log.With().Str("zone", zone.Name).Logger()
		provider := awsprovider.NewProvider(awsCfg, logger)

		var ids []string
		var err error
		if action == powerStart {
			ids, err = provider.StartServers(ctx, serverName)
		} else {
			ids, err = provider.StopServers(ctx, serverName)
		}
		if err != nil {
			return err
		}

		total += len(ids)
		logger.Info().Int("instances", len(ids)).Msg("zone complete")
		return nil
	})
	if err != nil {
		return err
	}

	verb := "started"
	if action == powerStop {
		verb = "stopped"
	}
	log.Info().Int("instances", total).Msgf("server power pass finished, %s %d instances", verb, total)
	return nil
}
