package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/lzops/lzops/config"
	"github.com/lzops/lzops/session"
	"github.com/lzops/lzops/zones"
)

const zoneFetchTimeout = 30 * time.Second

var (
	version = "0.1.0"

	cfgFile string
	debug   bool

	rootCmd = &cobra.Command{
		Use:   "lzops",
		Short: "Landing zone operations toolkit",
		Long: `lzops - Landing Zone Operations Toolkit

Scans AWS resources across landing zones with tag-based include/exclude
rules, generates CSV reports, applies management marker tags, and runs
routine server and backup operations.`,
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
			if debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		},
	}
)

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "configs/settings.yaml", "settings file path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig reads the settings file, falling back to defaults when it
// does not exist.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Debug().Str("path", cfgFile).Msg("settings file not found, using defaults")
			return config.Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// zoneSelection holds the zone-targeting flags shared by most commands.
type zoneSelection struct {
	names       []string
	environment string
	test        bool
}

func addZoneFlags(cmd *cobra.Command, sel *zoneSelection) {
	cmd.Flags().StringSliceVarP(&sel.names, "landing-zones", "l", nil, "landing zone names (e.g. cmsnonprod,appanonprod)")
	cmd.Flags().StringVarP(&sel.environment, "environment", "e", "nonprod", "environment suffix to filter zones when --landing-zones is not given (prod, nonprod, preprod)")
	cmd.Flags().BoolVarP(&sel.test, "test", "t", false, "use the test account from the settings file instead of the zone registry")
}

// resolve turns the selection into a concrete zone list.
func (s *zoneSelection) resolve(cfg *config.Config) ([]zones.Zone, error) {
	if s.test {
		ta, err := cfg.RequireTestAccount()
		if err != nil {
			return nil, err
		}
		return []zones.Zone{{AccountID: ta.ID, Name: ta.Name}}, nil
	}

	url, err := cfg.RequireZonesURL()
	if err != nil {
		return nil, err
	}

	all, err := zones.NewFetcher(zoneFetchTimeout).Fetch(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch landing zones: %w", err)
	}

	var selected []zones.Zone
	if len(s.names) > 0 {
		selected = zones.FilterByNames(all, s.names)
	} else {
		selected = zones.FilterByEnvironment(all, s.environment)
	}

	if len(selected) == 0 {
		return nil, fmt.Errorf("no zones matched the selection")
	}
	return selected, nil
}

// forEachZone assumes the provision role in every selected zone and runs
// fn. A zone that fails is logged and skipped; the loop always finishes.
func forEachZone(ctx context.Context, cfg *config.Config, selected []zones.Zone, sessionSuffix string, fn func(zone zones.Zone, awsCfg awssdk.Config) error) error {
	role, err := cfg.RequireProvisionRole()
	if err != nil {
		return err
	}

	manager, err := session.NewManagerFromEnv(ctx, cfg.AWS.Region)
	if err != nil {
		return err
	}

	for _, zone := range selected {
		awsCfg, err := manager.GetConfig(ctx, zone.AccountID, zone.Name, role, cfg.AWS.Region, sessionSuffix)
		if err != nil {
			log.Error().Err(err).Str("zone", zone.Name).Msg("failed to assume role")
			continue
		}
		if err := fn(zone, awsCfg); err != nil {
			log.Error().Err(err).Str("zone", zone.Name).Msg("zone processing failed")
		}
	}

	return nil
}
