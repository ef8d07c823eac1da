// Package main is the entry point for the one-shot ZFS pool and SSD
// endurance check.
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rcarmo/proxmox-zpool-monitoring/internal/config"
	"github.com/rcarmo/proxmox-zpool-monitoring/internal/monitor"
	"github.com/rcarmo/proxmox-zpool-monitoring/internal/notify"
	"github.com/rcarmo/proxmox-zpool-monitoring/internal/syscmd"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		// Only flag/config errors land here; check findings never do.
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		verbose bool
		dryRun  bool
		pools   []string
	)

	cmd := &cobra.Command{
		Use:           "zpool-monitor",
		Short:         "One-shot ZFS pool and SSD endurance check with push notifications",
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if verbose {
				cfg.LogLevel = "debug"
			}
			if len(pools) > 0 {
				cfg.Pools = pools
			}
			setupLogging(cfg.LogLevel)

			log.Debug().
				Strs("pools", cfg.Pools).
				Float64("rated_tbw", cfg.RatedTBW).
				Int("age_limit_years", cfg.AgeLimitYears).
				Msg("Starting monitoring check")

			runner := syscmd.New(cfg.SbinDir)
			dispatcher := notify.New(cfg, dryRun)
			monitor.New(cfg, runner, dispatcher).Run()
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "log notifications instead of sending them")
	cmd.Flags().StringSliceVar(&pools, "pool", nil, "pool to monitor (repeatable, overrides ZPOOLMON_POOLS)")
	return cmd
}

// setupLogging configures zerolog based on log level.
func setupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
