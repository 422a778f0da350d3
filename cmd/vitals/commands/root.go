package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/openfroyo/vitals/pkg/telemetry"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath    string
	levelOverride string
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vitals",
		Short: "vitals - service health and debug-level telemetry",
		Long: `vitals inspects and drives the telemetry helper embedded in services.

It can:
  - Render the service status report as HTML or JSON
  - Generate request identifiers
  - Show which log levels pass the current debug level
  - Run a heartbeat that follows debug level changes in the config file`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path (.yaml, .json or .cue)")
	rootCmd.PersistentFlags().StringVarP(&levelOverride, "level", "l", "", "debug level override (system, error, info, debug)")

	rootCmd.AddCommand(newStatusCommand(version))
	rootCmd.AddCommand(newIDCommand())
	rootCmd.AddCommand(newCheckCommand())
	rootCmd.AddCommand(newRunCommand(version))

	return rootCmd
}

// loadConfig resolves the configuration from the config file, the
// environment and the --level flag, in that order.
func loadConfig(version string) (*telemetry.Config, error) {
	cfg := telemetry.DefaultConfig()
	if configPath != "" {
		loaded, err := telemetry.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	cfg.ApplyEnv(nil)
	if levelOverride != "" {
		cfg.DebugLevel = strings.ToLower(levelOverride)
	}
	if version != "" && cfg.ServiceVersion == "dev" {
		cfg.ServiceVersion = version
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newTelemetry builds a Telemetry writing operational lines to out.
func newTelemetry(version string, out io.Writer) (*telemetry.Telemetry, error) {
	cfg, err := loadConfig(version)
	if err != nil {
		return nil, err
	}
	return telemetry.New(cfg, telemetry.WithSink(telemetry.NewWriterSink(out)))
}
