package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/openfroyo/vitals/pkg/telemetry"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newRunCommand(version string) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a heartbeat that follows debug level changes",
		Long: `Run a long-lived heartbeat that logs uptime at info level every interval.

When --config is set the file is watched and a changed debug_level is applied
without restarting. Stops on SIGINT or SIGTERM.`,
		Example: `  vitals run --config ./vitals.yaml --interval 10s`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval <= 0 {
				return fmt.Errorf("interval must be positive, got %s", interval)
			}

			tel, err := newTelemetry(version, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			ctx := tel.WithContext(cmd.Context())
			return runHeartbeat(ctx, tel, interval)
		},
	}

	cmd.Flags().DurationVarP(&interval, "interval", "i", time.Minute, "heartbeat interval")

	return cmd
}

func runHeartbeat(ctx context.Context, tel *telemetry.Telemetry, interval time.Duration) error {
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Failed to shut down telemetry")
		}
	}()

	events := tel.Events()
	events.SeedDefaults(map[string]any{"heartbeats": 0, "debug.level": tel.Level()})
	events.RecordNow("service.started")

	if configPath != "" {
		watcher := telemetry.NewConfigWatcher(configPath, tel, telemetry.DefaultReloadDelay)
		if err := watcher.Start(ctx); err != nil {
			return err
		}
	}

	tel.LogText(string(telemetry.LevelSystem), "vitals.run", fmt.Sprintf("started, level=%s", tel.Level()))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			tel.LogText(string(telemetry.LevelSystem), "vitals.run", "stopping after "+tel.UptimeNow())
			return nil
		case <-ticker.C:
			events.Increment("heartbeats")
			events.Record("debug.level", tel.Level())
			tel.LogTextContext(ctx, string(telemetry.LevelInfo), "vitals.uptime", tel.UptimeNow())
			tel.LogObjectContext(ctx, string(telemetry.LevelDebug), "vitals.events", events.Snapshot())
		}
	}
}
