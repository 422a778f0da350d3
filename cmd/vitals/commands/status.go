package commands

import (
	"context"
	"fmt"
	"net/url"
	"runtime"
	"strings"

	"github.com/openfroyo/vitals/pkg/telemetry"
	"github.com/spf13/cobra"
)

func newStatusCommand(version string) *cobra.Command {
	var (
		queries    []string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print the service status report",
		Long: `Print the status report of a freshly started telemetry instance.

Report sections are switched with the same options a service reads from its
status endpoint query string: showServiceInfo, showSystemEvents,
showExtraInfo and rawJsonOnly.`,
		Example: `  # HTML report with every section
  vitals status

  # JSON report without the service section
  vitals status --json --query showServiceInfo=false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tel, err := newTelemetry(version, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer tel.Shutdown(context.Background())

			tel.Events().RecordNow("service.started")

			q, err := parseQueries(queries)
			if err != nil {
				return err
			}
			overrides := telemetry.OverridesFromQuery(q)
			if jsonOutput {
				overrides[telemetry.OptRawJSONOnly] = true
			}

			extra := map[string]any{
				"go.version": runtime.Version(),
				"go.os":      runtime.GOOS,
				"go.arch":    runtime.GOARCH,
			}

			body, _, err := tel.Report(telemetry.StatusOptions(overrides), extra).Render()
			if err != nil {
				return fmt.Errorf("failed to render status report: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(body))
			return err
		},
	}

	cmd.Flags().StringArrayVarP(&queries, "query", "q", nil, "report option as key=value (repeatable)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	return cmd
}

func parseQueries(pairs []string) (url.Values, error) {
	q := url.Values{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid query %q: expected key=value", pair)
		}
		q.Add(key, value)
	}
	return q, nil
}
