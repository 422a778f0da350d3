package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <level>...",
		Short: "Show which levels pass the current debug level",
		Example: `  vitals check system error info debug
  vitals --level error check info`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tel, err := newTelemetry("", io.Discard)
			if err != nil {
				return err
			}
			defer tel.Shutdown(context.Background())

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "LEVEL\tLOGGED\t(current: %s)\n", tel.Level())
			for _, level := range args {
				fmt.Fprintf(w, "%s\t%t\t\n", level, tel.ShouldLog(level))
			}
			return w.Flush()
		},
	}

	return cmd
}
