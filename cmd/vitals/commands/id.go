package commands

import (
	"fmt"

	"github.com/openfroyo/vitals/pkg/telemetry"
	"github.com/spf13/cobra"
)

func newIDCommand() *cobra.Command {
	var (
		count  int
		digits bool
	)

	cmd := &cobra.Command{
		Use:   "id",
		Short: "Generate request identifiers",
		Long: `Generate GUID-shaped request identifiers or four-digit strings.

Identifiers are not cryptographically random and must not be used as secrets.`,
		Example: `  vitals id
  vitals id --count 5 --digits`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return fmt.Errorf("count must be positive, got %d", count)
			}
			for i := 0; i < count; i++ {
				id := telemetry.NewIdentifier()
				if digits {
					id = telemetry.RandomDigits()
				}
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of values to print")
	cmd.Flags().BoolVar(&digits, "digits", false, "print four-digit strings instead of identifiers")

	return cmd
}
