package enginesniff

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/enginesniff/enginesniff/internal/update"
)

var (
	flagCheckUpdate bool
	flagSelfUpdate  bool
)

func init() {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version, optionally checking for a newer release",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			out := c.OutOrStdout()
			fmt.Fprintf(out, "enginesniff %s\n", version)
			if flagSelfUpdate {
				latest, err := update.SelfUpdate(version)
				if err != nil {
					return fmt.Errorf("self-update: %w", err)
				}
				fmt.Fprintf(out, "installed v%s\n", latest)
				return nil
			}
			if !flagCheckUpdate {
				return nil
			}
			latest, newer, err := update.NewChecker().Check(c.Context(), version)
			if err != nil {
				return fmt.Errorf("update check: %w", err)
			}
			if newer {
				fmt.Fprintf(out, "new version available: v%s\n", latest)
			} else {
				fmt.Fprintln(out, "up to date")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&flagCheckUpdate, "check", false, "query the latest release (cached for 24h, skipped in CI)")
	cmd.Flags().BoolVar(&flagSelfUpdate, "self-update", false, "replace this binary with the latest GitHub release")
	rootCmd.AddCommand(cmd)
}
