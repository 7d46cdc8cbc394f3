package enginesniff

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/enginesniff/enginesniff/internal/report"
)

var flagEnginesFormat string

func init() {
	cmd := &cobra.Command{
		Use:   "engines",
		Short: "List the engine signature set in use",
		Long: `List the configured engines. With --format json or yaml the full set is
written in the same format accepted by --engines, which makes a good
starting point for a custom signature file.`,
		Args: cobra.NoArgs,
		RunE: runEngines,
	}
	rootCmd.AddCommand(cmd)
	cmd.Flags().StringVar(&flagEnginesFormat, "format", "table", "table | json | yaml")
}

func runEngines(cmd *cobra.Command, _ []string) error {
	cwd, _ := os.Getwd()
	gcfg, lcfg, err := loadConfigs(cwd)
	if err != nil {
		return err
	}
	engines, err := resolveEngines(cwd, lcfg, gcfg)
	if err != nil {
		return err
	}
	format := strings.ToLower(flagEnginesFormat)
	if flagJSON {
		format = "json"
	}
	out := cmd.OutOrStdout()
	switch format {
	case "table":
		report.PrintEngines(out, engines)
		return nil
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(engines)
	case "yaml", "yml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(engines); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format: %s", flagEnginesFormat)
	}
}
