package enginesniff

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/enginesniff/enginesniff/internal/config"
	"github.com/enginesniff/enginesniff/internal/files"
)

var (
	cfgOutput          string
	cfgEngines         string
	cfgExclude         string
	cfgMaxEntries      int
	cfgMinConfidence   float64
	cfgNoColor         bool
	cfgDefaultExcludes bool
	cfgAudit           bool
	cfgForce           bool
	cfgGitignore       bool
)

func init() {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration helpers"}
	rootCmd.AddCommand(cfgCmd)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a .enginesniff.yml with the selected options",
		Args:  cobra.NoArgs,
		RunE:  runConfigInit,
	}
	cfgCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&cfgOutput, "output", ".enginesniff.yml", "output file path")
	initCmd.Flags().StringVar(&cfgEngines, "engines", "", "engine signature file to reference")
	initCmd.Flags().StringVar(&cfgExclude, "exclude", "", "comma-separated exclude globs")
	initCmd.Flags().IntVar(&cfgMaxEntries, "max-entries", 0, "stop listing after this many files (0 = unbounded)")
	initCmd.Flags().Float64Var(&cfgMinConfidence, "min-confidence", 0.0, "fail scans below this confidence (0.0-1.0)")
	initCmd.Flags().BoolVar(&cfgNoColor, "no-color", false, "disable color output by default")
	initCmd.Flags().BoolVar(&cfgDefaultExcludes, "default-excludes", true, "skip VCS and tooling directories")
	initCmd.Flags().BoolVar(&cfgAudit, "audit", false, "append every scan to the audit log")
	initCmd.Flags().BoolVar(&cfgForce, "force", false, "overwrite an existing file")
	initCmd.Flags().BoolVar(&cfgGitignore, "gitignore", false, "add cache and audit files to .gitignore next to the output")
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	if cfgMinConfidence < 0 || cfgMinConfidence > 1 {
		return fmt.Errorf("min-confidence must be within 0-1, got %v", cfgMinConfidence)
	}
	if _, err := os.Stat(cfgOutput); err == nil && !cfgForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cfgOutput)
	}
	if cfgEngines != "" {
		if _, err := config.LoadEngines(cfgEngines); err != nil {
			return err
		}
	}

	server := config.FileConfig{}.GetServerConfig()
	fc := config.FileConfig{
		Engines:         optStrPtr(cfgEngines),
		Exclude:         optStrPtr(cfgExclude),
		DefaultExcludes: boolPtr(cfgDefaultExcludes),
		MaxEntries:      intPtr(cfgMaxEntries),
		MinConfidence:   floatPtr(cfgMinConfidence),
		NoColor:         boolPtr(cfgNoColor),
		Audit:           boolPtr(cfgAudit),
		Server:          &server,
	}

	b, err := yaml.Marshal(&fc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(cfgOutput, b, 0644); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Wrote", cfgOutput)
	if cfgGitignore {
		added, err := files.AppendIgnore(filepath.Dir(cfgOutput), files.ToolArtifacts()...)
		if err != nil {
			return fmt.Errorf("update .gitignore: %w", err)
		}
		if len(added) > 0 {
			fmt.Fprintln(out, "Added to .gitignore:", strings.Join(added, ", "))
		}
	}
	return nil
}

func optStrPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
func intPtr(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}
func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }
