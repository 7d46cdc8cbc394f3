package enginesniff

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/enginesniff/enginesniff/internal/audit"
	"github.com/enginesniff/enginesniff/internal/git"
	"github.com/enginesniff/enginesniff/internal/report"
	"github.com/enginesniff/enginesniff/internal/scan"
	"github.com/enginesniff/enginesniff/internal/tui"
)

var (
	flagPath            string
	flagRev             string
	flagImage           string
	flagInclude         string
	flagExclude         string
	flagDefaultExcludes bool
	flagText            bool
	flagFailBelow       float64
	flagExpect          string
	flagCache           bool
	flagAudit           bool
	flagInteractive     bool
	// listing limits
	flagMaxEntries      int
	flagMaxDepth        int
	flagMaxArchiveBytes int64
	flagTimeBudget      time.Duration
)

func init() {
	cmd := &cobra.Command{
		Use:   "scan [DIR|ARCHIVE]",
		Short: "Identify the engine of a directory, archive, git revision or image",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScan,
		Example: `
# Working directory
enginesniff scan

# Exported build archive
enginesniff scan dist/game-windows.zip

# Committed tree only
enginesniff scan --rev v1.2.0

# Container image, failing CI unless it is a confident Godot build
enginesniff scan --image ghcr.io/acme/server:latest --expect Godot --fail-below 0.8`,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVarP(&flagPath, "path", "p", ".", "directory or archive to scan")
	cmd.Flags().StringVar(&flagRev, "rev", "", "list the tree of this git revision instead of the working tree")
	cmd.Flags().StringVar(&flagImage, "image", "", "list the layers of this registry image (e.g. ghcr.io/org/img:tag)")
	cmd.Flags().StringVar(&flagInclude, "include", "", "comma-separated include globs")
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "comma-separated exclude globs")
	cmd.Flags().BoolVar(&flagDefaultExcludes, "default-excludes", true, "skip VCS and tooling directories (.git, node_modules, etc.)")
	cmd.Flags().BoolVar(&flagText, "text", false, "output plain text instead of tables")
	cmd.Flags().Float64Var(&flagFailBelow, "fail-below", 0, "exit 1 when confidence is below this value (0-1)")
	cmd.Flags().StringVar(&flagExpect, "expect", "", "exit 1 unless this engine is identified")
	cmd.Flags().BoolVar(&flagCache, "cache", false, "reuse results for an unchanged listing (stored under .git or the scanned root)")
	cmd.Flags().BoolVar(&flagAudit, "audit", false, "append a record to the audit log")
	cmd.Flags().BoolVarP(&flagInteractive, "interactive", "i", false, "browse the result in a terminal UI (r rescans)")
	cmd.Flags().IntVar(&flagMaxEntries, "max-entries", 0, "stop listing after this many files (0 = unbounded)")
	cmd.Flags().IntVar(&flagMaxDepth, "max-depth", 2, "max nesting depth for archives inside archives")
	cmd.Flags().Int64Var(&flagMaxArchiveBytes, "max-archive-bytes", 32<<20, "max bytes buffered per nested archive")
	cmd.Flags().DurationVar(&flagTimeBudget, "time-budget", 30*time.Second, "abandon listing after this long (0 = no limit)")
}

func runScan(cmd *cobra.Command, args []string) error {
	target := flagPath
	if len(args) == 1 {
		target = args[0]
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		return err
	}
	// config files live next to an archive, inside a directory
	localRoot := abs
	if st, err := os.Stat(abs); err == nil && !st.IsDir() {
		localRoot = filepath.Dir(abs)
	}
	if flagImage != "" {
		localRoot, _ = os.Getwd()
	}
	gcfg, lcfg, err := loadConfigs(localRoot)
	if err != nil {
		return err
	}

	engines, err := resolveEngines(localRoot, lcfg, gcfg)
	if err != nil {
		return err
	}

	defaultExcludes := flagDefaultExcludes
	if !cmd.Flags().Changed("default-excludes") {
		if lcfg.DefaultExcludes != nil {
			defaultExcludes = *lcfg.DefaultExcludes
		} else if gcfg.DefaultExcludes != nil {
			defaultExcludes = *gcfg.DefaultExcludes
		}
	}

	cfg := scan.Config{
		Root:            abs,
		Revision:        flagRev,
		Image:           flagImage,
		IncludeGlobs:    pickString(flagInclude, lcfg.Include, gcfg.Include),
		ExcludeGlobs:    pickString(flagExclude, lcfg.Exclude, gcfg.Exclude),
		DefaultExcludes: defaultExcludes,
		MaxEntries:      pickInt(flagMaxEntries, lcfg.MaxEntries, gcfg.MaxEntries),
		MaxDepth:        flagMaxDepth,
		MaxArchiveBytes: flagMaxArchiveBytes,
		TimeBudget:      flagTimeBudget,
		Engines:         engines,
		Cache:           pickBool(flagCache, lcfg.Cache, gcfg.Cache),
		Explain:         flagExplain,
	}

	stderr := cmd.ErrOrStderr()
	if !flagJSON {
		_, _ = fmt.Fprintf(stderr, "Scanning %s with %d engines...\n", describeTarget(cfg), len(engines))
	}
	res, err := scan.Scan(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("scan error: %w", err)
	}
	if st := res.ArtifactStats; st.AbortedByEntries+st.AbortedByTime+st.AbortedByDepth+st.AbortedByBytes > 0 && !flagJSON {
		_, _ = fmt.Fprintf(stderr, "listing truncated (entries: %d, time: %d, depth: %d, bytes: %d)\n",
			st.AbortedByEntries, st.AbortedByTime, st.AbortedByDepth, st.AbortedByBytes)
	}

	format := formatTable
	switch {
	case flagJSON:
		format = formatJSON
	case flagText:
		format = formatText
	}
	out := cmd.OutOrStdout()
	opts := report.PrintOptions{
		NoColor:     !colorEnabled(out, pickBool(flagNoColor, lcfg.NoColor, gcfg.NoColor)),
		Explain:     flagExplain,
		Duration:    res.Duration,
		FilesListed: res.FilesListed,
		Target:      res.Target,
		Cached:      res.Cached,
	}
	if flagInteractive && format != formatJSON {
		ctx := cmd.Context()
		rescan := func() (scan.Result, error) { return scan.Scan(ctx, cfg) }
		if err := tui.Run(res, rescan); err != nil {
			return err
		}
	} else if err := writeReport(out, res.Report, format, opts); err != nil {
		return err
	}

	if pickBool(flagAudit, lcfg.Audit, gcfg.Audit) {
		if err := logAudit(localRoot, res); err != nil {
			_, _ = fmt.Fprintln(stderr, "audit warning:", err)
		}
	}

	minConfidence := pickFloat(flagFailBelow, lcfg.MinConfidence, gcfg.MinConfidence)
	if fail, reason := report.ShouldFail(res.Detection(), minConfidence, flagExpect); fail {
		return &exitError{code: 1, reason: reason}
	}
	return nil
}

func describeTarget(cfg scan.Config) string {
	switch {
	case cfg.Image != "":
		return cfg.Image
	case cfg.Revision != "":
		return cfg.Root + " at " + cfg.Revision
	default:
		return cfg.Root
	}
}

func logAudit(root string, res scan.Result) error {
	rec := audit.CreateScanRecord(res.Target, string(res.Source), res.Detection(), res.FilesListed, res.Duration)
	rec.Repo, rec.Commit, rec.Branch = git.RepoMetadata(root)
	return audit.NewAuditLog(root).LogScan(rec)
}
