package enginesniff

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	flagJSON    bool
	flagNoColor bool
	flagEngines string
	flagExplain bool

	version = "0.1.0"
)

// rootCmd is the base Cobra command for the enginesniff CLI.
var rootCmd = &cobra.Command{
	Use:           "enginesniff",
	Short:         "Identify the game engine behind a build",
	Long:          "enginesniff inspects file listings of directories, archives, git revisions or container images and reports which game engine produced them.",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// exitError carries a non-zero exit status that is not a failure of the
// command itself, such as a breached CI gate.
type exitError struct {
	code   int
	reason string
}

func (e *exitError) Error() string { return e.reason }

// Execute runs the enginesniff CLI. It should be called by the main package.
func Execute() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	err := rootCmd.Execute()
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		fmt.Fprintln(stderr, "fail:", ee.reason)
		return ee.code
	}
	fmt.Fprintln(stderr, "error:", err)
	return 2
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "emit JSON")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colorized output")
	rootCmd.PersistentFlags().StringVar(&flagEngines, "engines", "", "engine signature file (.json, .yml, .yaml); built-in set when empty")
	rootCmd.PersistentFlags().BoolVar(&flagExplain, "explain", false, "include every engine's score")
}

// colorEnabled reports whether output to w may carry ANSI colors.
func colorEnabled(w io.Writer, configured bool) bool {
	if configured || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
