package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/enginesniff/enginesniff/internal/classify"
	"github.com/enginesniff/enginesniff/internal/types"
)

type PrintOptions struct {
	NoColor     bool
	Explain     bool
	Duration    time.Duration
	FilesListed int
	Target      string
	Cached      bool
}

// ConfidenceLabel names a confidence level.
func ConfidenceLabel(c float64) string {
	switch {
	case c >= types.ConfidenceHigh:
		return "high"
	case c >= types.ConfidenceMedium:
		return "medium"
	case c > types.ConfidenceNone:
		return "low"
	default:
		return "none"
	}
}

func colorFor(c float64, noColor bool) *color.Color {
	var col *color.Color
	switch ConfidenceLabel(c) {
	case "high":
		col = color.New(color.FgGreen, color.Bold)
	case "medium":
		col = color.New(color.FgYellow)
	case "low":
		col = color.New(color.FgCyan)
	default:
		col = color.New(color.Faint)
	}
	if noColor {
		col.DisableColor()
	} else {
		col.EnableColor()
	}
	return col
}

// PrintText writes a human readable summary of rep.
func PrintText(w io.Writer, rep classify.Report, opts PrintOptions) {
	res := rep.Result
	label := ConfidenceLabel(res.Confidence)
	conf := colorFor(res.Confidence, opts.NoColor)
	if opts.Target != "" {
		fmt.Fprintf(w, "Target: %s\n", opts.Target)
	}
	if res.Engine == types.Unknown {
		fmt.Fprintln(w, conf.Sprint("No game engine identified"))
	} else {
		fmt.Fprintf(w, "Engine: %s\n", conf.Sprint(res.Engine))
		fmt.Fprintf(w, "Confidence: %s (%s)\n", formatFloat(res.Confidence), label)
		fmt.Fprintf(w, "Matches (%d):\n", len(res.Matches))
		for _, m := range res.Matches {
			fmt.Fprintf(w, "  %s\n", m)
		}
	}
	if opts.Explain && len(rep.Scores) > 0 {
		fmt.Fprintln(w)
		PrintScores(w, rep)
	}
	printFooter(w, opts)
}

// PrintTable writes rep as bordered tables: the verdict, the matched files,
// and with Explain the per-engine scores.
func PrintTable(w io.Writer, rep classify.Report, opts PrintOptions) {
	res := rep.Result
	conf := colorFor(res.Confidence, opts.NoColor)
	if opts.Target != "" {
		fmt.Fprintf(w, "Target: %s\n", opts.Target)
	}
	table := tablewriter.NewWriter(w)
	table.Header("ENGINE", "CONFIDENCE", "LEVEL", "MATCHED")
	_ = table.Append([]string{conf.Sprint(res.Engine), formatFloat(res.Confidence), ConfidenceLabel(res.Confidence), strconv.Itoa(len(res.Matches))})
	_ = table.Render()

	if len(res.Matches) > 0 {
		files := tablewriter.NewWriter(w)
		files.Header("MATCHED FILE")
		for _, m := range res.Matches {
			_ = files.Append([]string{m})
		}
		_ = files.Render()
	}
	if opts.Explain && len(rep.Scores) > 0 {
		PrintScores(w, rep)
	}
	printFooter(w, opts)
}

// PrintScores renders the per-engine breakdown as a table.
func PrintScores(w io.Writer, rep classify.Report) {
	table := tablewriter.NewWriter(w)
	table.Header("ENGINE", "SCORE", "MATCHED", "")
	for _, s := range rep.Scores {
		mark := ""
		if s.Engine == rep.Result.Engine {
			mark = "*"
		}
		_ = table.Append([]string{s.Engine, formatFloat(s.Score), strconv.Itoa(s.Matched), mark})
	}
	_ = table.Render()
}

// PrintEngines lists an engine set with signature counts and the best
// score each engine could reach if every signature matched once.
func PrintEngines(w io.Writer, engines []types.EngineConfig) {
	table := tablewriter.NewWriter(w)
	table.Header("ENGINE", "SIGNATURES", "MAX SCORE")
	for _, e := range engines {
		total := 0.0
		for _, s := range e.Signatures {
			total += s.Weight
		}
		_ = table.Append([]string{e.Name, strconv.Itoa(len(e.Signatures)), formatFloat(total)})
	}
	_ = table.Render()
}

func printFooter(w io.Writer, opts PrintOptions) {
	if opts.Duration <= 0 && opts.FilesListed <= 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Files listed: %d\n", opts.FilesListed)
	if opts.Duration > 0 {
		fmt.Fprintf(w, "Scan duration: %.2fs\n", opts.Duration.Seconds())
	}
	if opts.Cached {
		fmt.Fprintln(w, "Result served from cache")
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
