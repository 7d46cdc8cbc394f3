package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/enginesniff/enginesniff/internal/report"
	"github.com/enginesniff/enginesniff/internal/scan"
)

// writeClipboard is swapped out in tests.
var writeClipboard = clipboard.WriteAll

// resultJSON renders res the way `scan --json --explain` does.
func resultJSON(res scan.Result) string {
	data, err := json.MarshalIndent(report.NewOutput(res.Report, true), "", "  ")
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(data)
}

func highlightJSON(code string) string {
	lexer := lexers.Get("json")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		return code
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return buf.String()
}

func copyToClipboard(text, label string) tea.Cmd {
	if err := writeClipboard(text); err != nil {
		return func() tea.Msg { return statusMsg(fmt.Sprintf("Clipboard error: %v", err)) }
	}
	return func() tea.Msg { return statusMsg("Copied " + label) }
}

// copyResultToClipboard copies the JSON result.
func (m Model) copyResultToClipboard() tea.Cmd {
	return copyToClipboard(resultJSON(m.result), "JSON result")
}

// copyMatchesToClipboard copies the matched paths, one per line.
func (m Model) copyMatchesToClipboard() tea.Cmd {
	matches := m.result.Detection().Matches
	if len(matches) == 0 {
		return func() tea.Msg { return statusMsg("No matches to copy") }
	}
	return copyToClipboard(strings.Join(matches, "\n"), fmt.Sprintf("%d matched paths", len(matches)))
}

func (m Model) copyEngineToClipboard() tea.Cmd {
	sc, ok := m.selectedScore()
	if !ok {
		return func() tea.Msg { return statusMsg("No engine selected") }
	}
	return copyToClipboard(sc.Engine, sc.Engine)
}
