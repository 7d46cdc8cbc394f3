package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/enginesniff/enginesniff/internal/report"
	"github.com/enginesniff/enginesniff/internal/scan"
	"github.com/enginesniff/enginesniff/internal/types"
)

var (
	tableBorderStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("240"))

	detailPaneBorderStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("240"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true).
			Padding(0, 1)

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")).
			Bold(true)

	matchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("7"))

	popupStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Background(lipgloss.Color("235")).
			Padding(1, 4)

	confHighStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	confMedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	confLowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

const defaultStatus = "q: quit | ?: help | j/k: navigate | v: json | y: copy | r: rescan"

// Model is the interactive view over a single scan result.
type Model struct {
	result     scan.Result
	rescanFunc func() (scan.Result, error)
	prefs      Prefs
	savePrefs  func(Prefs) error

	table    table.Model
	viewport viewport.Model
	spinner  spinner.Model

	width    int
	height   int
	ready    bool
	scanning bool
	showHelp bool
	quitting bool

	statusMessage string
	statusTimeout *time.Time
}

type statusMsg string

type resultMsg scan.Result

// NewModel builds the model for res. rescanFunc may be nil, in which case
// rescanning is disabled.
func NewModel(res scan.Result, rescanFunc func() (scan.Result, error)) Model {
	columns := []table.Column{
		{Title: " ", Width: 2},
		{Title: "Engine", Width: 24},
		{Title: "Score", Width: 8},
		{Title: "Matched", Width: 8},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(8),
	)

	s := table.DefaultStyles()
	s.Header = lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("15")).
		Bold(true).
		Padding(0, 1).
		Align(lipgloss.Left)
	s.Selected = lipgloss.NewStyle().
		Foreground(lipgloss.Color("232")).
		Background(lipgloss.Color("208")).
		Bold(true).
		Padding(0, 1)
	s.Cell = lipgloss.NewStyle().
		Padding(0, 1)
	t.SetStyles(s)

	// Line spinner avoids Braille characters that render poorly on some terminals
	sp := spinner.New()
	sp.Spinner = spinner.Line
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	m := Model{
		table:         t,
		viewport:      viewport.New(80, 10),
		spinner:       sp,
		rescanFunc:    rescanFunc,
		prefs:         LoadPrefs(),
		savePrefs:     SavePrefs,
		statusMessage: defaultStatus,
	}
	m.setResult(res)
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m *Model) setResult(res scan.Result) {
	m.result = res
	winner := res.Report.Result.Engine
	rows := make([]table.Row, len(res.Report.Scores))
	for i, s := range res.Report.Scores {
		mark := ""
		if s.Engine == winner && winner != types.Unknown {
			mark = "*"
		}
		rows[i] = table.Row{
			mark,
			s.Engine,
			strconv.FormatFloat(s.Score, 'f', -1, 64),
			strconv.Itoa(s.Matched),
		}
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(0)
	}
	m.updateViewportContent()
}

func (m *Model) updateViewportContent() {
	if m.prefs.ShowJSON {
		m.viewport.SetContent(highlightJSON(resultJSON(m.result)))
	} else {
		m.viewport.SetContent(m.summary())
	}
	m.viewport.GotoTop()
}

// summary renders the verdict and its matched paths.
func (m Model) summary() string {
	det := m.result.Detection()
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", keyStyle.Render("Engine:"), det.Engine)
	fmt.Fprintf(&b, "%s %s\n", keyStyle.Render("Confidence:"),
		confidenceStyle(det.Confidence).Render(fmt.Sprintf("%s (%s)",
			strconv.FormatFloat(det.Confidence, 'f', -1, 64), report.ConfidenceLabel(det.Confidence))))
	if len(det.Matches) == 0 {
		b.WriteString("\nNo game engine identified\n")
	} else {
		fmt.Fprintf(&b, "\n%s\n", keyStyle.Render(fmt.Sprintf("Matches (%d):", len(det.Matches))))
		for _, p := range det.Matches {
			fmt.Fprintf(&b, "  %s\n", matchStyle.Render(p))
		}
	}
	fmt.Fprintf(&b, "\nFiles listed: %d  |  Scan duration: %.2fs", m.result.FilesListed, m.result.Duration.Seconds())
	if m.result.Cached {
		b.WriteString("  |  cached")
	}
	return b.String()
}

func confidenceStyle(c float64) lipgloss.Style {
	switch {
	case c >= types.ConfidenceHigh:
		return confHighStyle
	case c >= types.ConfidenceMedium:
		return confMedStyle
	default:
		return confLowStyle
	}
}

// selectedScore returns the score row under the cursor.
func (m Model) selectedScore() (types.EngineScore, bool) {
	i := m.table.Cursor()
	scores := m.result.Report.Scores
	if i < 0 || i >= len(scores) {
		return types.EngineScore{}, false
	}
	return scores[i], true
}

func (m *Model) setStatus(s string) {
	timeout := time.Now().Add(3 * time.Second)
	m.statusTimeout = &timeout
	m.statusMessage = s
}

func (m *Model) rescan() tea.Cmd {
	fn := m.rescanFunc
	return func() tea.Msg {
		if fn == nil {
			return statusMsg("Rescan not available")
		}
		res, err := fn()
		if err != nil {
			return statusMsg(fmt.Sprintf("Scan error: %v", err))
		}
		return resultMsg(res)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case spinner.TickMsg:
		if !m.scanning {
			return m, nil
		}
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case resultMsg:
		m.scanning = false
		m.setResult(scan.Result(msg))
		m.setStatus(fmt.Sprintf("Rescanned %d files: %s", msg.FilesListed, msg.Report.Result.Engine))
		return m, nil

	case statusMsg:
		m.scanning = false
		m.setStatus(string(msg))
		return m, nil
	}

	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.statusTimeout != nil && time.Now().After(*m.statusTimeout) {
		m.statusTimeout = nil
		m.statusMessage = defaultStatus
	}

	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.scanning {
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	var cmd tea.Cmd
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "?":
		m.showHelp = true
		return m, nil
	case "v", "tab":
		m.prefs.ShowJSON = !m.prefs.ShowJSON
		m.updateViewportContent()
		if m.savePrefs != nil {
			if err := m.savePrefs(m.prefs); err != nil {
				m.setStatus(fmt.Sprintf("Could not save preferences: %v", err))
				return m, nil
			}
		}
		if m.prefs.ShowJSON {
			m.setStatus("Showing JSON result")
		} else {
			m.setStatus("Showing summary")
		}
		return m, nil
	case "y":
		return m, m.copyResultToClipboard()
	case "Y":
		return m, m.copyMatchesToClipboard()
	case "c":
		return m, m.copyEngineToClipboard()
	case "r":
		if m.rescanFunc == nil {
			m.setStatus("Rescan not available")
			return m, nil
		}
		m.scanning = true
		return m, tea.Batch(m.spinner.Tick, m.rescan())
	case "pgdown", "pgup", "ctrl+d", "ctrl+u", "home", "end":
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) resize() {
	rows := len(m.result.Report.Scores)
	tableHeight := rows + 1
	if maxHeight := m.height / 3; tableHeight > maxHeight && maxHeight > 2 {
		tableHeight = maxHeight
	}
	m.table.SetHeight(tableHeight)

	engineWidth := m.width - 2 - 8 - 8 - 16
	if engineWidth < 16 {
		engineWidth = 16
	}
	m.table.SetColumns([]table.Column{
		{Title: " ", Width: 2},
		{Title: "Engine", Width: engineWidth},
		{Title: "Score", Width: 8},
		{Title: "Matched", Width: 8},
	})

	// title, table border, detail border, status line
	viewportHeight := m.height - tableHeight - 8
	if viewportHeight < 3 {
		viewportHeight = 3
	}
	m.viewport.Width = m.width - 2
	m.viewport.Height = viewportHeight
	statusStyle = statusStyle.Width(m.width)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Initializing..."
	}

	if m.scanning {
		msgContent := fmt.Sprintf("%s  Rescanning %s...\n\nPlease wait", m.spinner.View(), m.result.Target)
		popupBox := popupStyle.
			Width(55).
			Align(lipgloss.Center).
			Render(msgContent)
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, popupBox)
	}

	if m.showHelp {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, popupStyle.Render(helpText()))
	}

	det := m.result.Detection()
	title := titleStyle.Render(fmt.Sprintf("enginesniff  %s", m.result.Target))
	verdict := fmt.Sprintf(" %s  |  %s",
		det.Engine,
		confidenceStyle(det.Confidence).Render(report.ConfidenceLabel(det.Confidence)))
	if sc, ok := m.selectedScore(); ok && sc.Engine != det.Engine {
		verdict += fmt.Sprintf("  |  selected: %s (%s)", sc.Engine, strconv.FormatFloat(sc.Score, 'f', -1, 64))
	}

	tableView := tableBorderStyle.Render(m.table.View())
	detail := detailPaneBorderStyle.
		Width(m.viewport.Width).
		Height(m.viewport.Height).
		Render(m.viewport.View())

	return lipgloss.JoinVertical(lipgloss.Left,
		title+verdict,
		tableView,
		detail,
		statusStyle.Render(m.statusMessage),
	)
}

func helpText() string {
	keys := [][2]string{
		{"j/k, up/down", "move between engines"},
		{"pgup/pgdown", "scroll the detail pane"},
		{"v, tab", "toggle summary / JSON"},
		{"y", "copy JSON result"},
		{"Y", "copy matched paths"},
		{"c", "copy selected engine name"},
		{"r", "rescan"},
		{"q, esc", "quit"},
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Keys") + "\n\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "%-14s %s\n", keyStyle.Render(k[0]), k[1])
	}
	b.WriteString("\nPress any key to close")
	return b.String()
}
