package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/enginesniff/enginesniff/internal/classify"
	"github.com/enginesniff/enginesniff/internal/scan"
	"github.com/enginesniff/enginesniff/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func godotResult() scan.Result {
	return scan.Result{
		Source: scan.SourceDir,
		Target: "games/demo",
		Report: classify.Report{
			Result: types.DetectionResult{
				Engine:     "Godot",
				Confidence: 0.8,
				Matches:    []string{"project.godot", "Game/data.pck"},
			},
			Scores: []types.EngineScore{
				{Engine: types.Unknown},
				{Engine: "Unity"},
				{Engine: "Godot", Score: 4, Matched: 2},
			},
		},
		FilesListed: 12,
		Duration:    150 * time.Millisecond,
	}
}

func newTestModel(t *testing.T, res scan.Result, rescan func() (scan.Result, error)) Model {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	m := NewModel(res, rescan)
	m.savePrefs = nil
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewModel_Rows(t *testing.T) {
	m := newTestModel(t, godotResult(), nil)
	rows := m.table.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, "Unknown", rows[0][1])
	assert.Equal(t, "", rows[0][0])
	assert.Equal(t, "*", rows[2][0])
	assert.Equal(t, "4", rows[2][2])
	assert.Equal(t, "2", rows[2][3])
}

func TestNewModel_UnknownHasNoMarker(t *testing.T) {
	res := scan.Result{Report: classify.Report{
		Result: types.DetectionResult{Engine: types.Unknown},
		Scores: []types.EngineScore{{Engine: types.Unknown}, {Engine: "Unity"}},
	}}
	m := newTestModel(t, res, nil)
	for _, r := range m.table.Rows() {
		assert.Empty(t, r[0])
	}
	assert.Contains(t, m.summary(), "No game engine identified")
}

func TestSummary(t *testing.T) {
	m := newTestModel(t, godotResult(), nil)
	s := m.summary()
	assert.Contains(t, s, "Godot")
	assert.Contains(t, s, "0.8 (medium)")
	assert.Contains(t, s, "Matches (2):")
	assert.Contains(t, s, "project.godot")
	assert.Contains(t, s, "Files listed: 12")
}

func TestNavigate(t *testing.T) {
	m := newTestModel(t, godotResult(), nil)
	assert.Equal(t, 0, m.table.Cursor())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.table.Cursor())

	sc, ok := m.selectedScore()
	require.True(t, ok)
	assert.Equal(t, "Unity", sc.Engine)
}

func TestQuit(t *testing.T) {
	m := newTestModel(t, godotResult(), nil)
	m, cmd := update(t, m, key("q"))
	require.NotNil(t, cmd)
	assert.True(t, m.quitting)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestToggleJSON(t *testing.T) {
	m := newTestModel(t, godotResult(), nil)
	var saved []Prefs
	m.savePrefs = func(p Prefs) error {
		saved = append(saved, p)
		return nil
	}

	m, _ = update(t, m, key("v"))
	assert.True(t, m.prefs.ShowJSON)
	assert.Equal(t, "Showing JSON result", m.statusMessage)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.False(t, m.prefs.ShowJSON)
	require.Len(t, saved, 2)
	assert.True(t, saved[0].ShowJSON)
	assert.False(t, saved[1].ShowJSON)
}

func TestToggleJSON_SaveError(t *testing.T) {
	m := newTestModel(t, godotResult(), nil)
	m.savePrefs = func(Prefs) error { return errors.New("read-only") }

	m, _ = update(t, m, key("v"))
	assert.True(t, m.prefs.ShowJSON)
	assert.Contains(t, m.statusMessage, "read-only")
}

func TestCopyResult(t *testing.T) {
	var got string
	orig := writeClipboard
	writeClipboard = func(s string) error { got = s; return nil }
	defer func() { writeClipboard = orig }()

	m := newTestModel(t, godotResult(), nil)
	_, cmd := update(t, m, key("y"))
	require.NotNil(t, cmd)
	assert.Equal(t, statusMsg("Copied JSON result"), cmd())
	assert.Contains(t, got, `"engine": "Godot"`)
	assert.Contains(t, got, `"scores"`)
}

func TestCopyMatches(t *testing.T) {
	var got string
	orig := writeClipboard
	writeClipboard = func(s string) error { got = s; return nil }
	defer func() { writeClipboard = orig }()

	m := newTestModel(t, godotResult(), nil)
	_, cmd := update(t, m, key("Y"))
	assert.Equal(t, statusMsg("Copied 2 matched paths"), cmd())
	assert.Equal(t, "project.godot\nGame/data.pck", got)

	empty := newTestModel(t, scan.Result{}, nil)
	_, cmd = update(t, empty, key("Y"))
	assert.Equal(t, statusMsg("No matches to copy"), cmd())
}

func TestCopyEngine_ClipboardError(t *testing.T) {
	orig := writeClipboard
	writeClipboard = func(string) error { return errors.New("no display") }
	defer func() { writeClipboard = orig }()

	m := newTestModel(t, godotResult(), nil)
	_, cmd := update(t, m, key("c"))
	assert.Equal(t, statusMsg("Clipboard error: no display"), cmd())

	m, _ = update(t, m, cmd())
	assert.Equal(t, "Clipboard error: no display", m.statusMessage)
}

func TestRescan_Unavailable(t *testing.T) {
	m := newTestModel(t, godotResult(), nil)
	m, cmd := update(t, m, key("r"))
	assert.Nil(t, cmd)
	assert.False(t, m.scanning)
	assert.Equal(t, "Rescan not available", m.statusMessage)
}

func TestRescan(t *testing.T) {
	next := godotResult()
	next.Report.Result = types.DetectionResult{Engine: "Unity", Confidence: 1, Matches: []string{"a.unity3d"}}
	next.Report.Scores = []types.EngineScore{{Engine: types.Unknown}, {Engine: "Unity", Score: 5, Matched: 1}}
	next.FilesListed = 3

	m := newTestModel(t, godotResult(), func() (scan.Result, error) { return next, nil })
	m, cmd := update(t, m, key("r"))
	require.NotNil(t, cmd)
	assert.True(t, m.scanning)

	// keys other than ctrl+c are ignored while scanning
	m, _ = update(t, m, key("q"))
	assert.False(t, m.quitting)

	m, _ = update(t, m, resultMsg(next))
	assert.False(t, m.scanning)
	assert.Equal(t, "Unity", m.result.Detection().Engine)
	assert.Len(t, m.table.Rows(), 2)
	assert.Equal(t, "Rescanned 3 files: Unity", m.statusMessage)
}

func TestRescan_Error(t *testing.T) {
	m := newTestModel(t, godotResult(), func() (scan.Result, error) {
		return scan.Result{}, errors.New("gone")
	})
	msg := m.rescan()()
	assert.Equal(t, statusMsg("Scan error: gone"), msg)

	m.scanning = true
	m, _ = update(t, m, msg)
	assert.False(t, m.scanning)
	assert.Equal(t, "Godot", m.result.Detection().Engine)
}

func TestHelp(t *testing.T) {
	m := newTestModel(t, godotResult(), nil)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	m, _ = update(t, m, key("?"))
	assert.True(t, m.showHelp)
	assert.Contains(t, m.View(), "copy matched paths")

	m, _ = update(t, m, key("x"))
	assert.False(t, m.showHelp)
}

func TestView(t *testing.T) {
	m := newTestModel(t, godotResult(), nil)
	assert.Equal(t, "Initializing...", m.View())

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	out := m.View()
	assert.Contains(t, out, "games/demo")
	assert.Contains(t, out, "Godot")
	assert.Contains(t, out, "Unity")
	assert.Equal(t, 100-2, m.viewport.Width)

	m.scanning = true
	assert.Contains(t, m.View(), "Rescanning games/demo")
}

func TestHighlightJSON(t *testing.T) {
	out := highlightJSON(`{"engine": "Godot"}`)
	assert.NotEmpty(t, out)
	assert.Contains(t, out, "Godot")
}

func TestPrefs_SaveAndLoad(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	assert.Equal(t, DefaultPrefs(), LoadPrefs())

	require.NoError(t, SavePrefs(Prefs{ShowJSON: true}))
	_, err := os.Stat(filepath.Join(home, ".enginesniff", "tui_prefs.json"))
	require.NoError(t, err)
	assert.True(t, LoadPrefs().ShowJSON)

	m := NewModel(godotResult(), nil)
	assert.True(t, m.prefs.ShowJSON)
}

func TestPrefs_CorruptFileFallsBack(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := filepath.Join(home, ".enginesniff")
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tui_prefs.json"), []byte("{not json"), 0600))

	assert.False(t, LoadPrefs().ShowJSON)
}

func TestHelpText_ListsKeys(t *testing.T) {
	h := helpText()
	for _, k := range []string{"rescan", "quit", "toggle summary / JSON"} {
		assert.True(t, strings.Contains(h, k), k)
	}
}
