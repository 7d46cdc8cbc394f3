package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enginesniff/enginesniff/internal/types"
)

func TestNewAuditLog_Location(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, filepath.Join(dir, ".enginesniff_audit.jsonl"), NewAuditLog(dir).Path())

	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
	assert.Equal(t, filepath.Join(dir, ".git", "enginesniff_audit.jsonl"), NewAuditLog(dir).Path())
}

func TestLogScan_RoundTripNewestFirst(t *testing.T) {
	log := NewAuditLog(t.TempDir())
	for i, engine := range []string{"Unity", "Godot"} {
		rec := CreateScanRecord("game", "dir", types.DetectionResult{Engine: engine, Confidence: 0.8, Matches: []string{"a"}}, 3, time.Second)
		rec.ScanID = fmt.Sprintf("scan_%d", i)
		require.NoError(t, log.LogScan(rec))
	}
	records, err := log.LoadHistory()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Godot", records[0].Engine)
	assert.Equal(t, "scan_0", records[1].ScanID)
	assert.Equal(t, 3, records[1].FilesListed)
	assert.Equal(t, "1s", records[1].Duration)
}

func TestLogScan_AssignsID(t *testing.T) {
	log := NewAuditLog(t.TempDir())
	require.NoError(t, log.LogScan(ScanRecord{Timestamp: time.Unix(42, 0), Engine: types.Unknown}))
	records, err := log.LoadHistory()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, fmt.Sprintf("scan_%d", time.Unix(42, 0).UnixNano()), records[0].ScanID)
}

func TestCreateScanRecord_CapsMatches(t *testing.T) {
	matches := make([]string, 25)
	for i := range matches {
		matches[i] = fmt.Sprintf("f%d.rpy", i)
	}
	rec := CreateScanRecord("vn", "archive", types.DetectionResult{Engine: "Ren'Py", Confidence: 1, Matches: matches}, 25, 0)
	assert.Equal(t, 25, rec.MatchCount)
	assert.Len(t, rec.TopMatches, maxStoredMatches)
	assert.Equal(t, "archive", rec.Source)
}

func TestLoadHistory_Missing(t *testing.T) {
	_, err := NewAuditLog(t.TempDir()).LoadHistory()
	assert.Error(t, err)
}

func TestLoadHistory_SkipsCorruptLines(t *testing.T) {
	log := NewAuditLog(t.TempDir())
	rec := CreateScanRecord("game", "dir", types.DetectionResult{Engine: "Unity", Confidence: 1}, 1, time.Second)
	rec.ScanID = "first"
	require.NoError(t, log.LogScan(rec))

	f, err := os.OpenFile(log.Path(), os.O_APPEND|os.O_WRONLY, 0o600)
	require.NoError(t, err)
	_, err = f.WriteString("{\"scan_id\": \"trunc\n\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	rec.ScanID = "last"
	rec.Engine = "Godot"
	require.NoError(t, log.LogScan(rec))

	records, err := log.LoadHistory()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "last", records[0].ScanID)
	assert.Equal(t, "Godot", records[0].Engine)
	assert.Equal(t, "first", records[1].ScanID)
}
