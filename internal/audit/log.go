package audit

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/enginesniff/enginesniff/internal/types"
)

// maxStoredMatches caps the matches copied into a record.
const maxStoredMatches = 10

type ScanRecord struct {
	Timestamp   time.Time `json:"timestamp"`
	ScanID      string    `json:"scan_id"`
	Target      string    `json:"target"`
	Source      string    `json:"source"`
	Engine      string    `json:"engine"`
	Confidence  float64   `json:"confidence"`
	MatchCount  int       `json:"match_count"`
	TopMatches  []string  `json:"top_matches,omitempty"`
	FilesListed int       `json:"files_listed"`
	Duration    string    `json:"duration"`
	Repo        string    `json:"repo,omitempty"`
	Commit      string    `json:"commit,omitempty"`
	Branch      string    `json:"branch,omitempty"`
}

type AuditLog struct {
	logPath string
}

func NewAuditLog(root string) *AuditLog {
	gitDir := filepath.Join(root, ".git")
	logPath := filepath.Join(root, ".enginesniff_audit.jsonl")
	if st, err := os.Stat(gitDir); err == nil && st.IsDir() {
		logPath = filepath.Join(gitDir, "enginesniff_audit.jsonl")
	}
	return &AuditLog{logPath: logPath}
}

// Path returns the log file location.
func (a *AuditLog) Path() string { return a.logPath }

// LoadHistory returns all records, newest first. Corrupt lines are skipped.
func (a *AuditLog) LoadHistory() ([]ScanRecord, error) {
	f, err := os.Open(a.logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	var records []ScanRecord
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var record ScanRecord
		if err := json.Unmarshal(line, &record); err != nil {
			continue
		}
		records = append(records, record)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}

	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

func (a *AuditLog) LogScan(record ScanRecord) error {
	if record.ScanID == "" {
		record.ScanID = fmt.Sprintf("scan_%d", record.Timestamp.UnixNano())
	}
	f, err := os.OpenFile(a.logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(record); err != nil {
		return fmt.Errorf("failed to write audit record: %w", err)
	}
	return nil
}

func CreateScanRecord(target, source string, res types.DetectionResult, filesListed int, duration time.Duration) ScanRecord {
	top := res.Matches
	if len(top) > maxStoredMatches {
		top = top[:maxStoredMatches]
	}
	return ScanRecord{
		Timestamp:   time.Now(),
		Target:      target,
		Source:      source,
		Engine:      res.Engine,
		Confidence:  res.Confidence,
		MatchCount:  len(res.Matches),
		TopMatches:  append([]string(nil), top...),
		FilesListed: filesListed,
		Duration:    duration.String(),
	}
}
