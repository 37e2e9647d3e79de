package audit

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/scanguard/scanguard/internal/types"
)

// EventFailover and EventPatch are the two record shapes written to the log.
// The field sets below are guaranteed present for their event type; storage
// is one JSON object per line.
const (
	EventFailover = "FAILOVER_ACTIVATED"
	EventPatch    = "PATCH_GENERATED"
)

// Record is the flat on-disk superset of both event shapes.
type Record struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Event     string    `json:"event"`

	// Failover fields
	FromScanner  string `json:"from_scanner,omitempty"`
	ToScanner    string `json:"to_scanner,omitempty"`
	FailureCount int    `json:"failure_count,omitempty"`

	// Patch fields
	Finding       *types.Finding         `json:"finding,omitempty"`
	Patch         *types.PatchDescriptor `json:"patch,omitempty"`
	ActiveScanner string                 `json:"active_scanner,omitempty"`
}

type Log struct {
	logPath string
}

// NewLog stores the audit log under .git when present to avoid accidental
// commits, falling back to a dotfile at the root.
func NewLog(root string) *Log {
	gitDir := filepath.Join(root, ".git")
	logPath := filepath.Join(root, ".scanguard_audit.jsonl")
	if st, err := os.Stat(gitDir); err == nil && st.IsDir() {
		logPath = filepath.Join(gitDir, "scanguard_audit.jsonl")
	}
	return &Log{logPath: logPath}
}

// LogFailover appends a failover event. The failure count is the counter
// value at the moment of the swap, before it was reset.
func (a *Log) LogFailover(from, to types.ScannerIdentity, failures int) error {
	return a.append(Record{
		ID:           uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		Event:        EventFailover,
		FromScanner:  from.Name,
		ToScanner:    to.Name,
		FailureCount: failures,
	})
}

// LogPatch appends a patch-generation event.
func (a *Log) LogPatch(finding types.Finding, patch types.PatchDescriptor, active types.ScannerIdentity) error {
	return a.append(Record{
		ID:            uuid.NewString(),
		Timestamp:     time.Now().UTC(),
		Event:         EventPatch,
		Finding:       &finding,
		Patch:         &patch,
		ActiveScanner: active.Name,
	})
}

func (a *Log) append(rec Record) error {
	// Owner-only: audit records carry finding detail
	f, err := os.OpenFile(a.logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(rec); err != nil {
		return fmt.Errorf("failed to write audit record: %w", err)
	}
	return nil
}

// LoadHistory returns all records, newest first. Malformed lines are skipped.
func (a *Log) LoadHistory() ([]Record, error) {
	f, err := os.Open(a.logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	var records []Record
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return records, fmt.Errorf("failed to read audit log: %w", err)
	}

	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}
