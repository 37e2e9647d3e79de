package audit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/scanguard/scanguard/internal/types"
)

func TestFailoverRoundTrip(t *testing.T) {
	dir := t.TempDir()
	log := NewLog(dir)

	primary := types.ScannerIdentity{Name: "securereview-7"}
	backup := types.ScannerIdentity{Name: "deepseek-v3"}
	if err := log.LogFailover(primary, backup, 3); err != nil {
		t.Fatal(err)
	}

	recs, err := log.LoadHistory()
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	r := recs[0]
	if r.Event != EventFailover || r.FromScanner != "securereview-7" || r.ToScanner != "deepseek-v3" || r.FailureCount != 3 {
		t.Fatalf("unexpected record: %+v", r)
	}
	if r.ID == "" || r.Timestamp.IsZero() {
		t.Fatalf("missing id or timestamp: %+v", r)
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	dir := t.TempDir()
	log := NewLog(dir)

	a := types.ScannerIdentity{Name: "a"}
	b := types.ScannerIdentity{Name: "b"}
	if err := log.LogFailover(a, b, 3); err != nil {
		t.Fatal(err)
	}
	f := types.Finding{Kind: types.KindXSS, Severity: types.SeverityXSS, Path: "x.js", Line: 2}
	p := types.PatchDescriptor{Kind: types.KindXSS, Action: "Sanitize user input before rendering", Path: "x.js", Line: 2}
	if err := log.LogPatch(f, p, b); err != nil {
		t.Fatal(err)
	}

	recs, err := log.LoadHistory()
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].Event != EventPatch {
		t.Fatalf("expected newest (patch) first, got %s", recs[0].Event)
	}
	if recs[0].Finding == nil || recs[0].Patch == nil || recs[0].ActiveScanner != "b" {
		t.Fatalf("patch record incomplete: %+v", recs[0])
	}
}

func TestHistorySkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	log := NewLog(dir)

	a := types.ScannerIdentity{Name: "a"}
	b := types.ScannerIdentity{Name: "b"}
	if err := log.LogFailover(a, b, 1); err != nil {
		t.Fatal(err)
	}
	// corrupt line in the middle must not truncate what follows
	f, err := os.OpenFile(filepath.Join(dir, ".scanguard_audit.jsonl"), os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("{truncated\n"); err != nil {
		t.Fatal(err)
	}
	f.Close()
	if err := log.LogFailover(b, a, 2); err != nil {
		t.Fatal(err)
	}

	recs, err := log.LoadHistory()
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records around the corrupt line, got %d", len(recs))
	}
	if recs[0].FailureCount != 2 || recs[1].FailureCount != 1 {
		t.Fatalf("unexpected order: %+v", recs)
	}
}

func TestLogPatchUnwritableRoot(t *testing.T) {
	log := NewLog(filepath.Join(t.TempDir(), "does-not-exist"))
	f := types.Finding{Kind: types.KindXSS, Severity: types.SeverityXSS}
	p := types.PatchDescriptor{Kind: types.KindXSS, Action: "Sanitize user input before rendering"}
	if err := log.LogPatch(f, p, types.ScannerIdentity{Name: "a"}); err == nil {
		t.Fatal("expected error writing to a missing root")
	}
}
