package report

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/term"

	"github.com/scanguard/scanguard/internal/audit"
	"github.com/scanguard/scanguard/internal/health"
	"github.com/scanguard/scanguard/internal/types"
)

type PrintOptions struct {
	NoColor      bool
	Duration     time.Duration
	FilesScanned int
}

// Configure disables color output when requested or when stdout is not a
// terminal (CI pipelines, redirects).
func Configure(noColor bool) {
	if noColor || !term.IsTerminal(int(os.Stdout.Fd())) {
		color.NoColor = true
	}
}

func severityLabel(sev int) string {
	label := fmt.Sprintf("sev:%d", sev)
	switch {
	case sev >= 9:
		return color.New(color.FgRed, color.Bold).Sprint(label)
	case sev >= 7:
		return color.New(color.FgRed).Sprint(label)
	case sev >= 4:
		return color.New(color.FgYellow).Sprint(label)
	default:
		return color.New(color.FgCyan).Sprint(label)
	}
}

func levelLabel(level string) string {
	switch level {
	case types.AlertCritical:
		return color.New(color.FgRed, color.Bold).Sprint(level)
	case types.AlertHigh:
		return color.New(color.FgYellow).Sprint(level)
	default:
		return level
	}
}

// PrintResult writes the findings of one scan with a summary footer.
func PrintResult(w io.Writer, res types.ScanResult, opts PrintOptions) {
	if len(res.Findings) == 0 {
		fmt.Fprintln(w, "No vulnerabilities found")
	} else {
		maxKind := 8
		for _, f := range res.Findings {
			if l := len(f.Kind); l > maxKind {
				maxKind = l
			}
		}
		for _, f := range res.Findings {
			loc := f.Path
			if f.Line > 0 {
				loc = fmt.Sprintf("%s:%d", f.Path, f.Line)
			}
			fmt.Fprintf(w, "%-7s %-*s %s  %s\n", severityLabel(f.Severity), maxKind, f.Kind, loc, f.Description)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Findings: %d  Risk score: %d\n", len(res.Findings), res.RiskScore)
	if res.RequiresPatch && !res.PatchesAvailable {
		fmt.Fprintln(w, levelLabel(types.AlertHigh), "findings require patching but patch generation is unavailable")
	}
	if opts.Duration > 0 {
		fmt.Fprintf(w, "Scan duration: %.2fs\n", opts.Duration.Seconds())
	}
	if opts.FilesScanned > 0 {
		fmt.Fprintf(w, "Files scanned: %d\n", opts.FilesScanned)
	}
}

// PrintPatches writes synthesized remediation actions.
func PrintPatches(w io.Writer, patches []types.PatchDescriptor) {
	if len(patches) == 0 {
		return
	}
	fmt.Fprintln(w, "\nSuggested patches:")
	for _, p := range patches {
		loc := p.Path
		if p.Line > 0 {
			loc = fmt.Sprintf("%s:%d", p.Path, p.Line)
		}
		fmt.Fprintf(w, "  %-18s %s  %s\n", p.Kind, loc, p.Action)
	}
}

// PrintAlerts renders the alert stream as a table.
func PrintAlerts(w io.Writer, alerts []types.Alert) {
	if len(alerts) == 0 {
		fmt.Fprintln(w, "No active alerts")
		return
	}
	table := tablewriter.NewWriter(w)
	table.Header("TIME", "LEVEL", "MESSAGE")
	for _, a := range alerts {
		_ = table.Append([]string{a.Timestamp.Format(time.RFC3339), levelLabel(a.Level), a.Message})
	}
	_ = table.Render()
}

// PrintHistory renders audit records newest-first.
func PrintHistory(w io.Writer, recs []audit.Record) {
	if len(recs) == 0 {
		fmt.Fprintln(w, "No audit history")
		return
	}
	table := tablewriter.NewWriter(w)
	table.Header("TIME", "EVENT", "DETAIL")
	for _, r := range recs {
		detail := ""
		switch r.Event {
		case audit.EventFailover:
			detail = fmt.Sprintf("%s -> %s after %d failures", r.FromScanner, r.ToScanner, r.FailureCount)
		case audit.EventPatch:
			if r.Finding != nil {
				detail = fmt.Sprintf("%s at %s:%d by %s", r.Finding.Kind, r.Finding.Path, r.Finding.Line, r.ActiveScanner)
			}
		}
		_ = table.Append([]string{r.Timestamp.Format(time.RFC3339), r.Event, detail})
	}
	_ = table.Render()
}

// PrintStatus writes the monitor state in a short block.
func PrintStatus(w io.Writer, st health.Status) {
	fmt.Fprintf(w, "State:     %s\n", st.State)
	fmt.Fprintf(w, "Active:    %s (detection %.0f%%)\n", st.Active.Name, st.Active.DetectionRate*100)
	if st.Backup != nil {
		fmt.Fprintf(w, "Backup:    %s\n", st.Backup.Name)
	} else {
		fmt.Fprintf(w, "Backup:    %s\n", levelLabel(types.AlertCritical)+" none configured")
	}
	fmt.Fprintf(w, "Failures:  %d/%d\n", st.Failures, st.Threshold)
	if !st.LastCheck.IsZero() {
		fmt.Fprintf(w, "Last check: %s\n", st.LastCheck.Format(time.RFC3339))
	}
}

// ShouldFail reports whether any finding reaches the fail threshold.
func ShouldFail(res types.ScanResult, minSeverity int) bool {
	if minSeverity <= 0 {
		return false
	}
	for _, f := range res.Findings {
		if f.Severity >= minSeverity {
			return true
		}
	}
	return false
}
