package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/scanguard/scanguard/internal/detectors"
	"github.com/scanguard/scanguard/internal/types"
)

// ErrConfig marks a structurally invalid engine configuration.
var ErrConfig = errors.New("invalid engine configuration")

type timeProvider interface {
	Now() time.Time
}

type realTimeProvider struct{}

func (realTimeProvider) Now() time.Time { return time.Now().UTC() }

// ScanContext carries per-unit metadata into an analysis pass.
type ScanContext struct {
	Path     string
	Language string
}

// PatchRecord is the in-process audit entry appended on each synthesized patch.
type PatchRecord struct {
	ID            string                `json:"id"`
	Timestamp     time.Time             `json:"timestamp"`
	Finding       types.Finding         `json:"finding"`
	Patch         types.PatchDescriptor `json:"patch"`
	ActiveScanner string                `json:"active_scanner"`
}

// Options supplies the engine's construction-time inputs.
type Options struct {
	// Identity is the scanner the engine reports as active.
	Identity types.ScannerIdentity
	// ExpectedPrimary is the identity name the engine expects to be running
	// as. A mismatch raises a critical alert on every Alerts call.
	ExpectedPrimary string
	PatchGeneration bool
	AutoRemediation bool
}

// Engine analyzes source text with the fixed detector battery and, when
// enabled, synthesizes remediation patches. Analysis is stateless and safe
// for unlimited concurrent use; flag reads and history appends are
// serialized behind the mutex.
type Engine struct {
	mu              sync.Mutex
	identity        types.ScannerIdentity
	expectedPrimary string
	active          bool
	patchGeneration bool
	autoRemediation bool
	history         []PatchRecord
	clock           timeProvider
}

func New(opts Options) (*Engine, error) {
	if opts.Identity.Name == "" {
		return nil, fmt.Errorf("%w: scanner identity is empty", ErrConfig)
	}
	expected := opts.ExpectedPrimary
	if expected == "" {
		expected = opts.Identity.Name
	}
	return &Engine{
		identity:        opts.Identity,
		expectedPrimary: expected,
		active:          true,
		patchGeneration: opts.PatchGeneration,
		autoRemediation: opts.AutoRemediation,
		clock:           realTimeProvider{},
	}, nil
}

// Analyze runs the detector battery over one unit of source text. It never
// fails: empty or unparseable input degrades to an empty finding list.
func (e *Engine) Analyze(source string, sctx ScanContext) types.ScanResult {
	findings := detectors.RunAll(sctx.Path, []byte(source))
	return e.compose(findings)
}

// compose builds a ScanResult from findings in detection order. Risk is the
// raw severity sum, uncapped; callers interpret magnitude.
func (e *Engine) compose(findings []types.Finding) types.ScanResult {
	risk := 0
	for _, f := range findings {
		risk += f.Severity
	}
	return types.ScanResult{
		Findings:         findings,
		RiskScore:        risk,
		RequiresPatch:    len(findings) > 0,
		PatchesAvailable: e.patchGenerationEnabled(),
	}
}

func (e *Engine) patchGenerationEnabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.patchGeneration
}

// Alerts derives the current alert stream from engine flags. The identity
// comparison runs on every call so an unexpected scanner swap is caught even
// after the first report.
func (e *Engine) Alerts() []types.Alert {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.clock.Now()

	var alerts []types.Alert
	if !e.active {
		alerts = append(alerts, types.Alert{
			Level:     types.AlertCritical,
			Message:   "security scanning is disabled",
			Timestamp: now,
		})
	}
	if !e.patchGeneration {
		alerts = append(alerts, types.Alert{
			Level:     types.AlertHigh,
			Message:   "automatic patch generation is disabled",
			Timestamp: now,
		})
	}
	if e.identity.Name != e.expectedPrimary {
		alerts = append(alerts, types.Alert{
			Level:     types.AlertCritical,
			Message:   fmt.Sprintf("active scanner changed from %s to %s", e.expectedPrimary, e.identity.Name),
			Timestamp: now,
		})
	}
	return alerts
}

// SetIdentity updates the scanner the engine reports as active. Callers use
// this after a failover or restore.
func (e *Engine) SetIdentity(id types.ScannerIdentity) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.identity = id
}

// Identity returns the scanner the engine currently reports as active.
func (e *Engine) Identity() types.ScannerIdentity {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.identity
}

// History returns a copy of the in-process patch audit trail.
func (e *Engine) History() []PatchRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]PatchRecord, len(e.history))
	copy(out, e.history)
	return out
}

// Shutdown deactivates the engine. Idempotent, and irreversible for this
// instance: resuming requires constructing a fresh engine.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.active = false
	e.patchGeneration = false
	e.autoRemediation = false
}

// appendHistory records one synthesized patch; called from SynthesizePatch.
func (e *Engine) appendHistory(f types.Finding, p types.PatchDescriptor) {
	e.history = append(e.history, PatchRecord{
		ID:            uuid.NewString(),
		Timestamp:     e.clock.Now(),
		Finding:       f,
		Patch:         p,
		ActiveScanner: e.identity.Name,
	})
}
