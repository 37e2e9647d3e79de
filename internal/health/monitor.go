package health

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/scanguard/scanguard/internal/types"
)

var (
	// ErrNoBackup is returned by Failover when no backup scanner is
	// configured. Operating past the failover threshold without a backup is
	// the most dangerous state the system can be in; callers must surface
	// this loudly rather than swallow it.
	ErrNoBackup = errors.New("no backup scanner configured")

	// ErrConfig marks a structurally invalid monitor configuration.
	ErrConfig = errors.New("invalid monitor configuration")
)

// State of the failover machine. There is no terminal state; the monitor
// runs for the process lifetime.
type State string

const (
	StatePrimaryActive State = "primary-active"
	StateDegraded      State = "degraded"
	StateFailedOver    State = "failed-over"
)

// Prober performs a liveness check against a scanner backend. An ordinary
// failed or timed-out check returns false with a nil error; a non-nil error
// is reserved for unrecoverable conditions such as a missing endpoint.
type Prober interface {
	Probe(ctx context.Context, target types.ScannerIdentity) (bool, error)
}

// FailoverSink receives the audit event emitted on a successful failover.
type FailoverSink interface {
	LogFailover(from, to types.ScannerIdentity, failures int) error
}

type timeProvider interface {
	Now() time.Time
}

type realTimeProvider struct{}

func (realTimeProvider) Now() time.Time { return time.Now().UTC() }

// Config supplies the monitor's construction-time inputs.
type Config struct {
	Primary           types.ScannerIdentity
	Backup            *types.ScannerIdentity
	FailoverThreshold int
	Prober            Prober
	Audit             FailoverSink // optional
}

// Monitor decides, from a stream of probe outcomes, when the active scanner
// is down and when a previously failed primary may be restored. All state
// transitions are serialized behind one mutex; probes happen outside it.
type Monitor struct {
	mu         sync.Mutex
	active     types.ScannerIdentity
	backup     *types.ScannerIdentity
	failures   int
	threshold  int
	lastCheck  time.Time
	failedOver bool

	prober Prober
	audit  FailoverSink
	clock  timeProvider
}

func NewMonitor(cfg Config) (*Monitor, error) {
	if cfg.Primary.Name == "" {
		return nil, fmt.Errorf("%w: primary scanner identity is empty", ErrConfig)
	}
	if cfg.FailoverThreshold < 1 {
		return nil, fmt.Errorf("%w: failover threshold must be >= 1, got %d", ErrConfig, cfg.FailoverThreshold)
	}
	if cfg.Prober == nil {
		return nil, fmt.Errorf("%w: no prober supplied", ErrConfig)
	}
	if cfg.Backup != nil && cfg.Backup.Name == cfg.Primary.Name {
		return nil, fmt.Errorf("%w: backup scanner equals primary %q", ErrConfig, cfg.Primary.Name)
	}
	var backup *types.ScannerIdentity
	if cfg.Backup != nil {
		b := *cfg.Backup
		backup = &b
	}
	return &Monitor{
		active:    cfg.Primary,
		backup:    backup,
		threshold: cfg.FailoverThreshold,
		prober:    cfg.Prober,
		audit:     cfg.Audit,
		clock:     realTimeProvider{},
	}, nil
}

// Probe checks target's liveness through the injected prober.
func (m *Monitor) Probe(ctx context.Context, target types.ScannerIdentity) (bool, error) {
	return m.prober.Probe(ctx, target)
}

// Check probes the currently active scanner and records the outcome. The
// probe runs outside the state lock; only the counter update is guarded.
func (m *Monitor) Check(ctx context.Context) (bool, error) {
	m.mu.Lock()
	target := m.active
	m.mu.Unlock()

	ok, err := m.prober.Probe(ctx, target)
	if err != nil {
		return false, err
	}
	m.RecordOutcome(ok)
	return ok, nil
}

// RecordOutcome resets the consecutive-failure counter on success and
// increments it on failure. The last-check timestamp updates either way.
func (m *Monitor) RecordOutcome(success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if success {
		m.failures = 0
	} else {
		m.failures++
	}
	m.lastCheck = m.clock.Now()
}

// ShouldFailover reports whether the failure count has reached the
// configured threshold. Pure predicate.
func (m *Monitor) ShouldFailover() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failures >= m.threshold
}

// Failover promotes the backup scanner, swapping it with the active one and
// resetting the failure counter. It fails with ErrNoBackup when no backup is
// configured, leaving state unchanged.
func (m *Monitor) Failover() error {
	_, err := m.failover(false)
	return err
}

// FailoverIfNeeded performs the threshold check and the swap as one
// synchronized transition, so two callers that both observe the threshold
// cannot each swap. Returns whether a failover happened.
func (m *Monitor) FailoverIfNeeded() (bool, error) {
	return m.failover(true)
}

func (m *Monitor) failover(checkThreshold bool) (bool, error) {
	m.mu.Lock()
	if checkThreshold && m.failures < m.threshold {
		m.mu.Unlock()
		return false, nil
	}
	if m.backup == nil {
		m.mu.Unlock()
		return false, ErrNoBackup
	}
	from := m.active
	to := *m.backup
	failures := m.failures

	m.active = to
	m.backup = &from
	m.failures = 0
	m.failedOver = true
	m.mu.Unlock()

	if m.audit != nil {
		if err := m.audit.LogFailover(from, to, failures); err != nil {
			return true, fmt.Errorf("failover activated but audit write failed: %w", err)
		}
	}
	return true, nil
}

// AttemptRestore probes original and, if healthy, reinstates it as the
// active scanner, clearing the backup slot and the failure counter. When the
// probe fails the monitor state is left untouched.
func (m *Monitor) AttemptRestore(ctx context.Context, original types.ScannerIdentity) (bool, error) {
	ok, err := m.prober.Probe(ctx, original)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	m.mu.Lock()
	m.active = original
	m.backup = nil
	m.failures = 0
	m.failedOver = false
	m.lastCheck = m.clock.Now()
	m.mu.Unlock()
	return true, nil
}

// State derives the machine state from the counters.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case m.failedOver:
		return StateFailedOver
	case m.failures > 0:
		return StateDegraded
	default:
		return StatePrimaryActive
	}
}

// Status is a point-in-time copy of the monitor state for reporting.
type Status struct {
	State     State                  `json:"state"`
	Active    types.ScannerIdentity  `json:"active"`
	Backup    *types.ScannerIdentity `json:"backup,omitempty"`
	Failures  int                    `json:"consecutive_failures"`
	Threshold int                    `json:"failover_threshold"`
	LastCheck time.Time              `json:"last_check"`
}

func (m *Monitor) Status() Status {
	state := m.State()
	m.mu.Lock()
	defer m.mu.Unlock()
	var backup *types.ScannerIdentity
	if m.backup != nil {
		b := *m.backup
		backup = &b
	}
	return Status{
		State:     state,
		Active:    m.active,
		Backup:    backup,
		Failures:  m.failures,
		Threshold: m.threshold,
		LastCheck: m.lastCheck,
	}
}

// Active returns the currently active scanner identity.
func (m *Monitor) Active() types.ScannerIdentity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}
