package health

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scanguard/scanguard/internal/types"
)

type fakeProber struct {
	healthy map[string]bool
	err     error
	probes  int
}

func (f *fakeProber) Probe(_ context.Context, target types.ScannerIdentity) (bool, error) {
	f.probes++
	if f.err != nil {
		return false, f.err
	}
	return f.healthy[target.Name], nil
}

type recordingSink struct {
	events []struct {
		from, to string
		failures int
	}
}

func (r *recordingSink) LogFailover(from, to types.ScannerIdentity, failures int) error {
	r.events = append(r.events, struct {
		from, to string
		failures int
	}{from.Name, to.Name, failures})
	return nil
}

var (
	primary = types.ScannerIdentity{Name: "securereview-7", DetectionRate: 0.97, PatchGeneration: true, ZeroDayDetection: true}
	backup  = types.ScannerIdentity{Name: "deepseek-v3", DetectionRate: 0.81}
)

func newTestMonitor(t *testing.T, threshold int, withBackup bool, sink FailoverSink, prober Prober) *Monitor {
	t.Helper()
	cfg := Config{Primary: primary, FailoverThreshold: threshold, Prober: prober, Audit: sink}
	if withBackup {
		b := backup
		cfg.Backup = &b
	}
	m, err := NewMonitor(cfg)
	require.NoError(t, err)
	return m
}

func TestNewMonitorValidation(t *testing.T) {
	p := &fakeProber{}
	cases := []struct {
		name string
		cfg  Config
	}{
		{"empty identity", Config{FailoverThreshold: 3, Prober: p}},
		{"zero threshold", Config{Primary: primary, FailoverThreshold: 0, Prober: p}},
		{"nil prober", Config{Primary: primary, FailoverThreshold: 3}},
		{"backup equals primary", Config{Primary: primary, Backup: &primary, FailoverThreshold: 3, Prober: p}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewMonitor(tc.cfg)
			require.ErrorIs(t, err, ErrConfig)
		})
	}
}

func TestFailureCountTracksTrailingRun(t *testing.T) {
	m := newTestMonitor(t, 100, false, nil, &fakeProber{})
	outcomes := []bool{false, false, true, false, true, false, false, false}
	for _, ok := range outcomes {
		m.RecordOutcome(ok)
	}
	// trailing run of failures is 3
	assert.Equal(t, 3, m.Status().Failures)

	m.RecordOutcome(true)
	assert.Equal(t, 0, m.Status().Failures)
}

func TestShouldFailoverThresholds(t *testing.T) {
	for _, threshold := range []int{1, 3, 100} {
		m := newTestMonitor(t, threshold, false, nil, &fakeProber{})
		for i := 0; i < threshold-1; i++ {
			m.RecordOutcome(false)
			assert.False(t, m.ShouldFailover(), "threshold %d: premature after %d failures", threshold, i+1)
		}
		m.RecordOutcome(false)
		assert.True(t, m.ShouldFailover(), "threshold %d", threshold)
	}
}

func TestFailoverWithoutBackup(t *testing.T) {
	m := newTestMonitor(t, 1, false, nil, &fakeProber{})
	m.RecordOutcome(false)

	before := m.Status()
	err := m.Failover()
	require.ErrorIs(t, err, ErrNoBackup)
	assert.Equal(t, before, m.Status(), "state must be unchanged after failed failover")
}

func TestFailoverSwapsIdentities(t *testing.T) {
	sink := &recordingSink{}
	m := newTestMonitor(t, 3, true, sink, &fakeProber{})
	for i := 0; i < 3; i++ {
		m.RecordOutcome(false)
	}
	require.NoError(t, m.Failover())

	st := m.Status()
	assert.Equal(t, backup.Name, st.Active.Name)
	require.NotNil(t, st.Backup)
	assert.Equal(t, primary.Name, st.Backup.Name)
	assert.Equal(t, 0, st.Failures)
	assert.Equal(t, StateFailedOver, st.State)

	require.Len(t, sink.events, 1)
	assert.Equal(t, primary.Name, sink.events[0].from)
	assert.Equal(t, backup.Name, sink.events[0].to)
	assert.Equal(t, 3, sink.events[0].failures)
}

func TestFailoverIfNeededBelowThreshold(t *testing.T) {
	sink := &recordingSink{}
	m := newTestMonitor(t, 3, true, sink, &fakeProber{})
	m.RecordOutcome(false)
	m.RecordOutcome(false)

	swapped, err := m.FailoverIfNeeded()
	require.NoError(t, err)
	assert.False(t, swapped)
	assert.Equal(t, primary.Name, m.Active().Name)
	assert.Empty(t, sink.events)
}

func TestFailoverIfNeededWithoutBackup(t *testing.T) {
	m := newTestMonitor(t, 1, false, nil, &fakeProber{})
	m.RecordOutcome(false)

	swapped, err := m.FailoverIfNeeded()
	require.ErrorIs(t, err, ErrNoBackup)
	assert.False(t, swapped)
	assert.Equal(t, primary.Name, m.Active().Name)
}

func TestFailoverIfNeededSwapsExactlyOnce(t *testing.T) {
	sink := &recordingSink{}
	m := newTestMonitor(t, 1, true, sink, &fakeProber{})
	m.RecordOutcome(false)

	// concurrent callers that both observed the threshold must not both swap:
	// a second swap would reinstate the unhealthy primary
	var wg sync.WaitGroup
	swaps := make([]bool, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			swapped, err := m.FailoverIfNeeded()
			assert.NoError(t, err)
			swaps[i] = swapped
		}(i)
	}
	wg.Wait()

	assert.NotEqual(t, swaps[0], swaps[1], "exactly one caller must perform the swap")
	st := m.Status()
	assert.Equal(t, backup.Name, st.Active.Name, "unhealthy primary must not be reinstated")
	assert.Equal(t, StateFailedOver, st.State)
	require.Len(t, sink.events, 1, "exactly one audit event")
	assert.Equal(t, primary.Name, sink.events[0].from)
	assert.Equal(t, backup.Name, sink.events[0].to)
}

func TestAttemptRestore(t *testing.T) {
	prober := &fakeProber{healthy: map[string]bool{}}
	m := newTestMonitor(t, 1, true, nil, prober)
	m.RecordOutcome(false)
	require.NoError(t, m.Failover())

	// primary still down: no change
	ok, err := m.AttemptRestore(context.Background(), primary)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, StateFailedOver, m.State())
	assert.Equal(t, backup.Name, m.Active().Name)

	// primary recovered: full restore
	prober.healthy[primary.Name] = true
	ok, err = m.AttemptRestore(context.Background(), primary)
	require.NoError(t, err)
	assert.True(t, ok)

	st := m.Status()
	assert.Equal(t, primary.Name, st.Active.Name)
	assert.Nil(t, st.Backup)
	assert.Equal(t, 0, st.Failures)
	assert.Equal(t, StatePrimaryActive, st.State)
}

func TestCheckRecordsOutcome(t *testing.T) {
	prober := &fakeProber{healthy: map[string]bool{primary.Name: false}}
	m := newTestMonitor(t, 3, true, nil, prober)

	ok, err := m.Check(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, m.Status().Failures)
	assert.Equal(t, StateDegraded, m.State())
	assert.False(t, m.Status().LastCheck.IsZero())

	prober.healthy[primary.Name] = true
	ok, err = m.Check(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, m.Status().Failures)
	assert.Equal(t, StatePrimaryActive, m.State())
}

func TestCheckPropagatesProberError(t *testing.T) {
	boom := errors.New("endpoint not configured")
	m := newTestMonitor(t, 3, false, nil, &fakeProber{err: boom})
	_, err := m.Check(context.Background())
	require.ErrorIs(t, err, boom)
	// unrecoverable probe errors are not counted as outcomes
	assert.Equal(t, 0, m.Status().Failures)
}

func TestEndToEndFailoverAtThreshold(t *testing.T) {
	prober := &fakeProber{healthy: map[string]bool{primary.Name: false}}
	sink := &recordingSink{}
	m := newTestMonitor(t, 3, true, sink, prober)

	for i := 1; i <= 3; i++ {
		_, err := m.Check(context.Background())
		require.NoError(t, err)
		if i < 3 {
			assert.False(t, m.ShouldFailover(), "should not trip before third failure")
		}
	}
	require.True(t, m.ShouldFailover())
	require.NoError(t, m.Failover())
	assert.Len(t, sink.events, 1, "exactly one audit event per failover")
}
