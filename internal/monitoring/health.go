package monitoring

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// ProbeStatus encodes the outcome of a health probe.
type ProbeStatus string

const (
	StatusUp       ProbeStatus = "up"
	StatusDown     ProbeStatus = "down"
	StatusDegraded ProbeStatus = "degraded"
)

// severity orders statuses so the worst one wins.
func (s ProbeStatus) severity() int {
	switch s {
	case StatusUp:
		return 0
	case StatusDegraded:
		return 1
	default:
		return 2
	}
}

// ProbeResult captures a single dependency check outcome.
type ProbeResult struct {
	Component string      `json:"component"`
	Status    ProbeStatus `json:"status"`
	Details   string      `json:"details,omitempty"`
	LatencyMS int64       `json:"latency_ms"`
}

// Report aggregates probe results.
type Report struct {
	Status ProbeStatus   `json:"status"`
	Checks []ProbeResult `json:"checks"`
}

// Healthy reports whether every probe is up.
func (r Report) Healthy() bool {
	return r.Status == StatusUp
}

// ProbeFunc performs one dependency check. A nil error means the component is up.
type ProbeFunc func(ctx context.Context) error

// Check is a named probe.
type Check struct {
	Name  string
	Probe ProbeFunc
}

// HealthManager runs liveness and readiness probes.
type HealthManager struct {
	mu        sync.RWMutex
	liveness  []Check
	readiness []Check
	timeout   time.Duration
}

// NewHealthManager constructs a manager whose probes are bounded by timeout.
func NewHealthManager(timeout time.Duration) *HealthManager {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HealthManager{timeout: timeout}
}

// RegisterLiveness appends a liveness probe.
func (m *HealthManager) RegisterLiveness(check Check) {
	if check.Name == "" || check.Probe == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.liveness = append(m.liveness, check)
}

// RegisterReadiness appends a readiness probe.
func (m *HealthManager) RegisterReadiness(check Check) {
	if check.Name == "" || check.Probe == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readiness = append(m.readiness, check)
}

// Liveness runs the liveness probes.
func (m *HealthManager) Liveness(ctx context.Context) Report {
	m.mu.RLock()
	checks := append([]Check(nil), m.liveness...)
	m.mu.RUnlock()
	return m.run(ctx, checks)
}

// Readiness runs the readiness probes.
func (m *HealthManager) Readiness(ctx context.Context) Report {
	m.mu.RLock()
	checks := append([]Check(nil), m.readiness...)
	m.mu.RUnlock()
	return m.run(ctx, checks)
}

// Overall runs every probe once.
func (m *HealthManager) Overall(ctx context.Context) Report {
	m.mu.RLock()
	checks := append(append([]Check(nil), m.liveness...), m.readiness...)
	m.mu.RUnlock()
	return m.run(ctx, checks)
}

// run executes checks concurrently. Results keep registration order.
func (m *HealthManager) run(ctx context.Context, checks []Check) Report {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	results := make([]ProbeResult, len(checks))
	var g errgroup.Group
	for i, check := range checks {
		i, check := i, check
		g.Go(func() error {
			results[i] = runCheck(ctx, check)
			return nil
		})
	}
	_ = g.Wait()

	report := Report{Status: StatusUp, Checks: results}
	for _, result := range results {
		if result.Status.severity() > report.Status.severity() {
			report.Status = result.Status
		}
	}
	return report
}

func runCheck(ctx context.Context, check Check) (result ProbeResult) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			result = ProbeResult{Component: check.Name, Status: StatusDown, Details: fmt.Sprint(rec)}
		}
		result.LatencyMS = time.Since(start).Milliseconds()
	}()

	return ResultFromError(check.Name, check.Probe(ctx))
}

// ResultFromError converts a probe error into a ProbeResult. Timeouts and
// cancellations count as degraded rather than down.
func ResultFromError(component string, err error) ProbeResult {
	if err == nil {
		return ProbeResult{Component: component, Status: StatusUp}
	}

	status := StatusDown
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		status = StatusDegraded
	}
	return ProbeResult{Component: component, Status: status, Details: err.Error()}
}
