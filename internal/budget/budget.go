// Package budget tracks daily API usage against configured caps. Counters
// roll over lazily when the wall clock crosses into a new UTC day — there
// is no background timer — and reset when the tracker is rebuilt on
// reconfiguration.
package budget

import (
	"fmt"
	"sync"
	"time"

	"github.com/consoleagent/consoleagent/pkg/models"
)

// CheckResult is the outcome of a budget gate check.
type CheckResult struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// Stats is a read-only usage snapshot for diagnostics.
type Stats struct {
	CallsToday     int     `json:"calls_today"`
	CallsRemaining int     `json:"calls_remaining"`
	TokensToday    int     `json:"tokens_today"`
	CostToday      float64 `json:"cost_today"`
	CostRemaining  float64 `json:"cost_remaining"`
}

// Tracker enforces the daily call-count and cost caps. Safe for concurrent
// use; the check and the mutation are each atomic.
type Tracker struct {
	mu          sync.Mutex
	config      models.BudgetConfig
	callsToday  int
	tokensToday int
	costToday   float64
	dayStart    time.Time
	now         func() time.Time
}

// New creates a tracker for the given budget.
func New(config models.BudgetConfig) *Tracker {
	return newWithClock(config, time.Now)
}

func newWithClock(config models.BudgetConfig, now func() time.Time) *Tracker {
	return &Tracker{
		config:   config,
		dayStart: startOfDay(now()),
		now:      now,
	}
}

// CanMakeCall reports whether a call is within budget. The call-limit check
// takes precedence over the cost cap when both would deny.
func (t *Tracker) CanMakeCall() CheckResult {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.maybeResetDay()

	if t.callsToday >= t.config.MaxCallsPerDay {
		return CheckResult{
			Reason: fmt.Sprintf("Daily call limit reached (%d calls/day)", t.config.MaxCallsPerDay),
		}
	}
	if t.costToday >= t.config.CostCapDaily {
		return CheckResult{
			Reason: fmt.Sprintf("Daily cost cap reached ($%.2f)", t.config.CostCapDaily),
		}
	}
	return CheckResult{Allowed: true}
}

// RecordUsage records a completed call. Call exactly once per successful
// provider call, after the real token count is known.
func (t *Tracker) RecordUsage(tokensUsed int, costUSD float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.maybeResetDay()
	t.callsToday++
	t.tokensToday += tokensUsed
	t.costToday += costUSD
}

// GetStats returns the current usage snapshot.
func (t *Tracker) GetStats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.maybeResetDay()
	return Stats{
		CallsToday:     t.callsToday,
		CallsRemaining: max(0, t.config.MaxCallsPerDay-t.callsToday),
		TokensToday:    t.tokensToday,
		CostToday:      t.costToday,
		CostRemaining:  max(0, t.config.CostCapDaily-t.costToday),
	}
}

// MaxTokensPerCall exposes the per-call token ceiling from the config.
func (t *Tracker) MaxTokensPerCall() int {
	return t.config.MaxTokensPerCall
}

// Reset clears all counters. Used for testing.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.callsToday = 0
	t.tokensToday = 0
	t.costToday = 0
	t.dayStart = startOfDay(t.now())
}

// maybeResetDay rolls counters when the UTC day has advanced. Caller must
// hold mu.
func (t *Tracker) maybeResetDay() {
	current := startOfDay(t.now())
	if current.After(t.dayStart) {
		t.callsToday = 0
		t.tokensToday = 0
		t.costToday = 0
		t.dayStart = current
	}
}

func startOfDay(now time.Time) time.Time {
	u := now.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
