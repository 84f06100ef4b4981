package budget

import (
	"strings"
	"testing"
	"time"

	"github.com/consoleagent/consoleagent/pkg/models"
)

func testBudget() models.BudgetConfig {
	return models.BudgetConfig{
		MaxCallsPerDay:   3,
		MaxTokensPerCall: 8000,
		CostCapDaily:     1.0,
	}
}

func TestCanMakeCall_CallLimit(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tr := newWithClock(testBudget(), func() time.Time { return now })

	for i := 0; i < 3; i++ {
		if res := tr.CanMakeCall(); !res.Allowed {
			t.Fatalf("CanMakeCall() #%d denied: %s", i+1, res.Reason)
		}
		tr.RecordUsage(100, 0.01)
	}

	res := tr.CanMakeCall()
	if res.Allowed {
		t.Fatal("CanMakeCall() allowed after call limit reached")
	}
	if !strings.Contains(res.Reason, "call limit") {
		t.Errorf("Reason = %q, want call limit message", res.Reason)
	}
}

func TestCanMakeCall_CostCap(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cfg := testBudget()
	cfg.MaxCallsPerDay = 100
	tr := newWithClock(cfg, func() time.Time { return now })

	tr.RecordUsage(1000, 1.5)

	res := tr.CanMakeCall()
	if res.Allowed {
		t.Fatal("CanMakeCall() allowed after cost cap exceeded")
	}
	if !strings.Contains(res.Reason, "cost cap") {
		t.Errorf("Reason = %q, want cost cap message", res.Reason)
	}
}

func TestCanMakeCall_CallLimitTakesPrecedence(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cfg := models.BudgetConfig{MaxCallsPerDay: 1, CostCapDaily: 0.5}
	tr := newWithClock(cfg, func() time.Time { return now })

	// Both gates would deny; the call-limit reason wins.
	tr.RecordUsage(1000, 2.0)

	res := tr.CanMakeCall()
	if res.Allowed {
		t.Fatal("CanMakeCall() allowed with both caps exceeded")
	}
	if !strings.Contains(res.Reason, "call limit") {
		t.Errorf("Reason = %q, want call limit message", res.Reason)
	}
}

func TestDayRollover(t *testing.T) {
	now := time.Date(2025, 6, 1, 23, 50, 0, 0, time.UTC)
	tr := newWithClock(testBudget(), func() time.Time { return now })

	tr.RecordUsage(500, 0.9)
	tr.RecordUsage(500, 0.2)
	if res := tr.CanMakeCall(); res.Allowed {
		t.Fatal("CanMakeCall() allowed before rollover with cost cap hit")
	}

	now = time.Date(2025, 6, 2, 0, 10, 0, 0, time.UTC)
	if res := tr.CanMakeCall(); !res.Allowed {
		t.Fatalf("CanMakeCall() denied after UTC midnight: %s", res.Reason)
	}

	stats := tr.GetStats()
	if stats.CallsToday != 0 || stats.TokensToday != 0 || stats.CostToday != 0 {
		t.Errorf("GetStats() = %+v after rollover, want zeroed counters", stats)
	}
}

func TestGetStats_Remaining(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tr := newWithClock(testBudget(), func() time.Time { return now })

	tr.RecordUsage(1200, 0.25)

	stats := tr.GetStats()
	if stats.CallsToday != 1 {
		t.Errorf("CallsToday = %d, want 1", stats.CallsToday)
	}
	if stats.CallsRemaining != 2 {
		t.Errorf("CallsRemaining = %d, want 2", stats.CallsRemaining)
	}
	if stats.TokensToday != 1200 {
		t.Errorf("TokensToday = %d, want 1200", stats.TokensToday)
	}
	if stats.CostRemaining != 0.75 {
		t.Errorf("CostRemaining = %v, want 0.75", stats.CostRemaining)
	}
}

func TestEstimateCost(t *testing.T) {
	tests := []struct {
		model  string
		tokens int
		want   float64
	}{
		{"gemini-2.5-flash-lite", 1_000_000, 0.01},
		{"gemini-3-flash-preview", 1_000_000, 0.03},
		{"unknown-model", 1_000_000, 0.01},
		{"gemini-2.5-flash-lite", 0, 0},
	}
	for _, tt := range tests {
		if got := EstimateCost(tt.tokens, tt.model); got != tt.want {
			t.Errorf("EstimateCost(%d, %q) = %v, want %v", tt.tokens, tt.model, got, tt.want)
		}
	}
}
