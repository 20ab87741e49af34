package core

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestGoalProgress(t *testing.T) {
	tests := []struct {
		name    string
		target  int64
		current int64
		want    float64
	}{
		{"empty", 1000, 0, 0},
		{"halfway", 1000, 500, 0.5},
		{"complete", 1000, 1000, 1},
		{"overfunded clamps to one", 1000, 1500, 1},
		{"negative current clamps to zero", 1000, -200, 0},
		{"zero target", 0, 500, 0},
		{"negative target", -100, 500, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Goal{Target: Money{Cents: tt.target}, Current: Money{Cents: tt.current}}
			if got := g.Progress(); got != tt.want {
				t.Errorf("Progress() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGoalIsCompleted(t *testing.T) {
	tests := []struct {
		name    string
		target  int64
		current int64
		want    bool
	}{
		{"reached", 1000, 1000, true},
		{"exceeded", 1000, 1200, true},
		{"not reached", 1000, 999, false},
		// Raw comparison: a non-positive target is trivially reached
		// even though Progress() reports zero.
		{"zero target zero current", 0, 0, true},
		{"negative target", -100, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Goal{Target: Money{Cents: tt.target}, Current: Money{Cents: tt.current}}
			if got := g.IsCompleted(); got != tt.want {
				t.Errorf("IsCompleted() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExpectedProgress(t *testing.T) {
	created := date(2026, time.January, 1)
	deadline := date(2026, time.December, 31)

	tests := []struct {
		name string
		goal Goal
		now  time.Time
		want float64
	}{
		{
			"no deadline",
			Goal{CreatedAt: created},
			date(2026, time.June, 1),
			0,
		},
		{
			"before creation goes negative",
			Goal{CreatedAt: created, Deadline: deadline},
			date(2025, time.December, 1),
			float64(date(2025, time.December, 1).Sub(created)) / float64(deadline.Sub(created)),
		},
		{
			"past deadline exceeds one",
			Goal{CreatedAt: created, Deadline: deadline},
			date(2027, time.June, 1),
			float64(date(2027, time.June, 1).Sub(created)) / float64(deadline.Sub(created)),
		},
		{
			"deadline before creation",
			Goal{CreatedAt: deadline, Deadline: created},
			date(2026, time.June, 1),
			0,
		},
		{
			"deadline equals creation",
			Goal{CreatedAt: created, Deadline: created},
			date(2026, time.June, 1),
			0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpectedProgress(tt.goal, tt.now); got != tt.want {
				t.Errorf("ExpectedProgress() = %v, want %v", got, tt.want)
			}
		})
	}

	// Midpoint sanity check.
	g := Goal{CreatedAt: created, Deadline: created.Add(100 * 24 * time.Hour)}
	got := ExpectedProgress(g, created.Add(50*24*time.Hour))
	if got != 0.5 {
		t.Errorf("midpoint expected progress = %v, want 0.5", got)
	}
}

func TestStatusPolicyStatus(t *testing.T) {
	policy := DefaultStatusPolicy()
	created := date(2026, time.January, 1)
	deadline := created.Add(100 * 24 * time.Hour)

	goal := func(target, current int64, dl time.Time) Goal {
		return Goal{
			Target:    Money{Cents: target},
			Current:   Money{Cents: current},
			Deadline:  dl,
			CreatedAt: created,
		}
	}

	tests := []struct {
		name string
		goal Goal
		now  time.Time
		want GoalStatus
	}{
		{
			"completed wins over everything",
			goal(1000, 1000, deadline),
			deadline.Add(24 * time.Hour),
			StatusCompleted,
		},
		{
			"zero current is not started",
			goal(1000, 0, time.Time{}),
			created,
			StatusNotStarted,
		},
		{
			"zero current not started even past deadline",
			goal(1000, 0, deadline),
			deadline.Add(24 * time.Hour),
			StatusNotStarted,
		},
		{
			"no deadline is in progress",
			goal(1000, 500, time.Time{}),
			created,
			StatusInProgress,
		},
		{
			"past deadline is at risk",
			goal(1000, 500, deadline),
			deadline.Add(time.Second),
			StatusAtRisk,
		},
		{
			// Halfway through the period with half the money saved:
			// 0.5 >= 0.5*0.9 so the goal is on track.
			"halfway on pace",
			goal(1000, 500, deadline),
			created.Add(50 * 24 * time.Hour),
			StatusOnTrack,
		},
		{
			// 83% of the time gone with 10% saved is behind even the
			// relaxed threshold.
			"far behind is at risk",
			goal(1000, 100, deadline),
			created.Add(83 * 24 * time.Hour),
			StatusAtRisk,
		},
		{
			// Exactly at the 90% boundary counts as on track.
			"on-track boundary inclusive",
			goal(1000, 450, deadline),
			created.Add(50 * 24 * time.Hour),
			StatusOnTrack,
		},
		{
			// Just below 90% of expected but above 50% is in progress.
			"lagging but in progress",
			goal(1000, 449, deadline),
			created.Add(50 * 24 * time.Hour),
			StatusInProgress,
		},
		{
			// Exactly at the 50% boundary counts as in progress.
			"in-progress boundary inclusive",
			goal(1000, 250, deadline),
			created.Add(50 * 24 * time.Hour),
			StatusInProgress,
		},
		{
			"just below half of expected is at risk",
			goal(1000, 249, deadline),
			created.Add(50 * 24 * time.Hour),
			StatusAtRisk,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := policy.Status(tt.goal, tt.now)
			if got != tt.want {
				t.Errorf("Status() = %q, want %q", got, tt.want)
			}
			if !got.Valid() {
				t.Errorf("Status() returned invalid value %q", got)
			}
		})
	}
}

func TestStatusTotalityOnPathologicalDates(t *testing.T) {
	policy := DefaultStatusPolicy()
	created := date(2026, time.June, 1)
	now := date(2026, time.June, 15)

	deadlines := []time.Time{
		{},                                // none
		created.Add(-30 * 24 * time.Hour), // before creation
		created,                           // equal to creation
		now,                               // equal to now
		created.Add(365 * 24 * time.Hour),
	}
	for _, dl := range deadlines {
		g := Goal{
			Target:    Money{Cents: 1000},
			Current:   Money{Cents: 300},
			Deadline:  dl,
			CreatedAt: created,
		}
		got := policy.Status(g, now)
		if !got.Valid() {
			t.Errorf("deadline %v produced invalid status %q", dl, got)
		}
	}
}
