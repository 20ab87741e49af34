package core

import "time"

// StatusPolicy holds the pacing factors used to judge a goal against its
// deadline window. OnTrackFactor is the fraction of expected progress that
// still counts as on track; AtRiskFactor is the floor below which the goal
// is flagged at risk. Both are tuning knobs, not fundamental constants.
type StatusPolicy struct {
	OnTrackFactor float64
	AtRiskFactor  float64
}

// DefaultStatusPolicy returns the factors the dashboards have shipped with.
func DefaultStatusPolicy() StatusPolicy {
	return StatusPolicy{OnTrackFactor: 0.9, AtRiskFactor: 0.5}
}

// Status derives the goal's health from a snapshot and a single observation
// time. Rules are evaluated in order and the first match wins:
//
//  1. target reached → completed (regardless of deadline)
//  2. nothing contributed yet → not_started
//  3. no deadline → in_progress (no time axis to judge against)
//  4. deadline passed → at_risk
//  5. progress within OnTrackFactor of the linear expectation → on_track
//  6. progress within AtRiskFactor of it → in_progress
//  7. otherwise → at_risk
//
// The function is total: any date ordering, including deadlines before
// creation or observation times before creation, yields a defined status.
// Callers must sample now once per query so one evaluation sees one clock.
func (p StatusPolicy) Status(g Goal, now time.Time) GoalStatus {
	if g.IsCompleted() {
		return StatusCompleted
	}
	if g.Current.Cents == 0 {
		return StatusNotStarted
	}
	if !g.HasDeadline() {
		return StatusInProgress
	}
	if now.After(g.Deadline) {
		return StatusAtRisk
	}

	expected := ExpectedProgress(g, now)
	progress := g.Progress()
	switch {
	case progress >= expected*p.OnTrackFactor:
		return StatusOnTrack
	case progress >= expected*p.AtRiskFactor:
		return StatusInProgress
	default:
		return StatusAtRisk
	}
}

// ExpectedProgress is the ratio a goal would show if contributions were
// linear from creation to deadline. Degenerate windows (deadline at or
// before creation) report 0 rather than dividing by zero.
func ExpectedProgress(g Goal, now time.Time) float64 {
	total := g.Deadline.Sub(g.CreatedAt)
	if total <= 0 {
		return 0
	}
	return float64(now.Sub(g.CreatedAt)) / float64(total)
}
