package report

import (
	"context"
	"time"

	"traguardi/internal/core"
)

// StatusChange is one goal status transition observed by a review.
type StatusChange struct {
	GoalID   int64
	GoalName string
	From     core.GoalStatus
	To       core.GoalStatus
	Progress float64
	At       time.Time
}

// BreakdownSnapshot is a category breakdown at a point in time.
type BreakdownSnapshot struct {
	Kind       core.EntryKind
	Totals     []core.CategoryTotal
	GrandTotal core.Money
	At         time.Time
}

// Ports for outbound report adapters.
type (
	StatusWriter interface {
		AppendStatusChange(ctx context.Context, change StatusChange) (rowRef string, err error)
	}

	BreakdownWriter interface {
		AppendBreakdown(ctx context.Context, snapshot BreakdownSnapshot) (rowRef string, err error)
	}

	// Writer is the combined surface the worker needs.
	Writer interface {
		StatusWriter
		BreakdownWriter
	}
)
