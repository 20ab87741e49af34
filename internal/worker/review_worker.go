package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"traguardi/internal/amqp"
	"traguardi/internal/core"
	applog "traguardi/internal/log"
	"traguardi/internal/report"
	"traguardi/internal/storage"
)

// ReviewWorker re-evaluates goal statuses and records the changes on the
// configured report backend.
type ReviewWorker struct {
	storage   *storage.SQLiteRepository
	reports   report.Writer
	policy    core.StatusPolicy
	batchSize int
	logger    *applog.StructuredLogger
}

func NewReviewWorker(storage *storage.SQLiteRepository, reports report.Writer, policy core.StatusPolicy, batchSize int) *ReviewWorker {
	return &ReviewWorker{
		storage:   storage,
		reports:   reports,
		policy:    policy,
		batchSize: batchSize,
		logger:    applog.NewStructuredLogger(applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentWorker)),
	}
}

// HandleReviewMessage processes a single goal review message from AMQP.
// A goal deleted between publish and delivery is not an error.
func (w *ReviewWorker) HandleReviewMessage(ctx context.Context, msg *amqp.GoalReviewMessage) error {
	slog.InfoContext(ctx, "Processing review message",
		"id", msg.ID,
		"version", msg.Version)

	goal, err := w.storage.GetGoal(ctx, msg.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			slog.WarnContext(ctx, "Goal no longer exists, skipping review", "id", msg.ID)
			return nil
		}
		return fmt.Errorf("get goal from storage: %w", err)
	}

	// The stored row may already be newer than the message. Reviewing the
	// newer row is harmless, so stale versions are processed anyway.
	if msg.Version < goal.Version {
		slog.InfoContext(ctx, "Review message is stale, reviewing current row",
			"id", msg.ID,
			"message_version", msg.Version,
			"row_version", goal.Version)
	}

	return w.reviewGoal(ctx, goal, time.Now().UTC())
}

// ReviewAll re-evaluates the least recently reviewed goals. This is a
// backup mechanism in case AMQP messages are lost.
func (w *ReviewWorker) ReviewAll(ctx context.Context) error {
	goals, err := w.storage.ListGoalsForReview(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list goals for review: %w", err)
	}

	if len(goals) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Reviewing goal batch", "count", len(goals))

	now := time.Now().UTC()
	for _, goal := range goals {
		if err := w.reviewGoal(ctx, goal, now); err != nil {
			slog.ErrorContext(ctx, "Failed to review goal", "id", goal.ID, "error", err)
			continue
		}
	}

	return nil
}

// StartupReviewCheck reviews a larger batch at worker startup. This is
// useful to recover from missed AMQP messages or worker downtime.
func (w *ReviewWorker) StartupReviewCheck(ctx context.Context) error {
	goals, err := w.storage.ListGoalsForReview(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("list goals for startup check: %w", err)
	}

	if len(goals) == 0 {
		slog.InfoContext(ctx, "No goals found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Reviewing goals on startup", "count", len(goals))

	successCount := 0
	errorCount := 0
	now := time.Now().UTC()

	for _, goal := range goals {
		if err := w.reviewGoal(ctx, goal, now); err != nil {
			slog.ErrorContext(ctx, "Failed to review goal during startup",
				"id", goal.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup review completed",
		"total", len(goals),
		"reviewed", successCount,
		"errors", errorCount)

	return nil
}

// ExportBreakdown aggregates the current entries of both kinds and
// appends a snapshot per kind to the report backend.
func (w *ReviewWorker) ExportBreakdown(ctx context.Context) error {
	now := time.Now().UTC()

	for _, kind := range []core.EntryKind{core.KindAsset, core.KindTransaction} {
		items, err := w.storage.ListItemsByKind(ctx, kind)
		if err != nil {
			return fmt.Errorf("list %s items: %w", kind, err)
		}
		if len(items) == 0 {
			continue
		}

		totals := core.Aggregate(items)
		snapshot := report.BreakdownSnapshot{
			Kind:       kind,
			Totals:     totals,
			GrandTotal: core.GrandTotal(totals),
			At:         now,
		}

		ref, err := w.reports.AppendBreakdown(ctx, snapshot)
		if err != nil {
			return fmt.Errorf("append %s breakdown: %w", kind, err)
		}

		slog.InfoContext(ctx, "Exported breakdown snapshot",
			"entry_kind", string(kind),
			"categories", len(totals),
			"grand_total_cents", snapshot.GrandTotal.Cents,
			"sheets_ref", ref)
	}

	return nil
}

// reviewGoal computes the goal's current status and, when it differs from
// the last reviewed one, persists it and records the transition.
func (w *ReviewWorker) reviewGoal(ctx context.Context, goal storage.GoalRecord, now time.Time) error {
	status := w.policy.Status(goal.Goal, now)
	if status == goal.LastStatus {
		return nil
	}

	if err := w.storage.SetLastStatus(ctx, goal.ID, status); err != nil {
		return fmt.Errorf("set last status: %w", err)
	}

	change := report.StatusChange{
		GoalID:   goal.ID,
		GoalName: goal.Name,
		From:     goal.LastStatus,
		To:       status,
		Progress: goal.Progress(),
		At:       now,
	}

	ref, err := w.reports.AppendStatusChange(ctx, change)
	if err != nil {
		// The status row is already updated. The transition will not be
		// re-reported, so the failure is logged loudly.
		w.logger.LogError(ctx, "Failed to record status change", err,
			applog.ComponentWorker, applog.OpReview,
			applog.NewFields().WithGoal(goal.ID, goal.Name, goal.Target.Cents, goal.Current.Cents))
		return fmt.Errorf("append status change: %w", err)
	}

	w.logger.LogGoalStatusChange(ctx, goal.ID, goal.Name, string(goal.LastStatus), string(status))
	slog.DebugContext(ctx, "Status change recorded", "goal_id", goal.ID, "sheets_ref", ref)

	return nil
}
