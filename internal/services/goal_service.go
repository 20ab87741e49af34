package services

import (
	"context"
	"fmt"
	"log/slog"

	"traguardi/internal/core"
	"traguardi/internal/storage"
)

// ReviewPublisher pushes goal review requests onto the message queue.
type ReviewPublisher interface {
	PublishGoalReview(ctx context.Context, id, version int64) error
}

// Breakdown is the aggregated view of one entry kind.
type Breakdown struct {
	Kind       core.EntryKind
	Totals     []core.CategoryTotal
	GrandTotal core.Money
}

// GoalService orchestrates entry and goal operations across SQLite and AMQP
type GoalService struct {
	storage   *storage.SQLiteRepository
	publisher ReviewPublisher
}

func NewGoalService(storage *storage.SQLiteRepository, publisher ReviewPublisher) *GoalService {
	return &GoalService{
		storage:   storage,
		publisher: publisher,
	}
}

// CreateEntry validates and saves a monetary entry.
func (s *GoalService) CreateEntry(ctx context.Context, e core.Entry) (core.Entry, error) {
	if err := e.Validate(); err != nil {
		return core.Entry{}, err
	}

	saved, err := s.storage.CreateEntry(ctx, e)
	if err != nil {
		return core.Entry{}, fmt.Errorf("save entry: %w", err)
	}

	return saved, nil
}

// Breakdown aggregates one entry kind by category, largest total first.
func (s *GoalService) Breakdown(ctx context.Context, kind core.EntryKind) (Breakdown, error) {
	if !kind.Valid() {
		return Breakdown{}, core.ErrInvalidKind
	}

	items, err := s.storage.ListItemsByKind(ctx, kind)
	if err != nil {
		return Breakdown{}, fmt.Errorf("list items: %w", err)
	}

	totals := core.Aggregate(items)
	return Breakdown{
		Kind:       kind,
		Totals:     totals,
		GrandTotal: core.GrandTotal(totals),
	}, nil
}

// CreateGoal validates and saves a goal, then asks the worker to review it.
func (s *GoalService) CreateGoal(ctx context.Context, g core.Goal) (storage.GoalRecord, error) {
	if err := g.Validate(); err != nil {
		return storage.GoalRecord{}, err
	}

	rec, err := s.storage.CreateGoal(ctx, g)
	if err != nil {
		return storage.GoalRecord{}, fmt.Errorf("save goal: %w", err)
	}

	// Review failures never fail the request, the goal is saved locally
	// and the periodic review catches up.
	if err := s.publishReview(ctx, rec.ID, rec.Version); err != nil {
		slog.ErrorContext(ctx, "Failed to publish review message",
			"id", rec.ID, "error", err)
	}

	return rec, nil
}

// ListEntries returns full entry rows of one kind, newest first.
func (s *GoalService) ListEntries(ctx context.Context, kind core.EntryKind) ([]core.Entry, error) {
	if !kind.Valid() {
		return nil, core.ErrInvalidKind
	}
	return s.storage.ListEntries(ctx, kind)
}

// GetGoal returns one goal by ID.
func (s *GoalService) GetGoal(ctx context.Context, id int64) (storage.GoalRecord, error) {
	return s.storage.GetGoal(ctx, id)
}

// ListGoals returns all goals.
func (s *GoalService) ListGoals(ctx context.Context) ([]storage.GoalRecord, error) {
	return s.storage.ListGoals(ctx)
}

// AddContribution records a payment toward a goal and asks the worker to
// re-derive its status.
func (s *GoalService) AddContribution(ctx context.Context, goalID int64, amount core.Money, note string) (storage.GoalRecord, error) {
	if err := amount.Validate(); err != nil {
		return storage.GoalRecord{}, err
	}

	rec, err := s.storage.AddContribution(ctx, goalID, amount, note)
	if err != nil {
		return storage.GoalRecord{}, err
	}

	if err := s.publishReview(ctx, rec.ID, rec.Version); err != nil {
		slog.ErrorContext(ctx, "Failed to publish review message",
			"id", rec.ID, "error", err)
	}

	return rec, nil
}

// ListContributions returns a goal's contributions, newest first.
func (s *GoalService) ListContributions(ctx context.Context, goalID int64) ([]storage.Contribution, error) {
	return s.storage.ListContributions(ctx, goalID)
}

func (s *GoalService) publishReview(ctx context.Context, id, version int64) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Review publisher not available, skipping review message")
		return nil
	}

	return s.publisher.PublishGoalReview(ctx, id, version)
}

// Close closes the underlying storage.
func (s *GoalService) Close() error {
	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			return fmt.Errorf("close goal service: %w", err)
		}
	}
	return nil
}
