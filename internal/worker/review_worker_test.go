package worker

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"traguardi/internal/amqp"
	"traguardi/internal/core"
	"traguardi/internal/report/memory"
	"traguardi/internal/storage"
)

func newTestWorker(t *testing.T) (*ReviewWorker, *storage.SQLiteRepository, *memory.Store) {
	t.Helper()

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("create repository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	store := memory.New()
	w := NewReviewWorker(repo, store, core.DefaultStatusPolicy(), 10)
	return w, repo, store
}

func createGoal(t *testing.T, repo *storage.SQLiteRepository, name string, targetCents int64) storage.GoalRecord {
	t.Helper()

	rec, err := repo.CreateGoal(context.Background(), core.Goal{
		Name:      name,
		Target:    core.Money{Cents: targetCents},
		CreatedAt: time.Now().UTC().Add(-24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}
	return rec
}

func TestHandleReviewMessage(t *testing.T) {
	w, repo, store := newTestWorker(t)
	ctx := context.Background()

	rec := createGoal(t, repo, "emergency fund", 100000)

	msg := amqp.NewGoalReviewMessage(rec.ID, rec.Version)
	if err := w.HandleReviewMessage(ctx, msg); err != nil {
		t.Fatalf("HandleReviewMessage() error = %v", err)
	}

	changes := store.StatusChanges()
	if len(changes) != 1 {
		t.Fatalf("status changes = %d, want 1", len(changes))
	}
	if changes[0].To != core.StatusNotStarted {
		t.Errorf("To = %q, want %q", changes[0].To, core.StatusNotStarted)
	}
	if changes[0].From != "" {
		t.Errorf("From = %q, want empty for first review", changes[0].From)
	}

	stored, err := repo.GetGoal(ctx, rec.ID)
	if err != nil {
		t.Fatalf("GetGoal() error = %v", err)
	}
	if stored.LastStatus != core.StatusNotStarted {
		t.Errorf("LastStatus = %q, want %q", stored.LastStatus, core.StatusNotStarted)
	}

	// Unchanged status must not be re-reported.
	if err := w.HandleReviewMessage(ctx, msg); err != nil {
		t.Fatalf("second HandleReviewMessage() error = %v", err)
	}
	if got := len(store.StatusChanges()); got != 1 {
		t.Errorf("status changes after repeat review = %d, want 1", got)
	}
}

func TestHandleReviewMessageAfterContribution(t *testing.T) {
	w, repo, store := newTestWorker(t)
	ctx := context.Background()

	rec := createGoal(t, repo, "vacation", 100000)

	msg := amqp.NewGoalReviewMessage(rec.ID, rec.Version)
	if err := w.HandleReviewMessage(ctx, msg); err != nil {
		t.Fatalf("HandleReviewMessage() error = %v", err)
	}

	if _, err := repo.AddContribution(ctx, rec.ID, core.Money{Cents: 100000}, "final push"); err != nil {
		t.Fatalf("AddContribution() error = %v", err)
	}

	// The message carries the old version but the worker reviews the
	// current row, so the completion is still picked up.
	if err := w.HandleReviewMessage(ctx, msg); err != nil {
		t.Fatalf("HandleReviewMessage() error = %v", err)
	}

	changes := store.StatusChanges()
	if len(changes) != 2 {
		t.Fatalf("status changes = %d, want 2", len(changes))
	}
	last := changes[1]
	if last.From != core.StatusNotStarted || last.To != core.StatusCompleted {
		t.Errorf("transition = %q -> %q, want %q -> %q",
			last.From, last.To, core.StatusNotStarted, core.StatusCompleted)
	}
	if last.Progress != 1 {
		t.Errorf("Progress = %v, want 1", last.Progress)
	}
}

func TestHandleReviewMessageMissingGoal(t *testing.T) {
	w, _, store := newTestWorker(t)

	msg := amqp.NewGoalReviewMessage(999, 1)
	if err := w.HandleReviewMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleReviewMessage() error = %v, want nil for missing goal", err)
	}
	if got := len(store.StatusChanges()); got != 0 {
		t.Errorf("status changes = %d, want 0", got)
	}
}

func TestReviewAll(t *testing.T) {
	w, repo, store := newTestWorker(t)
	ctx := context.Background()

	createGoal(t, repo, "first", 100000)
	createGoal(t, repo, "second", 50000)

	if err := w.ReviewAll(ctx); err != nil {
		t.Fatalf("ReviewAll() error = %v", err)
	}

	if got := len(store.StatusChanges()); got != 2 {
		t.Errorf("status changes = %d, want 2", got)
	}

	// A second pass finds nothing new.
	if err := w.ReviewAll(ctx); err != nil {
		t.Fatalf("second ReviewAll() error = %v", err)
	}
	if got := len(store.StatusChanges()); got != 2 {
		t.Errorf("status changes after second pass = %d, want 2", got)
	}
}

func TestStartupReviewCheck(t *testing.T) {
	w, repo, store := newTestWorker(t)

	createGoal(t, repo, "first", 100000)

	if err := w.StartupReviewCheck(context.Background()); err != nil {
		t.Fatalf("StartupReviewCheck() error = %v", err)
	}
	if got := len(store.StatusChanges()); got != 1 {
		t.Errorf("status changes = %d, want 1", got)
	}
}

func TestExportBreakdown(t *testing.T) {
	w, repo, store := newTestWorker(t)
	ctx := context.Background()

	entries := []core.Entry{
		{Kind: core.KindAsset, Category: "cash", Amount: core.Money{Cents: 10000}},
		{Kind: core.KindAsset, Category: "stocks", Amount: core.Money{Cents: 30000}},
		{Kind: core.KindTransaction, Category: "rent", Amount: core.Money{Cents: 90000}},
	}
	for _, e := range entries {
		if _, err := repo.CreateEntry(ctx, e); err != nil {
			t.Fatalf("CreateEntry() error = %v", err)
		}
	}

	if err := w.ExportBreakdown(ctx); err != nil {
		t.Fatalf("ExportBreakdown() error = %v", err)
	}

	snaps := store.Snapshots()
	if len(snaps) != 2 {
		t.Fatalf("snapshots = %d, want 2", len(snaps))
	}

	assets := snaps[0]
	if assets.Kind != core.KindAsset {
		t.Errorf("first snapshot kind = %q, want %q", assets.Kind, core.KindAsset)
	}
	if assets.GrandTotal.Cents != 40000 {
		t.Errorf("asset grand total = %d, want 40000", assets.GrandTotal.Cents)
	}
	if len(assets.Totals) != 2 || assets.Totals[0].Category != "stocks" {
		t.Errorf("asset totals = %+v, want stocks first", assets.Totals)
	}

	if snaps[1].Kind != core.KindTransaction {
		t.Errorf("second snapshot kind = %q, want %q", snaps[1].Kind, core.KindTransaction)
	}
}

func TestExportBreakdownEmpty(t *testing.T) {
	w, _, store := newTestWorker(t)

	if err := w.ExportBreakdown(context.Background()); err != nil {
		t.Fatalf("ExportBreakdown() error = %v", err)
	}
	if got := len(store.Snapshots()); got != 0 {
		t.Errorf("snapshots = %d, want 0 for empty storage", got)
	}
}
