package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"traguardi/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// GoalRecord is a goal row with its bookkeeping columns. last_status holds
// the status published at the previous review, not a derived value.
type GoalRecord struct {
	core.Goal
	LastStatus core.GoalStatus
	Version    int64
	UpdatedAt  time.Time
}

// Contribution is a single payment made toward a goal.
type Contribution struct {
	ID        int64
	GoalID    int64
	Amount    core.Money
	Note      string
	CreatedAt time.Time
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateEntry inserts a monetary entry and returns it with ID and timestamp set.
func (r *SQLiteRepository) CreateEntry(ctx context.Context, e core.Entry) (core.Entry, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, createEntrySQL,
		string(e.Kind), e.Category, e.Description, e.Amount.Cents, now)
	if err != nil {
		return core.Entry{}, fmt.Errorf("create entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Entry{}, fmt.Errorf("entry insert id: %w", err)
	}

	e.ID = id
	e.CreatedAt = now

	slog.InfoContext(ctx, "Entry saved to SQLite",
		"id", e.ID,
		"kind", string(e.Kind),
		"category", e.Category,
		"amount_cents", e.Amount.Cents)

	return e, nil
}

// ListItemsByKind returns the category/amount pairs of one entry kind, in
// insertion order.
func (r *SQLiteRepository) ListItemsByKind(ctx context.Context, kind core.EntryKind) ([]core.Item, error) {
	rows, err := r.db.QueryContext(ctx, listItemsByKindSQL, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list items by kind: %w", err)
	}
	defer rows.Close()

	var items []core.Item
	for rows.Next() {
		var it core.Item
		if err := rows.Scan(&it.Category, &it.Amount.Cents); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}

	return items, nil
}

// ListEntries returns full entry rows of one kind, newest first.
func (r *SQLiteRepository) ListEntries(ctx context.Context, kind core.EntryKind) ([]core.Entry, error) {
	rows, err := r.db.QueryContext(ctx, listEntriesSQL, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []core.Entry
	for rows.Next() {
		var e core.Entry
		var kind string
		if err := rows.Scan(&e.ID, &kind, &e.Category, &e.Description, &e.Amount.Cents, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.Kind = core.EntryKind(kind)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}

	return entries, nil
}

// CreateGoal inserts a goal and returns its record.
func (r *SQLiteRepository) CreateGoal(ctx context.Context, g core.Goal) (GoalRecord, error) {
	now := time.Now().UTC()
	var deadline any
	if g.HasDeadline() {
		deadline = g.Deadline.UTC()
	}

	res, err := r.db.ExecContext(ctx, createGoalSQL,
		g.Name, g.Target.Cents, g.Current.Cents, deadline, now, now)
	if err != nil {
		return GoalRecord{}, fmt.Errorf("create goal: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return GoalRecord{}, fmt.Errorf("goal insert id: %w", err)
	}

	g.ID = id
	g.CreatedAt = now

	slog.InfoContext(ctx, "Goal saved to SQLite",
		"id", g.ID,
		"name", g.Name,
		"target_cents", g.Target.Cents)

	return GoalRecord{Goal: g, Version: 1, UpdatedAt: now}, nil
}

// GetGoal retrieves a single goal by ID.
func (r *SQLiteRepository) GetGoal(ctx context.Context, id int64) (GoalRecord, error) {
	row := r.db.QueryRowContext(ctx, getGoalSQL, id)
	rec, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return GoalRecord{}, ErrNotFound
	}
	if err != nil {
		return GoalRecord{}, fmt.Errorf("get goal by id: %w", err)
	}
	return rec, nil
}

// ListGoals returns all goals, oldest first.
func (r *SQLiteRepository) ListGoals(ctx context.Context) ([]GoalRecord, error) {
	rows, err := r.db.QueryContext(ctx, listGoalsSQL)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var recs []GoalRecord
	for rows.Next() {
		rec, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate goals: %w", err)
	}

	return recs, nil
}

// ListGoalsForReview returns up to limit goals, least recently touched first.
func (r *SQLiteRepository) ListGoalsForReview(ctx context.Context, limit int) ([]GoalRecord, error) {
	rows, err := r.db.QueryContext(ctx, listGoalsForReviewSQL, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list goals for review: %w", err)
	}
	defer rows.Close()

	var recs []GoalRecord
	for rows.Next() {
		rec, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate goals: %w", err)
	}

	return recs, nil
}

// AddContribution records a payment toward a goal and bumps the goal's
// current amount and version in the same transaction.
func (r *SQLiteRepository) AddContribution(ctx context.Context, goalID int64, amount core.Money, note string) (GoalRecord, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return GoalRecord{}, fmt.Errorf("begin contribution tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	res, err := tx.ExecContext(ctx, updateGoalProgressSQL, amount.Cents, now, goalID)
	if err != nil {
		return GoalRecord{}, fmt.Errorf("update goal progress: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return GoalRecord{}, fmt.Errorf("goal rows affected: %w", err)
	}
	if affected == 0 {
		return GoalRecord{}, ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, createContributionSQL, goalID, amount.Cents, note, now); err != nil {
		return GoalRecord{}, fmt.Errorf("create contribution: %w", err)
	}

	rec, err := scanGoal(tx.QueryRowContext(ctx, getGoalSQL, goalID))
	if err != nil {
		return GoalRecord{}, fmt.Errorf("reload goal: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return GoalRecord{}, fmt.Errorf("commit contribution tx: %w", err)
	}

	slog.InfoContext(ctx, "Contribution recorded",
		"goal_id", goalID,
		"amount_cents", amount.Cents,
		"current_cents", rec.Current.Cents)

	return rec, nil
}

// ListContributions returns a goal's contributions, newest first.
func (r *SQLiteRepository) ListContributions(ctx context.Context, goalID int64) ([]Contribution, error) {
	rows, err := r.db.QueryContext(ctx, listContributionsSQL, goalID)
	if err != nil {
		return nil, fmt.Errorf("list contributions: %w", err)
	}
	defer rows.Close()

	var cs []Contribution
	for rows.Next() {
		var c Contribution
		if err := rows.Scan(&c.ID, &c.GoalID, &c.Amount.Cents, &c.Note, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan contribution: %w", err)
		}
		cs = append(cs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contributions: %w", err)
	}

	return cs, nil
}

// SetLastStatus records the status a review settled on.
func (r *SQLiteRepository) SetLastStatus(ctx context.Context, id int64, status core.GoalStatus) error {
	res, err := r.db.ExecContext(ctx, setLastStatusSQL, string(status), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set last status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("status rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	slog.InfoContext(ctx, "Goal status recorded", "id", id, "status", string(status))
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGoal(row rowScanner) (GoalRecord, error) {
	var rec GoalRecord
	var lastStatus string
	var deadline sql.NullTime
	err := row.Scan(
		&rec.ID,
		&rec.Name,
		&rec.Target.Cents,
		&rec.Current.Cents,
		&deadline,
		&rec.CreatedAt,
		&lastStatus,
		&rec.Version,
		&rec.UpdatedAt,
	)
	if err != nil {
		return GoalRecord{}, err
	}
	if deadline.Valid {
		rec.Deadline = deadline.Time
	}
	rec.LastStatus = core.GoalStatus(lastStatus)
	return rec, nil
}
