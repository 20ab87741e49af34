package core

import (
	"errors"
	"strings"
	"time"
)

const (
	KindAsset       EntryKind = "asset"
	KindTransaction EntryKind = "transaction"
)

const (
	StatusNotStarted GoalStatus = "not_started"
	StatusInProgress GoalStatus = "in_progress"
	StatusOnTrack    GoalStatus = "on_track"
	StatusAtRisk     GoalStatus = "at_risk"
	StatusCompleted  GoalStatus = "completed"
)

type (
	// EntryKind tags which surface a monetary entry belongs to: portfolio
	// assets or spending transactions.
	EntryKind string

	// GoalStatus is derived from a Goal snapshot and an observation time.
	// It is never stored as a source of truth.
	GoalStatus string

	Money struct {
		Cents int64
	}

	// Item is the minimal view of a monetary record consumed by Aggregate.
	Item struct {
		Category string
		Amount   Money
	}

	Entry struct {
		ID          int64 // Database ID for operations
		Kind        EntryKind
		Category    string
		Description string
		Amount      Money
		CreatedAt   time.Time
	}

	Goal struct {
		ID        int64
		Name      string
		Target    Money
		Current   Money
		Deadline  time.Time // zero value means no deadline
		CreatedAt time.Time
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidKind     = errors.New("invalid entry kind")
	ErrEmptyCategory   = errors.New("empty category")
	ErrEmptyName       = errors.New("empty name")
	ErrInvalidTarget   = errors.New("target amount must be positive")
	ErrInvalidDeadline = errors.New("deadline before creation date")
)

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (k EntryKind) Valid() bool {
	switch k {
	case KindAsset, KindTransaction:
		return true
	}
	return false
}

func (s GoalStatus) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusOnTrack, StatusAtRisk, StatusCompleted:
		return true
	}
	return false
}

func (e Entry) Validate() error {
	if !e.Kind.Valid() {
		return ErrInvalidKind
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return e.Amount.Validate()
}

// Item projects the entry down to what aggregation needs.
func (e Entry) Item() Item {
	return Item{Category: e.Category, Amount: e.Amount}
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if len(g.Name) > 200 {
		return errors.New("name too long (max 200 characters)")
	}
	if g.Target.Cents <= 0 {
		return ErrInvalidTarget
	}
	if g.Current.Cents < 0 {
		return ErrInvalidAmount
	}
	if !g.Deadline.IsZero() && !g.CreatedAt.IsZero() && g.Deadline.Before(g.CreatedAt) {
		return ErrInvalidDeadline
	}
	return nil
}

// HasDeadline reports whether the goal has a deadline set (zero time means
// the goal is open-ended).
func (g Goal) HasDeadline() bool {
	return !g.Deadline.IsZero()
}

// Progress returns the completion ratio clamped to [0,1]. Goals with a
// non-positive target have no defined progress and report 0.
func (g Goal) Progress() float64 {
	if g.Target.Cents <= 0 {
		return 0
	}
	p := float64(g.Current.Cents) / float64(g.Target.Cents)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// IsCompleted compares raw amounts, not clamped progress. A goal with a
// non-positive target therefore reads as completed for any non-negative
// current amount.
func (g Goal) IsCompleted() bool {
	return g.Current.Cents >= g.Target.Cents
}
