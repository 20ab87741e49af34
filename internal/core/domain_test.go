package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestEntryValidate(t *testing.T) {
	valid := Entry{
		Kind:     KindAsset,
		Category: "cash",
		Amount:   Money{Cents: 1000},
	}

	tests := []struct {
		name    string
		mutate  func(e *Entry)
		wantErr error
	}{
		{"valid entry", func(e *Entry) {}, nil},
		{"transaction kind", func(e *Entry) { e.Kind = KindTransaction }, nil},
		{"unknown kind", func(e *Entry) { e.Kind = "liability" }, ErrInvalidKind},
		{"empty kind", func(e *Entry) { e.Kind = "" }, ErrInvalidKind},
		{"empty category", func(e *Entry) { e.Category = "" }, ErrEmptyCategory},
		{"blank category", func(e *Entry) { e.Category = "   " }, ErrEmptyCategory},
		{"zero amount", func(e *Entry) { e.Amount = Money{} }, ErrInvalidAmount},
		{"negative amount", func(e *Entry) { e.Amount = Money{Cents: -5} }, ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid
			tt.mutate(&e)
			err := e.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestGoalValidate(t *testing.T) {
	created := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	valid := Goal{
		Name:      "fondo emergenza",
		Target:    Money{Cents: 500_000},
		CreatedAt: created,
	}

	tests := []struct {
		name    string
		mutate  func(g *Goal)
		wantErr error
	}{
		{"valid goal", func(g *Goal) {}, nil},
		{"with future deadline", func(g *Goal) { g.Deadline = created.AddDate(1, 0, 0) }, nil},
		{"empty name", func(g *Goal) { g.Name = "" }, ErrEmptyName},
		{"blank name", func(g *Goal) { g.Name = "  " }, ErrEmptyName},
		{"zero target", func(g *Goal) { g.Target = Money{} }, ErrInvalidTarget},
		{"negative target", func(g *Goal) { g.Target = Money{Cents: -1} }, ErrInvalidTarget},
		{"negative current", func(g *Goal) { g.Current = Money{Cents: -1} }, ErrInvalidAmount},
		{"deadline before creation", func(g *Goal) { g.Deadline = created.AddDate(0, 0, -1) }, ErrInvalidDeadline},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := valid
			tt.mutate(&g)
			err := g.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("name too long", func(t *testing.T) {
		g := valid
		g.Name = strings.Repeat("x", 201)
		if err := g.Validate(); err == nil {
			t.Error("expected error for 201-character name")
		}
	})
}

func TestEntryItem(t *testing.T) {
	e := Entry{Kind: KindAsset, Category: "stocks", Amount: Money{Cents: 250}}
	it := e.Item()
	if it.Category != "stocks" || it.Amount.Cents != 250 {
		t.Errorf("Item() = %+v", it)
	}
}
