package core

import (
	"math"
	"testing"
)

func TestAggregateScenario(t *testing.T) {
	items := []Item{
		{Category: "cash", Amount: Money{Cents: 100}},
		{Category: "cash", Amount: Money{Cents: 50}},
		{Category: "stocks", Amount: Money{Cents: 200}},
	}
	got := Aggregate(items)
	want := []CategoryTotal{
		{Category: "stocks", Total: Money{Cents: 200}, Count: 1},
		{Category: "cash", Total: Money{Cents: 150}, Count: 2},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d totals, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("total %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	if got := Aggregate(nil); len(got) != 0 {
		t.Fatalf("expected empty result, got %+v", got)
	}
	if got := Aggregate([]Item{}); len(got) != 0 {
		t.Fatalf("expected empty result, got %+v", got)
	}
}

func TestAggregateKeepsZeroAmounts(t *testing.T) {
	items := []Item{
		{Category: "cash", Amount: Money{Cents: 0}},
		{Category: "bonds", Amount: Money{Cents: 0}},
	}
	got := Aggregate(items)
	if len(got) != 2 {
		t.Fatalf("zero-amount categories must not be filtered, got %+v", got)
	}
	// All-zero input keeps first-encounter order.
	if got[0].Category != "cash" || got[1].Category != "bonds" {
		t.Errorf("tie order not preserved: %+v", got)
	}
}

func TestAggregateConservationAndOrder(t *testing.T) {
	items := []Item{
		{Category: "a", Amount: Money{Cents: 7}},
		{Category: "b", Amount: Money{Cents: 300}},
		{Category: "c", Amount: Money{Cents: 42}},
		{Category: "a", Amount: Money{Cents: 13}},
		{Category: "b", Amount: Money{Cents: 1}},
		{Category: "d", Amount: Money{Cents: 0}},
	}
	totals := Aggregate(items)

	var inSum int64
	for _, it := range items {
		inSum += it.Amount.Cents
	}
	if grand := GrandTotal(totals); grand.Cents != inSum {
		t.Errorf("conservation violated: totals sum %d, input sum %d", grand.Cents, inSum)
	}

	distinct := map[string]bool{}
	for _, it := range items {
		distinct[it.Category] = true
	}
	if len(totals) != len(distinct) {
		t.Errorf("expected %d categories, got %d", len(distinct), len(totals))
	}

	for i := 1; i < len(totals); i++ {
		if totals[i-1].Total.Cents < totals[i].Total.Cents {
			t.Errorf("not descending at %d: %+v", i, totals)
		}
	}
}

func TestPercentageOf(t *testing.T) {
	tests := []struct {
		name  string
		total CategoryTotal
		grand Money
		want  float64
	}{
		{"half", CategoryTotal{Total: Money{Cents: 50}}, Money{Cents: 100}, 50},
		{"full", CategoryTotal{Total: Money{Cents: 100}}, Money{Cents: 100}, 100},
		{"zero grand total", CategoryTotal{Total: Money{Cents: 50}}, Money{Cents: 0}, 0},
		{"negative grand total", CategoryTotal{Total: Money{Cents: 50}}, Money{Cents: -10}, 0},
		{"zero slice", CategoryTotal{Total: Money{Cents: 0}}, Money{Cents: 100}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PercentageOf(tt.total, tt.grand)
			if got != tt.want {
				t.Errorf("PercentageOf() = %v, want %v", got, tt.want)
			}
			if math.IsNaN(got) || math.IsInf(got, 0) {
				t.Errorf("PercentageOf() must be finite, got %v", got)
			}
		})
	}
}
