package core

import "sort"

// CategoryTotal is the aggregate of all items sharing a category.
type CategoryTotal struct {
	Category string
	Total    Money
	Count    int
}

// Aggregate groups items by category, summing amounts and counting members.
// The result is ordered by total descending so legends render the largest
// slice first; ties keep the order categories first appeared in the input.
// Empty input yields an empty result, and zero-amount categories are kept
// rather than filtered.
func Aggregate(items []Item) []CategoryTotal {
	if len(items) == 0 {
		return nil
	}
	idx := make(map[string]int, len(items))
	totals := make([]CategoryTotal, 0, len(items))
	for _, it := range items {
		i, ok := idx[it.Category]
		if !ok {
			i = len(totals)
			idx[it.Category] = i
			totals = append(totals, CategoryTotal{Category: it.Category})
		}
		totals[i].Total.Cents += it.Amount.Cents
		totals[i].Count++
	}
	sort.SliceStable(totals, func(a, b int) bool {
		return totals[a].Total.Cents > totals[b].Total.Cents
	})
	return totals
}

// GrandTotal sums category totals into the percentage denominator.
func GrandTotal(totals []CategoryTotal) Money {
	var sum int64
	for _, t := range totals {
		sum += t.Total.Cents
	}
	return Money{Cents: sum}
}

// PercentageOf returns the category's share of the grand total in percent.
// A non-positive grand total yields 0 instead of dividing by zero, so the
// result is always finite.
func PercentageOf(t CategoryTotal, grand Money) float64 {
	if grand.Cents <= 0 {
		return 0
	}
	return float64(t.Total.Cents) / float64(grand.Cents) * 100
}
