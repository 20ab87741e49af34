package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"traguardi/internal/core"
	applog "traguardi/internal/log"
	"traguardi/internal/services"
)

type createEntryRequest struct {
	Kind        string `json:"kind"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Amount      string `json:"amount,omitempty"`
	AmountCents int64  `json:"amount_cents,omitempty"`
}

type entryResponse struct {
	ID          int64  `json:"id"`
	Kind        string `json:"kind"`
	Category    string `json:"category"`
	Description string `json:"description"`
	AmountCents int64  `json:"amount_cents"`
	CreatedAt   string `json:"created_at"`
}

func entryView(e core.Entry) entryResponse {
	return entryResponse{
		ID:          e.ID,
		Kind:        string(e.Kind),
		Category:    e.Category,
		Description: e.Description,
		AmountCents: e.Amount.Cents,
		CreatedAt:   e.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// parseAmount accepts either a decimal euro string or a raw cent count.
// The decimal form wins when both are present.
func parseAmount(decimal string, cents int64) (core.Money, error) {
	if strings.TrimSpace(decimal) != "" {
		cents, err := core.ParseDecimalToCents(decimal)
		if err != nil {
			return core.Money{}, err
		}
		return core.Money{Cents: cents}, nil
	}
	m := core.Money{Cents: cents}
	if err := m.Validate(); err != nil {
		return core.Money{}, err
	}
	return m, nil
}

// parseCreateEntry accepts a JSON body or an HTML form post.
func parseCreateEntry(w http.ResponseWriter, r *http.Request) (createEntryRequest, error) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseForm(); err != nil {
			return createEntryRequest{}, fmt.Errorf("invalid form body: %w", err)
		}
		return createEntryRequest{
			Kind:        r.FormValue("kind"),
			Category:    r.FormValue("category"),
			Description: r.FormValue("description"),
			Amount:      r.FormValue("amount"),
		}, nil
	}

	var req createEntryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return createEntryRequest{}, err
	}
	return req, nil
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	req, err := parseCreateEntry(w, r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	amount, err := parseAmount(req.Amount, req.AmountCents)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}

	entry := core.Entry{
		Kind:        core.EntryKind(req.Kind),
		Category:    strings.TrimSpace(req.Category),
		Description: strings.TrimSpace(req.Description),
		Amount:      amount,
	}
	if err := entry.Validate(); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}

	saved, err := s.goals.CreateEntry(r.Context(), entry)
	if err != nil {
		writeError(w, err)
		return
	}

	s.breakdownCache.Delete(breakdownCacheKey(saved.Kind))
	writeJSON(w, http.StatusCreated, entryView(saved))
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	kind := core.EntryKind(r.URL.Query().Get("kind"))
	if kind == "" {
		kind = core.KindAsset
	}
	if !kind.Valid() {
		writeBadRequest(w, "kind must be asset or transaction")
		return
	}
	entries, err := s.goals.ListEntries(r.Context(), kind)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryView(e))
	}
	writeJSON(w, http.StatusOK, out)
}

type categoryResponse struct {
	Category   string  `json:"category"`
	TotalCents int64   `json:"total_cents"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type breakdownResponse struct {
	Kind            string             `json:"kind"`
	GrandTotalCents int64              `json:"grand_total_cents"`
	Categories      []categoryResponse `json:"categories"`
}

func breakdownCacheKey(kind core.EntryKind) string {
	return "breakdown:" + string(kind)
}

func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	kind := core.EntryKind(r.URL.Query().Get("kind"))
	if kind == "" {
		kind = core.KindAsset
	}
	if !kind.Valid() {
		writeBadRequest(w, "kind must be asset or transaction")
		return
	}

	key := breakdownCacheKey(kind)
	breakdown, ok := s.breakdownCache.Get(key)
	if !ok {
		var err error
		breakdown, err = s.goals.Breakdown(r.Context(), kind)
		if err != nil {
			writeError(w, err)
			return
		}
		s.breakdownCache.Set(key, breakdown)
	} else {
		applog.FromContext(r.Context()).DebugContext(r.Context(), "breakdown served from cache",
			applog.FieldComponent, applog.ComponentCache,
			applog.FieldEntryKind, string(kind))
	}

	writeJSON(w, http.StatusOK, breakdownView(breakdown))
}

func breakdownView(b services.Breakdown) breakdownResponse {
	resp := breakdownResponse{
		Kind:            string(b.Kind),
		GrandTotalCents: b.GrandTotal.Cents,
		Categories:      make([]categoryResponse, 0, len(b.Totals)),
	}
	for _, t := range b.Totals {
		resp.Categories = append(resp.Categories, categoryResponse{
			Category:   t.Category,
			TotalCents: t.Total.Cents,
			Count:      t.Count,
			Percentage: core.PercentageOf(t, b.GrandTotal),
		})
	}
	return resp
}
