package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"traguardi/internal/core"
	"traguardi/internal/storage"
)

type createGoalRequest struct {
	Name        string `json:"name"`
	Target      string `json:"target,omitempty"`
	TargetCents int64  `json:"target_cents,omitempty"`
	Deadline    string `json:"deadline,omitempty"`
}

type goalResponse struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	TargetCents      int64   `json:"target_cents"`
	CurrentCents     int64   `json:"current_cents"`
	Deadline         string  `json:"deadline,omitempty"`
	CreatedAt        string  `json:"created_at"`
	Progress         float64 `json:"progress"`
	ExpectedProgress float64 `json:"expected_progress"`
	Status           string  `json:"status"`
	Completed        bool    `json:"completed"`
	LastStatus       string  `json:"last_reviewed_status,omitempty"`
	Version          int64   `json:"version"`
}

// goalView derives progress and status at read time. Stored last_status
// only reflects the previous review, so it is reported separately.
func goalView(rec storage.GoalRecord, policy core.StatusPolicy, now time.Time) goalResponse {
	resp := goalResponse{
		ID:               rec.ID,
		Name:             rec.Name,
		TargetCents:      rec.Target.Cents,
		CurrentCents:     rec.Current.Cents,
		CreatedAt:        rec.CreatedAt.UTC().Format(time.RFC3339),
		Progress:         rec.Progress(),
		ExpectedProgress: core.ExpectedProgress(rec.Goal, now),
		Status:           string(policy.Status(rec.Goal, now)),
		Completed:        rec.IsCompleted(),
		LastStatus:       string(rec.LastStatus),
		Version:          rec.Version,
	}
	if !rec.Deadline.IsZero() {
		resp.Deadline = rec.Deadline.UTC().Format(time.RFC3339)
	}
	return resp
}

// parseDeadline accepts RFC 3339 timestamps or bare dates. Empty input
// means no deadline.
func parseDeadline(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req createGoalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	target, err := parseAmount(req.Target, req.TargetCents)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "target: " + err.Error()})
		return
	}

	deadline, err := parseDeadline(req.Deadline)
	if err != nil {
		writeBadRequest(w, "deadline must be RFC 3339 or YYYY-MM-DD")
		return
	}

	goal := core.Goal{
		Name:      strings.TrimSpace(req.Name),
		Target:    target,
		Deadline:  deadline,
		CreatedAt: time.Now().UTC(),
	}
	if err := goal.Validate(); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}

	rec, err := s.goals.CreateGoal(r.Context(), goal)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, goalView(rec, s.policy, time.Now().UTC()))
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	recs, err := s.goals.ListGoals(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	now := time.Now().UTC()
	out := make([]goalResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, goalView(rec, s.policy, now))
	}
	writeJSON(w, http.StatusOK, out)
}

func goalID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	id, err := goalID(r)
	if err != nil {
		writeBadRequest(w, "goal id must be an integer")
		return
	}
	rec, err := s.goals.GetGoal(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, goalView(rec, s.policy, time.Now().UTC()))
}

type contributionRequest struct {
	Amount      string `json:"amount,omitempty"`
	AmountCents int64  `json:"amount_cents,omitempty"`
	Note        string `json:"note,omitempty"`
}

type contributionResponse struct {
	ID          int64  `json:"id"`
	GoalID      int64  `json:"goal_id"`
	AmountCents int64  `json:"amount_cents"`
	Note        string `json:"note,omitempty"`
	CreatedAt   string `json:"created_at"`
}

func (s *Server) handleAddContribution(w http.ResponseWriter, r *http.Request) {
	id, err := goalID(r)
	if err != nil {
		writeBadRequest(w, "goal id must be an integer")
		return
	}

	var req contributionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	amount, err := parseAmount(req.Amount, req.AmountCents)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}

	rec, err := s.goals.AddContribution(r.Context(), id, amount, strings.TrimSpace(req.Note))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, goalView(rec, s.policy, time.Now().UTC()))
}

func (s *Server) handleListContributions(w http.ResponseWriter, r *http.Request) {
	id, err := goalID(r)
	if err != nil {
		writeBadRequest(w, "goal id must be an integer")
		return
	}
	if _, err := s.goals.GetGoal(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	contribs, err := s.goals.ListContributions(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]contributionResponse, 0, len(contribs))
	for _, c := range contribs {
		out = append(out, contributionResponse{
			ID:          c.ID,
			GoalID:      c.GoalID,
			AmountCents: c.Amount.Cents,
			Note:        c.Note,
			CreatedAt:   c.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, out)
}
