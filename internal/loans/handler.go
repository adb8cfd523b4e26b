// internal/loans/handler.go
package loans

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/migueldrlds/bibliteK-sub000/internal/clients"
	"github.com/migueldrlds/bibliteK-sub000/pkg/eventstore"
)

// HistorySource reads the journaled state changes of a loan.
type HistorySource interface {
	History(ctx context.Context, recordID uuid.UUID) ([]eventstore.Entry, error)
}

type Handler struct {
	service Service
	history HistorySource
}

func NewHandler(service Service, history HistorySource) *Handler {
	return &Handler{service: service, history: history}
}

// Routes mounts the loans endpoints on a chi router.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.handleCreate)
	r.Get("/", h.handleList)
	r.Post("/sweep", h.handleSweep)
	r.Get("/{id}", h.handleGet)
	r.Post("/{id}/renew", h.handleRenew)
	r.Post("/{id}/return", h.handleReturn)
	r.Post("/{id}/lost", h.handleMarkLost)
	r.Post("/{id}/restore", h.handleRestore)
	r.Get("/{id}/fine", h.handleEstimateFine)
	r.Get("/{id}/history", h.handleHistory)
}

// loanResponse wraps a loan with an optional warning for the
// partial-failure path, where the loan was recorded but inventory was
// not adjusted.
type loanResponse struct {
	Loan    *Loan  `json:"loan"`
	Warning string `json:"warning,omitempty"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BookID   uuid.UUID `json:"book_id"`
		UserID   uuid.UUID `json:"user_id"`
		LoanDate string    `json:"loan_date"`
		DueDate  string    `json:"due_date"`
		Origin   string    `json:"origin"`
		Notes    string    `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Origin == "" {
		http.Error(w, "origin is required", http.StatusBadRequest)
		return
	}

	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		http.Error(w, "invalid due_date", http.StatusBadRequest)
		return
	}
	var loanDate time.Time
	if req.LoanDate != "" {
		if loanDate, err = parseDate(req.LoanDate); err != nil {
			http.Error(w, "invalid loan_date", http.StatusBadRequest)
			return
		}
	}

	loan, err := h.service.CreateLoan(r.Context(), CreateLoanInput{
		BookID:   req.BookID,
		UserID:   req.UserID,
		LoanDate: loanDate,
		DueDate:  dueDate,
		Origin:   req.Origin,
		Notes:    req.Notes,
	})
	h.writeLoan(w, loan, err, http.StatusCreated)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	loan, err := h.service.GetLoan(r.Context(), id)
	h.writeLoan(w, loan, err, http.StatusOK)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	var status *Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := Status(raw)
		if !s.Valid() {
			http.Error(w, "unknown status", http.StatusBadRequest)
			return
		}
		status = &s
	}

	loans, err := h.service.ListLoans(r.Context(), status)
	if err != nil {
		writeLoansError(w, err)
		return
	}
	if loans == nil {
		loans = []*Loan{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(loans)
}

func (h *Handler) handleRenew(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req struct {
		DueDate string `json:"due_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		http.Error(w, "invalid due_date", http.StatusBadRequest)
		return
	}

	loan, err := h.service.RenewLoan(r.Context(), id, dueDate)
	h.writeLoan(w, loan, err, http.StatusOK)
}

func (h *Handler) handleReturn(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	loan, err := h.service.ReturnLoan(r.Context(), id)
	h.writeLoan(w, loan, err, http.StatusOK)
}

func (h *Handler) handleMarkLost(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	loan, err := h.service.MarkLost(r.Context(), id)
	h.writeLoan(w, loan, err, http.StatusOK)
}

func (h *Handler) handleRestore(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	loan, err := h.service.RestoreFromLost(r.Context(), id)
	h.writeLoan(w, loan, err, http.StatusOK)
}

func (h *Handler) handleSweep(w http.ResponseWriter, r *http.Request) {
	updated, err := h.service.SweepOverdue(r.Context())
	if err != nil {
		writeLoansError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"updated": updated})
}

func (h *Handler) handleEstimateFine(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	fine, err := h.service.EstimateFine(r.Context(), id)
	if err != nil {
		writeLoansError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(fine)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	entries, err := h.history.History(r.Context(), id)
	if err != nil {
		if errors.Is(err, eventstore.ErrRecordNotFound) {
			http.Error(w, "loan not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

// writeLoan renders a loan outcome. A PartialFailure still carries the
// recorded loan, so it is written with the success status plus a
// warning instead of an error status.
func (h *Handler) writeLoan(w http.ResponseWriter, loan *Loan, err error, status int) {
	if err != nil {
		var partial *PartialFailure
		if errors.As(err, &partial) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(loanResponse{Loan: partial.Loan, Warning: partial.Error()})
			return
		}
		writeLoansError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(loanResponse{Loan: loan})
}

func writeLoansError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrLoanNotFound), errors.Is(err, clients.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrRenewalCapReached), errors.Is(err, ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrInvalidDueDate):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, clients.ErrUnavailable):
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid loan ID", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// parseDate accepts either a plain date or a full timestamp.
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
