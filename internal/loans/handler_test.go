// internal/loans/handler_test.go
package loans

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/migueldrlds/bibliteK-sub000/internal/fines"
	"github.com/migueldrlds/bibliteK-sub000/pkg/eventstore"
)

type stubService struct {
	loan    *Loan
	err     error
	swept   int
	fine    fines.Fine
	entries []eventstore.Entry
}

func (s *stubService) CreateLoan(ctx context.Context, in CreateLoanInput) (*Loan, error) {
	return s.loan, s.err
}

func (s *stubService) RenewLoan(ctx context.Context, id uuid.UUID, newDueDate time.Time) (*Loan, error) {
	return s.loan, s.err
}

func (s *stubService) ReturnLoan(ctx context.Context, id uuid.UUID) (*Loan, error) {
	return s.loan, s.err
}

func (s *stubService) MarkLost(ctx context.Context, id uuid.UUID) (*Loan, error) {
	return s.loan, s.err
}

func (s *stubService) RestoreFromLost(ctx context.Context, id uuid.UUID) (*Loan, error) {
	return s.loan, s.err
}

func (s *stubService) SweepOverdue(ctx context.Context) (int, error) {
	return s.swept, s.err
}

func (s *stubService) EstimateFine(ctx context.Context, id uuid.UUID) (fines.Fine, error) {
	return s.fine, s.err
}

func (s *stubService) GetLoan(ctx context.Context, id uuid.UUID) (*Loan, error) {
	return s.loan, s.err
}

func (s *stubService) ListLoans(ctx context.Context, status *Status) ([]*Loan, error) {
	if s.loan == nil {
		return nil, s.err
	}
	return []*Loan{s.loan}, s.err
}

func (s *stubService) History(ctx context.Context, recordID uuid.UUID) ([]eventstore.Entry, error) {
	if s.entries == nil {
		return nil, eventstore.ErrRecordNotFound
	}
	return s.entries, nil
}

func newTestRouter(svc *stubService) *chi.Mux {
	router := chi.NewRouter()
	router.Route("/loans", NewHandler(svc, svc).Routes)
	return router
}

func TestHandleCreateLoan(t *testing.T) {
	loan := &Loan{ID: uuid.New(), Status: StatusActive}
	router := newTestRouter(&stubService{loan: loan})

	body, _ := json.Marshal(map[string]string{
		"book_id":  uuid.NewString(),
		"user_id":  uuid.NewString(),
		"due_date": "2024-02-01",
		"origin":   "mostrador",
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/loans", bytes.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp loanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, loan.ID, resp.Loan.ID)
	assert.Empty(t, resp.Warning)
}

func TestHandleCreateLoanRequiresOrigin(t *testing.T) {
	router := newTestRouter(&stubService{})

	body, _ := json.Marshal(map[string]string{
		"book_id":  uuid.NewString(),
		"user_id":  uuid.NewString(),
		"due_date": "2024-02-01",
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/loans", bytes.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCreateLoanPartialFailure(t *testing.T) {
	loan := &Loan{ID: uuid.New(), Status: StatusActive}
	svc := &stubService{
		loan: loan,
		err:  &PartialFailure{Loan: loan, Err: fmt.Errorf("inventory unavailable")},
	}
	router := newTestRouter(svc)

	body, _ := json.Marshal(map[string]string{
		"book_id":  uuid.NewString(),
		"user_id":  uuid.NewString(),
		"due_date": "2024-02-01",
		"origin":   "mostrador",
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/loans", bytes.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp loanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, loan.ID, resp.Loan.ID)
	assert.NotEmpty(t, resp.Warning)
}

func TestHandleRenewConflictStatuses(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"cap reached", ErrRenewalCapReached, http.StatusConflict},
		{"not renewable", ErrInvalidTransition, http.StatusConflict},
		{"not found", ErrLoanNotFound, http.StatusNotFound},
		{"bad due date", ErrInvalidDueDate, http.StatusBadRequest},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter(&stubService{err: tc.err})

			body, _ := json.Marshal(map[string]string{"due_date": "2024-03-01"})
			url := "/loans/" + uuid.NewString() + "/renew"
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, url, bytes.NewReader(body)))

			assert.Equal(t, tc.code, rec.Code)
		})
	}
}

func TestHandleGetLoanRejectsBadID(t *testing.T) {
	router := newTestRouter(&stubService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/loans/not-a-uuid", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleListRejectsUnknownStatus(t *testing.T) {
	router := newTestRouter(&stubService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/loans?status=misplaced", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleListEmptyIsArray(t *testing.T) {
	router := newTestRouter(&stubService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/loans?status=lost", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestHandleSweep(t *testing.T) {
	router := newTestRouter(&stubService{swept: 3})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/loans/sweep", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp["updated"])
}

func TestHandleEstimateFine(t *testing.T) {
	router := newTestRouter(&stubService{fine: fines.Fine{Amount: 50, DaysLate: 5}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/loans/"+uuid.NewString()+"/fine", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var fine fines.Fine
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fine))
	assert.Equal(t, int64(50), fine.Amount)
	assert.Equal(t, 5, fine.DaysLate)
}

func TestHandleHistoryNotFound(t *testing.T) {
	router := newTestRouter(&stubService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/loans/"+uuid.NewString()+"/history", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
