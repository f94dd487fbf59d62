package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jhartung/tripvault/internal/domain"
	"github.com/jhartung/tripvault/internal/service"
)

// updateExpenseRequest is the body of PUT /expenses/{id}. Absent fields are
// left unchanged; settled=true stamps the settlement time server-side.
type updateExpenseRequest struct {
	Title        *string   `json:"title"`
	Amount       *float64  `json:"amount"`
	Category     *string   `json:"category"`
	Date         *string   `json:"date"`
	PaidBy       *string   `json:"paidBy"`
	SplitBetween *[]string `json:"splitBetween"`
	Settled      *bool     `json:"settled"`
	Currency     *string   `json:"currency"`
	ExchangeRate *float64  `json:"exchangeRate"`
}

// settlementRequest is the body of POST /expenses/settlements.
type settlementRequest struct {
	TripID    string                  `json:"tripId"`
	FromUser  string                  `json:"fromUser"`
	ToUser    string                  `json:"toUser"`
	Amount    float64                 `json:"amount"`
	Currency  string                  `json:"currency"`
	Status    domain.SettlementStatus `json:"status"`
	ExpenseID string                  `json:"expenseId"`
}

// ListExpenses handles GET /expenses.
func (s *Server) ListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.expenses.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[domain.Expense]{Data: expenses})
}

// ListTripExpenses handles GET /trips/{id}/expenses.
func (s *Server) ListTripExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.expenses.ListByTrip(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[domain.Expense]{Data: expenses})
}

// AddExpense handles POST /expenses.
func (s *Server) AddExpense(w http.ResponseWriter, r *http.Request) {
	var expense domain.Expense
	if err := decodeBody(r, &expense); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	added, err := s.expenses.Add(r.Context(), expense)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

// UpdateExpense handles PUT /expenses/{id}.
func (s *Server) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	var req updateExpenseRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	expense, err := s.expenses.Update(r.Context(), chi.URLParam(r, "id"), service.ExpensePatch{
		Title:        req.Title,
		Amount:       req.Amount,
		Category:     req.Category,
		Date:         req.Date,
		PaidBy:       req.PaidBy,
		SplitBetween: req.SplitBetween,
		Settled:      req.Settled,
		Currency:     req.Currency,
		ExchangeRate: req.ExchangeRate,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

// RecordSettlement handles POST /expenses/settlements.
func (s *Server) RecordSettlement(w http.ResponseWriter, r *http.Request) {
	var req settlementRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	settlement, err := s.expenses.RecordSettlement(r.Context(), service.SettlementParams{
		TripID:    req.TripID,
		FromUser:  req.FromUser,
		ToUser:    req.ToUser,
		Amount:    req.Amount,
		Currency:  req.Currency,
		Status:    req.Status,
		ExpenseID: req.ExpenseID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, settlement)
}

// ListTripSettlements handles GET /trips/{id}/settlements.
func (s *Server) ListTripSettlements(w http.ResponseWriter, r *http.Request) {
	settlements, err := s.expenses.ListSettlements(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[domain.ExpenseSettlement]{Data: settlements})
}

// GetTripBalances handles GET /trips/{id}/balances.
func (s *Server) GetTripBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := s.expenses.TripBalances(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[service.Balance]{Data: balances})
}
