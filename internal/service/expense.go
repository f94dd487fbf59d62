package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/jhartung/tripvault/internal/domain"
	"github.com/jhartung/tripvault/internal/repo"
)

// ExpenseService implements business logic for expenses and the settlement
// ledger, including per-trip balance computation.
type ExpenseService struct {
	expenses    repo.ExpenseRepo
	settlements repo.SettlementRepo
	now         func() time.Time
}

// NewExpenseService constructs an ExpenseService backed by the provided repos.
func NewExpenseService(expenses repo.ExpenseRepo, settlements repo.SettlementRepo) *ExpenseService {
	return &ExpenseService{expenses: expenses, settlements: settlements, now: time.Now}
}

// ExpensePatch carries the fields an expense update may change.
type ExpensePatch struct {
	Title        *string
	Amount       *float64
	Category     *string
	Date         *string
	PaidBy       *string
	SplitBetween *[]string
	Settled      *bool
	Currency     *string
	ExchangeRate *float64
}

// SettlementParams carries caller-supplied fields for a new ledger entry.
// ExpenseID optionally names the source expense to mark as settled.
type SettlementParams struct {
	TripID    string
	FromUser  string
	ToUser    string
	Amount    float64
	Currency  string
	Status    domain.SettlementStatus
	ExpenseID string
}

// Balance is one participant's net position on a trip: positive means the
// trip owes them money, negative means they owe the trip.
type Balance struct {
	User string  `json:"user"`
	Net  float64 `json:"net"`
}

// List returns all expenses. Read failures degrade to an empty list (logged).
func (s *ExpenseService) List(ctx context.Context) ([]domain.Expense, error) {
	expenses, err := s.expenses.GetAll(ctx)
	if err != nil {
		slog.Error("expense list read failed, returning empty", "error", err)
		return []domain.Expense{}, nil
	}
	return expenses, nil
}

// ListByTrip returns the expenses of one trip.
func (s *ExpenseService) ListByTrip(ctx context.Context, tripID string) ([]domain.Expense, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := []domain.Expense{}
	for _, e := range all {
		if e.TripID == tripID {
			out = append(out, e)
		}
	}
	return out, nil
}

// Add validates and stores an expense. Duplicate ids are a soft skip like
// PlaceService.Add.
func (s *ExpenseService) Add(ctx context.Context, expense domain.Expense) (domain.Expense, error) {
	if err := validateExpense(expense); err != nil {
		return domain.Expense{}, fmt.Errorf("service.ExpenseService.Add: %w", err)
	}
	if expense.ID == "" || domain.IsLegacyID(expense.ID) {
		expense.ID = domain.NewID("expense")
	}
	if expense.CreatedAt.IsZero() {
		expense.CreatedAt = s.now().UTC()
	}
	added, err := s.expenses.Add(ctx, expense)
	if err != nil {
		return domain.Expense{}, fmt.Errorf("service.ExpenseService.Add: %w", err)
	}
	if !added {
		slog.Warn("expense with duplicate id skipped", "id", expense.ID)
	}
	return expense, nil
}

// Update shallow-merges the patch into the stored expense. Setting Settled
// to true stamps SettledAt.
func (s *ExpenseService) Update(ctx context.Context, id string, patch ExpensePatch) (domain.Expense, error) {
	all, err := s.expenses.GetAll(ctx)
	if err != nil {
		return domain.Expense{}, fmt.Errorf("service.ExpenseService.Update: %w", err)
	}
	for _, e := range all {
		if e.ID != id {
			continue
		}
		applyExpensePatch(&e, patch, s.now)
		if err := validateExpense(e); err != nil {
			return domain.Expense{}, fmt.Errorf("service.ExpenseService.Update: %w", err)
		}
		if err := s.expenses.Update(ctx, e); err != nil {
			return domain.Expense{}, fmt.Errorf("service.ExpenseService.Update: %w", err)
		}
		return e, nil
	}
	return domain.Expense{}, fmt.Errorf("service.ExpenseService.Update: %w", domain.ErrNotFound)
}

// RecordSettlement appends an entry to the ledger and, when ExpenseID names
// a stored expense, marks that expense as settled. The ledger entry is
// written first; it is append-only and independent of the expense flag.
func (s *ExpenseService) RecordSettlement(ctx context.Context, p SettlementParams) (domain.ExpenseSettlement, error) {
	if p.TripID == "" || p.FromUser == "" || p.ToUser == "" {
		return domain.ExpenseSettlement{}, fmt.Errorf("service.ExpenseService.RecordSettlement: %w: tripId, fromUser and toUser are required", domain.ErrValidation)
	}
	if p.Amount <= 0 {
		return domain.ExpenseSettlement{}, fmt.Errorf("service.ExpenseService.RecordSettlement: %w: amount must be positive", domain.ErrValidation)
	}
	if p.Status == "" {
		p.Status = domain.SettlementPaid
	}

	entry := domain.ExpenseSettlement{
		ID:        domain.NewID("settlement"),
		TripID:    p.TripID,
		FromUser:  p.FromUser,
		ToUser:    p.ToUser,
		Amount:    p.Amount,
		Currency:  p.Currency,
		Status:    p.Status,
		SettledAt: s.now().UTC(),
	}
	if err := s.settlements.Append(ctx, entry); err != nil {
		return domain.ExpenseSettlement{}, fmt.Errorf("service.ExpenseService.RecordSettlement: %w", err)
	}

	if p.ExpenseID != "" {
		settled := true
		if _, err := s.Update(ctx, p.ExpenseID, ExpensePatch{Settled: &settled}); err != nil {
			// The ledger entry is already durable; surface the partial state
			// instead of pretending the whole operation failed cleanly.
			slog.Warn("settlement recorded but source expense not marked settled",
				"settlement", entry.ID, "expense", p.ExpenseID, "error", err)
		}
	}
	return entry, nil
}

// ListSettlements returns the ledger entries of one trip, oldest first.
func (s *ExpenseService) ListSettlements(ctx context.Context, tripID string) ([]domain.ExpenseSettlement, error) {
	all, err := s.settlements.GetAll(ctx)
	if err != nil {
		slog.Error("settlement list read failed, returning empty", "error", err)
		return []domain.ExpenseSettlement{}, nil
	}
	out := []domain.ExpenseSettlement{}
	for _, e := range all {
		if e.TripID == tripID {
			out = append(out, e)
		}
	}
	return out, nil
}

// TripBalances computes each participant's net position on a trip from its
// expenses and settlements. Every expense credits the payer with the full
// amount and debits each participant in SplitBetween with an equal share;
// every settlement moves money from FromUser to ToUser. Results are sorted
// by user for deterministic output.
func (s *ExpenseService) TripBalances(ctx context.Context, tripID string) ([]Balance, error) {
	expenses, err := s.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.ExpenseService.TripBalances: %w", err)
	}
	settlements, err := s.ListSettlements(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.ExpenseService.TripBalances: %w", err)
	}

	net := map[string]float64{}
	for _, e := range expenses {
		if len(e.SplitBetween) == 0 {
			continue
		}
		share := e.Amount / float64(len(e.SplitBetween))
		net[e.PaidBy] += e.Amount
		for _, user := range e.SplitBetween {
			net[user] -= share
		}
	}
	for _, st := range settlements {
		net[st.FromUser] += st.Amount
		net[st.ToUser] -= st.Amount
	}

	balances := make([]Balance, 0, len(net))
	for user, n := range net {
		balances = append(balances, Balance{User: user, Net: n})
	}
	sort.Slice(balances, func(i, j int) bool { return balances[i].User < balances[j].User })
	return balances, nil
}

func applyExpensePatch(e *domain.Expense, patch ExpensePatch, now func() time.Time) {
	if patch.Title != nil {
		e.Title = *patch.Title
	}
	if patch.Amount != nil {
		e.Amount = *patch.Amount
	}
	if patch.Category != nil {
		e.Category = *patch.Category
	}
	if patch.Date != nil {
		e.Date = *patch.Date
	}
	if patch.PaidBy != nil {
		e.PaidBy = *patch.PaidBy
	}
	if patch.SplitBetween != nil {
		e.SplitBetween = *patch.SplitBetween
	}
	if patch.Currency != nil {
		e.Currency = *patch.Currency
	}
	if patch.ExchangeRate != nil {
		e.ExchangeRate = patch.ExchangeRate
	}
	if patch.Settled != nil && *patch.Settled != e.Settled {
		e.Settled = *patch.Settled
		if e.Settled {
			t := now().UTC()
			e.SettledAt = &t
		} else {
			e.SettledAt = nil
		}
	}
}

func validateExpense(e domain.Expense) error {
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if e.Amount < 0 {
		return fmt.Errorf("%w: amount must not be negative", domain.ErrValidation)
	}
	if e.TripID == "" {
		return fmt.Errorf("%w: tripId is required", domain.ErrValidation)
	}
	return nil
}
