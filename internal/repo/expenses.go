package repo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jhartung/tripvault/internal/domain"
	"github.com/jhartung/tripvault/internal/kv"
)

// ExpenseRepo defines the persistence operations for expenses.
// GetAll performs the same self-healing ID normalization as PlaceRepo.
type ExpenseRepo interface {
	GetAll(ctx context.Context) ([]domain.Expense, error)

	// Add appends the expense unless one with the same ID already exists
	// (soft skip — see PlaceRepo.Add).
	Add(ctx context.Context, expense domain.Expense) (added bool, err error)

	// Update replaces the stored expense with the same ID.
	// Returns domain.ErrNotFound if it does not exist.
	Update(ctx context.Context, expense domain.Expense) error

	// SaveAll replaces the entire bucket. Used by the merge routine.
	SaveAll(ctx context.Context, expenses []domain.Expense) error
}

type kvExpenseRepo struct {
	store kv.Store
}

// NewExpenseRepo constructs an ExpenseRepo backed by the provided bucket store.
func NewExpenseRepo(store kv.Store) ExpenseRepo {
	return &kvExpenseRepo{store: store}
}

func (r *kvExpenseRepo) GetAll(ctx context.Context) ([]domain.Expense, error) {
	var out []domain.Expense
	err := r.store.Update(ctx, kv.BucketExpenses, func(old []byte) ([]byte, error) {
		expenses, err := decodeList[domain.Expense](kv.BucketExpenses, old)
		if err != nil {
			return nil, err
		}
		healed := healIDs(expenses, "expense", func(e *domain.Expense) *string { return &e.ID })
		out = expenses
		if healed == 0 {
			return old, nil
		}
		slog.Warn("repaired expense ids on load", "count", healed)
		return encodeList(kv.BucketExpenses, expenses)
	})
	if err != nil {
		return nil, fmt.Errorf("repo.ExpenseRepo.GetAll: %w", err)
	}
	if out == nil {
		out = []domain.Expense{}
	}
	return out, nil
}

func (r *kvExpenseRepo) Add(ctx context.Context, expense domain.Expense) (bool, error) {
	added := false
	err := r.store.Update(ctx, kv.BucketExpenses, func(old []byte) ([]byte, error) {
		expenses, err := decodeList[domain.Expense](kv.BucketExpenses, old)
		if err != nil {
			return nil, err
		}
		for _, e := range expenses {
			if e.ID == expense.ID {
				return old, nil
			}
		}
		added = true
		return encodeList(kv.BucketExpenses, append(expenses, expense))
	})
	if err != nil {
		return false, fmt.Errorf("repo.ExpenseRepo.Add: %w", err)
	}
	return added, nil
}

func (r *kvExpenseRepo) Update(ctx context.Context, expense domain.Expense) error {
	err := r.store.Update(ctx, kv.BucketExpenses, func(old []byte) ([]byte, error) {
		expenses, err := decodeList[domain.Expense](kv.BucketExpenses, old)
		if err != nil {
			return nil, err
		}
		for i := range expenses {
			if expenses[i].ID == expense.ID {
				expenses[i] = expense
				return encodeList(kv.BucketExpenses, expenses)
			}
		}
		return nil, domain.ErrNotFound
	})
	if err != nil {
		return fmt.Errorf("repo.ExpenseRepo.Update: %w", err)
	}
	return nil
}

func (r *kvExpenseRepo) SaveAll(ctx context.Context, expenses []domain.Expense) error {
	raw, err := encodeList(kv.BucketExpenses, expenses)
	if err != nil {
		return fmt.Errorf("repo.ExpenseRepo.SaveAll: %w", err)
	}
	if err := r.store.Put(ctx, kv.BucketExpenses, raw); err != nil {
		return fmt.Errorf("repo.ExpenseRepo.SaveAll: %w", err)
	}
	return nil
}
