package repo

import (
	"context"
	"fmt"

	"github.com/jhartung/tripvault/internal/domain"
	"github.com/jhartung/tripvault/internal/kv"
)

// SettlementRepo is the append-only ledger of expense settlements.
// Entries are never updated or removed.
type SettlementRepo interface {
	// GetAll returns every ledger entry, oldest first.
	GetAll(ctx context.Context) ([]domain.ExpenseSettlement, error)

	// Append adds an entry to the ledger.
	Append(ctx context.Context, s domain.ExpenseSettlement) error
}

type kvSettlementRepo struct {
	store kv.Store
}

// NewSettlementRepo constructs a SettlementRepo backed by the provided store.
func NewSettlementRepo(store kv.Store) SettlementRepo {
	return &kvSettlementRepo{store: store}
}

func (r *kvSettlementRepo) GetAll(ctx context.Context) ([]domain.ExpenseSettlement, error) {
	raw, err := r.store.Get(ctx, kv.BucketSettlements)
	if err != nil {
		return nil, fmt.Errorf("repo.SettlementRepo.GetAll: %w", err)
	}
	entries, err := decodeList[domain.ExpenseSettlement](kv.BucketSettlements, raw)
	if err != nil {
		return nil, fmt.Errorf("repo.SettlementRepo.GetAll: %w", err)
	}
	return entries, nil
}

func (r *kvSettlementRepo) Append(ctx context.Context, s domain.ExpenseSettlement) error {
	err := r.store.Update(ctx, kv.BucketSettlements, func(old []byte) ([]byte, error) {
		entries, err := decodeList[domain.ExpenseSettlement](kv.BucketSettlements, old)
		if err != nil {
			return nil, err
		}
		return encodeList(kv.BucketSettlements, append(entries, s))
	})
	if err != nil {
		return fmt.Errorf("repo.SettlementRepo.Append: %w", err)
	}
	return nil
}
