package repo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhartung/tripvault/internal/domain"
	"github.com/jhartung/tripvault/internal/kv"
	"github.com/jhartung/tripvault/internal/repo"
	"github.com/jhartung/tripvault/testutil"
)

func expenseFixture(id, title string) domain.Expense {
	return domain.Expense{
		ID:           id,
		Title:        title,
		Amount:       42.50,
		Category:     "food",
		Date:         "2026-06-02",
		TripID:       "trip_x_00000001",
		PaidBy:       "ana@example.com",
		SplitBetween: []string{"ana@example.com", "ben@example.com"},
	}
}

func TestExpenseRepo_Add_DuplicateIDIsSoftSkip(t *testing.T) {
	r := repo.NewExpenseRepo(testutil.NewStore(t))
	ctx := context.Background()

	id := domain.NewID("expense")
	added, err := r.Add(ctx, expenseFixture(id, "Dinner"))
	require.NoError(t, err)
	require.True(t, added)

	added, err = r.Add(ctx, expenseFixture(id, "Dinner Again"))
	require.NoError(t, err)
	assert.False(t, added)

	got, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Dinner", got[0].Title)
}

func TestExpenseRepo_GetAll_HealsCorruptedIDs(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()

	seed := `[
		{"id":"42","title":"Legacy","amount":10,"category":"food","date":"2026-06-01","tripId":"t"},
		{"id":"expense_a_bbbbbbb1","title":"Kept","amount":10,"category":"food","date":"2026-06-01","tripId":"t"},
		{"id":"expense_a_bbbbbbb1","title":"Dup","amount":10,"category":"food","date":"2026-06-01","tripId":"t"}
	]`
	require.NoError(t, store.Put(ctx, kv.BucketExpenses, []byte(seed)))

	r := repo.NewExpenseRepo(store)

	first, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, first, 3)

	seen := make(map[string]bool)
	for _, e := range first {
		assert.False(t, domain.IsLegacyID(e.ID))
		assert.False(t, seen[e.ID])
		seen[e.ID] = true
	}

	second, err := r.GetAll(ctx)
	require.NoError(t, err)
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID, "heal must be idempotent")
	}
}

func TestSettlementRepo_AppendIsOrdered(t *testing.T) {
	r := repo.NewSettlementRepo(testutil.NewStore(t))
	ctx := context.Background()

	first := domain.ExpenseSettlement{ID: domain.NewID("settlement"), FromUser: "ben", ToUser: "ana", Amount: 20, TripID: "t", Status: domain.SettlementPaid}
	second := domain.ExpenseSettlement{ID: domain.NewID("settlement"), FromUser: "cal", ToUser: "ana", Amount: 5, TripID: "t", Status: domain.SettlementPaid}

	require.NoError(t, r.Append(ctx, first))
	require.NoError(t, r.Append(ctx, second))

	got, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, second.ID, got[1].ID)
}
