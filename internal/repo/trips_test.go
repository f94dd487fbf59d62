package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhartung/tripvault/internal/domain"
	"github.com/jhartung/tripvault/internal/repo"
	"github.com/jhartung/tripvault/testutil"
)

func tripFixture(title string) domain.Trip {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	return domain.Trip{
		ID:          domain.NewID("trip"),
		Title:       title,
		Destination: "Lisbon",
		StartDate:   "2026-06-01",
		EndDate:     "2026-06-15",
		Visibility:  domain.VisibilityPublic,
		CreatedBy:   "ana@example.com",
		CreatedAt:   now,
		UpdatedAt:   now,
		Collaborators: []domain.TripCollaborator{{
			ID:       domain.NewID("collab"),
			Email:    "ana@example.com",
			Name:     "Ana",
			Role:     domain.RoleOwner,
			JoinedAt: now,
		}},
		Invitations:      []domain.TripInvitation{},
		Partners:         []domain.TripPartner{},
		FellowTravellers: []domain.FellowTraveller{},
	}
}

func TestTripRepo_UpsertAndGetByID(t *testing.T) {
	r := repo.NewTripRepo(testutil.NewStore(t))
	ctx := context.Background()

	trip := tripFixture("Summer in Lisbon")
	require.NoError(t, r.Upsert(ctx, trip))

	got, err := r.GetByID(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, trip.Title, got.Title)
	assert.Equal(t, domain.RoleOwner, got.Collaborators[0].Role)
}

func TestTripRepo_GetByID_NotFound(t *testing.T) {
	r := repo.NewTripRepo(testutil.NewStore(t))

	_, err := r.GetByID(context.Background(), "trip_missing_00000000")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTripRepo_Upsert_ReplacesByID(t *testing.T) {
	r := repo.NewTripRepo(testutil.NewStore(t))
	ctx := context.Background()

	trip := tripFixture("Before")
	require.NoError(t, r.Upsert(ctx, trip))

	trip.Title = "After"
	require.NoError(t, r.Upsert(ctx, trip))

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1, "upsert by existing id must replace, not append")
	assert.Equal(t, "After", all[0].Title)
}

func TestTripRepo_Delete(t *testing.T) {
	r := repo.NewTripRepo(testutil.NewStore(t))
	ctx := context.Background()

	trip := tripFixture("Doomed")
	require.NoError(t, r.Upsert(ctx, trip))
	require.NoError(t, r.Delete(ctx, trip.ID))

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestTripRepo_Delete_NotFound(t *testing.T) {
	r := repo.NewTripRepo(testutil.NewStore(t))

	err := r.Delete(context.Background(), "trip_missing_00000000")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
