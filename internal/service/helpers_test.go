package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jhartung/tripvault/internal/domain"
	"github.com/jhartung/tripvault/internal/kv"
	"github.com/jhartung/tripvault/internal/repo"
	"github.com/jhartung/tripvault/internal/service"
)

const (
	ownerEmail  = "ana@example.com"
	editorEmail = "ben@example.com"
	viewerEmail = "cal@example.com"
)

// env wires every service against real repos over one shared in-memory
// bucket store, so tests exercise the same full-bucket read/write cycles the
// app performs, without a SQLite file.
type env struct {
	store       *kv.MemoryStore
	trips       *service.TripService
	places      *service.PlaceService
	expenses    *service.ExpenseService
	sessions    *service.SessionService
	invitations *service.InvitationService
	share       *service.ShareService

	tripRepo repo.TripRepo
	feedRepo repo.PublicFeedRepo
}

func newEnv(t *testing.T) *env {
	t.Helper()

	store := kv.NewMemory()
	trips := repo.NewTripRepo(store)
	places := repo.NewPlaceRepo(store)
	expenses := repo.NewExpenseRepo(store)
	feed := repo.NewPublicFeedRepo(store)
	profiles := repo.NewProfileRepo(store)
	sessions := repo.NewSessionRepo(store)
	invitations := repo.NewInvitationRepo(store)
	settlements := repo.NewSettlementRepo(store)
	cache := repo.NewShareCacheRepo(store)

	tripSvc := service.NewTripService(trips, feed)

	return &env{
		store:       store,
		trips:       tripSvc,
		places:      service.NewPlaceService(places, tripSvc),
		expenses:    service.NewExpenseService(expenses, settlements),
		sessions:    service.NewSessionService(profiles, sessions, trips, places, expenses),
		invitations: service.NewInvitationService(trips, invitations, feed),
		share:       service.NewShareService(trips, places, expenses, feed, profiles, cache),
		tripRepo:    trips,
		feedRepo:    feed,
	}
}

func createParams(visibility domain.Visibility) service.CreateTripParams {
	return service.CreateTripParams{
		Title:       "Summer in Lisbon",
		Destination: "Lisbon",
		StartDate:   "2026-06-01",
		EndDate:     "2026-06-15",
		Visibility:  visibility,
		Currency:    "EUR",
		CreatedBy:   ownerEmail,
		CreatorName: "Ana",
	}
}

// mustCreateTrip creates a trip through the service, failing the test on error.
func mustCreateTrip(t *testing.T, e *env, visibility domain.Visibility) domain.Trip {
	t.Helper()
	trip, err := e.trips.Create(context.Background(), createParams(visibility))
	require.NoError(t, err)
	return trip
}

// assertFeedMatchesPublicSubset asserts the core index invariant: the public
// feed holds exactly the trips whose visibility is public, as equal copies.
func assertFeedMatchesPublicSubset(t *testing.T, e *env) {
	t.Helper()
	ctx := context.Background()

	all, err := e.tripRepo.GetAll(ctx)
	require.NoError(t, err)
	feed, err := e.feedRepo.GetAll(ctx)
	require.NoError(t, err)

	want := map[string]domain.Trip{}
	for _, trip := range all {
		if trip.Visibility == domain.VisibilityPublic {
			want[trip.ID] = trip
		}
	}
	require.Len(t, feed, len(want), "feed size diverged from public subset")
	for _, trip := range feed {
		expected, ok := want[trip.ID]
		require.True(t, ok, "feed contains non-public trip %s", trip.ID)
		require.Equal(t, expected, trip, "feed copy of %s diverged from trip store", trip.ID)
	}
}
