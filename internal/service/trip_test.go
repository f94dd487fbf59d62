package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhartung/tripvault/internal/domain"
	"github.com/jhartung/tripvault/internal/service"
)

// ---- Create tests ----------------------------------------------------------

func TestTripService_Create_AssemblesOwnerCollaborator(t *testing.T) {
	e := newEnv(t)

	trip := mustCreateTrip(t, e, domain.VisibilityPrivate)

	require.Len(t, trip.Collaborators, 1, "exactly one collaborator at creation")
	owner := trip.Collaborators[0]
	assert.Equal(t, domain.RoleOwner, owner.Role)
	assert.Equal(t, ownerEmail, owner.Email)
	assert.Equal(t, "Ana", owner.Name)
	assert.Equal(t, 1, trip.Participants)
	assert.NotEmpty(t, trip.ID)
	assert.False(t, trip.CreatedAt.IsZero())
	assert.Empty(t, trip.Invitations)
	assert.Empty(t, trip.Partners)
}

func TestTripService_Create_PrivateGetsShareID(t *testing.T) {
	e := newEnv(t)

	trip := mustCreateTrip(t, e, domain.VisibilityPrivate)

	assert.NotEmpty(t, trip.ShareID, "private trips always carry a share id")
	assertFeedMatchesPublicSubset(t, e)
}

func TestTripService_Create_PublicHasNoShareID(t *testing.T) {
	e := newEnv(t)

	trip := mustCreateTrip(t, e, domain.VisibilityPublic)

	assert.Empty(t, trip.ShareID, "public trips never carry a share id")
	assertFeedMatchesPublicSubset(t, e)
}

func TestTripService_Create_MissingTitle(t *testing.T) {
	e := newEnv(t)

	p := createParams(domain.VisibilityPrivate)
	p.Title = "   "

	_, err := e.trips.Create(context.Background(), p)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTripService_Create_UndecidedDatesNeedDuration(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	p := createParams(domain.VisibilityPrivate)
	p.StartDate, p.EndDate = "", ""

	_, err := e.trips.Create(ctx, p)
	assert.ErrorIs(t, err, domain.ErrValidation)

	p.PlannedDurationDays = 10
	trip, err := e.trips.Create(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, 10, trip.PlannedDurationDays)
}

// ---- Update tests ----------------------------------------------------------

func TestTripService_Update_StampsUpdatedAt(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	trip := mustCreateTrip(t, e, domain.VisibilityPrivate)

	title := "Renamed"
	updated, err := e.trips.Update(ctx, trip.ID, service.TripPatch{Title: &title}, ownerEmail)

	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.True(t, updated.UpdatedAt.After(trip.UpdatedAt) || updated.UpdatedAt.Equal(trip.UpdatedAt))
	assert.Equal(t, trip.Destination, updated.Destination, "unpatched fields survive the merge")
}

func TestTripService_Update_PrivateToPublic_EntersFeedAndDropsShareID(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	trip := mustCreateTrip(t, e, domain.VisibilityPrivate)

	public := domain.VisibilityPublic
	updated, err := e.trips.Update(ctx, trip.ID, service.TripPatch{Visibility: &public}, ownerEmail)

	require.NoError(t, err)
	assert.Empty(t, updated.ShareID)
	assertFeedMatchesPublicSubset(t, e)

	feed, err := e.trips.GetPublicTrips(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, trip.ID, feed[0].ID)
}

func TestTripService_Update_PublicToPrivate_LeavesFeedAndGrantsShareID(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	trip := mustCreateTrip(t, e, domain.VisibilityPublic)

	private := domain.VisibilityPrivate
	updated, err := e.trips.Update(ctx, trip.ID, service.TripPatch{Visibility: &private}, ownerEmail)

	require.NoError(t, err)
	assert.NotEmpty(t, updated.ShareID, "going private grants a fresh share id")
	assertFeedMatchesPublicSubset(t, e)
}

func TestTripService_Update_RenameWhilePublic_RefreshesFeedCopy(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	trip := mustCreateTrip(t, e, domain.VisibilityPublic)

	title := "Renamed While Public"
	_, err := e.trips.Update(ctx, trip.ID, service.TripPatch{Title: &title}, ownerEmail)

	require.NoError(t, err)
	// The feed holds copies, not references — a stale copy is divergence.
	assertFeedMatchesPublicSubset(t, e)
}

func TestTripService_Update_NonCollaboratorForbidden(t *testing.T) {
	e := newEnv(t)

	trip := mustCreateTrip(t, e, domain.VisibilityPrivate)

	title := "Hijacked"
	_, err := e.trips.Update(context.Background(), trip.ID, service.TripPatch{Title: &title}, "mallory@example.com")

	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestTripService_Update_NotFound(t *testing.T) {
	e := newEnv(t)

	title := "x"
	_, err := e.trips.Update(context.Background(), "trip_missing_00000000", service.TripPatch{Title: &title}, ownerEmail)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---- Delete tests ----------------------------------------------------------

func TestTripService_Delete_PurgesFeed(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	trip := mustCreateTrip(t, e, domain.VisibilityPublic)

	require.NoError(t, e.trips.Delete(ctx, trip.ID, ownerEmail))

	assertFeedMatchesPublicSubset(t, e)
	trips, err := e.trips.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, trips)
}

func TestTripService_Delete_OnlyOwner(t *testing.T) {
	e := newEnv(t)

	trip := mustCreateTrip(t, e, domain.VisibilityPrivate)

	err := e.trips.Delete(context.Background(), trip.ID, editorEmail)

	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// ---- Feed invariant over operation sequences -------------------------------

// TestTripService_FeedInvariant_OperationSequence drives a mixed sequence of
// creates, visibility flips, renames and deletes, checking after every single
// operation that the feed equals the public subset of the trip store.
func TestTripService_FeedInvariant_OperationSequence(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	a := mustCreateTrip(t, e, domain.VisibilityPublic)
	assertFeedMatchesPublicSubset(t, e)

	b := mustCreateTrip(t, e, domain.VisibilityPrivate)
	assertFeedMatchesPublicSubset(t, e)

	public, private := domain.VisibilityPublic, domain.VisibilityPrivate

	_, err := e.trips.Update(ctx, b.ID, service.TripPatch{Visibility: &public}, ownerEmail)
	require.NoError(t, err)
	assertFeedMatchesPublicSubset(t, e)

	_, err = e.trips.Update(ctx, a.ID, service.TripPatch{Visibility: &private}, ownerEmail)
	require.NoError(t, err)
	assertFeedMatchesPublicSubset(t, e)

	title := "still public, new name"
	_, err = e.trips.Update(ctx, b.ID, service.TripPatch{Title: &title}, ownerEmail)
	require.NoError(t, err)
	assertFeedMatchesPublicSubset(t, e)

	require.NoError(t, e.trips.Delete(ctx, b.ID, ownerEmail))
	assertFeedMatchesPublicSubset(t, e)

	require.NoError(t, e.trips.Delete(ctx, a.ID, ownerEmail))
	assertFeedMatchesPublicSubset(t, e)
}

// ---- Share id lookup -------------------------------------------------------

func TestTripService_FindTripByShareID(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	trip := mustCreateTrip(t, e, domain.VisibilityPrivate)

	found, err := e.trips.FindTripByShareID(ctx, trip.ShareID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, trip.ID, found.ID)
}

func TestTripService_FindTripByShareID_Unknown(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	trip := mustCreateTrip(t, e, domain.VisibilityPrivate)

	found, err := e.trips.FindTripByShareID(ctx, "no-such-share-id")
	require.NoError(t, err)
	assert.Nil(t, found)

	found, err = e.trips.FindTripByShareID(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, found, "empty share id never matches")

	// A deleted trip's share id stops resolving.
	require.NoError(t, e.trips.Delete(ctx, trip.ID, ownerEmail))
	found, err = e.trips.FindTripByShareID(ctx, trip.ShareID)
	require.NoError(t, err)
	assert.Nil(t, found)
}

// ---- Partners and fellow travellers ----------------------------------------

func TestTripService_AddPartner_CountsAsParticipant(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	trip := mustCreateTrip(t, e, domain.VisibilityPrivate)

	partner, err := e.trips.AddPartner(ctx, trip.ID, "Maria", "", ownerEmail)
	require.NoError(t, err)
	assert.Equal(t, "Maria", partner.Name)
	assert.Equal(t, ownerEmail, partner.AddedBy)

	got, err := e.trips.GetByID(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Participants, "owner + partner")
	require.Len(t, got.Partners, 1)
}

func TestTripService_RemovePartner(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	trip := mustCreateTrip(t, e, domain.VisibilityPrivate)
	partner, err := e.trips.AddPartner(ctx, trip.ID, "Maria", "", ownerEmail)
	require.NoError(t, err)

	require.NoError(t, e.trips.RemovePartner(ctx, trip.ID, partner.ID, ownerEmail))

	got, err := e.trips.GetByID(ctx, trip.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Partners)
	assert.Equal(t, 1, got.Participants)
}

func TestTripService_RemovePartner_UnknownID(t *testing.T) {
	e := newEnv(t)

	trip := mustCreateTrip(t, e, domain.VisibilityPrivate)

	err := e.trips.RemovePartner(context.Background(), trip.ID, "partner_missing_0000", ownerEmail)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTripService_AddFellowTraveller_PublicTripRefreshesFeed(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	trip := mustCreateTrip(t, e, domain.VisibilityPublic)

	_, err := e.trips.AddFellowTraveller(ctx, trip.ID, "Jo", "jo@example.com", ownerEmail)
	require.NoError(t, err)

	assertFeedMatchesPublicSubset(t, e)
}
