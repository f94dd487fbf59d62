// Package handler implements the HTTP handlers for the TripVault engine.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, trip.go, etc.) but all share the same Server struct so
// they can access its dependencies.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jhartung/tripvault/internal/domain"
	"github.com/jhartung/tripvault/internal/service"
)

// TripServicer defines the business operations the trip handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the storage or service layer.
type TripServicer interface {
	Create(ctx context.Context, p service.CreateTripParams) (domain.Trip, error)
	GetByID(ctx context.Context, id string) (domain.Trip, error)
	List(ctx context.Context) ([]domain.Trip, error)
	Update(ctx context.Context, id string, patch service.TripPatch, actor string) (domain.Trip, error)
	Delete(ctx context.Context, id, actor string) error
	GetPublicTrips(ctx context.Context) ([]domain.Trip, error)
	FindTripByShareID(ctx context.Context, shareID string) (*domain.Trip, error)
	AddPartner(ctx context.Context, tripID, name, email, actor string) (domain.TripPartner, error)
	RemovePartner(ctx context.Context, tripID, partnerID, actor string) error
	AddFellowTraveller(ctx context.Context, tripID, name, email, actor string) (domain.FellowTraveller, error)
	RemoveFellowTraveller(ctx context.Context, tripID, travellerID, actor string) error
}

// PlaceServicer defines the business operations the place handlers depend on.
type PlaceServicer interface {
	List(ctx context.Context) ([]domain.Place, error)
	ListByTrip(ctx context.Context, tripID string) ([]domain.Place, error)
	Add(ctx context.Context, place domain.Place) (domain.Place, error)
	Update(ctx context.Context, id string, patch service.PlacePatch) (domain.Place, error)
}

// ExpenseServicer defines the business operations the expense handlers
// depend on.
type ExpenseServicer interface {
	List(ctx context.Context) ([]domain.Expense, error)
	ListByTrip(ctx context.Context, tripID string) ([]domain.Expense, error)
	Add(ctx context.Context, expense domain.Expense) (domain.Expense, error)
	Update(ctx context.Context, id string, patch service.ExpensePatch) (domain.Expense, error)
	RecordSettlement(ctx context.Context, p service.SettlementParams) (domain.ExpenseSettlement, error)
	ListSettlements(ctx context.Context, tripID string) ([]domain.ExpenseSettlement, error)
	TripBalances(ctx context.Context, tripID string) ([]service.Balance, error)
}

// SessionServicer defines the session and profile operations the handlers
// depend on.
type SessionServicer interface {
	CreateGuestSession(ctx context.Context, p service.GuestParams) (domain.UserProfile, error)
	CreateAuthenticatedSession(ctx context.Context, p service.AuthParams) (domain.UserProfile, error)
	IsLoggedIn(ctx context.Context) bool
	SignOut(ctx context.Context) error
	Profile(ctx context.Context) (domain.UserProfile, error)
	TouchProfile(ctx context.Context) error
	RecalculateStats(ctx context.Context) (domain.UserProfile, error)
}

// InvitationServicer defines the invitation operations the handlers depend on.
type InvitationServicer interface {
	Send(ctx context.Context, tripID, email string, role domain.Role, invitedBy string) (domain.TripInvitation, error)
	Respond(ctx context.Context, invitationID string, response domain.InvitationStatus, userEmail string) error
	ListPending(ctx context.Context, email string) ([]domain.PendingInvitation, error)
}

// ShareServicer defines the export/import operations the handlers depend on.
type ShareServicer interface {
	ExportAll(ctx context.Context) (domain.SharedData, error)
	LastExport(ctx context.Context) (domain.SharedData, error)
	GenerateLink(ctx context.Context) (string, error)
	ImportLink(ctx context.Context, link string) error
	ImportSharedData(ctx context.Context, data domain.SharedData) error
}

// Server holds the handlers' dependencies. Methods are in domain-specific
// files but all operate on this struct.
type Server struct {
	trips       TripServicer
	places      PlaceServicer
	expenses    ExpenseServicer
	sessions    SessionServicer
	invitations InvitationServicer
	share       ShareServicer
}

// NewServer constructs the Server with all its dependencies.
func NewServer(trips TripServicer, places PlaceServicer, expenses ExpenseServicer, sessions SessionServicer, invitations InvitationServicer, share ShareServicer) *Server {
	return &Server{
		trips:       trips,
		places:      places,
		expenses:    expenses,
		sessions:    sessions,
		invitations: invitations,
		share:       share,
	}
}

// Routes builds the chi router over the Server's handlers.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)

	r.Route("/trips", func(r chi.Router) {
		r.Get("/", s.ListTrips)
		r.Post("/", s.CreateTrip)
		r.Get("/public", s.GetPublicTrips)
		r.Get("/share/{shareId}", s.GetTripByShareID)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetTrip)
			r.Put("/", s.UpdateTrip)
			r.Delete("/", s.DeleteTrip)
			r.Post("/partners", s.AddPartner)
			r.Delete("/partners/{partnerId}", s.RemovePartner)
			r.Post("/travellers", s.AddFellowTraveller)
			r.Delete("/travellers/{travellerId}", s.RemoveFellowTraveller)
			r.Get("/places", s.ListTripPlaces)
			r.Get("/expenses", s.ListTripExpenses)
			r.Get("/settlements", s.ListTripSettlements)
			r.Get("/balances", s.GetTripBalances)
		})
	})

	r.Route("/places", func(r chi.Router) {
		r.Get("/", s.ListPlaces)
		r.Post("/", s.AddPlace)
		r.Put("/{id}", s.UpdatePlace)
	})

	r.Route("/expenses", func(r chi.Router) {
		r.Get("/", s.ListExpenses)
		r.Post("/", s.AddExpense)
		r.Put("/{id}", s.UpdateExpense)
		r.Post("/settlements", s.RecordSettlement)
	})

	r.Route("/invitations", func(r chi.Router) {
		r.Get("/", s.ListPendingInvitations)
		r.Post("/", s.SendInvitation)
		r.Post("/{id}/respond", s.RespondInvitation)
	})

	r.Route("/session", func(r chi.Router) {
		r.Get("/", s.GetSession)
		r.Post("/guest", s.CreateGuestSession)
		r.Post("/login", s.CreateAuthenticatedSession)
		r.Post("/logout", s.SignOut)
		r.Post("/stats/recalculate", s.RecalculateStats)
	})

	r.Route("/share", func(r chi.Router) {
		r.Get("/export", s.ExportAll)
		r.Get("/last", s.LastExport)
		r.Get("/link", s.GenerateShareLink)
		r.Post("/import", s.ImportShareLink)
	})

	return r
}

// currentEmail resolves the acting user from the stored profile. The engine
// runs on-device with a single local user, so the active profile IS the
// actor. An empty string means nobody is signed in; role checks downstream
// reject it.
func (s *Server) currentEmail(r *http.Request) string {
	profile, err := s.sessions.Profile(r.Context())
	if err != nil {
		return ""
	}
	return profile.Email
}
