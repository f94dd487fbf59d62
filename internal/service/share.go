package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/jhartung/tripvault/internal/domain"
	"github.com/jhartung/tripvault/internal/repo"
)

// LinkScheme is the custom URI scheme share links are wrapped in. Part of
// the wire format: links generated by older installs must keep parsing.
const LinkScheme = "tripvault"

// ShareService serializes the full local dataset into a transport-safe link
// and merges an incoming snapshot back into local state without data loss.
type ShareService struct {
	trips    repo.TripRepo
	places   repo.PlaceRepo
	expenses repo.ExpenseRepo
	feed     repo.PublicFeedRepo
	profiles repo.ProfileRepo
	cache    repo.ShareCacheRepo
	now      func() time.Time
}

// NewShareService constructs a ShareService backed by the provided repos.
func NewShareService(trips repo.TripRepo, places repo.PlaceRepo, expenses repo.ExpenseRepo, feed repo.PublicFeedRepo, profiles repo.ProfileRepo, cache repo.ShareCacheRepo) *ShareService {
	return &ShareService{
		trips:    trips,
		places:   places,
		expenses: expenses,
		feed:     feed,
		profiles: profiles,
		cache:    cache,
		now:      time.Now,
	}
}

// ExportAll gathers the full current state from every store into a portable
// snapshot. A missing profile is substituted with the default shape — the
// snapshot never carries a null profile. The snapshot is cached for the UI
// to re-surface; a cache write failure is logged, not raised.
func (s *ShareService) ExportAll(ctx context.Context) (domain.SharedData, error) {
	trips, err := s.trips.GetAll(ctx)
	if err != nil {
		return domain.SharedData{}, fmt.Errorf("service.ShareService.ExportAll: %w", err)
	}
	places, err := s.places.GetAll(ctx)
	if err != nil {
		return domain.SharedData{}, fmt.Errorf("service.ShareService.ExportAll: %w", err)
	}
	expenses, err := s.expenses.GetAll(ctx)
	if err != nil {
		return domain.SharedData{}, fmt.Errorf("service.ShareService.ExportAll: %w", err)
	}

	profile, err := s.profiles.Get(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		profile = domain.DefaultProfile()
	} else if err != nil {
		return domain.SharedData{}, fmt.Errorf("service.ShareService.ExportAll: %w", err)
	}

	data := domain.SharedData{
		Trips:    trips,
		Places:   places,
		Expenses: expenses,
		Profile:  profile,
		LastSync: s.now().UTC(),
	}
	if err := s.cache.Save(ctx, data); err != nil {
		slog.Warn("export snapshot cache write failed", "error", err)
	}
	return data, nil
}

// LastExport returns the snapshot cached by the most recent export, so the
// UI can re-surface what was last shared without rebuilding it. Returns
// domain.ErrNotFound when nothing has been exported yet.
func (s *ShareService) LastExport(ctx context.Context) (domain.SharedData, error) {
	data, err := s.cache.Get(ctx)
	if err != nil {
		return domain.SharedData{}, fmt.Errorf("service.ShareService.LastExport: %w", err)
	}
	return data, nil
}

// GenerateLink serializes the full dataset into a link of the form
// tripvault://share?data=<base64 JSON>.
func (s *ShareService) GenerateLink(ctx context.Context) (string, error) {
	data, err := s.ExportAll(ctx)
	if err != nil {
		return "", fmt.Errorf("service.ShareService.GenerateLink: %w", err)
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("service.ShareService.GenerateLink: encode: %w", err)
	}

	q := url.Values{}
	q.Set("data", base64.StdEncoding.EncodeToString(raw))
	u := url.URL{Scheme: LinkScheme, Host: "share", RawQuery: q.Encode()}
	return u.String(), nil
}

// ImportLink parses and decodes a share link and merges its snapshot into
// local state. Decoding is all-or-nothing: a link that fails to parse,
// decode, or unmarshal raises domain.ErrInvalidShareLink before any write.
func (s *ShareService) ImportLink(ctx context.Context, link string) error {
	u, err := url.Parse(link)
	if err != nil {
		return fmt.Errorf("service.ShareService.ImportLink: %w", domain.ErrInvalidShareLink)
	}
	payload := u.Query().Get("data")
	if payload == "" {
		return fmt.Errorf("service.ShareService.ImportLink: missing data parameter: %w", domain.ErrInvalidShareLink)
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return fmt.Errorf("service.ShareService.ImportLink: %w", domain.ErrInvalidShareLink)
	}
	var data domain.SharedData
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("service.ShareService.ImportLink: %w", domain.ErrInvalidShareLink)
	}
	if err := s.ImportSharedData(ctx, data); err != nil {
		return fmt.Errorf("service.ShareService.ImportLink: %w", err)
	}
	return nil
}

// ImportSharedData merges an incoming snapshot into local state.
//
// Collections merge per item, remote-wins: an incoming item replaces the
// local item with the same id entirely, and unknown ids are appended — the
// result is a superset of both sides keyed by id. The profile is overwritten
// only when the snapshot's LastSync is newer than the local profile's
// LastActiveAt; the local profile otherwise wins. After the trip merge the
// public feed index is reconciled so it again equals the public subset.
func (s *ShareService) ImportSharedData(ctx context.Context, data domain.SharedData) error {
	localPlaces, err := s.places.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("service.ShareService.ImportSharedData: %w", err)
	}
	mergedPlaces := mergeByID(localPlaces, data.Places, func(p domain.Place) string { return p.ID })
	if err := s.places.SaveAll(ctx, mergedPlaces); err != nil {
		return fmt.Errorf("service.ShareService.ImportSharedData: %w", err)
	}

	localTrips, err := s.trips.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("service.ShareService.ImportSharedData: %w", err)
	}
	mergedTrips := mergeByID(localTrips, data.Trips, func(t domain.Trip) string { return t.ID })

	// The snapshot's counters describe the sender's place set. After the
	// place merge they may be stale on both sides, so recount against the
	// merged places before the trips land.
	counts := map[string]int{}
	for _, p := range mergedPlaces {
		if p.TripID != "" {
			counts[p.TripID]++
		}
	}
	for i := range mergedTrips {
		mergedTrips[i].PlacesCount = counts[mergedTrips[i].ID]
	}

	if err := s.trips.SaveAll(ctx, mergedTrips); err != nil {
		return fmt.Errorf("service.ShareService.ImportSharedData: %w", err)
	}

	localExpenses, err := s.expenses.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("service.ShareService.ImportSharedData: %w", err)
	}
	if err := s.expenses.SaveAll(ctx, mergeByID(localExpenses, data.Expenses, func(e domain.Expense) string { return e.ID })); err != nil {
		return fmt.Errorf("service.ShareService.ImportSharedData: %w", err)
	}

	if err := s.mergeProfile(ctx, data); err != nil {
		return fmt.Errorf("service.ShareService.ImportSharedData: %w", err)
	}

	// Reconcile the public feed with the merged trip set so the feed
	// invariant holds on the importing device too.
	for _, t := range mergedTrips {
		if t.Visibility == domain.VisibilityPublic {
			err = s.feed.AddOrReplace(ctx, t)
		} else {
			err = s.feed.Remove(ctx, t.ID)
		}
		if err != nil {
			return fmt.Errorf("service.ShareService.ImportSharedData: sync public feed: %w", err)
		}
	}
	return nil
}

// mergeProfile applies the freshness rule: the incoming profile wins only
// when the snapshot is newer than the local profile's own activity marker.
func (s *ShareService) mergeProfile(ctx context.Context, data domain.SharedData) error {
	local, err := s.profiles.Get(ctx)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return s.profiles.Save(ctx, data.Profile)
	case err != nil:
		return err
	}
	if data.LastSync.After(local.LastActiveAt) {
		return s.profiles.Save(ctx, data.Profile)
	}
	return nil
}

// mergeByID merges incoming into local: an incoming item with a known id
// replaces the local item in place, unknown ids append in incoming order.
func mergeByID[T any](local, incoming []T, id func(T) string) []T {
	out := append([]T(nil), local...)
	index := make(map[string]int, len(out))
	for i, item := range out {
		index[id(item)] = i
	}
	for _, item := range incoming {
		if i, ok := index[id(item)]; ok {
			out[i] = item
		} else {
			index[id(item)] = len(out)
			out = append(out, item)
		}
	}
	return out
}
