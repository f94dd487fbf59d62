package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhartung/tripvault/internal/domain"
	"github.com/jhartung/tripvault/internal/handler"
)

// mockShareServicer is a test double for handler.ShareServicer.
type mockShareServicer struct {
	exportAll        func(ctx context.Context) (domain.SharedData, error)
	lastExport       func(ctx context.Context) (domain.SharedData, error)
	generateLink     func(ctx context.Context) (string, error)
	importLink       func(ctx context.Context, link string) error
	importSharedData func(ctx context.Context, data domain.SharedData) error
}

func (m *mockShareServicer) ExportAll(ctx context.Context) (domain.SharedData, error) {
	return m.exportAll(ctx)
}
func (m *mockShareServicer) LastExport(ctx context.Context) (domain.SharedData, error) {
	return m.lastExport(ctx)
}
func (m *mockShareServicer) GenerateLink(ctx context.Context) (string, error) {
	return m.generateLink(ctx)
}
func (m *mockShareServicer) ImportLink(ctx context.Context, link string) error {
	return m.importLink(ctx, link)
}
func (m *mockShareServicer) ImportSharedData(ctx context.Context, data domain.SharedData) error {
	return m.importSharedData(ctx, data)
}

var _ handler.ShareServicer = (*mockShareServicer)(nil)

func newShareRouter(svc handler.ShareServicer) http.Handler {
	srv := handler.NewServer(nil, nil, nil, &mockSessionServicer{}, nil, svc)
	return srv.Routes()
}

func TestGenerateShareLink_200(t *testing.T) {
	svc := &mockShareServicer{
		generateLink: func(_ context.Context) (string, error) {
			return "tripvault://share?data=eyJ0cmlwcyI6W119", nil
		},
	}
	h := newShareRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/share/link", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeResponse[struct {
		Link string `json:"link"`
	}](t, rec)
	assert.Contains(t, got.Link, "tripvault://share?data=")
}

func TestImportShareLink_204(t *testing.T) {
	var imported string
	svc := &mockShareServicer{
		importLink: func(_ context.Context, link string) error {
			imported = link
			return nil
		},
	}
	h := newShareRouter(svc)

	body := jsonBody(t, map[string]any{"link": "tripvault://share?data=eyJ0cmlwcyI6W119"})
	req := httptest.NewRequest(http.MethodPost, "/share/import", body)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "tripvault://share?data=eyJ0cmlwcyI6W119", imported)
}

func TestImportShareLink_422OnInvalidLink(t *testing.T) {
	svc := &mockShareServicer{
		importLink: func(_ context.Context, _ string) error {
			return fmt.Errorf("service.ShareService.ImportLink: %w", domain.ErrInvalidShareLink)
		},
	}
	h := newShareRouter(svc)

	body := jsonBody(t, map[string]any{"link": "https://not-a-share-link"})
	req := httptest.NewRequest(http.MethodPost, "/share/import", body)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	got := decodeResponse[handler.ErrorResponse](t, rec)
	assert.Equal(t, "invalid_share_link", got.Error.Code)
}

func TestExportAll_200(t *testing.T) {
	svc := &mockShareServicer{
		exportAll: func(_ context.Context) (domain.SharedData, error) {
			return domain.SharedData{
				Trips:   []domain.Trip{tripFixture()},
				Profile: domain.UserProfile{Email: testUserEmail},
			}, nil
		},
	}
	h := newShareRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/share/export", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeResponse[domain.SharedData](t, rec)
	require.Len(t, got.Trips, 1)
	assert.Equal(t, testUserEmail, got.Profile.Email)
}

func TestLastExport_200(t *testing.T) {
	svc := &mockShareServicer{
		lastExport: func(_ context.Context) (domain.SharedData, error) {
			return domain.SharedData{Trips: []domain.Trip{tripFixture()}}, nil
		},
	}
	h := newShareRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/share/last", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeResponse[domain.SharedData](t, rec)
	require.Len(t, got.Trips, 1)
}

func TestLastExport_404BeforeFirstExport(t *testing.T) {
	svc := &mockShareServicer{
		lastExport: func(_ context.Context) (domain.SharedData, error) {
			return domain.SharedData{}, fmt.Errorf("service.ShareService.LastExport: %w", domain.ErrNotFound)
		},
	}
	h := newShareRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/share/last", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	got := decodeResponse[handler.ErrorResponse](t, rec)
	assert.Equal(t, "not_found", got.Error.Code)
}
