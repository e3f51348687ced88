package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"chartline/internal/handlers"
	"chartline/internal/middleware"
	"chartline/internal/models"
	"chartline/internal/routes"
	"chartline/internal/services"
	"chartline/internal/store/memstore"
)

// testApp wires the full router over in-memory stores so tests exercise
// routing, validation and the service layer together.
type testApp struct {
	router  chi.Router
	service *services.AuthService
	audit   *memstore.AuditLog
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	users := memstore.NewCredentialStore()
	attempts := memstore.NewAttemptStore()
	audit := memstore.NewAuditLog()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	service := services.NewAuthService(users, attempts, audit, logger, models.DefaultLockoutThreshold)

	router := chi.NewRouter()
	routes.RegisterRoutes(router,
		handlers.NewAuthHandler(service),
		handlers.NewAdminHandler(service, audit),
		handlers.NewTimelineHandler(services.NewTimelineService()),
		middleware.RateLimitConfig{RequestsPerMinute: 1000},
	)

	return &testApp{router: router, service: service, audit: audit}
}

// createUser registers a user directly through the service.
func (a *testApp) createUser(t *testing.T, username, email, pw string, role models.Role) {
	t.Helper()
	ok, err := a.service.CreateUser(context.Background(), username, email, pw, role)
	require.NoError(t, err)
	require.True(t, ok)
}

// do issues a request against the router and returns the recorder.
func (a *testApp) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// decodeJSON unmarshals the recorded body into out.
func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out),
		"body: %s", w.Body.String())
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, w.Code, "body: %s", w.Body.String())
}
