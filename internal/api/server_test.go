package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polkabooks/polka-server/internal/auth"
	"github.com/polkabooks/polka-server/internal/catalog"
	"github.com/polkabooks/polka-server/internal/media/covers"
	"github.com/polkabooks/polka-server/internal/ratelimit"
	"github.com/polkabooks/polka-server/internal/search"
	"github.com/polkabooks/polka-server/internal/service"
	"github.com/polkabooks/polka-server/internal/store"
)

// testKeyHex is a fixed 32-byte key for tests.
const testKeyHex = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

// setupTestServer wires a full server over the embedded catalog and a
// temporary store. The login limiter is generous so ordinary tests never
// trip it.
func setupTestServer(t *testing.T) *Server {
	return setupTestServerWithLimiter(t, ratelimit.New(1000, 1000))
}

func setupTestServerWithLimiter(t *testing.T, limiter *ratelimit.KeyedRateLimiter) *Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := store.Open(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	t.Cleanup(limiter.Stop)

	tokens, err := auth.NewTokenService(testKeyHex, 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)

	cat, err := catalog.Load(catalog.Options{})
	require.NoError(t, err)

	index, err := search.New(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	discovery, err := service.NewDiscoveryService(cat, index, logger)
	require.NoError(t, err)

	return NewServer(
		service.NewAuthService(st, tokens, logger),
		discovery,
		service.NewReviewService(st, discovery, logger),
		service.NewListService(st, discovery, logger),
		service.NewRecommendationService(cat, st, logger),
		covers.NewResolver(""),
		limiter,
		logger,
	)
}

// doRequest performs a request against the server and returns the recorder.
func doRequest(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "10.0.0.1:52000"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

// envelope mirrors the response wrapper for decoding in assertions.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Success bool            `json:"success"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

// registerUser registers a user and returns the auth response payload.
func registerUser(t *testing.T, s *Server, username string) service.AuthResponse {
	t.Helper()

	rec := doRequest(t, s, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "correct-horse-battery",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp service.AuthResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &resp))
	return resp
}

func TestHealthCheck(t *testing.T) {
	s := setupTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestRegisterAndLogin(t *testing.T) {
	s := setupTestServer(t)

	resp := registerUser(t, s, "anna")
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "anna@example.com",
		"password": "correct-horse-battery",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, s, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "anna@example.com",
		"password": "wrong-password-entirely",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", decodeEnvelope(t, rec).Code)
}

func TestRegister_ValidationError(t *testing.T) {
	s := setupTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "an",
		"email":    "bad",
		"password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION", decodeEnvelope(t, rec).Code)
}

func TestRefreshFlow(t *testing.T) {
	s := setupTestServer(t)

	first := registerUser(t, s, "anna")

	rec := doRequest(t, s, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{
		"refresh_token": first.RefreshToken,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// The rotated-out token no longer works.
	rec = doRequest(t, s, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{
		"refresh_token": first.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetCurrentUser(t *testing.T) {
	s := setupTestServer(t)

	resp := registerUser(t, s, "anna")

	rec := doRequest(t, s, http.MethodGet, "/api/v1/users/me", resp.AccessToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "anna@example.com")

	rec = doRequest(t, s, http.MethodGet, "/api/v1/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/v1/users/me", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListBooks_FilterByGenre(t *testing.T) {
	s := setupTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/books?main_genre=Детектив", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result service.BrowseResult
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &result))
	assert.Equal(t, 3, result.Total)
	assert.NotEmpty(t, result.Description)
}

func TestListBooks_NoFilterReturnsAll(t *testing.T) {
	s := setupTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/books", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result service.BrowseResult
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &result))
	assert.Equal(t, 20, result.Total)
}

func TestGetBook(t *testing.T) {
	s := setupTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/books/1", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Мастер и Маргарита")

	rec = doRequest(t, s, http.MethodGet, "/api/v1/books/999", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/v1/books/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetCover_NotConfigured(t *testing.T) {
	s := setupTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/books/1/cover", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFilterOptions(t *testing.T) {
	s := setupTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/books/options?main_genre=Детектив", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Основной жанр")
}

func TestSearchEndpoint(t *testing.T) {
	s := setupTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/search?q=Кристи", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Агата Кристи")
}

func TestReviewLifecycle(t *testing.T) {
	s := setupTestServer(t)

	user := registerUser(t, s, "anna")

	// Posting requires auth.
	rec := doRequest(t, s, http.MethodPost, "/api/v1/books/1/reviews", "", map[string]any{
		"rating": 5,
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, s, http.MethodPost, "/api/v1/books/1/reviews", user.AccessToken, map[string]any{
		"rating": 5,
		"text":   "Отличная книга",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var review struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &review))

	// Reading is public.
	rec = doRequest(t, s, http.MethodGet, "/api/v1/books/1/reviews", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Отличная книга")

	rec = doRequest(t, s, http.MethodPost, "/api/v1/books/1/reviews/"+review.ID+"/like", user.AccessToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"likes":1`)

	// A second review for the same book conflicts.
	rec = doRequest(t, s, http.MethodPost, "/api/v1/books/1/reviews", user.AccessToken, map[string]any{
		"rating": 3,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doRequest(t, s, http.MethodDelete, "/api/v1/books/1/reviews/"+review.ID, user.AccessToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestListLifecycle(t *testing.T) {
	s := setupTestServer(t)

	user := registerUser(t, s, "anna")

	rec := doRequest(t, s, http.MethodPost, "/api/v1/lists/planned/books/3", user.AccessToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, s, http.MethodPost, "/api/v1/lists/move", user.AccessToken, map[string]any{
		"from":    "planned",
		"to":      "reading",
		"book_id": 3,
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/v1/lists", user.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Убийство в Восточном экспрессе")

	rec = doRequest(t, s, http.MethodDelete, "/api/v1/lists/reading/books/3", user.AccessToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// Unknown list name.
	rec = doRequest(t, s, http.MethodPost, "/api/v1/lists/wishlist/books/3", user.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecommendationsEndpoint(t *testing.T) {
	s := setupTestServer(t)

	user := registerUser(t, s, "anna")

	rec := doRequest(t, s, http.MethodGet, "/api/v1/recommendations", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// A fresh account gets the popularity fallback.
	rec = doRequest(t, s, http.MethodGet, "/api/v1/recommendations?limit=3", user.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var candidates []struct {
		Book struct {
			ID int64 `json:"id"`
		} `json:"book"`
		Score float64 `json:"score"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &candidates))
	require.Len(t, candidates, 3)
	assert.Equal(t, int64(9), candidates[0].Book.ID)
}

func TestLoginRateLimit(t *testing.T) {
	s := setupTestServerWithLimiter(t, ratelimit.New(1, 2))

	body := map[string]string{
		"email":    "anna@example.com",
		"password": "whatever-password",
	}

	codes := make([]int, 0, 4)
	for range 4 {
		rec := doRequest(t, s, http.MethodPost, "/api/v1/auth/login", "", body)
		codes = append(codes, rec.Code)
	}
	assert.Contains(t, codes, http.StatusTooManyRequests)
}
