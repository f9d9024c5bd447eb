package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auric/jewelry-be/internal/apperr"
	"github.com/auric/jewelry-be/internal/models"
)

// stubUserSource serves users from a map; absent IDs behave like deleted
// principals.
type stubUserSource struct {
	users map[int64]models.User
}

func (s *stubUserSource) GetUserByID(id int64) (models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return models.User{}, apperr.NotFound("user not found")
	}
	return user, nil
}

func newTestMiddleware(users ...models.User) (*Middleware, *TokenManager) {
	source := &stubUserSource{users: make(map[int64]models.User)}
	for _, u := range users {
		source.users[u.ID] = u
	}
	tokens := NewTokenManager("test-secret", time.Hour)
	return NewMiddleware(tokens, source), tokens
}

// okHandler records the user Authenticate attached to the context.
func okHandler(t *testing.T, captured *models.User) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := CurrentUser(r.Context())
		require.True(t, ok, "expected a user on the request context")
		*captured = user
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	t.Parallel()

	mw, _ := newTestMiddleware()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)

	mw.Authenticate(http.NotFoundHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "unauthenticated")
}

func TestAuthenticate_MalformedHeader(t *testing.T) {
	t.Parallel()

	mw, tokens := newTestMiddleware(models.User{ID: 1, Role: models.RoleUser})
	tok, err := tokens.Issue(1)
	require.NoError(t, err)

	for _, header := range []string{"Basic abc", tok, "Bearer", "Bearer " + tok + " extra"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", header)

		mw.Authenticate(http.NotFoundHandler()).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestAuthenticate_BadToken(t *testing.T) {
	t.Parallel()

	mw, _ := newTestMiddleware()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not.a.jwt")

	mw.Authenticate(http.NotFoundHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	t.Parallel()

	source := &stubUserSource{users: map[int64]models.User{1: {ID: 1}}}
	expired := NewTokenManager("test-secret", -1*time.Minute)
	mw := NewMiddleware(NewTokenManager("test-secret", time.Hour), source)

	tok, err := expired.Issue(1)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tok)

	mw.Authenticate(http.NotFoundHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_DeletedPrincipal(t *testing.T) {
	t.Parallel()

	// Token is valid and unexpired, but the account no longer exists.
	mw, tokens := newTestMiddleware()
	tok, err := tokens.Issue(99)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tok)

	mw.Authenticate(http.NotFoundHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "unauthenticated")
}

func TestAuthenticate_AttachesStoreUser(t *testing.T) {
	t.Parallel()

	alice := models.User{ID: 3, Name: "Alice", Email: "alice@example.com", Role: models.RoleUser}
	mw, tokens := newTestMiddleware(alice)
	tok, err := tokens.Issue(3)
	require.NoError(t, err)

	var captured models.User
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tok)

	mw.Authenticate(okHandler(t, &captured)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, alice, captured)
	assert.Empty(t, captured.PasswordHash)
}

func TestRequireRoles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		role     string
		allowed  []string
		wantCode int
	}{
		{"user against admin-only", models.RoleUser, []string{models.RoleAdmin}, http.StatusForbidden},
		{"admin against admin-only", models.RoleAdmin, []string{models.RoleAdmin}, http.StatusOK},
		{"admin is not implicitly a user", models.RoleAdmin, []string{models.RoleUser}, http.StatusForbidden},
		{"either role listed", models.RoleUser, []string{models.RoleUser, models.RoleAdmin}, http.StatusOK},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			account := models.User{ID: 1, Role: tt.role}
			mw, tokens := newTestMiddleware(account)
			tok, err := tokens.Issue(1)
			require.NoError(t, err)

			handler := mw.Authenticate(mw.RequireRoles(tt.allowed...)(http.HandlerFunc(
				func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) },
			)))

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Bearer "+tok)
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode == http.StatusForbidden {
				assert.Contains(t, rec.Body.String(), tt.role)
			}
		})
	}
}

func TestRequireRoles_WithoutAuthenticate(t *testing.T) {
	t.Parallel()

	mw, _ := newTestMiddleware()
	handler := mw.RequireRoles(models.RoleAdmin)(http.NotFoundHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
