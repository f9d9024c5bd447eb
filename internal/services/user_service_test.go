package services

import (
	"database/sql"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/auric/jewelry-be/internal/apperr"
	"github.com/auric/jewelry-be/internal/database"
	"github.com/auric/jewelry-be/internal/models"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func TestCreateUser_HashesAndStrips(t *testing.T) {
	svc := NewUserService(testDB(t), bcrypt.MinCost)

	user, err := svc.CreateUser("Alice", "Alice@Example.com", "1234567890", "Passw0rd")
	require.NoError(t, err)

	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, "alice@example.com", user.Email, "email is stored lowercased")
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Empty(t, user.PasswordHash, "projected record must not carry the hash")
	assert.False(t, user.CreatedAt.IsZero())

	// The persisted hash must be bcrypt, never the plaintext.
	stored, err := svc.GetUserByEmail("alice@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "Passw0rd", stored.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("Passw0rd")))
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	svc := NewUserService(testDB(t), bcrypt.MinCost)

	_, err := svc.CreateUser("Alice", "alice@example.com", "1234567890", "Passw0rd")
	require.NoError(t, err)

	// Case-insensitive duplicate.
	_, err = svc.CreateUser("Mallory", "ALICE@example.com", "0987654321", "Passw0rd")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperr.From(err).Status)
}

func TestAuthenticateUser_Scenario(t *testing.T) {
	svc := NewUserService(testDB(t), bcrypt.MinCost)

	_, err := svc.CreateUser("Alice", "alice@example.com", "1234567890", "Passw0rd")
	require.NoError(t, err)

	user, err := svc.AuthenticateUser("alice@example.com", "Passw0rd")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Empty(t, user.PasswordHash)

	// Wrong password and unknown email must be indistinguishable.
	_, wrongPass := svc.AuthenticateUser("alice@example.com", "nope")
	_, unknown := svc.AuthenticateUser("bob@example.com", "Passw0rd")
	require.Error(t, wrongPass)
	require.Error(t, unknown)
	assert.Equal(t, apperr.From(wrongPass).Message, apperr.From(unknown).Message)
	assert.Equal(t, http.StatusUnauthorized, apperr.From(wrongPass).Status)
	assert.Equal(t, http.StatusUnauthorized, apperr.From(unknown).Status)
}

func TestGetUserByID_Missing(t *testing.T) {
	svc := NewUserService(testDB(t), bcrypt.MinCost)

	_, err := svc.GetUserByID(12345)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperr.From(err).Status)
}

func TestEnsureAdmin(t *testing.T) {
	svc := NewUserService(testDB(t), bcrypt.MinCost)

	require.NoError(t, svc.EnsureAdmin("Root", "admin@example.com", "Adm1npass"))
	admin, err := svc.AuthenticateUser("admin@example.com", "Adm1npass")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)

	// Idempotent on restart.
	require.NoError(t, svc.EnsureAdmin("Root", "admin@example.com", "Adm1npass"))

	// No-op without configuration.
	require.NoError(t, svc.EnsureAdmin("", "", ""))
}
