package services

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/auric/jewelry-be/internal/apperr"
	"github.com/auric/jewelry-be/internal/auth"
	"github.com/auric/jewelry-be/internal/models"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	GetUserByID(id int64) (models.User, error)
	GetUserByEmail(email string) (models.User, error)
	CreateUser(name, email, phone, password string) (models.User, error)
	AuthenticateUser(email, password string) (models.User, error)
	EnsureAdmin(name, email, password string) error
}

// UserService provides business logic for account management.
type UserService struct {
	db         *sql.DB
	bcryptCost int
}

// NewUserService creates a new UserService. The bcrypt cost is fixed at
// startup from configuration.
func NewUserService(db *sql.DB, bcryptCost int) *UserService {
	return &UserService{db: db, bcryptCost: bcryptCost}
}

// GetUserByID retrieves a single user by ID, projecting every column except
// the password hash.
func (s *UserService) GetUserByID(id int64) (models.User, error) {
	var user models.User
	row := s.db.QueryRow("SELECT id, name, email, phone, role, created_at FROM users WHERE id = ?", id)
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Phone, &user.Role, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, apperr.NotFound("user not found")
		}
		return models.User{}, fmt.Errorf("failed to query user %d: %w", id, err)
	}
	return user, nil
}

// GetUserByEmail retrieves a single user by email, including the password
// hash. Only the login path may use this; everything downstream gets the
// projected record.
func (s *UserService) GetUserByEmail(email string) (models.User, error) {
	var user models.User
	row := s.db.QueryRow("SELECT id, name, email, phone, password_hash, role, created_at FROM users WHERE email = ?", normalizeEmail(email))
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Phone, &user.PasswordHash, &user.Role, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, apperr.NotFound("user not found")
		}
		return models.User{}, fmt.Errorf("failed to query user by email: %w", err)
	}
	return user, nil
}

// CreateUser registers a new account with the user role, hashing the
// password before it is stored. The plaintext is never persisted or logged.
func (s *UserService) CreateUser(name, email, phone, password string) (models.User, error) {
	email = normalizeEmail(email)

	var existing int64
	err := s.db.QueryRow("SELECT id FROM users WHERE email = ?", email).Scan(&existing)
	if err == nil {
		return models.User{}, apperr.Validation("an account with this email already exists")
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.User{}, fmt.Errorf("failed to check for existing email: %w", err)
	}

	hashed, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return models.User{}, err
	}

	res, err := s.db.Exec(
		"INSERT INTO users (name, email, phone, password_hash, role) VALUES (?, ?, ?, ?, ?)",
		name, email, phone, hashed, models.RoleUser,
	)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.User{}, err
	}

	log.Info().Str("email", email).Msg("New user registered")
	return s.GetUserByID(id)
}

// AuthenticateUser verifies a user's credentials. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *UserService) AuthenticateUser(email, password string) (models.User, error) {
	user, err := s.GetUserByEmail(email)
	if err != nil {
		if apperr.From(err).Status == http.StatusNotFound {
			return models.User{}, apperr.Unauthenticated("invalid credentials")
		}
		return models.User{}, err
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return models.User{}, apperr.Unauthenticated("invalid credentials")
	}

	user.PasswordHash = ""
	return user, nil
}

// EnsureAdmin seeds the administrator account from configuration. It is a
// no-op when no admin email is configured or the account already exists.
func (s *UserService) EnsureAdmin(name, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	email = normalizeEmail(email)

	var id int64
	err := s.db.QueryRow("SELECT id FROM users WHERE email = ?", email).Scan(&id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to check for admin account: %w", err)
	}

	hashed, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(
		"INSERT INTO users (name, email, phone, password_hash, role) VALUES (?, ?, ?, ?, ?)",
		name, email, "", hashed, models.RoleAdmin,
	)
	if err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}

	log.Info().Str("email", email).Msg("Seeded admin account")
	return nil
}

// Emails are unique case-insensitively; stored lowercased.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
