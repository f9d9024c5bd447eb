package handlers

import (
	"encoding/json"
	"net/http"
	"net/mail"
	"regexp"
	"unicode"

	"github.com/rs/zerolog/log"

	"github.com/auric/jewelry-be/internal/apperr"
	"github.com/auric/jewelry-be/internal/auth"
	"github.com/auric/jewelry-be/internal/services"
)

var phoneRe = regexp.MustCompile(`^[0-9]{10}$`)

// AuthHandler handles registration, login and the current-user lookup.
type AuthHandler struct {
	users  services.UserServiceProvider
	tokens *auth.TokenManager
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users services.UserServiceProvider, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles new user registration and returns the account together
// with a fresh token.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, r, apperr.Validation("invalid request body"))
		return
	}

	if err := validateRegister(payload); err != nil {
		respondError(w, r, err)
		return
	}

	user, err := h.users.CreateUser(payload.Name, payload.Email, payload.Phone, payload.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		respondError(w, r, apperr.Internal(err))
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"user":  user,
		"token": token,
	})
}

// Login handles user authentication and token issuance. Unknown email and
// wrong password produce the same response.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, r, apperr.Validation("invalid request body"))
		return
	}
	if payload.Email == "" || payload.Password == "" {
		respondError(w, r, apperr.Validation("email and password are required"))
		return
	}

	user, err := h.users.AuthenticateUser(payload.Email, payload.Password)
	if err != nil {
		log.Warn().Str("email", payload.Email).Msg("Failed authentication attempt")
		respondError(w, r, err)
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		respondError(w, r, apperr.Internal(err))
		return
	}

	log.Info().Str("email", user.Email).Msg("User logged in")
	respondJSON(w, http.StatusOK, map[string]any{
		"user":  user,
		"token": token,
	})
}

// Me returns the authenticated user's record.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		respondError(w, r, apperr.Unauthenticated("authentication required"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"user": user})
}

func validateRegister(p RegisterPayload) error {
	if len(p.Name) < 2 || len(p.Name) > 100 {
		return apperr.Validation("name must be between 2 and 100 characters")
	}
	if _, err := mail.ParseAddress(p.Email); err != nil {
		return apperr.Validation("a valid email is required")
	}
	if !phoneRe.MatchString(p.Phone) {
		return apperr.Validation("phone number must be 10 digits")
	}
	return validatePassword(p.Password)
}

// Passwords need at least 6 characters with an upper, a lower and a digit.
func validatePassword(password string) error {
	if len(password) < 6 {
		return apperr.Validation("password must be at least 6 characters long")
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return apperr.Validation("password must contain at least one uppercase letter, one lowercase letter, and one number")
	}
	return nil
}
