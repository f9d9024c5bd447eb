package models

import "time"

// Roles recognized by the authorization guard. There is no hierarchy; a
// route that admits both roles lists both explicitly.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered account. The password hash is part of the
// persisted row but is stripped at the authentication boundary and never
// serialized outward.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
