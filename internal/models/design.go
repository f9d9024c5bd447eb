package models

import "time"

// Design statuses walked by the admin triage flow.
const (
	DesignStatusPending    = "pending"
	DesignStatusInProgress = "in_progress"
	DesignStatusCompleted  = "completed"
	DesignStatusRejected   = "rejected"
)

// Design represents a custom jewelry design request submitted by a user.
// UserName and UserEmail are only populated on the admin listing, which
// joins the owning account.
type Design struct {
	ID                 int64     `json:"id"`
	UserID             int64     `json:"userId"`
	DesignName         string    `json:"designName"`
	MaterialPreference string    `json:"materialPreference"`
	ApproximateWeight  float64   `json:"approximateWeight"`
	Description        string    `json:"description,omitempty"`
	ReferenceImage     string    `json:"referenceImage,omitempty"`
	Status             string    `json:"status"`
	CreatedAt          time.Time `json:"createdAt"`

	UserName  string `json:"userName,omitempty"`
	UserEmail string `json:"userEmail,omitempty"`
}
