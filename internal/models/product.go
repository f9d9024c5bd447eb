package models

import "time"

// Product represents a catalog item. Image holds the generated filename of
// the stored upload, empty when no image has been attached.
type Product struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Grams        float64   `json:"grams"`
	Wastage      float64   `json:"wastage"`
	Category     string    `json:"category"`
	Description  string    `json:"description,omitempty"`
	Availability string    `json:"availability"`
	Image        string    `json:"image,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
