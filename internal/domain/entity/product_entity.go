package entity

import "time"

// ImageRef identifies an image held by the external image host.
// PublicID is the host-side identity used for deletion; SecureURL is the
// publicly retrievable location. Immutable once created.
type ImageRef struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
}

// Product is the aggregate root for the catalog domain.
// A product owns at most one ImageRef at a time. Image is only ever
// written by the product lifecycle service; it must point at a blob
// currently resident in the image host or be nil.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       float64
	CategoryID  string
	Image       *ImageRef
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
