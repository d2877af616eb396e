package content

import (
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("content not found")
	ErrInvalidInput = errors.New("invalid input")
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Page is an editable static page such as "about" or "shipping-policy".
type Page struct {
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Published bool      `json:"published"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PageRequest struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	Published *bool  `json:"published"`
}

// Video is a featured clip, optionally tied to a product.
type Video struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	URL       string     `json:"url"`
	ProductID *uuid.UUID `json:"product_id,omitempty"`
	SortOrder int        `json:"sort_order"`
	CreatedAt time.Time  `json:"created_at"`
}

type VideoRequest struct {
	Title     string     `json:"title"`
	URL       string     `json:"url"`
	ProductID *uuid.UUID `json:"product_id"`
	SortOrder int        `json:"sort_order"`
}
