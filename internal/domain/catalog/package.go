package catalog

import (
	"github.com/google/uuid"
)

// Package is a bundle of treatments sold at a single price.
type Package struct {
	ID              uuid.UUID
	Name            string
	Price           int64
	Currency        string
	DurationMinutes int
}
