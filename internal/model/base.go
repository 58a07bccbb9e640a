package model

import (
	"time"

	"github.com/google/uuid"
)

// Base contains common fields for all entities
type Base struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Page is the paginated envelope every list endpoint returns.
type Page[T any] struct {
	Items     []T `json:"items"`
	Total     int `json:"total"`
	PageIndex int `json:"page_index"`
	PerPage   int `json:"per_page"`
}

// TotalPages derives the page count from Total and PerPage.
func (p Page[T]) TotalPages() int {
	if p.PerPage <= 0 {
		return 0
	}
	n := p.Total / p.PerPage
	if p.Total%p.PerPage != 0 {
		n++
	}
	return n
}
