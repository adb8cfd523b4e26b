// internal/catalog/domain.go
package catalog

import (
	"time"

	"github.com/google/uuid"
)

// BookStatus is the catalog lifecycle state of a title.
type BookStatus string

const (
	BookActive  BookStatus = "active"
	BookRetired BookStatus = "retired"
)

// Book represents a catalogued title. Physical copies are tracked per
// campus in InventoryRecord rows, not on the book itself.
type Book struct {
	ID             uuid.UUID  `json:"id"`
	ISBN           string     `json:"isbn"`
	Title          string     `json:"title"`
	Author         string     `json:"author"`
	Classification string     `json:"classification"`
	Status         BookStatus `json:"status"`
	Version        int        `json:"version"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// InventoryRecord is the available copy count of a book at one campus.
type InventoryRecord struct {
	BookID    uuid.UUID `json:"book_id"`
	Location  string    `json:"location"`
	Available int       `json:"available"`
}

// Holiday is a calendar date flagged as non-business for fine
// calculation.
type Holiday struct {
	ID   uuid.UUID `json:"id"`
	Date time.Time `json:"date"`
	Name string    `json:"name,omitempty"`
}

// BookAddedChange is journaled when a new title enters the catalog.
type BookAddedChange struct {
	ID             uuid.UUID `json:"id"`
	ISBN           string    `json:"isbn"`
	Title          string    `json:"title"`
	Author         string    `json:"author"`
	Classification string    `json:"classification"`
}

// InventoryAdjustedChange is journaled when copy counts move.
type InventoryAdjustedChange struct {
	BookID    uuid.UUID `json:"book_id"`
	Location  string    `json:"location"`
	Delta     int       `json:"delta"`
	Available int       `json:"available"`
}

// BookRemovedChange is journaled when a title is retired.
type BookRemovedChange struct {
	ID uuid.UUID `json:"id"`
}
