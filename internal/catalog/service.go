// internal/catalog/service.go
package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Service defines the interface for the catalog service.
type Service interface {
	AddBook(ctx context.Context, isbn, title, author, classification string, stock map[string]int) (*Book, error)
	GetBook(ctx context.Context, id uuid.UUID) (*Book, error)
	GetInventory(ctx context.Context, bookID uuid.UUID) ([]InventoryRecord, error)
	AdjustInventory(ctx context.Context, bookID uuid.UUID, location string, delta int) (*InventoryRecord, error)
	Search(ctx context.Context, query string) ([]*Book, error)
	RemoveBook(ctx context.Context, id uuid.UUID) error

	ListHolidays(ctx context.Context) ([]Holiday, error)
	AddHoliday(ctx context.Context, date time.Time, name string) (*Holiday, error)
	RemoveHoliday(ctx context.Context, id uuid.UUID) error
}
