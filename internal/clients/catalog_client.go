// internal/clients/catalog_client.go
package clients

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/migueldrlds/bibliteK-sub000/internal/catalog"
)

// CatalogClient talks to the catalog service: book lookups and
// per-campus inventory adjustments.
type CatalogClient struct {
	baseURL string
}

func NewCatalogClient(baseURL string) *CatalogClient {
	return &CatalogClient{baseURL: baseURL}
}

// GetBook fetches a title by id.
func (c *CatalogClient) GetBook(ctx context.Context, id uuid.UUID) (*catalog.Book, error) {
	var book catalog.Book
	url := fmt.Sprintf("%s/books/%s", c.baseURL, id)
	if err := doJSON(ctx, http.MethodGet, url, nil, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// AdjustInventory moves the available count of a book at one campus by
// delta (+1 on return, -1 on checkout).
func (c *CatalogClient) AdjustInventory(ctx context.Context, bookID uuid.UUID, location string, delta int) (*catalog.InventoryRecord, error) {
	req := struct {
		Location string `json:"location"`
		Delta    int    `json:"delta"`
	}{Location: location, Delta: delta}

	var rec catalog.InventoryRecord
	url := fmt.Sprintf("%s/books/%s/inventory/adjust", c.baseURL, bookID)
	if err := doJSON(ctx, http.MethodPost, url, req, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
