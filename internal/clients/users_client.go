// internal/clients/users_client.go
package clients

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/migueldrlds/bibliteK-sub000/internal/users"
)

// UsersClient talks to the users service.
type UsersClient struct {
	baseURL string
}

func NewUsersClient(baseURL string) *UsersClient {
	return &UsersClient{baseURL: baseURL}
}

// GetUser fetches a user by id.
func (c *UsersClient) GetUser(ctx context.Context, id uuid.UUID) (*users.User, error) {
	var user users.User
	url := fmt.Sprintf("%s/%s", c.baseURL, id)
	if err := doJSON(ctx, http.MethodGet, url, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
