package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// AuthServiceClient talks to the external identity provider's admin API.
// Account records and credentials live there; this service only mirrors and
// references them.
type AuthServiceClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

// IdentityUser is the provider's view of one account.
type IdentityUser struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewAuthServiceClient(baseURL, token string) *AuthServiceClient {
	return &AuthServiceClient{
		BaseURL: baseURL,
		Token:   token,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// ListUsers fetches every account known to the identity provider.
func (c *AuthServiceClient) ListUsers(ctx context.Context) ([]IdentityUser, error) {
	url := fmt.Sprintf("%s/admin/users", c.BaseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Service-Token", c.Token)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth service request failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Printf("AuthService /admin/users returned %d: %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("auth service non-200 response: %d", resp.StatusCode)
	}

	var out struct {
		Users []IdentityUser `json:"users"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode auth service response: %w", err)
	}
	return out.Users, nil
}

// DeleteUser removes an account from the identity provider.
func (c *AuthServiceClient) DeleteUser(ctx context.Context, userID string) error {
	url := fmt.Sprintf("%s/admin/users/%s", c.BaseURL, userID)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-Service-Token", c.Token)

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("auth service request failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("auth service delete failed: %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
