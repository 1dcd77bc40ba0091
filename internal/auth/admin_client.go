package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// AdminClient talks to the Supabase admin API for user management. It
// exists for seeding studio staff accounts, not for the regular
// authentication flow, so it lives on the service role key.
type AdminClient struct {
	supabaseURL string
	serviceKey  string
	httpClient  *http.Client
}

// NewAdminClient creates an admin API client. serviceKey must be the
// service role key; the anon key lacks user-management rights.
func NewAdminClient(supabaseURL, serviceKey string) *AdminClient {
	return &AdminClient{
		supabaseURL: supabaseURL,
		serviceKey:  serviceKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type createUserRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	EmailConfirm bool   `json:"email_confirm"`
}

type adminUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type listUsersResponse struct {
	Users []adminUser `json:"users"`
}

// CreateUser creates a confirmed user and returns its UUID. Confirming
// up front lets the seeded account log in without an email round trip.
func (c *AdminClient) CreateUser(ctx context.Context, email, password string) (string, error) {
	payload := createUserRequest{
		Email:        email,
		Password:     password,
		EmailConfirm: true,
	}

	var created adminUser
	if err := c.do(ctx, http.MethodPost, "/auth/v1/admin/users", payload, &created); err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}
	return created.ID, nil
}

// DeleteUserByEmail removes the user holding email. Deleting a user
// that does not exist is not an error.
func (c *AdminClient) DeleteUserByEmail(ctx context.Context, email string) error {
	userID, err := c.findUserIDByEmail(ctx, email)
	if err != nil {
		return nil
	}

	path := "/auth/v1/admin/users/" + userID
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (c *AdminClient) findUserIDByEmail(ctx context.Context, email string) (string, error) {
	var list listUsersResponse
	if err := c.do(ctx, http.MethodGet, "/auth/v1/admin/users", nil, &list); err != nil {
		return "", fmt.Errorf("list users: %w", err)
	}

	for _, user := range list.Users {
		if user.Email == email {
			return user.ID, nil
		}
	}
	return "", fmt.Errorf("user %s not found", email)
}

// do sends one admin API request. A non-nil payload is sent as JSON,
// a non-nil out receives the decoded response body, and any non-2xx
// status becomes an error carrying the body text.
func (c *AdminClient) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.supabaseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("apikey", c.serviceKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
