package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/matthieukhl/doemart/internal/models"
	"github.com/matthieukhl/doemart/internal/types"
)

type authUser struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

type tokenResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int      `json:"expires_in"`
	User         authUser `json:"user"`
}

type signUpResponse struct {
	tokenResponse
	// Returned instead of a session when the project requires email confirmation
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

func (c *Client) toSession(t tokenResponse) *types.Session {
	s := &types.Session{
		Identity:     types.Identity{ID: t.User.ID, Email: t.User.Email},
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
	}
	if t.ExpiresIn > 0 {
		s.ExpiresAt = c.now().Add(time.Duration(t.ExpiresIn) * time.Second)
	}
	return s
}

func (c *Client) setSession(s *types.Session) error {
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()

	if s == nil {
		return c.storage.Clear()
	}
	return c.storage.Save(s)
}

func (c *Client) token(ctx context.Context, grant string, body any) (*types.Session, error) {
	values := url.Values{"grant_type": {grant}}
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/v1/token", values, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	var t tokenResponse
	if _, err := c.do(req, &t); err != nil {
		return nil, err
	}
	return c.toSession(t), nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*types.Session, error) {
	s, err := c.token(ctx, "password", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		var apiErr *types.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest {
			return nil, types.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("sign in: %w", err)
	}

	if err := c.setSession(s); err != nil {
		return nil, err
	}
	return s, nil
}

func (c *Client) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*types.Session, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
	}
	if len(metadata) > 0 {
		body["data"] = metadata
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/auth/v1/signup", nil, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	var resp signUpResponse
	if _, err := c.do(req, &resp); err != nil {
		var apiErr *types.APIError
		if errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnprocessableEntity || apiErr.Status == http.StatusBadRequest) {
			if strings.Contains(strings.ToLower(apiErr.Message), "already") {
				return nil, fmt.Errorf("%w: %s", types.ErrEmailTaken, apiErr.Message)
			}
			return nil, fmt.Errorf("%w: %s", models.ErrInvalidInput, apiErr.Message)
		}
		return nil, fmt.Errorf("sign up: %w", err)
	}

	if resp.AccessToken == "" {
		return nil, fmt.Errorf("sign-up for %s needs email confirmation: %w", email, types.ErrNoSession)
	}

	s := c.toSession(resp.tokenResponse)
	if err := c.setSession(s); err != nil {
		return nil, err
	}
	return s, nil
}

// SignOut revokes the remote session and always forgets the local copy on success
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.RLock()
	active := c.session != nil
	c.mu.RUnlock()

	if active {
		req, err := c.newRequest(ctx, http.MethodPost, "/auth/v1/logout", nil, nil)
		if err != nil {
			return err
		}
		if _, err := c.do(req, nil); err != nil && !errors.Is(err, types.ErrUnauthorized) {
			return fmt.Errorf("sign out: %w", err)
		}
	}

	return c.setSession(nil)
}

// RestoreSession loads the stored session, refreshing it when the access token has expired
func (c *Client) RestoreSession(ctx context.Context) (*types.Session, error) {
	stored, err := c.storage.Load()
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, types.ErrNoSession
	}

	if stored.Expired(c.now()) {
		if stored.RefreshToken == "" {
			_ = c.setSession(nil)
			return nil, types.ErrNoSession
		}
		refreshed, err := c.token(ctx, "refresh_token", map[string]string{
			"refresh_token": stored.RefreshToken,
		})
		if err != nil {
			if errors.Is(err, types.ErrUnauthorized) || isClientError(err) {
				_ = c.setSession(nil)
				return nil, types.ErrNoSession
			}
			return nil, fmt.Errorf("refresh session: %w", err)
		}
		if err := c.setSession(refreshed); err != nil {
			return nil, err
		}
		return refreshed, nil
	}

	c.mu.Lock()
	c.session = stored
	c.mu.Unlock()

	req, err := c.newRequest(ctx, http.MethodGet, "/auth/v1/user", nil, nil)
	if err != nil {
		return nil, err
	}
	var u authUser
	if _, err := c.do(req, &u); err != nil {
		if errors.Is(err, types.ErrUnauthorized) {
			_ = c.setSession(nil)
			return nil, types.ErrNoSession
		}
		return nil, fmt.Errorf("restore session: %w", err)
	}

	stored.Identity = types.Identity{ID: u.ID, Email: u.Email}
	return stored, nil
}

func isClientError(err error) bool {
	var apiErr *types.APIError
	return errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500
}
