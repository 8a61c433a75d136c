package bookingapi

import (
	"context"
	"net/http"

	"staybook/internal/domain"
)

func (c *Client) Login(ctx context.Context, cr domain.Credentials) (domain.Session, error) {
	var s domain.Session
	err := c.do(ctx, call{method: http.MethodPost, route: "/auth/login", path: "/auth/login", body: cr, out: &s, noAuth: true})
	return s, err
}

func (c *Client) Register(ctx context.Context, r domain.Registration) (domain.Session, error) {
	var s domain.Session
	err := c.do(ctx, call{method: http.MethodPost, route: "/auth/register", path: "/auth/register", body: r, out: &s, noAuth: true})
	return s, err
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, call{method: http.MethodPost, route: "/auth/logout", path: "/auth/logout", noAuth: true})
}

// Refresh exchanges a refresh token for a new access token. Failures are
// reported like any other call.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (string, error) {
	return c.refresh(ctx, refreshToken, true)
}

// Profile returns nil on any failure.
func (c *Client) Profile(ctx context.Context) (*domain.User, error) {
	var u domain.User
	if err := c.do(ctx, call{method: http.MethodGet, route: "/auth/profile", path: "/auth/profile", out: &u}); err != nil {
		return nil, err
	}
	if u.ID == "" {
		return nil, nil
	}
	return &u, nil
}

func (c *Client) UpdateProfile(ctx context.Context, p domain.UserPatch) (domain.User, error) {
	var u domain.User
	err := c.do(ctx, call{method: http.MethodPatch, route: "/auth/profile", path: "/auth/profile", body: p, out: &u})
	return u, err
}
