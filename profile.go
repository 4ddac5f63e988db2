package fitgate

import (
	"context"
	"net/http"
)

// Profile fetches the authenticated account's profile and updates the cached
// session copy.
func (c *Client) Profile(ctx context.Context) (*UserProfile, error) {
	var user UserProfile
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/users/profile"}, &user); err != nil {
		return nil, err
	}
	if err := c.session.SetUser(ctx, &user); err != nil {
		c.warnf("fitgate: persisting fetched profile: %v", err)
	}
	return &user, nil
}

// UpdateProfile applies the given changes and returns the updated profile,
// which replaces the cached session copy.
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*UserProfile, error) {
	var user UserProfile
	err := c.Do(ctx, Request{
		Method: http.MethodPut,
		Path:   "/users/profile",
		Body:   update,
	}, &user)
	if err != nil {
		return nil, err
	}
	if err := c.session.SetUser(ctx, &user); err != nil {
		c.warnf("fitgate: persisting updated profile: %v", err)
	}
	return &user, nil
}

type passwordChange struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ChangePassword changes the account password. Existing tokens stay valid
// until they expire; the backend decides whether to revoke them.
func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	return c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/users/change-password",
		Body:   passwordChange{OldPassword: oldPassword, NewPassword: newPassword},
	}, nil)
}
