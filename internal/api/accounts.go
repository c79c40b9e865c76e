package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// LoginPayload is the credential pair for email sign-in.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SocialLoginPayload carries the provider-issued access token for social
// sign-in.
type SocialLoginPayload struct {
	AccessToken string `json:"access_token"`
}

// RegistrationPayload creates a new account.
type RegistrationPayload struct {
	Email     string `json:"email"`
	Password1 string `json:"password1"`
	Password2 string `json:"password2"`
}

// AuthResponse is the session token envelope returned by the auth
// endpoints.
type AuthResponse struct {
	Key string `json:"key"`
}

// UserDetails is the signed-in user's profile as served by the backend.
type UserDetails struct {
	UUID          string     `json:"uuid" validate:"required"`
	FirstName     string     `json:"firstName"`
	LastName      string     `json:"lastName"`
	FullName      string     `json:"fullName"`
	Email         string     `json:"email" validate:"required,email"`
	Username      string     `json:"username"`
	PhoneNumber   string     `json:"phone"`
	ProfileImage  string     `json:"profileImageURL"`
	DefaultCardID string     `json:"defaultCard"`
	DateJoined    time.Time  `json:"dateJoined" validate:"required"`
	LastLogin     *time.Time `json:"lastLogin"`
}

// UserDetailsPatch is the writable subset of the profile. Nil fields are
// omitted from the request body; server-owned fields (uuid, dateJoined)
// are never sent.
type UserDetailsPatch struct {
	FirstName   *string `json:"firstName,omitempty"`
	LastName    *string `json:"lastName,omitempty"`
	Username    *string `json:"username,omitempty"`
	PhoneNumber *string `json:"phone,omitempty"`
}

// Login exchanges credentials for a session token, persists the token, and
// attaches it to subsequent requests.
func (c *Client) Login(ctx context.Context, payload LoginPayload) error {
	resp, err := runMutation[LoginPayload, AuthResponse](
		ctx, c, "login", http.MethodPost, "/dj-rest-auth/login/", payload,
		queryOptions{auth: authNone},
	)
	if err != nil {
		return err
	}
	return c.adoptToken(resp)
}

// SocialLogin signs in with a provider-issued token. Provider is the path
// segment registered on the backend ("google", "apple").
func (c *Client) SocialLogin(ctx context.Context, provider string, payload SocialLoginPayload) error {
	resp, err := runMutation[SocialLoginPayload, AuthResponse](
		ctx, c, "socialLogin", http.MethodPost, fmt.Sprintf("/dj-rest-auth/%s/", provider), payload,
		queryOptions{auth: authNone},
	)
	if err != nil {
		return err
	}
	return c.adoptToken(resp)
}

// Register creates an account and signs in with the returned token.
func (c *Client) Register(ctx context.Context, payload RegistrationPayload) error {
	resp, err := runMutation[RegistrationPayload, AuthResponse](
		ctx, c, "register", http.MethodPost, "/dj-rest-auth/registration/", payload,
		queryOptions{auth: authNone},
	)
	if err != nil {
		return err
	}
	return c.adoptToken(resp)
}

func (c *Client) adoptToken(resp AuthResponse) error {
	if resp.Key == "" {
		return fmt.Errorf("%w: auth response missing key", ErrInvalidResponse)
	}
	return c.SetToken(resp.Key)
}

// Logout tells the server to revoke the session, then clears all local
// session state. Local state is cleared even when the server call fails;
// the server error is still reported.
func (c *Client) Logout(ctx context.Context) error {
	_, serverErr := runMutation[struct{}, struct{}](
		ctx, c, "logout", http.MethodPost, "/dj-rest-auth/logout/", struct{}{},
		queryOptions{auth: authRequired},
	)
	if err := c.signOutLocally(); err != nil {
		return errors.Join(serverErr, err)
	}
	return serverErr
}

// GetUserDetails reads the signed-in user's profile. Session-scoped: it is
// disabled without a token, and an auth rejection tears the session down.
func (c *Client) GetUserDetails(ctx context.Context) (UserDetails, error) {
	return runQuery[UserDetails](ctx, c, keyUserDetails, "/accounts/user/", queryOptions{
		auth:          authRequired,
		sessionScoped: true,
		cacheOpts:     readOptions,
	})
}

// PrefetchUserDetails warms the profile cache ahead of navigation.
func (c *Client) PrefetchUserDetails(ctx context.Context) {
	prefetchQuery[UserDetails](ctx, c, keyUserDetails, "/accounts/user/", queryOptions{
		auth:          authRequired,
		sessionScoped: true,
		cacheOpts:     readOptions,
	})
}

// UpdateUserDetails patches the profile and marks the cached profile stale.
func (c *Client) UpdateUserDetails(ctx context.Context, patch UserDetailsPatch) (UserDetails, error) {
	return runMutation[UserDetailsPatch, UserDetails](
		ctx, c, "updateUserDetails", http.MethodPatch, "/accounts/user/", patch,
		queryOptions{auth: authRequired},
	)
}

// UploadProfileImage replaces the profile image with a multipart upload and
// marks the cached profile stale.
func (c *Client) UploadProfileImage(ctx context.Context, filename string, r io.Reader) error {
	if err := c.doMultipart(ctx, http.MethodPut, "/accounts/user/profile-image/", "profile_image", filename, r); err != nil {
		return err
	}
	for _, prefix := range invalidations["updateUserDetails"] {
		c.cache.Invalidate(prefix)
	}
	return nil
}
