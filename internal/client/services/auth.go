// Package services contains application services for the botadmin client.
// This file defines the authentication flow: login, logout, and keeping the
// permission set of the session current.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/botadmin/internal/client/api"
	"github.com/dmitrijs2005/botadmin/internal/client/session"
	"github.com/dmitrijs2005/botadmin/internal/logging"
)

const (
	LoginPath      = "/auth/login"
	LogoutPath     = "/auth/logout"
	PermissionPath = "/auth/permission"
)

// APIClient is the subset of *api.Client the services use.
type APIClient interface {
	Get(ctx context.Context, path string, params url.Values, out any) error
	Post(ctx context.Context, path string, body, out any, opts ...api.RequestOption) error
	Patch(ctx context.Context, path string, body, out any, opts ...api.RequestOption) error
}

// AuthService defines authentication operations.
//
// Contract:
//   - Login: authenticate and store the returned session.
//   - Logout: end the session on the server, then clear it locally.
//   - Restore: pick up a session persisted by a previous run.
//   - RefreshPermissions: re-read the permission set from the server.
//   - EnsurePermissions: refresh permissions when the menu list is empty.
type AuthService interface {
	Login(ctx context.Context, email, password string) (session.State, error)
	Logout(ctx context.Context) error
	Restore(ctx context.Context) (bool, error)
	RefreshPermissions(ctx context.Context) error
	EnsurePermissions(ctx context.Context)
}

type authService struct {
	client  APIClient
	session *session.Manager
	log     logging.Logger
}

func NewAuthService(client APIClient, sess *session.Manager, log logging.Logger) AuthService {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &authService{client: client, session: sess, log: log}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login posts the credentials and stores the session the server returns.
// The email is lower-cased before sending.
func (a *authService) Login(ctx context.Context, email, password string) (session.State, error) {
	req := loginRequest{Email: strings.ToLower(strings.TrimSpace(email)), Password: password}

	var data session.AuthData
	if err := a.client.Post(ctx, LoginPath, req, &data); err != nil {
		return session.State{}, fmt.Errorf("login error: %w", err)
	}
	if err := a.session.Login(ctx, data); err != nil {
		return session.State{}, fmt.Errorf("session saving error: %w", err)
	}

	a.log.Info(ctx, "logged in", "email", req.Email)
	return a.session.State(), nil
}

// Logout ends the server session first; when that call fails the local
// session is left untouched and the error is returned.
func (a *authService) Logout(ctx context.Context) error {
	if err := a.client.Post(ctx, LogoutPath, struct{}{}, nil); err != nil {
		if errors.Is(err, api.ErrSessionExpired) {
			// The client already cleared the session.
			return nil
		}
		return fmt.Errorf("logout error: %w", err)
	}
	return a.session.Clear(ctx)
}

func (a *authService) Restore(ctx context.Context) (bool, error) {
	return a.session.Restore(ctx)
}

func (a *authService) RefreshPermissions(ctx context.Context) error {
	var data session.AuthData
	if err := a.client.Get(ctx, PermissionPath, nil, &data); err != nil {
		return fmt.Errorf("permission fetch error: %w", err)
	}
	if err := a.session.Login(ctx, data); err != nil {
		return fmt.Errorf("session saving error: %w", err)
	}
	return nil
}

// EnsurePermissions refreshes the permission set when an authenticated
// session has no menu items. Failures are only logged; guards keep working
// with the permissions already held.
func (a *authService) EnsurePermissions(ctx context.Context) {
	st := a.session.State()
	if !st.IsAuthenticated || len(st.Permissions.MenuItems) > 0 {
		return
	}
	if err := a.RefreshPermissions(ctx); err != nil {
		a.log.Warn(ctx, "fetching permissions failed", "error", err)
	}
}
