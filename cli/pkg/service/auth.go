package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/emrealmaoglu/trailium/cli/pkg/api"
	"github.com/emrealmaoglu/trailium/cli/pkg/client"
	"github.com/emrealmaoglu/trailium/cli/pkg/credentials"
	"github.com/emrealmaoglu/trailium/cli/pkg/logger"
)

// ErrNotLoggedIn is returned when no usable session is stored
var ErrNotLoggedIn = errors.New("not logged in: run 'trailium-cli auth login'")

// fallbackAccessTTL is assumed when the access token carries no exp claim
const fallbackAccessTTL = 15 * time.Minute

type AuthService struct {
	now func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService() *AuthService {
	return &AuthService{now: time.Now}
}

// tokenExpiry reads exp from a JWT without verifying it. The server holds the key.
func tokenExpiry(token string, now time.Time) time.Time {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil || claims.ExpiresAt == nil {
		return now.Add(fallbackAccessTTL)
	}
	return claims.ExpiresAt.Time
}

// refreshExpiry is zero when the refresh token is not a readable JWT
func refreshExpiry(token string) time.Time {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil || claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

// Login authenticates, fetches the profile and stores the session
func (s *AuthService) Login(username, password string, rememberMe bool) (*credentials.Credentials, error) {
	if username == "" {
		return nil, fmt.Errorf("username cannot be empty")
	}
	if password == "" {
		return nil, fmt.Errorf("password cannot be empty")
	}

	client.ClearAuthToken()
	tokens, err := api.Login(username, password, rememberMe)
	if err != nil {
		return nil, err
	}
	client.SetAuthToken(tokens.Access)

	user, err := api.GetCurrentUser()
	if err != nil {
		return nil, fmt.Errorf("logged in but failed to load profile: %w", err)
	}

	creds := &credentials.Credentials{
		AccessToken:      tokens.Access,
		RefreshToken:     tokens.Refresh,
		ExpiresAt:        tokenExpiry(tokens.Access, s.now()),
		RefreshExpiresAt: refreshExpiry(tokens.Refresh),
		UserID:           user.ID,
		Username:         user.Username,
		IsStaff:          user.IsStaff,
		IsSuperuser:      user.IsSuperuser,
	}
	if err := credentials.Save(creds); err != nil {
		return nil, fmt.Errorf("failed to save credentials: %w", err)
	}

	logger.Info("Logged in", "username", creds.Username, "user_id", creds.UserID)
	return creds, nil
}

// Session loads stored credentials, refreshes the access token when it has
// expired and installs it on the HTTP client.
func (s *AuthService) Session() (*credentials.Credentials, error) {
	creds, err := credentials.Load()
	if err != nil {
		return nil, err
	}
	if creds == nil || creds.AccessToken == "" {
		return nil, ErrNotLoggedIn
	}

	if s.now().After(creds.ExpiresAt) {
		if !creds.CanRefresh() {
			return nil, ErrNotLoggedIn
		}
		if err := s.refresh(creds); err != nil {
			if api.IsUnauthorized(err) {
				_ = credentials.Delete()
				return nil, ErrNotLoggedIn
			}
			return nil, err
		}
	}

	client.SetAuthToken(creds.AccessToken)
	return creds, nil
}

// Refresh forces a token refresh regardless of expiry
func (s *AuthService) Refresh() (*credentials.Credentials, error) {
	creds, err := credentials.Load()
	if err != nil {
		return nil, err
	}
	if creds == nil || !creds.CanRefresh() {
		return nil, ErrNotLoggedIn
	}
	if err := s.refresh(creds); err != nil {
		return nil, err
	}
	client.SetAuthToken(creds.AccessToken)
	return creds, nil
}

func (s *AuthService) refresh(creds *credentials.Credentials) error {
	logger.Debug("Access token expired, refreshing", "username", creds.Username)

	out, err := api.Refresh(creds.RefreshToken)
	if err != nil {
		return err
	}
	creds.AccessToken = out.Access
	creds.ExpiresAt = tokenExpiry(out.Access, s.now())
	return credentials.Save(creds)
}

// Logout blacklists the refresh token and removes local credentials. The
// local session is dropped even when the server call fails.
func (s *AuthService) Logout() error {
	creds, err := credentials.Load()
	if err != nil {
		return err
	}
	if creds == nil {
		return ErrNotLoggedIn
	}

	var serverErr error
	if creds.RefreshToken != "" {
		if serverErr = api.Logout(creds.RefreshToken); serverErr != nil {
			logger.Warn("Server logout failed", "error", serverErr)
		}
	}
	client.ClearAuthToken()
	if err := credentials.Delete(); err != nil {
		return err
	}
	return serverErr
}
