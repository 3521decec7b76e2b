package api

import (
	"net/http"

	"github.com/emrealmaoglu/trailium/cli/pkg/logger"
)

// Login exchanges a username and password for a token pair
func Login(username, password string, rememberMe bool) (*TokenPair, error) {
	logger.Debug("Attempting login", "username", username, "remember_me", rememberMe)

	var tokens TokenPair
	err := sendJSON(http.MethodPost, "/api/auth/login", LoginRequest{
		Username:   username,
		Password:   password,
		RememberMe: rememberMe,
	}, &tokens)
	if err != nil {
		return nil, err
	}
	return &tokens, nil
}

// Refresh exchanges a refresh token for a new access token
func Refresh(refreshToken string) (*RefreshResponse, error) {
	logger.Debug("Refreshing access token")

	var out RefreshResponse
	if err := sendJSON(http.MethodPost, "/api/auth/refresh", RefreshRequest{Refresh: refreshToken}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout blacklists the refresh token
func Logout(refreshToken string) error {
	return sendJSON(http.MethodPost, "/api/auth/logout", RefreshRequest{Refresh: refreshToken}, nil)
}

// GetCurrentUser gets the current authenticated user
func GetCurrentUser() (*User, error) {
	var user User
	if err := getJSON("/api/users/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
