package auth

import "github.com/emrealmaoglu/trailium/internal/models"

// AuthServiceInterface defines the contract for authentication operations.
// Handlers depend on it so tests can swap in MockAuthService.
type AuthServiceInterface interface {
	Register(req RegisterRequest) (*models.User, error)
	Login(req LoginRequest) (*TokenPair, *models.User, error)
	Refresh(refreshToken string) (string, error)
	Logout(refreshToken string) error
	ChangePassword(user *models.User, oldPassword, newPassword string) error

	// Token operations
	ValidateToken(tokenString string) (*models.User, error)
}

// Ensure Service implements AuthServiceInterface
var _ AuthServiceInterface = (*Service)(nil)
