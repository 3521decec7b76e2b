package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/emrealmaoglu/trailium/internal/database"
	"github.com/emrealmaoglu/trailium/internal/models"
	"github.com/emrealmaoglu/trailium/internal/validation"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameExists     = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrIncorrectPassword  = errors.New("incorrect password")
)

// Token types carried in the token_type claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// TokenConfig holds token lifetimes.
type TokenConfig struct {
	AccessTTL          time.Duration
	RefreshTTL         time.Duration
	RememberRefreshTTL time.Duration
}

// Service handles all authentication operations
type Service struct {
	jwtSecret []byte
	tokens    TokenConfig
	now       func() time.Time
}

// NewService creates a new authentication service
func NewService(jwtSecret []byte, tokens TokenConfig) *Service {
	return &Service{
		jwtSecret: jwtSecret,
		tokens:    tokens,
		now:       time.Now,
	}
}

// Claims are the JWT claims for both access and refresh tokens.
type Claims struct {
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenPair is returned by Login.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Username string `json:"username" binding:"required,max=30"`
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,max=128"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username   string `json:"username" binding:"required"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"rememberMe"`
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPassword reports whether password matches the user's hash.
func CheckPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) == nil
}

// Register validates and creates a new active account.
func (s *Service) Register(req RegisterRequest) (*models.User, error) {
	username, err := validation.ValidateUsername(req.Username)
	if err != nil {
		return nil, err
	}
	email, err := validation.ValidateEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(req.Password, "password"); err != nil {
		return nil, err
	}

	var count int64
	if err := database.DB.Model(&models.User{}).Where("LOWER(username) = LOWER(?)", username).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if count > 0 {
		return nil, ErrUsernameExists
	}

	hashed, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:       username,
		Email:          email,
		Password:       hashed,
		ProfilePrivacy: models.PrivacyPublic,
		IsActive:       true,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrUsernameExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

// Login checks credentials and issues an access/refresh pair. RememberMe
// extends the refresh token lifetime.
func (s *Service) Login(req LoginRequest) (*TokenPair, *models.User, error) {
	var user models.User
	err := database.DB.Where("username = ?", strings.TrimSpace(req.Username)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrInvalidCredentials
	} else if err != nil {
		return nil, nil, fmt.Errorf("database error: %w", err)
	}

	if !user.IsActive || !CheckPassword(&user, req.Password) {
		return nil, nil, ErrInvalidCredentials
	}

	now := s.now().UTC()
	if err := database.DB.Model(&user).UpdateColumn("last_login", now).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to update last login: %w", err)
	}
	user.LastLogin = &now

	refreshTTL := s.tokens.RefreshTTL
	if req.RememberMe {
		refreshTTL = s.tokens.RememberRefreshTTL
	}

	access, err := s.issue(&user, TokenTypeAccess, s.tokens.AccessTTL)
	if err != nil {
		return nil, nil, err
	}
	refresh, err := s.issue(&user, TokenTypeRefresh, refreshTTL)
	if err != nil {
		return nil, nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh}, &user, nil
}

// Refresh exchanges a valid refresh token for a new access token.
func (s *Service) Refresh(refreshToken string) (string, error) {
	claims, err := s.ParseToken(refreshToken, TokenTypeRefresh)
	if err != nil {
		return "", err
	}
	if s.isRevoked(claims.ID) {
		return "", ErrTokenRevoked
	}

	user, err := s.activeUser(claims.UserID)
	if err != nil {
		return "", err
	}
	return s.issue(user, TokenTypeAccess, s.tokens.AccessTTL)
}

// Logout blacklists a refresh token. Tokens that do not parse are ignored.
func (s *Service) Logout(refreshToken string) error {
	claims, err := s.ParseToken(refreshToken, TokenTypeRefresh)
	if err != nil {
		return nil
	}

	revoked := models.RevokedToken{
		JTI:    claims.ID,
		UserID: claims.UserID,
	}
	if claims.ExpiresAt != nil {
		revoked.ExpiresAt = claims.ExpiresAt.Time
	}
	err = database.DB.Where(models.RevokedToken{JTI: claims.ID}).FirstOrCreate(&revoked).Error
	if err != nil && !database.IsUniqueViolation(err) {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// ChangePassword verifies oldPassword and stores newPassword after applying
// the password policy.
func (s *Service) ChangePassword(user *models.User, oldPassword, newPassword string) error {
	if !CheckPassword(user, oldPassword) {
		return ErrIncorrectPassword
	}
	if err := validation.ValidatePassword(newPassword, "new_password"); err != nil {
		return err
	}

	hashed, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := database.DB.Model(user).UpdateColumn("password", hashed).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	user.Password = hashed
	return nil
}

// ValidateToken validates an access token and returns the active user.
func (s *Service) ValidateToken(tokenString string) (*models.User, error) {
	claims, err := s.ParseToken(tokenString, TokenTypeAccess)
	if err != nil {
		return nil, err
	}
	return s.activeUser(claims.UserID)
}

// IssueAccessToken mints an access token for user.
func (s *Service) IssueAccessToken(user *models.User) (string, error) {
	return s.issue(user, TokenTypeAccess, s.tokens.AccessTTL)
}

// ParseToken verifies signature, expiry and token type.
func (s *Service) ParseToken(tokenString, expectedType string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.TokenType != expectedType {
		return nil, fmt.Errorf("%w: expected %s token", ErrInvalidToken, expectedType)
	}
	return claims, nil
}

// CleanupRevokedTokens deletes blacklist rows whose token has expired.
func (s *Service) CleanupRevokedTokens() (int64, error) {
	result := database.DB.Where("expires_at < ?", s.now().UTC()).Delete(&models.RevokedToken{})
	return result.RowsAffected, result.Error
}

func (s *Service) issue(user *models.User, tokenType string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:    user.ID,
		Username:  user.Username,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *Service) isRevoked(jti string) bool {
	var count int64
	database.DB.Model(&models.RevokedToken{}).Where("jti = ?", jti).Count(&count)
	return count > 0
}

func (s *Service) activeUser(id uint) (*models.User, error) {
	var user models.User
	if err := database.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if !user.IsActive {
		return nil, ErrUserNotFound
	}
	return &user, nil
}
