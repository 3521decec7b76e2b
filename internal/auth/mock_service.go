package auth

import (
	"strings"
	"sync"

	"github.com/emrealmaoglu/trailium/internal/models"
)

// MockCall records a method call for assertion
type MockCall struct {
	Method string
	Args   []interface{}
}

// MockAuthService is an in-memory AuthServiceInterface for handler tests.
// Tokens are "mock_access_<username>" and "mock_refresh_<username>".
type MockAuthService struct {
	mu sync.Mutex

	Calls []MockCall

	// Configurable function overrides
	RegisterFunc       func(req RegisterRequest) (*models.User, error)
	LoginFunc          func(req LoginRequest) (*TokenPair, *models.User, error)
	RefreshFunc        func(refreshToken string) (string, error)
	LogoutFunc         func(refreshToken string) error
	ChangePasswordFunc func(user *models.User, oldPassword, newPassword string) error
	ValidateTokenFunc  func(tokenString string) (*models.User, error)

	// Default error to return
	DefaultError error

	// Pre-configured users, keyed by username
	Users map[string]*models.User
	// Plain passwords for Users, keyed by username
	Passwords map[string]string
}

// NewMockAuthService creates a new mock auth service with sensible defaults
func NewMockAuthService() *MockAuthService {
	return &MockAuthService{
		Calls:     make([]MockCall, 0),
		Users:     make(map[string]*models.User),
		Passwords: make(map[string]string),
	}
}

func (m *MockAuthService) recordCall(method string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Method: method, Args: args})
}

// GetCallsForMethod returns calls for a specific method
func (m *MockAuthService) GetCallsForMethod(method string) []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []MockCall
	for _, call := range m.Calls {
		if call.Method == method {
			result = append(result, call)
		}
	}
	return result
}

// AssertCalled checks if a method was called at least once
func (m *MockAuthService) AssertCalled(method string) bool {
	return len(m.GetCallsForMethod(method)) > 0
}

// AddUser adds a test user with its password
func (m *MockAuthService) AddUser(user *models.User, password string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Users[user.Username] = user
	m.Passwords[user.Username] = password
}

func (m *MockAuthService) lookup(username string) (*models.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[username]
	return u, ok
}

// ============================================================================
// AuthServiceInterface implementation
// ============================================================================

func (m *MockAuthService) Register(req RegisterRequest) (*models.User, error) {
	m.recordCall("Register", req)
	if m.RegisterFunc != nil {
		return m.RegisterFunc(req)
	}
	if m.DefaultError != nil {
		return nil, m.DefaultError
	}
	if _, exists := m.lookup(req.Username); exists {
		return nil, ErrUsernameExists
	}

	user := &models.User{
		ID:             uint(len(m.Users) + 1),
		Username:       req.Username,
		Email:          req.Email,
		ProfilePrivacy: models.PrivacyPublic,
		IsActive:       true,
	}
	m.AddUser(user, req.Password)
	return user, nil
}

func (m *MockAuthService) Login(req LoginRequest) (*TokenPair, *models.User, error) {
	m.recordCall("Login", req)
	if m.LoginFunc != nil {
		return m.LoginFunc(req)
	}
	if m.DefaultError != nil {
		return nil, nil, m.DefaultError
	}

	user, exists := m.lookup(req.Username)
	if !exists || m.Passwords[req.Username] != req.Password || !user.IsActive {
		return nil, nil, ErrInvalidCredentials
	}
	return &TokenPair{
		Access:  "mock_access_" + user.Username,
		Refresh: "mock_refresh_" + user.Username,
	}, user, nil
}

func (m *MockAuthService) Refresh(refreshToken string) (string, error) {
	m.recordCall("Refresh", refreshToken)
	if m.RefreshFunc != nil {
		return m.RefreshFunc(refreshToken)
	}
	if m.DefaultError != nil {
		return "", m.DefaultError
	}
	username, ok := strings.CutPrefix(refreshToken, "mock_refresh_")
	if !ok {
		return "", ErrInvalidToken
	}
	if _, exists := m.lookup(username); !exists {
		return "", ErrUserNotFound
	}
	return "mock_access_" + username, nil
}

func (m *MockAuthService) Logout(refreshToken string) error {
	m.recordCall("Logout", refreshToken)
	if m.LogoutFunc != nil {
		return m.LogoutFunc(refreshToken)
	}
	return m.DefaultError
}

func (m *MockAuthService) ChangePassword(user *models.User, oldPassword, newPassword string) error {
	m.recordCall("ChangePassword", user.Username)
	if m.ChangePasswordFunc != nil {
		return m.ChangePasswordFunc(user, oldPassword, newPassword)
	}
	if m.DefaultError != nil {
		return m.DefaultError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Passwords[user.Username] != oldPassword {
		return ErrIncorrectPassword
	}
	m.Passwords[user.Username] = newPassword
	return nil
}

func (m *MockAuthService) ValidateToken(tokenString string) (*models.User, error) {
	m.recordCall("ValidateToken", tokenString)
	if m.ValidateTokenFunc != nil {
		return m.ValidateTokenFunc(tokenString)
	}
	if m.DefaultError != nil {
		return nil, m.DefaultError
	}
	username, ok := strings.CutPrefix(tokenString, "mock_access_")
	if !ok {
		return nil, ErrInvalidToken
	}
	user, exists := m.lookup(username)
	if !exists || !user.IsActive {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// Ensure MockAuthService implements AuthServiceInterface
var _ AuthServiceInterface = (*MockAuthService)(nil)
