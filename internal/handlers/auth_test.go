package handlers

import (
	"net/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emrealmaoglu/trailium/internal/auth"
	"github.com/emrealmaoglu/trailium/internal/models"
)

// =============================================================================
// AUTH TESTS
// =============================================================================

func (suite *HandlersTestSuite) TestLoginMissingFields() {
	t := suite.T()

	w := suite.request(http.MethodPost, "/api/auth/login", map[string]string{"username": "alice"}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "username and password required", suite.decode(w)["detail"])
}

func (suite *HandlersTestSuite) TestLoginInvalidCredentials() {
	t := suite.T()

	w := suite.request(http.MethodPost, "/api/auth/login", map[string]string{
		"username": "alice",
		"password": "wrong",
	}, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", suite.decode(w)["detail"])
}

func (suite *HandlersTestSuite) TestLoginInactiveUser() {
	t := suite.T()
	suite.createUser("sleepy", func(u *models.User) { u.IsActive = false })

	w := suite.request(http.MethodPost, "/api/auth/login", map[string]string{
		"username": "sleepy",
		"password": testPassword,
	}, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func (suite *HandlersTestSuite) TestLoginRefreshLogoutFlow() {
	t := suite.T()

	w := suite.request(http.MethodPost, "/api/auth/login", map[string]interface{}{
		"username":   "alice",
		"password":   testPassword,
		"rememberMe": true,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	tokens := suite.decode(w)
	access, _ := tokens["access"].(string)
	refresh, _ := tokens["refresh"].(string)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	var user models.User
	require.NoError(t, suite.db.First(&user, suite.testUser.ID).Error)
	assert.NotNil(t, user.LastLogin)

	w = suite.request(http.MethodPost, "/api/auth/refresh", map[string]string{"refresh": refresh}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, suite.decode(w)["access"])

	w = suite.request(http.MethodPost, "/api/auth/logout", map[string]string{"refresh": refresh}, nil)
	assert.Equal(t, http.StatusResetContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = suite.request(http.MethodPost, "/api/auth/refresh", map[string]string{"refresh": refresh}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "token_not_valid", suite.decode(w)["code"])
}

func (suite *HandlersTestSuite) TestTokenEndpointsIgnoreStaleBearer() {
	t := suite.T()
	pair, _, err := suite.authService.Login(auth.LoginRequest{Username: "alice", Password: testPassword})
	require.NoError(t, err)
	refresh := pair.Refresh

	w := suite.requestWithHeader(http.MethodPost, "/api/auth/refresh", "Bearer stale.invalid.token", map[string]string{"refresh": refresh})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, suite.decode(w)["access"])

	w = suite.requestWithHeader(http.MethodPost, "/api/auth/login", "Bearer stale.invalid.token", map[string]string{
		"username": "alice",
		"password": testPassword,
	})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = suite.requestWithHeader(http.MethodGet, "/api/health", "Bearer stale.invalid.token")
	assert.Equal(t, http.StatusOK, w.Code)

	w = suite.requestWithHeader(http.MethodGet, "/api/posts", "Bearer stale.invalid.token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func (suite *HandlersTestSuite) TestRefreshRejectsAccessToken() {
	t := suite.T()

	w := suite.request(http.MethodPost, "/api/auth/refresh", map[string]string{
		"refresh": suite.tokenFor(suite.testUser),
	}, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func (suite *HandlersTestSuite) TestRefreshAndLogoutRequireToken() {
	t := suite.T()

	w := suite.request(http.MethodPost, "/api/auth/refresh", map[string]string{}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodPost, "/api/auth/logout", map[string]string{}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "refresh is required", suite.decode(w)["detail"])
}

func (suite *HandlersTestSuite) TestLogoutWithGarbageStillResets() {
	w := suite.request(http.MethodPost, "/api/auth/logout", map[string]string{"refresh": "not-a-jwt"}, nil)
	assert.Equal(suite.T(), http.StatusResetContent, w.Code)
}

func (suite *HandlersTestSuite) TestRegister() {
	t := suite.T()

	w := suite.request(http.MethodPost, "/api/auth/register", map[string]string{
		"username": "NewUser_1",
		"email":    "New@Example.com",
		"password": "G00d!Horse",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := suite.decode(w)
	assert.Equal(t, "newuser_1", body["username"])
	assert.Equal(t, "new@example.com", body["email"])
	assert.Equal(t, "public", body["visibility"])
	assert.NotContains(t, body, "password")
}

func (suite *HandlersTestSuite) TestRegisterDuplicateUsername() {
	t := suite.T()

	w := suite.request(http.MethodPost, "/api/auth/register", map[string]string{
		"username": "alice",
		"email":    "other@example.com",
		"password": "G00d!Horse",
	}, nil)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func (suite *HandlersTestSuite) TestRegisterValidation() {
	tests := []struct {
		name  string
		body  map[string]string
		field string
	}{
		{"reserved username", map[string]string{"username": "admin", "email": "a@example.com", "password": "G00d!Horse"}, "username"},
		{"bad email", map[string]string{"username": "bobby", "email": "nope", "password": "G00d!Horse"}, "email"},
		{"weak password", map[string]string{"username": "bobby", "email": "b@example.com", "password": "password"}, "password"},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			w := suite.request(http.MethodPost, "/api/auth/register", tt.body, nil)
			assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
			assert.Equal(suite.T(), tt.field, suite.decode(w)["field"])
		})
	}
}

func (suite *HandlersTestSuite) TestChangePassword() {
	t := suite.T()

	w := suite.request(http.MethodPost, "/api/auth/change-password", map[string]string{
		"old_password": "wrong",
		"new_password": "An0ther!Pass",
	}, suite.testUser)
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := suite.decode(w)
	assert.Equal(t, "old_password", body["field"])
	assert.Equal(t, "Incorrect password", body["message"])

	w = suite.request(http.MethodPost, "/api/auth/change-password", map[string]string{
		"old_password": testPassword,
		"new_password": "short",
	}, suite.testUser)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "new_password", suite.decode(w)["field"])

	w = suite.request(http.MethodPost, "/api/auth/change-password", map[string]string{
		"old_password": testPassword,
		"new_password": "An0ther!Pass",
	}, suite.testUser)
	assert.Equal(t, http.StatusNoContent, w.Code)

	var user models.User
	require.NoError(t, suite.db.First(&user, suite.testUser.ID).Error)
	assert.True(t, auth.CheckPassword(&user, "An0ther!Pass"))
}

func (suite *HandlersTestSuite) TestChangePasswordRequiresAuth() {
	w := suite.request(http.MethodPost, "/api/auth/change-password", map[string]string{}, nil)
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func (suite *HandlersTestSuite) TestInvalidBearerRejected() {
	t := suite.T()

	req := suite.request(http.MethodGet, "/api/users", nil, nil)
	assert.Equal(t, http.StatusOK, req.Code)

	w := suite.requestWithHeader(http.MethodGet, "/api/users", "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func (suite *HandlersTestSuite) TestDeactivatedUserTokenRejected() {
	t := suite.T()
	token := suite.tokenFor(suite.testUser)

	require.NoError(t, suite.db.Model(&models.User{}).Where("id = ?", suite.testUser.ID).Update("is_active", false).Error)

	w := suite.requestWithHeader(http.MethodGet, "/api/users/me", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
