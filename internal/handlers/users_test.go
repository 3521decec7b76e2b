package handlers

import (
	"net/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emrealmaoglu/trailium/internal/models"
)

// =============================================================================
// USER TESTS
// =============================================================================

func (suite *HandlersTestSuite) TestListUsersAnonymousSearchAndOrdering() {
	t := suite.T()
	suite.createUser("bob", func(u *models.User) { u.FullName = "Bob Builder" })
	suite.createUser("carol", nil)

	w := suite.request(http.MethodGet, "/api/users?ordering=-username", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := suite.decode(w)
	assert.EqualValues(t, 3, body["count"])
	results := body["results"].([]interface{})
	assert.Equal(t, "carol", results[0].(map[string]interface{})["username"])

	w = suite.request(http.MethodGet, "/api/users?search=BUILDER", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	results = suite.results(w)
	require.Len(t, results, 1)
	assert.Equal(t, "bob", results[0].(map[string]interface{})["username"])
}

func (suite *HandlersTestSuite) TestListUsersPagination() {
	t := suite.T()
	for _, name := range []string{"u01", "u02", "u03", "u04"} {
		suite.createUser(name, nil)
	}

	w := suite.request(http.MethodGet, "/api/users?page_size=2&page=2", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := suite.decode(w)
	assert.EqualValues(t, 5, body["count"])
	assert.Contains(t, body["next"], "page=3")
	require.NotNil(t, body["previous"])
	assert.NotContains(t, body["previous"], "page=")

	w = suite.request(http.MethodGet, "/api/users?page_size=2&page=9", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestGetMe() {
	t := suite.T()

	w := suite.request(http.MethodGet, "/api/users/me", nil, suite.testUser)
	require.Equal(t, http.StatusOK, w.Code)
	body := suite.decode(w)
	assert.Equal(t, "alice", body["username"])
	assert.Equal(t, false, body["is_staff"])

	w = suite.request(http.MethodGet, "/api/users/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func (suite *HandlersTestSuite) TestUpdateMe() {
	t := suite.T()

	w := suite.request(http.MethodPatch, "/api/users/me", map[string]interface{}{
		"full_name":  "Alice <b>Liddell</b>",
		"visibility": "friends",
		"is_premium": true,
	}, suite.testUser)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := suite.decode(w)
	assert.Equal(t, "Alice Liddell", body["full_name"])
	assert.Equal(t, "friends", body["visibility"])
	assert.Equal(t, true, body["is_premium"])

	var user models.User
	require.NoError(t, suite.db.First(&user, suite.testUser.ID).Error)
	assert.Equal(t, models.PrivacyFriends, user.ProfilePrivacy)
}

func (suite *HandlersTestSuite) TestUpdateMeRejectsBadVisibility() {
	t := suite.T()

	w := suite.request(http.MethodPatch, "/api/users/me", map[string]string{"visibility": "everyone"}, suite.testUser)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "visibility", suite.decode(w)["field"])
}

func (suite *HandlersTestSuite) TestUpdateUserPermissions() {
	t := suite.T()
	bob := suite.createUser("bob", nil)
	staff := suite.createUser("staffer", func(u *models.User) { u.IsStaff = true })

	w := suite.request(http.MethodPatch, "/api/users/"+idStr(bob.ID), map[string]string{"about": "hi"}, suite.testUser)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = suite.request(http.MethodPatch, "/api/users/"+idStr(bob.ID), map[string]string{"about": "set by staff"}, staff)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "set by staff", suite.decode(w)["about"])

	w = suite.request(http.MethodGet, "/api/users/999", nil, suite.testUser)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestDeleteUserIsSoft() {
	t := suite.T()
	bob := suite.createUser("bob", nil)

	w := suite.request(http.MethodDelete, "/api/users/"+idStr(bob.ID), nil, suite.testUser)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = suite.request(http.MethodDelete, "/api/users/"+idStr(bob.ID), nil, bob)
	assert.Equal(t, http.StatusNoContent, w.Code)

	var stored models.User
	require.NoError(t, suite.db.First(&stored, bob.ID).Error)
	assert.False(t, stored.IsActive)
}

func (suite *HandlersTestSuite) TestDeleteMe() {
	t := suite.T()

	w := suite.request(http.MethodDelete, "/api/users/me", nil, suite.testUser)
	assert.Equal(t, http.StatusNoContent, w.Code)

	var stored models.User
	require.NoError(t, suite.db.First(&stored, suite.testUser.ID).Error)
	assert.False(t, stored.IsActive)
}

func (suite *HandlersTestSuite) TestGetUserProfilePrivacy() {
	t := suite.T()
	private := suite.createUser("hermit", func(u *models.User) { u.ProfilePrivacy = models.PrivacyPrivate })
	friendsOnly := suite.createUser("circle", func(u *models.User) { u.ProfilePrivacy = models.PrivacyFriends })

	w := suite.request(http.MethodGet, "/api/users/"+idStr(private.ID)+"/profile", nil, suite.testUser)
	require.Equal(t, http.StatusForbidden, w.Code)
	body := suite.decode(w)
	assert.Equal(t, "FORBIDDEN", body["code"])
	assert.Equal(t, "This profile is private", body["message"])

	w = suite.request(http.MethodGet, "/api/users/"+idStr(friendsOnly.ID)+"/profile", nil, suite.testUser)
	assert.Equal(t, http.StatusForbidden, w.Code)

	suite.follow(suite.testUser, friendsOnly, models.FollowPending)
	w = suite.request(http.MethodGet, "/api/users/"+idStr(friendsOnly.ID)+"/profile", nil, suite.testUser)
	assert.Equal(t, http.StatusForbidden, w.Code)

	require.NoError(t, suite.db.Model(&models.Follow{}).
		Where("follower_id = ?", suite.testUser.ID).
		Update("status", models.FollowAccepted).Error)
	w = suite.request(http.MethodGet, "/api/users/"+idStr(friendsOnly.ID)+"/profile", nil, suite.testUser)
	assert.Equal(t, http.StatusOK, w.Code)

	w = suite.request(http.MethodGet, "/api/users/"+idStr(private.ID)+"/profile", nil, private)
	assert.Equal(t, http.StatusOK, w.Code)
}
