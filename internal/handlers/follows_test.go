package handlers

import (
	"net/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emrealmaoglu/trailium/internal/models"
)

// =============================================================================
// FOLLOW TESTS
// =============================================================================

func (suite *HandlersTestSuite) followPath(target *models.User, action string) string {
	return "/api/follows/users/" + idStr(target.ID) + "/" + action
}

func (suite *HandlersTestSuite) followStatus(follower, followed *models.User) string {
	w := suite.request(http.MethodGet, suite.followPath(followed, "status"), nil, follower)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	return suite.decode(w)["status"].(string)
}

func (suite *HandlersTestSuite) TestFollowRequestLifecycle() {
	t := suite.T()
	bob := suite.createUser("bob", nil)

	assert.Equal(t, "none", suite.followStatus(suite.testUser, bob))

	w := suite.request(http.MethodPost, suite.followPath(bob, "follow"), nil, suite.testUser)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Follow request sent", suite.decode(w)["message"])
	assert.Equal(t, models.FollowPending, suite.followStatus(suite.testUser, bob))

	w = suite.request(http.MethodPost, suite.followPath(bob, "follow"), nil, suite.testUser)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Follow request already pending", suite.decode(w)["message"])

	w = suite.request(http.MethodPost, suite.followPath(suite.testUser, "accept"), nil, bob)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Follow request accepted", suite.decode(w)["message"])
	assert.Equal(t, models.FollowAccepted, suite.followStatus(suite.testUser, bob))

	w = suite.request(http.MethodPost, suite.followPath(bob, "follow"), nil, suite.testUser)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Already following", suite.decode(w)["message"])

	w = suite.request(http.MethodPost, suite.followPath(bob, "unfollow"), nil, suite.testUser)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Unfollowed successfully", suite.decode(w)["message"])
	assert.Equal(t, "none", suite.followStatus(suite.testUser, bob))

	// Unfollowing again is still a success.
	w = suite.request(http.MethodPost, suite.followPath(bob, "unfollow"), nil, suite.testUser)
	assert.Equal(t, http.StatusOK, w.Code)
}

func (suite *HandlersTestSuite) TestRejectedFollowCanBeRequestedAgain() {
	t := suite.T()
	bob := suite.createUser("bob", nil)
	suite.follow(suite.testUser, bob, models.FollowRejected)

	w := suite.request(http.MethodPost, suite.followPath(bob, "follow"), nil, suite.testUser)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, models.FollowPending, suite.followStatus(suite.testUser, bob))

	var count int64
	suite.db.Model(&models.Follow{}).Where("follower_id = ? AND followed_id = ?", suite.testUser.ID, bob.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func (suite *HandlersTestSuite) TestRejectFollowRequest() {
	t := suite.T()
	bob := suite.createUser("bob", nil)
	suite.follow(bob, suite.testUser, models.FollowPending)

	w := suite.request(http.MethodPost, suite.followPath(bob, "reject"), nil, suite.testUser)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Follow request rejected", suite.decode(w)["message"])
	assert.Equal(t, "none", suite.followStatus(bob, suite.testUser))

	w = suite.request(http.MethodPost, suite.followPath(bob, "accept"), nil, suite.testUser)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Follow request not found", suite.decode(w)["error"])
}

func (suite *HandlersTestSuite) TestFollowErrors() {
	t := suite.T()

	w := suite.request(http.MethodPost, suite.followPath(suite.testUser, "follow"), nil, suite.testUser)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Cannot follow yourself", suite.decode(w)["error"])

	w = suite.request(http.MethodPost, "/api/follows/users/abc/follow", nil, suite.testUser)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "User ID is required", suite.decode(w)["error"])

	w = suite.request(http.MethodPost, "/api/follows/users/9999/follow", nil, suite.testUser)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User not found", suite.decode(w)["error"])

	w = suite.request(http.MethodPost, "/api/follows/users/9999/follow", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func (suite *HandlersTestSuite) TestFollowLists() {
	t := suite.T()
	bob := suite.createUser("bob", nil)
	carol := suite.createUser("carol", nil)
	dave := suite.createUser("dave", nil)

	suite.follow(bob, suite.testUser, models.FollowAccepted)
	suite.follow(carol, suite.testUser, models.FollowPending)
	suite.follow(suite.testUser, dave, models.FollowAccepted)
	suite.follow(carol, dave, models.FollowAccepted)

	w := suite.request(http.MethodGet, "/api/follows/followers", nil, suite.testUser)
	require.Equal(t, http.StatusOK, w.Code)
	followers := suite.decodeList(w)
	require.Len(t, followers, 1)
	assert.Equal(t, "bob", followers[0]["follower"].(map[string]interface{})["username"])

	w = suite.request(http.MethodGet, "/api/follows/requests", nil, suite.testUser)
	require.Equal(t, http.StatusOK, w.Code)
	requests := suite.decodeList(w)
	require.Len(t, requests, 1)
	assert.Equal(t, "carol", requests[0]["follower"].(map[string]interface{})["username"])
	assert.Equal(t, models.FollowPending, requests[0]["status"])

	w = suite.request(http.MethodGet, "/api/follows/following", nil, suite.testUser)
	require.Equal(t, http.StatusOK, w.Code)
	following := suite.decodeList(w)
	require.Len(t, following, 1)
	assert.Equal(t, "dave", following[0]["followed"].(map[string]interface{})["username"])

	w = suite.request(http.MethodGet, "/api/follows", nil, suite.testUser)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, suite.results(w), 3)
}
