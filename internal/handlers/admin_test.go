package handlers

import (
	"net/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emrealmaoglu/trailium/internal/models"
	"github.com/emrealmaoglu/trailium/internal/purge"
)

// =============================================================================
// ADMIN TOOL TESTS
// =============================================================================

const purgePath = "/api/admin-tools/purge-non-admin-users"

func (suite *HandlersTestSuite) createSuperuser() *models.User {
	return suite.createUser("root", func(u *models.User) {
		u.IsStaff = true
		u.IsSuperuser = true
	})
}

func (suite *HandlersTestSuite) TestPurgeRequiresSuperuser() {
	t := suite.T()
	staff := suite.createUser("ranger", func(u *models.User) { u.IsStaff = true })
	body := map[string]interface{}{"confirm": purge.ConfirmPhrase}

	assert.Equal(t, http.StatusUnauthorized, suite.request(http.MethodPost, purgePath, body, nil).Code)
	assert.Equal(t, http.StatusForbidden, suite.request(http.MethodPost, purgePath, body, suite.testUser).Code)
	assert.Equal(t, http.StatusForbidden, suite.request(http.MethodPost, purgePath, body, staff).Code)
}

func (suite *HandlersTestSuite) TestPurgeRequiresConfirmation() {
	t := suite.T()
	root := suite.createSuperuser()

	w := suite.request(http.MethodPost, purgePath, map[string]interface{}{"confirm": "yes"}, root)
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := suite.decode(w)
	assert.Equal(t, "Confirmation required", body["error"])
	assert.Equal(t, purge.ConfirmPhrase, body["required_phrase"])

	w = suite.request(http.MethodPost, purgePath, map[string]interface{}{"confirm": purge.ConfirmPhrase, "keep": "alice"}, root)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid keep_list format", suite.decode(w)["error"])
}

func (suite *HandlersTestSuite) TestPurgeDryRunByDefault() {
	t := suite.T()
	root := suite.createSuperuser()
	bob := suite.createUser("bob", nil)
	suite.createPost(bob, "bob post", models.VisibilityPublic)
	suite.createPost(suite.testUser, "alice post", models.VisibilityPublic)

	w := suite.request(http.MethodPost, purgePath, map[string]interface{}{"confirm": purge.ConfirmPhrase, "keep": []string{"alice"}}, root)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := suite.decode(w)
	assert.Equal(t, "dry_run", body["mode"])
	summary := body["would_delete"].(map[string]interface{})
	assert.Equal(t, float64(1), summary["users"])
	assert.Equal(t, float64(1), summary["posts"])
	assert.Equal(t, []interface{}{"alice", "root"}, summary["kept_usernames"])

	var users int64
	suite.db.Model(&models.User{}).Count(&users)
	assert.Equal(t, int64(3), users)
}

func (suite *HandlersTestSuite) TestPurgeExecute() {
	t := suite.T()
	root := suite.createSuperuser()
	bob := suite.createUser("bob", nil)
	suite.createPost(bob, "bob post", models.VisibilityPublic)
	suite.follow(bob, root, models.FollowAccepted)

	w := suite.request(http.MethodPost, purgePath, map[string]interface{}{
		"confirm": purge.ConfirmPhrase,
		"keep":    []string{"alice@example.com"},
		"dry_run": false,
	}, root)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := suite.decode(w)
	assert.Equal(t, "executed", body["mode"])
	assert.Equal(t, float64(1), body["deleted"].(map[string]interface{})["users"])

	var remaining []string
	suite.db.Model(&models.User{}).Order("username").Pluck("username", &remaining)
	assert.Equal(t, []string{"alice", "root"}, remaining)

	var posts, follows int64
	suite.db.Model(&models.Post{}).Count(&posts)
	suite.db.Model(&models.Follow{}).Count(&follows)
	assert.Zero(t, posts)
	assert.Zero(t, follows)
}
