package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emrealmaoglu/trailium/internal/models"
)

// =============================================================================
// POST TESTS
// =============================================================================

func titles(results []interface{}) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.(map[string]interface{})["title"].(string)
	}
	return out
}

func (suite *HandlersTestSuite) TestListPostsVisibility() {
	t := suite.T()
	bob := suite.createUser("bob", nil)
	carol := suite.createUser("carol", nil)

	suite.createPost(bob, "bob public", models.VisibilityPublic)
	suite.createPost(bob, "bob followers", models.VisibilityFollowers)
	suite.createPost(bob, "bob private", models.VisibilityPrivate)
	suite.createPost(carol, "carol followers", models.VisibilityFollowers)
	suite.createPost(suite.testUser, "alice private", models.VisibilityPrivate)
	suite.follow(suite.testUser, bob, models.FollowAccepted)
	suite.follow(suite.testUser, carol, models.FollowPending)

	w := suite.request(http.MethodGet, "/api/posts", nil, suite.testUser)
	require.Equal(t, http.StatusOK, w.Code)

	assert.ElementsMatch(t, []string{"bob public", "bob followers", "alice private"}, titles(suite.results(w)))
}

func (suite *HandlersTestSuite) TestListPostsByOwner() {
	t := suite.T()
	bob := suite.createUser("bob", nil)
	suite.createPost(bob, "bob public", models.VisibilityPublic)
	suite.createPost(bob, "bob followers", models.VisibilityFollowers)
	suite.createPost(suite.testUser, "alice public", models.VisibilityPublic)

	w := suite.request(http.MethodGet, "/api/posts?user_id="+idStr(bob.ID), nil, suite.testUser)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"bob public"}, titles(suite.results(w)))

	w = suite.request(http.MethodGet, "/api/posts?user_id="+idStr(bob.ID), nil, bob)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, suite.results(w), 2)

	w = suite.request(http.MethodGet, "/api/posts?user_id=abc", nil, suite.testUser)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, suite.results(w), 2)
}

func (suite *HandlersTestSuite) TestListPostsOrderAndCounts() {
	t := suite.T()
	first := suite.createPost(suite.testUser, "first post", models.VisibilityPublic)
	suite.createPost(suite.testUser, "second post", models.VisibilityPublic)
	require.NoError(t, suite.db.Create(&models.Like{PostID: first.ID, UserID: suite.testUser.ID}).Error)
	require.NoError(t, suite.db.Create(&models.Comment{PostID: first.ID, UserID: suite.testUser.ID, Body: "c"}).Error)

	w := suite.request(http.MethodGet, "/api/posts", nil, suite.testUser)
	require.Equal(t, http.StatusOK, w.Code)
	results := suite.results(w)
	require.Len(t, results, 2)

	last := results[1].(map[string]interface{})
	assert.Equal(t, "first post", last["title"])
	assert.EqualValues(t, 1, last["likes_count"])
	assert.EqualValues(t, 1, last["comments_count"])
	assert.Equal(t, "alice", last["user"].(map[string]interface{})["username"])
}

func (suite *HandlersTestSuite) TestListPostsRequiresAuth() {
	w := suite.request(http.MethodGet, "/api/posts", nil, nil)
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func (suite *HandlersTestSuite) TestGetPostOutsideQuerysetIs404() {
	t := suite.T()
	bob := suite.createUser("bob", nil)
	post := suite.createPost(bob, "bob private", models.VisibilityPrivate)

	w := suite.request(http.MethodGet, "/api/posts/"+idStr(post.ID), nil, suite.testUser)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = suite.request(http.MethodGet, "/api/posts/"+idStr(post.ID), nil, bob)
	assert.Equal(t, http.StatusOK, w.Code)
}

func (suite *HandlersTestSuite) TestCreatePost() {
	t := suite.T()

	w := suite.request(http.MethodPost, "/api/posts", map[string]interface{}{
		"body":       "  Walked the ridge trail today and saw three hawks circling  ",
		"visibility": "followers",
	}, suite.testUser)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := suite.decode(w)
	assert.Equal(t, "Walked the ridge trail today and saw three hawks c", body["title"])
	assert.Equal(t, "followers", body["visibility"])
	assert.Equal(t, true, body["is_published"])
	assert.EqualValues(t, 0, body["likes_count"])
}

func (suite *HandlersTestSuite) TestCreatePostValidation() {
	tests := []struct {
		name  string
		body  map[string]interface{}
		field string
	}{
		{"missing body", map[string]interface{}{"title": "A fine title"}, "body"},
		{"blank body", map[string]interface{}{"body": "   "}, "body"},
		{"too long", map[string]interface{}{"body": strings.Repeat("x", 2001)}, "body"},
		{"short title", map[string]interface{}{"body": "hey"}, "title"},
		{"bad visibility", map[string]interface{}{"body": "hello world", "visibility": "friends"}, "visibility"},
		{"script", map[string]interface{}{"body": "<script>alert(1)</script>"}, "body"},
		{"sql in title", map[string]interface{}{"body": "hello world", "title": "x' OR 1=1 --"}, "title"},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			w := suite.request(http.MethodPost, "/api/posts", tt.body, suite.testUser)
			assert.Equal(suite.T(), http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(suite.T(), tt.field, suite.decode(w)["field"])
		})
	}
}

func (suite *HandlersTestSuite) TestCreatePostAllowsEnglishInBody() {
	w := suite.request(http.MethodPost, "/api/posts", map[string]interface{}{
		"body": "Please select a trail and update me or 1 = 1 of you",
	}, suite.testUser)
	assert.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())
}

func (suite *HandlersTestSuite) TestUpdatePost() {
	t := suite.T()
	bob := suite.createUser("bob", nil)
	post := suite.createPost(suite.testUser, "original title", models.VisibilityPublic)

	w := suite.request(http.MethodPatch, "/api/posts/"+idStr(post.ID), map[string]string{"title": "renamed title"}, bob)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = suite.request(http.MethodPatch, "/api/posts/"+idStr(post.ID), map[string]string{"title": "renamed title"}, suite.testUser)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := suite.decode(w)
	assert.Equal(t, "renamed title", body["title"])
	assert.Equal(t, "original title body", body["body"])

	w = suite.request(http.MethodPut, "/api/posts/"+idStr(post.ID), map[string]string{"title": "full write"}, suite.testUser)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestDeletePostCascades() {
	t := suite.T()
	bob := suite.createUser("bob", nil)
	post := suite.createPost(suite.testUser, "doomed post", models.VisibilityPublic)
	require.NoError(t, suite.db.Create(&models.Like{PostID: post.ID, UserID: bob.ID}).Error)
	require.NoError(t, suite.db.Create(&models.Comment{PostID: post.ID, UserID: bob.ID, Body: "nice"}).Error)

	w := suite.request(http.MethodDelete, "/api/posts/"+idStr(post.ID), nil, bob)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = suite.request(http.MethodDelete, "/api/posts/"+idStr(post.ID), nil, suite.testUser)
	require.Equal(t, http.StatusNoContent, w.Code)

	var likes, comments int64
	suite.db.Model(&models.Like{}).Count(&likes)
	suite.db.Model(&models.Comment{}).Count(&comments)
	assert.Zero(t, likes)
	assert.Zero(t, comments)
}

func (suite *HandlersTestSuite) TestLikeIsIdempotent() {
	t := suite.T()
	post := suite.createPost(suite.testUser, "likeable post", models.VisibilityPublic)
	path := fmt.Sprintf("/api/posts/%d/like", post.ID)

	for i := 0; i < 2; i++ {
		w := suite.request(http.MethodPost, path, nil, suite.testUser)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "liked", suite.decode(w)["status"])
	}

	var count int64
	suite.db.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&count)
	assert.EqualValues(t, 1, count)

	w := suite.request(http.MethodDelete, path, nil, suite.testUser)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = suite.request(http.MethodDelete, path, nil, suite.testUser)
	assert.Equal(t, http.StatusNoContent, w.Code)

	suite.db.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&count)
	assert.Zero(t, count)
}

func (suite *HandlersTestSuite) TestComments() {
	t := suite.T()
	bob := suite.createUser("bob", nil)
	post := suite.createPost(bob, "commentable", models.VisibilityPublic)
	path := fmt.Sprintf("/api/posts/%d/comments", post.ID)

	w := suite.request(http.MethodPost, path, map[string]string{"body": "  first!  "}, suite.testUser)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := suite.decode(w)
	assert.Equal(t, "first!", body["body"])
	assert.Equal(t, "alice", body["user"].(map[string]interface{})["username"])

	w = suite.request(http.MethodPost, path, map[string]string{"body": "second"}, bob)
	require.Equal(t, http.StatusCreated, w.Code)

	w = suite.request(http.MethodPost, path, map[string]string{"body": " "}, bob)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodGet, path, nil, suite.testUser)
	require.Equal(t, http.StatusOK, w.Code)
	comments := suite.decodeList(w)
	require.Len(t, comments, 2)
	assert.Equal(t, "first!", comments[0]["body"])
	assert.Equal(t, "second", comments[1]["body"])
}

func (suite *HandlersTestSuite) TestFeed() {
	t := suite.T()
	bob := suite.createUser("bob", nil)
	carol := suite.createUser("carol", nil)
	suite.follow(suite.testUser, bob, models.FollowAccepted)
	suite.follow(suite.testUser, carol, models.FollowPending)

	for i := 0; i < 6; i++ {
		suite.createPost(bob, fmt.Sprintf("bob post %d", i), models.VisibilityFollowers)
	}
	suite.createPost(bob, "bob private", models.VisibilityPrivate)
	suite.createPost(carol, "carol public", models.VisibilityPublic)
	suite.createPost(suite.testUser, "alice own", models.VisibilityPublic)

	w := suite.request(http.MethodGet, "/api/feed/posts", nil, suite.testUser)
	require.Equal(t, http.StatusOK, w.Code)
	body := suite.decode(w)
	assert.EqualValues(t, 6, body["count"])
	assert.Len(t, body["results"], 5)
	assert.NotNil(t, body["next"])

	w = suite.request(http.MethodGet, "/api/feed/posts?page_size=10", nil, suite.testUser)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, suite.results(w), 6)
}

func (suite *HandlersTestSuite) TestMyPosts() {
	t := suite.T()
	bob := suite.createUser("bob", nil)
	suite.createPost(bob, "bob public", models.VisibilityPublic)
	suite.createPost(suite.testUser, "alice private", models.VisibilityPrivate)

	w := suite.request(http.MethodGet, "/api/my-posts", nil, suite.testUser)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"alice private"}, titles(suite.results(w)))
}
