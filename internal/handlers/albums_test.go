package handlers

import (
	"bytes"
	"errors"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/emrealmaoglu/trailium/internal/models"
)

// =============================================================================
// ALBUM TESTS
// =============================================================================

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func (suite *HandlersTestSuite) createAlbum(owner *models.User, title, visibility string) *models.Album {
	album := &models.Album{UserID: owner.ID, Title: title, IsPublished: true, Visibility: visibility}
	require.NoError(suite.T(), suite.db.Create(album).Error)
	return album
}

func (suite *HandlersTestSuite) upload(path, filename string, content []byte, fields map[string]string, user *models.User) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(suite.T(), mw.WriteField(k, v))
	}
	if filename != "" {
		part, err := mw.CreateFormFile("image", filename)
		require.NoError(suite.T(), err)
		_, err = part.Write(content)
		require.NoError(suite.T(), err)
	}
	require.NoError(suite.T(), mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+suite.tokenFor(user))

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *HandlersTestSuite) TestCreateAlbum() {
	t := suite.T()

	w := suite.request(http.MethodPost, "/api/albums", map[string]string{"title": "Summer hikes"}, suite.testUser)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := suite.decode(w)
	assert.Equal(t, "Summer hikes", body["title"])
	assert.Equal(t, true, body["is_published"])
	assert.Equal(t, "public", body["visibility"])
	assert.NotContains(t, body, "photos")

	w = suite.request(http.MethodPost, "/api/albums", map[string]string{"title": ""}, suite.testUser)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodPost, "/api/albums", map[string]string{"title": strings.Repeat("a", 201)}, suite.testUser)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestListAlbumsScopes() {
	t := suite.T()
	bob := suite.createUser("bob", nil)
	suite.createAlbum(suite.testUser, "mine", models.VisibilityPrivate)
	suite.createAlbum(bob, "bob public", models.VisibilityPublic)
	suite.createAlbum(bob, "bob followers", models.VisibilityFollowers)

	w := suite.request(http.MethodGet, "/api/albums", nil, suite.testUser)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"mine"}, titles(suite.results(w)))

	w = suite.request(http.MethodGet, "/api/albums?user_id="+idStr(bob.ID), nil, suite.testUser)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"bob public"}, titles(suite.results(w)))

	suite.follow(suite.testUser, bob, models.FollowAccepted)
	w = suite.request(http.MethodGet, "/api/albums?user_id="+idStr(bob.ID), nil, suite.testUser)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, suite.results(w), 2)
}

func (suite *HandlersTestSuite) TestAlbumDetailAndOwnership() {
	t := suite.T()
	bob := suite.createUser("bob", nil)
	album := suite.createAlbum(bob, "bob public", models.VisibilityPublic)

	w := suite.request(http.MethodGet, "/api/albums/"+idStr(album.ID), nil, suite.testUser)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = suite.request(http.MethodGet, "/api/albums/"+idStr(album.ID)+"?user_id="+idStr(bob.ID), nil, suite.testUser)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{}, suite.decode(w)["photos"])

	w = suite.request(http.MethodPatch, "/api/albums/"+idStr(album.ID)+"?user_id="+idStr(bob.ID), map[string]string{"title": "mine now"}, suite.testUser)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = suite.request(http.MethodPatch, "/api/albums/"+idStr(album.ID), map[string]interface{}{"title": "renamed", "is_published": false}, bob)
	require.Equal(t, http.StatusOK, w.Code)
	body := suite.decode(w)
	assert.Equal(t, "renamed", body["title"])
	assert.Equal(t, false, body["is_published"])
}

func (suite *HandlersTestSuite) TestDeleteAlbumRemovesPhotos() {
	t := suite.T()
	album := suite.createAlbum(suite.testUser, "doomed", models.VisibilityPublic)
	require.NoError(t, suite.db.Create(&models.Photo{AlbumID: album.ID, URL: "https://img.test/1.jpg"}).Error)

	w := suite.request(http.MethodDelete, "/api/albums/"+idStr(album.ID), nil, suite.testUser)
	require.Equal(t, http.StatusNoContent, w.Code)

	var photos int64
	suite.db.Model(&models.Photo{}).Count(&photos)
	assert.Zero(t, photos)
}

func (suite *HandlersTestSuite) TestCreatePhotoFromJSON() {
	t := suite.T()
	album := suite.createAlbum(suite.testUser, "links", models.VisibilityPublic)
	path := "/api/albums/" + idStr(album.ID) + "/photos"

	w := suite.request(http.MethodPost, path, map[string]interface{}{
		"title":    "Sunrise",
		"url":      "https://img.test/sunrise.jpg",
		"metadata": map[string]string{"camera": "x100"},
	}, suite.testUser)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := suite.decode(w)
	assert.Equal(t, "https://img.test/sunrise.jpg", body["url"])
	assert.Equal(t, "x100", body["metadata"].(map[string]interface{})["camera"])

	w = suite.request(http.MethodPost, path, map[string]string{"title": "no url"}, suite.testUser)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "url", suite.decode(w)["field"])

	w = suite.request(http.MethodGet, path, nil, suite.testUser)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, suite.decodeList(w), 1)
}

func (suite *HandlersTestSuite) TestCreatePhotoUpload() {
	t := suite.T()
	album := suite.createAlbum(suite.testUser, "uploads", models.VisibilityPublic)
	path := "/api/albums/" + idStr(album.ID) + "/photos"

	w := suite.upload(path, "pixel.png", pngHeader, map[string]string{"title": "Pixel", "caption": "tiny"}, suite.testUser)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := suite.decode(w)
	url := body["url"].(string)
	assert.True(t, strings.HasPrefix(url, "/media/photos/"), url)
	assert.True(t, strings.HasSuffix(url, ".png"), url)
	assert.Equal(t, url, body["thumbnail_url"])
	assert.Equal(t, "tiny", body["metadata"].(map[string]interface{})["caption"])

	stored := filepath.Join(suite.mediaRoot, strings.TrimPrefix(url, "/media/"))
	_, err := os.Stat(stored)
	assert.NoError(t, err)
}

func (suite *HandlersTestSuite) TestCreatePhotoUploadRejects() {
	t := suite.T()
	bob := suite.createUser("bob", nil)
	album := suite.createAlbum(suite.testUser, "uploads", models.VisibilityPublic)
	path := "/api/albums/" + idStr(album.ID) + "/photos"

	w := suite.upload(path, "", nil, map[string]string{"title": "nothing"}, suite.testUser)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = suite.upload(path, "notes.txt", []byte("just some text"), nil, suite.testUser)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "image", suite.decode(w)["field"])

	big := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 2*1024*1024)...)
	w = suite.upload(path, "huge.png", big, nil, suite.testUser)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = suite.upload(path+"?user_id="+idStr(suite.testUser.ID), "pixel.png", pngHeader, nil, bob)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func (suite *HandlersTestSuite) TestCreatePhotoWithoutStorage() {
	t := suite.T()
	album := suite.createAlbum(suite.testUser, "uploads", models.VisibilityPublic)
	suite.handlers.SetStorage(nil)

	w := suite.upload("/api/albums/"+idStr(album.ID)+"/photos", "pixel.png", pngHeader, nil, suite.testUser)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func (suite *HandlersTestSuite) TestCreatePhotoUploadRemovedWhenInsertFails() {
	t := suite.T()
	album := suite.createAlbum(suite.testUser, "uploads", models.VisibilityPublic)

	err := suite.db.Callback().Create().Before("gorm:create").Register("test:fail_photo_insert", func(tx *gorm.DB) {
		if tx.Statement.Schema != nil && tx.Statement.Schema.Table == "photos" {
			_ = tx.AddError(errors.New("insert failed"))
		}
	})
	require.NoError(t, err)

	w := suite.upload("/api/albums/"+idStr(album.ID)+"/photos", "pixel.png", pngHeader, nil, suite.testUser)
	require.Equal(t, http.StatusInternalServerError, w.Code, w.Body.String())

	var files []string
	_ = filepath.WalkDir(suite.mediaRoot, func(path string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	assert.Empty(t, files)
}
