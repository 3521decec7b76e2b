package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *HandlersTestSuite) TestHealth() {
	t := suite.T()

	w := suite.request(http.MethodGet, "/api/health", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := suite.decode(w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "trailium-backend", body["service"])
	checks := body["checks"].(map[string]interface{})
	assert.Equal(t, "ok", checks["database"])
	assert.Equal(t, "disabled", checks["redis"])
}

func (suite *HandlersTestSuite) TestHealthDatabaseDown() {
	t := suite.T()
	sqlDB, err := suite.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	w := suite.request(http.MethodGet, "/api/health", nil, nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := suite.decode(w)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "error", body["checks"].(map[string]interface{})["database"])
}

func (suite *HandlersTestSuite) TestSchema() {
	t := suite.T()

	req := httptest.NewRequest(http.MethodGet, "/api/schema", nil)
	req.Host = "api.trailium.test"
	req.Header.Set("X-Forwarded-Proto", "https")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "api.trailium.test", doc["host"])
	assert.Equal(t, []interface{}{"https"}, doc["schemes"])
	assert.Equal(t, "/api", doc["basePath"])

	paths := doc["paths"].(map[string]interface{})
	assert.Contains(t, paths, "/posts")
	assert.Contains(t, paths, "/todo-items/{id}/toggle-done")
}
