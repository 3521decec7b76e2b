package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	json "github.com/json-iterator/go"

	"github.com/emrealmaoglu/trailium/cli/pkg/client"
	"github.com/emrealmaoglu/trailium/cli/pkg/config"
)

type recorded struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   map[string]interface{}
}

// newTestServer points the shared client at handler and records the last request
func newTestServer(t *testing.T, handler http.HandlerFunc) *recorded {
	t.Helper()
	last := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*last = recorded{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Auth:   r.Header.Get("Authorization"),
		}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			_ = json.Unmarshal(data, &last.Body)
		}
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	if err := config.Init(filepath.Join(t.TempDir(), "config.toml")); err != nil {
		t.Fatal(err)
	}
	config.Set("api.base_url", srv.URL)
	client.Init()
	return last
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}
