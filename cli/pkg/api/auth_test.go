package api

import (
	"testing"

	"github.com/emrealmaoglu/trailium/cli/pkg/client"
)

func TestLogin(t *testing.T) {
	last := newTestServer(t, respond(200, `{"access":"a.b.c","refresh":"r.s.t"}`))

	tokens, err := Login("alice", "secret", true)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if tokens.Access != "a.b.c" || tokens.Refresh != "r.s.t" {
		t.Errorf("tokens = %+v", tokens)
	}
	if last.Method != "POST" || last.Path != "/api/auth/login" {
		t.Errorf("request = %s %s", last.Method, last.Path)
	}
	if last.Body["username"] != "alice" || last.Body["password"] != "secret" || last.Body["rememberMe"] != true {
		t.Errorf("body = %v", last.Body)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	newTestServer(t, respond(401, `{"detail":"Invalid credentials"}`))

	tokens, err := Login("alice", "wrong", false)
	if tokens != nil {
		t.Errorf("expected nil tokens, got %+v", tokens)
	}
	if !IsUnauthorized(err) {
		t.Errorf("expected unauthorized error, got %v", err)
	}
}

func TestRefreshAndLogout(t *testing.T) {
	last := newTestServer(t, respond(200, `{"access":"new.access.token"}`))

	out, err := Refresh("r.s.t")
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if out.Access != "new.access.token" {
		t.Errorf("access = %q", out.Access)
	}
	if last.Path != "/api/auth/refresh" || last.Body["refresh"] != "r.s.t" {
		t.Errorf("request = %s %v", last.Path, last.Body)
	}

	newTestServer(t, respond(205, ``))
	if err := Logout("r.s.t"); err != nil {
		t.Errorf("Logout failed: %v", err)
	}
}

func TestGetCurrentUserSendsToken(t *testing.T) {
	last := newTestServer(t, respond(200, `{"id":3,"username":"alice","is_staff":true,"is_superuser":false}`))
	client.SetAuthToken("tok")

	user, err := GetCurrentUser()
	if err != nil {
		t.Fatalf("GetCurrentUser failed: %v", err)
	}
	if user.ID != 3 || user.Username != "alice" || !user.IsStaff {
		t.Errorf("user = %+v", user)
	}
	if last.Auth != "Bearer tok" {
		t.Errorf("Authorization = %q", last.Auth)
	}
}
