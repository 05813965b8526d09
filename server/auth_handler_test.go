package server

import (
	"net/http"
	"testing"

	"simpleink/config"
	"simpleink/core/auth"
)

func requireAuth(t *testing.T) func(*config.Config) {
	hash, err := auth.HashPassword("segredo")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return func(cfg *config.Config) {
		cfg.AuthRequired = true
		cfg.AdminPasswordHash = hash
	}
}

func TestWritesRequireTokenWhenEnabled(t *testing.T) {
	ts := newTestServer(t, requireAuth(t))

	rec, _ := ts.do(t, http.MethodPost, "/api/playlists", `{"titulo":"x"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	// reads stay public
	if rec, _ := ts.do(t, http.MethodGet, "/api/playlists", ""); rec.Code != http.StatusOK {
		t.Errorf("expected public read, got %d", rec.Code)
	}

	rec, env := ts.do(t, http.MethodPost, "/api/auth/login", `{"username":"admin","password":"segredo"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	login := decodeData[LoginResponse](t, env)
	if login.Token == "" {
		t.Fatal("empty token")
	}

	rec, _ = ts.do(t, http.MethodPost, "/api/playlists", `{"titulo":"x"}`, "Authorization", "Bearer "+login.Token)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 with token, got %d %s", rec.Code, rec.Body.String())
	}

	rec, _ = ts.do(t, http.MethodPost, "/api/playlists", `{"titulo":"x"}`, "Authorization", "Bearer forged")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with forged token, got %d", rec.Code)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	ts := newTestServer(t, requireAuth(t))
	rec, env := ts.do(t, http.MethodPost, "/api/auth/login", `{"username":"admin","password":"errada"}`)
	if rec.Code != http.StatusUnauthorized || env.Error == nil {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestWritesOpenWhenAuthDisabled(t *testing.T) {
	ts := newTestServer(t)
	if rec, _ := ts.do(t, http.MethodPost, "/api/playlists", `{"titulo":"x"}`); rec.Code != http.StatusOK {
		t.Errorf("expected open write, got %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	rec, _ := ts.do(t, http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp HealthResponse
	if err := jsonUnmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" || resp.Database != "ok" {
		t.Errorf("unexpected health %+v", resp)
	}
}

func TestUnknownAPIRoute(t *testing.T) {
	ts := newTestServer(t)
	rec, env := ts.do(t, http.MethodGet, "/api/nada", "")
	if rec.Code != http.StatusNotFound || env.Error == nil {
		t.Errorf("expected JSON 404, got %d %s", rec.Code, rec.Body.String())
	}
}
