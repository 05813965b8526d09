package server

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"simpleink/cache"
	"simpleink/config"
	"simpleink/core/auth"
	"simpleink/db"
	"simpleink/repository"
	"simpleink/storage"

	"github.com/goccy/go-json"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *string         `json:"error"`
}

type testServer struct {
	handler http.Handler
	pool    *db.Pool
	cfg     *config.Config
}

func stepClock() repository.Clock {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var n int
	return func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}

func newTestServer(t *testing.T, mutate ...func(*config.Config)) *testServer {
	t.Helper()

	conn, err := sql.Open(db.DriverSQLite, "file::memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })
	pool := db.NewPool(conn, db.DriverSQLite)
	if err := db.Migrate(context.Background(), pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	gdb, err := db.OpenGorm(pool)
	if err != nil {
		t.Fatalf("gorm: %v", err)
	}

	cfg := &config.Config{
		CORSOrigin:    "*",
		DefaultBucket: "imagens",
		MaxUploadMB:   1,
		AdminUser:     "admin",
		JWTSecret:     "test-secret",
		JWTTTL:        time.Hour,
	}
	for _, m := range mutate {
		m(cfg)
	}

	files, err := storage.NewLocalStore(t.TempDir(), "imagens", "audios")
	if err != nil {
		t.Fatalf("local store: %v", err)
	}
	authenticator, err := auth.NewAuthenticator(cfg)
	if err != nil {
		t.Fatalf("authenticator: %v", err)
	}

	store := cache.NewMemory()
	clock := stepClock()
	h := NewAPIHandler(cfg, Deps{
		Pool:      pool,
		Playlists: repository.NewCachedPlaylistRepository(repository.NewSQLPlaylistRepository(pool, clock), store, nil),
		Pontos:    repository.NewCachedPontoRepository(repository.NewSQLPontoRepository(pool, clock), store, nil),
		Historia:  repository.NewCachedHistoriaRepository(repository.NewGormHistoriaRepository(gdb, clock), store, nil),
		Files:     files,
		Auth:      authenticator,
	})
	return &testServer{handler: NewRouter(h), pool: pool, cfg: cfg}
}

func (ts *testServer) do(t *testing.T, method, path, body string, headers ...string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Header().Get("Content-Type") != "" && bytes.HasPrefix(bytes.TrimSpace(rec.Body.Bytes()), []byte("{")) {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s %s response: %v (%s)", method, path, err, rec.Body.String())
		}
	}
	return rec, env
}

func (ts *testServer) createID(t *testing.T, path, body string) string {
	t.Helper()
	rec, env := ts.do(t, http.MethodPost, path, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST %s: status %d body %s", path, rec.Code, rec.Body.String())
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &out); err != nil || out.ID == "" {
		t.Fatalf("POST %s: missing id in %s", path, env.Data)
	}
	return out.ID
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(env.Data, &v); err != nil {
		t.Fatalf("decode data: %v (%s)", err, env.Data)
	}
	return v
}

// multipartBody builds an upload form. An empty filename omits the file field.
func multipartBody(t *testing.T, fields map[string]string, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		fw.Write(content)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func jsonUnmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
