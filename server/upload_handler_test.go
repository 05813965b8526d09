package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func (ts *testServer) upload(t *testing.T, fields map[string]string, filename string, content []byte) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	body, contentType := multipartBody(t, fields, filename, content)
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	var env envelope
	if err := jsonUnmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode upload response: %v (%s)", err, rec.Body.String())
	}
	return rec, env
}

func TestUploadThenFetch(t *testing.T) {
	ts := newTestServer(t)
	content := bytes.Repeat([]byte("not really audio "), 300)

	rec, env := ts.upload(t, map[string]string{"bucket": "audios", "path": "p1.mp3"}, "original.mp3", content)
	if rec.Code != http.StatusOK {
		t.Fatalf("upload: expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	res := decodeData[UploadResult](t, env)
	if res.Path != "p1.mp3" || res.URL != "/api/files/audios/p1.mp3" || res.Bucket != "audios" {
		t.Errorf("unexpected upload result %+v", res)
	}
	if res.Metadata != nil && res.Metadata.Duration != 0 {
		t.Errorf("bytes without mp3 frames got a duration of %d", res.Metadata.Duration)
	}

	req := httptest.NewRequest(http.MethodGet, res.URL, nil)
	got := httptest.NewRecorder()
	ts.handler.ServeHTTP(got, req)
	if got.Code != http.StatusOK {
		t.Fatalf("fetch: expected 200, got %d", got.Code)
	}
	if !bytes.Equal(got.Body.Bytes(), content) {
		t.Errorf("fetched %d bytes, not identical to the %d uploaded", got.Body.Len(), len(content))
	}
	if ct := got.Header().Get("Content-Type"); ct != "audio/mpeg" {
		t.Errorf("unexpected content type %q", ct)
	}
	if cc := got.Header().Get("Cache-Control"); !strings.Contains(cc, "max-age=86400") {
		t.Errorf("unexpected cache control %q", cc)
	}
}

func TestUploadDefaultsBucketAndName(t *testing.T) {
	ts := newTestServer(t)
	rec, env := ts.upload(t, nil, "Capa Nova.PNG", []byte("png"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	res := decodeData[UploadResult](t, env)
	if res.Bucket != "imagens" {
		t.Errorf("expected default bucket, got %s", res.Bucket)
	}
	if !strings.HasSuffix(res.Path, "-capa-nova.png") {
		t.Errorf("unexpected generated name %s", res.Path)
	}
	if !strings.HasPrefix(res.URL, "/api/files/imagens/") {
		t.Errorf("unexpected url %s", res.URL)
	}
}

func TestUploadWithoutFile(t *testing.T) {
	ts := newTestServer(t)
	rec, env := ts.upload(t, map[string]string{"bucket": "audios"}, "", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if env.Error == nil || *env.Error != "Nenhum arquivo enviado" {
		t.Errorf("unexpected error %v", env.Error)
	}
}

func TestUploadTooLarge(t *testing.T) {
	ts := newTestServer(t)
	rec, _ := ts.upload(t, map[string]string{"bucket": "audios"}, "big.mp3", make([]byte, 3<<20))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rec.Code)
	}
}

func TestFetchMissingFile(t *testing.T) {
	ts := newTestServer(t)
	for _, path := range []string{"/api/files/audios/none.mp3", "/api/files/audios/../../etc/passwd"} {
		rec, _ := ts.do(t, http.MethodGet, path, "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", path, rec.Code)
		}
	}
}
