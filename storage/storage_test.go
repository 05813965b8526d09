package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func TestCleanName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "p1.mp3", want: "p1.mp3"},
		{in: "sub/p1.mp3", want: "sub/p1.mp3"},
		{in: "../../etc/passwd", want: "etc/passwd"},
		{in: "/abs/x.png", want: "abs/x.png"},
		{in: `..\..\win.ini`, want: "win.ini"},
		{in: "", wantErr: true},
		{in: "..", wantErr: true},
	}
	for _, tt := range tests {
		got, err := CleanName(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("CleanName(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("CleanName(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestCleanBucket(t *testing.T) {
	for _, ok := range []string{"imagens", "audios", "capas_2024"} {
		if _, err := CleanBucket(ok); err != nil {
			t.Errorf("bucket %q rejected: %v", ok, err)
		}
	}
	for _, bad := range []string{"", "..", "a/b", "imagens/../x"} {
		if _, err := CleanBucket(bad); err == nil {
			t.Errorf("bucket %q accepted", bad)
		}
	}
}

func TestObjectName(t *testing.T) {
	now := time.UnixMilli(1714560000000)

	got, err := ObjectName("", "Ponto de Oxóssi.MP3", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "1714560000000-ponto-de-oxossi.mp3" {
		t.Errorf("unexpected generated name %q", got)
	}

	got, _ = ObjectName("p1.mp3", "ignored.mp3", now)
	if got != "p1.mp3" {
		t.Errorf("custom path not kept: %q", got)
	}
}

func TestLocalStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir(), "imagens")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	payload := []byte("ID3 fake audio bytes")
	if err := store.Save(ctx, "audios", "p1.mp3", bytes.NewReader(payload), int64(len(payload)), "audio/mpeg"); err != nil {
		t.Fatalf("save: %v", err)
	}

	obj, err := store.Open(ctx, "audios", "p1.mp3")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer obj.Close()
	got, _ := io.ReadAll(obj)
	if !bytes.Equal(got, payload) {
		t.Errorf("content mismatch: %q", got)
	}
	if obj.Size != int64(len(payload)) || obj.ContentType != "audio/mpeg" {
		t.Errorf("unexpected object info size=%d type=%s", obj.Size, obj.ContentType)
	}

	objects, stats, err := store.List(ctx, "audios")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(objects) != 1 || objects[0].Key != "p1.mp3" || stats.TotalSize != int64(len(payload)) {
		t.Errorf("unexpected listing %+v %+v", objects, stats)
	}

	if err := store.Remove(ctx, "audios", "p1.mp3"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := store.Open(ctx, "audios", "p1.mp3"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after remove, got %v", err)
	}
}

func TestLocalStoreRejectsBadBucket(t *testing.T) {
	store, _ := NewLocalStore(t.TempDir())
	err := store.Save(context.Background(), "../x", "a.txt", strings.NewReader("x"), 1, "")
	if !errors.Is(err, ErrInvalidKey) {
		t.Errorf("expected ErrInvalidKey, got %v", err)
	}
}

func TestFormatSize(t *testing.T) {
	if got := FormatSize(512); got != "512 B" {
		t.Errorf("got %q", got)
	}
	if got := FormatSize(5 << 20); got != "5.0 MB" {
		t.Errorf("got %q", got)
	}
}
