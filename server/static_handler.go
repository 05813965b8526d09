package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// SPAHandler 提供前端构建产物，未知路径回退到 index.html 交给前端路由
type SPAHandler struct {
	root string
}

// NewSPAHandler returns nil when dir does not contain an index.html.
func NewSPAHandler(dir string) *SPAHandler {
	if _, err := os.Stat(filepath.Join(dir, "index.html")); err != nil {
		return nil
	}
	return &SPAHandler{root: dir}
}

// ServeHTTP 实现 http.Handler 接口
func (h *SPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	clean := filepath.FromSlash(strings.TrimPrefix(filepath.ToSlash(filepath.Clean("/"+r.URL.Path)), "/"))
	target := filepath.Join(h.root, clean)

	info, err := os.Stat(target)
	if err != nil || info.IsDir() {
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeFile(w, r, filepath.Join(h.root, "index.html"))
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeFile(w, r, target)
}
