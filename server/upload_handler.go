package server

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"simpleink/core/audio"
	"simpleink/logger"
	"simpleink/storage"

	"github.com/gorilla/mux"
)

const msgNoFile = "Nenhum arquivo enviado"

// UploadResult 是 POST /api/upload 的返回数据。URL 保存了 bucket 和文件名，
// 客户端应原样存入 audio_url / imagem_url
type UploadResult struct {
	Path     string          `json:"path"`
	URL      string          `json:"url"`
	Bucket   string          `json:"bucket"`
	Size     int64           `json:"size"`
	Metadata *audio.Metadata `json:"metadata,omitempty"`
}

// UploadHandler handles multipart uploads.
// Expected multipart form fields:
// - file: the uploaded file
// - bucket: target bucket (optional, defaults to DEFAULT_BUCKET)
// - path: stored file name (optional, defaults to "<millis>-<slug>")
func (h *APIHandler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	limit := h.cfg.MaxUploadBytes()
	// 留出 1MB 给其他表单字段和 multipart 边界
	r.Body = http.MaxBytesReader(w, r.Body, limit+(1<<20))
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			writeError(w, http.StatusRequestEntityTooLarge, "Arquivo excede o limite de "+strconv.FormatInt(h.cfg.MaxUploadMB, 10)+" MB")
			return
		}
		if errors.Is(err, http.ErrNotMultipart) {
			writeError(w, http.StatusInternalServerError, msgNoFile)
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusInternalServerError, msgNoFile)
		return
	}
	defer file.Close()

	if header.Size > limit {
		writeError(w, http.StatusRequestEntityTooLarge, "Arquivo excede o limite de "+strconv.FormatInt(h.cfg.MaxUploadMB, 10)+" MB")
		return
	}

	bucket := strings.TrimSpace(r.FormValue("bucket"))
	if bucket == "" {
		bucket = h.cfg.DefaultBucket
	}
	if _, err := storage.CleanBucket(bucket); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	name, err := storage.ObjectName(r.FormValue("path"), header.Filename, h.now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := UploadResult{Path: name, Bucket: bucket, Size: header.Size, URL: storage.PublicPath(bucket, name)}
	if audio.IsAudio(name) {
		md := audio.Probe(file, name)
		result.Metadata = &md
	}

	if err := h.files.Save(r.Context(), bucket, name, file, header.Size, uploadContentType(header, name)); err != nil {
		logger.Error("Erro no upload", logger.String("bucket", bucket), logger.String("path", name), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	uploadsTotal.WithLabelValues(bucket).Inc()
	logger.Info("File uploaded",
		logger.String("bucket", bucket),
		logger.String("path", name),
		logger.Int64("size", header.Size),
	)
	writeData(w, result)
}

func uploadContentType(header *multipart.FileHeader, name string) string {
	if ct := header.Header.Get("Content-Type"); ct != "" && ct != "application/octet-stream" {
		return ct
	}
	return storage.ContentTypeOf(name)
}

// FileHandler 流式返回已上传的文件
func (h *APIHandler) FileHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	obj, err := h.files.Open(r.Context(), vars["bucket"], vars["path"])
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidKey) {
		writeError(w, http.StatusNotFound, storage.ErrNotFound.Error())
		return
	}
	if err != nil {
		writeFailure(w, r, err, storage.ErrNotFound.Error())
		return
	}
	defer obj.Close()

	w.Header().Set("Content-Type", obj.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")

	// 本地文件支持 Range，便于音频拖动进度
	if rs, ok := obj.ReadCloser.(io.ReadSeeker); ok {
		http.ServeContent(w, r, vars["path"], obj.LastModified, rs)
		return
	}

	w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	if _, err := io.Copy(w, obj); err != nil {
		logger.Error("Error serving file", logger.String("path", vars["path"]), logger.ErrorField(err))
	}
}
