package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"simpleink/config"

	"github.com/gosimple/slug"
)

// ErrNotFound 表示对象不存在
var ErrNotFound = errors.New("arquivo não encontrado")

// ErrInvalidKey is returned for bucket or object names that escape their directory.
var ErrInvalidKey = errors.New("nome de arquivo inválido")

// Object 是一个已打开、可流式读取的文件
type Object struct {
	io.ReadCloser
	Size         int64
	ContentType  string
	LastModified time.Time
}

// ObjectInfo 文件信息
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
	ContentType  string
}

// BucketStats 存储桶统计信息
type BucketStats struct {
	TotalObjects int64
	TotalSize    int64
	LastModified time.Time
}

// Store 是上传文件的后端存储
type Store interface {
	Save(ctx context.Context, bucket, name string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, bucket, name string) (*Object, error)
	Remove(ctx context.Context, bucket, name string) error
	List(ctx context.Context, bucket string) ([]ObjectInfo, *BucketStats, error)
}

// New 根据 STORAGE_BACKEND 选择存储后端
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StorageBackend {
	case "local", "":
		return NewLocalStore(cfg.UploadDir, cfg.DefaultBucket, "audios")
	case "minio":
		return NewMinioStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported STORAGE_BACKEND %q", cfg.StorageBackend)
	}
}

var bucketPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// CleanBucket validates a bucket name: one path segment of safe characters.
func CleanBucket(bucket string) (string, error) {
	if !bucketPattern.MatchString(bucket) {
		return "", ErrInvalidKey
	}
	return bucket, nil
}

// CleanName normalizes an object name inside a bucket. Nested names are kept,
// but ".." can never climb out of the bucket.
func CleanName(name string) (string, error) {
	name = strings.ReplaceAll(name, "\\", "/")
	cleaned := strings.TrimPrefix(path.Clean("/"+name), "/")
	if cleaned == "" || cleaned == "." {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}

// ObjectName 生成上传文件名：调用方给出 path 时原样使用，
// 否则为 "<毫秒时间戳>-<slug 后的原始文件名>"
func ObjectName(customPath, originalName string, now time.Time) (string, error) {
	if strings.TrimSpace(customPath) != "" {
		return CleanName(customPath)
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	stem := slug.Make(strings.TrimSuffix(filepath.Base(originalName), filepath.Ext(originalName)))
	if stem == "" {
		stem = "arquivo"
	}
	return fmt.Sprintf("%d-%s%s", now.UnixMilli(), stem, ext), nil
}

// PublicPath is the API path an uploaded object is served from.
func PublicPath(bucket, name string) string {
	return "/api/files/" + bucket + "/" + name
}

// ContentTypeOf guesses a MIME type from the file extension.
func ContentTypeOf(name string) string {
	ext := strings.ToLower(path.Ext(name))
	switch ext {
	case ".mp3":
		return "audio/mpeg"
	case ".flac":
		return "audio/flac"
	case ".wav":
		return "audio/wav"
	case ".m4a":
		return "audio/mp4"
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// FormatSize 格式化文件大小
func FormatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

func addToStats(stats *BucketStats, info ObjectInfo) {
	stats.TotalObjects++
	stats.TotalSize += info.Size
	if info.LastModified.After(stats.LastModified) {
		stats.LastModified = info.LastModified
	}
}
