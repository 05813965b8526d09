package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
)

// UploadResult is the data of a successful upload.
type UploadResult struct {
	Path   string `json:"path"`
	URL    string `json:"url"`
	Bucket string `json:"bucket"`
	Size   int64  `json:"size"`
}

// Storage groups the file operations.
type Storage struct {
	client *Client
}

// Bucket addresses one bucket.
type Bucket struct {
	client *Client
	name   string
}

func (c *Client) Storage() *Storage {
	return &Storage{client: c}
}

func (s *Storage) From(bucket string) *Bucket {
	return &Bucket{client: s.client, name: bucket}
}

// Upload stores r under path in the bucket. An empty path lets the server name
// the file. The returned URL already carries the bucket and should be saved as is.
func (b *Bucket) Upload(ctx context.Context, path, filename string, r io.Reader) (*UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("bucket", b.name); err != nil {
		return nil, err
	}
	if path != "" {
		if err := mw.WriteField("path", path); err != nil {
			return nil, err
		}
	}
	if filename == "" {
		filename = path
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(fw, r); err != nil {
		return nil, fmt.Errorf("读取上传内容失败: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	resp, err := b.client.do(ctx, http.MethodPost, "/upload", mw.FormDataContentType(), buf.Bytes())
	if err != nil {
		return nil, err
	}
	var result UploadResult
	if err := resp.Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetPublicURL returns the absolute URL the server serves path from.
func (b *Bucket) GetPublicURL(path string) string {
	segments := strings.Split(strings.TrimPrefix(path, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return b.client.url("/files/" + url.PathEscape(b.name) + "/" + strings.Join(segments, "/"))
}
