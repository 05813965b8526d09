package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"simpleink/logger"
)

// LocalStore 把文件保存在 <root>/<bucket>/<name>
type LocalStore struct {
	root string
}

// NewLocalStore creates root and the given bucket directories.
func NewLocalStore(root string, buckets ...string) (*LocalStore, error) {
	for _, b := range buckets {
		if err := os.MkdirAll(filepath.Join(root, b), 0755); err != nil {
			return nil, fmt.Errorf("failed to create upload directory: %w", err)
		}
	}
	logger.Info("Using local upload storage", logger.String("root", root))
	return &LocalStore{root: root}, nil
}

func (s *LocalStore) resolve(bucket, name string) (string, error) {
	bucket, err := CleanBucket(bucket)
	if err != nil {
		return "", err
	}
	name, err = CleanName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, bucket, filepath.FromSlash(name)), nil
}

// Save 先写入临时文件再重命名，读者不会看到写了一半的文件
func (s *LocalStore) Save(_ context.Context, bucket, name string, r io.Reader, _ int64, _ string) error {
	target, err := s.resolve(bucket, name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create bucket directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), target)
}

func (s *LocalStore) Open(_ context.Context, bucket, name string) (*Object, error) {
	target, err := s.resolve(bucket, name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(target)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, ErrNotFound
	}
	return &Object{
		ReadCloser:   f,
		Size:         info.Size(),
		ContentType:  ContentTypeOf(name),
		LastModified: info.ModTime(),
	}, nil
}

func (s *LocalStore) Remove(_ context.Context, bucket, name string) error {
	target, err := s.resolve(bucket, name)
	if err != nil {
		return err
	}
	if err := os.Remove(target); errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	} else if err != nil {
		return err
	}
	return nil
}

func (s *LocalStore) List(_ context.Context, bucket string) ([]ObjectInfo, *BucketStats, error) {
	bucket, err := CleanBucket(bucket)
	if err != nil {
		return nil, nil, err
	}
	dir := filepath.Join(s.root, bucket)
	stats := &BucketStats{}
	var objects []ObjectInfo

	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(dir, p)
		obj := ObjectInfo{
			Key:          filepath.ToSlash(rel),
			Size:         info.Size(),
			LastModified: info.ModTime(),
			ContentType:  ContentTypeOf(rel),
		}
		addToStats(stats, obj)
		objects = append(objects, obj)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return objects, stats, nil
}
