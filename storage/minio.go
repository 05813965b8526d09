package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"simpleink/config"
	"simpleink/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore 把所有逻辑 bucket 放进同一个 MinIO 存储桶，逻辑 bucket 作为对象前缀
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore 初始化 MinIO 客户端，存储桶不存在时创建
func NewMinioStore(ctx context.Context, cfg *config.Config) (*MinioStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("创建 MinIO 客户端失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("检查存储桶失败: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{Region: cfg.MinioRegion}); err != nil {
			return nil, fmt.Errorf("创建存储桶失败: %w", err)
		}
		logger.Info("Created MinIO bucket", logger.String("bucket", cfg.MinioBucket))
	}

	logger.Info("MinIO storage ready",
		logger.String("endpoint", cfg.MinioEndpoint),
		logger.String("bucket", cfg.MinioBucket),
	)
	return &MinioStore{client: client, bucket: cfg.MinioBucket}, nil
}

func objectKey(bucket, name string) (string, error) {
	bucket, err := CleanBucket(bucket)
	if err != nil {
		return "", err
	}
	name, err = CleanName(name)
	if err != nil {
		return "", err
	}
	return bucket + "/" + name, nil
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}

func (s *MinioStore) Save(ctx context.Context, bucket, name string, r io.Reader, size int64, contentType string) error {
	key, err := objectKey(bucket, name)
	if err != nil {
		return err
	}
	if contentType == "" {
		contentType = ContentTypeOf(name)
	}
	_, err = s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("上传文件失败: %w", err)
	}
	return nil
}

func (s *MinioStore) Open(ctx context.Context, bucket, name string) (*Object, error) {
	key, err := objectKey(bucket, name)
	if err != nil {
		return nil, err
	}
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	// GetObject is lazy; Stat surfaces a missing key
	info, err := obj.Stat()
	if err != nil {
		obj.Close()
		if isNoSuchKey(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	contentType := info.ContentType
	if contentType == "" {
		contentType = ContentTypeOf(name)
	}
	return &Object{
		ReadCloser:   obj,
		Size:         info.Size,
		ContentType:  contentType,
		LastModified: info.LastModified,
	}, nil
}

func (s *MinioStore) Remove(ctx context.Context, bucket, name string) error {
	key, err := objectKey(bucket, name)
	if err != nil {
		return err
	}
	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return ErrNotFound
		}
		return err
	}
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}

// List 列出逻辑 bucket 下的所有对象
func (s *MinioStore) List(ctx context.Context, bucket string) ([]ObjectInfo, *BucketStats, error) {
	bucket, err := CleanBucket(bucket)
	if err != nil {
		return nil, nil, err
	}
	prefix := bucket + "/"
	stats := &BucketStats{}
	var objects []ObjectInfo

	for object := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if object.Err != nil {
			return nil, nil, fmt.Errorf("列出对象时出错: %w", object.Err)
		}
		info := ObjectInfo{
			Key:          object.Key[len(prefix):],
			Size:         object.Size,
			LastModified: object.LastModified,
			ContentType:  object.ContentType,
		}
		addToStats(stats, info)
		objects = append(objects, info)
	}
	return objects, stats, nil
}
