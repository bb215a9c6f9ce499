package core

import (
	"context"
	"fmt"
	"io"

	"estate_search/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Client чтение объектов из бакета.
type Client interface {
	GetObject(ctx context.Context, objectName string) (io.ReadCloser, error)
	BucketName() string
}

type minioClient struct {
	mc     *minio.Client
	bucket string
}

// NewMinioClient подключается к MinIO и проверяет, что бакет существует.
func NewMinioClient(ctx context.Context, cfg config.MinioConfig) (Client, error) {
	const op = "minio.NewMinioClient"

	mc, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioRootUser, cfg.MinioRootPassword, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := mc.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return nil, fmt.Errorf("%s: bucket %q does not exist", op, cfg.BucketName)
	}

	return &minioClient{mc: mc, bucket: cfg.BucketName}, nil
}

func (c *minioClient) BucketName() string {
	return c.bucket
}

// GetObject открывает объект на чтение. Ошибка "нет такого ключа" возвращается сразу,
// а не при первом Read.
func (c *minioClient) GetObject(ctx context.Context, objectName string) (io.ReadCloser, error) {
	const op = "minio.GetObject"

	obj, err := c.mc.GetObject(ctx, c.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, fmt.Errorf("%s: %s/%s: %w", op, c.bucket, objectName, err)
	}
	return obj, nil
}
