// Package storage публикует снимки статистики в объектное хранилище.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	log "github.com/sirupsen/logrus"
)

// FileStorage - объектное хранилище снимков статистики.
type FileStorage interface {
	UploadFile(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) error
	DownloadFile(ctx context.Context, objectKey string) (io.ReadCloser, error)
}

// MinioClient реализует FileStorage для MinIO и S3-совместимых хранилищ.
type MinioClient struct {
	client     *minio.Client
	bucketName string
}

// MinioConfig - параметры подключения к MinIO или S3.
type MinioConfig struct {
	Endpoint        string // host:port, пустая строка отключает хранилище
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	BucketName      string // Бакет для снимков статистики
	Region          string // Не обязателен для MinIO
}

// Enabled сообщает, задан ли адрес хранилища.
func (c MinioConfig) Enabled() bool {
	return c.Endpoint != ""
}

// ErrObjectNotFound возвращается, если объекта с таким ключом нет.
var ErrObjectNotFound = errors.New("объект не найден в хранилище")

// NewMinioClient создает клиент MinIO и при необходимости создает бакет.
func NewMinioClient(ctx context.Context, cfg MinioConfig) (*MinioClient, error) {
	log.Infof("[Minio] Инициализация клиента для эндпоинта %s...", cfg.Endpoint)

	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации клиента MinIO: %w", err)
	}

	exists, err := minioClient.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("ошибка проверки бакета %q: %w", cfg.BucketName, err)
	}
	if !exists {
		log.Infof("[Minio] Бакет '%s' не найден, создаем...", cfg.BucketName)
		err = minioClient.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{Region: cfg.Region})
		if err != nil {
			return nil, fmt.Errorf("ошибка создания бакета %q: %w", cfg.BucketName, err)
		}
	}

	log.Infof("[Minio] Клиент готов, бакет '%s'", cfg.BucketName)
	return &MinioClient{
		client:     minioClient,
		bucketName: cfg.BucketName,
	}, nil
}

// UploadFile загружает объект в бакет.
func (c *MinioClient) UploadFile(
	ctx context.Context,
	objectKey string,
	reader io.Reader,
	size int64,
	contentType string,
) error {
	opts := minio.PutObjectOptions{
		ContentType: contentType,
	}

	uploadInfo, err := c.client.PutObject(ctx, c.bucketName, objectKey, reader, size, opts)
	if err != nil {
		log.Errorf("[Minio] Ошибка загрузки '%s': %v", objectKey, err)
		return fmt.Errorf("ошибка загрузки объекта %s: %w", objectKey, err)
	}

	log.WithFields(log.Fields{
		"key":  objectKey,
		"size": uploadInfo.Size,
		"etag": uploadInfo.ETag,
	}).Debug("[Minio] Объект загружен")
	return nil
}

// DownloadFile открывает объект на чтение.
// Вызывающий закрывает возвращенный io.ReadCloser.
func (c *MinioClient) DownloadFile(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	object, err := c.client.GetObject(ctx, c.bucketName, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения объекта %s: %w", objectKey, err)
	}

	// GetObject ленивый: отсутствие объекта обнаруживается только при первом обращении.
	if _, err = object.Stat(); err != nil {
		_ = object.Close()
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound {
			log.Warnf("[Minio] Объект '%s' не найден в бакете '%s'", objectKey, c.bucketName)
			return nil, ErrObjectNotFound
		}
		log.Errorf("[Minio] Ошибка получения '%s': %v", objectKey, err)
		return nil, fmt.Errorf("ошибка чтения объекта %s: %w", objectKey, err)
	}

	return object, nil
}
