package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/johnquangdev/interview-assistant/pkg/config"
)

// MinIOClient archives interview artifacts in an S3 compatible bucket
type MinIOClient struct {
	client *minio.Client
	bucket string
}

// ReportKey is the object key of a finalized report
func ReportKey(tenantID, sessionID string) string {
	return fmt.Sprintf("reports/%s/%s.json", tenantID, sessionID)
}

// TranscriptKey is the object key of a plain-text transcript
func TranscriptKey(tenantID, sessionID string) string {
	return fmt.Sprintf("transcripts/%s/%s.txt", tenantID, sessionID)
}

// RecordingKey is the object key an interview audio recording is written to
func RecordingKey(tenantID, sessionID string) string {
	return fmt.Sprintf("recordings/%s/%s.ogg", tenantID, sessionID)
}

// NewMinIOClient creates a new MinIO client and makes sure the bucket exists
func NewMinIOClient(ctx context.Context, cfg *config.StorageConfig) (*MinIOClient, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	client := &MinIOClient{
		client: minioClient,
		bucket: cfg.BucketName,
	}

	if err := client.ensureBucket(ctx, cfg.Region); err != nil {
		return nil, fmt.Errorf("failed to initialize bucket: %w", err)
	}

	return client, nil
}

// ensureBucket creates the bucket when missing. Objects stay private; readers get presigned URLs.
func (m *MinIOClient) ensureBucket(ctx context.Context, region string) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// UploadFile uploads an object
func (m *MinIOClient) UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", objectName, err)
	}
	return nil
}

// UploadText uploads text content
func (m *MinIOClient) UploadText(ctx context.Context, objectName string, content string) error {
	return m.UploadFile(ctx, objectName, bytes.NewReader([]byte(content)), int64(len(content)), "text/plain; charset=utf-8")
}

// UploadJSON marshals v with indentation and uploads it
func (m *MinIOClient) UploadJSON(ctx context.Context, objectName string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", objectName, err)
	}
	return m.UploadFile(ctx, objectName, bytes.NewReader(data), int64(len(data)), "application/json")
}

// GetFileURL returns a presigned GET URL for an object
func (m *MinIOClient) GetFileURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, m.bucket, objectName, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return u.String(), nil
}

// Exists reports whether the object is present in the bucket
func (m *MinIOClient) Exists(ctx context.Context, objectName string) (bool, error) {
	_, err := m.client.StatObject(ctx, m.bucket, objectName, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat %s: %w", objectName, err)
}
