package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"jobbuddy/career-assistant/internal/config"
)

// s3Storage keeps uploads in an S3 compatible bucket (AWS, R2, MinIO).
type s3Storage struct {
	client     *s3.Client
	bucket     string
	allowedExt []string
}

func NewS3Storage(ctx context.Context, cfg config.S3Config, allowedExt []string) (StorageService, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &s3Storage{
		client:     client,
		bucket:     cfg.Bucket,
		allowedExt: allowedExt,
	}, nil
}

func (s *s3Storage) Driver() string {
	return config.StorageDriverS3
}

func (s *s3Storage) EnsureReady(ctx context.Context) error {
	if _, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		return fmt.Errorf("bucket %s is not reachable: %w", s.bucket, err)
	}
	return nil
}

func (s *s3Storage) SaveFile(ctx context.Context, file *multipart.FileHeader, fileType string) (*StoredFile, error) {
	ext, err := checkExtension(file.Filename, s.allowedExt)
	if err != nil {
		return nil, err
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	key := objectKey(fileType, ext)
	contentType := uploadContentType(ext, file.Header.Get("Content-Type"))

	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          src,
		ContentLength: aws.Int64(file.Size),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", key, err)
	}

	return &StoredFile{
		Key:         key,
		Path:        fmt.Sprintf("s3://%s/%s", s.bucket, key),
		ContentType: contentType,
		Size:        file.Size,
	}, nil
}

// Fetch downloads the object into a temporary file that keeps the original
// extension so content type detection still works.
func (s *s3Storage) Fetch(ctx context.Context, key string) (string, func(), error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to get object: %w", err)
	}
	defer out.Body.Close()

	tmp, err := os.CreateTemp("", "resume-*"+filepath.Ext(key))
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp file: %w", err)
	}

	cleanup := func() {
		if err := os.Remove(tmp.Name()); err != nil && !os.IsNotExist(err) {
			log.Printf("⚠️ Failed to remove temp file %s: %v", tmp.Name(), err)
		}
	}

	if _, err := io.Copy(tmp, out.Body); err != nil {
		tmp.Close()
		cleanup()
		return "", nil, fmt.Errorf("failed to read object body: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to write temp file: %w", err)
	}

	return tmp.Name(), cleanup, nil
}

func (s *s3Storage) DeleteFile(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}
