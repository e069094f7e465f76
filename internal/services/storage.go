package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"

	"jobbuddy/career-assistant/internal/config"
)

// StoredFile describes an uploaded file after it was persisted.
type StoredFile struct {
	Key         string
	Path        string
	ContentType string
	Size        int64
}

type StorageService interface {
	EnsureReady(ctx context.Context) error
	SaveFile(ctx context.Context, file *multipart.FileHeader, fileType string) (*StoredFile, error)
	// Fetch returns a local path for key. cleanup must be called once the
	// caller is done with the file.
	Fetch(ctx context.Context, key string) (path string, cleanup func(), err error)
	DeleteFile(ctx context.Context, key string) error
	Driver() string
}

// NewStorageFromConfig builds the storage driver selected by cfg.Driver.
func NewStorageFromConfig(ctx context.Context, cfg config.StorageConfig, allowedExt []string) (StorageService, error) {
	switch cfg.Driver {
	case config.StorageDriverS3:
		return NewS3Storage(ctx, cfg.S3, allowedExt)
	case config.StorageDriverLocal, "":
		return NewStorageService(cfg.UploadPath, allowedExt), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

type storageService struct {
	uploadPath string
	allowedExt []string
}

func NewStorageService(uploadPath string, allowedExt []string) StorageService {
	return &storageService{
		uploadPath: uploadPath,
		allowedExt: allowedExt,
	}
}

func (s *storageService) Driver() string {
	return config.StorageDriverLocal
}

func (s *storageService) EnsureReady(_ context.Context) error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	return nil
}

func (s *storageService) SaveFile(_ context.Context, file *multipart.FileHeader, fileType string) (*StoredFile, error) {
	ext, err := checkExtension(file.Filename, s.allowedExt)
	if err != nil {
		return nil, err
	}

	uniqueFilename := objectKey(fileType, ext)
	filePath := filepath.Join(s.uploadPath, uniqueFilename)

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	written, err := writeUpload(filePath, src)
	if err != nil {
		return nil, err
	}

	return &StoredFile{
		Key:         uniqueFilename,
		Path:        filePath,
		ContentType: uploadContentType(ext, file.Header.Get("Content-Type")),
		Size:        written,
	}, nil
}

func (s *storageService) Fetch(_ context.Context, key string) (string, func(), error) {
	path := filepath.Join(s.uploadPath, filepath.Base(key))
	if _, err := os.Stat(path); err != nil {
		return "", nil, fmt.Errorf("file %s is not available: %w", key, err)
	}
	return path, func() {}, nil
}

func (s *storageService) DeleteFile(_ context.Context, key string) error {
	if err := os.Remove(filepath.Join(s.uploadPath, filepath.Base(key))); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func checkExtension(filename string, allowed []string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" || !slices.Contains(allowed, ext) {
		return "", fmt.Errorf("%w: invalid file extension %q", ErrUnsupportedFormat, ext)
	}
	return ext, nil
}

// writeUpload copies src to path. A partially written file is removed.
func writeUpload(path string, src io.Reader) (int64, error) {
	dst, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create destination file: %w", err)
	}

	written, err := io.Copy(dst, src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return 0, fmt.Errorf("failed to save file: %w", err)
	}
	return written, nil
}

// uploadContentType records the canonical type of an allowed extension
// instead of whatever the client declared.
func uploadContentType(ext, declared string) string {
	if ct, ok := ContentTypeForExtension(ext); ok {
		return ct
	}
	return declared
}

func objectKey(fileType, ext string) string {
	return fmt.Sprintf("%s_%s%s", fileType, uuid.New().String(), ext)
}
