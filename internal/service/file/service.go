package file

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-workforce/internal/pkg/storage"
	"github.com/google/uuid"
)

type StoredFile struct {
	ID          string
	Path        string
	ContentType string
}

type FileService interface {
	// UploadMedicalDocument stores a sick-leave supporting document
	UploadMedicalDocument(ctx context.Context, staffID string, file io.Reader, filename string) (StoredFile, error)

	// Generic operations
	DeleteFile(ctx context.Context, path string) error
	GetFileURL(ctx context.Context, path string, expiry time.Duration) (string, error)
}

type fileServiceImpl struct {
	storage storage.FileStorage
}

func NewFileService(storage storage.FileStorage) FileService {
	return &fileServiceImpl{
		storage: storage,
	}
}

var medicalContentTypes = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// UploadMedicalDocument implements FileService.
func (s *fileServiceImpl) UploadMedicalDocument(ctx context.Context, staffID string, file io.Reader, filename string) (StoredFile, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	contentType, ok := medicalContentTypes[ext]
	if !ok {
		return StoredFile{}, fmt.Errorf("invalid file type: only pdf, jpg, jpeg, png allowed")
	}

	// Generate unique filename
	uniqueID := uuid.New().String()
	key := path.Join("medical", staffID, uniqueID+ext)

	uploadedPath, err := s.storage.Save(ctx, file, key, contentType)
	if err != nil {
		return StoredFile{}, fmt.Errorf("failed to upload medical document: %w", err)
	}

	return StoredFile{
		ID:          uniqueID,
		Path:        uploadedPath,
		ContentType: contentType,
	}, nil
}

// DeleteFile deletes a file from storage
func (s *fileServiceImpl) DeleteFile(ctx context.Context, key string) error {
	return s.storage.Remove(ctx, key)
}

// GetFileURL returns the URL for a stored file
func (s *fileServiceImpl) GetFileURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return s.storage.URL(ctx, key, expiry)
}
