package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/caliberhq/question-bank/internal/config"
	"github.com/caliberhq/question-bank/internal/models"
	"github.com/caliberhq/question-bank/internal/service/storage"
)

// Images attached to questions. Keys go under the owner's user ID so cleanup
// stays scoped.
var imageExtByMIME = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
}

type FileService interface {
	UploadImage(ctx context.Context, userID, contentType string, content []byte) (*models.ImageUploadResponse, error)
	SignedURL(ctx context.Context, objectPath string) (*models.SignedURLResponse, error)
	DeleteObject(ctx context.Context, objectPath string) error
}

type fileService struct {
	storage storage.ObjectStorage
	cfg     config.IntakeConfig
	logger  zerolog.Logger
}

func NewFileService(store storage.ObjectStorage, cfg config.IntakeConfig, logger zerolog.Logger) FileService {
	return &fileService{
		storage: store,
		cfg:     cfg,
		logger:  logger,
	}
}

func (s *fileService) UploadImage(ctx context.Context, userID, contentType string, content []byte) (*models.ImageUploadResponse, error) {
	ext, ok := imageExtByMIME[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported image type %q", ErrValidation, contentType)
	}
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: file is empty", ErrValidation)
	}
	if s.cfg.MaxImageSize > 0 && int64(len(content)) > s.cfg.MaxImageSize {
		return nil, fmt.Errorf("%w: image exceeds the %d byte limit", ErrValidation, s.cfg.MaxImageSize)
	}

	key := fmt.Sprintf("%s/%s%s", userID, uuid.New().String(), ext)
	if err := s.storage.Upload(ctx, key, bytes.NewReader(content), int64(len(content)), contentType); err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	s.logger.Info().
		Str("key", key).
		Str("user_id", userID).
		Int("size", len(content)).
		Msg("Image uploaded")

	return &models.ImageUploadResponse{Path: key}, nil
}

func (s *fileService) SignedURL(ctx context.Context, objectPath string) (*models.SignedURLResponse, error) {
	objectPath = strings.TrimSpace(objectPath)
	if objectPath == "" {
		return nil, fmt.Errorf("%w: object path is required", ErrValidation)
	}

	ttl := s.cfg.SignedURLTTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	url, err := s.storage.SignedURL(ctx, objectPath, ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to sign URL: %w", err)
	}

	return &models.SignedURLResponse{URL: url}, nil
}

func (s *fileService) DeleteObject(ctx context.Context, objectPath string) error {
	objectPath = strings.TrimSpace(objectPath)
	if objectPath == "" {
		return fmt.Errorf("%w: object path is required", ErrValidation)
	}

	if err := s.storage.Delete(ctx, objectPath); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}

	return nil
}
