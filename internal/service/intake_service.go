package service

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/caliberhq/question-bank/internal/config"
	"github.com/caliberhq/question-bank/internal/models"
	"github.com/caliberhq/question-bank/internal/repository"
	"github.com/caliberhq/question-bank/internal/service/intake"
	"github.com/caliberhq/question-bank/internal/service/integration"
	"github.com/caliberhq/question-bank/internal/service/storage"
)

// IntakeService runs the PDF upload pipeline: stash the file in object
// storage, acknowledge the upload immediately, and extract draft questions
// in the background.
type IntakeService interface {
	// QueuePDF validates and stores the upload, then schedules extraction.
	// The returned response reflects acceptance, not processing success.
	QueuePDF(ctx context.Context, userID, filename string, content []byte) (*models.UploadResponse, error)
	// ProcessPDF runs extraction and draft persistence synchronously. It is
	// exported so the queue worker and tests share one code path.
	ProcessPDF(ctx context.Context, userID, storagePath string, content []byte) (int, error)
}

type intakeService struct {
	questionRepo repository.QuestionRepository
	storage      storage.ObjectStorage
	extractor    intake.TextExtractor
	generator    intake.QuestionGenerator
	publisher    integration.EventPublisher
	cfg          config.IntakeConfig
	logger       zerolog.Logger
}

func NewIntakeService(
	questionRepo repository.QuestionRepository,
	store storage.ObjectStorage,
	extractor intake.TextExtractor,
	generator intake.QuestionGenerator,
	publisher integration.EventPublisher,
	cfg config.IntakeConfig,
	logger zerolog.Logger,
) IntakeService {
	return &intakeService{
		questionRepo: questionRepo,
		storage:      store,
		extractor:    extractor,
		generator:    generator,
		publisher:    publisher,
		cfg:          cfg,
		logger:       logger,
	}
}

func (s *intakeService) QueuePDF(ctx context.Context, userID, filename string, content []byte) (*models.UploadResponse, error) {
	filename = path.Base(strings.TrimSpace(filename))
	if filename == "" || filename == "." {
		return nil, fmt.Errorf("%w: filename is required", ErrValidation)
	}
	if !strings.EqualFold(path.Ext(filename), ".pdf") {
		return nil, fmt.Errorf("%w: only PDF files are accepted", ErrValidation)
	}
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: file is empty", ErrValidation)
	}
	if s.cfg.MaxPDFSize > 0 && int64(len(content)) > s.cfg.MaxPDFSize {
		return nil, fmt.Errorf("%w: file exceeds the %d byte limit", ErrValidation, s.cfg.MaxPDFSize)
	}

	storagePath := fmt.Sprintf("%s/%d.pdf", userID, time.Now().UnixNano())
	if err := s.storage.Upload(ctx, storagePath, bytes.NewReader(content), int64(len(content)), "application/pdf"); err != nil {
		return nil, fmt.Errorf("failed to store PDF: %w", err)
	}

	// Processing continues after the HTTP request finishes, so the worker
	// gets its own context bounded by the configured timeout.
	go func() {
		timeout := s.cfg.ProcessTimeout
		if timeout <= 0 {
			timeout = 2 * time.Minute
		}
		workerCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if _, err := s.ProcessPDF(workerCtx, userID, storagePath, content); err != nil {
			s.logger.Error().Err(err).
				Str("storage_path", storagePath).
				Str("user_id", userID).
				Msg("PDF processing failed")
		}
	}()

	s.logger.Info().
		Str("filename", filename).
		Str("storage_path", storagePath).
		Str("user_id", userID).
		Msg("PDF queued for processing")

	return &models.UploadResponse{
		Status:   "queued",
		Filename: filename,
		Message:  "PDF uploaded, questions are being extracted",
	}, nil
}

func (s *intakeService) ProcessPDF(ctx context.Context, userID, storagePath string, content []byte) (int, error) {
	text, err := s.extractor.Extract(content)
	if err != nil {
		return 0, fmt.Errorf("failed to extract text: %w", err)
	}

	drafts := s.generator.Generate(text, s.cfg.MaxQuestions)
	if len(drafts) == 0 {
		s.logger.Warn().
			Str("storage_path", storagePath).
			Msg("No questions extracted from PDF")
		return 0, nil
	}

	sourcePDF := storagePath
	questionIDs := make([]int64, 0, len(drafts))
	for _, draft := range drafts {
		question := &models.Question{
			Title:      draft.Title,
			Text:       draft.Text,
			Tags:       draft.Tags,
			Keywords:   draft.Keywords,
			SourcePDF:  &sourcePDF,
			UserID:     userID,
			IsVerified: false,
		}
		if err := s.questionRepo.Create(ctx, question); err != nil {
			return len(questionIDs), fmt.Errorf("failed to persist draft question: %w", err)
		}
		questionIDs = append(questionIDs, question.ID)
	}

	// The event is advisory; drafts are already durable so a broker outage
	// only costs the notification.
	if s.publisher != nil {
		event := &models.QuestionDraftsCreatedEvent{
			SourcePDF:   storagePath,
			UserID:      userID,
			QuestionIDs: questionIDs,
			Count:       len(questionIDs),
			Timestamp:   time.Now().Unix(),
		}
		if err := s.publisher.PublishDraftsCreated(ctx, event); err != nil {
			s.logger.Warn().Err(err).
				Str("storage_path", storagePath).
				Msg("Failed to publish drafts created event")
		}
	}

	s.logger.Info().
		Str("storage_path", storagePath).
		Str("user_id", userID).
		Int("count", len(questionIDs)).
		Msg("Draft questions created from PDF")

	return len(questionIDs), nil
}
