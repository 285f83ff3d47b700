package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/caliberhq/question-bank/internal/models"
	"github.com/caliberhq/question-bank/internal/repository"
	"github.com/caliberhq/question-bank/internal/service/storage"
)

type QuestionService interface {
	Create(ctx context.Context, userID string, req *models.CreateQuestionRequest) (*models.Question, error)
	GetByID(ctx context.Context, id int64) (*models.Question, error)
	GetByIDs(ctx context.Context, ids []int64) ([]models.Question, error)
	ListByUser(ctx context.Context, userID string, filter repository.QuestionFilter) ([]models.Question, int, error)
	ListAll(ctx context.Context, page, limit int) ([]models.Question, int, error)
	Update(ctx context.Context, userID string, id int64, req *models.UpdateQuestionRequest) (*models.Question, error)
	Delete(ctx context.Context, userID string, id int64) error
}

type questionService struct {
	questionRepo repository.QuestionRepository
	storage      storage.ObjectStorage
	logger       zerolog.Logger
}

func NewQuestionService(questionRepo repository.QuestionRepository, store storage.ObjectStorage, logger zerolog.Logger) QuestionService {
	return &questionService{
		questionRepo: questionRepo,
		storage:      store,
		logger:       logger,
	}
}

func (s *questionService) Create(ctx context.Context, userID string, req *models.CreateQuestionRequest) (*models.Question, error) {
	answerChoices := req.AnswerChoices
	if answerChoices == "" {
		answerChoices = "[]"
	}

	question := &models.Question{
		Title:          req.Title,
		Text:           req.Text,
		Tags:           req.Tags,
		Keywords:       req.Keywords,
		School:         req.School,
		Course:         req.Course,
		CourseType:     req.CourseType,
		QuestionType:   req.QuestionType,
		BloomsTaxonomy: req.BloomsTaxonomy,
		AnswerChoices:  answerChoices,
		CorrectAnswer:  req.CorrectAnswer,
		PDFURL:         req.PDFURL,
		SourcePDF:      req.SourcePDF,
		ImageURL:       req.ImageURL,
		UserID:         userID,
		// Manually authored questions are trusted; only pipeline drafts
		// carrying a source PDF start unverified.
		IsVerified: req.SourcePDF == nil,
	}

	if err := s.questionRepo.Create(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	s.logger.Info().
		Int64("question_id", question.ID).
		Str("user_id", userID).
		Msg("Question created")

	return question, nil
}

func (s *questionService) GetByID(ctx context.Context, id int64) (*models.Question, error) {
	question, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	if question == nil {
		return nil, ErrQuestionNotFound
	}

	return question, nil
}

func (s *questionService) GetByIDs(ctx context.Context, ids []int64) ([]models.Question, error) {
	questions, err := s.questionRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}

	return questions, nil
}

func (s *questionService) ListByUser(ctx context.Context, userID string, filter repository.QuestionFilter) ([]models.Question, int, error) {
	if filter.Limit < 1 || filter.Limit > 500 {
		filter.Limit = 100
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	questions, total, err := s.questionRepo.GetByUser(ctx, userID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list questions: %w", err)
	}

	return questions, total, nil
}

// ListAll serves the shared question pool. Any authenticated user may
// browse it; only mutation is owner-scoped.
func (s *questionService) ListAll(ctx context.Context, page, limit int) ([]models.Question, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}

	questions, total, err := s.questionRepo.GetAll(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list all questions: %w", err)
	}

	return questions, total, nil
}

func (s *questionService) Update(ctx context.Context, userID string, id int64, req *models.UpdateQuestionRequest) (*models.Question, error) {
	question, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if question.UserID != userID {
		return nil, ErrQuestionNotFound
	}

	if req.Title != nil {
		question.Title = *req.Title
	}
	if req.Text != nil {
		question.Text = *req.Text
	}
	if req.Tags != nil {
		question.Tags = *req.Tags
	}
	if req.Keywords != nil {
		question.Keywords = *req.Keywords
	}
	if req.School != nil {
		question.School = *req.School
	}
	if req.Course != nil {
		question.Course = *req.Course
	}
	if req.CourseType != nil {
		question.CourseType = *req.CourseType
	}
	if req.QuestionType != nil {
		question.QuestionType = *req.QuestionType
	}
	if req.BloomsTaxonomy != nil {
		question.BloomsTaxonomy = *req.BloomsTaxonomy
	}
	if req.AnswerChoices != nil {
		question.AnswerChoices = *req.AnswerChoices
	}
	if req.CorrectAnswer != nil {
		question.CorrectAnswer = *req.CorrectAnswer
	}
	if req.PDFURL != nil {
		question.PDFURL = req.PDFURL
	}
	if req.SourcePDF != nil {
		question.SourcePDF = req.SourcePDF
	}
	if req.ImageURL != nil {
		question.ImageURL = req.ImageURL
	}
	if req.IsVerified != nil {
		question.IsVerified = *req.IsVerified
	}

	if err := s.questionRepo.Update(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}

	return question, nil
}

func (s *questionService) Delete(ctx context.Context, userID string, id int64) error {
	question, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get question: %w", err)
	}
	if question == nil || question.UserID != userID {
		return ErrQuestionNotFound
	}

	deleted, err := s.questionRepo.Delete(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	if !deleted {
		return ErrQuestionNotFound
	}

	// Attached images are owned by exactly one question, so clean up the
	// object too. Failures here only leave an orphan in the bucket.
	if question.ImageURL != nil && *question.ImageURL != "" && s.storage != nil {
		if err := s.storage.Delete(ctx, *question.ImageURL); err != nil {
			s.logger.Warn().Err(err).
				Int64("question_id", id).
				Str("image", *question.ImageURL).
				Msg("Failed to delete question image")
		}
	}

	s.logger.Info().
		Int64("question_id", id).
		Str("user_id", userID).
		Msg("Question deleted")

	return nil
}
