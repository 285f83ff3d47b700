package httpd

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/caliberhq/question-bank/internal/auth"
	"github.com/caliberhq/question-bank/internal/models"
	"github.com/caliberhq/question-bank/internal/repository"
)

func (h *Handler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	var req models.CreateQuestionRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	question, err := h.questionService.Create(r.Context(), auth.UserID(r.Context()), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, question)
}

func (h *Handler) GetMyQuestions(w http.ResponseWriter, r *http.Request) {
	filter := repository.QuestionFilter{
		VerifiedOnly: r.URL.Query().Get("verified_only") == "true",
		Limit:        getIntQueryParam(r, "limit", 100),
		Offset:       getIntQueryParam(r, "offset", 0),
	}
	if sourcePDF := r.URL.Query().Get("source_pdf"); sourcePDF != "" {
		filter.SourcePDF = &sourcePDF
	}

	questions, total, err := h.questionService.ListByUser(r.Context(), auth.UserID(r.Context()), filter)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, models.QuestionListResponse{Questions: questions, Total: total})
}

func (h *Handler) GetAllQuestions(w http.ResponseWriter, r *http.Request) {
	page := getIntQueryParam(r, "page", 1)
	limit := getIntQueryParam(r, "limit", 100)

	questions, total, err := h.questionService.ListAll(r.Context(), page, limit)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, models.QuestionListResponse{Questions: questions, Total: total})
}

// GetQuestionBatch resolves a comma separated ids query into full question
// rows, preserving only ids that exist.
func (h *Handler) GetQuestionBatch(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("ids")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "ids query parameter is required")
		return
	}

	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "ids must be a comma separated list of integers")
			return
		}
		ids = append(ids, id)
	}

	questions, err := h.questionService.GetByIDs(r.Context(), ids)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	if questions == nil {
		questions = []models.Question{}
	}

	writeSuccess(w, models.QuestionListResponse{Questions: questions, Total: len(questions)})
}

func (h *Handler) GetQuestionByID(w http.ResponseWriter, r *http.Request) {
	id, err := getIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid question id")
		return
	}

	question, err := h.questionService.GetByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, question)
}

func (h *Handler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := getIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid question id")
		return
	}

	var req models.UpdateQuestionRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	question, err := h.questionService.Update(r.Context(), auth.UserID(r.Context()), id, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, question)
}

func (h *Handler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := getIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid question id")
		return
	}

	if err := h.questionService.Delete(r.Context(), auth.UserID(r.Context()), id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]string{"status": "deleted"})
}
