package httpd

import (
	"net/http"

	"github.com/caliberhq/question-bank/internal/auth"
	"github.com/caliberhq/question-bank/internal/models"
)

func (h *Handler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAssignmentRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	assignment, err := h.assignmentService.Create(r.Context(), auth.CurrentUser(r.Context()), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, assignment)
}

func (h *Handler) GetAssignmentByID(w http.ResponseWriter, r *http.Request) {
	id, err := getIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid assignment id")
		return
	}

	assignment, err := h.assignmentService.Get(r.Context(), auth.CurrentUser(r.Context()), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, assignment)
}

func (h *Handler) UpdateAssignment(w http.ResponseWriter, r *http.Request) {
	id, err := getIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid assignment id")
		return
	}

	var req models.UpdateAssignmentRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	assignment, err := h.assignmentService.Update(r.Context(), auth.CurrentUser(r.Context()), id, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, assignment)
}

func (h *Handler) DeleteAssignment(w http.ResponseWriter, r *http.Request) {
	id, err := getIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid assignment id")
		return
	}

	if err := h.assignmentService.Delete(r.Context(), auth.CurrentUser(r.Context()), id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]string{"status": "deleted"})
}

func (h *Handler) ReleaseAssignment(w http.ResponseWriter, r *http.Request) {
	id, err := getIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid assignment id")
		return
	}

	assignment, err := h.assignmentService.ReleaseNow(r.Context(), auth.CurrentUser(r.Context()), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, assignment)
}
