package httpd

import (
	"net/http"

	"github.com/caliberhq/question-bank/internal/auth"
	"github.com/caliberhq/question-bank/internal/models"
)

func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request) {
	id, err := getIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid assignment id")
		return
	}

	progress, err := h.progressService.Get(r.Context(), auth.CurrentUser(r.Context()), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, progress)
}

func (h *Handler) SaveProgress(w http.ResponseWriter, r *http.Request) {
	id, err := getIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid assignment id")
		return
	}

	var req models.SaveProgressRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	progress, err := h.progressService.Save(r.Context(), auth.CurrentUser(r.Context()), id, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, progress)
}
