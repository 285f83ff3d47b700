package httpd

import (
	"io"
	"net/http"

	"github.com/caliberhq/question-bank/internal/auth"
)

const maxUploadFormMemory = 32 << 20 // 32MB

func (h *Handler) UploadPDF(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadFormMemory); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read file")
		return
	}

	response, err := h.intakeService.QueuePDF(r.Context(), auth.UserID(r.Context()), header.Filename, content)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, response)
}

func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadFormMemory); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read file")
		return
	}

	contentType := header.Header.Get("Content-Type")
	response, err := h.fileService.UploadImage(r.Context(), auth.UserID(r.Context()), contentType, content)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, response)
}

func (h *Handler) GetSignedURL(w http.ResponseWriter, r *http.Request) {
	response, err := h.fileService.SignedURL(r.Context(), r.URL.Query().Get("path"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, response)
}
