package httpd

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/caliberhq/question-bank/internal/auth"
	"github.com/caliberhq/question-bank/internal/models"
)

func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user := auth.CurrentUser(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	writeSuccess(w, models.UserInfoResponse{
		User:            *user,
		ProfileComplete: user.ProfileComplete(),
	})
}

func (h *Handler) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	actor := auth.CurrentUser(r.Context())
	if actor == nil || !actor.Admin {
		writeError(w, http.StatusForbidden, "admin role required")
		return
	}

	page := getIntQueryParam(r, "page", 1)
	limit := getIntQueryParam(r, "limit", 50)

	users, total, err := h.userService.List(r.Context(), page, limit)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, models.UserListResponse{Users: users, Total: total})
}

func (h *Handler) GetUserByID(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	user, err := h.userService.GetByUserID(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, models.UserInfoResponse{User: *user, ProfileComplete: user.ProfileComplete()})
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateProfileRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), auth.UserID(r.Context()), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, models.UserInfoResponse{User: *user, ProfileComplete: user.ProfileComplete()})
}

func (h *Handler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var req models.UpdatePreferencesRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.userService.UpdatePreferences(r.Context(), auth.UserID(r.Context()), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, models.UserInfoResponse{User: *user, ProfileComplete: user.ProfileComplete()})
}

func (h *Handler) CompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	var req models.OnboardingRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.userService.CompleteOnboarding(r.Context(), auth.UserID(r.Context()), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, models.UserInfoResponse{User: *user, ProfileComplete: user.ProfileComplete()})
}

func (h *Handler) UpdateRoles(w http.ResponseWriter, r *http.Request) {
	targetID := chi.URLParam(r, "user_id")
	if targetID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	var req models.UpdateRolesRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.userService.UpdateRoles(r.Context(), auth.CurrentUser(r.Context()), targetID, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, user)
}
