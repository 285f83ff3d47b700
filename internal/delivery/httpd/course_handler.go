package httpd

import (
	"net/http"

	"github.com/caliberhq/question-bank/internal/auth"
	"github.com/caliberhq/question-bank/internal/models"
)

func (h *Handler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCourseRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	course, err := h.courseService.Create(r.Context(), auth.CurrentUser(r.Context()), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, course)
}

func (h *Handler) GetMyCourses(w http.ResponseWriter, r *http.Request) {
	page := getIntQueryParam(r, "page", 1)
	limit := getIntQueryParam(r, "limit", 50)

	courses, total, err := h.courseService.List(r.Context(), auth.CurrentUser(r.Context()), page, limit)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, models.CourseListResponse{Courses: courses, Total: total})
}

func (h *Handler) GetAllCourses(w http.ResponseWriter, r *http.Request) {
	page := getIntQueryParam(r, "page", 1)
	limit := getIntQueryParam(r, "limit", 50)

	courses, total, err := h.courseService.ListAll(r.Context(), auth.CurrentUser(r.Context()), page, limit)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, models.CourseListResponse{Courses: courses, Total: total})
}

func (h *Handler) GetCourseOverview(w http.ResponseWriter, r *http.Request) {
	page := getIntQueryParam(r, "page", 1)
	limit := getIntQueryParam(r, "limit", 50)

	overview, total, err := h.courseService.Overview(r.Context(), auth.CurrentUser(r.Context()), page, limit)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, models.CourseOverviewListResponse{Courses: overview, Total: total})
}

func (h *Handler) JoinCourse(w http.ResponseWriter, r *http.Request) {
	var req models.JoinCourseRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	course, err := h.courseService.Join(r.Context(), auth.CurrentUser(r.Context()), req.CourseCode)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, course)
}

func (h *Handler) GetCourseByID(w http.ResponseWriter, r *http.Request) {
	id, err := getIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid course id")
		return
	}

	course, err := h.courseService.Get(r.Context(), auth.CurrentUser(r.Context()), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, course)
}

func (h *Handler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	id, err := getIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid course id")
		return
	}

	var req models.UpdateCourseRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	course, err := h.courseService.Update(r.Context(), auth.CurrentUser(r.Context()), id, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, course)
}

func (h *Handler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	id, err := getIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid course id")
		return
	}

	if err := h.courseService.Delete(r.Context(), auth.CurrentUser(r.Context()), id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]string{"status": "deleted"})
}

func (h *Handler) GetCourseAssignments(w http.ResponseWriter, r *http.Request) {
	id, err := getIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid course id")
		return
	}

	assignments, err := h.assignmentService.ListByCourse(r.Context(), auth.CurrentUser(r.Context()), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	if assignments == nil {
		assignments = []models.Assignment{}
	}

	writeSuccess(w, assignments)
}
