package httpd

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/caliberhq/question-bank/internal/service"
)

type Handler struct {
	userService       service.UserService
	questionService   service.QuestionService
	courseService     service.CourseService
	assignmentService service.AssignmentService
	progressService   service.ProgressService
	intakeService     service.IntakeService
	fileService       service.FileService
	validate          *validator.Validate
	logger            zerolog.Logger
}

func NewHandler(
	userService service.UserService,
	questionService service.QuestionService,
	courseService service.CourseService,
	assignmentService service.AssignmentService,
	progressService service.ProgressService,
	intakeService service.IntakeService,
	fileService service.FileService,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		userService:       userService,
		questionService:   questionService,
		courseService:     courseService,
		assignmentService: assignmentService,
		progressService:   progressService,
		intakeService:     intakeService,
		fileService:       fileService,
		validate:          validator.New(),
		logger:            logger,
	}
}

// RegisterRoutes mounts everything under /api/v1 behind the auth middleware.
// Only the health check stays public.
func (h *Handler) RegisterRoutes(router chi.Router, authmw func(http.Handler) http.Handler) {
	router.Get("/health", h.HealthCheck)

	router.Route("/api/v1", func(api chi.Router) {
		api.Use(authmw)

		api.Route("/users", func(r chi.Router) {
			r.Get("/", h.GetAllUsers)
			r.Get("/me", h.GetCurrentUser)
			r.Put("/me/profile", h.UpdateProfile)
			r.Put("/me/preferences", h.UpdatePreferences)
			r.Post("/me/onboarding", h.CompleteOnboarding)
			r.Get("/{user_id}", h.GetUserByID)
			r.Put("/{user_id}/roles", h.UpdateRoles)
		})

		api.Route("/questions", func(r chi.Router) {
			r.Post("/", h.CreateQuestion)
			r.Get("/", h.GetMyQuestions)
			r.Get("/all", h.GetAllQuestions)
			r.Get("/batch", h.GetQuestionBatch)
			r.Get("/{id}", h.GetQuestionByID)
			r.Put("/{id}", h.UpdateQuestion)
			r.Delete("/{id}", h.DeleteQuestion)
		})

		api.Route("/courses", func(r chi.Router) {
			r.Post("/", h.CreateCourse)
			r.Get("/", h.GetMyCourses)
			r.Get("/all", h.GetAllCourses)
			r.Get("/overview", h.GetCourseOverview)
			r.Post("/join", h.JoinCourse)
			r.Get("/{id}", h.GetCourseByID)
			r.Put("/{id}", h.UpdateCourse)
			r.Delete("/{id}", h.DeleteCourse)
			r.Get("/{id}/assignments", h.GetCourseAssignments)
		})

		api.Route("/assignments", func(r chi.Router) {
			r.Post("/", h.CreateAssignment)
			r.Get("/{id}", h.GetAssignmentByID)
			r.Put("/{id}", h.UpdateAssignment)
			r.Delete("/{id}", h.DeleteAssignment)
			r.Post("/{id}/release", h.ReleaseAssignment)
			r.Get("/{id}/progress", h.GetProgress)
			r.Put("/{id}/progress", h.SaveProgress)
		})

		api.Post("/upload-pdf", h.UploadPDF)
		api.Post("/images", h.UploadImage)
		api.Get("/files/signed-url", h.GetSignedURL)
	})
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"service":   "question-bank",
		"timestamp": time.Now().UTC(),
	}

	writeJSON(w, http.StatusOK, response)
}

// decodeAndValidate parses the JSON body into dst and runs struct tag
// validation. It writes the error response itself and reports success.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}

	return true
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrQuestionNotFound),
		errors.Is(err, service.ErrCourseNotFound),
		errors.Is(err, service.ErrAssignmentNotFound),
		errors.Is(err, service.ErrInvalidCourseCode):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotInstructor),
		errors.Is(err, service.ErrNotCourseInstructor),
		errors.Is(err, service.ErrNotEnrolled),
		errors.Is(err, service.ErrNotAdmin),
		errors.Is(err, service.ErrTeacherCannotJoin):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrProfileCompleted):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("Service error")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func getIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func getIntQueryParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error":   http.StatusText(status),
		"message": message,
	})
}

func writeSuccess(w http.ResponseWriter, data interface{}) {
	response := map[string]interface{}{
		"success": true,
		"data":    data,
	}
	writeJSON(w, http.StatusOK, response)
}
