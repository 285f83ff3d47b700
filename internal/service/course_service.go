package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/caliberhq/question-bank/internal/models"
	"github.com/caliberhq/question-bank/internal/repository"
)

const (
	courseCodeSuffixLen   = 6
	courseCodeBaseMaxLen  = 16
	courseCodeMaxAttempts = 10
	courseCodeSuffixChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	courseCodeDefaultBase = "COURSE"
)

type CourseService interface {
	Create(ctx context.Context, actor *models.User, req *models.CreateCourseRequest) (*models.CourseWithDetails, error)
	Get(ctx context.Context, actor *models.User, id int64) (*models.CourseWithDetails, error)
	List(ctx context.Context, actor *models.User, page, limit int) ([]models.CourseWithDetails, int, error)
	ListAll(ctx context.Context, actor *models.User, page, limit int) ([]models.CourseWithDetails, int, error)
	Overview(ctx context.Context, actor *models.User, page, limit int) ([]models.CourseOverview, int, error)
	Update(ctx context.Context, actor *models.User, id int64, req *models.UpdateCourseRequest) (*models.CourseWithDetails, error)
	Delete(ctx context.Context, actor *models.User, id int64) error
	Join(ctx context.Context, actor *models.User, code string) (*models.CourseWithDetails, error)
}

type courseService struct {
	courseRepo     repository.CourseRepository
	assignmentRepo repository.AssignmentRepository
	userRepo       repository.UserRepository
	enrollment     EnrollmentService
	logger         zerolog.Logger
}

func NewCourseService(
	courseRepo repository.CourseRepository,
	assignmentRepo repository.AssignmentRepository,
	userRepo repository.UserRepository,
	enrollment EnrollmentService,
	logger zerolog.Logger,
) CourseService {
	return &courseService{
		courseRepo:     courseRepo,
		assignmentRepo: assignmentRepo,
		userRepo:       userRepo,
		enrollment:     enrollment,
		logger:         logger,
	}
}

func (s *courseService) Create(ctx context.Context, actor *models.User, req *models.CreateCourseRequest) (*models.CourseWithDetails, error) {
	if actor == nil || !actor.Teacher {
		return nil, ErrNotInstructor
	}

	name := strings.TrimSpace(req.CourseName)
	if name == "" {
		return nil, fmt.Errorf("%w: course name must be non-blank", ErrValidation)
	}

	code, err := generateCourseCode(ctx, name, s.courseRepo.CodeExists)
	if err != nil {
		return nil, err
	}

	// Validate the roster up front so the course and its enrollments land
	// in the same transaction.
	roster, err := s.userRepo.FilterStudents(ctx, req.StudentIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to validate roster: %w", err)
	}

	course := &models.Course{
		CourseName:   name,
		CourseCode:   code,
		SchoolName:   strings.TrimSpace(req.SchoolName),
		InstructorID: actor.UserID,
	}

	for attempt := 0; ; attempt++ {
		err = s.courseRepo.Create(ctx, course, roster)
		if err == nil {
			break
		}
		// The code was checked before insert, but another create can win
		// the race. Regenerate and retry on the unique constraint.
		if repository.IsUniqueViolation(err) && attempt < courseCodeMaxAttempts {
			course.CourseCode, err = generateCourseCode(ctx, name, s.courseRepo.CodeExists)
			if err != nil {
				return nil, err
			}
			continue
		}
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	s.logger.Info().
		Int64("course_id", course.ID).
		Str("course_code", course.CourseCode).
		Str("instructor_id", actor.UserID).
		Msg("Course created")

	return s.buildDetails(ctx, course)
}

func (s *courseService) Get(ctx context.Context, actor *models.User, id int64) (*models.CourseWithDetails, error) {
	course, err := s.getCourse(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeRead(ctx, actor, course); err != nil {
		return nil, err
	}

	return s.buildDetails(ctx, course)
}

func (s *courseService) List(ctx context.Context, actor *models.User, page, limit int) ([]models.CourseWithDetails, int, error) {
	if actor == nil {
		return nil, 0, ErrUserNotFound
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}
	offset := (page - 1) * limit

	var (
		courses []models.Course
		total   int
		err     error
	)
	if actor.Teacher {
		courses, total, err = s.courseRepo.GetByInstructor(ctx, actor.UserID, limit, offset)
	} else {
		courses, total, err = s.courseRepo.GetByStudent(ctx, actor.UserID, limit, offset)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list courses: %w", err)
	}

	details, err := s.buildDetailsList(ctx, courses)
	if err != nil {
		return nil, 0, err
	}

	return details, total, nil
}

func (s *courseService) ListAll(ctx context.Context, actor *models.User, page, limit int) ([]models.CourseWithDetails, int, error) {
	if actor == nil || !actor.Admin {
		return nil, 0, ErrNotAdmin
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	courses, total, err := s.courseRepo.GetAll(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list all courses: %w", err)
	}

	details, err := s.buildDetailsList(ctx, courses)
	if err != nil {
		return nil, 0, err
	}

	return details, total, nil
}

func (s *courseService) Overview(ctx context.Context, actor *models.User, page, limit int) ([]models.CourseOverview, int, error) {
	if actor == nil || !actor.Admin {
		return nil, 0, ErrNotAdmin
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	overview, total, err := s.courseRepo.Overview(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build course overview: %w", err)
	}

	return overview, total, nil
}

func (s *courseService) Update(ctx context.Context, actor *models.User, id int64, req *models.UpdateCourseRequest) (*models.CourseWithDetails, error) {
	course, err := s.getCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor == nil || course.InstructorID != actor.UserID {
		return nil, ErrNotCourseInstructor
	}

	// Blank names are treated as "leave unchanged" rather than an error.
	if req.CourseName != nil {
		if name := strings.TrimSpace(*req.CourseName); name != "" {
			course.CourseName = name
		}
	}
	if req.SchoolName != nil {
		if school := strings.TrimSpace(*req.SchoolName); school != "" {
			course.SchoolName = school
		}
	}

	if err := s.courseRepo.Update(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to update course: %w", err)
	}

	if req.StudentIDs != nil {
		if _, err := s.enrollment.SyncRoster(ctx, course.ID, *req.StudentIDs); err != nil {
			return nil, err
		}
	}

	return s.buildDetails(ctx, course)
}

func (s *courseService) Delete(ctx context.Context, actor *models.User, id int64) error {
	course, err := s.getCourse(ctx, id)
	if err != nil {
		return err
	}
	if actor == nil || course.InstructorID != actor.UserID {
		return ErrNotCourseInstructor
	}

	// Enrollments, assignments and their progress rows go with the course
	// via foreign key cascades.
	if err := s.courseRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}

	s.logger.Info().
		Int64("course_id", id).
		Str("instructor_id", actor.UserID).
		Msg("Course deleted")

	return nil
}

func (s *courseService) Join(ctx context.Context, actor *models.User, code string) (*models.CourseWithDetails, error) {
	if actor == nil {
		return nil, ErrUserNotFound
	}
	if actor.Teacher {
		return nil, ErrTeacherCannotJoin
	}

	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, ErrInvalidCourseCode
	}

	course, err := s.courseRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up course code: %w", err)
	}
	if course == nil {
		return nil, ErrInvalidCourseCode
	}

	if _, err := s.enrollment.Enroll(ctx, course.ID, actor.UserID); err != nil {
		return nil, err
	}

	return s.buildDetails(ctx, course)
}

func (s *courseService) getCourse(ctx context.Context, id int64) (*models.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}

	return course, nil
}

func (s *courseService) authorizeRead(ctx context.Context, actor *models.User, course *models.Course) error {
	if actor == nil {
		return ErrNotEnrolled
	}
	if actor.Admin || course.InstructorID == actor.UserID {
		return nil
	}

	enrolled, err := s.enrollment.IsEnrolled(ctx, course.ID, actor.UserID)
	if err != nil {
		return err
	}
	if !enrolled {
		return ErrNotEnrolled
	}

	return nil
}

func (s *courseService) buildDetails(ctx context.Context, course *models.Course) (*models.CourseWithDetails, error) {
	students, err := s.enrollment.Students(ctx, course.ID)
	if err != nil {
		return nil, err
	}

	assignments, err := s.assignmentRepo.GetByCourse(ctx, course.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load course assignments: %w", err)
	}

	var instructorEmail *string
	instructor, err := s.userRepo.GetByUserID(ctx, course.InstructorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load instructor: %w", err)
	}
	if instructor != nil {
		instructorEmail = instructor.Email
	}

	if students == nil {
		students = []string{}
	}
	if assignments == nil {
		assignments = []models.Assignment{}
	}

	return &models.CourseWithDetails{
		Course:          *course,
		InstructorEmail: instructorEmail,
		StudentIDs:      students,
		Assignments:     assignments,
	}, nil
}

func (s *courseService) buildDetailsList(ctx context.Context, courses []models.Course) ([]models.CourseWithDetails, error) {
	details := make([]models.CourseWithDetails, 0, len(courses))
	for i := range courses {
		d, err := s.buildDetails(ctx, &courses[i])
		if err != nil {
			return nil, err
		}
		details = append(details, *d)
	}

	return details, nil
}

// generateCourseCode builds a join code of the form BASE_XXXXXX: an
// uppercase alphanumeric prefix derived from the course name plus a random
// six character suffix. The exists check keeps generated codes unique up to
// the database constraint, which the caller still handles.
func generateCourseCode(ctx context.Context, courseName string, exists func(context.Context, string) (bool, error)) (string, error) {
	base := courseCodeBase(courseName)

	for attempt := 0; attempt < courseCodeMaxAttempts; attempt++ {
		suffix, err := randomCodeSuffix(courseCodeSuffixLen)
		if err != nil {
			return "", fmt.Errorf("failed to generate course code: %w", err)
		}

		code := base + "_" + suffix
		taken, err := exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check course code: %w", err)
		}
		if !taken {
			return code, nil
		}
	}

	return "", fmt.Errorf("failed to generate a unique course code after %d attempts", courseCodeMaxAttempts)
}

func courseCodeBase(courseName string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(courseName) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() >= courseCodeBaseMaxLen {
				break
			}
		}
	}
	if b.Len() == 0 {
		return courseCodeDefaultBase
	}

	return b.String()
}

func randomCodeSuffix(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i := range buf {
		buf[i] = courseCodeSuffixChars[int(buf[i])%len(courseCodeSuffixChars)]
	}

	return string(buf), nil
}
