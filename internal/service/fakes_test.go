package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/caliberhq/question-bank/internal/models"
	"github.com/caliberhq/question-bank/internal/repository"
)

// fakeStore is an in-memory stand-in for the Postgres repositories. It
// mirrors the repository contracts that matter to the services, in
// particular the eager creation of progress rows on enrollment and on
// assignment creation.
type fakeStore struct {
	mu sync.Mutex

	users       map[string]*models.User
	questions   map[int64]*models.Question
	courses     map[int64]*models.Course
	assignments map[int64]*models.Assignment
	// enrollments holds student IDs per course in enrollment order;
	// progress is keyed by assignment ID then student ID.
	enrollments map[int64][]string
	progress    map[int64]map[string]*models.AssignmentProgress

	nextQuestionID   int64
	nextCourseID     int64
	nextAssignmentID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:       make(map[string]*models.User),
		questions:   make(map[int64]*models.Question),
		courses:     make(map[int64]*models.Course),
		assignments: make(map[int64]*models.Assignment),
		enrollments: make(map[int64][]string),
		progress:    make(map[int64]map[string]*models.AssignmentProgress),
	}
}

func (f *fakeStore) addUser(userID string, teacher, admin bool) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()

	email := userID + "@example.edu"
	user := &models.User{
		ID:        int64(len(f.users) + 1),
		UserID:    userID,
		Email:     &email,
		Teacher:   teacher,
		Admin:     admin,
		IconShape: "circle",
		IconColor: "#4f46e5",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.users[userID] = user
	return user
}

func (f *fakeStore) ensureProgress(assignmentID int64, studentID string) bool {
	rows, ok := f.progress[assignmentID]
	if !ok {
		rows = make(map[string]*models.AssignmentProgress)
		f.progress[assignmentID] = rows
	}
	if _, exists := rows[studentID]; exists {
		return false
	}
	rows[studentID] = &models.AssignmentProgress{
		ID:           int64(len(rows) + 1),
		AssignmentID: assignmentID,
		StudentID:    studentID,
		Answers:      map[string]string{},
		UpdatedAt:    time.Now(),
	}
	return true
}

func (f *fakeStore) progressCount(assignmentID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.progress[assignmentID])
}

// --- UserRepository ---

type fakeUserRepo struct{ store *fakeStore }

func (r *fakeUserRepo) GetByUserID(ctx context.Context, userID string) (*models.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	user, ok := r.store.users[userID]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetOrCreate(ctx context.Context, userID string, email *string) (*models.User, error) {
	r.store.mu.Lock()
	if user, ok := r.store.users[userID]; ok {
		copied := *user
		r.store.mu.Unlock()
		return &copied, nil
	}
	user := &models.User{
		ID:        int64(len(r.store.users) + 1),
		UserID:    userID,
		Email:     email,
		IconShape: "circle",
		IconColor: "#4f46e5",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	r.store.users[userID] = user
	copied := *user
	r.store.mu.Unlock()
	return &copied, nil
}

func (r *fakeUserRepo) GetAll(ctx context.Context, limit, offset int) ([]models.User, int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	ids := make([]string, 0, len(r.store.users))
	for id := range r.store.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var users []models.User
	for i, id := range ids {
		if i < offset || len(users) >= limit {
			continue
		}
		users = append(users, *r.store.users[id])
	}
	return users, len(ids), nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *user
	r.store.users[user.UserID] = &copied
	return nil
}

func (r *fakeUserRepo) FilterStudents(ctx context.Context, userIDs []string) ([]string, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	seen := make(map[string]struct{}, len(userIDs))
	var valid []string
	for _, id := range userIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		user, ok := r.store.users[id]
		if ok && !user.Teacher {
			valid = append(valid, id)
		}
	}
	return valid, nil
}

// --- QuestionRepository ---

type fakeQuestionRepo struct{ store *fakeStore }

func (r *fakeQuestionRepo) Create(ctx context.Context, question *models.Question) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.nextQuestionID++
	question.ID = r.store.nextQuestionID
	question.CreatedAt = time.Now()
	copied := *question
	r.store.questions[question.ID] = &copied
	return nil
}

func (r *fakeQuestionRepo) GetByID(ctx context.Context, id int64) (*models.Question, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	question, ok := r.store.questions[id]
	if !ok {
		return nil, nil
	}
	copied := *question
	return &copied, nil
}

func (r *fakeQuestionRepo) GetByIDs(ctx context.Context, ids []int64) ([]models.Question, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var questions []models.Question
	for _, id := range ids {
		if q, ok := r.store.questions[id]; ok {
			questions = append(questions, *q)
		}
	}
	return questions, nil
}

func (r *fakeQuestionRepo) GetByUser(ctx context.Context, userID string, filter repository.QuestionFilter) ([]models.Question, int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var matched []models.Question
	for _, q := range r.store.questions {
		if q.UserID != userID {
			continue
		}
		if filter.VerifiedOnly && !q.IsVerified {
			continue
		}
		if filter.SourcePDF != nil && (q.SourcePDF == nil || *q.SourcePDF != *filter.SourcePDF) {
			continue
		}
		matched = append(matched, *q)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := len(matched)
	if filter.Offset < len(matched) {
		matched = matched[filter.Offset:]
	} else {
		matched = nil
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (r *fakeQuestionRepo) GetAll(ctx context.Context, limit, offset int) ([]models.Question, int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var all []models.Question
	for _, q := range r.store.questions {
		all = append(all, *q)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	total := len(all)
	if offset < len(all) {
		all = all[offset:]
	} else {
		all = nil
	}
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, total, nil
}

func (r *fakeQuestionRepo) Update(ctx context.Context, question *models.Question) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *question
	r.store.questions[question.ID] = &copied
	return nil
}

func (r *fakeQuestionRepo) Delete(ctx context.Context, id int64, userID string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	q, ok := r.store.questions[id]
	if !ok || q.UserID != userID {
		return false, nil
	}
	delete(r.store.questions, id)
	return true, nil
}

// --- CourseRepository ---

type fakeCourseRepo struct{ store *fakeStore }

func (r *fakeCourseRepo) Create(ctx context.Context, course *models.Course, roster []string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.nextCourseID++
	course.ID = r.store.nextCourseID
	course.CreatedAt = time.Now()
	course.UpdatedAt = time.Now()
	copied := *course
	r.store.courses[course.ID] = &copied
	r.store.enrollments[course.ID] = append([]string(nil), roster...)
	return nil
}

func (r *fakeCourseRepo) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	course, ok := r.store.courses[id]
	if !ok {
		return nil, nil
	}
	copied := *course
	return &copied, nil
}

func (r *fakeCourseRepo) GetByCode(ctx context.Context, code string) (*models.Course, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, course := range r.store.courses {
		if course.CourseCode == code {
			copied := *course
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeCourseRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	course, _ := r.GetByCode(ctx, code)
	return course != nil, nil
}

func (r *fakeCourseRepo) GetByInstructor(ctx context.Context, instructorID string, limit, offset int) ([]models.Course, int, error) {
	return r.list(func(c *models.Course) bool { return c.InstructorID == instructorID }, limit, offset)
}

func (r *fakeCourseRepo) GetByStudent(ctx context.Context, studentID string, limit, offset int) ([]models.Course, int, error) {
	r.store.mu.Lock()
	enrolled := make(map[int64]bool)
	for courseID, students := range r.store.enrollments {
		for _, id := range students {
			if id == studentID {
				enrolled[courseID] = true
			}
		}
	}
	r.store.mu.Unlock()
	return r.list(func(c *models.Course) bool { return enrolled[c.ID] }, limit, offset)
}

func (r *fakeCourseRepo) GetAll(ctx context.Context, limit, offset int) ([]models.Course, int, error) {
	return r.list(func(*models.Course) bool { return true }, limit, offset)
}

func (r *fakeCourseRepo) Overview(ctx context.Context, limit, offset int) ([]models.CourseOverview, int, error) {
	courses, total, err := r.GetAll(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	overview := make([]models.CourseOverview, 0, len(courses))
	for _, c := range courses {
		assignmentCount := 0
		for _, a := range r.store.assignments {
			if a.CourseID == c.ID {
				assignmentCount++
			}
		}
		students := append([]string(nil), r.store.enrollments[c.ID]...)
		names := make(map[string]string, len(students))
		for _, id := range students {
			names[id] = id
		}
		overview = append(overview, models.CourseOverview{
			ID:              c.ID,
			CourseName:      c.CourseName,
			CourseCode:      c.CourseCode,
			SchoolName:      c.SchoolName,
			InstructorID:    c.InstructorID,
			AssignmentCount: assignmentCount,
			StudentIDs:      students,
			StudentNameByID: names,
		})
	}
	return overview, total, nil
}

func (r *fakeCourseRepo) Update(ctx context.Context, course *models.Course) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *course
	r.store.courses[course.ID] = &copied
	return nil
}

func (r *fakeCourseRepo) Delete(ctx context.Context, id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	delete(r.store.courses, id)
	delete(r.store.enrollments, id)
	for assignmentID, a := range r.store.assignments {
		if a.CourseID == id {
			delete(r.store.assignments, assignmentID)
			delete(r.store.progress, assignmentID)
		}
	}
	return nil
}

func (r *fakeCourseRepo) list(match func(*models.Course) bool, limit, offset int) ([]models.Course, int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var matched []models.Course
	for _, c := range r.store.courses {
		if match(c) {
			matched = append(matched, *c)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := len(matched)
	if offset < len(matched) {
		matched = matched[offset:]
	} else {
		matched = nil
	}
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, total, nil
}

// --- AssignmentRepository ---

type fakeAssignmentRepo struct{ store *fakeStore }

func (r *fakeAssignmentRepo) Create(ctx context.Context, assignment *models.Assignment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.nextAssignmentID++
	assignment.ID = r.store.nextAssignmentID
	assignment.CreatedAt = time.Now()
	assignment.UpdatedAt = time.Now()
	copied := *assignment
	r.store.assignments[assignment.ID] = &copied

	// Matches the transactional insert: one progress row per enrolled
	// student, created with the assignment.
	for _, studentID := range r.store.enrollments[assignment.CourseID] {
		r.store.ensureProgress(assignment.ID, studentID)
	}
	return nil
}

func (r *fakeAssignmentRepo) GetByID(ctx context.Context, id int64) (*models.Assignment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	assignment, ok := r.store.assignments[id]
	if !ok {
		return nil, nil
	}
	copied := *assignment
	return &copied, nil
}

func (r *fakeAssignmentRepo) GetByCourse(ctx context.Context, courseID int64) ([]models.Assignment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var matched []models.Assignment
	for _, a := range r.store.assignments {
		if a.CourseID == courseID {
			matched = append(matched, *a)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return matched, nil
}

func (r *fakeAssignmentRepo) Update(ctx context.Context, assignment *models.Assignment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *assignment
	r.store.assignments[assignment.ID] = &copied
	return nil
}

func (r *fakeAssignmentRepo) Delete(ctx context.Context, id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.assignments, id)
	delete(r.store.progress, id)
	return nil
}

// --- EnrollmentRepository ---

type fakeEnrollmentRepo struct{ store *fakeStore }

func (r *fakeEnrollmentRepo) Enroll(ctx context.Context, courseID int64, studentID string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, id := range r.store.enrollments[courseID] {
		if id == studentID {
			return false, nil
		}
	}
	r.store.enrollments[courseID] = append(r.store.enrollments[courseID], studentID)

	for assignmentID, a := range r.store.assignments {
		if a.CourseID == courseID {
			r.store.ensureProgress(assignmentID, studentID)
		}
	}
	return true, nil
}

func (r *fakeEnrollmentRepo) ReplaceRoster(ctx context.Context, courseID int64, studentIDs, added []string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.enrollments[courseID] = append([]string(nil), studentIDs...)

	for assignmentID, a := range r.store.assignments {
		if a.CourseID != courseID {
			continue
		}
		for _, studentID := range added {
			r.store.ensureProgress(assignmentID, studentID)
		}
	}
	return nil
}

func (r *fakeEnrollmentRepo) GetStudents(ctx context.Context, courseID int64) ([]string, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return append([]string(nil), r.store.enrollments[courseID]...), nil
}

func (r *fakeEnrollmentRepo) IsEnrolled(ctx context.Context, courseID int64, studentID string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, id := range r.store.enrollments[courseID] {
		if id == studentID {
			return true, nil
		}
	}
	return false, nil
}

// --- ProgressRepository ---

type fakeProgressRepo struct{ store *fakeStore }

func (r *fakeProgressRepo) Get(ctx context.Context, assignmentID int64, studentID string) (*models.AssignmentProgress, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	row, ok := r.store.progress[assignmentID][studentID]
	if !ok {
		return nil, nil
	}
	copied := *row
	copied.Answers = copyAnswers(row.Answers)
	return &copied, nil
}

func (r *fakeProgressRepo) GetOrCreate(ctx context.Context, assignmentID int64, studentID string) (*models.AssignmentProgress, error) {
	r.store.mu.Lock()
	r.store.ensureProgress(assignmentID, studentID)
	r.store.mu.Unlock()
	return r.Get(ctx, assignmentID, studentID)
}

func (r *fakeProgressRepo) Update(ctx context.Context, progress *models.AssignmentProgress) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	copied := *progress
	copied.Answers = copyAnswers(progress.Answers)
	copied.UpdatedAt = time.Now()
	if r.store.progress[progress.AssignmentID] == nil {
		r.store.progress[progress.AssignmentID] = make(map[string]*models.AssignmentProgress)
	}
	r.store.progress[progress.AssignmentID][progress.StudentID] = &copied
	return nil
}

func copyAnswers(answers map[string]string) map[string]string {
	copied := make(map[string]string, len(answers))
	for k, v := range answers {
		copied[k] = v
	}
	return copied
}
