package service

import "errors"

// Sentinel errors returned by the service layer. HTTP handlers map these to
// status codes with errors.Is, so wrapped variants carrying detail still
// match.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrCourseNotFound     = errors.New("course not found")
	ErrAssignmentNotFound = errors.New("assignment not found")

	ErrInvalidCourseCode = errors.New("invalid course code")

	ErrNotInstructor       = errors.New("instructor role required")
	ErrNotCourseInstructor = errors.New("not the instructor of this course")
	ErrNotEnrolled         = errors.New("not enrolled in this course")
	ErrNotAdmin            = errors.New("admin role required")
	ErrTeacherCannotJoin   = errors.New("instructors cannot join courses as students")

	ErrProfileCompleted = errors.New("onboarding already completed")
	ErrValidation       = errors.New("validation failed")
)
