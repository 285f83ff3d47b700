package models

import "time"

type Course struct {
	ID           int64     `json:"id" db:"id"`
	CourseName   string    `json:"course_name" db:"course_name"`
	CourseCode   string    `json:"course_code" db:"course_code"`
	SchoolName   string    `json:"school_name" db:"school_name"`
	InstructorID string    `json:"instructor_id" db:"instructor_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

type CourseWithDetails struct {
	Course
	InstructorEmail *string      `json:"instructor_email"`
	StudentIDs      []string     `json:"student_ids"`
	Assignments     []Assignment `json:"assignments"`
}

// CourseOverview is the compact admin dashboard shape: counts and roster
// names instead of full assignment payloads.
type CourseOverview struct {
	ID              int64             `json:"id"`
	CourseName      string            `json:"course_name"`
	CourseCode      string            `json:"course_code"`
	SchoolName      string            `json:"school_name"`
	InstructorID    string            `json:"instructor_id"`
	AssignmentCount int               `json:"assignment_count"`
	StudentIDs      []string          `json:"student_ids"`
	StudentNameByID map[string]string `json:"student_name_by_id"`
}
