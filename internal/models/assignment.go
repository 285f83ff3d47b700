package models

import "time"

type Assignment struct {
	ID              int64      `json:"id" db:"id"`
	CourseID        int64      `json:"course_id" db:"course_id"`
	InstructorID    string     `json:"instructor_id" db:"instructor_id"`
	InstructorEmail string     `json:"instructor_email" db:"instructor_email"`
	Title           string     `json:"title" db:"title"`
	Description     string     `json:"description" db:"description"`
	Type            string     `json:"type" db:"type"`
	NodeID          *string    `json:"node_id" db:"node_id"`
	ReleaseDate     *time.Time `json:"release_date" db:"release_date"`
	DueDateSoft     *time.Time `json:"due_date_soft" db:"due_date_soft"`
	DueDateHard     *time.Time `json:"due_date_hard" db:"due_date_hard"`
	LatePolicyID    *string    `json:"late_policy_id" db:"late_policy_id"`
	Questions       []int64    `json:"assignment_questions" db:"assignment_questions"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}
