package models

import "time"

// AssignmentProgress is the single per-(assignment, student) row tracking a
// student's in-progress answers. The (assignment_id, student_id) pair is
// unique at the database level.
type AssignmentProgress struct {
	ID                   int64             `json:"-" db:"id"`
	AssignmentID         int64             `json:"assignment_id" db:"assignment_id"`
	StudentID            string            `json:"student_id" db:"student_id"`
	Answers              map[string]string `json:"answers" db:"answers"`
	CurrentQuestionIndex int               `json:"current_question_index" db:"current_question_index"`
	Submitted            bool              `json:"submitted" db:"submitted"`
	SubmittedAt          *time.Time        `json:"submitted_at" db:"submitted_at"`
	UpdatedAt            time.Time         `json:"updated_at" db:"updated_at"`
}
