package models

import "time"

type Question struct {
	ID             int64     `json:"id" db:"id"`
	Title          string    `json:"title" db:"title"`
	Text           string    `json:"text" db:"text"`
	Tags           string    `json:"tags" db:"tags"`
	Keywords       string    `json:"keywords" db:"keywords"`
	School         string    `json:"school" db:"school"`
	Course         string    `json:"course" db:"course"`
	CourseType     string    `json:"course_type" db:"course_type"`
	QuestionType   string    `json:"question_type" db:"question_type"`
	BloomsTaxonomy string    `json:"blooms_taxonomy" db:"blooms_taxonomy"`
	AnswerChoices  string    `json:"answer_choices" db:"answer_choices"`
	CorrectAnswer  string    `json:"correct_answer" db:"correct_answer"`
	PDFURL         *string   `json:"pdf_url" db:"pdf_url"`
	SourcePDF      *string   `json:"source_pdf" db:"source_pdf"`
	ImageURL       *string   `json:"image_url" db:"image_url"`
	UserID         string    `json:"user_id" db:"user_id"`
	IsVerified     bool      `json:"is_verified" db:"is_verified"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// DraftQuestion is one candidate question produced by the intake pipeline
// before it is persisted as an unverified Question.
type DraftQuestion struct {
	Title    string
	Text     string
	Tags     string
	Keywords string
}
