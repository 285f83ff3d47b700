package models

// QuestionDraftsCreatedEvent is published after the intake pipeline persists
// a batch of draft questions extracted from one uploaded PDF.
type QuestionDraftsCreatedEvent struct {
	SourcePDF   string  `json:"source_pdf"`
	UserID      string  `json:"user_id"`
	QuestionIDs []int64 `json:"question_ids"`
	Count       int     `json:"count"`
	Timestamp   int64   `json:"timestamp"`
}
