package models

import "time"

// Data Transfer Objects

type UpdateProfileRequest struct {
	FirstName string `json:"first_name" validate:"required,max=255"`
	LastName  string `json:"last_name" validate:"required,max=255"`
}

type UpdatePreferencesRequest struct {
	IconShape *string `json:"icon_shape" validate:"omitempty,oneof=circle square hex"`
	IconColor *string `json:"icon_color" validate:"omitempty,max=32"`
	Initials  *string `json:"initials" validate:"omitempty,max=2"`
}

type OnboardingRequest struct {
	FirstName string `json:"first_name" validate:"required,max=255"`
	LastName  string `json:"last_name" validate:"required,max=255"`
	Teacher   bool   `json:"teacher"`
}

type UpdateRolesRequest struct {
	Admin   *bool `json:"admin"`
	Teacher *bool `json:"teacher"`
	Pending *bool `json:"pending"`
}

type CreateQuestionRequest struct {
	Title          string  `json:"title" validate:"required,max=500"`
	Text           string  `json:"text" validate:"required"`
	Tags           string  `json:"tags"`
	Keywords       string  `json:"keywords"`
	School         string  `json:"school"`
	Course         string  `json:"course"`
	CourseType     string  `json:"course_type"`
	QuestionType   string  `json:"question_type"`
	BloomsTaxonomy string  `json:"blooms_taxonomy"`
	AnswerChoices  string  `json:"answer_choices"`
	CorrectAnswer  string  `json:"correct_answer"`
	PDFURL         *string `json:"pdf_url"`
	SourcePDF      *string `json:"source_pdf"`
	ImageURL       *string `json:"image_url"`
}

type UpdateQuestionRequest struct {
	Title          *string `json:"title"`
	Text           *string `json:"text"`
	Tags           *string `json:"tags"`
	Keywords       *string `json:"keywords"`
	School         *string `json:"school"`
	Course         *string `json:"course"`
	CourseType     *string `json:"course_type"`
	QuestionType   *string `json:"question_type"`
	BloomsTaxonomy *string `json:"blooms_taxonomy"`
	AnswerChoices  *string `json:"answer_choices"`
	CorrectAnswer  *string `json:"correct_answer"`
	PDFURL         *string `json:"pdf_url"`
	SourcePDF      *string `json:"source_pdf"`
	ImageURL       *string `json:"image_url"`
	IsVerified     *bool   `json:"is_verified"`
}

type CreateCourseRequest struct {
	CourseName string   `json:"course_name" validate:"required,min=1,max=255"`
	SchoolName string   `json:"school_name" validate:"max=255"`
	StudentIDs []string `json:"student_ids"`
}

type UpdateCourseRequest struct {
	CourseName *string   `json:"course_name"`
	SchoolName *string   `json:"school_name"`
	StudentIDs *[]string `json:"student_ids"`
}

type JoinCourseRequest struct {
	CourseCode string `json:"course_code" validate:"required,max=64"`
}

type CreateAssignmentRequest struct {
	CourseID     int64      `json:"course_id" validate:"required"`
	Title        string     `json:"title" validate:"required,min=1,max=255"`
	Type         string     `json:"type" validate:"max=64"`
	Description  string     `json:"description" validate:"max=2000"`
	NodeID       *string    `json:"node_id"`
	ReleaseDate  *time.Time `json:"release_date"`
	DueDateSoft  *time.Time `json:"due_date_soft"`
	DueDateHard  *time.Time `json:"due_date_hard"`
	LatePolicyID *string    `json:"late_policy_id"`
	Questions    []int64    `json:"assignment_questions"`
}

type UpdateAssignmentRequest struct {
	Title        *string    `json:"title"`
	Type         *string    `json:"type"`
	Description  *string    `json:"description"`
	NodeID       *string    `json:"node_id"`
	ReleaseDate  *time.Time `json:"release_date"`
	DueDateSoft  *time.Time `json:"due_date_soft"`
	DueDateHard  *time.Time `json:"due_date_hard"`
	LatePolicyID *string    `json:"late_policy_id"`
	Questions    *[]int64   `json:"assignment_questions"`
}

type SaveProgressRequest struct {
	Answers              *map[string]string `json:"answers"`
	CurrentQuestionIndex *int               `json:"current_question_index"`
	Submitted            *bool              `json:"submitted"`
}

type UploadResponse struct {
	Status   string `json:"status"`
	Filename string `json:"filename"`
	Message  string `json:"message"`
}

type ImageUploadResponse struct {
	Path string `json:"path"`
}

type SignedURLResponse struct {
	URL string `json:"url"`
}

type UserInfoResponse struct {
	User
	ProfileComplete bool `json:"profile_complete"`
}

type QuestionListResponse struct {
	Questions []Question `json:"questions"`
	Total     int        `json:"total"`
}

type UserListResponse struct {
	Users []User `json:"users"`
	Total int    `json:"total"`
}

type CourseListResponse struct {
	Courses []CourseWithDetails `json:"courses"`
	Total   int                 `json:"total"`
}

type CourseOverviewListResponse struct {
	Courses []CourseOverview `json:"courses"`
	Total   int              `json:"total"`
}
