package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuestionType enumerates supported question kinds.
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	QuestionTrueFalse      QuestionType = "TRUE_FALSE"
	QuestionEssay          QuestionType = "ESSAY"
)

// QuestionOption is a single choice of a MULTIPLE_CHOICE or TRUE_FALSE
// question. The grading key lives in IsCorrect and must never reach
// students while an attempt is open.
type QuestionOption struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// Question belongs to a quiz. Options is stored as a JSON column;
// AnswerKeywords is a comma-separated keyword list used for ESSAY grading.
type Question struct {
	ID             uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	QuizID         uuid.UUID        `gorm:"type:uuid;index;not null" json:"quiz_id"`
	Text           string           `gorm:"not null" json:"text"`
	Type           QuestionType     `gorm:"type:varchar(24);not null" json:"type"`
	Options        []QuestionOption `gorm:"serializer:json" json:"options,omitempty"`
	AnswerKeywords string           `json:"answer_keywords,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

func (Question) TableName() string { return "questions" }

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// Quiz is a timed or untimed set of questions open within a submission
// window. A nil SubmissionStartDate opens the quiz immediately; the deadline
// is always mandatory.
type Quiz struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title               string     `gorm:"not null" json:"title"`
	Description         string     `json:"description"`
	DurationMinutes     *int       `json:"duration_minutes,omitempty"`
	SubmissionStartDate *time.Time `json:"submission_start_date,omitempty"`
	Deadline            time.Time  `gorm:"not null" json:"deadline"`
	AuthorID            uuid.UUID  `gorm:"type:uuid;index;not null" json:"author_id"`
	Questions           []Question `gorm:"constraint:OnDelete:CASCADE" json:"questions,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func (Quiz) TableName() string { return "quizzes" }

func (q *Quiz) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// QuestionInput is one question in a quiz create/update payload.
type QuestionInput struct {
	Text           string           `json:"text" binding:"required"`
	Type           QuestionType     `json:"type" binding:"required,oneof=MULTIPLE_CHOICE TRUE_FALSE ESSAY"`
	Options        []QuestionOption `json:"options,omitempty"`
	AnswerKeywords string           `json:"answer_keywords,omitempty"`
}

// CreateQuizRequest is the payload for creating a quiz with its questions.
// The start bound is optional; the deadline is not.
type CreateQuizRequest struct {
	Title               string          `json:"title" binding:"required,min=3,max=200"`
	Description         string          `json:"description"`
	DurationMinutes     *int            `json:"duration_minutes,omitempty" binding:"omitempty,min=1"`
	SubmissionStartDate *time.Time      `json:"submission_start_date,omitempty"`
	Deadline            time.Time       `json:"deadline" binding:"required"`
	Questions           []QuestionInput `json:"questions" binding:"required,min=1,dive"`
}

// UpdateQuizRequest replaces quiz metadata and its full question set.
type UpdateQuizRequest struct {
	Title               string          `json:"title" binding:"required,min=3,max=200"`
	Description         string          `json:"description"`
	DurationMinutes     *int            `json:"duration_minutes,omitempty" binding:"omitempty,min=1"`
	SubmissionStartDate *time.Time      `json:"submission_start_date,omitempty"`
	Deadline            time.Time       `json:"deadline" binding:"required"`
	Questions           []QuestionInput `json:"questions" binding:"required,min=1,dive"`
}
