package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AttemptStatus enumerates quiz attempt states. An attempt moves
// IN_PROGRESS → COMPLETED exactly once; COMPLETED is terminal.
type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "IN_PROGRESS"
	AttemptCompleted  AttemptStatus = "COMPLETED"
)

// AnswerState is the saved working state for one question.
type AnswerState struct {
	IsAnswered          bool    `json:"isAnswered"`
	SelectedOptionIndex *int    `json:"selectedOptionIndex,omitempty"`
	EssayAnswer         *string `json:"essayAnswer,omitempty"`
}

// AttemptProgress is the server-side snapshot of a running attempt.
// QuestionOrder is assigned once at start and never accepted from clients,
// so a student sees the same shuffled order on every re-entry.
type AttemptProgress struct {
	Answers       map[string]AnswerState `json:"answers"`
	QuestionOrder []string               `json:"questionOrder,omitempty"`
}

// QuizAttempt represents one student's attempt on one quiz. At most one row
// exists per (quiz, student); the unique index backs the concurrent-start
// conflict handling.
type QuizAttempt struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	QuizID            uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_attempts_quiz_student" json:"quiz_id"`
	StudentID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_attempts_quiz_student" json:"student_id"`
	Status            AttemptStatus   `gorm:"type:varchar(16);not null;default:'IN_PROGRESS'" json:"status"`
	Score             float64         `gorm:"not null;default:0" json:"score"`
	TimeLeftInSeconds *int            `json:"time_left_in_seconds,omitempty"`
	ViolationCount    int             `gorm:"not null;default:0" json:"violation_count"`
	Progress          AttemptProgress `gorm:"serializer:json" json:"progress"`
	SubmittedAt       *time.Time      `json:"submitted_at,omitempty"`
	Answers           []QuizAnswer    `gorm:"constraint:OnDelete:CASCADE" json:"answers,omitempty"`
	Student           *User           `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func (QuizAttempt) TableName() string { return "quiz_attempts" }

func (a *QuizAttempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// QuizAnswer is a graded answer row written at submission time.
type QuizAnswer struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuizAttemptID       uuid.UUID `gorm:"type:uuid;index;not null" json:"quiz_attempt_id"`
	QuestionID          uuid.UUID `gorm:"type:uuid;not null" json:"question_id"`
	SelectedOptionIndex *int      `json:"selected_option_index,omitempty"`
	EssayAnswer         *string   `json:"essay_answer,omitempty"`
	IsCorrect           bool      `gorm:"not null" json:"is_correct"`
	CreatedAt           time.Time `json:"created_at"`
}

func (QuizAnswer) TableName() string { return "quiz_answers" }

func (a *QuizAnswer) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// AnswerPatch is the client-sent working state for one question. IsAnswered
// is a pointer so a missing flag can be rejected rather than defaulted.
type AnswerPatch struct {
	IsAnswered          *bool   `json:"isAnswered"`
	SelectedOptionIndex *int    `json:"selectedOptionIndex,omitempty"`
	EssayAnswer         *string `json:"essayAnswer,omitempty"`
}

// ProgressPatch is the client-sent progress object. Any questionOrder sent
// by the client is ignored.
type ProgressPatch struct {
	Answers map[string]AnswerPatch `json:"answers"`
}

// SaveProgressRequest is the payload for the periodic attempt autosave.
// Every field is optional; omitted fields keep their stored values.
type SaveProgressRequest struct {
	Progress          *ProgressPatch `json:"progress,omitempty"`
	TimeLeftInSeconds *int           `json:"timeLeftInSeconds,omitempty"`
	ViolationCount    *int           `json:"violationCount,omitempty"`
}

// SubmitAnswerInput is one final answer in the submit payload. Entries for
// unknown question IDs are skipped; when a question ID repeats, the last
// entry wins.
type SubmitAnswerInput struct {
	QuestionID          uuid.UUID `json:"questionId" binding:"required"`
	SelectedOptionIndex *int      `json:"selectedOptionIndex,omitempty"`
	AnswerText          *string   `json:"answerText,omitempty"`
}

// SubmitAttemptRequest carries the final answers for grading. An empty list
// is a valid submission; every question then grades incorrect.
type SubmitAttemptRequest struct {
	Answers []SubmitAnswerInput `json:"answers" binding:"omitempty,dive"`
}
