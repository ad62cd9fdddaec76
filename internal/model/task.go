package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Task is a graded assignment with a hard deadline.
type Task struct {
	ID             uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Title          string       `gorm:"not null" json:"title"`
	Description    string       `json:"description"`
	Deadline       time.Time    `gorm:"not null" json:"deadline"`
	AttachmentPath string       `json:"attachment_path,omitempty"`
	AuthorID       uuid.UUID    `gorm:"type:uuid;index;not null" json:"author_id"`
	Submissions    []Submission `gorm:"constraint:OnDelete:CASCADE" json:"submissions,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

func (Task) TableName() string { return "tasks" }

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Submission is a student's uploaded answer to a task. One row per
// (task, student); resubmission replaces the file and resets the grade.
type Submission struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TaskID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_submissions_task_student" json:"task_id"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_submissions_task_student" json:"student_id"`
	FilePath  string    `gorm:"not null" json:"file_path"`
	Grade     *float64  `json:"grade,omitempty"`
	Student   *User     `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Submission) TableName() string { return "submissions" }

func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// CreateTaskRequest is the payload for creating a task.
type CreateTaskRequest struct {
	Title       string    `json:"title" binding:"required,min=3,max=200"`
	Description string    `json:"description"`
	Deadline    time.Time `json:"deadline" binding:"required"`
}

// UpdateTaskRequest is the payload for updating a task.
type UpdateTaskRequest struct {
	Title       string    `json:"title" binding:"required,min=3,max=200"`
	Description string    `json:"description"`
	Deadline    time.Time `json:"deadline" binding:"required"`
}

// GradeSubmissionRequest is the payload for grading a submission.
type GradeSubmissionRequest struct {
	Grade *float64 `json:"grade" binding:"required,min=0,max=100"`
}
