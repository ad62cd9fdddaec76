package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
	"github.com/nevtik/eduvate-backend/internal/model"
	"github.com/nevtik/eduvate-backend/internal/repository"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Common task errors.
var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrPastDeadline       = errors.New("task deadline has passed")
	ErrNotSubmissionOwner = errors.New("submission belongs to another student")
	ErrSubmissionGraded   = errors.New("submission is already graded")
)

// TaskService handles tasks, submissions, and grading.
type TaskService struct {
	tasks       *repository.TaskRepository
	submissions *repository.SubmissionRepository
	storage     *StorageService
	log         zerolog.Logger
}

// NewTaskService creates a new TaskService.
func NewTaskService(tasks *repository.TaskRepository, submissions *repository.SubmissionRepository, storage *StorageService, log zerolog.Logger) *TaskService {
	return &TaskService{
		tasks:       tasks,
		submissions: submissions,
		storage:     storage,
		log:         log.With().Str("component", "task_service").Logger(),
	}
}

// Create inserts a task, optionally with an uploaded attachment.
func (s *TaskService) Create(ctx context.Context, authorID uuid.UUID, req *model.CreateTaskRequest, file multipart.File, header *multipart.FileHeader) (*model.Task, error) {
	task := &model.Task{
		Title:       req.Title,
		Description: req.Description,
		Deadline:    req.Deadline,
		AuthorID:    authorID,
	}

	if file != nil {
		path, err := s.storage.SaveUpload(file, header)
		if err != nil {
			return nil, err
		}
		task.AttachmentPath = path
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

// List retrieves all tasks.
func (s *TaskService) List(ctx context.Context) ([]model.Task, error) {
	return s.tasks.List(ctx)
}

// Get retrieves one task.
func (s *TaskService) Get(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("load task: %w", err)
	}
	return task, nil
}

// Update persists task metadata changes.
func (s *TaskService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateTaskRequest) (*model.Task, error) {
	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	task.Title = req.Title
	task.Description = req.Description
	task.Deadline = req.Deadline
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return task, nil
}

// Delete removes a task and its stored attachment.
func (s *TaskService) Delete(ctx context.Context, id uuid.UUID) error {
	task, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if task.AttachmentPath != "" {
		if err := s.storage.Remove(task.AttachmentPath); err != nil {
			s.log.Warn().Err(err).Str("task_id", id.String()).Msg("Attachment cleanup failed")
		}
	}
	return nil
}

// Submit stores a student's uploaded answer. Resubmission before the
// deadline replaces the previous file and resets the grade.
func (s *TaskService) Submit(ctx context.Context, taskID, studentID uuid.UUID, file multipart.File, header *multipart.FileHeader) (*model.Submission, error) {
	task, err := s.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if time.Now().After(task.Deadline) {
		return nil, ErrPastDeadline
	}

	path, err := s.storage.SaveUpload(file, header)
	if err != nil {
		return nil, err
	}

	existing, err := s.submissions.GetByTaskAndStudent(ctx, taskID, studentID)
	switch {
	case err == nil:
		oldPath := existing.FilePath
		existing.FilePath = path
		existing.Grade = nil
		if err := s.submissions.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("update submission: %w", err)
		}
		if err := s.storage.Remove(oldPath); err != nil {
			s.log.Warn().Err(err).Str("submission_id", existing.ID.String()).Msg("Old file cleanup failed")
		}
		return existing, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		sub := &model.Submission{
			TaskID:    taskID,
			StudentID: studentID,
			FilePath:  path,
		}
		if err := s.submissions.Create(ctx, sub); err != nil {
			return nil, fmt.Errorf("create submission: %w", err)
		}
		return sub, nil
	default:
		return nil, fmt.Errorf("load submission: %w", err)
	}
}

// Submissions lists all submissions for a task with student info.
func (s *TaskService) Submissions(ctx context.Context, taskID uuid.UUID) ([]model.Submission, error) {
	if _, err := s.Get(ctx, taskID); err != nil {
		return nil, err
	}
	return s.submissions.ListByTask(ctx, taskID)
}

// MySubmission retrieves the student's own submission for a task.
func (s *TaskService) MySubmission(ctx context.Context, taskID, studentID uuid.UUID) (*model.Submission, error) {
	sub, err := s.submissions.GetByTaskAndStudent(ctx, taskID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("load submission: %w", err)
	}
	return sub, nil
}

// Grade sets the grade on a submission.
func (s *TaskService) Grade(ctx context.Context, submissionID uuid.UUID, grade float64) (*model.Submission, error) {
	sub, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("load submission: %w", err)
	}
	sub.Grade = &grade
	if err := s.submissions.Update(ctx, sub); err != nil {
		return nil, fmt.Errorf("grade submission: %w", err)
	}
	return sub, nil
}

// DeleteSubmission lets a student withdraw their own ungraded submission.
func (s *TaskService) DeleteSubmission(ctx context.Context, submissionID, studentID uuid.UUID) error {
	sub, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubmissionNotFound
		}
		return fmt.Errorf("load submission: %w", err)
	}
	if sub.StudentID != studentID {
		return ErrNotSubmissionOwner
	}
	if sub.Grade != nil {
		return ErrSubmissionGraded
	}
	if err := s.submissions.Delete(ctx, submissionID); err != nil {
		return fmt.Errorf("delete submission: %w", err)
	}
	if err := s.storage.Remove(sub.FilePath); err != nil {
		s.log.Warn().Err(err).Str("submission_id", submissionID.String()).Msg("File cleanup failed")
	}
	return nil
}
