package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/nevtik/eduvate-backend/internal/model"
	"gorm.io/gorm"
)

// SubmissionRepository handles task submission data access.
type SubmissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository creates a new SubmissionRepository.
func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Create inserts a new submission.
func (r *SubmissionRepository) Create(ctx context.Context, s *model.Submission) error {
	return r.db.WithContext(ctx).Create(s).Error
}

// GetByID retrieves a submission by ID.
func (r *SubmissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Submission, error) {
	s := &model.Submission{}
	if err := r.db.WithContext(ctx).First(s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// GetByTaskAndStudent retrieves a student's submission for a task.
func (r *SubmissionRepository) GetByTaskAndStudent(ctx context.Context, taskID, studentID uuid.UUID) (*model.Submission, error) {
	s := &model.Submission{}
	err := r.db.WithContext(ctx).
		Where("task_id = ? AND student_id = ?", taskID, studentID).
		First(s).Error
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ListByTask retrieves all submissions for a task with student info.
func (r *SubmissionRepository) ListByTask(ctx context.Context, taskID uuid.UUID) ([]model.Submission, error) {
	var subs []model.Submission
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("task_id = ?", taskID).
		Order("created_at ASC").
		Find(&subs).Error
	return subs, err
}

// Update persists changes to a submission row.
func (r *SubmissionRepository) Update(ctx context.Context, s *model.Submission) error {
	return r.db.WithContext(ctx).Save(s).Error
}

// Delete removes a submission by ID.
func (r *SubmissionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Submission{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AverageGrades aggregates each student's mean grade over graded
// submissions.
func (r *SubmissionRepository) AverageGrades(ctx context.Context) ([]StudentAverage, error) {
	var rows []StudentAverage
	err := r.db.WithContext(ctx).
		Model(&model.Submission{}).
		Select("student_id, AVG(grade) AS average").
		Where("grade IS NOT NULL").
		Group("student_id").
		Scan(&rows).Error
	return rows, err
}

// AverageGradeByStudent returns one student's mean grade over graded
// submissions, with zero when none exist.
func (r *SubmissionRepository) AverageGradeByStudent(ctx context.Context, studentID uuid.UUID) (float64, error) {
	var avg *float64
	err := r.db.WithContext(ctx).
		Model(&model.Submission{}).
		Select("AVG(grade)").
		Where("student_id = ? AND grade IS NOT NULL", studentID).
		Scan(&avg).Error
	if err != nil || avg == nil {
		return 0, err
	}
	return *avg, nil
}

// CountPendingForStudent counts tasks the student has not submitted to.
func (r *SubmissionRepository) CountPendingForStudent(ctx context.Context, studentID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Task{}).
		Where("id NOT IN (?)", r.db.Model(&model.Submission{}).
			Select("task_id").
			Where("student_id = ?", studentID)).
		Count(&n).Error
	return n, err
}
