package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nevtik/eduvate-backend/internal/model"
	"gorm.io/gorm"
)

// StudentAverage is one student's aggregate over graded work.
type StudentAverage struct {
	StudentID uuid.UUID
	Average   float64
}

// AttemptRepository handles quiz attempt data access.
type AttemptRepository struct {
	db *gorm.DB
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{db: db}
}

// GetByQuizAndStudent retrieves the attempt for a quiz-student pair.
func (r *AttemptRepository) GetByQuizAndStudent(ctx context.Context, quizID, studentID uuid.UUID) (*model.QuizAttempt, error) {
	a := &model.QuizAttempt{}
	err := r.db.WithContext(ctx).
		Where("quiz_id = ? AND student_id = ?", quizID, studentID).
		First(a).Error
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetByID retrieves an attempt by ID.
func (r *AttemptRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.QuizAttempt, error) {
	a := &model.QuizAttempt{}
	if err := r.db.WithContext(ctx).First(a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return a, nil
}

// GetCompletedWithAnswers retrieves a student's completed attempt with its
// graded answer rows.
func (r *AttemptRepository) GetCompletedWithAnswers(ctx context.Context, quizID, studentID uuid.UUID) (*model.QuizAttempt, error) {
	a := &model.QuizAttempt{}
	err := r.db.WithContext(ctx).
		Preload("Answers").
		Where("quiz_id = ? AND student_id = ? AND status = ?", quizID, studentID, model.AttemptCompleted).
		First(a).Error
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Create inserts a new attempt. The unique index on (quiz_id, student_id)
// makes concurrent starts collide; callers re-read the winning row on
// gorm.ErrDuplicatedKey.
func (r *AttemptRepository) Create(ctx context.Context, a *model.QuizAttempt) error {
	return r.db.WithContext(ctx).Create(a).Error
}

// Update persists progress fields of a running attempt.
func (r *AttemptRepository) Update(ctx context.Context, a *model.QuizAttempt) error {
	return r.db.WithContext(ctx).Save(a).Error
}

// Complete finalizes an attempt in one transaction: all previous answer
// rows are dropped, the graded rows inserted, and the attempt flipped to
// COMPLETED with its score.
func (r *AttemptRepository) Complete(ctx context.Context, a *model.QuizAttempt, answers []model.QuizAnswer, score float64) error {
	now := time.Now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quiz_attempt_id = ?", a.ID).Delete(&model.QuizAnswer{}).Error; err != nil {
			return err
		}
		if len(answers) > 0 {
			if err := tx.Create(&answers).Error; err != nil {
				return err
			}
		}
		return tx.Model(&model.QuizAttempt{}).
			Where("id = ?", a.ID).
			Updates(map[string]any{
				"score":        score,
				"status":       model.AttemptCompleted,
				"submitted_at": now,
			}).Error
	})
}

// ListCompletedByQuiz retrieves completed attempts for a quiz with student
// info, best score first and earliest submission breaking ties.
func (r *AttemptRepository) ListCompletedByQuiz(ctx context.Context, quizID uuid.UUID) ([]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("quiz_id = ? AND status = ?", quizID, model.AttemptCompleted).
		Order("score DESC").
		Order("submitted_at ASC").
		Find(&attempts).Error
	return attempts, err
}

// Delete removes an attempt; its answer rows cascade.
func (r *AttemptRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.QuizAttempt{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AverageScores aggregates each student's mean score over completed
// attempts.
func (r *AttemptRepository) AverageScores(ctx context.Context) ([]StudentAverage, error) {
	var rows []StudentAverage
	err := r.db.WithContext(ctx).
		Model(&model.QuizAttempt{}).
		Select("student_id, AVG(score) AS average").
		Where("status = ?", model.AttemptCompleted).
		Group("student_id").
		Scan(&rows).Error
	return rows, err
}

// AverageScoreByStudent returns one student's mean score over completed
// attempts, with zero when none exist.
func (r *AttemptRepository) AverageScoreByStudent(ctx context.Context, studentID uuid.UUID) (float64, error) {
	var avg *float64
	err := r.db.WithContext(ctx).
		Model(&model.QuizAttempt{}).
		Select("AVG(score)").
		Where("student_id = ? AND status = ?", studentID, model.AttemptCompleted).
		Scan(&avg).Error
	if err != nil || avg == nil {
		return 0, err
	}
	return *avg, nil
}

// CountCompletedByStudent counts a student's completed attempts.
func (r *AttemptRepository) CountCompletedByStudent(ctx context.Context, studentID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.QuizAttempt{}).
		Where("student_id = ? AND status = ?", studentID, model.AttemptCompleted).
		Count(&n).Error
	return n, err
}
