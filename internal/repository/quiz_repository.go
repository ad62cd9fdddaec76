package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/nevtik/eduvate-backend/internal/model"
	"gorm.io/gorm"
)

// QuizRepository handles quiz and question data access.
type QuizRepository struct {
	db *gorm.DB
}

// NewQuizRepository creates a new QuizRepository.
func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{db: db}
}

// Create inserts a quiz with its questions in one transaction.
func (r *QuizRepository) Create(ctx context.Context, quiz *model.Quiz) error {
	return r.db.WithContext(ctx).Create(quiz).Error
}

// GetByID retrieves a quiz with its questions.
func (r *QuizRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Quiz, error) {
	quiz := &model.Quiz{}
	err := r.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.created_at ASC")
		}).
		First(quiz, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return quiz, nil
}

// List retrieves all quizzes without their questions, newest first.
func (r *QuizRepository) List(ctx context.Context) ([]model.Quiz, error) {
	var quizzes []model.Quiz
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&quizzes).Error
	return quizzes, err
}

// Replace updates quiz metadata and swaps the full question set in one
// transaction. Existing attempts keep referencing the old question IDs and
// are left untouched.
func (r *QuizRepository) Replace(ctx context.Context, quiz *model.Quiz, questions []model.Question) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Quiz{}).
			Where("id = ?", quiz.ID).
			Updates(map[string]any{
				"title":                 quiz.Title,
				"description":           quiz.Description,
				"duration_minutes":      quiz.DurationMinutes,
				"submission_start_date": quiz.SubmissionStartDate,
				"deadline":              quiz.Deadline,
			}).Error; err != nil {
			return err
		}
		if err := tx.Where("quiz_id = ?", quiz.ID).Delete(&model.Question{}).Error; err != nil {
			return err
		}
		if len(questions) > 0 {
			if err := tx.Create(&questions).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a quiz; questions and attempts cascade.
func (r *QuizRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Quiz{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
