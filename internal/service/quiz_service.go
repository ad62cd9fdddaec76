package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nevtik/eduvate-backend/internal/model"
	"github.com/nevtik/eduvate-backend/internal/repository"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Common quiz management errors.
var (
	ErrNotQuizAuthor     = errors.New("caller is not the quiz author")
	ErrInvalidQuestion   = errors.New("invalid question definition")
	ErrInvalidQuizWindow = errors.New("submission start must precede the deadline")
)

// QuizResultRow is one student's line in the quiz results listing.
type QuizResultRow struct {
	AttemptID   uuid.UUID  `json:"attempt_id"`
	StudentID   uuid.UUID  `json:"student_id"`
	StudentName string     `json:"student_name"`
	Score       float64    `json:"score"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
}

// QuizResults aggregates completed attempts for staff review.
type QuizResults struct {
	QuizTitle        string          `json:"quiz_title"`
	Attempts         []QuizResultRow `json:"attempts"`
	ParticipantCount int             `json:"participant_count"`
	AverageScore     float64         `json:"average_score"`
}

// QuizService handles quiz CRUD and results for staff.
type QuizService struct {
	quizzes  *repository.QuizRepository
	attempts *repository.AttemptRepository
	log      zerolog.Logger
}

// NewQuizService creates a new QuizService.
func NewQuizService(quizzes *repository.QuizRepository, attempts *repository.AttemptRepository, log zerolog.Logger) *QuizService {
	return &QuizService{
		quizzes:  quizzes,
		attempts: attempts,
		log:      log.With().Str("component", "quiz_service").Logger(),
	}
}

// Create validates the submission window and question set, then inserts the
// quiz.
func (s *QuizService) Create(ctx context.Context, authorID uuid.UUID, req *model.CreateQuizRequest) (*model.Quiz, error) {
	if err := validateWindow(req.SubmissionStartDate, req.Deadline); err != nil {
		return nil, err
	}
	questions, err := buildQuestions(req.Questions)
	if err != nil {
		return nil, err
	}

	quiz := &model.Quiz{
		Title:               req.Title,
		Description:         req.Description,
		DurationMinutes:     req.DurationMinutes,
		SubmissionStartDate: req.SubmissionStartDate,
		Deadline:            req.Deadline,
		AuthorID:            authorID,
		Questions:           questions,
	}

	if err := s.quizzes.Create(ctx, quiz); err != nil {
		return nil, fmt.Errorf("create quiz: %w", err)
	}

	s.log.Info().Str("quiz_id", quiz.ID.String()).Msg("Quiz created")
	return quiz, nil
}

// validateWindow rejects a submission window whose start does not precede
// the deadline. A nil start means the quiz opens immediately, so only the
// deadline bounds it.
func validateWindow(start *time.Time, deadline time.Time) error {
	if start != nil && !start.Before(deadline) {
		return ErrInvalidQuizWindow
	}
	return nil
}

// buildQuestions validates every question definition. MULTIPLE_CHOICE and
// TRUE_FALSE questions need a non-empty option list with at least one
// correct option; ESSAY questions carry keywords instead.
func buildQuestions(inputs []model.QuestionInput) ([]model.Question, error) {
	questions := make([]model.Question, 0, len(inputs))
	for i, in := range inputs {
		switch in.Type {
		case model.QuestionMultipleChoice, model.QuestionTrueFalse:
			if len(in.Options) == 0 {
				return nil, fmt.Errorf("%w: question %d has no options", ErrInvalidQuestion, i+1)
			}
			hasCorrect := false
			for j, opt := range in.Options {
				if opt.Text == "" {
					return nil, fmt.Errorf("%w: question %d option %d has empty text", ErrInvalidQuestion, i+1, j+1)
				}
				if opt.IsCorrect {
					hasCorrect = true
				}
			}
			if !hasCorrect {
				return nil, fmt.Errorf("%w: question %d has no correct option", ErrInvalidQuestion, i+1)
			}
		case model.QuestionEssay:
			// Keywords may legitimately be empty; such a question simply
			// never grades correct.
		}
		questions = append(questions, model.Question{
			Text:           in.Text,
			Type:           in.Type,
			Options:        in.Options,
			AnswerKeywords: in.AnswerKeywords,
		})
	}
	return questions, nil
}

// List retrieves all quizzes without questions.
func (s *QuizService) List(ctx context.Context) ([]model.Quiz, error) {
	return s.quizzes.List(ctx)
}

// Get retrieves a quiz with full questions, including grading keys. Staff
// only; students receive the sanitized paper through the attempt engine.
func (s *QuizService) Get(ctx context.Context, id uuid.UUID) (*model.Quiz, error) {
	quiz, err := s.quizzes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("load quiz: %w", err)
	}
	return quiz, nil
}

// Update replaces quiz metadata and its question set. Only the author or an
// admin may update.
func (s *QuizService) Update(ctx context.Context, id, callerID uuid.UUID, callerRole model.Role, req *model.UpdateQuizRequest) (*model.Quiz, error) {
	quiz, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if quiz.AuthorID != callerID && callerRole != model.RoleAdmin {
		return nil, ErrNotQuizAuthor
	}

	if err := validateWindow(req.SubmissionStartDate, req.Deadline); err != nil {
		return nil, err
	}
	questions, err := buildQuestions(req.Questions)
	if err != nil {
		return nil, err
	}
	for i := range questions {
		questions[i].QuizID = quiz.ID
	}

	quiz.Title = req.Title
	quiz.Description = req.Description
	quiz.DurationMinutes = req.DurationMinutes
	quiz.SubmissionStartDate = req.SubmissionStartDate
	quiz.Deadline = req.Deadline

	if err := s.quizzes.Replace(ctx, quiz, questions); err != nil {
		return nil, fmt.Errorf("replace quiz: %w", err)
	}
	return s.Get(ctx, id)
}

// Delete removes a quiz. Only the author or an admin may delete.
func (s *QuizService) Delete(ctx context.Context, id, callerID uuid.UUID, callerRole model.Role) error {
	quiz, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if quiz.AuthorID != callerID && callerRole != model.RoleAdmin {
		return ErrNotQuizAuthor
	}
	return s.quizzes.Delete(ctx, id)
}

// Results lists completed attempts for a quiz, best score first, with
// participation stats.
func (s *QuizService) Results(ctx context.Context, quizID uuid.UUID) (*QuizResults, error) {
	quiz, err := s.Get(ctx, quizID)
	if err != nil {
		return nil, err
	}

	attempts, err := s.attempts.ListCompletedByQuiz(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}

	rows := make([]QuizResultRow, 0, len(attempts))
	sum := 0.0
	for _, a := range attempts {
		name := ""
		if a.Student != nil {
			name = a.Student.Name
		}
		rows = append(rows, QuizResultRow{
			AttemptID:   a.ID,
			StudentID:   a.StudentID,
			StudentName: name,
			Score:       a.Score,
			SubmittedAt: a.SubmittedAt,
		})
		sum += a.Score
	}

	avg := 0.0
	if len(attempts) > 0 {
		avg = sum / float64(len(attempts))
	}

	return &QuizResults{
		QuizTitle:        quiz.Title,
		Attempts:         rows,
		ParticipantCount: len(attempts),
		AverageScore:     avg,
	}, nil
}
