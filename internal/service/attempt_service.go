package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/nevtik/eduvate-backend/internal/model"
	"github.com/nevtik/eduvate-backend/internal/repository"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Common attempt engine errors.
var (
	ErrQuizNotFound     = errors.New("quiz not found")
	ErrQuizNotOpen      = errors.New("quiz is outside its submission window")
	ErrAttemptCompleted = errors.New("attempt already completed")
	ErrAttemptNotFound  = errors.New("no attempt in progress")
	ErrNotAttemptOwner  = errors.New("attempt belongs to another student")
	ErrInvalidProgress  = errors.New("invalid progress payload")
)

// QuizMeta is the quiz header returned to a student taking the quiz.
type QuizMeta struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	DurationMinutes *int      `json:"duration_minutes,omitempty"`
}

// SanitizedOption is an option with its grading key stripped.
type SanitizedOption struct {
	Text string `json:"text"`
}

// SanitizedQuestion is a question safe to hand to a student mid-attempt:
// no isCorrect flags, no answer keywords.
type SanitizedQuestion struct {
	ID      uuid.UUID          `json:"id"`
	Text    string             `json:"text"`
	Type    model.QuestionType `json:"type"`
	Options []SanitizedOption  `json:"options,omitempty"`
}

// AttemptState is the attempt snapshot returned alongside the paper.
type AttemptState struct {
	ID                uuid.UUID             `json:"id"`
	Status            model.AttemptStatus   `json:"status"`
	TimeLeftInSeconds *int                  `json:"time_left_in_seconds,omitempty"`
	Progress          model.AttemptProgress `json:"progress"`
	ViolationCount    int                   `json:"violation_count"`
}

// StartOrResumePayload is the full response of the start/resume operation.
type StartOrResumePayload struct {
	Quiz      QuizMeta            `json:"quiz"`
	Questions []SanitizedQuestion `json:"questions"`
	Attempt   AttemptState        `json:"attempt"`
}

// SubmitResult summarizes a graded submission.
type SubmitResult struct {
	AttemptID      uuid.UUID `json:"attempt_id"`
	Score          float64   `json:"score"`
	CorrectCount   int       `json:"correct_count"`
	TotalQuestions int       `json:"total_questions"`
}

// AttemptService implements the quiz attempt state machine:
// NONE → IN_PROGRESS → COMPLETED, one attempt per (quiz, student).
type AttemptService struct {
	attempts *repository.AttemptRepository
	quizzes  *repository.QuizRepository
	log      zerolog.Logger
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(attempts *repository.AttemptRepository, quizzes *repository.QuizRepository, log zerolog.Logger) *AttemptService {
	return &AttemptService{
		attempts: attempts,
		quizzes:  quizzes,
		log:      log.With().Str("component", "attempt_service").Logger(),
	}
}

// StartOrResume opens the quiz for a student. An existing IN_PROGRESS
// attempt is returned unchanged; a COMPLETED attempt blocks re-entry. On
// first entry a fresh attempt is created with a shuffled question order
// that is persisted so every later entry sees the same paper.
func (s *AttemptService) StartOrResume(ctx context.Context, quizID, studentID uuid.UUID) (*StartOrResumePayload, error) {
	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("load quiz: %w", err)
	}

	// A quiz without a start bound opens immediately.
	now := time.Now()
	if quiz.SubmissionStartDate != nil && now.Before(*quiz.SubmissionStartDate) {
		return nil, ErrQuizNotOpen
	}
	if now.After(quiz.Deadline) {
		return nil, ErrQuizNotOpen
	}

	attempt, err := s.attempts.GetByQuizAndStudent(ctx, quizID, studentID)
	switch {
	case err == nil:
		if attempt.Status == model.AttemptCompleted {
			return nil, ErrAttemptCompleted
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		attempt, err = s.createAttempt(ctx, quiz, studentID)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("load attempt: %w", err)
	}

	return s.buildPayload(quiz, attempt), nil
}

// createAttempt inserts a fresh attempt. When two requests race, the unique
// (quiz, student) index rejects the loser, which then resumes the winner's
// row instead of surfacing an error.
func (s *AttemptService) createAttempt(ctx context.Context, quiz *model.Quiz, studentID uuid.UUID) (*model.QuizAttempt, error) {
	order := make([]string, len(quiz.Questions))
	for i, q := range quiz.Questions {
		order[i] = q.ID.String()
	}
	rand.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	var timeLeft *int
	if quiz.DurationMinutes != nil {
		seconds := *quiz.DurationMinutes * 60
		timeLeft = &seconds
	}

	attempt := &model.QuizAttempt{
		QuizID:            quiz.ID,
		StudentID:         studentID,
		Status:            model.AttemptInProgress,
		Score:             0,
		TimeLeftInSeconds: timeLeft,
		Progress: model.AttemptProgress{
			Answers:       map[string]model.AnswerState{},
			QuestionOrder: order,
		},
	}

	if err := s.attempts.Create(ctx, attempt); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, readErr := s.attempts.GetByQuizAndStudent(ctx, quiz.ID, studentID)
			if readErr != nil {
				return nil, fmt.Errorf("re-read attempt after conflict: %w", readErr)
			}
			if existing.Status == model.AttemptCompleted {
				return nil, ErrAttemptCompleted
			}
			return existing, nil
		}
		return nil, fmt.Errorf("create attempt: %w", err)
	}

	s.log.Info().
		Str("quiz_id", quiz.ID.String()).
		Str("student_id", studentID.String()).
		Msg("Attempt started")

	return attempt, nil
}

// buildPayload sanitizes the questions and orders them by the attempt's
// persisted question order. Questions added to the quiz after the attempt
// started trail the ordered set.
func (s *AttemptService) buildPayload(quiz *model.Quiz, attempt *model.QuizAttempt) *StartOrResumePayload {
	byID := make(map[string]model.Question, len(quiz.Questions))
	for _, q := range quiz.Questions {
		byID[q.ID.String()] = q
	}

	questions := make([]SanitizedQuestion, 0, len(quiz.Questions))
	seen := make(map[string]bool, len(quiz.Questions))
	for _, id := range attempt.Progress.QuestionOrder {
		q, ok := byID[id]
		if !ok {
			continue // question removed after the attempt started
		}
		questions = append(questions, sanitizeQuestion(q))
		seen[id] = true
	}
	for _, q := range quiz.Questions {
		if !seen[q.ID.String()] {
			questions = append(questions, sanitizeQuestion(q))
		}
	}

	return &StartOrResumePayload{
		Quiz: QuizMeta{
			ID:              quiz.ID,
			Title:           quiz.Title,
			Description:     quiz.Description,
			DurationMinutes: quiz.DurationMinutes,
		},
		Questions: questions,
		Attempt: AttemptState{
			ID:                attempt.ID,
			Status:            attempt.Status,
			TimeLeftInSeconds: attempt.TimeLeftInSeconds,
			Progress:          attempt.Progress,
			ViolationCount:    attempt.ViolationCount,
		},
	}
}

func sanitizeQuestion(q model.Question) SanitizedQuestion {
	sq := SanitizedQuestion{
		ID:   q.ID,
		Text: q.Text,
		Type: q.Type,
	}
	for _, opt := range q.Options {
		sq.Options = append(sq.Options, SanitizedOption{Text: opt.Text})
	}
	return sq
}

// SaveProgress applies a partial autosave to a running attempt. Omitted
// fields keep their stored values, so the call is idempotent. The question
// order is server-owned and never overwritten.
func (s *AttemptService) SaveProgress(ctx context.Context, attemptID, studentID uuid.UUID, req *model.SaveProgressRequest) (*model.QuizAttempt, error) {
	attempt, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("load attempt: %w", err)
	}

	if attempt.StudentID != studentID {
		return nil, ErrNotAttemptOwner
	}
	if attempt.Status == model.AttemptCompleted {
		return nil, ErrAttemptCompleted
	}

	quiz, err := s.quizzes.GetByID(ctx, attempt.QuizID)
	if err != nil {
		return nil, fmt.Errorf("load quiz: %w", err)
	}

	if req.Progress != nil {
		answers, err := validateAnswers(quiz, req.Progress.Answers)
		if err != nil {
			return nil, err
		}
		attempt.Progress.Answers = answers
	}

	if req.TimeLeftInSeconds != nil {
		v := *req.TimeLeftInSeconds
		if quiz.DurationMinutes == nil {
			return nil, fmt.Errorf("%w: timeLeftInSeconds set on an untimed quiz", ErrInvalidProgress)
		}
		if v < 0 || v > *quiz.DurationMinutes*60 {
			return nil, fmt.Errorf("%w: timeLeftInSeconds out of range", ErrInvalidProgress)
		}
		attempt.TimeLeftInSeconds = req.TimeLeftInSeconds
	}

	if req.ViolationCount != nil {
		if *req.ViolationCount < 0 {
			return nil, fmt.Errorf("%w: violationCount must be >= 0", ErrInvalidProgress)
		}
		attempt.ViolationCount = *req.ViolationCount
	}

	if err := s.attempts.Update(ctx, attempt); err != nil {
		return nil, fmt.Errorf("save attempt: %w", err)
	}
	return attempt, nil
}

// validateAnswers checks every saved answer against the quiz's questions
// and converts the patch into the stored shape.
func validateAnswers(quiz *model.Quiz, patch map[string]model.AnswerPatch) (map[string]model.AnswerState, error) {
	byID := make(map[string]model.Question, len(quiz.Questions))
	for _, q := range quiz.Questions {
		byID[q.ID.String()] = q
	}

	answers := make(map[string]model.AnswerState, len(patch))
	for questionID, a := range patch {
		q, ok := byID[questionID]
		if !ok {
			return nil, fmt.Errorf("%w: unknown question %s", ErrInvalidProgress, questionID)
		}
		if a.IsAnswered == nil {
			return nil, fmt.Errorf("%w: answer for %s is missing isAnswered", ErrInvalidProgress, questionID)
		}
		if a.SelectedOptionIndex != nil {
			idx := *a.SelectedOptionIndex
			if idx < 0 || idx >= len(q.Options) {
				return nil, fmt.Errorf("%w: selectedOptionIndex out of range for %s", ErrInvalidProgress, questionID)
			}
		}
		answers[questionID] = model.AnswerState{
			IsAnswered:          *a.IsAnswered,
			SelectedOptionIndex: a.SelectedOptionIndex,
			EssayAnswer:         a.EssayAnswer,
		}
	}
	return answers, nil
}

// Submit grades the final answers and completes the attempt in one
// transaction. A second submit finds no IN_PROGRESS attempt and fails with
// ErrAttemptNotFound, so completion happens exactly once.
func (s *AttemptService) Submit(ctx context.Context, quizID, studentID uuid.UUID, req *model.SubmitAttemptRequest) (*SubmitResult, error) {
	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("load quiz: %w", err)
	}

	attempt, err := s.attempts.GetByQuizAndStudent(ctx, quizID, studentID)
	if err != nil || attempt.Status != model.AttemptInProgress {
		return nil, ErrAttemptNotFound
	}

	byQuestion := make(map[string]model.SubmitAnswerInput, len(req.Answers))
	for _, a := range req.Answers {
		byQuestion[a.QuestionID.String()] = a
	}

	correct := 0
	var rows []model.QuizAnswer
	for _, q := range quiz.Questions {
		answer, ok := byQuestion[q.ID.String()]
		if !ok {
			continue // unanswered questions count against the score only
		}
		isCorrect := GradeAnswer(q, model.AnswerPatch{
			SelectedOptionIndex: answer.SelectedOptionIndex,
			EssayAnswer:         answer.AnswerText,
		})
		if isCorrect {
			correct++
		}
		rows = append(rows, model.QuizAnswer{
			QuizAttemptID:       attempt.ID,
			QuestionID:          q.ID,
			SelectedOptionIndex: answer.SelectedOptionIndex,
			EssayAnswer:         answer.AnswerText,
			IsCorrect:           isCorrect,
		})
	}

	score := ComputeScore(correct, len(quiz.Questions))

	if err := s.attempts.Complete(ctx, attempt, rows, score); err != nil {
		return nil, fmt.Errorf("complete attempt: %w", err)
	}

	s.log.Info().
		Str("quiz_id", quizID.String()).
		Str("student_id", studentID.String()).
		Float64("score", score).
		Msg("Attempt submitted")

	return &SubmitResult{
		AttemptID:      attempt.ID,
		Score:          score,
		CorrectCount:   correct,
		TotalQuestions: len(quiz.Questions),
	}, nil
}

// MyResult returns the student's completed attempt with its graded answers.
func (s *AttemptService) MyResult(ctx context.Context, quizID, studentID uuid.UUID) (*model.QuizAttempt, error) {
	attempt, err := s.attempts.GetCompletedWithAnswers(ctx, quizID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("load attempt: %w", err)
	}
	return attempt, nil
}

// Delete removes an attempt so the student can retake the quiz.
func (s *AttemptService) Delete(ctx context.Context, attemptID uuid.UUID) error {
	if err := s.attempts.Delete(ctx, attemptID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAttemptNotFound
		}
		return fmt.Errorf("delete attempt: %w", err)
	}
	return nil
}
