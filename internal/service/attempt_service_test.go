package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nevtik/eduvate-backend/internal/model"
	"github.com/nevtik/eduvate-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAttemptFixture(t *testing.T) (*AttemptService, *gorm.DB, *model.User, *model.Quiz) {
	t.Helper()
	db := newTestDB(t)

	mentor := createTestUser(t, db, "Bu Rina", model.RoleMentor)
	student := createTestUser(t, db, "Andi", model.RoleStudent)

	quiz := createTestQuiz(t, db, mentor.ID, []model.Question{
		mcQuestion(0),
		mcQuestion(1),
		{Text: "Jelaskan fungsi router", Type: model.QuestionEssay, AnswerKeywords: "meneruskan, routing"},
	})

	svc := NewAttemptService(
		repository.NewAttemptRepository(db),
		repository.NewQuizRepository(db),
		testLogger(),
	)
	return svc, db, student, quiz
}

func TestStartOrResumeCreatesAttempt(t *testing.T) {
	svc, _, student, quiz := newAttemptFixture(t)
	ctx := context.Background()

	payload, err := svc.StartOrResume(ctx, quiz.ID, student.ID)
	require.NoError(t, err)

	assert.Equal(t, quiz.ID, payload.Quiz.ID)
	assert.Equal(t, model.AttemptInProgress, payload.Attempt.Status)
	assert.Len(t, payload.Questions, 3)
	assert.Len(t, payload.Attempt.Progress.QuestionOrder, 3)

	// The paper is sanitized: no grading keys anywhere.
	for _, q := range payload.Questions {
		for _, opt := range q.Options {
			assert.NotEmpty(t, opt.Text)
		}
	}
}

func TestStartOrResumeKeepsQuestionOrder(t *testing.T) {
	svc, _, student, quiz := newAttemptFixture(t)
	ctx := context.Background()

	first, err := svc.StartOrResume(ctx, quiz.ID, student.ID)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := svc.StartOrResume(ctx, quiz.ID, student.ID)
		require.NoError(t, err)
		assert.Equal(t, first.Attempt.ID, again.Attempt.ID)
		assert.Equal(t, first.Attempt.Progress.QuestionOrder, again.Attempt.Progress.QuestionOrder)
	}
}

func TestStartOrResumeOutsideWindow(t *testing.T) {
	svc, db, student, _ := newAttemptFixture(t)
	ctx := context.Background()

	mentor := createTestUser(t, db, "Pak Budi", model.RoleMentor)
	closed := &model.Quiz{
		Title:               "Kuis Lampau",
		SubmissionStartDate: timePtr(time.Now().Add(-48 * time.Hour)),
		Deadline:            time.Now().Add(-24 * time.Hour),
		AuthorID:            mentor.ID,
		Questions:           []model.Question{mcQuestion(0)},
	}
	require.NoError(t, db.Create(closed).Error)

	_, err := svc.StartOrResume(ctx, closed.ID, student.ID)
	assert.ErrorIs(t, err, ErrQuizNotOpen)

	future := &model.Quiz{
		Title:               "Kuis Mendatang",
		SubmissionStartDate: timePtr(time.Now().Add(24 * time.Hour)),
		Deadline:            time.Now().Add(48 * time.Hour),
		AuthorID:            mentor.ID,
		Questions:           []model.Question{mcQuestion(0)},
	}
	require.NoError(t, db.Create(future).Error)

	_, err = svc.StartOrResume(ctx, future.ID, student.ID)
	assert.ErrorIs(t, err, ErrQuizNotOpen)
}

func TestStartOrResumeWithoutStartBound(t *testing.T) {
	svc, db, student, _ := newAttemptFixture(t)
	ctx := context.Background()

	// No start bound means the quiz opens immediately.
	mentor := createTestUser(t, db, "Pak Dedi", model.RoleMentor)
	open := &model.Quiz{
		Title:     "Kuis Terbuka",
		Deadline:  time.Now().Add(time.Hour),
		AuthorID:  mentor.ID,
		Questions: []model.Question{mcQuestion(0)},
	}
	require.NoError(t, db.Create(open).Error)

	payload, err := svc.StartOrResume(ctx, open.ID, student.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AttemptInProgress, payload.Attempt.Status)
}

func TestStartOrResumeUnknownQuiz(t *testing.T) {
	svc, _, student, _ := newAttemptFixture(t)

	_, err := svc.StartOrResume(context.Background(), uuid.New(), student.ID)
	assert.ErrorIs(t, err, ErrQuizNotFound)
}

func TestStartOrResumeBlockedAfterCompletion(t *testing.T) {
	svc, _, student, quiz := newAttemptFixture(t)
	ctx := context.Background()

	_, err := svc.StartOrResume(ctx, quiz.ID, student.ID)
	require.NoError(t, err)

	_, err = svc.Submit(ctx, quiz.ID, student.ID, &model.SubmitAttemptRequest{})
	require.NoError(t, err)

	_, err = svc.StartOrResume(ctx, quiz.ID, student.ID)
	assert.ErrorIs(t, err, ErrAttemptCompleted)
}

func TestSaveProgress(t *testing.T) {
	svc, _, student, quiz := newAttemptFixture(t)
	ctx := context.Background()

	payload, err := svc.StartOrResume(ctx, quiz.ID, student.ID)
	require.NoError(t, err)
	attemptID := payload.Attempt.ID
	questionID := payload.Questions[0].ID.String()

	t.Run("stores answers and counters", func(t *testing.T) {
		attempt, err := svc.SaveProgress(ctx, attemptID, student.ID, &model.SaveProgressRequest{
			Progress: &model.ProgressPatch{
				Answers: map[string]model.AnswerPatch{
					questionID: {IsAnswered: boolPtr(true), SelectedOptionIndex: intPtr(1)},
				},
			},
			ViolationCount: intPtr(2),
		})
		require.NoError(t, err)
		assert.Equal(t, 2, attempt.ViolationCount)
		assert.Contains(t, attempt.Progress.Answers, questionID)
	})

	t.Run("omitted fields keep stored values", func(t *testing.T) {
		attempt, err := svc.SaveProgress(ctx, attemptID, student.ID, &model.SaveProgressRequest{})
		require.NoError(t, err)
		assert.Equal(t, 2, attempt.ViolationCount)
		assert.Contains(t, attempt.Progress.Answers, questionID)
	})

	t.Run("question order survives saves", func(t *testing.T) {
		attempt, err := svc.SaveProgress(ctx, attemptID, student.ID, &model.SaveProgressRequest{
			Progress: &model.ProgressPatch{Answers: map[string]model.AnswerPatch{}},
		})
		require.NoError(t, err)
		assert.Equal(t, payload.Attempt.Progress.QuestionOrder, attempt.Progress.QuestionOrder)
	})

	t.Run("unknown question rejected", func(t *testing.T) {
		_, err := svc.SaveProgress(ctx, attemptID, student.ID, &model.SaveProgressRequest{
			Progress: &model.ProgressPatch{
				Answers: map[string]model.AnswerPatch{
					uuid.New().String(): {IsAnswered: boolPtr(true)},
				},
			},
		})
		assert.ErrorIs(t, err, ErrInvalidProgress)
	})

	t.Run("missing isAnswered rejected", func(t *testing.T) {
		_, err := svc.SaveProgress(ctx, attemptID, student.ID, &model.SaveProgressRequest{
			Progress: &model.ProgressPatch{
				Answers: map[string]model.AnswerPatch{
					questionID: {SelectedOptionIndex: intPtr(0)},
				},
			},
		})
		assert.ErrorIs(t, err, ErrInvalidProgress)
	})

	t.Run("option index out of range rejected", func(t *testing.T) {
		_, err := svc.SaveProgress(ctx, attemptID, student.ID, &model.SaveProgressRequest{
			Progress: &model.ProgressPatch{
				Answers: map[string]model.AnswerPatch{
					questionID: {IsAnswered: boolPtr(true), SelectedOptionIndex: intPtr(99)},
				},
			},
		})
		assert.ErrorIs(t, err, ErrInvalidProgress)
	})

	t.Run("timeLeft on untimed quiz rejected", func(t *testing.T) {
		_, err := svc.SaveProgress(ctx, attemptID, student.ID, &model.SaveProgressRequest{
			TimeLeftInSeconds: intPtr(120),
		})
		assert.ErrorIs(t, err, ErrInvalidProgress)
	})

	t.Run("negative violation count rejected", func(t *testing.T) {
		_, err := svc.SaveProgress(ctx, attemptID, student.ID, &model.SaveProgressRequest{
			ViolationCount: intPtr(-1),
		})
		assert.ErrorIs(t, err, ErrInvalidProgress)
	})

	t.Run("other students cannot save", func(t *testing.T) {
		_, err := svc.SaveProgress(ctx, attemptID, uuid.New(), &model.SaveProgressRequest{})
		assert.ErrorIs(t, err, ErrNotAttemptOwner)
	})
}

func TestSaveProgressTimedQuiz(t *testing.T) {
	svc, db, student, _ := newAttemptFixture(t)
	ctx := context.Background()

	mentor := createTestUser(t, db, "Pak Eko", model.RoleMentor)
	timed := &model.Quiz{
		Title:               "Kuis Berwaktu",
		DurationMinutes:     intPtr(10),
		SubmissionStartDate: timePtr(time.Now().Add(-time.Hour)),
		Deadline:            time.Now().Add(time.Hour),
		AuthorID:            mentor.ID,
		Questions:           []model.Question{mcQuestion(0)},
	}
	require.NoError(t, db.Create(timed).Error)

	payload, err := svc.StartOrResume(ctx, timed.ID, student.ID)
	require.NoError(t, err)
	require.NotNil(t, payload.Attempt.TimeLeftInSeconds)
	assert.Equal(t, 600, *payload.Attempt.TimeLeftInSeconds)

	attempt, err := svc.SaveProgress(ctx, payload.Attempt.ID, student.ID, &model.SaveProgressRequest{
		TimeLeftInSeconds: intPtr(300),
	})
	require.NoError(t, err)
	assert.Equal(t, 300, *attempt.TimeLeftInSeconds)

	_, err = svc.SaveProgress(ctx, payload.Attempt.ID, student.ID, &model.SaveProgressRequest{
		TimeLeftInSeconds: intPtr(601),
	})
	assert.ErrorIs(t, err, ErrInvalidProgress)

	_, err = svc.SaveProgress(ctx, payload.Attempt.ID, student.ID, &model.SaveProgressRequest{
		TimeLeftInSeconds: intPtr(-1),
	})
	assert.ErrorIs(t, err, ErrInvalidProgress)
}

func TestSubmitGradesAndCompletes(t *testing.T) {
	svc, db, student, quiz := newAttemptFixture(t)
	ctx := context.Background()

	payload, err := svc.StartOrResume(ctx, quiz.ID, student.ID)
	require.NoError(t, err)

	var loaded model.Quiz
	require.NoError(t, db.Preload("Questions").First(&loaded, "id = ?", quiz.ID).Error)

	var answers []model.SubmitAnswerInput
	for _, q := range loaded.Questions {
		switch q.Type {
		case model.QuestionMultipleChoice:
			for i, opt := range q.Options {
				if opt.IsCorrect {
					answers = append(answers, model.SubmitAnswerInput{QuestionID: q.ID, SelectedOptionIndex: intPtr(i)})
				}
			}
		case model.QuestionEssay:
			answers = append(answers, model.SubmitAnswerInput{QuestionID: q.ID, AnswerText: strPtr("Router bertugas meneruskan paket")})
		}
	}

	result, err := svc.Submit(ctx, quiz.ID, student.ID, &model.SubmitAttemptRequest{Answers: answers})
	require.NoError(t, err)
	assert.Equal(t, 3, result.CorrectCount)
	assert.Equal(t, 3, result.TotalQuestions)
	assert.Equal(t, 100.0, result.Score)

	var attempt model.QuizAttempt
	require.NoError(t, db.First(&attempt, "id = ?", payload.Attempt.ID).Error)
	assert.Equal(t, model.AttemptCompleted, attempt.Status)
	assert.Equal(t, 100.0, attempt.Score)
	require.NotNil(t, attempt.SubmittedAt)

	var count int64
	require.NoError(t, db.Model(&model.QuizAnswer{}).Where("quiz_attempt_id = ?", attempt.ID).Count(&count).Error)
	assert.EqualValues(t, 3, count)
}

func TestSubmitPartialAnswers(t *testing.T) {
	svc, db, student, quiz := newAttemptFixture(t)
	ctx := context.Background()

	_, err := svc.StartOrResume(ctx, quiz.ID, student.ID)
	require.NoError(t, err)

	var loaded model.Quiz
	require.NoError(t, db.Preload("Questions").First(&loaded, "id = ?", quiz.ID).Error)

	// Answer only the first MC question correctly; skip the rest.
	var answers []model.SubmitAnswerInput
	for _, q := range loaded.Questions {
		if q.Type != model.QuestionMultipleChoice {
			continue
		}
		for i, opt := range q.Options {
			if opt.IsCorrect {
				answers = []model.SubmitAnswerInput{
					{QuestionID: q.ID, SelectedOptionIndex: intPtr(i)},
				}
			}
		}
		break
	}

	result, err := svc.Submit(ctx, quiz.ID, student.ID, &model.SubmitAttemptRequest{Answers: answers})
	require.NoError(t, err)
	assert.Equal(t, 1, result.CorrectCount)
	assert.Equal(t, 3, result.TotalQuestions)
	assert.Equal(t, 33.33, result.Score)
}

func TestSubmitSkipsUnknownQuestions(t *testing.T) {
	svc, db, student, quiz := newAttemptFixture(t)
	ctx := context.Background()

	payload, err := svc.StartOrResume(ctx, quiz.ID, student.ID)
	require.NoError(t, err)

	result, err := svc.Submit(ctx, quiz.ID, student.ID, &model.SubmitAttemptRequest{
		Answers: []model.SubmitAnswerInput{
			{QuestionID: uuid.New(), SelectedOptionIndex: intPtr(0)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.CorrectCount)

	var count int64
	require.NoError(t, db.Model(&model.QuizAnswer{}).Where("quiz_attempt_id = ?", payload.Attempt.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestSubmitTwiceFails(t *testing.T) {
	svc, _, student, quiz := newAttemptFixture(t)
	ctx := context.Background()

	_, err := svc.StartOrResume(ctx, quiz.ID, student.ID)
	require.NoError(t, err)

	_, err = svc.Submit(ctx, quiz.ID, student.ID, &model.SubmitAttemptRequest{})
	require.NoError(t, err)

	_, err = svc.Submit(ctx, quiz.ID, student.ID, &model.SubmitAttemptRequest{})
	assert.ErrorIs(t, err, ErrAttemptNotFound)
}

func TestSubmitWithoutAttemptFails(t *testing.T) {
	svc, _, student, quiz := newAttemptFixture(t)

	_, err := svc.Submit(context.Background(), quiz.ID, student.ID, &model.SubmitAttemptRequest{})
	assert.ErrorIs(t, err, ErrAttemptNotFound)
}

func TestMyResult(t *testing.T) {
	svc, _, student, quiz := newAttemptFixture(t)
	ctx := context.Background()

	_, err := svc.MyResult(ctx, quiz.ID, student.ID)
	assert.ErrorIs(t, err, ErrAttemptNotFound)

	_, err = svc.StartOrResume(ctx, quiz.ID, student.ID)
	require.NoError(t, err)

	// An in-progress attempt is not a result yet.
	_, err = svc.MyResult(ctx, quiz.ID, student.ID)
	assert.ErrorIs(t, err, ErrAttemptNotFound)

	_, err = svc.Submit(ctx, quiz.ID, student.ID, &model.SubmitAttemptRequest{})
	require.NoError(t, err)

	attempt, err := svc.MyResult(ctx, quiz.ID, student.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AttemptCompleted, attempt.Status)
}

func TestDeleteAttemptAllowsRetake(t *testing.T) {
	svc, _, student, quiz := newAttemptFixture(t)
	ctx := context.Background()

	first, err := svc.StartOrResume(ctx, quiz.ID, student.ID)
	require.NoError(t, err)

	_, err = svc.Submit(ctx, quiz.ID, student.ID, &model.SubmitAttemptRequest{})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, first.Attempt.ID))

	second, err := svc.StartOrResume(ctx, quiz.ID, student.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.Attempt.ID, second.Attempt.ID)
	assert.Equal(t, model.AttemptInProgress, second.Attempt.Status)

	assert.ErrorIs(t, svc.Delete(ctx, uuid.New()), ErrAttemptNotFound)
}
