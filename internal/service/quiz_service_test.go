package service

import (
	"context"
	"testing"
	"time"

	"github.com/nevtik/eduvate-backend/internal/model"
	"github.com/nevtik/eduvate-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newQuizFixture(t *testing.T) (*QuizService, *gorm.DB, *model.User) {
	t.Helper()
	db := newTestDB(t)
	mentor := createTestUser(t, db, "Bu Rina", model.RoleMentor)
	svc := NewQuizService(
		repository.NewQuizRepository(db),
		repository.NewAttemptRepository(db),
		testLogger(),
	)
	return svc, db, mentor
}

func validQuizRequest() *model.CreateQuizRequest {
	return &model.CreateQuizRequest{
		Title:               "Kuis Sistem Operasi",
		SubmissionStartDate: timePtr(time.Now().Add(-time.Hour)),
		Deadline:            time.Now().Add(time.Hour),
		Questions: []model.QuestionInput{
			{
				Text: "Apa itu proses?",
				Type: model.QuestionMultipleChoice,
				Options: []model.QuestionOption{
					{Text: "Program yang berjalan", IsCorrect: true},
					{Text: "Berkas di disk"},
				},
			},
			{
				Text:           "Jelaskan penjadwalan round robin",
				Type:           model.QuestionEssay,
				AnswerKeywords: "kuantum, antrian",
			},
		},
	}
}

func TestCreateQuiz(t *testing.T) {
	svc, _, mentor := newQuizFixture(t)
	ctx := context.Background()

	quiz, err := svc.Create(ctx, mentor.ID, validQuizRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, quiz.ID)
	assert.Len(t, quiz.Questions, 2)

	loaded, err := svc.Get(ctx, quiz.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Questions, 2)
}

func TestCreateQuizValidatesQuestions(t *testing.T) {
	svc, _, mentor := newQuizFixture(t)
	ctx := context.Background()

	t.Run("choice question needs options", func(t *testing.T) {
		req := validQuizRequest()
		req.Questions[0].Options = nil
		_, err := svc.Create(ctx, mentor.ID, req)
		assert.ErrorIs(t, err, ErrInvalidQuestion)
	})

	t.Run("choice question needs a correct option", func(t *testing.T) {
		req := validQuizRequest()
		req.Questions[0].Options = []model.QuestionOption{{Text: "A"}, {Text: "B"}}
		_, err := svc.Create(ctx, mentor.ID, req)
		assert.ErrorIs(t, err, ErrInvalidQuestion)
	})

	t.Run("option text must not be empty", func(t *testing.T) {
		req := validQuizRequest()
		req.Questions[0].Options = []model.QuestionOption{{Text: "", IsCorrect: true}}
		_, err := svc.Create(ctx, mentor.ID, req)
		assert.ErrorIs(t, err, ErrInvalidQuestion)
	})

	t.Run("essay keywords may be empty", func(t *testing.T) {
		req := validQuizRequest()
		req.Questions[1].AnswerKeywords = ""
		_, err := svc.Create(ctx, mentor.ID, req)
		assert.NoError(t, err)
	})
}

func TestQuizSubmissionWindow(t *testing.T) {
	svc, _, mentor := newQuizFixture(t)
	ctx := context.Background()

	t.Run("start after deadline rejected", func(t *testing.T) {
		req := validQuizRequest()
		req.SubmissionStartDate = timePtr(time.Now().Add(48 * time.Hour))
		req.Deadline = time.Now().Add(-48 * time.Hour)
		_, err := svc.Create(ctx, mentor.ID, req)
		assert.ErrorIs(t, err, ErrInvalidQuizWindow)
	})

	t.Run("start equal to deadline rejected", func(t *testing.T) {
		req := validQuizRequest()
		at := time.Now().Add(time.Hour)
		req.SubmissionStartDate = &at
		req.Deadline = at
		_, err := svc.Create(ctx, mentor.ID, req)
		assert.ErrorIs(t, err, ErrInvalidQuizWindow)
	})

	t.Run("missing start bound accepted", func(t *testing.T) {
		req := validQuizRequest()
		req.SubmissionStartDate = nil
		quiz, err := svc.Create(ctx, mentor.ID, req)
		require.NoError(t, err)
		assert.Nil(t, quiz.SubmissionStartDate)
	})

	t.Run("update rejects an inverted window", func(t *testing.T) {
		quiz, err := svc.Create(ctx, mentor.ID, validQuizRequest())
		require.NoError(t, err)

		_, err = svc.Update(ctx, quiz.ID, mentor.ID, model.RoleMentor, &model.UpdateQuizRequest{
			Title:               quiz.Title,
			SubmissionStartDate: timePtr(quiz.Deadline.Add(time.Minute)),
			Deadline:            quiz.Deadline,
			Questions:           validQuizRequest().Questions,
		})
		assert.ErrorIs(t, err, ErrInvalidQuizWindow)
	})
}

func TestUpdateQuizReplacesQuestions(t *testing.T) {
	svc, _, mentor := newQuizFixture(t)
	ctx := context.Background()

	quiz, err := svc.Create(ctx, mentor.ID, validQuizRequest())
	require.NoError(t, err)

	updated, err := svc.Update(ctx, quiz.ID, mentor.ID, model.RoleMentor, &model.UpdateQuizRequest{
		Title:               "Kuis Sistem Operasi (Revisi)",
		SubmissionStartDate: quiz.SubmissionStartDate,
		Deadline:            quiz.Deadline,
		Questions: []model.QuestionInput{
			{
				Text: "Benar atau salah: thread berbagi ruang alamat",
				Type: model.QuestionTrueFalse,
				Options: []model.QuestionOption{
					{Text: "Benar", IsCorrect: true},
					{Text: "Salah"},
				},
			},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Kuis Sistem Operasi (Revisi)", updated.Title)
	require.Len(t, updated.Questions, 1)
	assert.Equal(t, model.QuestionTrueFalse, updated.Questions[0].Type)
}

func TestUpdateQuizAuthorization(t *testing.T) {
	svc, db, mentor := newQuizFixture(t)
	ctx := context.Background()

	quiz, err := svc.Create(ctx, mentor.ID, validQuizRequest())
	require.NoError(t, err)

	other := createTestUser(t, db, "Pak Joko", model.RoleMentor)
	admin := createTestUser(t, db, "Admin", model.RoleAdmin)

	req := &model.UpdateQuizRequest{
		Title:               "Diubah",
		SubmissionStartDate: quiz.SubmissionStartDate,
		Deadline:            quiz.Deadline,
		Questions:           validQuizRequest().Questions,
	}

	_, err = svc.Update(ctx, quiz.ID, other.ID, model.RoleMentor, req)
	assert.ErrorIs(t, err, ErrNotQuizAuthor)

	_, err = svc.Update(ctx, quiz.ID, admin.ID, model.RoleAdmin, req)
	assert.NoError(t, err)

	err = svc.Delete(ctx, quiz.ID, other.ID, model.RoleMentor)
	assert.ErrorIs(t, err, ErrNotQuizAuthor)

	require.NoError(t, svc.Delete(ctx, quiz.ID, mentor.ID, model.RoleMentor))
	_, err = svc.Get(ctx, quiz.ID)
	assert.ErrorIs(t, err, ErrQuizNotFound)
}

func TestQuizResults(t *testing.T) {
	svc, db, mentor := newQuizFixture(t)
	ctx := context.Background()

	quiz, err := svc.Create(ctx, mentor.ID, validQuizRequest())
	require.NoError(t, err)

	students := []struct {
		name  string
		score float64
	}{
		{"Andi", 60},
		{"Budi", 90},
		{"Citra", 75},
	}
	now := time.Now()
	for _, s := range students {
		st := createTestUser(t, db, s.name, model.RoleStudent)
		require.NoError(t, db.Create(&model.QuizAttempt{
			QuizID:      quiz.ID,
			StudentID:   st.ID,
			Status:      model.AttemptCompleted,
			Score:       s.score,
			SubmittedAt: &now,
		}).Error)
	}
	// An in-progress attempt does not count as a result.
	running := createTestUser(t, db, "Dewi", model.RoleStudent)
	require.NoError(t, db.Create(&model.QuizAttempt{
		QuizID:    quiz.ID,
		StudentID: running.ID,
		Status:    model.AttemptInProgress,
	}).Error)

	results, err := svc.Results(ctx, quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, quiz.Title, results.QuizTitle)
	assert.Equal(t, 3, results.ParticipantCount)
	assert.InDelta(t, 75.0, results.AverageScore, 0.001)

	require.Len(t, results.Attempts, 3)
	assert.Equal(t, "Budi", results.Attempts[0].StudentName)
	assert.Equal(t, 90.0, results.Attempts[0].Score)
}
