package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/nevtik/eduvate-backend/internal/model"
	"github.com/nevtik/eduvate-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newRankingFixture(t *testing.T) (*RankingService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	svc := NewRankingService(
		repository.NewUserRepository(db),
		repository.NewSubmissionRepository(db),
		repository.NewAttemptRepository(db),
		repository.NewSettingRepository(db),
		testLogger(),
	)
	return svc, db
}

// seedRankedStudent gives a student one graded submission and one completed
// attempt so both averages are deterministic.
func seedRankedStudent(t *testing.T, db *gorm.DB, name string, grade, score float64) *model.User {
	t.Helper()
	mentor := createTestUser(t, db, "Mentor "+name, model.RoleMentor)
	student := createTestUser(t, db, name, model.RoleStudent)

	task := &model.Task{
		Title:    "Tugas " + name,
		Deadline: time.Now().Add(time.Hour),
		AuthorID: mentor.ID,
	}
	require.NoError(t, db.Create(task).Error)
	require.NoError(t, db.Create(&model.Submission{
		TaskID:    task.ID,
		StudentID: student.ID,
		FilePath:  "/uploads/x.pdf",
		Grade:     &grade,
	}).Error)

	quiz := createTestQuiz(t, db, mentor.ID, []model.Question{mcQuestion(0)})
	now := time.Now()
	require.NoError(t, db.Create(&model.QuizAttempt{
		QuizID:      quiz.ID,
		StudentID:   student.ID,
		Status:      model.AttemptCompleted,
		Score:       score,
		SubmittedAt: &now,
	}).Error)

	return student
}

func TestRankingVisibilityToggle(t *testing.T) {
	svc, _ := newRankingFixture(t)
	ctx := context.Background()

	// Missing setting defaults to hidden.
	revealed, err := svc.Visibility(ctx)
	require.NoError(t, err)
	assert.False(t, revealed)

	require.NoError(t, svc.SetVisibility(ctx, true))
	revealed, err = svc.Visibility(ctx)
	require.NoError(t, err)
	assert.True(t, revealed)

	require.NoError(t, svc.SetVisibility(ctx, false))
	revealed, err = svc.Visibility(ctx)
	require.NoError(t, err)
	assert.False(t, revealed)
}

func TestTopStudentsHiddenFromStudents(t *testing.T) {
	svc, db := newRankingFixture(t)
	ctx := context.Background()

	seedRankedStudent(t, db, "Andi", 80, 90)

	payload, err := svc.TopStudents(ctx, model.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, "Peringkat Siswa", payload.QuizTitle)
	assert.Empty(t, payload.Attempts)
	assert.False(t, payload.IsRevealed)

	// Staff see the board even while hidden.
	payload, err = svc.TopStudents(ctx, model.RoleMentor)
	require.NoError(t, err)
	assert.Len(t, payload.Attempts, 1)
}

func TestTopStudentsRankingOrder(t *testing.T) {
	svc, db := newRankingFixture(t)
	ctx := context.Background()
	require.NoError(t, svc.SetVisibility(ctx, true))

	seedRankedStudent(t, db, "Citra", 90, 100) // final 95
	seedRankedStudent(t, db, "Andi", 60, 70)   // final 65
	seedRankedStudent(t, db, "Budi", 80, 80)   // final 80

	payload, err := svc.TopStudents(ctx, model.RoleStudent)
	require.NoError(t, err)
	require.Len(t, payload.Attempts, 3)
	assert.True(t, payload.IsRevealed)

	assert.Equal(t, "Citra", payload.Attempts[0].StudentName)
	assert.Equal(t, 95.0, payload.Attempts[0].FinalScore)
	assert.Equal(t, "Budi", payload.Attempts[1].StudentName)
	assert.Equal(t, "Andi", payload.Attempts[2].StudentName)
}

func TestTopStudentsLimitedToFive(t *testing.T) {
	svc, db := newRankingFixture(t)
	ctx := context.Background()
	require.NoError(t, svc.SetVisibility(ctx, true))

	for i := 0; i < 7; i++ {
		seedRankedStudent(t, db, fmt.Sprintf("Siswa %d", i), float64(50+i*5), float64(50+i*5))
	}

	payload, err := svc.TopStudents(ctx, model.RoleMentor)
	require.NoError(t, err)
	assert.Len(t, payload.Attempts, 5)
	assert.Equal(t, "Siswa 6", payload.Attempts[0].StudentName)
}

func TestTopStudentsWithoutRecords(t *testing.T) {
	svc, db := newRankingFixture(t)
	ctx := context.Background()
	require.NoError(t, svc.SetVisibility(ctx, true))

	// A student with no submissions and no attempts still appears, with
	// zeroed averages.
	createTestUser(t, db, "Baru", model.RoleStudent)

	payload, err := svc.TopStudents(ctx, model.RoleMentor)
	require.NoError(t, err)
	require.Len(t, payload.Attempts, 1)
	assert.Equal(t, 0.0, payload.Attempts[0].FinalScore)
}
