package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nevtik/eduvate-backend/internal/database"
	"github.com/nevtik/eduvate-backend/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens an in-memory SQLite database with the full schema. Each
// test gets its own database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.New().String() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return db
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func createTestUser(t *testing.T, db *gorm.DB, name string, role model.Role) *model.User {
	t.Helper()
	user := &model.User{
		Name:         name,
		Email:        uuid.New().String() + "@example.test",
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestQuiz(t *testing.T, db *gorm.DB, authorID uuid.UUID, questions []model.Question) *model.Quiz {
	t.Helper()
	quiz := &model.Quiz{
		Title:               "Kuis Jaringan Dasar",
		SubmissionStartDate: timePtr(time.Now().Add(-time.Hour)),
		Deadline:            time.Now().Add(time.Hour),
		AuthorID:            authorID,
		Questions:           questions,
	}
	require.NoError(t, db.WithContext(context.Background()).Create(quiz).Error)
	return quiz
}

func intPtr(v int) *int              { return &v }
func strPtr(v string) *string        { return &v }
func boolPtr(v bool) *bool           { return &v }
func timePtr(v time.Time) *time.Time { return &v }

func mcQuestion(correct int) model.Question {
	opts := []model.QuestionOption{
		{Text: "A"}, {Text: "B"}, {Text: "C"}, {Text: "D"},
	}
	opts[correct].IsCorrect = true
	return model.Question{
		Text:    "Pilih jawaban yang benar",
		Type:    model.QuestionMultipleChoice,
		Options: opts,
	}
}
