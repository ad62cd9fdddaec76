package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nevtik/eduvate-backend/internal/config"
	"github.com/nevtik/eduvate-backend/internal/database"
	"github.com/nevtik/eduvate-backend/internal/handler"
	"github.com/nevtik/eduvate-backend/internal/middleware"
	"github.com/nevtik/eduvate-backend/internal/model"
	"github.com/nevtik/eduvate-backend/internal/repository"
	"github.com/nevtik/eduvate-backend/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestRouter wires a full engine against an in-memory database. Only the
// attempt routes get a live service; the other handlers are registered as
// zero values and must not be exercised.
func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB, *service.AuthService) {
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

	cfg := &config.Config{
		GinMode:        gin.TestMode,
		JWTSecret:      "test-secret",
		JWTExpiry:      time.Hour,
		BcryptCost:     4,
		LoginRateLimit: 30,
		UploadDir:      t.TempDir(),
	}

	log := zerolog.Nop()
	authService := service.NewAuthService(cfg, repository.NewUserRepository(db))
	attemptService := service.NewAttemptService(
		repository.NewAttemptRepository(db),
		repository.NewQuizRepository(db),
		log,
	)

	handlers := &Handlers{
		Auth:       &handler.AuthHandler{},
		User:       &handler.UserHandler{},
		Task:       &handler.TaskHandler{},
		Quiz:       &handler.QuizHandler{},
		Attempt:    handler.NewAttemptHandler(attemptService),
		Ranking:    &handler.RankingHandler{},
		Attendance: &handler.AttendanceHandler{},
		Material:   &handler.MaterialHandler{},
		Stats:      &handler.StatsHandler{},
	}

	// The cache client is never dialed; no cached route runs in these tests.
	respCache := middleware.NewResponseCache(
		redis.NewClient(&redis.Options{Addr: "localhost:6399"}),
		time.Minute,
		log,
	)

	return SetupRouter(authService, handlers, respCache, cfg), db, authService
}

func createRouterUser(t *testing.T, db *gorm.DB, authService *service.AuthService, name string, role model.Role) (*model.User, string) {
	t.Helper()
	user := &model.User{
		Name:         name,
		Email:        uuid.New().String() + "@example.test",
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, db.Create(user).Error)
	token, err := authService.GenerateToken(user)
	require.NoError(t, err)
	return user, token
}

func doJSON(r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSaveProgressRoute(t *testing.T) {
	r, db, authService := newTestRouter(t)

	mentor, mentorToken := createRouterUser(t, db, authService, "Bu Rina", model.RoleMentor)
	student, studentToken := createRouterUser(t, db, authService, "Andi", model.RoleStudent)

	quiz := &model.Quiz{
		Title:    "Kuis Jaringan Dasar",
		Deadline: time.Now().Add(time.Hour),
		AuthorID: mentor.ID,
		Questions: []model.Question{{
			Text: "Pilih jawaban yang benar",
			Type: model.QuestionMultipleChoice,
			Options: []model.QuestionOption{
				{Text: "A", IsCorrect: true}, {Text: "B"},
			},
		}},
	}
	require.NoError(t, db.Create(quiz).Error)

	w := doJSON(r, http.MethodPost, "/api/quizzes/"+quiz.ID.String()+"/attempts", studentToken, "")
	require.Equal(t, http.StatusOK, w.Code)

	var attempt model.QuizAttempt
	require.NoError(t, db.First(&attempt, "quiz_id = ? AND student_id = ?", quiz.ID, student.ID).Error)

	t.Run("requires a token", func(t *testing.T) {
		w := doJSON(r, http.MethodPatch, "/api/attempts/"+attempt.ID.String(), "", `{"violationCount":1}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("owner saves progress", func(t *testing.T) {
		w := doJSON(r, http.MethodPatch, "/api/attempts/"+attempt.ID.String(), studentToken, `{"violationCount":1}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("any authenticated caller reaches the handler", func(t *testing.T) {
		// A mentor is not role-gated away; the malformed body fails binding.
		w := doJSON(r, http.MethodPatch, "/api/attempts/"+attempt.ID.String(), mentorToken, `{"timeLeftInSeconds":"abc"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
	})

	t.Run("missing attempt is not disclosed", func(t *testing.T) {
		w := doJSON(r, http.MethodPatch, "/api/attempts/"+uuid.New().String(), mentorToken, `{"violationCount":1}`)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "FORBIDDEN")
		assert.NotContains(t, w.Body.String(), "NOT_FOUND")
	})

	t.Run("someone else's attempt reads the same", func(t *testing.T) {
		w := doJSON(r, http.MethodPatch, "/api/attempts/"+attempt.ID.String(), mentorToken, `{"violationCount":1}`)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "FORBIDDEN")
	})
}
