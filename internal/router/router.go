package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/nevtik/eduvate-backend/internal/config"
	"github.com/nevtik/eduvate-backend/internal/handler"
	"github.com/nevtik/eduvate-backend/internal/middleware"
	"github.com/nevtik/eduvate-backend/internal/model"
	"github.com/nevtik/eduvate-backend/internal/response"
	"github.com/nevtik/eduvate-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	User       *handler.UserHandler
	Task       *handler.TaskHandler
	Quiz       *handler.QuizHandler
	Attempt    *handler.AttemptHandler
	Ranking    *handler.RankingHandler
	Attendance *handler.AttendanceHandler
	Material   *handler.MaterialHandler
	Stats      *handler.StatsHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	respCache *middleware.ResponseCache,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "X-Cache"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Unknown paths and known paths with the wrong verb both get the
	// standard envelope instead of Gin's plain-text defaults.
	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		response.Fail(c, http.StatusMethodNotAllowed, response.ErrUnsupportedOperation)
	})
	router.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	})

	// Serve uploaded files statically with aggressive caching (1 year).
	uploadsGroup := router.Group("/uploads")
	uploadsGroup.Use(middleware.CacheControl(31536000))
	{
		uploadsGroup.Static("/", cfg.UploadDir)
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for login (per-minute, per-IP budget from config).
	authLimiter := middleware.NewRateLimiter(cfg.LoginRateLimit, time.Minute)

	requireAuth := middleware.RequireAuth(authService)
	cached := respCache.Middleware()

	// ─── 1. Auth ───────────────────────────────────────────────────────
	auth := router.Group("/api/auth")
	{
		auth.POST("/login", authLimiter.Middleware(), handlers.Auth.Login)

		auth.GET("/me", requireAuth, handlers.Auth.Me)
		auth.PATCH("/change-password", requireAuth, handlers.Auth.ChangePassword)
		auth.POST("/register", requireAuth, middleware.RequireStaff(), handlers.Auth.Register)
	}

	// ─── 2. Users ──────────────────────────────────────────────────────
	users := router.Group("/api/users", requireAuth)
	{
		users.PATCH("/profile", handlers.User.UpdateProfile)

		users.GET("", middleware.RequireStaff(), handlers.User.List)
		users.GET("/:id", middleware.RequireStaff(), handlers.User.Get)
		users.DELETE("/:id", middleware.RequireRoles(model.RoleAdmin), handlers.User.Delete)
		users.PATCH("/:id/role", middleware.RequireRoles(model.RoleAdmin), handlers.User.UpdateRole)
	}

	// ─── 3. Tasks & Submissions ────────────────────────────────────────
	tasks := router.Group("/api/tasks", requireAuth)
	{
		tasks.GET("", handlers.Task.List)
		tasks.GET("/:id", handlers.Task.Get)

		tasks.POST("", middleware.RequireStaff(), handlers.Task.Create)
		tasks.PUT("/:id", middleware.RequireStaff(), handlers.Task.Update)
		tasks.DELETE("/:id", middleware.RequireStaff(), handlers.Task.Delete)
		tasks.GET("/:id/submissions", middleware.RequireStaff(), handlers.Task.Submissions)

		tasks.POST("/:id/submissions", middleware.RequireRoles(model.RoleStudent), handlers.Task.Submit)
		tasks.GET("/:id/submissions/my", middleware.RequireRoles(model.RoleStudent), handlers.Task.MySubmission)
	}

	submissions := router.Group("/api/submissions", requireAuth)
	{
		submissions.PATCH("/:id/grade", middleware.RequireStaff(), handlers.Task.Grade)
		submissions.DELETE("/:id", middleware.RequireRoles(model.RoleStudent), handlers.Task.DeleteSubmission)
	}

	// ─── 4. Quizzes & Attempts ─────────────────────────────────────────
	quizzes := router.Group("/api/quizzes", requireAuth)
	{
		quizzes.GET("", cached, handlers.Quiz.List)

		quizzes.POST("", middleware.RequireStaff(), handlers.Quiz.Create)
		quizzes.GET("/:id", middleware.RequireStaff(), handlers.Quiz.Get)
		quizzes.PUT("/:id", middleware.RequireStaff(), handlers.Quiz.Update)
		quizzes.DELETE("/:id", middleware.RequireStaff(), handlers.Quiz.Delete)
		quizzes.GET("/:id/results", middleware.RequireStaff(), handlers.Quiz.Results)

		quizzes.POST("/:id/attempts", middleware.RequireRoles(model.RoleStudent), handlers.Attempt.StartOrResume)
		quizzes.POST("/:id/attempts/submit", middleware.RequireRoles(model.RoleStudent), handlers.Attempt.Submit)
		quizzes.GET("/:id/attempts/my", middleware.RequireRoles(model.RoleStudent), handlers.Attempt.MyResult)
	}

	attempts := router.Group("/api/attempts", requireAuth)
	{
		// Autosave is open to any authenticated caller; the service
		// enforces attempt ownership.
		attempts.PATCH("/:id", handlers.Attempt.SaveProgress)
		attempts.DELETE("/:id", middleware.RequireStaff(), handlers.Attempt.Delete)
	}

	// ─── 5. Rankings ───────────────────────────────────────────────────
	rankings := router.Group("/api/rankings", requireAuth)
	{
		rankings.GET("", handlers.Ranking.Top)
		rankings.POST("/reveal", middleware.RequireStaff(), handlers.Ranking.Reveal)
		rankings.POST("/hide", middleware.RequireStaff(), handlers.Ranking.Hide)
	}

	// ─── 6. Attendance ─────────────────────────────────────────────────
	attendance := router.Group("/api/attendance", requireAuth)
	{
		attendance.POST("/request-leave", middleware.RequireRoles(model.RoleStudent), handlers.Attendance.RequestLeave)
		attendance.POST("/check-in", middleware.RequireRoles(model.RoleStudent), handlers.Attendance.CheckIn)
		attendance.GET("/my", middleware.RequireRoles(model.RoleStudent), handlers.Attendance.My)

		attendance.POST("/mark", middleware.RequireStaff(), handlers.Attendance.Mark)
		attendance.GET("/check-in/token", middleware.RequireStaff(), handlers.Attendance.CheckinToken)
		attendance.GET("/recap", middleware.RequireStaff(), handlers.Attendance.Recap)
		attendance.GET("/recap/daily", middleware.RequireStaff(), handlers.Attendance.DailyRecap)
		attendance.GET("/export", middleware.RequireStaff(), handlers.Attendance.Export)
	}

	// ─── 7. Materials ──────────────────────────────────────────────────
	materials := router.Group("/api/materials", requireAuth)
	{
		materials.GET("", cached, handlers.Material.List)
		materials.GET("/:id", handlers.Material.Get)

		materials.POST("", middleware.RequireStaff(), handlers.Material.Create)
		materials.PUT("/:id", middleware.RequireStaff(), handlers.Material.Update)
		materials.DELETE("/:id", middleware.RequireStaff(), handlers.Material.Delete)
	}

	// ─── 8. Stats ──────────────────────────────────────────────────────
	stats := router.Group("/api/stats", requireAuth)
	{
		stats.GET("/dashboard", middleware.RequireStaff(), cached, handlers.Stats.Dashboard)
		stats.GET("/my", middleware.RequireRoles(model.RoleStudent), handlers.Stats.My)
	}

	return router
}
