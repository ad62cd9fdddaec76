package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nevtik/eduvate-backend/internal/model"
	"github.com/nevtik/eduvate-backend/internal/repository"
)

// DashboardStats is the staff dashboard summary.
type DashboardStats struct {
	StudentCount  int64 `json:"student_count"`
	TaskCount     int64 `json:"task_count"`
	QuizCount     int64 `json:"quiz_count"`
	MaterialCount int64 `json:"material_count"`
	PresentToday  int64 `json:"present_today"`
	ExcusedToday  int64 `json:"excused_today"`
	AbsentToday   int64 `json:"absent_today"`
}

// MyStats is a student's personal summary.
type MyStats struct {
	AvgTaskGrade     float64 `json:"avg_task_grade"`
	AvgQuizScore     float64 `json:"avg_quiz_score"`
	CompletedQuizzes int64   `json:"completed_quizzes"`
	PendingTasks     int64   `json:"pending_tasks"`
	PresentCount     int64   `json:"present_count"`
	ExcusedCount     int64   `json:"excused_count"`
	AbsentCount      int64   `json:"absent_count"`
}

// StatsService aggregates dashboard and per-student statistics.
type StatsService struct {
	users       *repository.UserRepository
	tasks       *repository.TaskRepository
	quizzes     *repository.QuizRepository
	materials   *repository.MaterialRepository
	submissions *repository.SubmissionRepository
	attempts    *repository.AttemptRepository
	attendance  *repository.AttendanceRepository
}

// NewStatsService creates a new StatsService.
func NewStatsService(
	users *repository.UserRepository,
	tasks *repository.TaskRepository,
	quizzes *repository.QuizRepository,
	materials *repository.MaterialRepository,
	submissions *repository.SubmissionRepository,
	attempts *repository.AttemptRepository,
	attendance *repository.AttendanceRepository,
) *StatsService {
	return &StatsService{
		users:       users,
		tasks:       tasks,
		quizzes:     quizzes,
		materials:   materials,
		submissions: submissions,
		attempts:    attempts,
		attendance:  attendance,
	}
}

// Dashboard computes the staff overview.
func (s *StatsService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}
	var err error

	if stats.StudentCount, err = s.users.CountByRole(ctx, model.RoleStudent); err != nil {
		return nil, fmt.Errorf("count students: %w", err)
	}
	if stats.TaskCount, err = s.tasks.Count(ctx); err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}
	quizzes, err := s.quizzes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("count quizzes: %w", err)
	}
	stats.QuizCount = int64(len(quizzes))
	if stats.MaterialCount, err = s.materials.Count(ctx); err != nil {
		return nil, fmt.Errorf("count materials: %w", err)
	}

	today := truncateDate(time.Now())
	if stats.PresentToday, err = s.attendance.CountByDateAndStatus(ctx, today, model.AttendancePresent); err != nil {
		return nil, fmt.Errorf("count attendance: %w", err)
	}
	if stats.ExcusedToday, err = s.attendance.CountByDateAndStatus(ctx, today, model.AttendanceExcused); err != nil {
		return nil, fmt.Errorf("count attendance: %w", err)
	}
	if stats.AbsentToday, err = s.attendance.CountByDateAndStatus(ctx, today, model.AttendanceAbsent); err != nil {
		return nil, fmt.Errorf("count attendance: %w", err)
	}

	return stats, nil
}

// ForStudent computes a student's personal summary.
func (s *StatsService) ForStudent(ctx context.Context, studentID uuid.UUID) (*MyStats, error) {
	stats := &MyStats{}
	var err error

	if stats.AvgTaskGrade, err = s.submissions.AverageGradeByStudent(ctx, studentID); err != nil {
		return nil, fmt.Errorf("average grade: %w", err)
	}
	if stats.AvgQuizScore, err = s.attempts.AverageScoreByStudent(ctx, studentID); err != nil {
		return nil, fmt.Errorf("average score: %w", err)
	}
	if stats.CompletedQuizzes, err = s.attempts.CountCompletedByStudent(ctx, studentID); err != nil {
		return nil, fmt.Errorf("count attempts: %w", err)
	}
	if stats.PendingTasks, err = s.submissions.CountPendingForStudent(ctx, studentID); err != nil {
		return nil, fmt.Errorf("count pending tasks: %w", err)
	}
	if stats.PresentCount, err = s.attendance.CountByStudentAndStatus(ctx, studentID, model.AttendancePresent); err != nil {
		return nil, fmt.Errorf("count attendance: %w", err)
	}
	if stats.ExcusedCount, err = s.attendance.CountByStudentAndStatus(ctx, studentID, model.AttendanceExcused); err != nil {
		return nil, fmt.Errorf("count attendance: %w", err)
	}
	if stats.AbsentCount, err = s.attendance.CountByStudentAndStatus(ctx, studentID, model.AttendanceAbsent); err != nil {
		return nil, fmt.Errorf("count attendance: %w", err)
	}

	return stats, nil
}
