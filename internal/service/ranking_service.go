package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/nevtik/eduvate-backend/internal/model"
	"github.com/nevtik/eduvate-backend/internal/repository"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// rankingSize is how many students the leaderboard shows.
const rankingSize = 5

// RankingEntry is one student's line on the leaderboard.
type RankingEntry struct {
	StudentID    uuid.UUID `json:"student_id"`
	StudentName  string    `json:"student_name"`
	AvgTaskGrade float64   `json:"avg_task_grade"`
	AvgQuizScore float64   `json:"avg_quiz_score"`
	FinalScore   float64   `json:"final_score"`
}

// RankingPayload is the leaderboard response. When the ranking is hidden
// from a student, Attempts is empty and IsRevealed false; nothing leaks.
type RankingPayload struct {
	QuizTitle  string         `json:"quizTitle"`
	Attempts   []RankingEntry `json:"attempts"`
	IsRevealed bool           `json:"isRevealed"`
}

// RankingService computes the top-students leaderboard, gated by the
// rankingVisibility system setting.
type RankingService struct {
	users       *repository.UserRepository
	submissions *repository.SubmissionRepository
	attempts    *repository.AttemptRepository
	settings    *repository.SettingRepository
	log         zerolog.Logger
}

// NewRankingService creates a new RankingService.
func NewRankingService(
	users *repository.UserRepository,
	submissions *repository.SubmissionRepository,
	attempts *repository.AttemptRepository,
	settings *repository.SettingRepository,
	log zerolog.Logger,
) *RankingService {
	return &RankingService{
		users:       users,
		submissions: submissions,
		attempts:    attempts,
		settings:    settings,
		log:         log.With().Str("component", "ranking_service").Logger(),
	}
}

// SetVisibility upserts the rankingVisibility setting.
func (s *RankingService) SetVisibility(ctx context.Context, revealed bool) error {
	value, err := json.Marshal(model.RankingVisibility{IsRevealed: revealed})
	if err != nil {
		return fmt.Errorf("marshal visibility: %w", err)
	}
	setting := &model.SystemSetting{
		Key:   model.RankingVisibilityKey,
		Value: value,
	}
	if err := s.settings.Upsert(ctx, setting); err != nil {
		return fmt.Errorf("store visibility: %w", err)
	}
	s.log.Info().Bool("revealed", revealed).Msg("Ranking visibility changed")
	return nil
}

// Visibility reads the current flag. A missing setting means hidden.
func (s *RankingService) Visibility(ctx context.Context) (bool, error) {
	setting, err := s.settings.GetByKey(ctx, model.RankingVisibilityKey)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("load visibility: %w", err)
	}
	var v model.RankingVisibility
	if err := json.Unmarshal(setting.Value, &v); err != nil {
		return false, nil
	}
	return v.IsRevealed, nil
}

// TopStudents returns the leaderboard. Students see an empty list while
// the ranking is hidden; staff always see it.
func (s *RankingService) TopStudents(ctx context.Context, callerRole model.Role) (*RankingPayload, error) {
	revealed, err := s.Visibility(ctx)
	if err != nil {
		return nil, err
	}

	if callerRole == model.RoleStudent && !revealed {
		return &RankingPayload{
			QuizTitle:  "Peringkat Siswa",
			Attempts:   []RankingEntry{},
			IsRevealed: false,
		}, nil
	}

	students, err := s.users.ListStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}

	gradeRows, err := s.submissions.AverageGrades(ctx)
	if err != nil {
		return nil, fmt.Errorf("aggregate grades: %w", err)
	}
	scoreRows, err := s.attempts.AverageScores(ctx)
	if err != nil {
		return nil, fmt.Errorf("aggregate scores: %w", err)
	}

	grades := make(map[uuid.UUID]float64, len(gradeRows))
	for _, row := range gradeRows {
		grades[row.StudentID] = row.Average
	}
	scores := make(map[uuid.UUID]float64, len(scoreRows))
	for _, row := range scoreRows {
		scores[row.StudentID] = row.Average
	}

	entries := make([]RankingEntry, 0, len(students))
	for _, st := range students {
		avgGrade := grades[st.ID]
		avgScore := scores[st.ID]
		entries = append(entries, RankingEntry{
			StudentID:    st.ID,
			StudentName:  st.Name,
			AvgTaskGrade: avgGrade,
			AvgQuizScore: avgScore,
			FinalScore:   (avgGrade + avgScore) / 2,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].FinalScore > entries[j].FinalScore
	})
	if len(entries) > rankingSize {
		entries = entries[:rankingSize]
	}

	return &RankingPayload{
		QuizTitle:  "Peringkat Siswa",
		Attempts:   entries,
		IsRevealed: revealed,
	}, nil
}
