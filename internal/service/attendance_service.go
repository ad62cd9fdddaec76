package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nevtik/eduvate-backend/internal/config"
	"github.com/nevtik/eduvate-backend/internal/model"
	"github.com/nevtik/eduvate-backend/internal/repository"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// checkinTokenWindow is how long one rotating QR token stays valid.
const checkinTokenWindow = 5 * time.Minute

// Common attendance errors.
var (
	ErrAlreadyRecorded = errors.New("attendance already recorded for that date")
	ErrInvalidCheckin  = errors.New("check-in token invalid or expired")
)

// DailyRecapRow is one student's status for a single day. Students with no
// record show as ALFA.
type DailyRecapRow struct {
	StudentID   uuid.UUID              `json:"student_id"`
	StudentName string                 `json:"student_name"`
	Status      model.AttendanceStatus `json:"status"`
	Reason      string                 `json:"reason,omitempty"`
}

// AttendanceService handles daily attendance, leave requests, QR check-in,
// and recaps.
type AttendanceService struct {
	records *repository.AttendanceRepository
	users   *repository.UserRepository
	cfg     *config.Config
	log     zerolog.Logger
}

// NewAttendanceService creates a new AttendanceService.
func NewAttendanceService(records *repository.AttendanceRepository, users *repository.UserRepository, cfg *config.Config, log zerolog.Logger) *AttendanceService {
	return &AttendanceService{
		records: records,
		users:   users,
		cfg:     cfg,
		log:     log.With().Str("component", "attendance_service").Logger(),
	}
}

// truncateDate normalizes a timestamp to midnight UTC so one row per
// student per day holds.
func truncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// RequestLeave files an excused absence (IZIN) for a student.
func (s *AttendanceService) RequestLeave(ctx context.Context, studentID uuid.UUID, req *model.RequestLeaveRequest) (*model.Attendance, error) {
	record := &model.Attendance{
		StudentID: studentID,
		Date:      truncateDate(req.Date),
		Status:    model.AttendanceExcused,
		Reason:    req.Reason,
	}
	if err := s.records.Create(ctx, record); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyRecorded
		}
		return nil, fmt.Errorf("create attendance: %w", err)
	}
	return record, nil
}

// Mark lets staff set or overwrite a student's status for a date.
func (s *AttendanceService) Mark(ctx context.Context, req *model.MarkAttendanceRequest) (*model.Attendance, error) {
	record := &model.Attendance{
		StudentID: req.StudentID,
		Date:      truncateDate(req.Date),
		Status:    req.Status,
	}
	if err := s.records.Upsert(ctx, record); err != nil {
		return nil, fmt.Errorf("upsert attendance: %w", err)
	}
	return record, nil
}

// CurrentCheckinToken derives the rotating QR token for the current window.
func (s *AttendanceService) CurrentCheckinToken() string {
	return s.checkinToken(time.Now().Unix() / int64(checkinTokenWindow.Seconds()))
}

func (s *AttendanceService) checkinToken(window int64) string {
	mac := hmac.New(sha256.New, []byte(s.cfg.CheckinSecret))
	fmt.Fprintf(mac, "checkin:%d", window)
	return hex.EncodeToString(mac.Sum(nil))
}

// CheckIn records HADIR for today when the scanned token matches the
// current or previous window.
func (s *AttendanceService) CheckIn(ctx context.Context, studentID uuid.UUID, token string) (*model.Attendance, error) {
	window := time.Now().Unix() / int64(checkinTokenWindow.Seconds())
	current := s.checkinToken(window)
	previous := s.checkinToken(window - 1)
	if subtle.ConstantTimeCompare([]byte(token), []byte(current)) != 1 &&
		subtle.ConstantTimeCompare([]byte(token), []byte(previous)) != 1 {
		return nil, ErrInvalidCheckin
	}

	record := &model.Attendance{
		StudentID: studentID,
		Date:      truncateDate(time.Now()),
		Status:    model.AttendancePresent,
	}
	if err := s.records.Create(ctx, record); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyRecorded
		}
		return nil, fmt.Errorf("create attendance: %w", err)
	}

	s.log.Info().Str("student_id", studentID.String()).Msg("Student checked in")
	return record, nil
}

// MyHistory retrieves the student's attendance records, newest first.
func (s *AttendanceService) MyHistory(ctx context.Context, studentID uuid.UUID) ([]model.Attendance, error) {
	return s.records.ListByStudent(ctx, studentID)
}

// MonthlyRecap aggregates per-student status counts for a month.
func (s *AttendanceService) MonthlyRecap(ctx context.Context, year int, month time.Month) ([]model.AttendanceRecap, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	records, err := s.records.ListByMonth(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}

	students, err := s.users.ListStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}

	recaps := make([]model.AttendanceRecap, 0, len(students))
	index := make(map[uuid.UUID]*model.AttendanceRecap, len(students))
	for _, st := range students {
		recaps = append(recaps, model.AttendanceRecap{
			StudentID:   st.ID,
			StudentName: st.Name,
		})
		index[st.ID] = &recaps[len(recaps)-1]
	}

	for _, rec := range records {
		recap, ok := index[rec.StudentID]
		if !ok {
			continue
		}
		switch rec.Status {
		case model.AttendancePresent:
			recap.Present++
		case model.AttendanceExcused:
			recap.Excused++
		case model.AttendanceAbsent:
			recap.Absent++
		}
	}

	return recaps, nil
}

// DailyRecap lists every student's status for one day; unmarked students
// default to ALFA.
func (s *AttendanceService) DailyRecap(ctx context.Context, date time.Time) ([]DailyRecapRow, error) {
	day := truncateDate(date)

	records, err := s.records.ListByDate(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	byStudent := make(map[uuid.UUID]model.Attendance, len(records))
	for _, rec := range records {
		byStudent[rec.StudentID] = rec
	}

	students, err := s.users.ListStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}

	rows := make([]DailyRecapRow, 0, len(students))
	for _, st := range students {
		row := DailyRecapRow{
			StudentID:   st.ID,
			StudentName: st.Name,
			Status:      model.AttendanceAbsent,
		}
		if rec, ok := byStudent[st.ID]; ok {
			row.Status = rec.Status
			row.Reason = rec.Reason
		}
		rows = append(rows, row)
	}
	return rows, nil
}
