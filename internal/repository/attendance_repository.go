package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nevtik/eduvate-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AttendanceRepository handles attendance data access.
type AttendanceRepository struct {
	db *gorm.DB
}

// NewAttendanceRepository creates a new AttendanceRepository.
func NewAttendanceRepository(db *gorm.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Create inserts a new record. Returns gorm.ErrDuplicatedKey when the
// student already has a record on that date.
func (r *AttendanceRepository) Create(ctx context.Context, a *model.Attendance) error {
	return r.db.WithContext(ctx).Create(a).Error
}

// Upsert inserts or overwrites the record for (student, date).
func (r *AttendanceRepository) Upsert(ctx context.Context, a *model.Attendance) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "reason", "updated_at"}),
		}).
		Create(a).Error
}

// GetByStudentAndDate retrieves the record for a student on a date.
func (r *AttendanceRepository) GetByStudentAndDate(ctx context.Context, studentID uuid.UUID, date time.Time) (*model.Attendance, error) {
	a := &model.Attendance{}
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND date = ?", studentID, date).
		First(a).Error
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ListByStudent retrieves a student's history, newest first.
func (r *AttendanceRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.Attendance, error) {
	var records []model.Attendance
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("date DESC").
		Find(&records).Error
	return records, err
}

// ListByDate retrieves all records for one day with student info.
func (r *AttendanceRepository) ListByDate(ctx context.Context, date time.Time) ([]model.Attendance, error) {
	var records []model.Attendance
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("date = ?", date).
		Find(&records).Error
	return records, err
}

// ListByMonth retrieves all records within [from, to) with student info.
func (r *AttendanceRepository) ListByMonth(ctx context.Context, from, to time.Time) ([]model.Attendance, error) {
	var records []model.Attendance
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("date >= ? AND date < ?", from, to).
		Order("date ASC").
		Find(&records).Error
	return records, err
}

// CountByDateAndStatus counts records for one day holding a status.
func (r *AttendanceRepository) CountByDateAndStatus(ctx context.Context, date time.Time, status model.AttendanceStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Attendance{}).
		Where("date = ? AND status = ?", date, status).
		Count(&n).Error
	return n, err
}

// CountByStudentAndStatus counts a student's records holding a status.
func (r *AttendanceRepository) CountByStudentAndStatus(ctx context.Context, studentID uuid.UUID, status model.AttendanceStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Attendance{}).
		Where("student_id = ? AND status = ?", studentID, status).
		Count(&n).Error
	return n, err
}
