package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AttendanceStatus enumerates daily attendance states.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "HADIR"
	AttendanceExcused AttendanceStatus = "IZIN"
	AttendanceAbsent  AttendanceStatus = "ALFA"
)

// Attendance is one student's status for one calendar date. Date is stored
// truncated to midnight UTC; the unique index enforces one record per
// student per day.
type Attendance struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_attendance_student_date" json:"student_id"`
	Date      time.Time        `gorm:"not null;uniqueIndex:idx_attendance_student_date" json:"date"`
	Status    AttendanceStatus `gorm:"type:varchar(8);not null" json:"status"`
	Reason    string           `json:"reason,omitempty"`
	Student   *User            `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func (Attendance) TableName() string { return "attendances" }

func (a *Attendance) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// AttendanceRecap aggregates one student's monthly status counts.
type AttendanceRecap struct {
	StudentID   uuid.UUID `json:"student_id"`
	StudentName string    `json:"student_name"`
	Present     int       `json:"present"`
	Excused     int       `json:"excused"`
	Absent      int       `json:"absent"`
}

// RequestLeaveRequest is the payload for a student filing an excused
// absence.
type RequestLeaveRequest struct {
	Date   time.Time `json:"date" binding:"required"`
	Reason string    `json:"reason" binding:"required,min=3,max=500"`
}

// MarkAttendanceRequest is the payload for staff setting a student's status.
type MarkAttendanceRequest struct {
	StudentID uuid.UUID        `json:"student_id" binding:"required"`
	Date      time.Time        `json:"date" binding:"required"`
	Status    AttendanceStatus `json:"status" binding:"required,oneof=HADIR IZIN ALFA"`
}

// CheckinRequest carries the rotating QR token scanned by a student.
type CheckinRequest struct {
	Token string `json:"token" binding:"required"`
}
