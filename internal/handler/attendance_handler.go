package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nevtik/eduvate-backend/internal/middleware"
	"github.com/nevtik/eduvate-backend/internal/model"
	"github.com/nevtik/eduvate-backend/internal/response"
	"github.com/nevtik/eduvate-backend/internal/service"
	"github.com/nevtik/eduvate-backend/internal/validator"
)

// AttendanceHandler handles attendance endpoints.
type AttendanceHandler struct {
	attendanceService *service.AttendanceService
}

// NewAttendanceHandler creates a new AttendanceHandler.
func NewAttendanceHandler(attendanceService *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: attendanceService}
}

// RequestLeave godoc
// POST /api/attendance/request-leave
func (h *AttendanceHandler) RequestLeave(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.RequestLeaveRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	record, err := h.attendanceService.RequestLeave(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyRecorded) {
			response.Fail(c, http.StatusConflict, response.ErrAlreadyRecorded)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"attendance": record})
}

// Mark godoc
// POST /api/attendance/mark
// Staff sets or overwrites a student's status for a date.
func (h *AttendanceHandler) Mark(c *gin.Context) {
	var req model.MarkAttendanceRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	record, err := h.attendanceService.Mark(c.Request.Context(), &req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attendance": record})
}

// CheckIn godoc
// POST /api/attendance/check-in
// Student scans the rotating QR token to record HADIR for today.
func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CheckinRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	record, err := h.attendanceService.CheckIn(c.Request.Context(), claims.UserID, req.Token)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCheckin):
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidCheckin)
		case errors.Is(err, service.ErrAlreadyRecorded):
			response.Fail(c, http.StatusConflict, response.ErrAlreadyRecorded)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"attendance": record})
}

// CheckinToken godoc
// GET /api/attendance/check-in/token
// Staff fetches the current QR token to render on the classroom screen.
func (h *AttendanceHandler) CheckinToken(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"token": h.attendanceService.CurrentCheckinToken()})
}

// My godoc
// GET /api/attendance/my
func (h *AttendanceHandler) My(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	records, err := h.attendanceService.MyHistory(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if records == nil {
		records = []model.Attendance{}
	}
	response.Success(c, http.StatusOK, gin.H{"attendance": records})
}

// parseMonthYear reads ?month= and ?year=, defaulting to the current month.
func parseMonthYear(c *gin.Context) (int, time.Month) {
	now := time.Now()
	year := now.Year()
	month := now.Month()

	if v, err := strconv.Atoi(c.Query("year")); err == nil && v > 0 {
		year = v
	}
	if v, err := strconv.Atoi(c.Query("month")); err == nil && v >= 1 && v <= 12 {
		month = time.Month(v)
	}
	return year, month
}

// Recap godoc
// GET /api/attendance/recap?month=&year=
// Staff monthly per-student status counts.
func (h *AttendanceHandler) Recap(c *gin.Context) {
	year, month := parseMonthYear(c)

	recaps, err := h.attendanceService.MonthlyRecap(c.Request.Context(), year, month)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"year":  year,
		"month": int(month),
		"recap": recaps,
	})
}

// DailyRecap godoc
// GET /api/attendance/recap/daily?date=YYYY-MM-DD
// Staff view of every student's status for one day.
func (h *AttendanceHandler) DailyRecap(c *gin.Context) {
	date := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
				map[string]string{"date": "date must be formatted YYYY-MM-DD"})
			return
		}
		date = parsed
	}

	rows, err := h.attendanceService.DailyRecap(c.Request.Context(), date)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"recap": rows})
}

// Export godoc
// GET /api/attendance/export?month=&year=
// Streams the monthly recap as an .xlsx attachment.
func (h *AttendanceHandler) Export(c *gin.Context) {
	year, month := parseMonthYear(c)

	workbook, filename, err := h.attendanceService.ExportMonthlyRecap(c.Request.Context(), year, month)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	defer workbook.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := workbook.Write(c.Writer); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}
