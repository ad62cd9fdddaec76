package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nevtik/eduvate-backend/internal/middleware"
	"github.com/nevtik/eduvate-backend/internal/model"
	"github.com/nevtik/eduvate-backend/internal/response"
	"github.com/nevtik/eduvate-backend/internal/service"
)

// TaskHandler handles task and submission endpoints.
type TaskHandler struct {
	taskService *service.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// bindTaskForm reads the multipart task fields. Tasks are created through
// multipart forms because they may carry an attachment.
func bindTaskForm(c *gin.Context) (*model.CreateTaskRequest, map[string]string) {
	fields := map[string]string{}

	title := c.PostForm("title")
	if len(title) < 3 || len(title) > 200 {
		fields["title"] = "title must be between 3 and 200 characters"
	}

	deadline, err := time.Parse(time.RFC3339, c.PostForm("deadline"))
	if err != nil {
		fields["deadline"] = "deadline must be an RFC3339 timestamp"
	}

	if len(fields) > 0 {
		return nil, fields
	}
	return &model.CreateTaskRequest{
		Title:       title,
		Description: c.PostForm("description"),
		Deadline:    deadline,
	}, nil
}

// Create godoc
// POST /api/tasks
// Staff creates a task; multipart with an optional "file" attachment.
func (h *TaskHandler) Create(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	req, fields := bindTaskForm(c)
	if fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		file, header = nil, nil // attachment is optional
	} else {
		defer file.Close()
	}

	task, err := h.taskService.Create(c.Request.Context(), claims.UserID, req, file, header)
	if err != nil {
		failUpload(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"task": task})
}

// List godoc
// GET /api/tasks
func (h *TaskHandler) List(c *gin.Context) {
	tasks, err := h.taskService.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if tasks == nil {
		tasks = []model.Task{}
	}
	response.Success(c, http.StatusOK, gin.H{"tasks": tasks})
}

// Get godoc
// GET /api/tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	task, err := h.taskService.Get(c.Request.Context(), taskID)
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"task": task})
}

// Update godoc
// PUT /api/tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	req, fields := bindTaskForm(c)
	if fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	task, err := h.taskService.Update(c.Request.Context(), taskID, &model.UpdateTaskRequest{
		Title:       req.Title,
		Description: req.Description,
		Deadline:    req.Deadline,
	})
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"task": task})
}

// Delete godoc
// DELETE /api/tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.taskService.Delete(c.Request.Context(), taskID); err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Tugas dihapus."})
}

// Submit godoc
// POST /api/tasks/:id/submissions
// Student uploads an answer file; resubmission replaces it.
func (h *TaskHandler) Submit(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	sub, err := h.taskService.Submit(c.Request.Context(), taskID, claims.UserID, file, header)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTaskNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrPastDeadline):
			response.Fail(c, http.StatusForbidden, response.ErrPastDeadline)
		default:
			failUpload(c, err)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"submission": sub})
}

// Submissions godoc
// GET /api/tasks/:id/submissions
// Staff lists all submissions with student info.
func (h *TaskHandler) Submissions(c *gin.Context) {
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	subs, err := h.taskService.Submissions(c.Request.Context(), taskID)
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if subs == nil {
		subs = []model.Submission{}
	}
	response.Success(c, http.StatusOK, gin.H{"submissions": subs})
}

// MySubmission godoc
// GET /api/tasks/:id/submissions/my
func (h *TaskHandler) MySubmission(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	sub, err := h.taskService.MySubmission(c.Request.Context(), taskID, claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrSubmissionNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"submission": sub})
}

// Grade godoc
// PATCH /api/submissions/:id/grade
func (h *TaskHandler) Grade(c *gin.Context) {
	submissionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.GradeSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Grade == nil {
		response.Fail(c, http.StatusBadRequest, response.ErrValidation)
		return
	}

	sub, err := h.taskService.Grade(c.Request.Context(), submissionID, *req.Grade)
	if err != nil {
		if errors.Is(err, service.ErrSubmissionNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"submission": sub})
}

// DeleteSubmission godoc
// DELETE /api/submissions/:id
// Student withdraws their own ungraded submission.
func (h *TaskHandler) DeleteSubmission(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	submissionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.taskService.DeleteSubmission(c.Request.Context(), submissionID, claims.UserID); err != nil {
		switch {
		case errors.Is(err, service.ErrSubmissionNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrNotSubmissionOwner):
			response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		case errors.Is(err, service.ErrSubmissionGraded):
			response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Pengumpulan dihapus."})
}

// failUpload maps storage errors to upload-specific codes.
func failUpload(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnsupportedFileType):
		response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
	case errors.Is(err, service.ErrFileTooLarge):
		response.Fail(c, http.StatusBadRequest, response.ErrFileTooLarge)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
