package service

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/textproto"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nevtik/eduvate-backend/internal/config"
	"github.com/nevtik/eduvate-backend/internal/model"
	"github.com/nevtik/eduvate-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testFile struct{ *bytes.Reader }

func (testFile) Close() error { return nil }

// makeUpload builds an in-memory multipart file with the given content type.
func makeUpload(content []byte, contentType string) (multipart.File, *multipart.FileHeader) {
	header := &multipart.FileHeader{
		Filename: "upload.bin",
		Size:     int64(len(content)),
		Header:   textproto.MIMEHeader{"Content-Type": []string{contentType}},
	}
	return testFile{bytes.NewReader(content)}, header
}

func newTaskFixture(t *testing.T) (*TaskService, *gorm.DB, *model.User, *model.User) {
	t.Helper()
	db := newTestDB(t)
	cfg := &config.Config{
		UploadDir:      t.TempDir(),
		MaxUploadBytes: 3 * 1024 * 1024,
	}
	mentor := createTestUser(t, db, "Bu Rina", model.RoleMentor)
	student := createTestUser(t, db, "Andi", model.RoleStudent)
	svc := NewTaskService(
		repository.NewTaskRepository(db),
		repository.NewSubmissionRepository(db),
		NewStorageService(cfg),
		testLogger(),
	)
	return svc, db, mentor, student
}

func createOpenTask(t *testing.T, svc *TaskService, authorID uuid.UUID) *model.Task {
	t.Helper()
	task, err := svc.Create(context.Background(), authorID, &model.CreateTaskRequest{
		Title:    "Laporan Praktikum",
		Deadline: time.Now().Add(time.Hour),
	}, nil, nil)
	require.NoError(t, err)
	return task
}

func TestSubmitAndResubmit(t *testing.T) {
	svc, _, mentor, student := newTaskFixture(t)
	ctx := context.Background()
	task := createOpenTask(t, svc, mentor.ID)

	file, header := makeUpload([]byte("laporan pertama"), "application/pdf")
	first, err := svc.Submit(ctx, task.ID, student.ID, file, header)
	require.NoError(t, err)
	assert.Nil(t, first.Grade)
	assert.Contains(t, first.FilePath, "/uploads/")

	graded, err := svc.Grade(ctx, first.ID, 85)
	require.NoError(t, err)
	require.NotNil(t, graded.Grade)
	assert.Equal(t, 85.0, *graded.Grade)

	// Resubmission replaces the file and resets the grade.
	file, header = makeUpload([]byte("laporan revisi"), "application/pdf")
	second, err := svc.Submit(ctx, task.ID, student.ID, file, header)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Nil(t, second.Grade)
	assert.NotEqual(t, first.FilePath, second.FilePath)
}

func TestSubmitAfterDeadline(t *testing.T) {
	svc, _, mentor, student := newTaskFixture(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, mentor.ID, &model.CreateTaskRequest{
		Title:    "Tugas Terlambat",
		Deadline: time.Now().Add(-time.Minute),
	}, nil, nil)
	require.NoError(t, err)

	file, header := makeUpload([]byte("terlambat"), "application/pdf")
	_, err = svc.Submit(ctx, task.ID, student.ID, file, header)
	assert.ErrorIs(t, err, ErrPastDeadline)
}

func TestSubmitRejectsBadUploads(t *testing.T) {
	svc, _, mentor, student := newTaskFixture(t)
	ctx := context.Background()
	task := createOpenTask(t, svc, mentor.ID)

	t.Run("unsupported type", func(t *testing.T) {
		file, header := makeUpload([]byte("#!/bin/sh"), "application/x-sh")
		_, err := svc.Submit(ctx, task.ID, student.ID, file, header)
		assert.ErrorIs(t, err, ErrUnsupportedFileType)
	})

	t.Run("oversize file", func(t *testing.T) {
		file, header := makeUpload([]byte("x"), "application/pdf")
		header.Size = 4 * 1024 * 1024
		_, err := svc.Submit(ctx, task.ID, student.ID, file, header)
		assert.ErrorIs(t, err, ErrFileTooLarge)
	})
}

func TestDeleteSubmission(t *testing.T) {
	svc, db, mentor, student := newTaskFixture(t)
	ctx := context.Background()
	task := createOpenTask(t, svc, mentor.ID)

	file, header := makeUpload([]byte("laporan"), "application/pdf")
	sub, err := svc.Submit(ctx, task.ID, student.ID, file, header)
	require.NoError(t, err)

	other := createTestUser(t, db, "Budi", model.RoleStudent)
	assert.ErrorIs(t, svc.DeleteSubmission(ctx, sub.ID, other.ID), ErrNotSubmissionOwner)

	_, err = svc.Grade(ctx, sub.ID, 70)
	require.NoError(t, err)
	assert.ErrorIs(t, svc.DeleteSubmission(ctx, sub.ID, student.ID), ErrSubmissionGraded)
}

func TestMySubmission(t *testing.T) {
	svc, _, mentor, student := newTaskFixture(t)
	ctx := context.Background()
	task := createOpenTask(t, svc, mentor.ID)

	_, err := svc.MySubmission(ctx, task.ID, student.ID)
	assert.ErrorIs(t, err, ErrSubmissionNotFound)

	file, header := makeUpload([]byte("laporan"), "application/pdf")
	_, err = svc.Submit(ctx, task.ID, student.ID, file, header)
	require.NoError(t, err)

	sub, err := svc.MySubmission(ctx, task.ID, student.ID)
	require.NoError(t, err)
	assert.Equal(t, student.ID, sub.StudentID)
}
