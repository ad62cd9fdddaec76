package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/google/uuid"
	"github.com/nevtik/eduvate-backend/internal/model"
	"github.com/nevtik/eduvate-backend/internal/repository"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// ErrMaterialNotFound is returned when a material lookup misses.
var ErrMaterialNotFound = errors.New("material not found")

// MaterialService handles learning material management.
type MaterialService struct {
	materials *repository.MaterialRepository
	storage   *StorageService
	log       zerolog.Logger
}

// NewMaterialService creates a new MaterialService.
func NewMaterialService(materials *repository.MaterialRepository, storage *StorageService, log zerolog.Logger) *MaterialService {
	return &MaterialService{
		materials: materials,
		storage:   storage,
		log:       log.With().Str("component", "material_service").Logger(),
	}
}

// Create inserts a material, optionally with an uploaded file.
func (s *MaterialService) Create(ctx context.Context, authorID uuid.UUID, title, description, externalURL string, file multipart.File, header *multipart.FileHeader) (*model.Material, error) {
	material := &model.Material{
		Title:       title,
		Description: description,
		ExternalURL: externalURL,
		AuthorID:    authorID,
	}

	if file != nil {
		path, err := s.storage.SaveUpload(file, header)
		if err != nil {
			return nil, err
		}
		material.FilePath = path
	}

	if err := s.materials.Create(ctx, material); err != nil {
		return nil, fmt.Errorf("create material: %w", err)
	}
	return material, nil
}

// List retrieves all materials.
func (s *MaterialService) List(ctx context.Context) ([]model.Material, error) {
	return s.materials.List(ctx)
}

// Get retrieves one material.
func (s *MaterialService) Get(ctx context.Context, id uuid.UUID) (*model.Material, error) {
	material, err := s.materials.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMaterialNotFound
		}
		return nil, fmt.Errorf("load material: %w", err)
	}
	return material, nil
}

// Update persists metadata changes.
func (s *MaterialService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateMaterialRequest) (*model.Material, error) {
	material, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	material.Title = req.Title
	material.Description = req.Description
	material.ExternalURL = req.ExternalURL
	if err := s.materials.Update(ctx, material); err != nil {
		return nil, fmt.Errorf("update material: %w", err)
	}
	return material, nil
}

// Delete removes a material and its stored file.
func (s *MaterialService) Delete(ctx context.Context, id uuid.UUID) error {
	material, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.materials.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete material: %w", err)
	}
	if material.FilePath != "" {
		if err := s.storage.Remove(material.FilePath); err != nil {
			s.log.Warn().Err(err).Str("material_id", id.String()).Msg("File cleanup failed")
		}
	}
	return nil
}
