package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/nevtik/eduvate-backend/internal/model"
	"gorm.io/gorm"
)

// MaterialRepository handles learning material data access.
type MaterialRepository struct {
	db *gorm.DB
}

// NewMaterialRepository creates a new MaterialRepository.
func NewMaterialRepository(db *gorm.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

// Create inserts a new material.
func (r *MaterialRepository) Create(ctx context.Context, m *model.Material) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// GetByID retrieves a material by ID.
func (r *MaterialRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Material, error) {
	m := &model.Material{}
	if err := r.db.WithContext(ctx).First(m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// List retrieves all materials, newest first.
func (r *MaterialRepository) List(ctx context.Context) ([]model.Material, error) {
	var materials []model.Material
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&materials).Error
	return materials, err
}

// Update persists changes to a material row.
func (r *MaterialRepository) Update(ctx context.Context, m *model.Material) error {
	return r.db.WithContext(ctx).Save(m).Error
}

// Delete removes a material by ID.
func (r *MaterialRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Material{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Count counts all materials.
func (r *MaterialRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Material{}).Count(&n).Error
	return n, err
}
