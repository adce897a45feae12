package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/floorline/backoffice/internal/repo"
	"github.com/floorline/backoffice/pkg/db/models"
)

// Repository reads catalog variants.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// FindVariant loads a variant with its size variants. It returns
// gorm.ErrRecordNotFound when the variant does not exist.
func (r *Repository) FindVariant(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	err := r.DB(ctx).
		Preload("SizeVariants", func(db *gorm.DB) *gorm.DB {
			return db.Order("label ASC")
		}).
		Where("id = ?", id).
		First(&variant).Error
	if err != nil {
		return nil, err
	}
	return &variant, nil
}
