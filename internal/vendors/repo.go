package vendors

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/floorline/backoffice/internal/repo"
	"github.com/floorline/backoffice/pkg/db/models"
)

// Repository is the read side of vendor records.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// FindVendor returns gorm.ErrRecordNotFound for unknown ids.
func (r *Repository) FindVendor(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := r.FindByID(ctx, &vendor, id); err != nil {
		return nil, err
	}
	return &vendor, nil
}
