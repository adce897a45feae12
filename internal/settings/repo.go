package settings

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/floorline/backoffice/internal/repo"
	"github.com/floorline/backoffice/pkg/db/models"
)

// ErrNotConfigured is returned when the global pricing row has not been seeded.
var ErrNotConfigured = errors.New("global pricing settings not configured")

// Repository reads the global pricing settings. Nothing is cached; every call
// hits the database so an admin edit applies to the next calculation.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) Get(ctx context.Context) (*models.GlobalPricingSettings, error) {
	var row models.GlobalPricingSettings
	err := r.DB(ctx).
		Where("id = ?", models.GlobalPricingSettingsID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotConfigured
		}
		return nil, err
	}
	return &row, nil
}
