package projects

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/floorline/backoffice/internal/repo"
	"github.com/floorline/backoffice/pkg/db/models"
)

// Repository reads projects together with their customer and installer contacts.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// FindProject returns gorm.ErrRecordNotFound for unknown ids.
func (r *Repository) FindProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	if err := r.FindByID(ctx, &project, id, "Customer", "Installer"); err != nil {
		return nil, err
	}
	return &project, nil
}
