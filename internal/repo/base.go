package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base is embedded by the read-only lookup repositories (catalog, vendors,
// projects, settings).
type Base struct {
	db *gorm.DB
}

func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the connection bound to ctx. A nil ctx returns the raw connection.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// FindByID loads the row with the given id into dest, preloading the named
// associations. It returns gorm.ErrRecordNotFound for unknown ids.
func (b Base) FindByID(ctx context.Context, dest any, id uuid.UUID, preloads ...string) error {
	query := b.DB(ctx)
	for _, assoc := range preloads {
		query = query.Preload(assoc)
	}
	return query.Where("id = ?", id).First(dest).Error
}
