package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/floorline/backoffice/pkg/db/models"
	"github.com/floorline/backoffice/pkg/pagination"
)

// Repository defines persistence operations for material orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.MaterialOrder) error
	CreateLineItems(ctx context.Context, items []models.OrderLineItem) error
	FindOrder(ctx context.Context, id uuid.UUID) (*models.MaterialOrder, error)
	MarkReceived(ctx context.Context, id uuid.UUID, update ReceiptUpdate) (bool, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) (bool, error)
	ListProjectOrders(ctx context.Context, projectID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.MaterialOrder, error)
	ListOverdue(ctx context.Context, cutoff time.Time, limit int) ([]models.MaterialOrder, error)
	MarkOverdueNotified(ctx context.Context, id uuid.UUID, at time.Time) error
}

// VariantLookup resolves catalog variants.
type VariantLookup interface {
	FindVariant(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error)
}

// VendorLookup resolves suppliers.
type VendorLookup interface {
	FindVendor(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
}

// SettingsReader returns the current global pricing settings.
type SettingsReader interface {
	Get(ctx context.Context) (*models.GlobalPricingSettings, error)
}

// ProjectLookup resolves projects with their contacts.
type ProjectLookup interface {
	FindProject(ctx context.Context, id uuid.UUID) (*models.Project, error)
}
