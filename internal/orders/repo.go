package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/floorline/backoffice/pkg/db/models"
	dbtypes "github.com/floorline/backoffice/pkg/db/types"
	"github.com/floorline/backoffice/pkg/enums"
	"github.com/floorline/backoffice/pkg/pagination"
)

var awaitingStatuses = []enums.MaterialOrderStatus{
	enums.MaterialOrderStatusOrdered,
	enums.MaterialOrderStatusDamageReplacement,
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a material orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// CreateOrder inserts the order row only; line items go through CreateLineItems.
func (r *repository) CreateOrder(ctx context.Context, order *models.MaterialOrder) error {
	return r.db.WithContext(ctx).Omit("Items").Create(order).Error
}

func (r *repository) CreateLineItems(ctx context.Context, items []models.OrderLineItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) FindOrder(ctx context.Context, id uuid.UUID) (*models.MaterialOrder, error) {
	var order models.MaterialOrder
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// MarkReceived moves an order still awaiting delivery to received. It reports
// false when the order was not in an awaiting state at write time.
func (r *repository) MarkReceived(ctx context.Context, id uuid.UUID, update ReceiptUpdate) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.MaterialOrder{}).
		Where("id = ? AND status IN ?", id, awaitingStatuses).
		Updates(map[string]any{
			"status":              enums.MaterialOrderStatusReceived,
			"date_received":       update.DateReceived,
			"receipt_notes":       update.Notes,
			"receipt_attachments": dbtypes.AttachmentRefs(update.Attachments),
			"updated_at":          time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// DeleteOrder removes the order and its line items. Orders that reference it
// through parent_order_id are left untouched.
func (r *repository) DeleteOrder(ctx context.Context, id uuid.UUID) (bool, error) {
	db := r.db.WithContext(ctx)
	if err := db.Where("order_id = ?", id).Delete(&models.OrderLineItem{}).Error; err != nil {
		return false, err
	}
	res := db.Where("id = ?", id).Delete(&models.MaterialOrder{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) ListProjectOrders(ctx context.Context, projectID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.MaterialOrder, error) {
	q := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("project_id = ?", projectID)
	if cursor != nil {
		q = q.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.MaterialOrder
	err := q.Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// ListOverdue returns orders awaiting delivery whose ETA is before cutoff and
// that have not been flagged yet.
func (r *repository) ListOverdue(ctx context.Context, cutoff time.Time, limit int) ([]models.MaterialOrder, error) {
	var rows []models.MaterialOrder
	err := r.db.WithContext(ctx).
		Where("status IN ?", awaitingStatuses).
		Where("eta_date IS NOT NULL AND eta_date < ?", cutoff).
		Where("overdue_notified_at IS NULL").
		Order("eta_date ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *repository) MarkOverdueNotified(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.MaterialOrder{}).
		Where("id = ?", id).
		Update("overdue_notified_at", at).Error
}
