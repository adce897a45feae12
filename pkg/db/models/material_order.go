package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/floorline/backoffice/pkg/db/types"
	"github.com/floorline/backoffice/pkg/enums"
)

// MaterialOrder is a purchase order for physical materials placed with a supplier
// on behalf of a project. Replacement orders spawned by a damage report point back
// to the original through ParentOrderID.
type MaterialOrder struct {
	ID                 uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID          uuid.UUID                 `gorm:"column:project_id;type:uuid;not null"`
	SupplierID         uuid.UUID                 `gorm:"column:supplier_id;type:uuid;not null"`
	OrderDate          time.Time                 `gorm:"column:order_date;not null"`
	ETADate            *time.Time                `gorm:"column:eta_date"`
	PurchaserType      enums.PurchaserType       `gorm:"column:purchaser_type;type:purchaser_type;not null"`
	Status             enums.MaterialOrderStatus `gorm:"column:status;type:material_order_status;not null"`
	DateReceived       *time.Time                `gorm:"column:date_received"`
	Notes              *string                   `gorm:"column:notes"`
	ReceiptNotes       *string                   `gorm:"column:receipt_notes"`
	ReceiptAttachments dbtypes.AttachmentRefs    `gorm:"column:receipt_attachments;type:jsonb;not null;default:'[]'"`
	ParentOrderID      *uuid.UUID                `gorm:"column:parent_order_id;type:uuid"`
	OverdueNotifiedAt  *time.Time                `gorm:"column:overdue_notified_at"`
	Items              []OrderLineItem           `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}
