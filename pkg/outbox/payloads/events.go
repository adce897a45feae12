package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/floorline/backoffice/pkg/enums"
)

// MaterialOrderCreatedEvent is emitted for every new order, replacements included.
type MaterialOrderCreatedEvent struct {
	OrderID       uuid.UUID                 `json:"order_id"`
	ProjectID     uuid.UUID                 `json:"project_id"`
	SupplierID    uuid.UUID                 `json:"supplier_id"`
	ParentOrderID *uuid.UUID                `json:"parent_order_id,omitempty"`
	Status        enums.MaterialOrderStatus `json:"status"`
	PurchaserType enums.PurchaserType       `json:"purchaser_type"`
	ETADate       *time.Time                `json:"eta_date,omitempty"`
	LineItemCount int                       `json:"line_item_count"`
	OrderTotal    decimal.Decimal           `json:"order_total"`
}

// MaterialOrderReceivedEvent reports that an order physically arrived in full.
type MaterialOrderReceivedEvent struct {
	OrderID        uuid.UUID `json:"order_id"`
	ProjectID      uuid.UUID `json:"project_id"`
	SupplierID     uuid.UUID `json:"supplier_id"`
	DateReceived   time.Time `json:"date_received"`
	AttachmentRefs []string  `json:"attachment_refs,omitempty"`
}

// MaterialOrderDamageReportedEvent links a damaged delivery to its replacement order.
type MaterialOrderDamageReportedEvent struct {
	OrderID            uuid.UUID   `json:"order_id"`
	ReplacementOrderID uuid.UUID   `json:"replacement_order_id"`
	ProjectID          uuid.UUID   `json:"project_id"`
	SupplierID         uuid.UUID   `json:"supplier_id"`
	DamagedLineItemIDs []uuid.UUID `json:"damaged_line_item_ids"`
	ReplacementETA     *time.Time  `json:"replacement_eta,omitempty"`
	AttachmentRefs     []string    `json:"attachment_refs,omitempty"`
}

// MaterialOrderDeletedEvent reports removal of an order and its lines.
type MaterialOrderDeletedEvent struct {
	OrderID   uuid.UUID                 `json:"order_id"`
	ProjectID uuid.UUID                 `json:"project_id"`
	Status    enums.MaterialOrderStatus `json:"status"`
}

// MaterialOrderOverdueEvent asks purchasing to chase a supplier about a late delivery.
type MaterialOrderOverdueEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	ProjectID   uuid.UUID `json:"project_id"`
	SupplierID  uuid.UUID `json:"supplier_id"`
	ETADate     time.Time `json:"eta_date"`
	DaysOverdue int       `json:"days_overdue"`
}
