package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/floorline/backoffice/pkg/db/models"
	"github.com/floorline/backoffice/pkg/enums"
	"github.com/floorline/backoffice/pkg/outbox"
)

// CreateOrderInput is a new material order as submitted by staff.
type CreateOrderInput struct {
	ProjectID     uuid.UUID
	SupplierID    uuid.UUID
	PurchaserType enums.PurchaserType
	OrderDate     *time.Time
	ETADate       *time.Time
	Notes         *string
	LineItems     []LineItemInput
	Actor         *outbox.ActorRef
}

// LineItemInput is one requested line. Blank unit, price or total are filled
// from the catalog and the active pricing policy.
type LineItemInput struct {
	VariantID     uuid.UUID
	SizeVariantID *uuid.UUID
	Quantity      decimal.Decimal
	Unit          enums.UnitOfMeasure
	UnitPrice     *decimal.Decimal
	TotalCost     *decimal.Decimal
}

// ReceiveOrderInput records a delivery that arrived intact.
type ReceiveOrderInput struct {
	OrderID      uuid.UUID
	DateReceived *time.Time
	Notes        *string
	Attachments  []string
	// Notify nil means notify when a contact email exists.
	Notify *bool
	Actor  *outbox.ActorRef
}

// ReportDamageInput records a delivery where some lines arrived damaged.
type ReportDamageInput struct {
	OrderID            uuid.UUID
	DamagedLineItemIDs []uuid.UUID
	DateReceived       *time.Time
	ReplacementETA     *time.Time
	DamageNotes        *string
	Attachments        []string
	Notify             *bool
	Actor              *outbox.ActorRef
}

// NotificationOutcome reports what happened to the customer or installer email.
type NotificationOutcome struct {
	Attempted bool   `json:"attempted"`
	Sent      bool   `json:"sent"`
	Recipient string `json:"recipient,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ReceiveResult is the committed receipt. Warning carries a NOTIFICATION_FAILED
// error when the email could not be handed off; the receipt stands regardless.
type ReceiveResult struct {
	Order        *models.MaterialOrder `json:"order"`
	Notification NotificationOutcome   `json:"notification"`
	Warning      error                 `json:"-"`
}

// DamageResult is the committed damage report and its replacement order.
type DamageResult struct {
	Original     *models.MaterialOrder `json:"original_order"`
	Replacement  *models.MaterialOrder `json:"replacement_order"`
	Notification NotificationOutcome   `json:"notification"`
	Warning      error                 `json:"-"`
}

// ListParams pages through a project's orders, newest first.
type ListParams struct {
	ProjectID uuid.UUID
	Limit     int
	Cursor    string
}

// OrderList is one page of orders.
type OrderList struct {
	Items  []models.MaterialOrder `json:"items"`
	Cursor string                 `json:"cursor"`
}

// ReceiptUpdate is the conditional write applied when an order is received.
type ReceiptUpdate struct {
	DateReceived time.Time
	Notes        *string
	Attachments  []string
}
