package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	internalorders "github.com/floorline/backoffice/internal/orders"
	"github.com/floorline/backoffice/pkg/db/models"
	"github.com/floorline/backoffice/pkg/enums"
)

type orderView struct {
	ID                 uuid.UUID                 `json:"id"`
	ProjectID          uuid.UUID                 `json:"project_id"`
	SupplierID         uuid.UUID                 `json:"supplier_id"`
	ParentOrderID      *uuid.UUID                `json:"parent_order_id,omitempty"`
	Status             enums.MaterialOrderStatus `json:"status"`
	PurchaserType      enums.PurchaserType       `json:"purchaser_type"`
	OrderDate          string                    `json:"order_date"`
	ETADate            *string                   `json:"eta_date,omitempty"`
	DateReceived       *string                   `json:"date_received,omitempty"`
	Notes              *string                   `json:"notes,omitempty"`
	ReceiptNotes       *string                   `json:"receipt_notes,omitempty"`
	ReceiptAttachments []string                  `json:"receipt_attachments"`
	Total              decimal.Decimal           `json:"total"`
	LineItems          []lineItemView            `json:"line_items,omitempty"`
	CreatedAt          time.Time                 `json:"created_at"`
	UpdatedAt          time.Time                 `json:"updated_at"`
}

type lineItemView struct {
	ID            uuid.UUID            `json:"id"`
	Position      int                  `json:"position"`
	VariantID     *uuid.UUID           `json:"variant_id,omitempty"`
	SizeVariantID *uuid.UUID           `json:"size_variant_id,omitempty"`
	SKU           *string              `json:"sku,omitempty"`
	Description   string               `json:"description"`
	Quantity      decimal.Decimal      `json:"quantity"`
	Unit          enums.UnitOfMeasure  `json:"unit"`
	UnitCost      *decimal.Decimal     `json:"unit_cost,omitempty"`
	Markup        *decimal.Decimal     `json:"markup,omitempty"`
	PricingMethod *enums.PricingMethod `json:"pricing_method,omitempty"`
	UnitPrice     *decimal.Decimal     `json:"unit_price,omitempty"`
	TotalCost     *decimal.Decimal     `json:"total_cost,omitempty"`
}

type receiveResponse struct {
	Order        *orderView                         `json:"order"`
	Notification internalorders.NotificationOutcome `json:"notification"`
}

type damageResponse struct {
	Original     *orderView                         `json:"original_order"`
	Replacement  *orderView                         `json:"replacement_order"`
	Notification internalorders.NotificationOutcome `json:"notification"`
}

type orderListResponse struct {
	Items  []orderView `json:"items"`
	Cursor string      `json:"cursor,omitempty"`
}

func newOrderView(order *models.MaterialOrder) *orderView {
	if order == nil {
		return nil
	}
	view := &orderView{
		ID:                 order.ID,
		ProjectID:          order.ProjectID,
		SupplierID:         order.SupplierID,
		ParentOrderID:      order.ParentOrderID,
		Status:             order.Status,
		PurchaserType:      order.PurchaserType,
		OrderDate:          order.OrderDate.UTC().Format(dateLayout),
		ETADate:            formatDate(order.ETADate),
		DateReceived:       formatDate(order.DateReceived),
		Notes:              order.Notes,
		ReceiptNotes:       order.ReceiptNotes,
		ReceiptAttachments: append([]string{}, order.ReceiptAttachments...),
		Total:              decimal.Zero,
		CreatedAt:          order.CreatedAt,
		UpdatedAt:          order.UpdatedAt,
	}
	for _, item := range order.Items {
		if item.TotalCost != nil {
			view.Total = view.Total.Add(*item.TotalCost)
		}
		view.LineItems = append(view.LineItems, lineItemView{
			ID:            item.ID,
			Position:      item.Position,
			VariantID:     item.VariantID,
			SizeVariantID: item.SizeVariantID,
			SKU:           item.SKU,
			Description:   item.Description,
			Quantity:      item.Quantity,
			Unit:          item.Unit,
			UnitCost:      item.UnitCostSnapshot,
			Markup:        item.MarkupSnapshot,
			PricingMethod: item.PricingMethodSnapshot,
			UnitPrice:     item.UnitPriceSold,
			TotalCost:     item.TotalCost,
		})
	}
	return view
}

func newOrderList(list *internalorders.OrderList) orderListResponse {
	out := orderListResponse{Items: make([]orderView, 0)}
	if list == nil {
		return out
	}
	for i := range list.Items {
		out.Items = append(out.Items, *newOrderView(&list.Items[i]))
	}
	out.Cursor = list.Cursor
	return out
}

func formatDate(value *time.Time) *string {
	if value == nil {
		return nil
	}
	out := value.UTC().Format(dateLayout)
	return &out
}
