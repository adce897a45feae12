package orders

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/floorline/backoffice/api/middleware"
	"github.com/floorline/backoffice/api/responses"
	"github.com/floorline/backoffice/api/validators"
	internalorders "github.com/floorline/backoffice/internal/orders"
	"github.com/floorline/backoffice/pkg/enums"
	pkgerrors "github.com/floorline/backoffice/pkg/errors"
	"github.com/floorline/backoffice/pkg/logger"
	"github.com/floorline/backoffice/pkg/outbox"
	"github.com/floorline/backoffice/pkg/pagination"
)

// dateLayout is the calendar-day format used for order, ETA and receipt dates.
const dateLayout = "2006-01-02"

const maxNotesLength = 2000

type createOrderRequest struct {
	ProjectID     string            `json:"project_id" validate:"required,uuid"`
	SupplierID    string            `json:"supplier_id" validate:"required,uuid"`
	PurchaserType string            `json:"purchaser_type" validate:"required,oneof=customer installer"`
	OrderDate     *string           `json:"order_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ETADate       *string           `json:"eta_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Notes         *string           `json:"notes,omitempty"`
	LineItems     []lineItemRequest `json:"line_items" validate:"required,min=1,dive"`
}

type lineItemRequest struct {
	VariantID     string  `json:"variant_id" validate:"required,uuid"`
	SizeVariantID *string `json:"size_variant_id,omitempty" validate:"omitempty,uuid"`
	Quantity      string  `json:"quantity" validate:"required,numeric"`
	Unit          *string `json:"unit,omitempty"`
	UnitPrice     *string `json:"unit_price,omitempty" validate:"omitempty,numeric"`
	TotalCost     *string `json:"total_cost,omitempty" validate:"omitempty,numeric"`
}

type receiveOrderRequest struct {
	DateReceived *string  `json:"date_received,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Notes        *string  `json:"notes,omitempty"`
	Attachments  []string `json:"attachments,omitempty" validate:"omitempty,dive,max=512"`
	Notify       *bool    `json:"notify,omitempty"`
}

type reportDamageRequest struct {
	DamagedLineItemIDs []string `json:"damaged_line_item_ids" validate:"dive,uuid"`
	DateReceived       *string  `json:"date_received,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ReplacementETA     *string  `json:"replacement_eta,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DamageNotes        *string  `json:"damage_notes,omitempty"`
	Attachments        []string `json:"attachments,omitempty" validate:"omitempty,dive,max=512"`
	Notify             *bool    `json:"notify,omitempty"`
}

func Create(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		var payload createOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.Actor = actorFromRequest(r)

		order, err := svc.CreateOrder(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderView(order))
	}
}

func Detail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderView(order))
	}
}

func Delete(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteOrder(r.Context(), orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"id": orderID, "deleted": true})
	}
}

func Receive(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload receiveOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		received, err := parseDate(payload.DateReceived, "date_received")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ReceiveOrder(r.Context(), internalorders.ReceiveOrderInput{
			OrderID:      orderID,
			DateReceived: received,
			Notes:        validators.SanitizeOptional(payload.Notes, maxNotesLength),
			Attachments:  payload.Attachments,
			Notify:       payload.Notify,
			Actor:        actorFromRequest(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessWithWarnings(w, http.StatusOK, receiveResponse{
			Order:        newOrderView(result.Order),
			Notification: result.Notification,
		}, result.Warning)
	}
}

func ReportDamage(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload reportDamageRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		received, err := parseDate(payload.DateReceived, "date_received")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		eta, err := parseDate(payload.ReplacementETA, "replacement_eta")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		damaged := make([]uuid.UUID, 0, len(payload.DamagedLineItemIDs))
		for _, raw := range payload.DamagedLineItemIDs {
			id, err := validators.ParseUUIDField(raw, "damaged_line_item_ids")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			damaged = append(damaged, id)
		}

		result, err := svc.ReportDamage(r.Context(), internalorders.ReportDamageInput{
			OrderID:            orderID,
			DamagedLineItemIDs: damaged,
			DateReceived:       received,
			ReplacementETA:     eta,
			DamageNotes:        validators.SanitizeOptional(payload.DamageNotes, maxNotesLength),
			Attachments:        payload.Attachments,
			Notify:             payload.Notify,
			Actor:              actorFromRequest(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessWithWarnings(w, http.StatusCreated, damageResponse{
			Original:     newOrderView(result.Original),
			Replacement:  newOrderView(result.Replacement),
			Notification: result.Notification,
		}, result.Warning)
	}
}

func ListProject(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		projectID, err := validators.ParseUUIDParam(r, "projectId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListProjectOrders(r.Context(), internalorders.ListParams{
			ProjectID: projectID,
			Limit:     limit,
			Cursor:    strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderList(list))
	}
}

func (p createOrderRequest) toInput() (internalorders.CreateOrderInput, error) {
	orderDate, err := parseDate(p.OrderDate, "order_date")
	if err != nil {
		return internalorders.CreateOrderInput{}, err
	}
	eta, err := parseDate(p.ETADate, "eta_date")
	if err != nil {
		return internalorders.CreateOrderInput{}, err
	}
	projectID, err := validators.ParseUUIDField(p.ProjectID, "project_id")
	if err != nil {
		return internalorders.CreateOrderInput{}, err
	}
	supplierID, err := validators.ParseUUIDField(p.SupplierID, "supplier_id")
	if err != nil {
		return internalorders.CreateOrderInput{}, err
	}

	input := internalorders.CreateOrderInput{
		ProjectID:     projectID,
		SupplierID:    supplierID,
		PurchaserType: enums.PurchaserType(p.PurchaserType),
		OrderDate:     orderDate,
		ETADate:       eta,
		Notes:         validators.SanitizeOptional(p.Notes, maxNotesLength),
		LineItems:     make([]internalorders.LineItemInput, 0, len(p.LineItems)),
	}
	for i, item := range p.LineItems {
		line, err := item.toInput()
		if err != nil {
			return internalorders.CreateOrderInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid line item").
				WithDetails(map[string]any{"index": i, "error": err.Error()})
		}
		input.LineItems = append(input.LineItems, line)
	}
	return input, nil
}

func (l lineItemRequest) toInput() (internalorders.LineItemInput, error) {
	quantity, err := decimal.NewFromString(l.Quantity)
	if err != nil {
		return internalorders.LineItemInput{}, err
	}
	variantID, err := validators.ParseUUIDField(l.VariantID, "variant_id")
	if err != nil {
		return internalorders.LineItemInput{}, err
	}
	line := internalorders.LineItemInput{
		VariantID: variantID,
		Quantity:  quantity,
	}
	if line.SizeVariantID, err = validators.ParseOptionalUUIDField(l.SizeVariantID, "size_variant_id"); err != nil {
		return internalorders.LineItemInput{}, err
	}
	if l.Unit != nil {
		unit, err := enums.ParseUnitOfMeasure(*l.Unit)
		if err != nil {
			return internalorders.LineItemInput{}, err
		}
		line.Unit = unit
	}
	if line.UnitPrice, err = optionalDecimal(l.UnitPrice); err != nil {
		return internalorders.LineItemInput{}, err
	}
	if line.TotalCost, err = optionalDecimal(l.TotalCost); err != nil {
		return internalorders.LineItemInput{}, err
	}
	return line, nil
}

func optionalDecimal(raw *string) (*decimal.Decimal, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	value, err := decimal.NewFromString(strings.TrimSpace(*raw))
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func parseDate(raw *string, field string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation(dateLayout, strings.TrimSpace(*raw), time.UTC)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+field).
			WithDetails(map[string]any{"field": field})
	}
	return &parsed, nil
}

func actorFromRequest(r *http.Request) *outbox.ActorRef {
	staffID := middleware.StaffIDFromContext(r.Context())
	if staffID == "" {
		return nil
	}
	return &outbox.ActorRef{StaffID: staffID, Source: "api"}
}
