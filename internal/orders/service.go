package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/floorline/backoffice/internal/catalog"
	"github.com/floorline/backoffice/internal/notifications"
	"github.com/floorline/backoffice/internal/pricing"
	"github.com/floorline/backoffice/internal/settings"
	"github.com/floorline/backoffice/internal/valuation"
	"github.com/floorline/backoffice/pkg/db/models"
	dbtypes "github.com/floorline/backoffice/pkg/db/types"
	"github.com/floorline/backoffice/pkg/enums"
	pkgerrors "github.com/floorline/backoffice/pkg/errors"
	"github.com/floorline/backoffice/pkg/logger"
	"github.com/floorline/backoffice/pkg/metrics"
	"github.com/floorline/backoffice/pkg/outbox"
	"github.com/floorline/backoffice/pkg/outbox/payloads"
	"github.com/floorline/backoffice/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) (bool, error)
}

// Service owns the material order lifecycle.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*models.MaterialOrder, error)
	ReceiveOrder(ctx context.Context, input ReceiveOrderInput) (*ReceiveResult, error)
	ReportDamage(ctx context.Context, input ReportDamageInput) (*DamageResult, error)
	DeleteOrder(ctx context.Context, orderID uuid.UUID) error
	GetOrder(ctx context.Context, orderID uuid.UUID) (*models.MaterialOrder, error)
	ListProjectOrders(ctx context.Context, params ListParams) (*OrderList, error)
	FindOverdue(ctx context.Context, asOf time.Time, limit int) ([]models.MaterialOrder, error)
	FlagOverdue(ctx context.Context, asOf time.Time, limit int) (int, error)
}

// ServiceParams wires the order service. Sender, Logger and Metrics are optional.
type ServiceParams struct {
	Repo                 Repository
	Tx                   txRunner
	Outbox               outboxPublisher
	Catalog              VariantLookup
	Vendors              VendorLookup
	Settings             SettingsReader
	Projects             ProjectLookup
	Sender               notifications.Sender
	Logger               *logger.Logger
	Metrics              *metrics.OrderMetrics
	NotificationsEnabled bool
}

type service struct {
	repo          Repository
	tx            txRunner
	outbox        outboxPublisher
	catalog       VariantLookup
	vendors       VendorLookup
	settings      SettingsReader
	projects      ProjectLookup
	sender        notifications.Sender
	logg          *logger.Logger
	metrics       *metrics.OrderMetrics
	notifyEnabled bool
	now           func() time.Time
}

// NewService builds the order service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog lookup required")
	}
	if params.Vendors == nil {
		return nil, fmt.Errorf("vendor lookup required")
	}
	if params.Settings == nil {
		return nil, fmt.Errorf("pricing settings reader required")
	}
	if params.Projects == nil {
		return nil, fmt.Errorf("project lookup required")
	}
	return &service{
		repo:          params.Repo,
		tx:            params.Tx,
		outbox:        params.Outbox,
		catalog:       params.Catalog,
		vendors:       params.Vendors,
		settings:      params.Settings,
		projects:      params.Projects,
		sender:        params.Sender,
		logg:          params.Logger,
		metrics:       params.Metrics,
		notifyEnabled: params.NotificationsEnabled && params.Sender != nil,
		now:           time.Now,
	}, nil
}

func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.MaterialOrder, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	project, err := s.projects.FindProject(ctx, input.ProjectID)
	if err != nil {
		return nil, lookupError(err, "project_id", "project not found", "load project")
	}
	supplier, err := s.vendors.FindVendor(ctx, input.SupplierID)
	if err != nil {
		return nil, lookupError(err, "supplier_id", "supplier not found", "load supplier")
	}
	if !supplier.Role.CanSupply() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor does not supply materials").
			WithDetails(map[string]any{"field": "supplier_id"})
	}
	settingsRow, err := s.settings.Get(ctx)
	if err != nil {
		if errors.Is(err, settings.ErrNotConfigured) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "pricing settings not configured")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pricing settings")
	}

	valuator := valuation.Valuator{
		Settings:  pricing.SettingsFromModel(settingsRow),
		Vendor:    pricing.OverrideFromVendor(supplier),
		Purchaser: input.PurchaserType,
	}

	now := s.now().UTC()
	orderDate := now
	if input.OrderDate != nil {
		orderDate = input.OrderDate.UTC()
	}
	eta := input.ETADate
	if eta == nil && supplier.DedicatedShippingDay != nil {
		if suggested, ok := SuggestETA(orderDate, *supplier.DedicatedShippingDay); ok {
			eta = &suggested
		}
	}

	order := &models.MaterialOrder{
		ID:                 uuid.New(),
		ProjectID:          project.ID,
		SupplierID:         supplier.ID,
		OrderDate:          orderDate,
		ETADate:            eta,
		PurchaserType:      input.PurchaserType,
		Status:             enums.MaterialOrderStatusOrdered,
		Notes:              input.Notes,
		ReceiptAttachments: dbtypes.AttachmentRefs{},
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	items, err := s.buildLineItems(ctx, order.ID, valuator, input.LineItems)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.insertOrder(ctx, tx, order, items, input.Actor)
	})
	if err != nil {
		return nil, serviceError(err, "create order")
	}

	order.Items = items
	s.metrics.IncTransition("created")
	s.logInfo(ctx, order, "material order created")
	return order, nil
}

func validateCreate(input CreateOrderInput) error {
	var errs error
	if input.ProjectID == uuid.Nil {
		errs = multierr.Append(errs, errors.New("project_id is required"))
	}
	if input.SupplierID == uuid.Nil {
		errs = multierr.Append(errs, errors.New("supplier_id is required"))
	}
	if !input.PurchaserType.IsValid() {
		errs = multierr.Append(errs, fmt.Errorf("purchaser_type %q is invalid", input.PurchaserType))
	}
	if len(input.LineItems) == 0 {
		errs = multierr.Append(errs, errors.New("line_items must contain at least one item"))
	}
	for i, line := range input.LineItems {
		if line.VariantID == uuid.Nil {
			errs = multierr.Append(errs, fmt.Errorf("line_items[%d].variant_id is required", i))
		}
		if !line.Quantity.IsPositive() {
			errs = multierr.Append(errs, fmt.Errorf("line_items[%d].quantity must be greater than zero", i))
		}
		if line.Unit != "" && !line.Unit.IsValid() {
			errs = multierr.Append(errs, fmt.Errorf("line_items[%d].unit %q is invalid", i, line.Unit))
		}
		if line.UnitPrice != nil && line.UnitPrice.IsNegative() {
			errs = multierr.Append(errs, fmt.Errorf("line_items[%d].unit_price must not be negative", i))
		}
	}
	return validationError(errs)
}

// buildLineItems resolves each line against the catalog and freezes its price snapshot.
func (s *service) buildLineItems(ctx context.Context, orderID uuid.UUID, valuator valuation.Valuator, inputs []LineItemInput) ([]models.OrderLineItem, error) {
	policy := valuator.Policy()
	items := make([]models.OrderLineItem, 0, len(inputs))
	var errs error

	for i, in := range inputs {
		variant, err := s.catalog.FindVariant(ctx, in.VariantID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				errs = multierr.Append(errs, fmt.Errorf("line_items[%d].variant_id %s not found", i, in.VariantID))
				continue
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant")
		}
		effective, err := catalog.Resolve(variant, in.SizeVariantID)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("line_items[%d].size_variant_id: %w", i, err))
			continue
		}

		line := valuator.Seed(effective)
		switch {
		case in.Unit == enums.UnitCarton && effective.HasCartons():
			valuator.SetCartonQuantity(&line, in.Quantity.String())
		case in.Unit != "" && in.Unit != line.Unit && in.UnitPrice == nil && line.UnitPrice != nil:
			errs = multierr.Append(errs, fmt.Errorf("line_items[%d].unit %s differs from the catalog unit %s; unit_price is required", i, in.Unit, line.Unit))
			continue
		default:
			valuator.SetQuantity(&line, in.Quantity.String())
			if in.Unit != "" {
				line.Unit = in.Unit
			}
		}
		if in.UnitPrice != nil {
			valuator.SetUnitPrice(&line, in.UnitPrice.String())
		}
		if in.TotalCost != nil {
			valuator.SetTotal(&line, in.TotalCost.String())
		}

		item := models.OrderLineItem{
			ID:               uuid.New(),
			OrderID:          orderID,
			Position:         i,
			VariantID:        line.VariantID,
			SizeVariantID:    line.SizeVariantID,
			SKU:              effective.SKU,
			Description:      effective.Description,
			Quantity:         *line.Quantity,
			Unit:             line.Unit,
			UnitCostSnapshot: effective.UnitCost,
			UnitPriceSold:    line.UnitPrice,
			TotalCost:        line.TotalCost,
		}
		if effective.UnitCost != nil {
			pct := policy.Percentage
			method := policy.Method
			item.MarkupSnapshot = &pct
			item.PricingMethodSnapshot = &method
		}
		items = append(items, item)
	}

	if err := validationError(errs); err != nil {
		return nil, err
	}
	return items, nil
}

// insertOrder is the single creation path for new and replacement orders.
func (s *service) insertOrder(ctx context.Context, tx *gorm.DB, order *models.MaterialOrder, items []models.OrderLineItem, actor *outbox.ActorRef) error {
	if len(items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one line item")
	}
	repo := s.repo.WithTx(tx)

	if order.ParentOrderID != nil {
		parent, err := repo.FindOrder(ctx, *order.ParentOrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "parent order not found")
			}
			return err
		}
		if parent.ProjectID != order.ProjectID {
			return pkgerrors.New(pkgerrors.CodeValidation, "parent order belongs to another project")
		}
	}

	if err := repo.CreateOrder(ctx, order); err != nil {
		return err
	}
	if err := repo.CreateLineItems(ctx, items); err != nil {
		return err
	}

	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventMaterialOrderCreated,
		AggregateType: enums.AggregateMaterialOrder,
		AggregateID:   order.ID,
		Actor:         actor,
		Data: payloads.MaterialOrderCreatedEvent{
			OrderID:       order.ID,
			ProjectID:     order.ProjectID,
			SupplierID:    order.SupplierID,
			ParentOrderID: order.ParentOrderID,
			Status:        order.Status,
			PurchaserType: order.PurchaserType,
			ETADate:       order.ETADate,
			LineItemCount: len(items),
			OrderTotal:    orderTotal(items),
		},
	})
}

func (s *service) ReceiveOrder(ctx context.Context, input ReceiveOrderInput) (*ReceiveResult, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.loadOrder(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.AwaitingDelivery() {
		return nil, alreadyReceived(order)
	}

	update := ReceiptUpdate{
		DateReceived: s.receivedAt(input.DateReceived),
		Notes:        input.Notes,
		Attachments:  dbtypes.AttachmentRefs(input.Attachments).Clean(),
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ok, err := s.repo.WithTx(tx).MarkReceived(ctx, order.ID, update)
		if err != nil {
			return err
		}
		if !ok {
			return alreadyReceived(order)
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventMaterialOrderReceived,
			AggregateType: enums.AggregateMaterialOrder,
			AggregateID:   order.ID,
			Actor:         input.Actor,
			Data: payloads.MaterialOrderReceivedEvent{
				OrderID:        order.ID,
				ProjectID:      order.ProjectID,
				SupplierID:     order.SupplierID,
				DateReceived:   update.DateReceived,
				AttachmentRefs: update.Attachments,
			},
		})
	})
	if err != nil {
		return nil, serviceError(err, "receive order")
	}

	applyReceipt(order, update)
	s.metrics.IncTransition("received")
	s.logInfo(ctx, order, "material order received")

	outcome, warning := s.notify(ctx, notifications.DecisionInput{
		Order:       order,
		Event:       enums.NotificationOrderReceived,
		Notify:      input.Notify,
		Attachments: update.Attachments,
		Notes:       input.Notes,
	})
	return &ReceiveResult{Order: order, Notification: outcome, Warning: warning}, nil
}

func (s *service) ReportDamage(ctx context.Context, input ReportDamageInput) (*DamageResult, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if len(input.DamagedLineItemIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "select at least one damaged line item").
			WithDetails(map[string]any{"field": "damaged_line_item_ids"})
	}

	order, err := s.loadOrder(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.AwaitingDelivery() {
		return nil, alreadyReceived(order)
	}

	damaged, err := selectDamaged(order, input.DamagedLineItemIDs)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	update := ReceiptUpdate{
		DateReceived: s.receivedAt(input.DateReceived),
		Notes:        input.DamageNotes,
		Attachments:  dbtypes.AttachmentRefs(input.Attachments).Clean(),
	}
	parentID := order.ID
	replacement := &models.MaterialOrder{
		ID:                 uuid.New(),
		ProjectID:          order.ProjectID,
		SupplierID:         order.SupplierID,
		OrderDate:          now,
		ETADate:            input.ReplacementETA,
		PurchaserType:      order.PurchaserType,
		Status:             enums.MaterialOrderStatusDamageReplacement,
		Notes:              input.DamageNotes,
		ReceiptAttachments: dbtypes.AttachmentRefs{},
		ParentOrderID:      &parentID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	items := copyLineItems(replacement.ID, damaged)
	damagedIDs := make([]uuid.UUID, 0, len(damaged))
	for _, item := range damaged {
		damagedIDs = append(damagedIDs, item.ID)
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ok, err := s.repo.WithTx(tx).MarkReceived(ctx, order.ID, update)
		if err != nil {
			return err
		}
		if !ok {
			return alreadyReceived(order)
		}
		if err := s.insertOrder(ctx, tx, replacement, items, input.Actor); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventMaterialOrderDamageReported,
			AggregateType: enums.AggregateMaterialOrder,
			AggregateID:   order.ID,
			Actor:         input.Actor,
			Data: payloads.MaterialOrderDamageReportedEvent{
				OrderID:            order.ID,
				ReplacementOrderID: replacement.ID,
				ProjectID:          order.ProjectID,
				SupplierID:         order.SupplierID,
				DamagedLineItemIDs: damagedIDs,
				ReplacementETA:     replacement.ETADate,
				AttachmentRefs:     update.Attachments,
			},
		})
	})
	if err != nil {
		return nil, serviceError(err, "report damage")
	}

	applyReceipt(order, update)
	replacement.Items = items
	s.metrics.IncTransition("damage_reported")
	s.metrics.IncTransition("created")
	s.logInfo(s.withField(ctx, "replacement_order_id", replacement.ID.String()), order, "material order damage reported")

	outcome, warning := s.notify(ctx, notifications.DecisionInput{
		Order:        order,
		Event:        enums.NotificationOrderDamaged,
		Notify:       input.Notify,
		DamagedItems: damaged,
		Replacement:  replacement,
		Attachments:  update.Attachments,
		Notes:        input.DamageNotes,
	})
	return &DamageResult{
		Original:     order,
		Replacement:  replacement,
		Notification: outcome,
		Warning:      warning,
	}, nil
}

// selectDamaged returns the order's lines named by ids, in order position.
func selectDamaged(order *models.MaterialOrder, ids []uuid.UUID) ([]models.OrderLineItem, error) {
	wanted := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	damaged := make([]models.OrderLineItem, 0, len(wanted))
	for _, item := range order.Items {
		if _, ok := wanted[item.ID]; ok {
			damaged = append(damaged, item)
			delete(wanted, item.ID)
		}
	}

	if len(wanted) > 0 {
		var errs error
		for _, id := range ids {
			if _, ok := wanted[id]; ok {
				errs = multierr.Append(errs, fmt.Errorf("line item %s does not belong to order %s", id, order.ID))
				delete(wanted, id)
			}
		}
		return nil, validationError(errs)
	}
	return damaged, nil
}

// copyLineItems clones damaged lines at full quantity with their original price snapshot.
func copyLineItems(orderID uuid.UUID, source []models.OrderLineItem) []models.OrderLineItem {
	items := make([]models.OrderLineItem, 0, len(source))
	for i, src := range source {
		items = append(items, models.OrderLineItem{
			ID:                    uuid.New(),
			OrderID:               orderID,
			Position:              i,
			VariantID:             src.VariantID,
			SizeVariantID:         src.SizeVariantID,
			SKU:                   src.SKU,
			Description:           src.Description,
			Quantity:              src.Quantity,
			Unit:                  src.Unit,
			UnitCostSnapshot:      src.UnitCostSnapshot,
			MarkupSnapshot:        src.MarkupSnapshot,
			PricingMethodSnapshot: src.PricingMethodSnapshot,
			UnitPriceSold:         src.UnitPriceSold,
			TotalCost:             src.TotalCost,
		})
	}
	return items
}

func (s *service) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		deleted, err := s.repo.WithTx(tx).DeleteOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if !deleted {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventMaterialOrderDeleted,
			AggregateType: enums.AggregateMaterialOrder,
			AggregateID:   order.ID,
			Data: payloads.MaterialOrderDeletedEvent{
				OrderID:   order.ID,
				ProjectID: order.ProjectID,
				Status:    order.Status,
			},
		})
	})
	if err != nil {
		return serviceError(err, "delete order")
	}
	s.metrics.IncTransition("deleted")
	s.logInfo(ctx, order, "material order deleted")
	return nil
}

func (s *service) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.MaterialOrder, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	return s.loadOrder(ctx, orderID)
}

func (s *service) ListProjectOrders(ctx context.Context, params ListParams) (*OrderList, error) {
	if params.ProjectID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "project id required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.ListProjectOrders(ctx, params.ProjectID, limit+1, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list project orders")
	}

	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return &OrderList{Items: rows, Cursor: next}, nil
}

func (s *service) FindOverdue(ctx context.Context, asOf time.Time, limit int) ([]models.MaterialOrder, error) {
	rows, err := s.repo.ListOverdue(ctx, asOf, pagination.NormalizeLimit(limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list overdue orders")
	}
	return rows, nil
}

// FlagOverdue emits one overdue event per late order and stamps the order so it
// is not picked up again. Failures on one order do not stop the others.
func (s *service) FlagOverdue(ctx context.Context, asOf time.Time, limit int) (int, error) {
	rows, err := s.FindOverdue(ctx, asOf, limit)
	if err != nil {
		return 0, err
	}

	flagged := 0
	var errs error
	for _, order := range rows {
		emitted := false
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			var err error
			emitted, err = s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventMaterialOrderOverdue,
				AggregateType: enums.AggregateMaterialOrder,
				AggregateID:   order.ID,
				Data: payloads.MaterialOrderOverdueEvent{
					OrderID:     order.ID,
					ProjectID:   order.ProjectID,
					SupplierID:  order.SupplierID,
					ETADate:     *order.ETADate,
					DaysOverdue: daysBetween(*order.ETADate, asOf),
				},
			})
			if err != nil {
				return err
			}
			return s.repo.WithTx(tx).MarkOverdueNotified(ctx, order.ID, s.now().UTC())
		})
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("flag overdue order %s: %w", order.ID, err))
			continue
		}
		if emitted {
			flagged++
			s.metrics.IncTransition("overdue")
		}
	}
	return flagged, errs
}

// SuggestETA returns the next occurrence of the supplier's shipping weekday
// strictly after orderDate. It reports false for an invalid weekday.
func SuggestETA(orderDate time.Time, shippingDay int) (time.Time, bool) {
	if shippingDay < 0 || shippingDay > 6 {
		return time.Time{}, false
	}
	days := (shippingDay - int(orderDate.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	y, m, d := orderDate.Date()
	return time.Date(y, m, d+days, 0, 0, 0, 0, orderDate.Location()), true
}

func (s *service) notify(ctx context.Context, in notifications.DecisionInput) (NotificationOutcome, error) {
	if !s.notifyEnabled {
		return NotificationOutcome{Reason: "notifications disabled"}, nil
	}

	project, err := s.projects.FindProject(ctx, in.Order.ProjectID)
	if err != nil {
		return s.notificationFailed(ctx, in, NotificationOutcome{Attempted: true}, err)
	}
	in.Project = project

	decision := notifications.Decide(in)
	outcome := NotificationOutcome{Recipient: decision.Recipient, Reason: decision.Reason}
	if !decision.ShouldNotify {
		return outcome, nil
	}

	outcome.Attempted = true
	if err := s.sender.Send(ctx, decision.Message); err != nil {
		return s.notificationFailed(ctx, in, outcome, err)
	}
	outcome.Sent = true
	s.metrics.ObserveNotification(in.Event.String(), "sent")
	return outcome, nil
}

func (s *service) notificationFailed(ctx context.Context, in notifications.DecisionInput, outcome NotificationOutcome, err error) (NotificationOutcome, error) {
	warning := pkgerrors.Wrap(pkgerrors.CodeNotification, err, "order saved but notification failed")
	outcome.Error = warning.Message()
	s.metrics.ObserveNotification(in.Event.String(), "failed")
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"order_id": in.Order.ID.String(),
			"event":    in.Event,
		})
		s.logg.Warn(s.logg.WithField(logCtx, "error", err.Error()), "order notification failed")
	}
	return outcome, warning
}

func (s *service) loadOrder(ctx context.Context, orderID uuid.UUID) (*models.MaterialOrder, error) {
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) receivedAt(value *time.Time) time.Time {
	if value != nil && !value.IsZero() {
		return value.UTC()
	}
	return s.now().UTC()
}

func applyReceipt(order *models.MaterialOrder, update ReceiptUpdate) {
	received := update.DateReceived
	order.Status = enums.MaterialOrderStatusReceived
	order.DateReceived = &received
	order.ReceiptNotes = update.Notes
	order.ReceiptAttachments = dbtypes.AttachmentRefs(update.Attachments)
}

func alreadyReceived(order *models.MaterialOrder) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "order has already been received").
		WithDetails(map[string]any{"order_id": order.ID, "status": enums.MaterialOrderStatusReceived})
}

func orderTotal(items []models.OrderLineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		if item.TotalCost != nil {
			total = total.Add(*item.TotalCost)
		}
	}
	return total
}

func daysBetween(from, to time.Time) int {
	if !to.After(from) {
		return 0
	}
	return int(to.Sub(from).Hours() / 24)
}

func validationError(errs error) error {
	if errs == nil {
		return nil
	}
	messages := make([]string, 0)
	for _, err := range multierr.Errors(errs) {
		messages = append(messages, err.Error())
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, errs, messages[0]).
		WithDetails(map[string]any{"errors": messages})
}

func lookupError(err error, field, notFound, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeValidation, notFound).
			WithDetails(map[string]any{"field": field})
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}

// serviceError keeps typed errors raised inside a transaction and reports
// anything else as a single persistence failure.
func serviceError(err error, action string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}

func (s *service) withField(ctx context.Context, key string, value any) context.Context {
	if s.logg == nil {
		return ctx
	}
	return s.logg.WithField(ctx, key, value)
}

func (s *service) logInfo(ctx context.Context, order *models.MaterialOrder, msg string) {
	if s.logg == nil {
		return
	}
	logCtx := s.logg.WithOrderID(ctx, order.ID.String())
	logCtx = s.logg.WithFields(logCtx, map[string]any{
		"project_id": order.ProjectID.String(),
		"status":     order.Status,
	})
	s.logg.Info(logCtx, msg)
}
