package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/floorline/backoffice/pkg/db/models"
	"github.com/floorline/backoffice/pkg/enums"
	pkgerrors "github.com/floorline/backoffice/pkg/errors"
)

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	require.Equal(t, code, typed.Code())
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)
}

func TestCreateOrderPricesLinesFromCatalog(t *testing.T) {
	f := newFixture(t)

	order := f.placeOrder(t, f.oak)

	require.Equal(t, enums.MaterialOrderStatusOrdered, order.Status)
	require.Nil(t, order.ParentOrderID)
	require.NotNil(t, order.ETADate)
	require.Equal(t, time.Date(2026, time.October, 14, 0, 0, 0, 0, time.UTC), *order.ETADate)

	stored := f.reload(t, order.ID)
	require.Len(t, stored.Items, 1)
	line := stored.Items[0]
	require.Equal(t, "Wide Plank Oak - Natural", line.Description)
	require.Equal(t, "OAK-NAT", *line.SKU)
	require.Equal(t, enums.UnitSquareFoot, line.Unit)
	require.True(t, line.UnitCostSnapshot.Equal(decimal.RequireFromString("3.10")))
	require.True(t, line.MarkupSnapshot.Equal(decimal.RequireFromString("40")))
	require.Equal(t, enums.PricingMarkup, *line.PricingMethodSnapshot)
	require.True(t, line.UnitPriceSold.Equal(decimal.RequireFromString("4.34")))
	require.True(t, line.TotalCost.Equal(decimal.RequireFromString("434")))

	require.EqualValues(t, 1, f.countEvents(t, enums.EventMaterialOrderCreated))
}

func TestCreateOrderUsesContractorTierForInstaller(t *testing.T) {
	f := newFixture(t)
	input := f.createInput(f.oak)
	input.PurchaserType = enums.PurchaserInstaller

	order, err := f.svc.CreateOrder(context.Background(), input)
	require.NoError(t, err)
	require.True(t, order.Items[0].UnitPriceSold.Equal(decimal.RequireFromString("3.88")))
}

func TestCreateOrderKeepsTypedPriceAndTotal(t *testing.T) {
	f := newFixture(t)
	price := decimal.RequireFromString("5.00")
	total := decimal.RequireFromString("450.00")
	eta := time.Date(2026, time.October, 20, 0, 0, 0, 0, time.UTC)

	input := f.createInput(f.oak)
	input.ETADate = &eta
	input.LineItems[0].UnitPrice = &price
	input.LineItems[0].TotalCost = &total

	order, err := f.svc.CreateOrder(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, eta, *order.ETADate)
	require.True(t, order.Items[0].UnitPriceSold.Equal(price))
	require.True(t, order.Items[0].TotalCost.Equal(total))
}

func TestCreateOrderValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateOrder(context.Background(), CreateOrderInput{PurchaserType: "wholesale"})
	requireCode(t, err, pkgerrors.CodeValidation)
	details, ok := pkgerrors.As(err).Details().(map[string]any)
	require.True(t, ok)
	require.Len(t, details["errors"], 4)

	input := f.createInput(f.oak)
	input.LineItems[0].Quantity = decimal.Zero
	_, err = f.svc.CreateOrder(context.Background(), input)
	requireCode(t, err, pkgerrors.CodeValidation)

	input = f.createInput(f.oak)
	input.LineItems = append(input.LineItems, LineItemInput{VariantID: uuid.New(), Quantity: decimal.NewFromInt(1)})
	_, err = f.svc.CreateOrder(context.Background(), input)
	requireCode(t, err, pkgerrors.CodeValidation)

	require.Zero(t, f.countOrders(t))
}

func TestCreateOrderRejectsNonSupplier(t *testing.T) {
	f := newFixture(t)
	maker := models.Vendor{ID: uuid.New(), Name: "Oak Mills", Role: enums.VendorRoleManufacturer}
	require.NoError(t, f.conn.Create(&maker).Error)

	input := f.createInput(f.oak)
	input.SupplierID = maker.ID
	_, err := f.svc.CreateOrder(context.Background(), input)
	requireCode(t, err, pkgerrors.CodeValidation)

	input.SupplierID = uuid.New()
	_, err = f.svc.CreateOrder(context.Background(), input)
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateOrderPricesCartonQuantityPerCarton(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.conn.Model(&models.ProductVariant{}).Where("id = ?", f.tile.ID).
		Update("carton_size", decimal.NewFromInt(15)).Error)

	input := f.createInput(f.tile)
	input.LineItems[0].Quantity = decimal.NewFromInt(2)
	input.LineItems[0].Unit = enums.UnitCarton

	order, err := f.svc.CreateOrder(context.Background(), input)
	require.NoError(t, err)

	item := f.reload(t, order.ID).Items[0]
	require.Equal(t, enums.UnitCarton, item.Unit)
	require.True(t, item.Quantity.Equal(decimal.NewFromInt(2)))
	require.True(t, item.UnitPriceSold.Equal(decimal.RequireFromString("42.00")))
	require.True(t, item.TotalCost.Equal(decimal.RequireFromString("84.00")))
	require.True(t, item.UnitCostSnapshot.Equal(decimal.RequireFromString("2.00")))
}

func TestCreateOrderRejectsUnitMismatchWithoutPrice(t *testing.T) {
	f := newFixture(t)

	input := f.createInput(f.tile)
	input.LineItems[0].Unit = enums.UnitCarton
	_, err := f.svc.CreateOrder(context.Background(), input)
	requireCode(t, err, pkgerrors.CodeValidation)
	require.Zero(t, f.countOrders(t))

	price := decimal.RequireFromString("30")
	input.LineItems[0].UnitPrice = &price
	order, err := f.svc.CreateOrder(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, enums.UnitCarton, order.Items[0].Unit)
	require.True(t, order.Items[0].TotalCost.Equal(decimal.NewFromInt(3000)))
}

func TestCreateOrderRoundsTypedValuesToStoredScale(t *testing.T) {
	f := newFixture(t)
	price := decimal.RequireFromString("2.345")
	total := decimal.RequireFromString("199.999")

	input := f.createInput(f.tile, f.oak)
	input.LineItems[0].UnitPrice = &price
	input.LineItems[1].TotalCost = &total

	order, err := f.svc.CreateOrder(context.Background(), input)
	require.NoError(t, err)

	stored := f.reload(t, order.ID)
	require.True(t, stored.Items[0].UnitPriceSold.Equal(decimal.RequireFromString("2.35")))
	require.True(t, stored.Items[0].TotalCost.Equal(decimal.NewFromInt(235)))
	require.True(t, stored.Items[1].TotalCost.Equal(decimal.NewFromInt(200)))
}

func TestCatalogCostChangeLeavesSnapshotsFrozen(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t, f.tile)
	require.NoError(t, f.conn.Model(&models.ProductVariant{}).Where("id = ?", f.tile.ID).
		Update("unit_cost", decimal.RequireFromString("9.99")).Error)

	fetched, err := f.svc.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	item := fetched.Items[0]
	require.True(t, item.UnitCostSnapshot.Equal(decimal.RequireFromString("2.00")))
	require.True(t, item.UnitPriceSold.Equal(decimal.RequireFromString("2.80")))
	require.True(t, item.TotalCost.Equal(decimal.RequireFromString("280")))

	res, err := f.svc.ReportDamage(context.Background(), damageInput(order.ID, item.ID, nil, nil))
	require.NoError(t, err)
	replaced := f.reload(t, res.Replacement.ID).Items[0]
	require.True(t, replaced.UnitCostSnapshot.Equal(decimal.RequireFromString("2.00")))
	require.True(t, replaced.UnitPriceSold.Equal(decimal.RequireFromString("2.80")))
	require.True(t, replaced.MarkupSnapshot.Equal(decimal.RequireFromString("40")))
}

func TestReportDamageAfterVariantDeleted(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t, f.tile)

	// Mirror ON DELETE SET NULL on order_line_items.variant_id.
	require.NoError(t, f.conn.Delete(&models.ProductVariant{}, "id = ?", f.tile.ID).Error)
	require.NoError(t, f.conn.Model(&models.OrderLineItem{}).Where("variant_id = ?", f.tile.ID).
		Update("variant_id", nil).Error)

	stored := f.reload(t, order.ID)
	require.Nil(t, stored.Items[0].VariantID)

	res, err := f.svc.ReportDamage(context.Background(), damageInput(order.ID, stored.Items[0].ID, nil, nil))
	require.NoError(t, err)

	item := f.reload(t, res.Replacement.ID).Items[0]
	require.Nil(t, item.VariantID)
	require.Equal(t, "TIL-SLT", *item.SKU)
	require.Equal(t, "Porcelain Tile - Slate", item.Description)
	require.True(t, item.UnitCostSnapshot.Equal(decimal.RequireFromString("2.00")))
	require.True(t, item.UnitPriceSold.Equal(decimal.RequireFromString("2.80")))
	require.True(t, item.TotalCost.Equal(decimal.RequireFromString("280")))
}

func TestReceiveOrderNotifiesCustomer(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t, f.oak)
	received := time.Date(2026, time.October, 14, 15, 30, 0, 0, time.UTC)

	res, err := f.svc.ReceiveOrder(context.Background(), ReceiveOrderInput{
		OrderID:      order.ID,
		DateReceived: &received,
		Attachments:  []string{"receipts/dock-1.jpg", " ", "receipts/dock-1.jpg"},
	})
	require.NoError(t, err)
	require.NoError(t, res.Warning)
	require.Equal(t, enums.MaterialOrderStatusReceived, res.Order.Status)
	require.True(t, res.Notification.Sent)
	require.Equal(t, f.customer, res.Notification.Recipient)

	require.Len(t, f.sender.sent, 1)
	require.Equal(t, enums.NotificationOrderReceived, f.sender.sent[0].Event)
	require.Equal(t, "Kitchen remodel", f.sender.sent[0].ProjectName)

	stored := f.reload(t, order.ID)
	require.Equal(t, enums.MaterialOrderStatusReceived, stored.Status)
	require.True(t, received.Equal(*stored.DateReceived))
	require.Equal(t, []string{"receipts/dock-1.jpg"}, []string(stored.ReceiptAttachments))
	require.EqualValues(t, 1, f.countEvents(t, enums.EventMaterialOrderReceived))
}

func TestReceiveOrderTwiceIsStateConflict(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t, f.oak)

	_, err := f.svc.ReceiveOrder(context.Background(), ReceiveOrderInput{OrderID: order.ID})
	require.NoError(t, err)
	first := f.reload(t, order.ID)

	f.svc.now = func() time.Time { return mondayMorning.Add(48 * time.Hour) }
	_, err = f.svc.ReceiveOrder(context.Background(), ReceiveOrderInput{OrderID: order.ID})
	requireCode(t, err, pkgerrors.CodeStateConflict)

	second := f.reload(t, order.ID)
	require.True(t, first.DateReceived.Equal(*second.DateReceived))
	require.EqualValues(t, 1, f.countEvents(t, enums.EventMaterialOrderReceived))
	require.Len(t, f.sender.sent, 1)
}

func TestReceiveOrderNotificationFailureIsWarning(t *testing.T) {
	f := newFixture(t)
	f.sender.err = errors.New("topic unavailable")
	order := f.placeOrder(t, f.oak)

	res, err := f.svc.ReceiveOrder(context.Background(), ReceiveOrderInput{OrderID: order.ID})
	require.NoError(t, err)
	requireCode(t, res.Warning, pkgerrors.CodeNotification)
	require.True(t, res.Notification.Attempted)
	require.False(t, res.Notification.Sent)
	require.NotEmpty(t, res.Notification.Error)

	require.Equal(t, enums.MaterialOrderStatusReceived, f.reload(t, order.ID).Status)
}

func TestReceiveOrderRespectsOptOut(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t, f.oak)
	notify := false

	res, err := f.svc.ReceiveOrder(context.Background(), ReceiveOrderInput{OrderID: order.ID, Notify: &notify})
	require.NoError(t, err)
	require.False(t, res.Notification.Attempted)
	require.Empty(t, f.sender.sent)
}

func TestReceiveOrderNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ReceiveOrder(context.Background(), ReceiveOrderInput{OrderID: uuid.New()})
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestReportDamageCreatesReplacement(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t, f.oak, f.tile, f.underlay)
	damagedID := order.Items[1].ID
	eta := time.Date(2026, time.October, 21, 0, 0, 0, 0, time.UTC)
	notes := "two cartons crushed"

	res, err := f.svc.ReportDamage(context.Background(), damageInput(order.ID, damagedID, &eta, &notes))
	require.NoError(t, err)
	require.NoError(t, res.Warning)

	original := f.reload(t, order.ID)
	require.Equal(t, enums.MaterialOrderStatusReceived, original.Status)
	require.NotNil(t, original.DateReceived)
	require.Equal(t, notes, *original.ReceiptNotes)

	replacement := f.reload(t, res.Replacement.ID)
	require.Equal(t, enums.MaterialOrderStatusDamageReplacement, replacement.Status)
	require.Equal(t, order.ID, *replacement.ParentOrderID)
	require.Equal(t, order.ProjectID, replacement.ProjectID)
	require.Equal(t, order.SupplierID, replacement.SupplierID)
	require.True(t, eta.Equal(*replacement.ETADate))
	require.Len(t, replacement.Items, 1)

	item := replacement.Items[0]
	require.NotEqual(t, damagedID, item.ID)
	require.Equal(t, "Porcelain Tile - Slate", item.Description)
	require.True(t, item.Quantity.Equal(decimal.NewFromInt(100)))
	require.True(t, item.UnitPriceSold.Equal(decimal.RequireFromString("2.80")))
	require.True(t, item.TotalCost.Equal(decimal.RequireFromString("280")))

	require.EqualValues(t, 2, f.countEvents(t, enums.EventMaterialOrderCreated))
	require.EqualValues(t, 1, f.countEvents(t, enums.EventMaterialOrderDamageReported))

	require.Len(t, f.sender.sent, 1)
	msg := f.sender.sent[0]
	require.Equal(t, enums.NotificationOrderDamaged, msg.Event)
	require.Len(t, msg.DamagedItems, 1)
	require.Equal(t, res.Replacement.ID, *msg.ReplacementOrderID)
}

func TestReportDamageOnReplacementChainsParent(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t, f.oak)

	first, err := f.svc.ReportDamage(context.Background(), damageInput(order.ID, order.Items[0].ID, nil, nil))
	require.NoError(t, err)

	second, err := f.svc.ReportDamage(context.Background(), damageInput(first.Replacement.ID, first.Replacement.Items[0].ID, nil, nil))
	require.NoError(t, err)
	require.Equal(t, first.Replacement.ID, *second.Replacement.ParentOrderID)
	require.EqualValues(t, 3, f.countOrders(t))
}

func TestReportDamageRequiresSelection(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t, f.oak)

	_, err := f.svc.ReportDamage(context.Background(), ReportDamageInput{OrderID: order.ID})
	requireCode(t, err, pkgerrors.CodeStateConflict)
	require.Equal(t, enums.MaterialOrderStatusOrdered, f.reload(t, order.ID).Status)
}

func TestReportDamageRejectsForeignLineItems(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t, f.oak)
	other := f.placeOrder(t, f.tile)

	_, err := f.svc.ReportDamage(context.Background(), damageInput(order.ID, other.Items[0].ID, nil, nil))
	requireCode(t, err, pkgerrors.CodeValidation)
	require.Equal(t, enums.MaterialOrderStatusOrdered, f.reload(t, order.ID).Status)
	require.EqualValues(t, 2, f.countOrders(t))
}

func TestReportDamageOnReceivedOrderIsStateConflict(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t, f.oak)
	_, err := f.svc.ReceiveOrder(context.Background(), ReceiveOrderInput{OrderID: order.ID})
	require.NoError(t, err)

	_, err = f.svc.ReportDamage(context.Background(), damageInput(order.ID, order.Items[0].ID, nil, nil))
	requireCode(t, err, pkgerrors.CodeStateConflict)
	require.EqualValues(t, 1, f.countOrders(t))
}

type failingLineItems struct {
	Repository
}

func (f failingLineItems) WithTx(tx *gorm.DB) Repository {
	return failingLineItems{Repository: f.Repository.WithTx(tx)}
}

func (failingLineItems) CreateLineItems(context.Context, []models.OrderLineItem) error {
	return errors.New("disk full")
}

func TestReportDamageRollsBackWhenReplacementFails(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t, f.oak, f.tile)

	broken, err := NewService(f.params(failingLineItems{Repository: NewRepository(f.conn)}))
	require.NoError(t, err)

	_, err = broken.ReportDamage(context.Background(), damageInput(order.ID, order.Items[0].ID, nil, nil))
	requireCode(t, err, pkgerrors.CodeDependency)

	stored := f.reload(t, order.ID)
	require.Equal(t, enums.MaterialOrderStatusOrdered, stored.Status)
	require.Nil(t, stored.DateReceived)
	require.EqualValues(t, 1, f.countOrders(t))
	require.Zero(t, f.countEvents(t, enums.EventMaterialOrderDamageReported))
	require.Empty(t, f.sender.sent)
}

func TestDeleteOrderLeavesReplacementLinked(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t, f.oak)
	res, err := f.svc.ReportDamage(context.Background(), damageInput(order.ID, order.Items[0].ID, nil, nil))
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteOrder(context.Background(), order.ID))

	_, err = f.svc.GetOrder(context.Background(), order.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)

	replacement := f.reload(t, res.Replacement.ID)
	require.Equal(t, order.ID, *replacement.ParentOrderID)
	require.Len(t, replacement.Items, 1)

	var orphaned int64
	require.NoError(t, f.conn.Model(&models.OrderLineItem{}).Where("order_id = ?", order.ID).Count(&orphaned).Error)
	require.Zero(t, orphaned)
	require.EqualValues(t, 1, f.countEvents(t, enums.EventMaterialOrderDeleted))

	requireCode(t, f.svc.DeleteOrder(context.Background(), order.ID), pkgerrors.CodeNotFound)
}

func TestListProjectOrdersPaginates(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 3; i++ {
		at := mondayMorning.Add(time.Duration(i) * time.Hour)
		f.svc.now = func() time.Time { return at }
		f.placeOrder(t, f.oak)
	}

	page, err := f.svc.ListProjectOrders(context.Background(), ListParams{ProjectID: f.project.ID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.NotEmpty(t, page.Cursor)
	require.True(t, page.Items[0].CreatedAt.After(page.Items[1].CreatedAt))

	next, err := f.svc.ListProjectOrders(context.Background(), ListParams{ProjectID: f.project.ID, Limit: 2, Cursor: page.Cursor})
	require.NoError(t, err)
	require.Len(t, next.Items, 1)
	require.Empty(t, next.Cursor)

	_, err = f.svc.ListProjectOrders(context.Background(), ListParams{ProjectID: f.project.ID, Cursor: "%%%"})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestFlagOverdueEmitsOnce(t *testing.T) {
	f := newFixture(t)
	late := f.placeOrder(t, f.oak)
	onTime := f.placeOrder(t, f.tile)
	_, err := f.svc.ReceiveOrder(context.Background(), ReceiveOrderInput{OrderID: onTime.ID})
	require.NoError(t, err)

	asOf := late.ETADate.Add(72 * time.Hour)
	flagged, err := f.svc.FlagOverdue(context.Background(), asOf, 50)
	require.NoError(t, err)
	require.Equal(t, 1, flagged)

	flagged, err = f.svc.FlagOverdue(context.Background(), asOf, 50)
	require.NoError(t, err)
	require.Zero(t, flagged)

	require.EqualValues(t, 1, f.countEvents(t, enums.EventMaterialOrderOverdue))
	require.NotNil(t, f.reload(t, late.ID).OverdueNotifiedAt)
}

func TestSuggestETA(t *testing.T) {
	tests := []struct {
		name string
		day  int
		want time.Time
		ok   bool
	}{
		{name: "later this week", day: int(time.Wednesday), want: time.Date(2026, time.October, 14, 0, 0, 0, 0, time.UTC), ok: true},
		{name: "same weekday rolls a week", day: int(time.Monday), want: time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC), ok: true},
		{name: "wraps past sunday", day: int(time.Sunday), want: time.Date(2026, time.October, 18, 0, 0, 0, 0, time.UTC), ok: true},
		{name: "invalid day", day: 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SuggestETA(mondayMorning, tt.day)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func damageInput(orderID, lineID uuid.UUID, eta *time.Time, notes *string) ReportDamageInput {
	return ReportDamageInput{
		OrderID:            orderID,
		DamagedLineItemIDs: []uuid.UUID{lineID},
		ReplacementETA:     eta,
		DamageNotes:        notes,
	}
}
