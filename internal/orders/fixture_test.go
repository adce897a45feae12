package orders

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/floorline/backoffice/internal/catalog"
	"github.com/floorline/backoffice/internal/notifications"
	"github.com/floorline/backoffice/internal/projects"
	"github.com/floorline/backoffice/internal/settings"
	"github.com/floorline/backoffice/internal/vendors"
	"github.com/floorline/backoffice/pkg/db"
	"github.com/floorline/backoffice/pkg/db/models"
	"github.com/floorline/backoffice/pkg/enums"
	"github.com/floorline/backoffice/pkg/outbox"
)

const ordersDDL = `
CREATE TABLE vendors (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	role TEXT NOT NULL,
	default_markup TEXT,
	pricing_method TEXT,
	dedicated_shipping_day INTEGER,
	order_email TEXT,
	rep_email TEXT,
	created_at DATETIME,
	updated_at DATETIME
);
CREATE TABLE global_pricing_settings (
	id INTEGER PRIMARY KEY,
	retail_markup TEXT NOT NULL,
	contractor_markup TEXT NOT NULL,
	calculation_method TEXT NOT NULL,
	updated_at DATETIME
);
CREATE TABLE product_variants (
	id TEXT PRIMARY KEY,
	vendor_id TEXT,
	product_name TEXT NOT NULL,
	name TEXT NOT NULL,
	sku TEXT,
	unit_cost TEXT,
	retail_price TEXT,
	uom TEXT NOT NULL,
	pricing_unit TEXT,
	carton_size TEXT,
	created_at DATETIME,
	updated_at DATETIME
);
CREATE TABLE size_variants (
	id TEXT PRIMARY KEY,
	variant_id TEXT NOT NULL,
	label TEXT NOT NULL,
	sku TEXT,
	unit_cost TEXT,
	uom TEXT,
	carton_size TEXT,
	created_at DATETIME,
	updated_at DATETIME
);
CREATE TABLE customers (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT,
	phone TEXT,
	created_at DATETIME,
	updated_at DATETIME
);
CREATE TABLE installers (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT,
	phone TEXT,
	created_at DATETIME,
	updated_at DATETIME
);
CREATE TABLE projects (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	customer_id TEXT NOT NULL,
	installer_id TEXT,
	created_at DATETIME,
	updated_at DATETIME
);
CREATE TABLE material_orders (
	id TEXT PRIMARY KEY,
	project_id TEXT NOT NULL,
	supplier_id TEXT NOT NULL,
	order_date DATETIME NOT NULL,
	eta_date DATETIME,
	purchaser_type TEXT NOT NULL,
	status TEXT NOT NULL,
	date_received DATETIME,
	notes TEXT,
	receipt_notes TEXT,
	receipt_attachments TEXT NOT NULL DEFAULT '[]',
	parent_order_id TEXT,
	overdue_notified_at DATETIME,
	created_at DATETIME,
	updated_at DATETIME
);
CREATE TABLE order_line_items (
	id TEXT PRIMARY KEY,
	order_id TEXT NOT NULL REFERENCES material_orders(id),
	position INTEGER NOT NULL DEFAULT 0,
	variant_id TEXT,
	size_variant_id TEXT,
	sku TEXT,
	description TEXT NOT NULL,
	quantity TEXT NOT NULL,
	unit TEXT NOT NULL,
	unit_cost_snapshot TEXT,
	markup_snapshot TEXT,
	pricing_method_snapshot TEXT,
	unit_price_sold TEXT,
	total_cost TEXT,
	created_at DATETIME,
	updated_at DATETIME
);
CREATE TABLE outbox_events (
	id TEXT PRIMARY KEY,
	event_type TEXT NOT NULL,
	aggregate_type TEXT NOT NULL,
	aggregate_id TEXT NOT NULL,
	payload BLOB NOT NULL,
	created_at DATETIME,
	published_at DATETIME,
	attempt_count INTEGER NOT NULL DEFAULT 0,
	last_error TEXT
);`

// mondayMorning is a fixed Monday used as "now" across the order tests.
var mondayMorning = time.Date(2026, time.October, 12, 9, 0, 0, 0, time.UTC)

type recordingSender struct {
	mu   sync.Mutex
	sent []notifications.Message
	err  error
}

func (r *recordingSender) Send(_ context.Context, msg notifications.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

type fixture struct {
	conn      *gorm.DB
	svc       *service
	sender    *recordingSender
	project   models.Project
	supplier  models.Vendor
	oak       models.ProductVariant
	tile      models.ProductVariant
	underlay  models.ProductVariant
	customer  string
	installer string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, conn.Exec(ordersDDL).Error)

	f := &fixture{
		conn:      conn,
		sender:    &recordingSender{},
		customer:  "dana@example.com",
		installer: "crew@ridgeinstalls.example",
	}
	f.seed(t)

	built, err := NewService(f.params(NewRepository(conn)))
	require.NoError(t, err)
	f.svc = built.(*service)
	f.svc.now = func() time.Time { return mondayMorning }
	return f
}

func (f *fixture) params(repo Repository) ServiceParams {
	return ServiceParams{
		Repo:                 repo,
		Tx:                   db.NewFromGorm(f.conn),
		Outbox:               outbox.NewService(outbox.NewRepository(f.conn), nil),
		Catalog:              catalog.NewRepository(f.conn),
		Vendors:              vendors.NewRepository(f.conn),
		Settings:             settings.NewRepository(f.conn),
		Projects:             projects.NewRepository(f.conn),
		Sender:               f.sender,
		NotificationsEnabled: true,
	}
}

func (f *fixture) seed(t *testing.T) {
	t.Helper()

	require.NoError(t, f.conn.Create(&models.GlobalPricingSettings{
		ID:                models.GlobalPricingSettingsID,
		RetailMarkup:      decimal.RequireFromString("40"),
		ContractorMarkup:  decimal.RequireFromString("25"),
		CalculationMethod: enums.PricingMarkup,
	}).Error)

	shippingDay := int(time.Wednesday)
	f.supplier = models.Vendor{
		ID:                   uuid.New(),
		Name:                 "Coastal Flooring Supply",
		Role:                 enums.VendorRoleSupplier,
		DedicatedShippingDay: &shippingDay,
	}
	require.NoError(t, f.conn.Create(&f.supplier).Error)

	customer := models.Customer{ID: uuid.New(), Name: "Dana Whitfield", Email: &f.customer}
	installer := models.Installer{ID: uuid.New(), Name: "Ridge Installs", Email: &f.installer}
	require.NoError(t, f.conn.Create(&customer).Error)
	require.NoError(t, f.conn.Create(&installer).Error)

	f.project = models.Project{ID: uuid.New(), Name: "Kitchen remodel", CustomerID: customer.ID, InstallerID: &installer.ID}
	require.NoError(t, f.conn.Omit("Customer", "Installer").Create(&f.project).Error)

	f.oak = f.variant(t, "Wide Plank Oak", "Natural", "OAK-NAT", "3.10", enums.UnitSquareFoot)
	f.tile = f.variant(t, "Porcelain Tile", "Slate", "TIL-SLT", "2.00", enums.UnitSquareFoot)
	f.underlay = f.variant(t, "Foam Underlay", "Standard", "UND-STD", "0.50", enums.UnitSquareFoot)
}

func (f *fixture) variant(t *testing.T, product, name, sku, cost string, uom enums.UnitOfMeasure) models.ProductVariant {
	t.Helper()
	unitCost := decimal.RequireFromString(cost)
	v := models.ProductVariant{
		ID:          uuid.New(),
		VendorID:    &f.supplier.ID,
		ProductName: product,
		Name:        name,
		SKU:         &sku,
		UnitCost:    &unitCost,
		UOM:         uom,
	}
	require.NoError(t, f.conn.Create(&v).Error)
	return v
}

func (f *fixture) createInput(variants ...models.ProductVariant) CreateOrderInput {
	lines := make([]LineItemInput, 0, len(variants))
	for _, v := range variants {
		lines = append(lines, LineItemInput{VariantID: v.ID, Quantity: decimal.NewFromInt(100)})
	}
	return CreateOrderInput{
		ProjectID:     f.project.ID,
		SupplierID:    f.supplier.ID,
		PurchaserType: enums.PurchaserCustomer,
		LineItems:     lines,
	}
}

func (f *fixture) placeOrder(t *testing.T, variants ...models.ProductVariant) *models.MaterialOrder {
	t.Helper()
	order, err := f.svc.CreateOrder(context.Background(), f.createInput(variants...))
	require.NoError(t, err)
	return order
}

func (f *fixture) reload(t *testing.T, id uuid.UUID) *models.MaterialOrder {
	t.Helper()
	order, err := NewRepository(f.conn).FindOrder(context.Background(), id)
	require.NoError(t, err)
	return order
}

func (f *fixture) countEvents(t *testing.T, eventType enums.OutboxEventType) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.conn.Model(&models.OutboxEvent{}).Where("event_type = ?", eventType).Count(&n).Error)
	return n
}

func (f *fixture) countOrders(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.conn.Model(&models.MaterialOrder{}).Count(&n).Error)
	return n
}
