package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/floorline/backoffice/pkg/db/models"
	"github.com/floorline/backoffice/pkg/enums"
)

func ptrDec(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func ptrUnit(u enums.UnitOfMeasure) *enums.UnitOfMeasure {
	return &u
}

func sampleVariant() *models.ProductVariant {
	sku := "OAK-NAT"
	variantID := uuid.New()
	return &models.ProductVariant{
		ID:          variantID,
		ProductName: "Wide Plank Oak",
		Name:        "Natural",
		SKU:         &sku,
		UnitCost:    ptrDec("3.10"),
		UOM:         enums.UnitSquareFoot,
		PricingUnit: ptrUnit(enums.UnitSquareFoot),
		CartonSize:  ptrDec("20"),
		SizeVariants: []models.SizeVariant{
			{ID: uuid.New(), VariantID: variantID, Label: "7in", UnitCost: ptrDec("3.60"), CartonSize: ptrDec("23.3")},
			{ID: uuid.New(), VariantID: variantID, Label: "5in"},
		},
	}
}

func TestResolveParentDefaults(t *testing.T) {
	variant := sampleVariant()
	eff, err := Resolve(variant, nil)
	require.NoError(t, err)
	require.Equal(t, "Wide Plank Oak - Natural", eff.Description)
	require.True(t, eff.UnitCost.Equal(decimal.RequireFromString("3.10")))
	require.False(t, eff.OwnCost)
	require.Equal(t, enums.UnitSquareFoot, eff.Unit())
	require.True(t, eff.HasCartons())
}

func TestResolveSizeOverrides(t *testing.T) {
	variant := sampleVariant()
	wide := variant.SizeVariants[0].ID

	eff, err := Resolve(variant, &wide)
	require.NoError(t, err)
	require.True(t, eff.OwnCost)
	require.True(t, eff.UnitCost.Equal(decimal.RequireFromString("3.60")))
	require.True(t, eff.CartonSize.Equal(decimal.RequireFromString("23.3")))
	require.Equal(t, "Wide Plank Oak - Natural (7in)", eff.Description)
	require.Equal(t, "OAK-NAT", *eff.SKU)
}

func TestResolveSizeWithoutOverridesInherits(t *testing.T) {
	variant := sampleVariant()
	narrow := variant.SizeVariants[1].ID

	eff, err := Resolve(variant, &narrow)
	require.NoError(t, err)
	require.False(t, eff.OwnCost)
	require.True(t, eff.UnitCost.Equal(decimal.RequireFromString("3.10")))
	require.True(t, eff.CartonSize.Equal(decimal.RequireFromString("20")))
}

func TestResolveForeignSizeVariant(t *testing.T) {
	other := uuid.New()
	_, err := Resolve(sampleVariant(), &other)
	require.Error(t, err)

	_, err = Resolve(nil, nil)
	require.Error(t, err)
}

func TestRepositoryFindVariant(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, conn.Exec(`
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
);`).Error)

	variant := sampleVariant()
	require.NoError(t, conn.Create(variant).Error)

	repo := NewRepository(conn)
	found, err := repo.FindVariant(context.Background(), variant.ID)
	require.NoError(t, err)
	require.Len(t, found.SizeVariants, 2)
	require.Equal(t, "5in", found.SizeVariants[0].Label)
	require.True(t, found.UnitCost.Equal(decimal.RequireFromString("3.10")))

	_, err = repo.FindVariant(context.Background(), uuid.New())
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
