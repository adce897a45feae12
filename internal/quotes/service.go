package quotes

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/floorline/backoffice/internal/catalog"
	"github.com/floorline/backoffice/internal/pricing"
	"github.com/floorline/backoffice/internal/settings"
	"github.com/floorline/backoffice/internal/valuation"
	"github.com/floorline/backoffice/pkg/db/models"
	"github.com/floorline/backoffice/pkg/enums"
	pkgerrors "github.com/floorline/backoffice/pkg/errors"
)

type variantLookup interface {
	FindVariant(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error)
}

type vendorLookup interface {
	FindVendor(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
}

type settingsReader interface {
	Get(ctx context.Context) (*models.GlobalPricingSettings, error)
}

// PolicyInput selects the pricing context. A nil SupplierID uses the global tiers.
type PolicyInput struct {
	SupplierID    *uuid.UUID
	PurchaserType enums.PurchaserType
}

// LineInput previews one line the way the order form would price it.
type LineInput struct {
	PolicyInput
	VariantID     uuid.UUID
	SizeVariantID *uuid.UUID
	Quantity      string
	UnitPrice     string
	TotalCost     string
	ToCartons     bool
}

// LineQuote is the previewed line and the policy used to price it.
type LineQuote struct {
	Policy      pricing.Policy `json:"policy"`
	Description string         `json:"description"`
	SKU         *string        `json:"sku,omitempty"`
	Line        valuation.Line `json:"line"`
	// SoldInCartons tells the form whether a carton conversion is offered.
	SoldInCartons bool `json:"sold_in_cartons"`
}

// Service resolves pricing policies and previews line valuations.
type Service interface {
	Policy(ctx context.Context, input PolicyInput) (pricing.Policy, error)
	QuoteLine(ctx context.Context, input LineInput) (*LineQuote, error)
}

type service struct {
	catalog  variantLookup
	vendors  vendorLookup
	settings settingsReader
}

func NewService(catalogRepo variantLookup, vendorRepo vendorLookup, settingsRepo settingsReader) (Service, error) {
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog lookup required")
	}
	if vendorRepo == nil {
		return nil, fmt.Errorf("vendor lookup required")
	}
	if settingsRepo == nil {
		return nil, fmt.Errorf("pricing settings reader required")
	}
	return &service{catalog: catalogRepo, vendors: vendorRepo, settings: settingsRepo}, nil
}

func (s *service) Policy(ctx context.Context, input PolicyInput) (pricing.Policy, error) {
	valuator, err := s.valuator(ctx, input)
	if err != nil {
		return pricing.Policy{}, err
	}
	return valuator.Policy(), nil
}

func (s *service) QuoteLine(ctx context.Context, input LineInput) (*LineQuote, error) {
	if input.VariantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant_id is required").
			WithDetails(map[string]any{"field": "variant_id"})
	}
	valuator, err := s.valuator(ctx, input.PolicyInput)
	if err != nil {
		return nil, err
	}

	variant, err := s.catalog.FindVariant(ctx, input.VariantID)
	if err != nil {
		return nil, lookupError(err, "variant_id", "variant not found", "load variant")
	}
	item, err := catalog.Resolve(variant, input.SizeVariantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "size variant does not belong to variant").
			WithDetails(map[string]any{"field": "size_variant_id"})
	}

	line := valuator.Seed(item)
	if input.Quantity != "" {
		valuator.SetQuantity(&line, input.Quantity)
	}
	if input.UnitPrice != "" {
		valuator.SetUnitPrice(&line, input.UnitPrice)
	}
	if input.TotalCost != "" {
		valuator.SetTotal(&line, input.TotalCost)
	}
	if input.ToCartons && item.HasCartons() {
		valuator.ToCartons(&line)
	}

	return &LineQuote{
		Policy:        valuator.Policy(),
		Description:   item.Description,
		SKU:           item.SKU,
		SoldInCartons: item.HasCartons(),
		Line:          line,
	}, nil
}

func (s *service) valuator(ctx context.Context, input PolicyInput) (valuation.Valuator, error) {
	if !input.PurchaserType.IsValid() {
		return valuation.Valuator{}, pkgerrors.New(pkgerrors.CodeValidation, "purchaser_type must be customer or installer").
			WithDetails(map[string]any{"field": "purchaser_type"})
	}

	row, err := s.settings.Get(ctx)
	if err != nil {
		if errors.Is(err, settings.ErrNotConfigured) {
			return valuation.Valuator{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "pricing settings not configured")
		}
		return valuation.Valuator{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pricing settings")
	}

	v := valuation.Valuator{
		Settings:  pricing.SettingsFromModel(row),
		Purchaser: input.PurchaserType,
	}
	if input.SupplierID != nil {
		vendor, err := s.vendors.FindVendor(ctx, *input.SupplierID)
		if err != nil {
			return valuation.Valuator{}, lookupError(err, "supplier_id", "supplier not found", "load supplier")
		}
		v.Vendor = pricing.OverrideFromVendor(vendor)
	}
	return v, nil
}

func lookupError(err error, field, notFound, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFound).
			WithDetails(map[string]any{"field": field})
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}
