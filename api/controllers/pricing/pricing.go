package pricing

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/floorline/backoffice/api/responses"
	"github.com/floorline/backoffice/api/validators"
	internalpricing "github.com/floorline/backoffice/internal/pricing"
	"github.com/floorline/backoffice/internal/quotes"
	"github.com/floorline/backoffice/internal/units"
	"github.com/floorline/backoffice/pkg/enums"
	pkgerrors "github.com/floorline/backoffice/pkg/errors"
	"github.com/floorline/backoffice/pkg/logger"
)

type calculateRequest struct {
	Cost       string `json:"cost" validate:"required,numeric"`
	Percentage string `json:"percentage" validate:"required,numeric"`
	Method     string `json:"method" validate:"required,oneof=markup margin"`
}

type calculateResponse struct {
	Price     decimal.Decimal `json:"price"`
	Rounded   decimal.Decimal `json:"rounded"`
	Priceable bool            `json:"priceable"`
}

type policyRequest struct {
	SupplierID    *string `json:"supplier_id,omitempty" validate:"omitempty,uuid"`
	PurchaserType string  `json:"purchaser_type" validate:"required,oneof=customer installer"`
}

type cartonsRequest struct {
	Quantity   string `json:"quantity" validate:"required,numeric"`
	UnitPrice  string `json:"unit_price" validate:"required,numeric"`
	CartonSize string `json:"carton_size" validate:"required,numeric"`
}

type cartonsResponse struct {
	Converted bool `json:"converted"`
	*units.Conversion
}

type lineQuoteRequest struct {
	policyRequest
	VariantID     string  `json:"variant_id" validate:"required,uuid"`
	SizeVariantID *string `json:"size_variant_id,omitempty" validate:"omitempty,uuid"`
	Quantity      string  `json:"quantity,omitempty" validate:"omitempty,numeric"`
	UnitPrice     string  `json:"unit_price,omitempty" validate:"omitempty,numeric"`
	TotalCost     string  `json:"total_cost,omitempty" validate:"omitempty,numeric"`
	ToCartons     bool    `json:"to_cartons,omitempty"`
}

// Calculate prices a cost under an explicit percentage and method.
func Calculate(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload calculateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cost, err := validators.ParseDecimalField(payload.Cost, "cost")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		percentage, err := validators.ParseDecimalField(payload.Percentage, "percentage")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method := enums.PricingMethod(payload.Method)
		price := internalpricing.CalculatePrice(cost, percentage, method)
		priceable := !cost.IsNegative() && internalpricing.Priceable(internalpricing.Policy{Percentage: percentage, Method: method})
		responses.WriteSuccess(w, calculateResponse{
			Price:     price,
			Rounded:   internalpricing.Round(price),
			Priceable: priceable,
		})
	}
}

// Policy resolves the policy in effect for a supplier and purchaser tier.
func Policy(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote service unavailable"))
			return
		}

		var payload policyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		policy, err := svc.Policy(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, policy)
	}
}

// Cartons converts a loose quantity into whole cartons.
func Cartons(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload cartonsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quantity, err := validators.ParseDecimalField(payload.Quantity, "quantity")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		unitPrice, err := validators.ParseDecimalField(payload.UnitPrice, "unit_price")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cartonSize, err := validators.ParseDecimalField(payload.CartonSize, "carton_size")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		conv, ok := units.ConvertToCartons(quantity, unitPrice, cartonSize)
		if !ok {
			responses.WriteSuccess(w, cartonsResponse{Converted: false})
			return
		}
		responses.WriteSuccess(w, cartonsResponse{Converted: true, Conversion: &conv})
	}
}

// LineQuote previews a catalog line priced for the given context.
func LineQuote(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote service unavailable"))
			return
		}

		var payload lineQuoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.QuoteLine(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

func (p policyRequest) toInput() (quotes.PolicyInput, error) {
	supplierID, err := validators.ParseOptionalUUIDField(p.SupplierID, "supplier_id")
	if err != nil {
		return quotes.PolicyInput{}, err
	}
	return quotes.PolicyInput{SupplierID: supplierID, PurchaserType: enums.PurchaserType(p.PurchaserType)}, nil
}

func (p lineQuoteRequest) toInput() (quotes.LineInput, error) {
	policy, err := p.policyRequest.toInput()
	if err != nil {
		return quotes.LineInput{}, err
	}
	variantID, err := validators.ParseUUIDField(p.VariantID, "variant_id")
	if err != nil {
		return quotes.LineInput{}, err
	}
	sizeVariantID, err := validators.ParseOptionalUUIDField(p.SizeVariantID, "size_variant_id")
	if err != nil {
		return quotes.LineInput{}, err
	}
	return quotes.LineInput{
		PolicyInput:   policy,
		VariantID:     variantID,
		SizeVariantID: sizeVariantID,
		Quantity:      p.Quantity,
		UnitPrice:     p.UnitPrice,
		TotalCost:     p.TotalCost,
		ToCartons:     p.ToCartons,
	}, nil
}
