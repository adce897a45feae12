package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/floorline/backoffice/pkg/enums"
)

// Vendor is a manufacturer or supplier. The order core only reads it.
type Vendor struct {
	ID                   uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name                 string               `gorm:"column:name;not null"`
	Role                 enums.VendorRole     `gorm:"column:role;type:vendor_role;not null"`
	DefaultMarkup        *decimal.Decimal     `gorm:"column:default_markup;type:numeric(7,3)"`
	PricingMethod        *enums.PricingMethod `gorm:"column:pricing_method;type:pricing_method"`
	DedicatedShippingDay *int                 `gorm:"column:dedicated_shipping_day"`
	OrderEmail           *string              `gorm:"column:order_email"`
	RepEmail             *string              `gorm:"column:rep_email"`
	CreatedAt            time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
