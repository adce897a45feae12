package notifications

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/floorline/backoffice/pkg/db/models"
	"github.com/floorline/backoffice/pkg/enums"
)

func strPtr(v string) *string { return &v }

func boolPtr(v bool) *bool { return &v }

func projectWith(customerEmail, installerEmail *string) *models.Project {
	project := &models.Project{
		ID:       uuid.New(),
		Name:     "Lakeview basement",
		Customer: &models.Customer{Name: "Dana", Email: customerEmail},
	}
	if installerEmail != nil {
		project.Installer = &models.Installer{Name: "Ridge Installs", Email: installerEmail}
	}
	return project
}

func TestDecideMatrix(t *testing.T) {
	tests := []struct {
		name      string
		purchaser enums.PurchaserType
		customer  *string
		installer *string
		notify    *bool
		want      bool
		recipient string
	}{
		{name: "customer default", purchaser: enums.PurchaserCustomer, customer: strPtr("dana@example.com"), want: true, recipient: "dana@example.com"},
		{name: "installer default", purchaser: enums.PurchaserInstaller, customer: strPtr("dana@example.com"), installer: strPtr("crew@example.com"), want: true, recipient: "crew@example.com"},
		{name: "explicit opt in", purchaser: enums.PurchaserCustomer, customer: strPtr("dana@example.com"), notify: boolPtr(true), want: true, recipient: "dana@example.com"},
		{name: "opt out", purchaser: enums.PurchaserCustomer, customer: strPtr("dana@example.com"), notify: boolPtr(false), want: false, recipient: "dana@example.com"},
		{name: "customer without email", purchaser: enums.PurchaserCustomer, notify: boolPtr(true), want: false},
		{name: "blank email", purchaser: enums.PurchaserCustomer, customer: strPtr("   "), want: false},
		{name: "installer missing ignores customer", purchaser: enums.PurchaserInstaller, customer: strPtr("dana@example.com"), notify: boolPtr(true), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			project := projectWith(tt.customer, tt.installer)
			order := &models.MaterialOrder{ID: uuid.New(), ProjectID: project.ID, PurchaserType: tt.purchaser}

			got := Decide(DecisionInput{
				Order:   order,
				Project: project,
				Event:   enums.NotificationOrderReceived,
				Notify:  tt.notify,
			})
			require.Equal(t, tt.want, got.ShouldNotify)
			require.Equal(t, tt.recipient, got.Recipient)
			require.Equal(t, order.ID, got.Message.OrderID)
		})
	}
}

func TestDecideDamagedMessage(t *testing.T) {
	project := projectWith(strPtr("dana@example.com"), nil)
	eta := time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC)
	original := &models.MaterialOrder{ID: uuid.New(), ProjectID: project.ID, PurchaserType: enums.PurchaserCustomer}
	replacement := &models.MaterialOrder{ID: uuid.New(), ETADate: &eta}

	damaged := []models.OrderLineItem{
		{Description: "Wide Plank Oak - Natural", Quantity: decimal.NewFromInt(2), Unit: enums.UnitCarton},
	}

	got := Decide(DecisionInput{
		Order:        original,
		Project:      project,
		Event:        enums.NotificationOrderDamaged,
		Replacement:  replacement,
		Attachments:  []string{"receipts/photo-1.jpg"},
		Notes:        strPtr("two cartons crushed"),
		DamagedItems: damaged,
	})

	require.True(t, got.ShouldNotify)
	require.Equal(t, "Damaged materials for Lakeview basement", got.Message.Subject)
	require.Len(t, got.Message.DamagedItems, 1)
	require.Equal(t, "2", got.Message.DamagedItems[0].Quantity)
	require.Equal(t, replacement.ID, *got.Message.ReplacementOrderID)
	require.Equal(t, []string{"receipts/photo-1.jpg"}, got.Message.Attachments)
	require.Contains(t, got.Message.Body, "Notes: two cartons crushed")
	require.Contains(t, got.Message.Body, "Expected replacement delivery: Oct 21, 2026")
}

func TestDecideWithoutProject(t *testing.T) {
	got := Decide(DecisionInput{Event: enums.NotificationOrderReceived})
	require.False(t, got.ShouldNotify)
	require.Equal(t, "Materials received for your project", got.Message.Subject)
}
