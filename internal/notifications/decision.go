package notifications

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/floorline/backoffice/pkg/db/models"
	"github.com/floorline/backoffice/pkg/enums"
)

// DecisionInput describes a committed order transition that may warrant an email.
type DecisionInput struct {
	Order   *models.MaterialOrder
	Project *models.Project
	Event   enums.NotificationEvent
	// Notify is the caller's preference; nil means notify.
	Notify       *bool
	DamagedItems []models.OrderLineItem
	Replacement  *models.MaterialOrder
	Attachments  []string
	Notes        *string
}

// Decision says whether to notify, whom, and with what message.
type Decision struct {
	ShouldNotify bool
	Recipient    string
	Reason       string
	Message      Message
}

// Message is the payload handed to the delivery service.
type Message struct {
	Event              enums.NotificationEvent `json:"event"`
	OrderID            uuid.UUID               `json:"order_id"`
	ProjectID          uuid.UUID               `json:"project_id"`
	ProjectName        string                  `json:"project_name,omitempty"`
	Recipient          string                  `json:"recipient"`
	RecipientName      string                  `json:"recipient_name,omitempty"`
	Subject            string                  `json:"subject"`
	Body               []string                `json:"body"`
	DamagedItems       []DamagedItem           `json:"damaged_items,omitempty"`
	ReplacementOrderID *uuid.UUID              `json:"replacement_order_id,omitempty"`
	ReplacementETA     *time.Time              `json:"replacement_eta,omitempty"`
	Attachments        []string                `json:"attachments,omitempty"`
}

type DamagedItem struct {
	Description string  `json:"description"`
	SKU         *string `json:"sku,omitempty"`
	Quantity    string  `json:"quantity"`
	Unit        string  `json:"unit"`
}

const (
	reasonOptOut      = "caller opted out"
	reasonNoRecipient = "no contact email on file"
	reasonNotify      = "notify"
)

// Decide is pure: it never sends anything.
func Decide(in DecisionInput) Decision {
	recipient, name := recipientFor(in.Project, purchaserOf(in.Order))
	message := buildMessage(in, recipient, name)

	switch {
	case recipient == "":
		return Decision{Reason: reasonNoRecipient, Message: message}
	case in.Notify != nil && !*in.Notify:
		return Decision{Recipient: recipient, Reason: reasonOptOut, Message: message}
	default:
		return Decision{ShouldNotify: true, Recipient: recipient, Reason: reasonNotify, Message: message}
	}
}

func purchaserOf(order *models.MaterialOrder) enums.PurchaserType {
	if order == nil {
		return enums.PurchaserCustomer
	}
	return order.PurchaserType
}

func recipientFor(project *models.Project, purchaser enums.PurchaserType) (string, string) {
	if project == nil {
		return "", ""
	}
	if purchaser == enums.PurchaserInstaller {
		if project.Installer == nil {
			return "", ""
		}
		return trimmed(project.Installer.Email), project.Installer.Name
	}
	if project.Customer == nil {
		return "", ""
	}
	return trimmed(project.Customer.Email), project.Customer.Name
}

func trimmed(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}

func buildMessage(in DecisionInput, recipient, name string) Message {
	msg := Message{
		Event:         in.Event,
		Recipient:     recipient,
		RecipientName: name,
		Attachments:   in.Attachments,
	}
	if in.Project != nil {
		msg.ProjectName = in.Project.Name
	}
	if in.Order != nil {
		msg.OrderID = in.Order.ID
		msg.ProjectID = in.Order.ProjectID
	}

	switch in.Event {
	case enums.NotificationOrderDamaged:
		msg.Subject = subjectFor("Damaged materials for", msg.ProjectName)
		msg.Body = append(msg.Body, "Part of your material order arrived damaged. A replacement has been ordered.")
		for _, item := range in.DamagedItems {
			msg.DamagedItems = append(msg.DamagedItems, DamagedItem{
				Description: item.Description,
				SKU:         item.SKU,
				Quantity:    item.Quantity.String(),
				Unit:        item.Unit.String(),
			})
			msg.Body = append(msg.Body, fmt.Sprintf("- %s: %s %s", item.Description, item.Quantity.String(), item.Unit))
		}
		if in.Replacement != nil {
			id := in.Replacement.ID
			msg.ReplacementOrderID = &id
			msg.ReplacementETA = in.Replacement.ETADate
			if in.Replacement.ETADate != nil {
				msg.Body = append(msg.Body, "Expected replacement delivery: "+in.Replacement.ETADate.Format("Jan 2, 2006"))
			}
		}
	default:
		msg.Subject = subjectFor("Materials received for", msg.ProjectName)
		msg.Body = append(msg.Body, "Your materials have arrived and were checked in.")
	}

	if in.Notes != nil && strings.TrimSpace(*in.Notes) != "" {
		msg.Body = append(msg.Body, "Notes: "+strings.TrimSpace(*in.Notes))
	}
	return msg
}

func subjectFor(prefix, project string) string {
	if project == "" {
		return prefix + " your project"
	}
	return prefix + " " + project
}
