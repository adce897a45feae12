package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"

	"github.com/floorline/backoffice/pkg/logger"
)

const publishTimeout = 10 * time.Second

// Sender delivers a notification message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type topicPublisher interface {
	Publish(ctx context.Context, msg *pubsub.Message) publishResult
}

type publishResult interface {
	Get(ctx context.Context) (string, error)
}

// PubSubSender hands messages to the mail delivery service over Pub/Sub.
type PubSubSender struct {
	pub  topicPublisher
	logg *logger.Logger
}

// NewPubSubSender wraps the notification topic publisher.
func NewPubSubSender(p *pubsub.Publisher, logg *logger.Logger) (*PubSubSender, error) {
	if p == nil {
		return nil, errors.New("notification publisher required")
	}
	return &PubSubSender{pub: gcpPublisher{p}, logg: logg}, nil
}

func (s *PubSubSender) Send(ctx context.Context, msg Message) error {
	if msg.Recipient == "" {
		return errors.New("notification recipient required")
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	result := s.pub.Publish(publishCtx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"event":    msg.Event.String(),
			"order_id": msg.OrderID.String(),
		},
	})
	if result == nil {
		return errors.New("publisher returned no result")
	}
	id, err := result.Get(publishCtx)
	if err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"message_id": id,
			"event":      msg.Event,
			"order_id":   msg.OrderID.String(),
		})
		s.logg.Info(logCtx, "notification queued")
	}
	return nil
}

type gcpPublisher struct {
	p *pubsub.Publisher
}

func (g gcpPublisher) Publish(ctx context.Context, msg *pubsub.Message) publishResult {
	return g.p.Publish(ctx, msg)
}
