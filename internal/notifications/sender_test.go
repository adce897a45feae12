package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/floorline/backoffice/pkg/enums"
)

type fakeTopic struct {
	sent []*pubsub.Message
	err  error
}

func (f *fakeTopic) Publish(_ context.Context, msg *pubsub.Message) publishResult {
	f.sent = append(f.sent, msg)
	return fakeResult{err: f.err}
}

type fakeResult struct {
	err error
}

func (f fakeResult) Get(context.Context) (string, error) {
	return "msg-1", f.err
}

func TestPubSubSenderPublishesJSON(t *testing.T) {
	topic := &fakeTopic{}
	sender := &PubSubSender{pub: topic}
	msg := Message{Event: enums.NotificationOrderReceived, OrderID: uuid.New(), Recipient: "dana@example.com", Subject: "hi"}

	require.NoError(t, sender.Send(context.Background(), msg))
	require.Len(t, topic.sent, 1)
	require.Equal(t, "order_received", topic.sent[0].Attributes["event"])

	var decoded Message
	require.NoError(t, json.Unmarshal(topic.sent[0].Data, &decoded))
	require.Equal(t, msg.OrderID, decoded.OrderID)
	require.Equal(t, "dana@example.com", decoded.Recipient)
}

func TestPubSubSenderSurfacesFailures(t *testing.T) {
	sender := &PubSubSender{pub: &fakeTopic{err: errors.New("unavailable")}}
	err := sender.Send(context.Background(), Message{Recipient: "dana@example.com"})
	require.ErrorContains(t, err, "unavailable")

	require.Error(t, sender.Send(context.Background(), Message{}))

	_, err = NewPubSubSender(nil, nil)
	require.Error(t, err)
}
