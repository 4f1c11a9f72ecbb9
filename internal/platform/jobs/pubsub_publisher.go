package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/pubsub"

	"github.com/washdesk/api/internal/services"
)

// PubSubTransactionPublisher publishes recorded transaction events to a Pub/Sub topic.
type PubSubTransactionPublisher struct {
	topic   *pubsub.Topic
	marshal func(any) ([]byte, error)
}

// NewPubSubTransactionPublisher constructs a Pub/Sub backed transaction event publisher.
func NewPubSubTransactionPublisher(topic *pubsub.Topic) (*PubSubTransactionPublisher, error) {
	if topic == nil {
		return nil, errors.New("pubsub transaction publisher: topic is required")
	}
	return &PubSubTransactionPublisher{
		topic:   topic,
		marshal: json.Marshal,
	}, nil
}

// PublishTransactionEvent enqueues a transaction event message on the configured topic.
func (p *PubSubTransactionPublisher) PublishTransactionEvent(ctx context.Context, message services.TransactionEventMessage) (string, error) {
	if p == nil || p.topic == nil {
		return "", errors.New("pubsub transaction publisher: not initialised")
	}

	data, err := p.marshal(message)
	if err != nil {
		return "", fmt.Errorf("marshal transaction event: %w", err)
	}

	attrs := make(map[string]string)
	setAttr(attrs, "transactionId", message.TransactionID)
	setAttr(attrs, "operatorId", message.OperatorID)
	setAttr(attrs, "serviceType", message.ServiceTypeID)
	setAttr(attrs, "event", message.Event)

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: attrs,
	})

	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publish transaction event: %w", err)
	}
	return id, nil
}

func setAttr(attrs map[string]string, key string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		attrs[key] = v
	}
}
