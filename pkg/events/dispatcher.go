package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// envelope is the wire form of an event on the in-process bus.
type envelope struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// Dispatcher is the process-wide publish/subscribe channel for domain
// events. Subscriptions have an explicit lifecycle: Subscribe returns an
// unsubscribe function the consumer must call when it stops listening.
type Dispatcher struct {
	pubSub *gochannel.GoChannel
	topic  string
}

func NewDispatcher(topic string) *Dispatcher {
	return &Dispatcher{
		pubSub: gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{}),
		topic:  topic,
	}
}

// Publish delivers event to every live subscriber. Marshal failures are
// logged and dropped; the bus never fails a caller.
func (d *Dispatcher) Publish(event Event) {
	payload, err := json.Marshal(envelope{
		Type:       event.EventType(),
		Data:       event.Payload(),
		OccurredAt: event.Timestamp(),
	})
	if err != nil {
		log.Printf("[WARN] Failed to marshal event %s: %v", event.EventType(), err)
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := d.pubSub.Publish(d.topic, msg); err != nil {
		log.Printf("[WARN] Failed to publish event %s: %v", event.EventType(), err)
	}
}

// Subscribe returns a channel of events plus an unsubscribe function. The
// channel closes after unsubscribe is called.
func (d *Dispatcher) Subscribe(ctx context.Context) (<-chan BaseEvent, func(), error) {
	subCtx, cancel := context.WithCancel(ctx)
	messages, err := d.pubSub.Subscribe(subCtx, d.topic)
	if err != nil {
		cancel()
		return nil, nil, err
	}

	out := make(chan BaseEvent)
	go func() {
		defer close(out)
		for msg := range messages {
			var env envelope
			if err := json.Unmarshal(msg.Payload, &env); err != nil {
				log.Printf("[WARN] Failed to unmarshal event message: %v", err)
				msg.Ack()
				continue
			}
			msg.Ack()

			select {
			case out <- BaseEvent{Type: env.Type, Data: env.Data, OccurredAt: env.OccurredAt}:
			case <-subCtx.Done():
				return
			}
		}
	}()

	return out, cancel, nil
}

// Close shuts the underlying pub/sub down, closing all subscriber channels.
func (d *Dispatcher) Close() error {
	return d.pubSub.Close()
}
