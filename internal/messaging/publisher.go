// Package messaging wraps watermill with typed publish and consume
// helpers so the rest of the codebase never touches raw message payloads.
package messaging

import (
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// Publish sends one typed event to its topic.
type Publish[T any] func(event *T) error

// NewPublishFunc binds a publisher and topic into a typed publish function.
func NewPublishFunc[T any](publisher message.Publisher, topic string) Publish[T] {
	return func(event *T) error {
		payload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("marshal event for %s: %w", topic, err)
		}

		msg := message.NewMessage(uuid.NewString(), payload)

		if err := publisher.Publish(topic, msg); err != nil {
			return fmt.Errorf("publish to %s: %w", topic, err)
		}

		return nil
	}
}

// PublisherGroup owns the underlying publisher's lifecycle so typed publish
// functions can be handed out freely.
type PublisherGroup struct {
	publisher message.Publisher
}

// NewPublisherGroup creates a publisher group.
func NewPublisherGroup(publisher message.Publisher) *PublisherGroup {
	return &PublisherGroup{publisher: publisher}
}

// Publisher exposes the raw publisher for building typed publish functions.
func (g *PublisherGroup) Publisher() message.Publisher {
	return g.publisher
}

// Shutdown closes the underlying publisher.
func (g *PublisherGroup) Shutdown() error {
	return g.publisher.Close()
}
