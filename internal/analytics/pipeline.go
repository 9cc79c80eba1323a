package analytics

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/expiring-shortener/internal/messaging"
	"go.uber.org/zap"
)

// Publishers are the typed publish funcs used by the HTTP handlers.
type Publishers struct {
	URLCreated  messaging.Publish[URLCreatedEvent]
	URLAccessed messaging.Publish[URLAccessedEvent]
}

func NewPublishers(publisher message.Publisher) Publishers {
	return Publishers{
		URLCreated:  messaging.NewPublishFunc[URLCreatedEvent](publisher, TopicURLCreated),
		URLAccessed: messaging.NewPublishFunc[URLAccessedEvent](publisher, TopicURLAccessed),
	}
}

// NewConsumers wires one consumer per topic into store.
func NewConsumers(subscriber message.Subscriber, store Store, logger *zap.Logger) []messaging.Runnable {
	return []messaging.Runnable{
		messaging.NewConsumer(subscriber, TopicURLCreated, store.SaveURLCreated, logger),
		messaging.NewConsumer(subscriber, TopicURLAccessed, store.SaveURLAccessed, logger),
	}
}
