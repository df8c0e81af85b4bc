package pubsub

import (
	"context"

	"cloud.google.com/go/pubsub"
	"social-calendar/infrastructure/logger"
)

// IEventPublisher publishes pipeline events (post published) to a Pub/Sub
// topic for downstream consumers such as the calendar UI and analytics.
type IEventPublisher interface {
	Publish(ctx context.Context, topic string, payload []byte) (string, error)
}

type EventPublisher struct {
	PubSubClient *pubsub.Client
}

func NewEventPublisher(pubSubClient *pubsub.Client) IEventPublisher {
	return &EventPublisher{PubSubClient: pubSubClient}
}

// NewPubSub connects to Google Cloud Pub/Sub for the given project.
func NewPubSub(ctx context.Context, projectID string) (*pubsub.Client, error) {
	return pubsub.NewClient(ctx, projectID)
}

func (p *EventPublisher) Publish(ctx context.Context, topicName string, payload []byte) (string, error) {
	if p.PubSubClient == nil {
		return "", nil
	}
	msg := &pubsub.Message{
		Data: payload,
	}

	topic := p.PubSubClient.Topic(topicName)

	// Create the topic if it doesn't exist.
	exists, err := topic.Exists(ctx)
	if err != nil {
		return "", err
	}
	if !exists {
		logger.GetLogger().WithField("topic", topicName).Info("Topic doesn't exist - creating it")
		if _, err = p.PubSubClient.CreateTopic(ctx, topicName); err != nil {
			return "", err
		}
	}

	serverId, err := topic.Publish(ctx, msg).Get(ctx)
	if err != nil {
		return "", err
	}

	logger.GetLogger().WithField("server ID", serverId).Info("Message published")
	return serverId, nil
}
