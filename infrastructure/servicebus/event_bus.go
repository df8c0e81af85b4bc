package servicebus

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	"social-calendar/infrastructure/logger"
)

// IEventBus mirrors pipeline events onto an Azure Service Bus queue for
// tenants integrating through Azure.
type IEventBus interface {
	SendMessage(ctx context.Context, queue string, message []byte) error
}

type EventBus struct {
	AzservicebusClient *azservicebus.Client
}

func NewEventBus(azServiceBusClient *azservicebus.Client) IEventBus {
	return &EventBus{AzservicebusClient: azServiceBusClient}
}

// NewServiceBus connects using the default Azure credential chain.
func NewServiceBus(ctx context.Context, namespace string) (*azservicebus.Client, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, err
	}
	return azservicebus.NewClient(namespace, cred, nil)
}

func (b *EventBus) SendMessage(ctx context.Context, queue string, message []byte) error {
	if b.AzservicebusClient == nil {
		return nil
	}
	sender, err := b.AzservicebusClient.NewSender(queue, nil)
	if err != nil {
		logger.GetLogger().
			WithField("error", err).
			Error("Error while making new sender service bus.")
		return err
	}
	defer func(sender *azservicebus.Sender, ctx context.Context) {
		if err := sender.Close(ctx); err != nil {
			logger.GetLogger().
				WithField("error", err).
				Error("Error while closing sender.")
		}
	}(sender, ctx)

	sbMessage := &azservicebus.Message{
		Body: message,
	}
	if err := sender.SendMessage(ctx, sbMessage, nil); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while sending message.")
		return err
	}
	return nil
}
