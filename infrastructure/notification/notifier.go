package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"social-calendar/domain/model"
	"social-calendar/infrastructure/configuration"
	"social-calendar/infrastructure/logger"
	"social-calendar/infrastructure/pubsub"
	"social-calendar/infrastructure/servicebus"
)

// INotifier is the fire-and-forget notification collaborator of the
// publishing pipeline. Failures are logged, never propagated.
type INotifier interface {
	NotifyPostPublished(ctx context.Context, draft *model.Draft, successfulJobs []*model.PostJob)
	NotifyTokenExpiring(ctx context.Context, recipients []string, provider model.Provider, daysUntilExpiry int, reconnectLink string)
}

type Notifier struct {
	mailer   IMailer
	events   pubsub.IEventPublisher
	eventBus servicebus.IEventBus
	topic    string
	queue    string
}

func NewNotifier(mailer IMailer, events pubsub.IEventPublisher, eventBus servicebus.IEventBus, cfg configuration.Config) INotifier {
	topic := cfg.Pubsub.PublishedTopic
	if topic == "" {
		topic = "post-published"
	}
	queue := cfg.ServiceBus.Queue
	if queue == "" {
		queue = "post-published"
	}
	return &Notifier{mailer: mailer, events: events, eventBus: eventBus, topic: topic, queue: queue}
}

type postPublishedEvent struct {
	DraftID   int64     `json:"draft_id"`
	BrandID   int64     `json:"brand_id"`
	Channels  []string  `json:"channels"`
	Timestamp time.Time `json:"timestamp"`
}

// NotifyPostPublished collapses N channel successes into one event.
func (n *Notifier) NotifyPostPublished(ctx context.Context, draft *model.Draft, successfulJobs []*model.PostJob) {
	if len(successfulJobs) == 0 {
		return
	}
	channels := make([]string, 0, len(successfulJobs))
	for _, j := range successfulJobs {
		channels = append(channels, string(j.Channel))
	}
	payload, err := json.Marshal(postPublishedEvent{
		DraftID:   draft.ID,
		BrandID:   draft.BrandID,
		Channels:  channels,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("failed marshaling post published event")
		return
	}
	if n.events != nil {
		if _, err := n.events.Publish(ctx, n.topic, payload); err != nil {
			logger.GetLogger().WithField("error", err).WithField("draft_id", draft.ID).Warn("failed publishing post published event")
		}
	}
	if n.eventBus != nil {
		if err := n.eventBus.SendMessage(ctx, n.queue, payload); err != nil {
			logger.GetLogger().WithField("error", err).WithField("draft_id", draft.ID).Warn("failed mirroring post published event to service bus")
		}
	}
}

// NotifyTokenExpiring sends one warning email per recipient. Recipients are
// expected to be de-duplicated by the caller.
func (n *Notifier) NotifyTokenExpiring(ctx context.Context, recipients []string, provider model.Provider, daysUntilExpiry int, reconnectLink string) {
	if n.mailer == nil || len(recipients) == 0 {
		return
	}
	subject := fmt.Sprintf("Action needed: your %s connection expires in %d day(s)", provider, daysUntilExpiry)
	body := strings.Join([]string{
		fmt.Sprintf("The %s account connected to your brand will stop publishing in %d day(s).", provider, daysUntilExpiry),
		"",
		"Reconnect it here to keep scheduled posts going out:",
		reconnectLink,
	}, "\n")
	for _, to := range recipients {
		if err := n.mailer.Send(to, subject, body); err != nil {
			logger.GetLogger().WithField("error", err).WithField("to", to).Warn("failed sending token expiry warning")
		}
	}
}
