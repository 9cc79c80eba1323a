package container

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/samber/do"
	"github.com/serroba/expiring-shortener/internal/analytics"
	analyticsstore "github.com/serroba/expiring-shortener/internal/analytics/store"
	"github.com/serroba/expiring-shortener/internal/messaging"
	"go.uber.org/zap"
)

// AnalyticsConsumerGroup is the Redis Streams consumer group shared by all
// consumer processes.
const AnalyticsConsumerGroup = "analytics"

// InProcessPubSubPackage provides the channel that carries events inside
// the server process when it runs without Redis. It is only built in
// memory mode.
func InProcessPubSubPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*gochannel.GoChannel, error) {
		logger := messaging.NewZapLogger(do.MustInvoke[*zap.Logger](i))

		return gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, logger), nil
	})
}

func inProcessPubSub(i *do.Injector) *gochannel.GoChannel {
	return do.MustInvoke[*gochannel.GoChannel](i)
}

func PublisherGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		opts := do.MustInvoke[*Options](i)

		if opts.InMemory() {
			return messaging.NewPublisherGroup(inProcessPubSub(i)), nil
		}

		r, err := do.Invoke[*Redis](i)
		if err != nil {
			return nil, err
		}

		publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
			Client: r.Client,
		}, messaging.NewZapLogger(do.MustInvoke[*zap.Logger](i)))
		if err != nil {
			return nil, err
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(i, func(i *do.Injector) (analytics.Publishers, error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return analytics.NewPublishers(group.Publisher()), nil
	})
}

func ConsumerGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		var subscriber message.Subscriber

		if opts.InMemory() {
			subscriber = inProcessPubSub(i)
		} else {
			r, err := do.Invoke[*Redis](i)
			if err != nil {
				return nil, err
			}

			subscriber, err = redisstream.NewSubscriber(redisstream.SubscriberConfig{
				Client:        r.Client,
				ConsumerGroup: AnalyticsConsumerGroup,
			}, messaging.NewZapLogger(logger))
			if err != nil {
				return nil, err
			}
		}

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(analytics.NewConsumers(subscriber, analyticsstore.NewNoop(logger), logger)...)

		return group, nil
	})
}
