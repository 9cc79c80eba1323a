// Package container wires the service together with samber/do.
package container

import "github.com/samber/do"

// NewServer returns an injector with everything the HTTP server needs.
// Services are built lazily on first invoke.
func NewServer(opts *Options) *do.Injector {
	i := do.New()

	do.ProvideValue(i, opts)
	LoggerPackage(i)
	MetricsPackage(i)
	RedisPackage(i)
	PostgresPackage(i)
	MongoPackage(i)
	RepositoryPackage(i)
	ServicePackage(i)
	RateLimitPackage(i)
	InProcessPubSubPackage(i)
	PublisherGroupPackage(i)
	ConsumerGroupPackage(i)
	HTTPPackage(i)

	return i
}

// NewConsumer returns an injector for the standalone analytics consumer.
func NewConsumer(opts *Options) *do.Injector {
	i := do.New()

	do.ProvideValue(i, opts)
	LoggerPackage(i)
	RedisPackage(i)
	InProcessPubSubPackage(i)
	ConsumerGroupPackage(i)

	return i
}
