// Package container wires the service together with samber/do. Each
// XxxPackage function registers one concern; binaries compose the
// packages they need.
package container

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/shortkey/shortkey/internal/analytics"
	"github.com/shortkey/shortkey/internal/handlers"
	"github.com/shortkey/shortkey/internal/messaging"
	"github.com/shortkey/shortkey/internal/middleware"
	"github.com/shortkey/shortkey/internal/rewriter"
	"github.com/shortkey/shortkey/internal/shortener"
	"github.com/shortkey/shortkey/internal/store"
	"go.uber.org/zap"
)

// Options holds the service configuration, populated by humacli from
// flags and environment variables.
type Options struct {
	Port        int    `default:"8888"                                help:"Port to listen on"                          short:"p"`
	BaseURL     string `default:""                                    help:"Base URL for short links (defaults to http://localhost:<port>)" name:"base-url"`
	Backend     string `default:"redis"                               help:"Durable storage backend: redis, postgres or memory" short:"b"`
	RedisAddr   string `default:"localhost:6379"                      help:"Redis server address"                       name:"redis-addr"  short:"r"`
	PostgresURL string `default:"postgres://localhost:5432/shortkey"  help:"PostgreSQL connection string"               name:"postgres-url"`
	LogFormat   string `default:"console"                             help:"Log output format: console or json"         name:"log-format"`
}

// ResolvedBaseURL returns the configured base URL, defaulting to a
// localhost URL on the configured port.
func (o *Options) ResolvedBaseURL() string {
	if o.BaseURL != "" {
		return o.BaseURL
	}

	return fmt.Sprintf("http://localhost:%d", o.Port)
}

// LoggerPackage provides the zap logger.
func LoggerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*zap.Logger, error) {
		options := do.MustInvoke[*Options](i)

		if options.LogFormat == "json" {
			return zap.NewProduction()
		}

		return zap.NewDevelopment()
	})
}

// RedisPackage provides the shared Redis client, used by the redis
// storage backend and the event bus.
func RedisPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*redis.Client, error) {
		options := do.MustInvoke[*Options](i)

		return redis.NewClient(&redis.Options{Addr: options.RedisAddr}), nil
	})
}

// PostgresPackage provides a pgx pool; it is only dialed when the
// postgres backend is selected.
func PostgresPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*pgxpool.Pool, error) {
		options := do.MustInvoke[*Options](i)

		return pgxpool.New(context.Background(), options.PostgresURL)
	})
}

// StorePackage provides the KV substrate for the configured backend and
// the Store on top of it.
func StorePackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (store.KV, error) {
		options := do.MustInvoke[*Options](i)

		switch options.Backend {
		case "redis":
			return store.NewRedisKV(do.MustInvoke[*redis.Client](i)), nil
		case "postgres":
			kv := store.NewPostgresKV(do.MustInvoke[*pgxpool.Pool](i))
			if err := kv.EnsureSchema(context.Background()); err != nil {
				return nil, fmt.Errorf("ensure postgres schema: %w", err)
			}

			return kv, nil
		case "memory":
			return store.NewMemoryKV(), nil
		default:
			return nil, fmt.Errorf("unknown storage backend %q", options.Backend)
		}
	})

	do.Provide(injector, func(i *do.Injector) (*store.Store, error) {
		return store.New(do.MustInvoke[store.KV](i)), nil
	})

	do.Provide(injector, func(i *do.Injector) (handlers.Pinger, error) {
		options := do.MustInvoke[*Options](i)

		if options.Backend == "postgres" {
			return do.MustInvoke[*pgxpool.Pool](i), nil
		}

		return handlers.NewRedisPinger(do.MustInvoke[*redis.Client](i)), nil
	})
}

// CorePackage provides the shortener engine, the rewriter and the
// analytics projector.
func CorePackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*shortener.Engine, error) {
		return shortener.NewEngine(do.MustInvoke[*store.Store](i)), nil
	})

	do.Provide(injector, func(i *do.Injector) (*rewriter.Rewriter, error) {
		options := do.MustInvoke[*Options](i)

		return rewriter.New(do.MustInvoke[*shortener.Engine](i), options.ResolvedBaseURL()), nil
	})

	do.Provide(injector, func(i *do.Injector) (*analytics.Projector, error) {
		return analytics.NewProjector(do.MustInvoke[*store.Store](i)), nil
	})
}

// PublisherPackage provides the event bus publisher and the typed
// publish functions for analytics notifications.
func PublisherPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		client := do.MustInvoke[*redis.Client](i)

		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: client},
			watermill.NopLogger{},
		)
		if err != nil {
			return nil, fmt.Errorf("create publisher: %w", err)
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(injector, func(i *do.Injector) (messaging.Publish[analytics.EntryCreatedEvent], error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[analytics.EntryCreatedEvent](group.Publisher(), analytics.TopicEntryCreated), nil
	})

	do.Provide(injector, func(i *do.Injector) (messaging.Publish[analytics.ClickEvent], error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[analytics.ClickEvent](group.Publisher(), analytics.TopicClick), nil
	})
}

// ConsumerGroupPackage provides the consumer group that drains the
// analytics topics into the log sink.
func ConsumerGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		client := do.MustInvoke[*redis.Client](i)
		logger := do.MustInvoke[*zap.Logger](i)

		subscriber, err := redisstream.NewSubscriber(
			redisstream.SubscriberConfig{
				Client:        client,
				ConsumerGroup: "analytics",
			},
			watermill.NopLogger{},
		)
		if err != nil {
			return nil, fmt.Errorf("create subscriber: %w", err)
		}

		sink := analytics.NewLogSink(logger)

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(messaging.NewConsumer(subscriber, analytics.TopicEntryCreated, sink.HandleEntryCreated, logger))
		group.Add(messaging.NewConsumer(subscriber, analytics.TopicClick, sink.HandleClick, logger))

		return group, nil
	})
}

// HTTPPackage provides the router and the huma API with all routes and
// middleware registered.
func HTTPPackage(injector *do.Injector) {
	do.Provide(injector, func(_ *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(injector, func(i *do.Injector) (huma.API, error) {
		options := do.MustInvoke[*Options](i)
		router := do.MustInvoke[*chi.Mux](i)
		logger := do.MustInvoke[*zap.Logger](i)
		engine := do.MustInvoke[*shortener.Engine](i)
		urlStore := do.MustInvoke[*store.Store](i)

		api := humachi.New(router, huma.DefaultConfig("shortkey", "1.0.0"))
		api.UseMiddleware(middleware.RequestMeta(api))

		urls := handlers.NewURLHandler(
			engine,
			options.ResolvedBaseURL(),
			do.MustInvoke[messaging.Publish[analytics.EntryCreatedEvent]](i),
			do.MustInvoke[messaging.Publish[analytics.ClickEvent]](i),
			logger,
		)
		documents := handlers.NewDocumentHandler(do.MustInvoke[*rewriter.Rewriter](i), logger)
		stats := handlers.NewAnalyticsHandler(do.MustInvoke[*analytics.Projector](i), urlStore, logger)
		health := handlers.NewHealthHandler(do.MustInvoke[handlers.Pinger](i))

		handlers.RegisterRoutes(api, urls, documents, stats, health)

		return api, nil
	})
}
