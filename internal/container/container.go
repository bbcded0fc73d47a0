// Package container wires the application together with samber/do. Each
// *Package function registers the providers for one concern; binaries pick
// the packages they need.
package container

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/grafheim/linklytics/internal/analytics"
	"github.com/grafheim/linklytics/internal/geo"
	"github.com/grafheim/linklytics/internal/handlers"
	"github.com/grafheim/linklytics/internal/health"
	"github.com/grafheim/linklytics/internal/link"
	"github.com/grafheim/linklytics/internal/messaging"
	"github.com/grafheim/linklytics/internal/middleware"
	"github.com/grafheim/linklytics/internal/ratelimit"
	"github.com/grafheim/linklytics/internal/store"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jaevor/go-nanoid"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
)

// Options is the shared configuration surface, populated by humacli from
// flags and environment.
type Options struct {
	Port               int    `default:"8888"                                   help:"Port to listen on"                                 short:"p"`
	BaseURL            string `default:"http://localhost:8888"                  help:"Public base URL for short links"`
	DefaultRedirectURL string `default:"/"                                      help:"Where unknown or expired codes redirect to"`
	DatabaseURL        string `default:"postgres://localhost:5432/linklytics"   help:"PostgreSQL connection string"`
	RedisAddr          string `default:"localhost:6379"                         help:"Redis server address"                              short:"r"`
	CodeLength         int    `default:"8"                                      help:"Length of generated short codes"                   short:"c"`
	CacheTTLSeconds    int    `default:"300"                                    help:"Link cache TTL in seconds, 0 disables expiry"`
	GeoDBPath          string `default:""                                       help:"Path to a MaxMind GeoLite2 City database, optional"`
	IPHeaders          string `default:"X-Forwarded-For,X-Real-IP"              help:"Forwarded-IP headers in descending priority"`
	LogFormat          string `default:"console"                                help:"Log format: console or json"`
	RatePerMinute      int    `default:"30"                                     help:"Link creations allowed per IP per minute"`
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

// RedisPackage provides the Redis client.
func RedisPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*redis.Client, error) {
		options := do.MustInvoke[*Options](i)

		return redis.NewClient(&redis.Options{Addr: options.RedisAddr}), nil
	})
}

// PostgresPackage provides the pgx connection pool.
func PostgresPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*pgxpool.Pool, error) {
		options := do.MustInvoke[*Options](i)

		pool, err := pgxpool.New(context.Background(), options.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}

		return pool, nil
	})
}

// GeoPackage provides the geo locator: MaxMind when a database path is
// configured, otherwise a no-op.
func GeoPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (geo.Locator, error) {
		options := do.MustInvoke[*Options](i)

		if options.GeoDBPath == "" {
			return geo.Noop{}, nil
		}

		return geo.Open(options.GeoDBPath)
	})
}

// RepositoryPackage provides the storage-backed domain services: the
// cached link repository, click store, resolver, link service, and
// aggregation engine.
func RepositoryPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (link.Repository, error) {
		options := do.MustInvoke[*Options](i)
		pool := do.MustInvoke[*pgxpool.Pool](i)
		client := do.MustInvoke[*redis.Client](i)

		ttl := time.Duration(options.CacheTTLSeconds) * time.Second

		return store.NewRedisCachedLinkStore(store.NewPostgresLinkStore(pool), client, ttl), nil
	})

	do.Provide(injector, func(i *do.Injector) (analytics.Store, error) {
		pool := do.MustInvoke[*pgxpool.Pool](i)

		return store.NewPostgresClickStore(pool), nil
	})

	do.Provide(injector, func(i *do.Injector) (*link.Resolver, error) {
		return link.NewResolver(do.MustInvoke[link.Repository](i)), nil
	})

	do.Provide(injector, func(i *do.Injector) (*link.Service, error) {
		options := do.MustInvoke[*Options](i)

		generator, err := nanoid.Standard(options.CodeLength)
		if err != nil {
			return nil, fmt.Errorf("build code generator: %w", err)
		}

		return link.NewService(do.MustInvoke[link.Repository](i), generator), nil
	})

	do.Provide(injector, func(i *do.Injector) (*analytics.Engine, error) {
		return analytics.NewEngine(do.MustInvoke[analytics.Store](i)), nil
	})
}

// RateLimitPackage provides the Redis fixed-window limiter.
func RateLimitPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (ratelimit.Limiter, error) {
		options := do.MustInvoke[*Options](i)
		client := do.MustInvoke[*redis.Client](i)

		return ratelimit.NewFixedWindow(client, time.Minute, int64(options.RatePerMinute)), nil
	})
}

// PublisherGroupPackage provides the redisstream publisher and the click
// ingestor built on it.
func PublisherGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		client := do.MustInvoke[*redis.Client](i)

		publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
			Client: client,
		}, watermill.NewStdLogger(false, false))
		if err != nil {
			return nil, fmt.Errorf("create redisstream publisher: %w", err)
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(injector, func(i *do.Injector) (*analytics.Ingestor, error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)
		logger := do.MustInvoke[*zap.Logger](i)

		publish := messaging.NewPublishFunc[analytics.ClickEvent](group.Publisher(), analytics.TopicLinkClicked)

		return analytics.NewIngestor(publish, logger), nil
	})
}

// ConsumerGroupPackage provides the redisstream subscriber and a consumer
// group running the click consumer.
func ConsumerGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		client := do.MustInvoke[*redis.Client](i)
		logger := do.MustInvoke[*zap.Logger](i)
		clickStore := do.MustInvoke[analytics.Store](i)
		locator := do.MustInvoke[geo.Locator](i)

		subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
			Client:        client,
			ConsumerGroup: "linklytics-clicks",
		}, watermill.NewStdLogger(false, false))
		if err != nil {
			return nil, fmt.Errorf("create redisstream subscriber: %w", err)
		}

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(messaging.NewConsumer(
			subscriber,
			analytics.TopicLinkClicked,
			analytics.NewClickHandler(clickStore, locator),
			logger,
		))

		return group, nil
	})
}

// HTTPPackage provides the chi router and the huma API with all routes and
// middleware registered.
func HTTPPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(injector, func(i *do.Injector) (huma.API, error) {
		options := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)

		api := humachi.New(router, huma.DefaultConfig("linklytics", "1.0.0"))

		api.UseMiddleware(middleware.RequestMeta(splitHeaders(options.IPHeaders)))
		api.UseMiddleware(middleware.RateLimit(api, do.MustInvoke[ratelimit.Limiter](i), logger))

		redirects := handlers.NewRedirectHandler(
			do.MustInvoke[*link.Resolver](i),
			do.MustInvoke[*analytics.Ingestor](i),
			options.DefaultRedirectURL,
			logger,
		)
		links := handlers.NewLinksHandler(
			do.MustInvoke[*link.Service](i),
			do.MustInvoke[*analytics.Engine](i),
			options.BaseURL,
			logger,
		)
		reports := handlers.NewReportsHandler(do.MustInvoke[*analytics.Engine](i))

		handlers.RegisterRoutes(api, redirects, links, reports)

		health.RegisterRoutes(api, health.NewHandler(
			health.NewRedisChecker(do.MustInvoke[*redis.Client](i)),
			health.NewPostgresChecker(do.MustInvoke[*pgxpool.Pool](i)),
		))

		return api, nil
	})
}

func splitHeaders(csv string) []string {
	var out []string

	for _, h := range strings.Split(csv, ",") {
		if h = strings.TrimSpace(h); h != "" {
			out = append(out, h)
		}
	}

	return out
}
