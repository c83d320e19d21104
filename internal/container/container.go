// Package container builds the application object graph from config.
package container

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-api/config"
	"github.com/oksasatya/go-social-api/internal/application"
	"github.com/oksasatya/go-social-api/internal/domain/repository"
	"github.com/oksasatya/go-social-api/internal/infrastructure/memory"
	"github.com/oksasatya/go-social-api/internal/infrastructure/notify"
	pginfra "github.com/oksasatya/go-social-api/internal/infrastructure/postgres"
	"github.com/oksasatya/go-social-api/internal/infrastructure/search"
	storageinfra "github.com/oksasatya/go-social-api/internal/infrastructure/storage"
	handlers "github.com/oksasatya/go-social-api/internal/interface/http"
	"github.com/oksasatya/go-social-api/pkg/helpers"
)

// Container holds the constructed components shared by the router and commands.
// Optional backends (Redis, Elasticsearch, RabbitMQ) are nil when not configured.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger

	Pool   *pgxpool.Pool
	Redis  *redis.Client
	GCS    *storage.Client
	Rabbit *helpers.RabbitPublisher

	Users    repository.UserRepository
	JWT      *helpers.JWTManager
	Cookies  *helpers.CookieManager
	Pictures application.PictureStore
	Index    *search.ElasticUserIndex

	Credentials *application.CredentialService
	Graph       *application.GraphService
	Profiles    *application.ProfileService

	AuthHandler *handlers.AuthHandler
	UserHandler *handlers.UserHandler

	closers []func()
}

// Build connects the configured backends and wires services and handlers.
// On error everything opened so far is closed.
func Build(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (_ *Container, err error) {
	c := &Container{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			c.Close()
		}
	}()

	if err = c.buildStore(ctx); err != nil {
		return nil, err
	}
	if err = c.buildPictures(ctx); err != nil {
		return nil, err
	}
	c.buildOptional(ctx)

	c.JWT = helpers.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL)
	c.Cookies = helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure)
	c.wireServices()
	return c, nil
}

// FromParts wires services and handlers around an existing store and picture backend.
func FromParts(cfg *config.Config, logger *logrus.Logger, users repository.UserRepository, pictures application.PictureStore) *Container {
	c := &Container{Config: cfg, Logger: logger, Users: users, Pictures: pictures}
	c.JWT = helpers.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL)
	c.Cookies = helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure)
	c.wireServices()
	return c
}

func (c *Container) buildStore(ctx context.Context) error {
	cfg := c.Config
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		c.Logger.Warn("using in-memory user store; data is lost on restart")
		c.Users = memory.NewUserRepository()
	case config.StoreDriverPostgres:
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		c.Pool = pool
		c.closers = append(c.closers, pool.Close)
		c.Users = pginfra.NewUserRepository(pool)
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	return nil
}

func (c *Container) buildPictures(ctx context.Context) error {
	cfg := c.Config
	switch cfg.UploadDriver {
	case config.UploadDriverLocal:
		store, err := storageinfra.NewLocalStore(cfg.UploadDir, "/uploads", cfg.PublicBaseURL)
		if err != nil {
			return err
		}
		c.Pictures = store
	case config.UploadDriverGCS:
		client, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			return fmt.Errorf("init gcs: %w", err)
		}
		c.GCS = client
		c.closers = append(c.closers, func() { _ = client.Close() })
		c.Pictures = storageinfra.NewGCSStore(client, cfg.GCSBucket, cfg.GCSPrefix)
	case config.UploadDriverS3:
		client, err := helpers.NewS3Client(ctx, helpers.S3Options{
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			return fmt.Errorf("init s3: %w", err)
		}
		c.Pictures = storageinfra.NewS3Store(client, cfg.S3Bucket, cfg.S3Prefix, cfg.S3PublicURL)
	default:
		return fmt.Errorf("unknown UPLOAD_DRIVER %q", cfg.UploadDriver)
	}
	return nil
}

// buildOptional connects Redis, Elasticsearch and RabbitMQ. A backend that is
// unset or unreachable is logged and left nil; the API keeps working without it.
func (c *Container) buildOptional(ctx context.Context) {
	cfg := c.Config

	if cfg.RateLimitEnabled && cfg.RedisAddr != "" {
		rdb, err := helpers.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			c.Logger.WithError(err).Warn("redis unavailable, rate limiting disabled")
		} else {
			c.Redis = rdb
			c.closers = append(c.closers, func() { _ = rdb.Close() })
		}
	}

	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(ctx, addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			c.Logger.WithError(err).Warn("elasticsearch unavailable, search disabled")
		} else {
			c.Index = search.NewElasticUserIndex(es, cfg.ESUsersIndex)
		}
	}

	if cfg.RabbitMQURL != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			c.Logger.WithError(err).Warn("rabbitmq unavailable, email notifications disabled")
		} else {
			c.Rabbit = pub
			c.closers = append(c.closers, pub.Close)
		}
	}
}

func (c *Container) wireServices() {
	cfg := c.Config
	hasher := helpers.NewPasswordHasher(cfg.BcryptCost)

	c.Credentials = application.NewCredentialService(c.Users, hasher, c.JWT, c.Logger)
	c.Graph = application.NewGraphService(c.Users, c.Logger)
	c.Profiles = application.NewProfileService(c.Users, c.Pictures, c.Logger)

	// assigned only when set so the services see a nil interface, not a typed nil
	if c.Index != nil {
		c.Credentials.Index = c.Index
		c.Graph.Index = c.Index
		c.Profiles.Index = c.Index
	}
	if c.Rabbit != nil {
		n := notify.NewEmailNotifier(c.Rabbit, cfg.AppName)
		c.Credentials.Notify = n
		c.Graph.Notify = n
	}

	c.AuthHandler = handlers.NewAuthHandler(c.Credentials, c.Cookies, c.Logger)
	c.UserHandler = handlers.NewUserHandler(c.Profiles, c.Graph, c.Logger)
}

// Close releases backends in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
