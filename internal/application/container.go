// Package application provides application-level services and dependency
// injection.
package application

import (
	"context"
	"fmt"

	adapterCache "github.com/jbctechsolutions/parley/internal/adapters/cache"
	adapterProvider "github.com/jbctechsolutions/parley/internal/adapters/provider"
	"github.com/jbctechsolutions/parley/internal/adapters/provider/azure"
	"github.com/jbctechsolutions/parley/internal/adapters/provider/bedrock"
	appchat "github.com/jbctechsolutions/parley/internal/application/chat"
	"github.com/jbctechsolutions/parley/internal/application/ports"
	"github.com/jbctechsolutions/parley/internal/domain/session"
	"github.com/jbctechsolutions/parley/internal/infrastructure/config"
	"github.com/jbctechsolutions/parley/internal/infrastructure/history"
	"github.com/jbctechsolutions/parley/internal/infrastructure/logging"
	"github.com/jbctechsolutions/parley/internal/infrastructure/tokenizer"
	"github.com/jbctechsolutions/parley/internal/infrastructure/tracing"
)

// Container holds all application dependencies and provides a central point
// for dependency injection.
type Container struct {
	config  *config.Config
	verbose bool

	logger *logging.Logger
	tracer *tracing.Tracer

	registry      *adapterProvider.Registry
	estimator     *tokenizer.Estimator
	responseCache ports.ResponseCachePort

	chatService  *appchat.Service
	sessions     *session.Store
	historyStore *history.Store

	initialized bool
}

// NewContainer creates a new dependency injection container.
func NewContainer(cfg *config.Config, verbose bool) *Container {
	return &Container{
		config:  cfg,
		verbose: verbose,
	}
}

// Initialize wires all services in dependency order. Providers whose
// configuration is incomplete are skipped with a warning so the remaining
// providers stay usable; initialization only fails when nothing can be
// wired at all.
func (c *Container) Initialize(ctx context.Context) error {
	if c.initialized {
		return nil
	}

	logLevel := logging.Level(c.config.Logging.Level)
	if c.verbose {
		logLevel = logging.LevelDebug
	}
	c.logger = logging.Init(logging.Config{
		Level:      logLevel,
		Format:     logging.Format(c.config.Logging.Format),
		TimeFormat: logging.DefaultConfig().TimeFormat,
	})

	tracer, err := tracing.Init(ctx, tracing.Config{
		Enabled:      c.config.Tracing.Enabled,
		ExporterType: tracing.ExporterType(c.config.Tracing.ExporterType),
		OTLPEndpoint: c.config.Tracing.OTLPEndpoint,
		ServiceName:  c.config.Tracing.ServiceName,
		SampleRate:   c.config.Tracing.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	c.tracer = tracer

	c.registry = adapterProvider.NewRegistry()
	c.registerProviders(ctx)

	c.estimator = tokenizer.NewEstimator(c.logger)

	if c.config.Cache.Enabled {
		sqliteCache, err := adapterCache.NewSQLiteCache(c.config.Cache.Path, c.config.Cache.DefaultTTL)
		if err != nil {
			c.logger.Warn("opening response cache failed, falling back to in-memory cache",
				"path", c.config.Cache.Path,
				"error", err.Error(),
			)
			c.responseCache = adapterCache.NewMemoryCache(c.config.Cache.DefaultTTL)
		} else {
			c.responseCache = sqliteCache
		}
	}

	opts := []appchat.Option{
		appchat.WithLogger(c.logger),
		appchat.WithTracer(c.tracer),
	}
	if c.responseCache != nil {
		opts = append(opts, appchat.WithCache(c.responseCache, c.config.Cache.DefaultTTL))
	}

	chatService, err := appchat.NewService(c.registry, c.estimator, opts...)
	if err != nil {
		return fmt.Errorf("initializing chat service: %w", err)
	}
	c.chatService = chatService

	c.sessions = session.NewStore()
	c.sessions.Create()
	c.historyStore = history.NewStore()

	c.initialized = true
	return nil
}

// registerProviders builds each configured provider. A provider that cannot
// be built is logged and skipped, never fatal.
func (c *Container) registerProviders(ctx context.Context) {
	if c.config.Providers.Azure.Enabled {
		azureCfg := azure.Config{
			Endpoint:   c.config.Providers.Azure.Endpoint,
			APIKey:     c.config.Providers.Azure.APIKey,
			Deployment: c.config.Providers.Azure.Deployment,
			APIVersion: c.config.Providers.Azure.APIVersion,
			Timeout:    c.config.Providers.Azure.Timeout,
		}
		if azureCfg.APIVersion == "" {
			azureCfg.APIVersion = azure.DefaultAPIVersion
		}

		prov, err := azure.NewProvider(azureCfg)
		if err != nil {
			c.logger.Warn("skipping azure provider", "error", err.Error())
		} else if err := c.registry.Register(prov); err != nil {
			c.logger.Warn("registering azure provider failed", "error", err.Error())
		}
	}

	if c.config.Providers.Bedrock.Enabled {
		prov, err := bedrock.NewProvider(ctx, bedrock.Config{
			Region:  c.config.Providers.Bedrock.Region,
			ModelID: c.config.Providers.Bedrock.ModelID,
			Timeout: c.config.Providers.Bedrock.Timeout,
		})
		if err != nil {
			c.logger.Warn("skipping bedrock provider", "error", err.Error())
		} else if err := c.registry.Register(prov); err != nil {
			c.logger.Warn("registering bedrock provider failed", "error", err.Error())
		}
	}

	if c.registry.Count() == 0 {
		c.logger.Warn("no providers available; check credentials in config or environment")
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the application logger.
func (c *Container) Logger() *logging.Logger {
	return c.logger
}

// Tracer returns the application tracer.
func (c *Container) Tracer() *tracing.Tracer {
	return c.tracer
}

// Registry returns the provider registry.
func (c *Container) Registry() *adapterProvider.Registry {
	return c.registry
}

// ChatService returns the chat application service.
func (c *Container) ChatService() *appchat.Service {
	return c.chatService
}

// Sessions returns the in-memory session store.
func (c *Container) Sessions() *session.Store {
	return c.sessions
}

// HistoryStore returns the transcript persistence store.
func (c *Container) HistoryStore() *history.Store {
	return c.historyStore
}

// Close releases container resources.
func (c *Container) Close(ctx context.Context) error {
	var firstErr error

	if c.responseCache != nil {
		if err := c.responseCache.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if c.tracer != nil {
		if err := c.tracer.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
