// Package di provides dependency injection container for managing service lifecycle and dependencies.
package di

import (
	"context"
	"database/sql"
	"sync"

	"feedbackboard/internal/config"
	"feedbackboard/internal/database"
	"feedbackboard/internal/observability"
	"feedbackboard/internal/serviceinterfaces"
	"feedbackboard/internal/services"
	"feedbackboard/internal/storage"
	contextutils "feedbackboard/internal/utils"
)

// Service names registered by Initialize
const (
	ServiceStore    = "store"
	ServiceRegistry = "board_registry"
	ServiceNotifier = "notifier"
)

// ServiceContainerInterface defines the interface for service containers
type ServiceContainerInterface interface {
	GetService(name string) (interface{}, error)
	GetStore() (storage.KVStore, error)
	GetBoardRegistry() (*services.BoardRegistry, error)
	GetNotifier() (serviceinterfaces.NotifierInterface, error)
	GetDatabase() *sql.DB
	GetConfig() *config.Config
	GetLogger() *observability.Logger
	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// ServiceContainer manages all service dependencies and lifecycle
type ServiceContainer struct {
	cfg           *config.Config
	logger        *observability.Logger
	dbManager     *database.Manager
	db            *sql.DB
	services      map[string]interface{}
	mu            sync.RWMutex
	shutdownFuncs []func(context.Context) error
}

// NewServiceContainer creates a new dependency injection container
func NewServiceContainer(cfg *config.Config, logger *observability.Logger) *ServiceContainer {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &ServiceContainer{
		cfg:      cfg,
		logger:   logger,
		services: make(map[string]interface{}),
	}
}

// Initialize opens the configured storage backend and builds the services on top of it
func (sc *ServiceContainer) Initialize(ctx context.Context) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	store, err := sc.openStore(ctx)
	if err != nil {
		_ = sc.cleanup(ctx)
		return contextutils.WrapErrorf(err, "failed to open %s storage", sc.cfg.Storage.Backend)
	}
	sc.services[ServiceStore] = store

	sc.initializeServices(store)

	sc.logger.Info(ctx, "Services initialized", map[string]interface{}{
		"storage.backend":   sc.cfg.Storage.Backend,
		"board.per_session": sc.cfg.Board.PerSession,
		"webhook.enabled":   sc.cfg.Notifications.WebhookURL != "",
	})
	return nil
}

// openStore builds the KVStore for storage.backend; callers hold sc.mu
func (sc *ServiceContainer) openStore(ctx context.Context) (storage.KVStore, error) {
	switch sc.cfg.Storage.Backend {
	case config.StorageBackendMemory:
		return storage.NewMemoryStore(), nil

	case config.StorageBackendFile:
		return storage.NewFileStore(sc.cfg.Storage.FilePath)

	case config.StorageBackendPostgres:
		sc.dbManager = database.NewManager(sc.logger)
		db, err := sc.dbManager.InitDBWithConfig(ctx, sc.cfg.Database)
		if err != nil {
			return nil, contextutils.WrapErrorf(err, "failed to initialize database")
		}
		sc.db = db
		sc.shutdownFuncs = append(sc.shutdownFuncs, func(_ context.Context) error {
			return db.Close()
		})
		return storage.NewPostgresStore(db), nil

	default:
		return nil, contextutils.WrapErrorf(contextutils.ErrInvalidInput, "unsupported storage backend %q", sc.cfg.Storage.Backend)
	}
}

// initializeServices sets up all service dependencies
func (sc *ServiceContainer) initializeServices(store storage.KVStore) {
	registry := services.NewBoardRegistry(
		store,
		sc.logger,
		services.BoardOptionsFromConfig(sc.cfg.Board),
		sc.cfg.Board.PerSession,
	)
	sc.services[ServiceRegistry] = registry

	notifier := services.NewWebhookNotifier(sc.cfg.Notifications, sc.logger)
	sc.services[ServiceNotifier] = notifier
}

// GetService retrieves a service by name with type assertion
func (sc *ServiceContainer) GetService(name string) (interface{}, error) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	service, exists := sc.services[name]
	if !exists {
		return nil, contextutils.ErrorWithContextf("service %s not found", name)
	}
	return service, nil
}

// GetServiceAs performs type-safe service retrieval
func GetServiceAs[T any](sc *ServiceContainer, name string) (T, error) {
	var zero T
	service, err := sc.GetService(name)
	if err != nil {
		return zero, err
	}

	typed, ok := service.(T)
	if !ok {
		return zero, contextutils.ErrorWithContextf("service %s is not of expected type %T", name, zero)
	}
	return typed, nil
}

// GetStore returns the storage backend
func (sc *ServiceContainer) GetStore() (storage.KVStore, error) {
	return GetServiceAs[storage.KVStore](sc, ServiceStore)
}

// GetBoardRegistry returns the board registry
func (sc *ServiceContainer) GetBoardRegistry() (*services.BoardRegistry, error) {
	return GetServiceAs[*services.BoardRegistry](sc, ServiceRegistry)
}

// GetNotifier returns the webhook notifier, which may be disabled
func (sc *ServiceContainer) GetNotifier() (serviceinterfaces.NotifierInterface, error) {
	return GetServiceAs[serviceinterfaces.NotifierInterface](sc, ServiceNotifier)
}

// GetDatabase returns the database instance, nil unless the postgres backend is used
func (sc *ServiceContainer) GetDatabase() *sql.DB {
	return sc.db
}

// GetConfig returns the configuration
func (sc *ServiceContainer) GetConfig() *config.Config {
	return sc.cfg
}

// GetLogger returns the logger
func (sc *ServiceContainer) GetLogger() *observability.Logger {
	return sc.logger
}

// Shutdown gracefully shuts down all services
func (sc *ServiceContainer) Shutdown(ctx context.Context) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	return sc.cleanup(ctx)
}

// cleanup runs shutdown functions in reverse order of registration
func (sc *ServiceContainer) cleanup(ctx context.Context) error {
	var errors []error

	for i := len(sc.shutdownFuncs) - 1; i >= 0; i-- {
		if err := sc.shutdownFuncs[i](ctx); err != nil {
			sc.logger.Error(ctx, "Shutdown step failed", err)
			errors = append(errors, err)
		}
	}
	sc.shutdownFuncs = nil

	if len(errors) > 0 {
		return contextutils.ErrorWithContextf("shutdown errors: %v", errors)
	}
	return nil
}
