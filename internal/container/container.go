// Package container manages application dependencies and lifecycle.
// Components are initialized in dependency order and torn down in reverse.
package container

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/ajabadia/caseflow/internal/application/port"
	"github.com/ajabadia/caseflow/internal/application/service"
	"github.com/ajabadia/caseflow/internal/config"
	"github.com/ajabadia/caseflow/internal/infrastructure/persistence/repository"
	"github.com/ajabadia/caseflow/internal/infrastructure/persistence/sqlite"
	httpapi "github.com/ajabadia/caseflow/internal/interfaces/http"
	"github.com/ajabadia/caseflow/pkg/database"
)

// Container wires repositories, services and the HTTP server.
type Container struct {
	config *config.Config
	logger *zap.Logger

	// Infrastructure
	db   *database.DB
	txDB *sqlite.DB

	// Application
	repositories *RepositoryBundle
	services     *ServiceBundle
	server       *httpapi.Server

	// Lifecycle
	mu     sync.Mutex
	ready  atomic.Bool
	closed atomic.Bool
}

// RepositoryBundle groups all repositories for convenient access.
type RepositoryBundle struct {
	Case     port.CaseRepository
	Task     port.WorkflowTaskRepository
	Template port.TemplateRepository
	Feedback port.FeedbackRepository
	Audit    port.AuditRepository
}

// ServiceBundle groups all application services.
type ServiceBundle struct {
	Workflow service.WorkflowService
	Task     service.TaskService
	Engine   service.TransitionEngine
	Feedback service.FeedbackRecorder
	Auditor  service.AuditRecorder
}

// New creates a container from validated configuration.
func New(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Start initializes all components:
// 1. Database, migrations and repositories
// 2. Application services
// 3. HTTP server
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.logger.Info("Starting container initialization")

	if err := c.initDatabase(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.logger.Info("Database initialized")

	c.initServices()
	c.logger.Info("Application services initialized")

	c.initServer()
	c.logger.Info("HTTP server initialized")

	c.ready.Store(true)
	return nil
}

func (c *Container) initDatabase() error {
	db, err := database.New(database.Config{
		Path:            c.config.Database.Path,
		MaxOpenConns:    c.config.Database.MaxOpenConns,
		MaxIdleConns:    c.config.Database.MaxIdleConns,
		ConnMaxLifetime: c.config.Database.ConnMaxLifetime,
	}, c.logger)
	if err != nil {
		return err
	}
	c.db = db

	migrator := database.NewMigrator(db, c.logger)
	if err := migrator.RunMigrations(c.config.Database.MigrationsDir); err != nil {
		return err
	}

	c.txDB = sqlite.NewDB(db.DB, c.logger)

	c.repositories = &RepositoryBundle{
		Case:     repository.NewCaseRepository(db.DB, c.logger),
		Task:     repository.NewTaskRepository(db.DB, c.logger),
		Template: repository.NewTemplateRepository(db.DB, c.logger),
		Feedback: repository.NewFeedbackRepository(db.DB, c.logger),
		Audit:    repository.NewAuditRepository(db.DB, c.logger),
	}

	return nil
}

func (c *Container) initServices() {
	serviceLogger := &zapLoggerAdapter{logger: c.logger}

	auditor := service.NewAuditRecorder(c.repositories.Audit, serviceLogger)
	feedback := service.NewFeedbackRecorder(c.repositories.Feedback, c.repositories.Audit, c.txDB, serviceLogger)
	tasks := service.NewTaskService(c.repositories.Task, auditor, serviceLogger)
	engine := service.NewTransitionEngine(c.repositories.Case, c.repositories.Template, auditor, serviceLogger)
	workflow := service.NewWorkflowService(tasks, engine, feedback, auditor, serviceLogger)

	c.services = &ServiceBundle{
		Workflow: workflow,
		Task:     tasks,
		Engine:   engine,
		Feedback: feedback,
		Auditor:  auditor,
	}
}

func (c *Container) initServer() {
	c.server = httpapi.NewServer(httpapi.ServerConfig{
		Host:         c.config.Server.Host,
		Port:         c.config.Server.Port,
		ReadTimeout:  c.config.Server.ReadTimeout,
		WriteTimeout: c.config.Server.WriteTimeout,
	}, c.services.Workflow, c.services.Task, c.services.Engine, &zapLoggerAdapter{logger: c.logger})
}

// Close shuts down components in reverse order.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return nil
	}
	c.closed.Store(true)
	c.ready.Store(false)

	if c.server != nil {
		if err := c.server.Stop(); err != nil {
			c.logger.Error("Failed to stop HTTP server", zap.Error(err))
		}
	}
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Ready reports whether the container finished initialization.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// DB returns the transaction manager.
func (c *Container) DB() port.TransactionManager {
	return c.txDB
}

// Repositories returns all repositories.
func (c *Container) Repositories() *RepositoryBundle {
	return c.repositories
}

// Services returns all application services.
func (c *Container) Services() *ServiceBundle {
	return c.services
}

// Server returns the HTTP server.
func (c *Container) Server() *httpapi.Server {
	return c.server
}

// zapLoggerAdapter adapts zap.Logger to the service.Logger interface.
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, convertToZapFields(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, convertToZapFields(keysAndValues...)...)
}

// convertToZapFields converts key-value pairs to zap fields.
func convertToZapFields(keysAndValues ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
