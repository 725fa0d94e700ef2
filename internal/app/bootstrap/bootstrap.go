package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	accountservice "tasktrack/contexts/identity-access/account-service"
	"tasktrack/contexts/identity-access/account-service/adapters/crypto"
	accountmemory "tasktrack/contexts/identity-access/account-service/adapters/memory"
	accountmongo "tasktrack/contexts/identity-access/account-service/adapters/mongo"
	accountpostgres "tasktrack/contexts/identity-access/account-service/adapters/postgres"
	"tasktrack/contexts/identity-access/account-service/adapters/token"
	accounterrors "tasktrack/contexts/identity-access/account-service/domain/errors"
	accountports "tasktrack/contexts/identity-access/account-service/ports"
	todoservice "tasktrack/contexts/task-tracking/todo-service"
	todomemory "tasktrack/contexts/task-tracking/todo-service/adapters/memory"
	todomongo "tasktrack/contexts/task-tracking/todo-service/adapters/mongo"
	todopostgres "tasktrack/contexts/task-tracking/todo-service/adapters/postgres"
	"tasktrack/internal/platform/config"
	"tasktrack/internal/platform/db"
	"tasktrack/internal/platform/httpserver"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	mongo    *db.Mongo
	logger   *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.TokenSecret) == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	app := &APIApp{logger: logger}
	accountDeps := accountservice.Dependencies{
		Hasher:       crypto.BcryptHasher{},
		Tokens:       token.Codec{Secret: []byte(cfg.TokenSecret), TTL: cfg.TokenTTL},
		StoreTimeout: cfg.StoreTimeout,
		Logger:       logger,
	}
	todoDeps := todoservice.Dependencies{
		StoreTimeout: cfg.StoreTimeout,
		Logger:       logger,
	}

	switch cfg.StorageDriver {
	case config.StoragePostgres:
		pg, err := db.Connect(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		app.postgres = pg

		accountRepo := accountpostgres.NewRepository(pg.DB, logger)
		todoRepo := todopostgres.NewRepository(pg.DB, logger)
		if err := accountRepo.Migrate(); err != nil {
			_ = app.Close()
			return nil, err
		}
		if err := todoRepo.Migrate(); err != nil {
			_ = app.Close()
			return nil, err
		}

		accountDeps.Repository = accountRepo
		accountDeps.Todos = todoRepo
		accountDeps.Clock = accountpostgres.SystemClock{}
		accountDeps.IDGenerator = accountpostgres.UUIDGenerator{}
		todoDeps.Repository = todoRepo
		todoDeps.Clock = todopostgres.SystemClock{}
		todoDeps.IDGenerator = todopostgres.UUIDGenerator{}

	case config.StorageMongo:
		mg, err := db.ConnectMongo(cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		app.mongo = mg

		accountRepo := accountmongo.NewRepository(mg.Database, logger)
		todoRepo := todomongo.NewRepository(mg.Database, logger)
		ctx, cancel := context.WithTimeout(context.Background(), cfg.StoreTimeout)
		defer cancel()
		if err := accountRepo.EnsureIndexes(ctx); err != nil {
			_ = app.Close()
			return nil, err
		}
		if err := todoRepo.EnsureIndexes(ctx); err != nil {
			_ = app.Close()
			return nil, err
		}

		accountDeps.Repository = accountRepo
		accountDeps.Todos = todoRepo
		accountDeps.Clock = accountmongo.SystemClock{}
		accountDeps.IDGenerator = accountmongo.UUIDGenerator{}
		todoDeps.Repository = todoRepo
		todoDeps.Clock = todomongo.SystemClock{}
		todoDeps.IDGenerator = todomongo.UUIDGenerator{}

	default:
		accountStore := accountmemory.NewStore()
		todoStore := todomemory.NewStore()

		accountDeps.Repository = accountStore
		accountDeps.Todos = todoStore
		accountDeps.Clock = accountStore
		accountDeps.IDGenerator = accountStore
		todoDeps.Repository = todoStore
		todoDeps.Clock = todoStore
		todoDeps.IDGenerator = todoStore
	}

	todoDeps.Owners = ownerDirectory{accounts: accountDeps.Repository}

	accounts := accountservice.NewModule(accountDeps)
	todos := todoservice.NewModule(todoDeps)

	if cfg.AdminEmail != "" || cfg.AdminUsername != "" || cfg.AdminPassword != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := accounts.Service.EnsurePrimordialAdmin(ctx, cfg.AdminEmail, cfg.AdminUsername, cfg.AdminPassword); err != nil {
			_ = app.Close()
			return nil, err
		}
	}

	app.server = httpserver.New(accounts, todos, logger, normalizeAddr(cfg.HTTPPort))
	return app, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	var errs []error
	if a.postgres != nil {
		errs = append(errs, a.postgres.Close())
	}
	if a.mongo != nil {
		errs = append(errs, a.mongo.Close())
	}
	return errors.Join(errs...)
}

// ownerDirectory answers owner-existence questions for the todo side by
// consulting the account repository. Store failures pass through so the
// caller can retry.
type ownerDirectory struct {
	accounts accountports.Repository
}

func (d ownerDirectory) OwnerExists(ctx context.Context, accountID string) (bool, error) {
	_, err := d.accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, accounterrors.ErrAccountNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
