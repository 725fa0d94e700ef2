package todoservice

import (
	"log/slog"
	"time"

	httpadapter "tasktrack/contexts/task-tracking/todo-service/adapters/http"
	"tasktrack/contexts/task-tracking/todo-service/adapters/memory"
	"tasktrack/contexts/task-tracking/todo-service/application"
	"tasktrack/contexts/task-tracking/todo-service/ports"
)

// Module is the todo-service composition root exposed to runtime wiring.
type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

// Dependencies captures all runtime ports/config required by NewModule.
type Dependencies struct {
	Repository   ports.Repository
	Owners       ports.OwnerDirectory
	Clock        ports.Clock
	IDGenerator  ports.IDGenerator
	StoreTimeout time.Duration
	Logger       *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:         deps.Repository,
		Owners:       deps.Owners,
		Clock:        deps.Clock,
		IDGenerator:  deps.IDGenerator,
		Logger:       deps.Logger,
		StoreTimeout: deps.StoreTimeout,
	}

	return Module{
		Handler: httpadapter.Handler{
			Service: service,
			Clock:   deps.Clock,
			Logger:  deps.Logger,
		},
		Service: service,
	}
}

// NewInMemoryModule builds a development/testing module with in-memory
// adapters. The owner directory comes from outside because owner existence
// lives in the account store.
func NewInMemoryModule(owners ports.OwnerDirectory, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository:  store,
		Owners:      owners,
		Clock:       store,
		IDGenerator: store,
		Logger:      logger,
	})
	module.Store = store
	return module
}
