package accountservice

import (
	"log/slog"
	"time"

	"tasktrack/contexts/identity-access/account-service/adapters/crypto"
	httpadapter "tasktrack/contexts/identity-access/account-service/adapters/http"
	"tasktrack/contexts/identity-access/account-service/adapters/memory"
	"tasktrack/contexts/identity-access/account-service/adapters/token"
	"tasktrack/contexts/identity-access/account-service/application"
	"tasktrack/contexts/identity-access/account-service/ports"
)

// Module is the account-service composition root exposed to runtime wiring.
type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

// Dependencies captures all runtime ports/config required by NewModule.
type Dependencies struct {
	Repository   ports.Repository
	Todos        ports.TodoPurger
	Hasher       ports.PasswordHasher
	Tokens       ports.TokenCodec
	Clock        ports.Clock
	IDGenerator  ports.IDGenerator
	StoreTimeout time.Duration
	Logger       *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:         deps.Repository,
		Todos:        deps.Todos,
		Hasher:       deps.Hasher,
		Tokens:       deps.Tokens,
		Clock:        deps.Clock,
		IDGenerator:  deps.IDGenerator,
		Logger:       deps.Logger,
		StoreTimeout: deps.StoreTimeout,
	}

	return Module{
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
		Service: service,
	}
}

// NewInMemoryModule builds a development/testing module with in-memory
// adapters. The todo purger still comes from outside because the cascade
// crosses into the todo store.
func NewInMemoryModule(todos ports.TodoPurger, tokenSecret []byte, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository:  store,
		Todos:       todos,
		Hasher:      crypto.BcryptHasher{},
		Tokens:      token.Codec{Secret: tokenSecret, TTL: 8 * time.Hour},
		Clock:       store,
		IDGenerator: store,
		Logger:      logger,
	})
	module.Store = store
	return module
}
