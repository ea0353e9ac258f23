package setup

import (
	"github.com/hibiken/asynq"

	"github.com/trifonnt/accountd/internal/config"
	"github.com/trifonnt/accountd/internal/handler"
	"github.com/trifonnt/accountd/internal/queue"
	"github.com/trifonnt/accountd/internal/search"
	"github.com/trifonnt/accountd/internal/search/memindex"
	"github.com/trifonnt/accountd/internal/security"
	"github.com/trifonnt/accountd/internal/service"
	"github.com/trifonnt/accountd/internal/storage/pg"
)

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Storage   *pg.Storage
	Index     search.Index
	Publisher *queue.Publisher
	Users     *service.Users
	Retention *service.Retention
	Ops       *handler.Ops
}

// SetupDependencies initializes all dependencies required for the service.
func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	storage, err := pg.New(cfg)
	if err != nil {
		return nil, err
	}

	index := memindex.New()
	publisher := queue.NewPublisher(RedisOpt(cfg), cfg.Public.EventDestination)

	users := service.NewUsers(
		storage,
		storage,
		index,
		publisher,
		storage,
		security.NewBcryptHasher(),
		security.NewKeys(),
		security.NewContextResolver(),
		&cfg.Public,
	)
	retention := service.NewRetention(storage, storage, index, &cfg.Public)
	ops := handler.NewOps(storage)

	return &Dependencies{
		Storage:   storage,
		Index:     index,
		Publisher: publisher,
		Users:     users,
		Retention: retention,
		Ops:       ops,
	}, nil
}

// RedisOpt builds the queue connection options from config.
func RedisOpt(cfg *config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Private.Redis.Addr,
		Password: cfg.Private.Redis.Password,
		DB:       cfg.Private.Redis.DB,
	}
}
