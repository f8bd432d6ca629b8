package database

import (
	"context"
	"fmt"

	"github.com/diftofficial/systemAplikaciaGYM/internal/config"
	"github.com/diftofficial/systemAplikaciaGYM/internal/docstore"
	"github.com/diftofficial/systemAplikaciaGYM/internal/docstore/memstore"
	"github.com/diftofficial/systemAplikaciaGYM/internal/docstore/mongostore"
	"github.com/diftofficial/systemAplikaciaGYM/internal/docstore/pgstore"
)

// OpenStore connects the configured document store backend. The returned
// close function releases its connections.
func OpenStore(ctx context.Context, cfg *config.Config) (docstore.Store, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		pool, err := ConnectPostgres(ctx, cfg.DBUrl)
		if err != nil {
			return nil, nil, err
		}
		return pgstore.New(pool), pool.Close, nil
	case config.BackendMongo:
		client, err := ConnectMongo(ctx, cfg.MongoURL)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			_ = client.Disconnect(context.Background())
		}
		return mongostore.New(client, cfg.MongoDatabase), closeFn, nil
	case config.BackendMemory:
		return memstore.New(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
