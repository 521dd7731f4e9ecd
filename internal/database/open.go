package database

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/nfrund/espresso/internal/config"
	"github.com/nfrund/espresso/internal/domain"
)

// Store is a message repository that owns a backend connection.
type Store interface {
	domain.MessageRepository
	io.Closer
}

// Open creates the message repository selected by STORE_DRIVER. The returned
// closer releases the backend connection.
func Open(ctx context.Context, cfg config.Provider) (domain.MessageRepository, io.Closer, error) {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("Message store ready", "driver", cfg.GetStoreDriver())
	return store, store, nil
}

func openStore(ctx context.Context, cfg config.Provider) (Store, error) {
	limit := cfg.GetHistoryLimit()

	switch cfg.GetStoreDriver() {
	case config.DriverMemory, "":
		return NewMemoryStore(limit), nil

	case config.DriverSurreal:
		db, err := NewDB(ctx, cfg.GetSurreal())
		if err != nil {
			return nil, NewStoreError(driverSurreal, "connect", err)
		}
		store := NewSurrealStore(db, limit)
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, err
		}
		return store, nil

	case config.DriverBadger:
		return OpenBadger(cfg.GetBadgerPath(), limit)

	case config.DriverRedis:
		client, err := NewRedisClient(ctx, cfg.GetRedis())
		if err != nil {
			return nil, err
		}
		return NewRedisStore(client, limit), nil

	case config.DriverMongo:
		return ConnectMongo(ctx, cfg.GetMongo(), limit)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.GetStoreDriver())
	}
}
