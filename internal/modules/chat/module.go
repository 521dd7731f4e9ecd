package chat

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/espresso/internal/config"
	"github.com/nfrund/espresso/internal/domain"
	"github.com/nfrund/espresso/internal/metrics"
	"github.com/nfrund/espresso/internal/middleware"
	"github.com/nfrund/espresso/internal/module"
	"github.com/nfrund/espresso/internal/names"
	"github.com/nfrund/espresso/internal/presence"
	"github.com/nfrund/espresso/internal/pubsub"
	"github.com/nfrund/espresso/internal/rendering"
	"github.com/nfrund/espresso/internal/websocket"
	"github.com/samber/do/v2"
)

// ChatModule wires the chat engine to the WebSocket bridge, the pub/sub bus
// and the HTTP routes.
type ChatModule struct {
	module.BaseModule

	mu     sync.Mutex
	cancel context.CancelFunc
}

// New creates the chat module.
func New() *ChatModule {
	return &ChatModule{}
}

// Name returns the module name.
func (m *ChatModule) Name() string {
	return "chat"
}

// Register provides the chat engine to the injector.
func (m *ChatModule) Register(i do.Injector) error {
	do.Provide(i, func(i do.Injector) (*Engine, error) {
		cfg, err := do.Invoke[config.Provider](i)
		if err != nil {
			return nil, err
		}
		bridge, err := do.Invoke[*websocket.Bridge](i)
		if err != nil {
			return nil, err
		}
		bus, err := do.Invoke[pubsub.PubSub](i)
		if err != nil {
			return nil, err
		}
		repo, err := do.Invoke[domain.MessageRepository](i)
		if err != nil {
			return nil, err
		}

		return NewEngine(Dependencies{
			Registry:       do.MustInvoke[*presence.Registry](i),
			Names:          do.MustInvoke[*names.Generator](i),
			Repository:     repo,
			Publisher:      bus,
			Transport:      bridge,
			Metrics:        do.MustInvoke[*metrics.Collectors](i),
			HistoryTimeout: cfg.GetHistoryTimeout(),
		}), nil
	})
	return nil
}

// Boot starts the persistence worker and mounts the chat routes.
func (m *ChatModule) Boot(ctx context.Context, g *echo.Group, i do.Injector) error {
	engine, err := do.Invoke[*Engine](i)
	if err != nil {
		return fmt.Errorf("chat: resolve engine: %w", err)
	}
	cfg := do.MustInvoke[config.Provider](i)
	bus := do.MustInvoke[pubsub.PubSub](i)
	repo := do.MustInvoke[domain.MessageRepository](i)
	bridge := do.MustInvoke[*websocket.Bridge](i)
	renderer := do.MustInvoke[rendering.Renderer](i)
	collectors := do.MustInvoke[*metrics.Collectors](i)

	workerCtx, cancel := context.WithCancel(ctx)
	persister := NewPersister(bus, repo, collectors, cfg.GetSaveTimeout())
	if err := persister.Start(workerCtx); err != nil {
		cancel()
		return fmt.Errorf("chat: start persister: %w", err)
	}
	m.mu.Lock()
	m.cancel = cancel
	m.mu.Unlock()

	h := NewHandler(engine, renderer)
	g.GET("/ws", bridge.Handler(engine), middleware.RateLimiter(cfg.GetConnectRate()))
	g.GET("/api/rooms", h.ListRooms)
	g.GET("/rooms", h.RoomsPage)
	g.GET("/rooms/fragment", h.RoomsFragment)

	slog.Info("Chat module booted", "store", cfg.GetStoreDriver())
	return nil
}

// Shutdown stops the persistence worker.
func (m *ChatModule) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	return nil
}
