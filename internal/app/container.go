package app

import (
	"context"
	"fmt"
	"io"

	"github.com/nfrund/espresso/internal/config"
	"github.com/nfrund/espresso/internal/database"
	"github.com/nfrund/espresso/internal/domain"
	"github.com/nfrund/espresso/internal/metrics"
	"github.com/nfrund/espresso/internal/names"
	"github.com/nfrund/espresso/internal/presence"
	"github.com/nfrund/espresso/internal/pubsub"
	"github.com/nfrund/espresso/internal/rendering"
	"github.com/nfrund/espresso/internal/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/samber/do/v2"
	"go.opentelemetry.io/otel/trace"
)

// Container holds the injector and the resources that need explicit cleanup
// on shutdown, in the order they were created.
type Container struct {
	Injector do.Injector
	Registry *prometheus.Registry
	Bus      pubsub.PubSub
	Bridge   *websocket.Bridge

	storeCloser    io.Closer
	tracingCleanup func(context.Context)
}

// NewContainer creates the core services and provides them to a new
// injector. Modules register their own services on top of it.
func NewContainer(ctx context.Context, cfg config.Provider) (*Container, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	tracer, cleanup, err := pubsub.SetupOTel(ctx, cfg.GetTracing())
	if err != nil {
		return nil, fmt.Errorf("setup tracing: %w", err)
	}

	repo, closer, err := database.Open(ctx, cfg)
	if err != nil {
		cleanup(ctx)
		return nil, fmt.Errorf("open message store: %w", err)
	}

	bus := pubsub.NewWatermillBridge(pubsub.WithTracer(tracer))
	bridge := websocket.NewBridge(websocket.Config{
		SendBuffer:    cfg.GetSendBuffer(),
		WriteTimeout:  cfg.GetWriteTimeout(),
		AllowedOrigin: cfg.GetCORSOrigin(),
	}, m)

	i := do.New()
	do.ProvideValue[config.Provider](i, cfg)
	do.ProvideValue(i, reg)
	do.ProvideValue(i, m)
	do.ProvideValue[trace.Tracer](i, tracer)
	do.ProvideValue[pubsub.PubSub](i, bus)
	do.ProvideValue[domain.MessageRepository](i, repo)
	do.ProvideValue(i, presence.NewRegistry())
	do.ProvideValue(i, names.NewGenerator())
	do.ProvideValue(i, bridge)
	do.ProvideValue[rendering.Renderer](i, rendering.NewUniversalRenderer())

	return &Container{
		Injector:       i,
		Registry:       reg,
		Bus:            bus,
		Bridge:         bridge,
		storeCloser:    closer,
		tracingCleanup: cleanup,
	}, nil
}

// Close releases the bus, the message store and the tracer provider. The
// WebSocket bridge is closed by the server before this is called.
func (c *Container) Close(ctx context.Context) error {
	var firstErr error
	if err := c.Bus.Close(); err != nil {
		firstErr = fmt.Errorf("close bus: %w", err)
	}
	if err := c.storeCloser.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close message store: %w", err)
	}
	c.tracingCleanup(ctx)
	return firstErr
}
