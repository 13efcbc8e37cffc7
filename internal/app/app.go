// Package app wires the application together: configuration, database,
// Genkit provider, knowledge store, corpus synchronization, and the answer
// pipeline. Setup builds everything once; the resulting App is shared by the
// HTTP server and the event consumer.
package app

import (
	"context"
	"log/slog"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ludobot/ludo/internal/config"
	"github.com/ludobot/ludo/internal/events"
	"github.com/ludobot/ludo/internal/knowledge"
	"github.com/ludobot/ludo/internal/pipeline"
)

// App is the application container.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	Genkit    *genkit.Genkit
	Embedder  ai.Embedder
	DBPool    *pgxpool.Pool
	Knowledge *knowledge.Store
	Pipeline  *pipeline.Pipeline

	// Consumer is nil when no AMQP URL is configured.
	Consumer *events.Consumer

	cancel context.CancelFunc
}

// Close gracefully releases all resources.
func (a *App) Close() error {
	a.logger().Info("shutting down application")

	if a.cancel != nil {
		a.cancel()
	}

	if a.DBPool != nil {
		a.DBPool.Close()
		a.logger().Info("database pool closed")
	}

	return nil
}

func (a *App) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}
