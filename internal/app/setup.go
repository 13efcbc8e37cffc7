package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/core/api"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/compat_oai/openai"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/firebase/genkit/go/plugins/ollama"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ludobot/ludo/db"
	"github.com/ludobot/ludo/internal/config"
	"github.com/ludobot/ludo/internal/corpus"
	"github.com/ludobot/ludo/internal/embedding"
	"github.com/ludobot/ludo/internal/events"
	"github.com/ludobot/ludo/internal/generate"
	"github.com/ludobot/ludo/internal/ground"
	"github.com/ludobot/ludo/internal/ingest"
	"github.com/ludobot/ludo/internal/knowledge"
	"github.com/ludobot/ludo/internal/pipeline"
	"github.com/ludobot/ludo/internal/secrets"
)

// Setup creates and initializes the application. Call Close on the returned
// App to release resources; on error everything already initialized is torn
// down before returning.
func Setup(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *App, retErr error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Config: cfg, Logger: logger}

	defer func() {
		if retErr != nil {
			if err := a.Close(); err != nil {
				logger.Warn("cleanup during setup failure", "error", err)
			}
		}
	}()

	if err := provideAPIKeys(ctx, cfg, logger); err != nil {
		return nil, err
	}

	pool, err := provideDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.DBPool = pool

	g, err := provideGenkit(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.Genkit = g

	embedder := provideEmbedder(g, cfg)
	if embedder == nil {
		return nil, fmt.Errorf("embedder %q not found for provider %q", cfg.EmbedderModel, cfg.Provider)
	}
	a.Embedder = embedder

	embedClient, err := embedding.NewClient(embedder)
	if err != nil {
		return nil, err
	}

	store, err := knowledge.NewStore(pool, logger)
	if err != nil {
		return nil, err
	}
	a.Knowledge = store

	synchronizer, err := corpus.NewSynchronizer(embedClient, store, logger)
	if err != nil {
		return nil, err
	}
	if err := synchronizer.Sync(ctx, cfg.SeedPath); err != nil {
		return nil, fmt.Errorf("synchronizing guidance corpus: %w", err)
	}

	generator, err := generate.NewClient(g, cfg.FullModelName(), logger)
	if err != nil {
		return nil, err
	}

	recognizer := ground.NewProseRecognizer(logger)

	p, err := pipeline.New(store, embedClient, generator, recognizer, logger)
	if err != nil {
		return nil, err
	}
	a.Pipeline = p

	if cfg.AMQPURL != "" {
		handler, err := ingest.NewHandler(store, embedClient, logger)
		if err != nil {
			return nil, err
		}
		consumer, err := events.NewConsumer(cfg.AMQPURL, cfg.GameQueue, handler, logger)
		if err != nil {
			return nil, err
		}
		a.Consumer = consumer
	}

	_, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	return a, nil
}

// provideAPIKeys resolves provider credentials through the configured
// secrets backend and exports them for the Genkit plugins, which read the
// conventional environment variables. The local backend is a no-op: its
// values already live in the environment.
func provideAPIKeys(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if cfg.SecretsBackend == "" || cfg.SecretsBackend == "local" {
		return nil
	}

	var keyName string
	switch cfg.Provider {
	case config.ProviderOpenAI:
		keyName = "OPENAI_API_KEY"
	case config.ProviderOllama:
		return nil
	default:
		keyName = "GEMINI_API_KEY"
	}

	retriever, err := secrets.New(ctx, cfg.SecretsBackend, secrets.Options{GCPProjectID: cfg.GCPProjectID})
	if err != nil {
		return fmt.Errorf("creating secrets retriever: %w", err)
	}
	if closer, ok := retriever.(interface{ Close() error }); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				logger.Warn("closing secrets retriever", "error", err)
			}
		}()
	}

	value, err := retriever.Get(ctx, keyName)
	if err != nil {
		return fmt.Errorf("retrieving %s: %w", keyName, err)
	}
	// SAFETY: os.Setenv is not concurrent-safe, but Setup runs exactly once
	// at startup before any goroutines are spawned.
	if err := os.Setenv(keyName, value); err != nil {
		return fmt.Errorf("exporting %s: %w", keyName, err)
	}
	return nil
}

// provideDBPool runs migrations and creates the PostgreSQL connection pool.
func provideDBPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection config: %w", err)
	}
	poolCfg.MaxConns = 10

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return pool, nil
}

// provideGenkit initializes Genkit with the configured AI provider.
// Supports gemini (default), ollama, and openai.
func provideGenkit(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*genkit.Genkit, error) {
	provider := cfg.Provider
	if provider == "" {
		provider = config.ProviderGemini
	}

	var g *genkit.Genkit

	switch provider {
	case config.ProviderOllama:
		ollamaPlugin := &ollama.Ollama{ServerAddress: cfg.OllamaHost}
		g = genkit.Init(ctx, genkit.WithPlugins(ollamaPlugin))
		if g == nil {
			return nil, errors.New("initializing genkit with ollama provider")
		}
		// Ollama requires explicit model registration (no auto-discovery).
		ollamaPlugin.DefineModel(g, ollama.ModelDefinition{
			Name: cfg.ModelName,
			Type: "chat",
		}, nil)
		ollamaPlugin.DefineEmbedder(g, cfg.OllamaHost, cfg.EmbedderModel, nil)
		logger.Info("initialized genkit with ollama provider",
			"model", cfg.ModelName, "host", cfg.OllamaHost)

	case config.ProviderOpenAI:
		g = genkit.Init(ctx, genkit.WithPlugins(&openai.OpenAI{}))
		if g == nil {
			return nil, errors.New("initializing genkit with openai provider")
		}
		logger.Info("initialized genkit with openai provider", "model", cfg.ModelName)

	default:
		g = genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
		if g == nil {
			return nil, errors.New("initializing genkit with gemini provider")
		}
		logger.Info("initialized genkit with gemini provider", "model", cfg.ModelName)
	}

	return g, nil
}

// provideEmbedder looks up the embedder registered by the provider plugin.
func provideEmbedder(g *genkit.Genkit, cfg *config.Config) ai.Embedder {
	switch cfg.Provider {
	case config.ProviderOllama:
		// The ollama embedder is keyed by server address (registered in provideGenkit).
		return ollama.Embedder(g, cfg.OllamaHost)
	case config.ProviderOpenAI:
		// OpenAI auto-registers embedders in Init().
		return genkit.LookupEmbedder(g, api.NewName("openai", cfg.EmbedderModel))
	default:
		return googlegenai.GoogleAIEmbedder(g, cfg.EmbedderModel)
	}
}
