package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"costumedesk/internal/assistant"
	"costumedesk/internal/assistant/gemini"
	"costumedesk/internal/assistant/memory"
	"costumedesk/internal/audit"
	"costumedesk/internal/chat"
	costumehandler "costumedesk/internal/costume/handler"
	"costumedesk/internal/costume/models"
	"costumedesk/internal/costume/service"
	"costumedesk/internal/costume/store"
	"costumedesk/internal/costume/tools"
	"costumedesk/internal/email"
	"costumedesk/internal/platform/config"
	"costumedesk/internal/platform/metrics"
	"costumedesk/internal/platform/redis"
	"costumedesk/internal/poem"
	httptransport "costumedesk/internal/transport/http"
	dErrors "costumedesk/pkg/domain-errors"
	"costumedesk/pkg/platform/circuit"
	"costumedesk/pkg/platform/tracer"
)

const auditBuffer = 256

type costumeModule struct {
	service   *service.Service
	handler   *costumehandler.Handler
	publisher *audit.Publisher
}

func (c *costumeModule) close() {
	c.publisher.Close()
}

// buildCostumes seeds the costume store and wires the ownership-checked service.
func buildCostumes(ctx context.Context, cfg config.Server, m *metrics.Metrics, log *slog.Logger) (*costumeModule, error) {
	st := store.NewInMemory()
	if err := seedCostumes(ctx, st, cfg.CostumeSeedFile, log); err != nil {
		return nil, err
	}

	publisher := audit.NewPublisher(audit.NewInMemoryStore(),
		audit.WithAsyncBuffer(auditBuffer),
		audit.WithPublisherLogger(log),
	)
	svc := service.New(st,
		service.WithLogger(log),
		service.WithAuditPublisher(publisher),
		service.WithMetrics(m),
	)
	return &costumeModule{
		service:   svc,
		handler:   costumehandler.New(svc, log),
		publisher: publisher,
	}, nil
}

func seedCostumes(ctx context.Context, st *store.InMemory, path string, log *slog.Logger) error {
	seeds, err := config.LoadCostumeSeed(path)
	if errors.Is(err, config.ErrNoSeed) {
		log.Warn("no costume seed configured; costume store is empty")
		return nil
	}
	if err != nil {
		return err
	}
	for _, seed := range seeds {
		record, err := models.NewRecord(seed.ID, seed.Name, seed.Type, seed.MinAge, seed.MaxAge,
			models.Owner{FirstName: seed.OwnerFirstName, LastName: seed.OwnerLastName})
		if err != nil {
			return fmt.Errorf("seed costume %q: %w", seed.ID, err)
		}
		if err := st.Save(ctx, record); err != nil {
			return fmt.Errorf("seed costume %q: %w", seed.ID, err)
		}
	}
	n, err := st.Count(ctx)
	if err != nil {
		return err
	}
	log.Info("costume store seeded", "count", n)
	return nil
}

type memoryModule struct {
	store memory.Store
	redis *redis.Client
}

func (m *memoryModule) close() {
	if m.redis != nil {
		m.redis.Close() //nolint:errcheck // shutting down
	}
}

// buildMemory uses Redis when REDIS_URL is set and falls back to process memory.
func buildMemory(ctx context.Context, cfg config.Server, log *slog.Logger) (*memoryModule, error) {
	client, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if client == nil {
		log.Info("chat memory kept in process")
		return &memoryModule{store: memory.NewInMemory(cfg.ChatMemory.MaxMessages, cfg.ChatMemory.TTL)}, nil
	}
	log.Info("chat memory backed by redis")
	return &memoryModule{
		store: memory.NewRedis(client.Client, cfg.ChatMemory.MaxMessages, cfg.ChatMemory.TTL),
		redis: client,
	}, nil
}

type assistantDeps struct {
	costumes *service.Service
	memory   memory.Store
	metrics  *metrics.Metrics
	tracer   tracer.Tracer
	logger   *slog.Logger
}

type assistantModule struct {
	poems httptransport.Registrar
	chat  *chat.Socket
}

// buildAssistants wires the four personas to one model. Without an API key
// the routes stay mounted and answer as unavailable.
func buildAssistants(ctx context.Context, cfg config.Server, deps assistantDeps) (*assistantModule, error) {
	model, err := gemini.New(ctx, cfg.Gemini)
	if errors.Is(err, gemini.ErrNotConfigured) {
		deps.logger.Warn("GEMINI_API_KEY not set; assistants are unavailable")
		return &assistantModule{
			poems: poem.New(nil, nil, nil, deps.logger),
			chat: chat.New(offlineAssistant{}, deps.logger,
				chat.WithMetrics(deps.metrics),
				chat.WithOriginPatterns(cfg.ChatOriginPatterns...),
			),
		}, nil
	}
	if err != nil {
		return nil, err
	}

	engine := func(name string, opts ...assistant.Option) *assistant.Engine {
		return assistant.NewEngine(name, model, append([]assistant.Option{
			assistant.WithBreaker(newBreaker(name, cfg.Gemini, deps.metrics)),
			assistant.WithTracer(deps.tracer),
			assistant.WithMetrics(deps.metrics),
			assistant.WithLogger(deps.logger),
		}, opts...)...)
	}

	sender := email.New(cfg.SMTP, deps.logger, deps.metrics)

	support := assistant.NewCostumeSupport(engine(assistant.NameCostumeSupport,
		assistant.WithSystemPrompt(assistant.CostumeSupportPrompt),
		assistant.WithTools(tools.New(deps.costumes)...),
		assistant.WithMemory(deps.memory),
	))
	memoryChat := assistant.NewMemoryChat(engine(assistant.NameMemoryChat,
		assistant.WithMemory(deps.memory),
	))
	poet := assistant.NewPoet(engine(assistant.NamePoet,
		assistant.WithSystemPrompt(assistant.PoetPrompt),
		assistant.WithTools(email.NewSendEmailTool(sender, cfg.PoemRecipient)),
	))
	halloween := assistant.NewHalloween(engine(assistant.NameHalloween))

	return &assistantModule{
		poems: poem.New(memoryChat, poet, halloween, deps.logger),
		chat: chat.New(support, deps.logger,
			chat.WithMetrics(deps.metrics),
			chat.WithReplyTimeout(cfg.RequestTimeout),
			chat.WithOriginPatterns(cfg.ChatOriginPatterns...),
		),
	}, nil
}

func newBreaker(name string, cfg config.GeminiConfig, m *metrics.Metrics) *circuit.Breaker {
	return circuit.New(name,
		circuit.WithFailureThreshold(cfg.FailureThreshold),
		circuit.WithCooldown(cfg.Cooldown),
		circuit.WithStateChangeHook(func(name string, _, to circuit.State) {
			if to == circuit.StateOpen {
				m.IncrementBreakerOpen(name)
			}
		}),
	)
}

// offlineAssistant keeps /chat reachable without a model; every reply is the apology.
type offlineAssistant struct{}

func (offlineAssistant) Chat(context.Context, string, string) (string, error) {
	return "", dErrors.New(dErrors.CodeUnavailable, "assistant is not configured")
}
