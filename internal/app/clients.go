package app

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/nutribridge-backend/internal/data/cache"
	"github.com/yungbote/nutribridge-backend/internal/data/sessions"
	"github.com/yungbote/nutribridge-backend/internal/pkg/logger"
	"github.com/yungbote/nutribridge-backend/internal/platform/mealdb"
	"github.com/yungbote/nutribridge-backend/internal/platform/openai"
	"github.com/yungbote/nutribridge-backend/internal/platform/redisdb"
	"github.com/yungbote/nutribridge-backend/internal/platform/usda"
	"github.com/yungbote/nutribridge-backend/internal/realtime"
	"github.com/yungbote/nutribridge-backend/internal/realtime/bus"
)

var errLLMNotConfigured = errors.New("openai: OPENAI_API_KEY is not set")

// offlineLLM stands in when no API key is configured. Every AI-backed step
// fails through its normal error path.
type offlineLLM struct{}

func (offlineLLM) Chat(context.Context, string, string, openai.ChatOptions) (string, error) {
	return "", errLLMNotConfigured
}

func (offlineLLM) Embed(context.Context, string) ([]float64, error) {
	return nil, errLLMNotConfigured
}

type Clients struct {
	LLM      openai.Client
	Embedder openai.Embedder
	MealDB   mealdb.Client
	// USDA is nil when USDA_API_KEY is unset.
	USDA     usda.Client
	Redis    *goredis.Client
	Sessions sessions.Store
	Cache    cache.Store
	Bus      bus.Bus
}

func wireClients(log *logger.Logger, cfg Config, hub *realtime.SSEHub) (Clients, error) {
	log.Info("Wiring clients...")
	var c Clients

	llm, err := openai.NewClient(log)
	if err != nil {
		log.Warn("OpenAI client unavailable; AI features will fail", "error", err)
		llm = offlineLLM{}
	}
	c.LLM = llm
	if e, ok := llm.(openai.Embedder); ok {
		c.Embedder = e
	}
	c.MealDB = mealdb.NewClient(log)

	if !redisdb.Configured() {
		c.Sessions = sessions.NewMemoryStore()
		c.Cache = cache.NewMemoryStore()
		c.Bus = bus.NewLocalBus(hub)
		c.wireUSDA(log)
		return c, nil
	}
	rdb, err := redisdb.Open(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init redis: %w", err)
	}
	b, err := bus.NewRedisBus(log, rdb)
	if err != nil {
		_ = rdb.Close()
		return Clients{}, fmt.Errorf("init redis SSE bus: %w", err)
	}
	c.Redis = rdb
	c.Bus = b
	c.Sessions = sessions.NewRedisStore(rdb, cfg.ChatSessionTTL, log)
	c.Cache = cache.NewRedisStore(rdb, "cache:", log)
	c.wireUSDA(log)
	return c, nil
}

func (c *Clients) wireUSDA(log *logger.Logger) {
	foods, err := usda.NewClient(log, c.Cache)
	if err != nil {
		log.Warn("USDA client unavailable; food search is disabled", "error", err)
		return
	}
	c.USDA = foods
}

func (c Clients) Close() {
	if c.Bus != nil {
		_ = c.Bus.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
