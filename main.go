package main

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/pcbuilder-api/server/internal/core"
	"github.com/pcbuilder-api/server/internal/llm"
	"github.com/pcbuilder-api/server/internal/recommender"
	"github.com/pcbuilder-api/server/internal/recommender/prompts"
	"github.com/pcbuilder-api/server/internal/server"
	"github.com/pcbuilder-api/server/internal/store"
	logx "github.com/pcbuilder-api/server/pkg/logger"
	pkgredis "github.com/pcbuilder-api/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the service, sourced from
// environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	Port        int    `envconfig:"PORT" default:"8080"`
	AdminAPIKey string `envconfig:"ADMIN_API_KEY"`

	// Infrastructure
	Redis pkgredis.Config

	// LLM provider and prompt framing
	Gemini llm.Config
	Prompt prompts.Config
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(".env"); err != nil {
		logx.Warn().Err(err).Msg("could not load .env file")
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		logx.Fatal().Err(err).Msg("failed to process environment config")
	}

	env := core.ParseEnvironment(cfg.Environment)
	logx.Init(logx.LoggerOpts{Environment: env})
	if env.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	rdb, err := cfg.Redis.New()
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to initialise Redis client")
	}
	defer rdb.Close()
	logx.Info().Msg("connected to Redis")

	gen, err := llm.NewGeminiClient(ctx, cfg.Gemini)
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to initialise Gemini client")
	}

	if cfg.AdminAPIKey == "" {
		logx.Warn().Msg("ADMIN_API_KEY is not set, admin routes will reject all requests")
	}

	r := server.New(server.Deps{
		Recommender: recommender.NewService(gen, cfg.Prompt),
		Builds:      store.NewRedisBuildRepository(rdb),
		RequestLog:  store.NewRedisRequestLog(rdb),
		AdminAPIKey: cfg.AdminAPIKey,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logx.Info().Str("addr", addr).Str("environment", env.String()).Msg("starting server")
	if err := r.Run(addr); err != nil {
		logx.Fatal().Err(err).Msg("server stopped")
	}
}
