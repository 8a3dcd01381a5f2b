package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/IDINaXI/Nutrio/internal/ai"
	"github.com/IDINaXI/Nutrio/internal/config"
	"github.com/IDINaXI/Nutrio/internal/dbmigrate"
	"github.com/IDINaXI/Nutrio/internal/httpserver"
	"github.com/IDINaXI/Nutrio/internal/logger"
	"github.com/IDINaXI/Nutrio/internal/planner"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer log.Sync()

	for _, w := range cfg.Warnings {
		log.Warnw("config", "warning", w)
	}
	logStartupSummary(log, cfg)

	if err := validateProductionConfig(cfg); err != nil {
		log.Fatalw("invalid configuration", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.RunMigrationsOnStartup {
		sel, err := dbmigrate.SelectDatabaseURL(cfg, false)
		if err != nil {
			log.Fatalw("startup migrations", "error", err)
		}
		if sel.Warning != "" {
			log.Warnw("startup migrations", "warning", sel.Warning)
		}

		log.Infow("startup migrations", "command", "up", "using", sel.Source)
		if err := dbmigrate.Run(ctx, "up", sel.URL); err != nil {
			log.Fatalw("startup migrations failed", "error", err)
		}
		log.Infow("startup migrations completed")
	}

	gateway, err := ai.NewGateway(ctx, cfg, log)
	if err != nil {
		log.Fatalw("ai gateway", "error", err)
	}
	if c, ok := gateway.(ai.Closer); ok {
		defer c.Close()
	}
	generator := planner.NewGenerator(gateway,
		planner.WithTimeout(time.Duration(cfg.AITimeoutSeconds)*time.Second),
		planner.WithMaxAttempts(cfg.PlannerMaxRegenerateAttempts),
		planner.WithLogger(log),
	)

	server, err := httpserver.New(ctx, cfg, log, generator)
	if err != nil {
		log.Fatalw("server init failed", "error", err)
	}
	defer server.Close()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Errorw("server stopped", "error", err)
		}
	case <-ctx.Done():
		log.Infow("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Errorw("graceful shutdown failed", "error", err)
		}
	}
}

// logStartupSummary: сводка конфигурации без секретов.
func logStartupSummary(log *logger.Logger, cfg *config.Config) {
	log.Infow("Nutrio API",
		"env", cfg.Env,
		"port", cfg.Port,
		"database", describeDBURL(cfg),
		"migrations_on_startup", cfg.RunMigrationsOnStartup,
		"auth_required", cfg.AuthRequired,
		"jwt_secret", secretStatus(cfg.JWTSecret, "change_me"),
		"blob_mode", cfg.Blob.Mode,
		"reports_mode", cfg.Blob.EffectiveReportsMode(),
		"ai_mode", cfg.AIMode,
		"rate_limit_rps", cfg.RateLimitRPS,
		"static_dir", nonEmptyOrDash(cfg.StaticDir),
	)

	switch cfg.AIMode {
	case config.AIModeGemini, config.AIModeGeminiHTTP:
		log.Infow("ai", "model", cfg.GeminiModel, "api_key", setOrNot(cfg.GeminiAPIKey))
	case config.AIModeOpenAI:
		log.Infow("ai", "model", cfg.OpenAIModel, "base_url", nonEmptyOrDash(cfg.OpenAIBaseURL), "api_key", setOrNot(cfg.OpenAIAPIKey))
	}
}

// validateProductionConfig: проверки, обязательные вне local.
func validateProductionConfig(cfg *config.Config) error {
	isProd := cfg.Env == "production" || cfg.Env == "prod" || cfg.Env == "staging"
	if !isProd {
		return nil
	}

	if cfg.AuthRequired && cfg.JWTSecret == "change_me" {
		return fmt.Errorf("JWT_SECRET must not be 'change_me' in %s with AUTH_REQUIRED=true", cfg.Env)
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("no DATABASE_URL configured in %s", cfg.Env)
	}
	return nil
}

func setOrNot(v string) string {
	if strings.TrimSpace(v) == "" {
		return "not set"
	}
	return "set"
}

func nonEmptyOrDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}

func secretStatus(v, insecureDefault string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "not set"
	}
	if v == insecureDefault {
		return fmt.Sprintf("set (DEFAULT, insecure '%s')", insecureDefault)
	}
	return "set (custom)"
}

func describeDBURL(cfg *config.Config) string {
	switch {
	case cfg.DatabaseURL == "":
		return "not set (in-memory storage)"
	case cfg.DatabaseURLPooled != "" && cfg.DatabaseURL == cfg.DatabaseURLPooled:
		return "set (via DATABASE_URL_POOLED)"
	default:
		return "set"
	}
}
