package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	AIModeMock       = "mock"
	AIModeGemini     = "gemini"
	AIModeGeminiHTTP = "gemini_http"
	AIModeOpenAI     = "openai"
)

// Config holds the application configuration.
type Config struct {
	Env       string // local | staging | prod
	Port      int
	LogLevel  string
	LogFormat string // console | json

	// Database
	DatabaseURL       string // runtime connection (resolved: pooled > url > direct)
	DatabaseURLRaw    string
	DatabaseURLPooled string
	DatabaseURLDirect string // for migrations / DDL (may be empty)

	RunMigrationsOnStartup bool

	// CORS
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	// Rate Limiting
	RateLimitRPS   int
	RateLimitBurst int

	Blob BlobConfig

	// Reports
	ReportsMaxRangeDays int
	ReportsFontPath     string

	// Auth
	AuthRequired  bool
	JWTSecret     string
	JWTIssuer     string
	JWTTTLMinutes int

	// AI
	AIMode            string
	AITimeoutSeconds  int
	AIMaxOutputTokens int
	AITemperature     float64
	GeminiAPIKey      string
	GeminiModel       string
	GeminiBaseURL     string
	OpenAIAPIKey      string
	OpenAIModel       string
	OpenAIBaseURL     string

	// Planner
	PlannerMaxRegenerateAttempts int

	// SPA
	StaticDir string

	// Warnings are collected during Load and logged by main once the logger exists.
	Warnings []string
}

// Load reads configuration from the environment and an optional config.yaml.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "local")
	v.SetDefault("PORT", 8080)
	v.SetDefault("LOG_LEVEL", "debug")
	v.SetDefault("RUN_MIGRATIONS_ON_STARTUP", false)
	v.SetDefault("CORS_ALLOW_CREDENTIALS", false)
	v.SetDefault("RATE_LIMIT_RPS", 0)
	v.SetDefault("RATE_LIMIT_BURST", 0)
	v.SetDefault("BLOB_MODE", BlobModeLocal)
	v.SetDefault("S3_PRESIGN_TTL_SECONDS", 900)
	v.SetDefault("S3_PREFER_PUBLIC_URL", false)
	v.SetDefault("REPORTS_MAX_RANGE_DAYS", 366)
	v.SetDefault("REPORTS_FONT_PATH", "assets/fonts/DejaVuSans.ttf")
	v.SetDefault("AUTH_REQUIRED", true)
	v.SetDefault("JWT_SECRET", "change_me")
	v.SetDefault("JWT_ISSUER", "nutrio")
	v.SetDefault("JWT_TTL_MINUTES", 1440)
	v.SetDefault("AI_MODE", AIModeMock)
	v.SetDefault("AI_TIMEOUT_SECONDS", 30)
	v.SetDefault("AI_MAX_OUTPUT_TOKENS", 8192)
	v.SetDefault("AI_TEMPERATURE", 0.7)
	v.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	v.SetDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("PLANNER_MAX_REGENERATE_ATTEMPTS", 5)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	warn := func(format string, args ...interface{}) {
		cfg.Warnings = append(cfg.Warnings, fmt.Sprintf(format, args...))
	}

	cfg.Env = strings.ToLower(strings.TrimSpace(v.GetString("APP_ENV")))
	if cfg.Env == "" {
		cfg.Env = "local"
	}
	cfg.Port = v.GetInt("PORT")
	if cfg.Port <= 0 {
		cfg.Port = 8080
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(v.GetString("LOG_LEVEL")))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(v.GetString("LOG_FORMAT")))
	if cfg.LogFormat == "" {
		cfg.LogFormat = "console"
		if cfg.Env != "local" {
			cfg.LogFormat = "json"
		}
	}

	// ---------- Database ----------
	// Priority: DATABASE_URL_POOLED > DATABASE_URL > DATABASE_URL_DIRECT
	cfg.DatabaseURLPooled = strings.TrimSpace(v.GetString("DATABASE_URL_POOLED"))
	cfg.DatabaseURLRaw = strings.TrimSpace(v.GetString("DATABASE_URL"))
	cfg.DatabaseURLDirect = strings.TrimSpace(v.GetString("DATABASE_URL_DIRECT"))
	cfg.DatabaseURL = firstNonEmpty(cfg.DatabaseURLPooled, cfg.DatabaseURLRaw, cfg.DatabaseURLDirect)
	cfg.RunMigrationsOnStartup = v.GetBool("RUN_MIGRATIONS_ON_STARTUP")

	// ---------- CORS / rate limit ----------
	cfg.CORSAllowedOrigins = parseCORSOrigins(v.GetString("CORS_ALLOWED_ORIGINS"), cfg.Env)
	cfg.CORSAllowCredentials = v.GetBool("CORS_ALLOW_CREDENTIALS")
	cfg.RateLimitRPS = v.GetInt("RATE_LIMIT_RPS")
	cfg.RateLimitBurst = v.GetInt("RATE_LIMIT_BURST")

	// ---------- Blob / S3 ----------
	blobMode, ok := normalizeBlobMode(v.GetString("BLOB_MODE"), BlobModeLocal)
	if !ok {
		warn("unknown BLOB_MODE=%q, fallback to %s", v.GetString("BLOB_MODE"), BlobModeLocal)
	}
	reportsMode := ""
	if raw := strings.TrimSpace(v.GetString("REPORTS_MODE")); raw != "" {
		reportsMode, ok = normalizeBlobMode(raw, BlobModeLocal)
		if !ok {
			warn("unknown REPORTS_MODE=%q, fallback to %s", raw, BlobModeLocal)
		}
	}
	presignTTL := v.GetInt("S3_PRESIGN_TTL_SECONDS")
	if presignTTL <= 0 {
		presignTTL = 900
	}
	cfg.Blob = BlobConfig{
		Mode:        blobMode,
		ReportsMode: reportsMode,
		S3: S3Config{
			Endpoint:          strings.TrimSpace(v.GetString("S3_ENDPOINT")),
			Region:            strings.TrimSpace(v.GetString("S3_REGION")),
			Bucket:            strings.TrimSpace(v.GetString("S3_BUCKET")),
			AccessKeyID:       strings.TrimSpace(v.GetString("S3_ACCESS_KEY_ID")),
			SecretAccessKey:   strings.TrimSpace(v.GetString("S3_SECRET_ACCESS_KEY")),
			PublicBaseURL:     strings.TrimSpace(v.GetString("S3_PUBLIC_BASE_URL")),
			PresignTTLSeconds: presignTTL,
			PreferPublicURL:   v.GetBool("S3_PREFER_PUBLIC_URL"),
		},
	}

	cfg.ReportsMaxRangeDays = v.GetInt("REPORTS_MAX_RANGE_DAYS")
	if cfg.ReportsMaxRangeDays <= 0 {
		cfg.ReportsMaxRangeDays = 366
	}
	cfg.ReportsFontPath = strings.TrimSpace(v.GetString("REPORTS_FONT_PATH"))

	// ---------- Auth ----------
	cfg.AuthRequired = v.GetBool("AUTH_REQUIRED")
	cfg.JWTSecret = v.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "change_me"
	}
	if cfg.JWTSecret == "change_me" && cfg.Env != "local" {
		warn("JWT_SECRET is set to 'change_me' in non-local environment")
	}
	cfg.JWTIssuer = v.GetString("JWT_ISSUER")
	cfg.JWTTTLMinutes = v.GetInt("JWT_TTL_MINUTES")
	if cfg.JWTTTLMinutes <= 0 {
		cfg.JWTTTLMinutes = 1440
	}

	// ---------- AI ----------
	cfg.AIMode = strings.ToLower(strings.TrimSpace(v.GetString("AI_MODE")))
	switch cfg.AIMode {
	case AIModeMock, AIModeGemini, AIModeGeminiHTTP, AIModeOpenAI:
	default:
		warn("unknown AI_MODE=%q, fallback to %s", cfg.AIMode, AIModeMock)
		cfg.AIMode = AIModeMock
	}
	cfg.AITimeoutSeconds = v.GetInt("AI_TIMEOUT_SECONDS")
	if cfg.AITimeoutSeconds <= 0 {
		cfg.AITimeoutSeconds = 30
	}
	cfg.AIMaxOutputTokens = v.GetInt("AI_MAX_OUTPUT_TOKENS")
	if cfg.AIMaxOutputTokens <= 0 {
		cfg.AIMaxOutputTokens = 8192
	}
	cfg.AITemperature = clamp(v.GetFloat64("AI_TEMPERATURE"), 0, 2)
	cfg.GeminiAPIKey = strings.TrimSpace(v.GetString("GEMINI_API_KEY"))
	cfg.GeminiModel = strings.TrimSpace(v.GetString("GEMINI_MODEL"))
	cfg.GeminiBaseURL = strings.TrimSuffix(strings.TrimSpace(v.GetString("GEMINI_BASE_URL")), "/")
	cfg.OpenAIAPIKey = strings.TrimSpace(v.GetString("OPENAI_API_KEY"))
	cfg.OpenAIModel = strings.TrimSpace(v.GetString("OPENAI_MODEL"))
	cfg.OpenAIBaseURL = strings.TrimSpace(v.GetString("OPENAI_BASE_URL"))

	switch cfg.AIMode {
	case AIModeGemini, AIModeGeminiHTTP:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required when AI_MODE=%s", cfg.AIMode)
		}
	case AIModeOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when AI_MODE=%s", cfg.AIMode)
		}
	}

	cfg.PlannerMaxRegenerateAttempts = v.GetInt("PLANNER_MAX_REGENERATE_ATTEMPTS")
	if cfg.PlannerMaxRegenerateAttempts <= 0 {
		cfg.PlannerMaxRegenerateAttempts = 5
	}

	cfg.StaticDir = strings.TrimSpace(v.GetString("STATIC_DIR"))

	return cfg, nil
}

// parseCORSOrigins parses CORS_ALLOWED_ORIGINS.
// In local mode, defaults to localhost origins if empty.
func parseCORSOrigins(raw, env string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if env == "local" {
			return []string{"http://localhost:3000", "http://localhost:5173", "http://localhost:8080"}
		}
		return nil // prod: deny by default
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
