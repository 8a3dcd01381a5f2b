package config

import (
	"fmt"
	"strings"
)

const (
	BlobModeLocal = "local"
	BlobModeS3    = "s3"
	BlobModeAuto  = "auto"
)

// S3Config holds settings for an S3-compatible store (Yandex Object Storage, MinIO, AWS).
type S3Config struct {
	Endpoint          string
	Region            string
	Bucket            string
	AccessKeyID       string
	SecretAccessKey   string
	PublicBaseURL     string
	PresignTTLSeconds int
	PreferPublicURL   bool
}

// MissingRequired returns the names of unset required variables.
// S3_PUBLIC_BASE_URL is required only with S3_PREFER_PUBLIC_URL=1.
func (c S3Config) MissingRequired() []string {
	missing := make([]string, 0, 6)
	if strings.TrimSpace(c.Endpoint) == "" {
		missing = append(missing, "S3_ENDPOINT")
	}
	if strings.TrimSpace(c.Region) == "" {
		missing = append(missing, "S3_REGION")
	}
	if strings.TrimSpace(c.Bucket) == "" {
		missing = append(missing, "S3_BUCKET")
	}
	if strings.TrimSpace(c.AccessKeyID) == "" {
		missing = append(missing, "S3_ACCESS_KEY_ID")
	}
	if strings.TrimSpace(c.SecretAccessKey) == "" {
		missing = append(missing, "S3_SECRET_ACCESS_KEY")
	}
	if c.PreferPublicURL && strings.TrimSpace(c.PublicBaseURL) == "" {
		missing = append(missing, "S3_PUBLIC_BASE_URL")
	}
	return missing
}

func (c S3Config) IsConfigured() bool {
	return len(c.MissingRequired()) == 0
}

func (c S3Config) isEmpty() bool {
	return strings.TrimSpace(c.Endpoint) == "" &&
		strings.TrimSpace(c.Region) == "" &&
		strings.TrimSpace(c.Bucket) == "" &&
		strings.TrimSpace(c.AccessKeyID) == "" &&
		strings.TrimSpace(c.SecretAccessKey) == "" &&
		strings.TrimSpace(c.PublicBaseURL) == ""
}

// Diagnostics classifies the configuration state for startup logs.
func (c S3Config) Diagnostics() (level string, code string, msg string) {
	if c.isEmpty() {
		return "info", "s3_not_configured", "not configured (all empty)"
	}

	if missing := c.MissingRequired(); len(missing) > 0 {
		return "warn", "s3_partial_config", fmt.Sprintf("partial config, missing=%v", missing)
	}

	return "info", "s3_ready", "ready"
}

// Fields returns structured log fields without secrets.
func (c S3Config) Fields() []interface{} {
	return []interface{}{
		"endpoint", nonEmptyOrDash(c.Endpoint),
		"region", nonEmptyOrDash(c.Region),
		"bucket", nonEmptyOrDash(c.Bucket),
		"public_base_url", nonEmptyOrDash(c.PublicBaseURL),
		"presign_ttl_s", c.PresignTTLSeconds,
		"prefer_public_url", c.PreferPublicURL,
		"access_key_id_set", strings.TrimSpace(c.AccessKeyID) != "",
		"secret_access_key_set", strings.TrimSpace(c.SecretAccessKey) != "",
	}
}

func nonEmptyOrDash(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "-"
	}
	return v
}

type BlobConfig struct {
	Mode        string // local|s3|auto
	ReportsMode string // override для отчётов, пусто = Mode
	S3          S3Config
}

func (c BlobConfig) EffectiveReportsMode() string {
	if c.ReportsMode != "" {
		return c.ReportsMode
	}
	return c.Mode
}

func normalizeBlobMode(raw, fallback string) (string, bool) {
	mode := strings.ToLower(strings.TrimSpace(raw))
	switch mode {
	case "":
		return fallback, true
	case BlobModeLocal, BlobModeS3, BlobModeAuto:
		return mode, true
	default:
		return fallback, false
	}
}
