package config

import "testing"

func readyS3() S3Config {
	return S3Config{
		Endpoint:        "https://storage.yandexcloud.net",
		Region:          "ru-central1",
		Bucket:          "nutrio-reports",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
	}
}

func TestS3ConfigIsConfigured(t *testing.T) {
	t.Run("empty config is not configured", func(t *testing.T) {
		if (S3Config{}).IsConfigured() {
			t.Fatal("expected IsConfigured=false for empty config")
		}
	})

	t.Run("public base url optional without prefer flag", func(t *testing.T) {
		if !readyS3().IsConfigured() {
			t.Fatal("expected IsConfigured=true when credentials and bucket are set")
		}
	})

	t.Run("public base url required with prefer flag", func(t *testing.T) {
		cfg := readyS3()
		cfg.PreferPublicURL = true
		if cfg.IsConfigured() {
			t.Fatal("expected IsConfigured=false without S3_PUBLIC_BASE_URL")
		}
		cfg.PublicBaseURL = "https://storage.yandexcloud.net/nutrio-reports"
		if !cfg.IsConfigured() {
			t.Fatal("expected IsConfigured=true once public base url is set")
		}
	})
}

func TestS3ConfigMissingRequired(t *testing.T) {
	cfg := S3Config{
		Endpoint: "https://storage.yandexcloud.net",
		Bucket:   "bucket",
	}
	missing := cfg.MissingRequired()

	want := []string{"S3_REGION", "S3_ACCESS_KEY_ID", "S3_SECRET_ACCESS_KEY"}
	if len(missing) != len(want) {
		t.Fatalf("expected %d missing fields, got %d (%v)", len(want), len(missing), missing)
	}
	for i := range want {
		if missing[i] != want[i] {
			t.Fatalf("expected missing[%d]=%s, got %s", i, want[i], missing[i])
		}
	}
}

func TestS3ConfigDiagnostics(t *testing.T) {
	cases := []struct {
		name      string
		cfg       S3Config
		wantLevel string
		wantCode  string
	}{
		{"not configured", S3Config{}, "info", "s3_not_configured"},
		{"partial", S3Config{Endpoint: "https://storage.yandexcloud.net"}, "warn", "s3_partial_config"},
		{"ready", readyS3(), "info", "s3_ready"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			level, code, _ := tc.cfg.Diagnostics()
			if level != tc.wantLevel || code != tc.wantCode {
				t.Fatalf("expected %s/%s, got %s/%s", tc.wantLevel, tc.wantCode, level, code)
			}
		})
	}
}

func TestS3ConfigFieldsHideSecrets(t *testing.T) {
	fields := readyS3().Fields()
	for i := 0; i < len(fields); i += 2 {
		if v, ok := fields[i+1].(string); ok && (v == "key" || v == "secret") {
			t.Fatalf("field %v leaks a credential", fields[i])
		}
	}
}

func TestBlobConfigEffectiveReportsMode(t *testing.T) {
	cfg := BlobConfig{Mode: BlobModeS3}
	if got := cfg.EffectiveReportsMode(); got != BlobModeS3 {
		t.Fatalf("expected inherited mode s3, got %s", got)
	}
	cfg.ReportsMode = BlobModeLocal
	if got := cfg.EffectiveReportsMode(); got != BlobModeLocal {
		t.Fatalf("expected override local, got %s", got)
	}
}
