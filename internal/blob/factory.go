package blob

import (
	"context"
	"fmt"
	"strings"

	appcfg "github.com/IDINaXI/Nutrio/internal/config"
	"github.com/IDINaXI/Nutrio/internal/logger"
)

// NewBlobStore picks the report store for local|s3|auto mode.
// In local mode the store is nil and report bytes live in the main database.
func NewBlobStore(ctx context.Context, cfg appcfg.BlobConfig, log *logger.Logger) (Store, string, error) {
	log = logger.OrNop(log).Named("blob")

	mode := strings.ToLower(strings.TrimSpace(cfg.EffectiveReportsMode()))
	if mode == "" {
		mode = appcfg.BlobModeLocal
	}

	switch mode {
	case appcfg.BlobModeLocal:
		log.Infow("storage selected", "mode", appcfg.BlobModeLocal, "reason", "forced")
		return nil, appcfg.BlobModeLocal, nil

	case appcfg.BlobModeAuto:
		if !cfg.S3.IsConfigured() {
			level, code, msg := cfg.S3.Diagnostics()
			fields := append([]interface{}{"code", code}, cfg.S3.Fields()...)
			if level == "warn" {
				log.Warnw(msg, fields...)
			} else {
				log.Infow(msg, fields...)
			}
			log.Infow("storage selected", "mode", appcfg.BlobModeLocal, "reason", "auto, S3 not configured")
			return nil, appcfg.BlobModeLocal, nil
		}

		store, err := newS3(ctx, cfg.S3)
		if err != nil {
			log.Warnw("S3 init failed, fallback to local", "error", err)
			return nil, appcfg.BlobModeLocal, nil
		}

		log.Infow("storage selected", append([]interface{}{"mode", appcfg.BlobModeS3, "reason", "auto, configured"}, cfg.S3.Fields()...)...)
		return store, appcfg.BlobModeS3, nil

	case appcfg.BlobModeS3:
		if !cfg.S3.IsConfigured() {
			missing := cfg.S3.MissingRequired()
			log.Errorw("S3 config incomplete", append([]interface{}{"code", "s3_config_incomplete", "missing", missing}, cfg.S3.Fields()...)...)
			return nil, "", fmt.Errorf("BLOB_MODE=s3 requested but missing required config: %s", strings.Join(missing, ", "))
		}

		store, err := newS3(ctx, cfg.S3)
		if err != nil {
			log.Errorw("S3 init failed", "error", err)
			return nil, "", fmt.Errorf("BLOB_MODE=s3 init failed: %w", err)
		}

		log.Infow("storage selected", append([]interface{}{"mode", appcfg.BlobModeS3, "reason", "forced"}, cfg.S3.Fields()...)...)
		return store, appcfg.BlobModeS3, nil

	default:
		return nil, "", fmt.Errorf("unsupported blob mode: %s", mode)
	}
}

func newS3(ctx context.Context, c appcfg.S3Config) (*S3Store, error) {
	return NewS3Store(ctx, c.Endpoint, c.Region, c.Bucket, c.AccessKeyID, c.SecretAccessKey)
}
