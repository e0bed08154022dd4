package blob

import (
	"context"
	"fmt"
	"log/slog"

	"knowledgebase/internal/config"
	kbSvc "knowledgebase/internal/domain/services/kb"
)

// NewFromConfig builds the configured blob store. fsStore is non-nil only
// for the filesystem backend, whose signed URLs the server must serve.
func NewFromConfig(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store kbSvc.BlobStore, fsStore *FSStore, err error) {
	switch cfg.BlobBackend {
	case "s3":
		s3, err := NewS3Store(ctx, S3Config{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			UseSSL:    cfg.S3UseSSL,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		return s3, nil, nil
	case "fs", "":
		fs, err := NewFSStore(FSConfig{
			Root:       cfg.BlobDir,
			BaseURL:    cfg.BlobBaseURL,
			SigningKey: []byte(cfg.BlobSigningKey),
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		return fs, fs, nil
	default:
		return nil, nil, fmt.Errorf("unknown blob backend %q", cfg.BlobBackend)
	}
}
