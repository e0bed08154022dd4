package kb

import (
	"time"

	"knowledgebase/internal/config"
	kbRepo "knowledgebase/internal/domain/repositories/kb"
)

// SystemUserID is recorded as creator of rows the system makes on its own,
// such as an auto-created root folder.
const SystemUserID = "00000000-0000-0000-0000-000000000000"

// Repositories groups the knowledge-base repositories
type Repositories struct {
	Folders   kbRepo.FolderRepository
	Documents kbRepo.DocumentRepository
	Index     kbRepo.IndexRepository
	Assets    kbRepo.AssetRepository
}

// Options tunes the knowledge-base services
type Options struct {
	CascadeConcurrency int           // parallel blob copies per cascade
	AssetMaxBytes      int64         // upper bound for a single image
	AssetURLTTL        time.Duration // lifetime of signed asset URLs
}

// OptionsFromConfig extracts service options from the server config
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		CascadeConcurrency: cfg.CascadeConcurrency,
		AssetMaxBytes:      cfg.AssetMaxBytes,
		AssetURLTTL:        cfg.AssetURLTTL,
	}
}

func (o Options) withDefaults() Options {
	if o.CascadeConcurrency <= 0 {
		o.CascadeConcurrency = config.DefaultCascadeConcurrency
	}
	if o.AssetMaxBytes <= 0 {
		o.AssetMaxBytes = config.DefaultAssetMaxBytes
	}
	if o.AssetURLTTL <= 0 {
		o.AssetURLTTL = 15 * time.Minute
	}
	return o
}
