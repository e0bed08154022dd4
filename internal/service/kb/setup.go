package kb

import (
	"log/slog"

	"knowledgebase/internal/domain/repositories"
	"knowledgebase/internal/domain/services"
	kbSvc "knowledgebase/internal/domain/services/kb"
)

// Services holds every knowledge-base service, sharing one root repairer
type Services struct {
	Roots     *RootRepairer
	Folders   kbSvc.FolderService
	Documents kbSvc.DocumentService
	Assets    kbSvc.AssetService
	Tree      kbSvc.TreeService
	Sweeper   *Sweeper
	Exporter  *Exporter
	Importer  *Importer
}

// SetupServices wires the knowledge-base services together
func SetupServices(
	repos Repositories,
	blobs kbSvc.BlobStore,
	txManager repositories.TransactionManager,
	access services.AccessController,
	opts Options,
	logger *slog.Logger,
) *Services {
	roots := NewRootRepairer(repos, blobs, txManager, opts, logger)
	indexer := NewIndexer(repos.Documents, repos.Index, logger)
	analyzer := NewContentAnalyzer()

	folders := NewFolderService(repos, blobs, roots, txManager, access, opts, logger)
	documents := NewDocumentService(repos, blobs, roots, folders, indexer, analyzer, txManager, access, opts, logger)

	return &Services{
		Roots:     roots,
		Folders:   folders,
		Documents: documents,
		Assets:    NewAssetService(repos, blobs, roots, access, opts, logger),
		Tree:      NewTreeService(repos, roots, access, logger),
		Sweeper:   NewSweeper(repos, blobs, opts, logger),
		Exporter:  NewExporter(repos, blobs, logger),
		Importer:  NewImporter(documents, logger),
	}
}
