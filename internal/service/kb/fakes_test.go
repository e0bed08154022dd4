package kb

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"knowledgebase/internal/domain"
	models "knowledgebase/internal/domain/models/kb"
	"knowledgebase/internal/domain/repositories"
	kbSvc "knowledgebase/internal/domain/services/kb"
)

const (
	testWS     = "ws-1"
	testUser   = "user-1"
	viewerUser = "viewer-1"
	outsider   = "stranger-1"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memStore is an in-memory relational store shared by the fake repositories.
// It enforces the unique constraints and foreign keys the schema declares.
type memStore struct {
	mu      sync.Mutex
	folders map[string]models.Folder
	docs    map[string]models.Document
	tags    map[string][]string
	links   map[string][]models.Link
	assets  map[string]models.Asset

	// fail makes the named operation ("Documents.Update") return the error
	fail map[string]error
	// beforeFolderCreate runs before a folder insert, outside the lock
	beforeFolderCreate func(f *models.Folder)
}

func newMemStore() *memStore {
	return &memStore{
		folders: map[string]models.Folder{},
		docs:    map[string]models.Document{},
		tags:    map[string][]string{},
		links:   map[string][]models.Link{},
		assets:  map[string]models.Asset{},
		fail:    map[string]error{},
	}
}

func (s *memStore) failure(op string) error {
	return s.fail[op]
}

type memSnapshot struct {
	folders map[string]models.Folder
	docs    map[string]models.Document
	tags    map[string][]string
	links   map[string][]models.Link
	assets  map[string]models.Asset
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memSnapshot{
		folders: maps.Clone(s.folders),
		docs:    maps.Clone(s.docs),
		tags:    maps.Clone(s.tags),
		links:   maps.Clone(s.links),
		assets:  maps.Clone(s.assets),
	}
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.folders = snap.folders
	s.docs = snap.docs
	s.tags = snap.tags
	s.links = snap.links
	s.assets = snap.assets
}

// memTx restores the store when fn fails, like a rolled back transaction
type memTx struct {
	store *memStore
}

func (tx *memTx) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	snap := tx.store.snapshot()
	if err := fn(ctx); err != nil {
		tx.store.restore(snap)
		return err
	}
	return nil
}

func sortFolders(folders []models.Folder) {
	sort.Slice(folders, func(i, j int) bool {
		if !folders[i].CreatedAt.Equal(folders[j].CreatedAt) {
			return folders[i].CreatedAt.Before(folders[j].CreatedAt)
		}
		return folders[i].ID < folders[j].ID
	})
}

func sortDocuments(docs []models.Document) {
	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].CreatedAt.Before(docs[j].CreatedAt)
		}
		return docs[i].ID < docs[j].ID
	})
}

// --- folders ---

type memFolderRepo struct{ s *memStore }

func (r *memFolderRepo) conflictLocked(f *models.Folder) error {
	for _, other := range r.s.folders {
		if other.ID == f.ID || other.WorkspaceID != f.WorkspaceID {
			continue
		}
		if other.Path == f.Path {
			return &domain.ConflictError{Message: "folder path taken", ResourceType: "folder", ResourceID: other.ID}
		}
		if f.ParentFolderID == nil && other.ParentFolderID == nil {
			return &domain.ConflictError{Message: "workspace already has a root folder", ResourceType: "folder", ResourceID: other.ID}
		}
	}
	return nil
}

func (r *memFolderRepo) Create(ctx context.Context, folder *models.Folder) error {
	if err := r.s.failure("Folders.Create"); err != nil {
		return err
	}
	if hook := r.s.beforeFolderCreate; hook != nil {
		hook(folder)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.conflictLocked(folder); err != nil {
		return err
	}
	r.s.folders[folder.ID] = *folder
	return nil
}

func (r *memFolderRepo) GetByID(ctx context.Context, id, workspaceID string) (*models.Folder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.folders[id]
	if !ok || f.WorkspaceID != workspaceID {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	return &f, nil
}

func (r *memFolderRepo) GetByPath(ctx context.Context, workspaceID, path string) (*models.Folder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, f := range r.s.folders {
		if f.WorkspaceID == workspaceID && f.Path == path {
			return &f, nil
		}
	}
	return nil, fmt.Errorf("folder at %s: %w", path, domain.ErrNotFound)
}

func (r *memFolderRepo) filter(keep func(models.Folder) bool) []models.Folder {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Folder
	for _, f := range r.s.folders {
		if keep(f) {
			out = append(out, f)
		}
	}
	sortFolders(out)
	return out
}

func (r *memFolderRepo) ListRoots(ctx context.Context, workspaceID string) ([]models.Folder, error) {
	return r.filter(func(f models.Folder) bool {
		return f.WorkspaceID == workspaceID && f.ParentFolderID == nil
	}), nil
}

func (r *memFolderRepo) ListChildren(ctx context.Context, workspaceID, parentID string) ([]models.Folder, error) {
	out := r.filter(func(f models.Folder) bool {
		return f.WorkspaceID == workspaceID && f.ParentFolderID != nil && *f.ParentFolderID == parentID
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memFolderRepo) ListByWorkspace(ctx context.Context, workspaceID string) ([]models.Folder, error) {
	return r.filter(func(f models.Folder) bool { return f.WorkspaceID == workspaceID }), nil
}

func (r *memFolderRepo) Update(ctx context.Context, folder *models.Folder) error {
	if err := r.s.failure("Folders.Update"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.folders[folder.ID]; !ok {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}
	if err := r.conflictLocked(folder); err != nil {
		return err
	}
	r.s.folders[folder.ID] = *folder
	return nil
}

func (r *memFolderRepo) Reparent(ctx context.Context, workspaceID string, fromParentIDs []string, toParentID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, f := range r.s.folders {
		if f.WorkspaceID == workspaceID && f.ParentFolderID != nil && slices.Contains(fromParentIDs, *f.ParentFolderID) {
			to := toParentID
			f.ParentFolderID = &to
			r.s.folders[id] = f
		}
	}
	return nil
}

func (r *memFolderRepo) DeleteByIDs(ctx context.Context, workspaceID string, ids []string) error {
	if err := r.s.failure("Folders.DeleteByIDs"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, d := range r.s.docs {
		if slices.Contains(ids, d.FolderID) {
			return fmt.Errorf("folder %s still holds document %s", d.FolderID, d.ID)
		}
	}
	for _, f := range r.s.folders {
		if f.ParentFolderID != nil && slices.Contains(ids, *f.ParentFolderID) && !slices.Contains(ids, f.ID) {
			return fmt.Errorf("folder %s still holds folder %s", *f.ParentFolderID, f.ID)
		}
	}
	for _, id := range ids {
		if f, ok := r.s.folders[id]; ok && f.WorkspaceID == workspaceID {
			delete(r.s.folders, id)
		}
	}
	return nil
}

func (r *memFolderRepo) ListWorkspaceIDs(ctx context.Context) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seen := map[string]struct{}{}
	for _, f := range r.s.folders {
		seen[f.WorkspaceID] = struct{}{}
	}
	return slices.Sorted(maps.Keys(seen)), nil
}

// --- documents ---

type memDocumentRepo struct{ s *memStore }

func (r *memDocumentRepo) Create(ctx context.Context, doc *models.Document) error {
	if err := r.s.failure("Documents.Create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.folders[doc.FolderID]; !ok {
		return fmt.Errorf("folder %s does not exist", doc.FolderID)
	}
	r.s.docs[doc.ID] = *doc
	return nil
}

func (r *memDocumentRepo) GetByID(ctx context.Context, id, workspaceID string) (*models.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.docs[id]
	if !ok || d.WorkspaceID != workspaceID {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	return &d, nil
}

func (r *memDocumentRepo) Update(ctx context.Context, doc *models.Document) error {
	if err := r.s.failure("Documents.Update"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.docs[doc.ID]; !ok {
		return fmt.Errorf("document %s: %w", doc.ID, domain.ErrNotFound)
	}
	r.s.docs[doc.ID] = *doc
	return nil
}

func (r *memDocumentRepo) DeleteByIDs(ctx context.Context, workspaceID string, ids []string) error {
	if err := r.s.failure("Documents.DeleteByIDs"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range ids {
		delete(r.s.docs, id)
		delete(r.s.tags, id)
		delete(r.s.links, id)
	}
	for source, links := range r.s.links {
		r.s.links[source] = slices.DeleteFunc(slices.Clone(links), func(l models.Link) bool {
			return slices.Contains(ids, l.TargetDocumentID)
		})
	}
	return nil
}

func (r *memDocumentRepo) filter(keep func(models.Document) bool) []models.Document {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Document
	for _, d := range r.s.docs {
		if keep(d) {
			out = append(out, d)
		}
	}
	sortDocuments(out)
	return out
}

func (r *memDocumentRepo) ListByFolder(ctx context.Context, workspaceID, folderID string) ([]models.Document, error) {
	out := r.filter(func(d models.Document) bool { return d.WorkspaceID == workspaceID && d.FolderID == folderID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (r *memDocumentRepo) ListByFolders(ctx context.Context, workspaceID string, folderIDs []string) ([]models.Document, error) {
	return r.filter(func(d models.Document) bool {
		return d.WorkspaceID == workspaceID && slices.Contains(folderIDs, d.FolderID)
	}), nil
}

func (r *memDocumentRepo) ListByWorkspace(ctx context.Context, workspaceID string) ([]models.Document, error) {
	return r.filter(func(d models.Document) bool { return d.WorkspaceID == workspaceID }), nil
}

func (r *memDocumentRepo) FindByTitles(ctx context.Context, workspaceID string, titles []string) ([]models.Document, error) {
	return r.filter(func(d models.Document) bool {
		if d.WorkspaceID != workspaceID {
			return false
		}
		return slices.ContainsFunc(titles, func(t string) bool { return strings.EqualFold(t, d.Title) })
	}), nil
}

func (r *memDocumentRepo) Reparent(ctx context.Context, workspaceID string, fromFolderIDs []string, toFolderID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, d := range r.s.docs {
		if d.WorkspaceID == workspaceID && slices.Contains(fromFolderIDs, d.FolderID) {
			d.FolderID = toFolderID
			r.s.docs[id] = d
		}
	}
	return nil
}

func (r *memDocumentRepo) ListStorageKeys(ctx context.Context, workspaceID string) ([]string, error) {
	var keys []string
	for _, d := range r.filter(func(d models.Document) bool { return d.WorkspaceID == workspaceID }) {
		keys = append(keys, d.StorageKey)
	}
	return keys, nil
}

// --- index ---

type memIndexRepo struct{ s *memStore }

func (r *memIndexRepo) ReplaceTags(ctx context.Context, documentID string, tags []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.tags[documentID] = slices.Clone(tags)
	return nil
}

func (r *memIndexRepo) ReplaceLinks(ctx context.Context, sourceDocumentID string, links []models.Link) error {
	if err := r.s.failure("Index.ReplaceLinks"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.links[sourceDocumentID] = slices.Clone(links)
	return nil
}

func (r *memIndexRepo) ListTags(ctx context.Context, documentID string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	tags := slices.Clone(r.s.tags[documentID])
	slices.Sort(tags)
	return tags, nil
}

func refOf(d models.Document) models.DocumentRef {
	return models.DocumentRef{ID: d.ID, Title: d.Title, Slug: d.Slug, FolderID: d.FolderID, UpdatedAt: d.UpdatedAt}
}

func (r *memIndexRepo) ListOutgoing(ctx context.Context, workspaceID, sourceDocumentID string) ([]models.DocumentRef, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var refs []models.DocumentRef
	for _, l := range r.s.links[sourceDocumentID] {
		if d, ok := r.s.docs[l.TargetDocumentID]; ok && d.WorkspaceID == workspaceID {
			refs = append(refs, refOf(d))
		}
	}
	return refs, nil
}

func (r *memIndexRepo) ListBacklinks(ctx context.Context, workspaceID, targetDocumentID string) ([]models.DocumentRef, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var refs []models.DocumentRef
	for source, links := range r.s.links {
		for _, l := range links {
			if l.TargetDocumentID != targetDocumentID {
				continue
			}
			if d, ok := r.s.docs[source]; ok && d.WorkspaceID == workspaceID {
				refs = append(refs, refOf(d))
			}
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].ID < refs[j].ID })
	return refs, nil
}

func (r *memIndexRepo) ListDocumentsByTag(ctx context.Context, workspaceID, tag string) ([]models.DocumentRef, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var refs []models.DocumentRef
	for id, tags := range r.s.tags {
		if d, ok := r.s.docs[id]; ok && d.WorkspaceID == workspaceID && slices.Contains(tags, tag) {
			refs = append(refs, refOf(d))
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Title < refs[j].Title })
	return refs, nil
}

// --- assets ---

type memAssetRepo struct{ s *memStore }

func (r *memAssetRepo) Upsert(ctx context.Context, asset *models.Asset) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, existing := range r.s.assets {
		if existing.DocumentID == asset.DocumentID && existing.Filename == asset.Filename {
			existing.MimeType = asset.MimeType
			existing.Size = asset.Size
			r.s.assets[id] = existing
			asset.ID = id
			return nil
		}
	}
	r.s.assets[asset.ID] = *asset
	return nil
}

func (r *memAssetRepo) GetByID(ctx context.Context, id, workspaceID string) (*models.Asset, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.assets[id]
	if !ok || a.WorkspaceID != workspaceID {
		return nil, fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
	}
	return &a, nil
}

func (r *memAssetRepo) ListByDocuments(ctx context.Context, workspaceID string, documentIDs []string) ([]models.Asset, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Asset
	for _, a := range r.s.assets {
		if a.WorkspaceID == workspaceID && slices.Contains(documentIDs, a.DocumentID) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Filename < out[j].Filename })
	return out, nil
}

func (r *memAssetRepo) Delete(ctx context.Context, id, workspaceID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if a, ok := r.s.assets[id]; !ok || a.WorkspaceID != workspaceID {
		return fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
	}
	delete(r.s.assets, id)
	return nil
}

func (r *memAssetRepo) DeleteByDocuments(ctx context.Context, workspaceID string, documentIDs []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, a := range r.s.assets {
		if a.WorkspaceID == workspaceID && slices.Contains(documentIDs, a.DocumentID) {
			delete(r.s.assets, id)
		}
	}
	return nil
}

func (r *memAssetRepo) ListStorageKeys(ctx context.Context, workspaceID string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var keys []string
	for _, a := range r.s.assets {
		if a.WorkspaceID == workspaceID {
			keys = append(keys, a.StorageKey)
		}
	}
	return keys, nil
}

// --- blobs ---

type memObject struct {
	content  string
	mimeType string
	metadata map[string]string
	modified time.Time
}

// memBlobs is an in-memory blob store with per-key fault injection
type memBlobs struct {
	mu      sync.Mutex
	objects map[string]memObject
	uploads int

	failGet    map[string]error
	failUpload map[string]error
	failDelete map[string]error
	now        func() time.Time
}

func newMemBlobs() *memBlobs {
	return &memBlobs{
		objects:    map[string]memObject{},
		failGet:    map[string]error{},
		failUpload: map[string]error{},
		failDelete: map[string]error{},
		now:        time.Now,
	}
}

func (b *memBlobs) GetContent(ctx context.Context, key string) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.failGet[key]; err != nil {
		return "", false, err
	}
	obj, ok := b.objects[key]
	return obj.content, ok, nil
}

func (b *memBlobs) UploadContent(ctx context.Context, key, content, mimeType string, metadata map[string]string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.failUpload[key]; err != nil {
		return err
	}
	b.objects[key] = memObject{content: content, mimeType: mimeType, metadata: metadata, modified: b.now()}
	b.uploads++
	return nil
}

func (b *memBlobs) DeleteObject(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.failDelete[key]; err != nil {
		return err
	}
	delete(b.objects, key)
	return nil
}

func (b *memBlobs) GenerateUploadURL(ctx context.Context, key, mimeType string, sizeLimit int64) (*models.UploadTarget, error) {
	return &models.UploadTarget{
		URL:       "mem://upload/" + key,
		Method:    "PUT",
		Fields:    map[string]string{"content-type": mimeType, "max": fmt.Sprint(sizeLimit)},
		ExpiresAt: b.now().Add(15 * time.Minute),
	}, nil
}

func (b *memBlobs) GenerateDownloadURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return fmt.Sprintf("mem://download/%s?ttl=%d", key, int(ttl.Seconds())), nil
}

func (b *memBlobs) List(ctx context.Context, prefix string) ([]kbSvc.ObjectInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []kbSvc.ObjectInfo
	for key, obj := range b.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, kbSvc.ObjectInfo{Key: key, Size: int64(len(obj.content)), LastModified: obj.modified})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (b *memBlobs) has(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.objects[key]
	return ok
}

func (b *memBlobs) content(key string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.objects[key].content
}

func (b *memBlobs) keys() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Sorted(maps.Keys(b.objects))
}

func (b *memBlobs) uploadCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.uploads
}

// put stores an object directly, bypassing fault injection
func (b *memBlobs) put(key, content string, modified time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = memObject{content: content, mimeType: MarkdownMimeType, modified: modified}
}

// --- access ---

type fakeAccess struct {
	roles map[string]models.Role // by user id
}

func (a *fakeAccess) RequireAccess(ctx context.Context, userID, workspaceID string, minRole models.Role) (*models.Member, error) {
	role, ok := a.roles[userID]
	if !ok {
		return nil, &domain.ForbiddenError{Message: "not a member of this workspace"}
	}
	if !role.AtLeast(minRole) {
		return nil, &domain.ForbiddenError{Message: fmt.Sprintf("requires %s role", minRole)}
	}
	return &models.Member{WorkspaceID: workspaceID, UserID: userID, Role: role}, nil
}

// --- environment ---

type testEnv struct {
	store     *memStore
	blobs     *memBlobs
	repos     Repositories
	tx        *memTx
	roots     *RootRepairer
	folders   kbSvc.FolderService
	documents kbSvc.DocumentService
	assets    kbSvc.AssetService
	tree      kbSvc.TreeService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := newMemStore()
	blobs := newMemBlobs()
	repos := Repositories{
		Folders:   &memFolderRepo{s: store},
		Documents: &memDocumentRepo{s: store},
		Index:     &memIndexRepo{s: store},
		Assets:    &memAssetRepo{s: store},
	}
	tx := &memTx{store: store}
	access := &fakeAccess{roles: map[string]models.Role{
		testUser:   models.RoleOwner,
		viewerUser: models.RoleViewer,
	}}
	opts := Options{CascadeConcurrency: 4, AssetMaxBytes: 1 << 20, AssetURLTTL: 10 * time.Minute}
	logger := discardLogger()

	roots := NewRootRepairer(repos, blobs, tx, opts, logger)
	folders := NewFolderService(repos, blobs, roots, tx, access, opts, logger)
	indexer := NewIndexer(repos.Documents, repos.Index, logger)
	documents := NewDocumentService(repos, blobs, roots, folders, indexer, NewContentAnalyzer(), tx, access, opts, logger)

	return &testEnv{
		store:     store,
		blobs:     blobs,
		repos:     repos,
		tx:        tx,
		roots:     roots,
		folders:   folders,
		documents: documents,
		assets:    NewAssetService(repos, blobs, roots, access, opts, logger),
		tree:      NewTreeService(repos, roots, access, logger),
	}
}

func (e *testEnv) createFolder(t *testing.T, name string, parentID *string) *models.Folder {
	t.Helper()
	f, err := e.folders.CreateFolder(context.Background(), &kbSvc.CreateFolderRequest{
		WorkspaceID:    testWS,
		UserID:         testUser,
		Name:           name,
		ParentFolderID: parentID,
	})
	if err != nil {
		t.Fatalf("CreateFolder(%q) error = %v", name, err)
	}
	return f
}

func (e *testEnv) createDocument(t *testing.T, title, content string, folderID *string) *models.Document {
	t.Helper()
	d, err := e.documents.CreateDocument(context.Background(), &kbSvc.CreateDocumentRequest{
		WorkspaceID: testWS,
		UserID:      testUser,
		Title:       title,
		Content:     content,
		FolderID:    folderID,
	})
	if err != nil {
		t.Fatalf("CreateDocument(%q) error = %v", title, err)
	}
	return d
}

func (e *testEnv) folder(t *testing.T, id string) models.Folder {
	t.Helper()
	e.store.mu.Lock()
	defer e.store.mu.Unlock()
	f, ok := e.store.folders[id]
	if !ok {
		t.Fatalf("folder %s not in store", id)
	}
	return f
}

func (e *testEnv) document(t *testing.T, id string) models.Document {
	t.Helper()
	e.store.mu.Lock()
	defer e.store.mu.Unlock()
	d, ok := e.store.docs[id]
	if !ok {
		t.Fatalf("document %s not in store", id)
	}
	return d
}

func ptr[T any](v T) *T { return &v }
