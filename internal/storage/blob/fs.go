package blob

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"knowledgebase/internal/domain"
	models "knowledgebase/internal/domain/models/kb"
	kbSvc "knowledgebase/internal/domain/services/kb"
)

const (
	metaDir    = ".meta"
	tempPrefix = ".tmp-"

	OpGet = "get"
	OpPut = "put"
)

// ErrTooLarge is returned by WriteStream when the body exceeds its limit
var ErrTooLarge = errors.New("blob exceeds size limit")

// FSConfig configures a filesystem-backed blob store
type FSConfig struct {
	Root       string
	BaseURL    string // public URL the blob handler is mounted under
	SigningKey []byte
}

// FSStore keeps blobs as plain files under Root. Signed URLs point at the
// server's /blobs route and carry an HS256 token scoped to one key and op.
type FSStore struct {
	root    string
	baseURL string
	key     []byte
	logger  *slog.Logger
	now     func() time.Time
}

// BlobClaims are carried by signed blob URLs
type BlobClaims struct {
	Op          string `json:"op"`
	ContentType string `json:"ct,omitempty"`
	MaxBytes    int64  `json:"max,omitempty"`
	jwt.RegisteredClaims
}

type fileMeta struct {
	ContentType string            `json:"content_type"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

func NewFSStore(cfg FSConfig, logger *slog.Logger) (*FSStore, error) {
	if len(cfg.SigningKey) == 0 {
		return nil, fmt.Errorf("filesystem blob store requires a signing key")
	}
	if err := os.MkdirAll(filepath.Join(cfg.Root, metaDir), 0o755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &FSStore{
		root:    cfg.Root,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		key:     cfg.SigningKey,
		logger:  logger,
		now:     time.Now,
	}, nil
}

func (s *FSStore) GetContent(ctx context.Context, key string) (string, bool, error) {
	p, err := s.objectPath(key)
	if err != nil {
		return "", false, err
	}
	body, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read blob %s: %w", key, err)
	}
	return string(body), true, nil
}

func (s *FSStore) UploadContent(ctx context.Context, key, content, mimeType string, metadata map[string]string) error {
	_, err := s.write(key, strings.NewReader(content), mimeType, metadata, -1)
	return err
}

// WriteStream stores r under key. A positive limit rejects bodies larger
// than limit bytes with ErrTooLarge.
func (s *FSStore) WriteStream(ctx context.Context, key string, r io.Reader, mimeType string, limit int64) (int64, error) {
	return s.write(key, r, mimeType, nil, limit)
}

func (s *FSStore) write(key string, r io.Reader, mimeType string, metadata map[string]string, limit int64) (int64, error) {
	p, err := s.objectPath(key)
	if err != nil {
		return 0, err
	}
	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}

	n, err := writeAtomic(p, func(w io.Writer) (int64, error) { return io.Copy(w, r) }, func(n int64) error {
		if limit > 0 && n > limit {
			return ErrTooLarge
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("write blob %s: %w", key, err)
	}

	meta, err := json.Marshal(fileMeta{ContentType: mimeType, Metadata: metadata})
	if err != nil {
		return 0, err
	}
	if _, err := writeAtomic(s.metaPath(key), func(w io.Writer) (int64, error) {
		m, err := w.Write(meta)
		return int64(m), err
	}, nil); err != nil {
		return 0, fmt.Errorf("write blob metadata %s: %w", key, err)
	}
	return n, nil
}

// writeAtomic writes into a temp file beside dst and renames it into place
// once check accepts the byte count.
func writeAtomic(dst string, fill func(io.Writer) (int64, error), check func(int64) error) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), tempPrefix+"*")
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp.Name())

	n, err := fill(tmp)
	if err == nil && check != nil {
		err = check(n)
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return 0, err
	}
	return n, os.Rename(tmp.Name(), dst)
}

func (s *FSStore) DeleteObject(ctx context.Context, key string) error {
	p, err := s.objectPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete blob %s: %w", key, err)
	}
	if err := os.Remove(s.metaPath(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("failed to delete blob metadata", "key", key, "error", err)
	}
	return nil
}

// Open returns the blob file and its stored content type
func (s *FSStore) Open(key string) (*os.File, string, error) {
	p, err := s.objectPath(key)
	if err != nil {
		return nil, "", err
	}
	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", fmt.Errorf("blob %s: %w", key, domain.ErrNotFound)
	}
	if err != nil {
		return nil, "", err
	}

	contentType := "application/octet-stream"
	if raw, err := os.ReadFile(s.metaPath(key)); err == nil {
		var meta fileMeta
		if json.Unmarshal(raw, &meta) == nil && meta.ContentType != "" {
			contentType = meta.ContentType
		}
	}
	return f, contentType, nil
}

// Metadata returns the user metadata stored alongside key
func (s *FSStore) Metadata(key string) (map[string]string, error) {
	raw, err := os.ReadFile(s.metaPath(key))
	if err != nil {
		return nil, err
	}
	var meta fileMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, err
	}
	return meta.Metadata, nil
}

func (s *FSStore) GenerateUploadURL(ctx context.Context, key, mimeType string, sizeLimit int64) (*models.UploadTarget, error) {
	expires := s.now().Add(uploadURLTTL)
	signed, err := s.sign(key, BlobClaims{Op: OpPut, ContentType: mimeType, MaxBytes: sizeLimit}, expires)
	if err != nil {
		return nil, err
	}
	return &models.UploadTarget{URL: signed, Method: http.MethodPut, ExpiresAt: expires}, nil
}

func (s *FSStore) GenerateDownloadURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return s.sign(key, BlobClaims{Op: OpGet}, s.now().Add(ttl))
}

func (s *FSStore) sign(key string, claims BlobClaims, expires time.Time) (string, error) {
	if _, err := s.objectPath(key); err != nil {
		return "", err
	}
	claims.Subject = key
	claims.ExpiresAt = jwt.NewNumericDate(expires)
	claims.IssuedAt = jwt.NewNumericDate(s.now())

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign blob url: %w", err)
	}
	return s.baseURL + "/blobs/" + key + "?token=" + url.QueryEscape(token), nil
}

// Verify checks that token grants op on key
func (s *FSStore) Verify(token, key, op string) (*BlobClaims, error) {
	claims := &BlobClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, &domain.UnauthorizedError{Message: "invalid blob token"}
	}
	if claims.Subject != key || claims.Op != op {
		return nil, &domain.ForbiddenError{Message: "blob token does not grant this request"}
	}
	return claims, nil
}

func (s *FSStore) List(ctx context.Context, prefix string) ([]kbSvc.ObjectInfo, error) {
	var objects []kbSvc.ObjectInfo
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == metaDir && filepath.Dir(p) == filepath.Clean(s.root) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), tempPrefix) {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		objects = append(objects, kbSvc.ObjectInfo{Key: key, Size: info.Size(), LastModified: info.ModTime()})
		return ctx.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list blobs %s: %w", prefix, err)
	}
	return objects, nil
}

func (s *FSStore) objectPath(key string) (string, error) {
	if key == "" || path.IsAbs(key) || !filepath.IsLocal(filepath.FromSlash(key)) ||
		key == metaDir || strings.HasPrefix(key, metaDir+"/") {
		return "", &domain.ValidationError{Message: fmt.Sprintf("invalid blob key %q", key)}
	}
	return filepath.Join(s.root, filepath.FromSlash(key)), nil
}

func (s *FSStore) metaPath(key string) string {
	return filepath.Join(s.root, metaDir, filepath.FromSlash(key)+".json")
}
