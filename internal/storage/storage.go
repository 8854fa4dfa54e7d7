// Package storage holds whole documents by key: the content document, the
// SEO seed file and the newsletter PDF. The local backend writes files under
// a directory; the aws backend uses S3 with an optional DynamoDB revision log.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/lumewave/agency-site/internal/config"
	"github.com/lumewave/agency-site/internal/domain"
)

// Store is a keyed document store. Get wraps fs.ErrNotExist when the key is
// absent. Every Put records a revision.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Revisions(ctx context.Context, key string) ([]domain.ContentRevision, error)
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
	// Backend names the implementation for health output.
	Backend() string
}

// ErrInvalidKey is returned for keys that escape the store root.
var ErrInvalidKey = errors.New("invalid storage key")

// New creates the store selected by cfg.Type.
func New(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Type {
	case "aws":
		return NewS3Store(ctx, cfg.S3Bucket, cfg.DynamoDBTable, cfg.AWSRegion, cfg.GetAWSProfile())
	case "local", "":
		return NewLocalStore(cfg.LocalPath)
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}

func cleanKey(key string) (string, error) {
	k := path.Clean("/" + strings.TrimSpace(key))[1:]
	if k == "" || k == "." || strings.HasPrefix(k, revisionsFile) {
		return "", ErrInvalidKey
	}
	return k, nil
}

const revisionsFile = "revisions.jsonl"

// LocalStore keeps documents as files under a root directory. Writes are
// atomic (temp file + rename) and append a line to revisions.jsonl.
type LocalStore struct {
	root string
	mu   sync.Mutex
	now  func() time.Time
}

// NewLocalStore creates root if needed.
func NewLocalStore(root string) (*LocalStore, error) {
	if root == "" {
		root = "./data"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	return &LocalStore{root: root, now: time.Now}, nil
}

// Backend implements Store.
func (s *LocalStore) Backend() string { return "local" }

// Get implements Store.
func (s *LocalStore) Get(_ context.Context, key string) ([]byte, error) {
	k, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(k)))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", k, err)
	}
	return data, nil
}

// Put implements Store.
func (s *LocalStore) Put(_ context.Context, key string, data []byte) error {
	k, err := cleanKey(key)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	dst := filepath.Join(s.root, filepath.FromSlash(k))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", k, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", k, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing %s: %w", k, err)
	}
	return s.appendRevision(domain.ContentRevision{Key: k, WrittenAt: s.now().UTC(), Size: int64(len(data))})
}

func (s *LocalStore) appendRevision(rev domain.ContentRevision) error {
	line, err := json.Marshal(rev)
	if err != nil {
		return fmt.Errorf("marshaling revision: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(s.root, revisionsFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening revision log: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("writing revision log: %w", err)
	}
	return nil
}

// Revisions implements Store. Newest first.
func (s *LocalStore) Revisions(_ context.Context, key string) ([]domain.ContentRevision, error) {
	k, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(filepath.Join(s.root, revisionsFile))
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.ContentRevision{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading revision log: %w", err)
	}
	out := []domain.ContentRevision{}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		var rev domain.ContentRevision
		if json.Unmarshal([]byte(lines[i]), &rev) != nil || rev.Key != k {
			continue
		}
		out = append(out, rev)
	}
	return out, nil
}

// Ping implements Store.
func (s *LocalStore) Ping(context.Context) error {
	info, err := os.Stat(s.root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.root)
	}
	return nil
}
