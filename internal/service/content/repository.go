package content

import (
	"context"

	"github.com/lumewave/agency-site/internal/domain"
)

// DocumentStore reads and writes whole documents by key. Get wraps
// fs.ErrNotExist when the key is absent. Each Put records a revision.
type DocumentStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Revisions(ctx context.Context, key string) ([]domain.ContentRevision, error)
}
