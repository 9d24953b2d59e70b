// Package recorder persists finished tailoring runs as generation records.
package recorder

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// Store holds generation records. Implementations serialize their own writes.
type Store interface {
	// Insert stores rec, sets rec.ID and returns it.
	Insert(ctx context.Context, rec *GenerationRecord) (int64, error)
	// ListAll returns every record, newest first.
	ListAll(ctx context.Context) ([]GenerationRecord, error)
	// Get returns nil, nil when no record has the id.
	Get(ctx context.Context, id int64) (*GenerationRecord, error)
	Delete(ctx context.Context, id int64) error
	Close() error
}

// Open picks a store from the DSN scheme. postgres:// and postgresql:// URLs use Postgres,
// everything else is a SQLite file path, optionally prefixed with sqlite://.
func Open(ctx context.Context, dsn string, log *zap.Logger) (Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		log.Debug("opening postgres recorder")
		return OpenPostgres(ctx, dsn)
	}
	path := strings.TrimPrefix(dsn, "sqlite://")
	log.Debug("opening sqlite recorder", zap.String("path", path))
	return OpenSQLite(ctx, path)
}
