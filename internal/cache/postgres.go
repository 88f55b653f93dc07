package cache

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// PGStore persists cache entries in the cache_entries table on the shared
// connection pool. All failures are logged at Warn and reported as misses.
type PGStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPGStore builds a Postgres-backed store.
func NewPGStore(pool *pgxpool.Pool, logger *zap.Logger) *PGStore {
	return &PGStore{pool: pool, logger: logger}
}

func (s *PGStore) Get(ctx context.Context, namespace, identifier string) ([]byte, bool) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM cache_entries
		 WHERE namespace = $1 AND identifier = $2 AND expires_at > NOW()`,
		namespace, identifier,
	).Scan(&payload)
	if err != nil {
		if err != pgx.ErrNoRows {
			s.logger.Warn("cache get failed", zap.String("namespace", namespace), zap.Error(err))
		}
		return nil, false
	}
	return payload, true
}

func (s *PGStore) Set(ctx context.Context, namespace, identifier string, payload []byte, ttl time.Duration) bool {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO cache_entries (namespace, identifier, payload, expires_at)
		 VALUES ($1, $2, $3, NOW() + $4)
		 ON CONFLICT (namespace, identifier)
		 DO UPDATE SET payload = $3, expires_at = NOW() + $4, created_at = NOW()`,
		namespace, identifier, payload, ttl,
	)
	if err != nil {
		s.logger.Warn("cache set failed", zap.String("namespace", namespace), zap.Error(err))
		return false
	}
	return true
}

func (s *PGStore) Exists(ctx context.Context, namespace, identifier string) bool {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM cache_entries
		   WHERE namespace = $1 AND identifier = $2 AND expires_at > NOW())`,
		namespace, identifier,
	).Scan(&exists)
	if err != nil {
		s.logger.Warn("cache exists failed", zap.String("namespace", namespace), zap.Error(err))
		return false
	}
	return exists
}

func (s *PGStore) RemainingTTL(ctx context.Context, namespace, identifier string) time.Duration {
	var remaining time.Duration
	err := s.pool.QueryRow(ctx,
		`SELECT expires_at - NOW() FROM cache_entries
		 WHERE namespace = $1 AND identifier = $2 AND expires_at > NOW()`,
		namespace, identifier,
	).Scan(&remaining)
	if err != nil {
		if err != pgx.ErrNoRows {
			s.logger.Warn("cache ttl lookup failed", zap.String("namespace", namespace), zap.Error(err))
		}
		return 0
	}
	return remaining
}

func (s *PGStore) Delete(ctx context.Context, namespace, identifier string) bool {
	result, err := s.pool.Exec(ctx,
		`DELETE FROM cache_entries WHERE namespace = $1 AND identifier = $2`,
		namespace, identifier,
	)
	if err != nil {
		s.logger.Warn("cache delete failed", zap.String("namespace", namespace), zap.Error(err))
		return false
	}
	return result.RowsAffected() > 0
}

func (s *PGStore) InvalidateNamespace(ctx context.Context, namespace string) int {
	result, err := s.pool.Exec(ctx,
		`DELETE FROM cache_entries WHERE namespace = $1`, namespace)
	if err != nil {
		s.logger.Warn("cache invalidate failed", zap.String("namespace", namespace), zap.Error(err))
		return 0
	}
	return int(result.RowsAffected())
}

// PruneExpired removes expired rows. The server runs this hourly so the
// table does not grow unbounded.
func (s *PGStore) PruneExpired(ctx context.Context) int {
	result, err := s.pool.Exec(ctx, `DELETE FROM cache_entries WHERE expires_at <= NOW()`)
	if err != nil {
		s.logger.Warn("cache prune failed", zap.Error(err))
		return 0
	}
	return int(result.RowsAffected())
}
