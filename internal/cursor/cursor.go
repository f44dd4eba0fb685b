// Package cursor implements the opaque pagination cursor store (spec
// component C6): single and multi (synchronized) cursors with a sliding
// 1-hour TTL, backed by Redis.
package cursor

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// TTL is the fixed lifetime of every stored cursor entry, sliding on
// store but not on read (spec §4.6).
const TTL = time.Hour

// connectTimeout bounds how long a single cursor operation waits to
// acquire a Redis connection; a timeout degrades to None rather than
// propagating an error (spec §4.6, §7 CursorCacheError).
const connectTimeout = 2 * time.Second

// numericComponent is the one LEK field name the store treats as a
// decimal number rather than an opaque string (spec §4.6).
const numericComponent = "GSI6SK"

// LastEvaluatedKey is a pagination continuation token: a small map of
// component name to value. On the wire (Redis hash fields) every value
// is a string; the one exception the store must distinguish by
// component name alone is GSI6SK, whose value is always a decimal
// integer (spec §4.6).
type LastEvaluatedKey map[string]string

// sanitize drops any entry whose value doesn't match its component's
// fixed type (spec §4.6: only numericComponent is numeric, everything
// else is an arbitrary string) so a corrupted or hand-crafted Redis
// hash can't masquerade as a valid numeric component at load time.
func sanitize(lek LastEvaluatedKey) LastEvaluatedKey {
	for k, v := range lek {
		if k == numericComponent {
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				delete(lek, k)
			}
		}
	}
	return lek
}

// Store is the cursor capability backed by Redis.
type Store struct {
	client *redis.Client
	log    *zap.Logger
}

func New(redisURL string, log *zap.Logger) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &Store{client: redis.NewClient(opts), log: log}, nil
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, connectTimeout)
}

// StoreSingle persists a LEK under a fresh opaque id, sliding TTL on
// write. Returns "" if lek is nil/empty or the store is unreachable
// (spec §4.6: store_* degrades to None, never errors the caller).
func (s *Store) StoreSingle(ctx context.Context, lek LastEvaluatedKey) string {
	if len(lek) == 0 {
		return ""
	}

	cctx, cancel := s.withTimeout(ctx)
	defer cancel()

	id := uuid.New().String()
	pipe := s.client.Pipeline()
	for k, v := range lek {
		pipe.HSet(cctx, id, k, v)
	}
	pipe.Expire(cctx, id, TTL)
	if _, err := pipe.Exec(cctx); err != nil {
		s.log.Debug("cursor store unreachable, degrading to no cursor", zap.Error(err))
		return ""
	}
	return id
}

// LoadSingle reads a previously stored LEK. Returns (nil, false) if the
// id is unknown, expired, or the store is unreachable — callers resume
// from the start in every such case (spec §4.6).
func (s *Store) LoadSingle(ctx context.Context, id string) (LastEvaluatedKey, bool) {
	if id == "" {
		return nil, false
	}

	cctx, cancel := s.withTimeout(ctx)
	defer cancel()

	raw, err := s.client.HGetAll(cctx, id).Result()
	if err != nil || len(raw) == 0 {
		return nil, false
	}
	return sanitize(LastEvaluatedKey(raw)), true
}

// StoreMulti issues child cursors for each named LEK, then writes a
// parent hash mapping name -> child cursor id. A partial failure
// midway leaves dangling child cursors that expire naturally via TTL
// (spec §4.6: atomicity is not required).
func (s *Store) StoreMulti(ctx context.Context, leks map[string]LastEvaluatedKey) string {
	children := make(map[string]string, len(leks))
	for name, lek := range leks {
		if id := s.StoreSingle(ctx, lek); id != "" {
			children[name] = id
		}
	}
	if len(children) == 0 {
		return ""
	}

	cctx, cancel := s.withTimeout(ctx)
	defer cancel()

	id := uuid.New().String()
	pipe := s.client.Pipeline()
	for name, childID := range children {
		pipe.HSet(cctx, id, name, childID)
	}
	pipe.Expire(cctx, id, TTL)
	if _, err := pipe.Exec(cctx); err != nil {
		s.log.Debug("cursor store unreachable, degrading to no cursor", zap.Error(err))
		return ""
	}
	return id
}

// LoadMulti resolves a parent cursor into its named child LEKs. Missing
// or expired entries (including the parent itself) yield an empty map,
// not an error.
func (s *Store) LoadMulti(ctx context.Context, id string) map[string]LastEvaluatedKey {
	out := make(map[string]LastEvaluatedKey)
	if id == "" {
		return out
	}

	cctx, cancel := s.withTimeout(ctx)
	defer cancel()

	children, err := s.client.HGetAll(cctx, id).Result()
	if err != nil || len(children) == 0 {
		return out
	}

	for name, childID := range children {
		if lek, ok := s.LoadSingle(ctx, childID); ok {
			out[name] = lek
		}
	}
	return out
}
