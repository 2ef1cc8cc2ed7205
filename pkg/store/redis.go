package store

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/siteworks/drawalign/pkg/alignment"
	"github.com/siteworks/drawalign/pkg/cache"
)

// RedisOptions configures NewRedisStore.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string // prepended to every key, e.g. "drawalign:"
}

// RedisStore keeps each record in a hash at <prefix>alignment:<base>:<candidate>
// and the candidates of a base in a set at <prefix>alignments:<base>.
//
// Drawing IDs never contain ':' so the key layout is unambiguous.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects and pings the server.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	s := &RedisStore{client: client, prefix: opts.Prefix}
	if err := s.retry(ctx, func() error { return client.Ping(ctx).Err() }); err != nil {
		client.Close()
		return nil, unavailable("redis", fmt.Errorf("ping %s: %w", opts.Addr, err))
	}
	return s, nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) recordKey(base, candidate string) string {
	return s.prefix + "alignment:" + base + ":" + candidate
}

func (s *RedisStore) indexKey(base string) string {
	return s.prefix + "alignments:" + base
}

// retry runs fn with backoff, retrying anything except redis.Nil.
func (s *RedisStore) retry(ctx context.Context, fn func() error) error {
	return cache.RetryWithBackoff(ctx, func() error {
		err := fn()
		if err == nil || stderrors.Is(err, redis.Nil) {
			return err
		}
		return cache.Retryable(err)
	})
}

func (s *RedisStore) Save(ctx context.Context, rec Record) (Record, error) {
	if err := validatePair(rec.BaseDrawingID, rec.CandidateDrawingID); err != nil {
		return Record{}, err
	}
	key := s.recordKey(rec.BaseDrawingID, rec.CandidateDrawingID)

	var existing *Record
	var fields map[string]string
	if err := s.retry(ctx, func() (err error) {
		fields, err = s.client.HGetAll(ctx, key).Result()
		return err
	}); err != nil {
		return Record{}, unavailable("redis", err)
	}
	if len(fields) > 0 {
		if old, err := decodeHash(fields); err == nil {
			existing = &old
		}
	}

	out, err := prepare(rec, existing, time.Now().UTC())
	if err != nil {
		return Record{}, err
	}
	values, err := encodeHash(out)
	if err != nil {
		return Record{}, err
	}

	err = s.retry(ctx, func() error {
		_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.HSet(ctx, key, values)
			pipe.SAdd(ctx, s.indexKey(out.BaseDrawingID), out.CandidateDrawingID)
			return nil
		})
		return err
	})
	if err != nil {
		return Record{}, unavailable("redis", err)
	}
	return out, nil
}

func (s *RedisStore) Get(ctx context.Context, base, candidate string) (Record, error) {
	if err := validatePair(base, candidate); err != nil {
		return Record{}, err
	}
	var fields map[string]string
	if err := s.retry(ctx, func() (err error) {
		fields, err = s.client.HGetAll(ctx, s.recordKey(base, candidate)).Result()
		return err
	}); err != nil {
		return Record{}, unavailable("redis", err)
	}
	if len(fields) == 0 {
		return Record{}, notFound(base, candidate)
	}
	rec, err := decodeHash(fields)
	if err != nil {
		return Record{}, unavailable("redis", err)
	}
	return rec, nil
}

func (s *RedisStore) Delete(ctx context.Context, base, candidate string) (bool, error) {
	if err := validatePair(base, candidate); err != nil {
		return false, err
	}
	var del *redis.IntCmd
	err := s.retry(ctx, func() error {
		_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			del = pipe.Del(ctx, s.recordKey(base, candidate))
			pipe.SRem(ctx, s.indexKey(base), candidate)
			return nil
		})
		return err
	})
	if err != nil {
		return false, unavailable("redis", err)
	}
	return del.Val() > 0, nil
}

func (s *RedisStore) List(ctx context.Context, base string) ([]Record, error) {
	if err := validateBase(base); err != nil {
		return nil, err
	}
	var candidates []string
	if err := s.retry(ctx, func() (err error) {
		candidates, err = s.client.SMembers(ctx, s.indexKey(base)).Result()
		return err
	}); err != nil {
		return nil, unavailable("redis", err)
	}
	sort.Strings(candidates)

	var cmds []*redis.MapStringStringCmd
	err := s.retry(ctx, func() error {
		cmds = cmds[:0]
		_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, c := range candidates {
				cmds = append(cmds, pipe.HGetAll(ctx, s.recordKey(base, c)))
			}
			return nil
		})
		return err
	})
	if err != nil {
		return nil, unavailable("redis", err)
	}

	out := make([]Record, 0, len(cmds))
	for _, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		rec, err := decodeHash(fields)
		if err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error { return s.client.Close() }

// encodeHash flattens rec into hash fields.
func encodeHash(rec Record) (map[string]any, error) {
	m := map[string]any{
		"id":            rec.ID,
		"base":          rec.BaseDrawingID,
		"candidate":     rec.CandidateDrawingID,
		"scale":         formatFloat(rec.Scale),
		"rotation":      formatFloat(rec.Rotation),
		"translate_x":   formatFloat(rec.TranslateX),
		"translate_y":   formatFloat(rec.TranslateY),
		"css_transform": rec.CSSTransform,
		"method":        string(rec.Method),
		"created_at":    rec.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":    rec.UpdatedAt.Format(time.RFC3339Nano),
	}
	if rec.Points != nil {
		data, err := json.Marshal(rec.Points)
		if err != nil {
			return nil, fmt.Errorf("marshal alignment points: %w", err)
		}
		m["points"] = string(data)
	}
	return m, nil
}

// decodeHash is the inverse of encodeHash.
func decodeHash(m map[string]string) (Record, error) {
	rec := Record{
		ID:                 m["id"],
		BaseDrawingID:      m["base"],
		CandidateDrawingID: m["candidate"],
		CSSTransform:       m["css_transform"],
	}
	rec.Method = alignment.Method(m["method"])

	var err error
	floats := []struct {
		field string
		dst   *float64
	}{
		{"scale", &rec.Scale},
		{"rotation", &rec.Rotation},
		{"translate_x", &rec.TranslateX},
		{"translate_y", &rec.TranslateY},
	}
	for _, f := range floats {
		if *f.dst, err = strconv.ParseFloat(m[f.field], 64); err != nil {
			return Record{}, fmt.Errorf("field %s: %w", f.field, err)
		}
	}
	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, m["created_at"]); err != nil {
		return Record{}, fmt.Errorf("field created_at: %w", err)
	}
	if rec.UpdatedAt, err = time.Parse(time.RFC3339Nano, m["updated_at"]); err != nil {
		return Record{}, fmt.Errorf("field updated_at: %w", err)
	}
	if raw, ok := m["points"]; ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &rec.Points); err != nil {
			return Record{}, fmt.Errorf("field points: %w", err)
		}
	}
	return rec, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

var _ Store = (*RedisStore)(nil)
