package runs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "viralcut:run:"

// RedisStore keeps run records as JSON strings that expire after ttl.
type RedisStore struct {
	rdb *goredis.Client
	ttl time.Duration
	now func() time.Time
}

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NewRedisStore connects to Redis and pings it before returning.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("missing redis addr")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisStoreFromClient(rdb, opts.TTL), nil
}

func NewRedisStoreFromClient(rdb *goredis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl, now: time.Now}
}

func (s *RedisStore) Close() error { return s.rdb.Close() }

func (s *RedisStore) Create(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		return fmt.Errorf("run id is required")
	}
	now := s.now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	ok, err := s.rdb.SetNX(ctx, keyPrefix+rec.ID, raw, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("redis create run: %w", err)
	}
	if !ok {
		return fmt.Errorf("run %q already exists", rec.ID)
	}
	return nil
}

// Update runs fn inside a WATCH transaction so concurrent writers never lose a transition.
func (s *RedisStore) Update(ctx context.Context, id string, fn func(*Record)) error {
	key := keyPrefix + id
	txf := func(tx *goredis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, goredis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return fmt.Errorf("decode run %q: %w", id, err)
		}
		fn(&rec)
		rec.ID = id
		rec.UpdatedAt = s.now().UTC()
		out, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(p goredis.Pipeliner) error {
			p.Set(ctx, key, out, s.ttl)
			return nil
		})
		return err
	}

	for range 3 {
		err := s.rdb.Watch(ctx, txf, key)
		if errors.Is(err, goredis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("redis update run %q: too much contention", id)
}

func (s *RedisStore) Get(ctx context.Context, id string) (Record, error) {
	raw, err := s.rdb.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, goredis.Nil) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("redis get run: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Record{}, fmt.Errorf("decode run %q: %w", id, err)
	}
	return rec, nil
}
