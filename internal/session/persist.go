package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"flyer-kart/internal/config"
	"flyer-kart/internal/model"
)

// Snapshot is the persisted session: the cached user and provider tokens.
// It is a cache, always re-validated against the provider on hydrate.
type Snapshot struct {
	User    *model.AuthUser `json:"user"`
	Token   Tokens          `json:"token"`
	SavedAt time.Time       `json:"savedAt"`
}

// Persister stores session snapshots by key.
type Persister interface {
	// Load returns nil, nil when nothing is stored under key.
	Load(ctx context.Context, key string) (*Snapshot, error)
	Save(ctx context.Context, key string, snap *Snapshot) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// NewPersister builds the persister selected by cfg.Store.
func NewPersister(ctx context.Context, cfg config.SessionConfig, logger zerolog.Logger) (Persister, error) {
	switch cfg.Store {
	case "memory":
		return NewMemoryPersister(cfg.TTL()), nil
	case "file":
		return NewFilePersister(cfg.Dir, cfg.TTL(), logger)
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		return NewRedisPersister(client, cfg.RedisPrefix, cfg.TTL(), logger), nil
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Store)
	}
}

// memoryPersister keeps snapshots in process memory.
type memoryPersister struct {
	mu    sync.RWMutex
	ttl   time.Duration
	items map[string]Snapshot
}

// NewMemoryPersister creates an in-process persister.
func NewMemoryPersister(ttl time.Duration) Persister {
	return &memoryPersister{ttl: ttl, items: make(map[string]Snapshot)}
}

func (p *memoryPersister) Load(ctx context.Context, key string) (*Snapshot, error) {
	p.mu.RLock()
	snap, ok := p.items[key]
	p.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	if expired(&snap, p.ttl) {
		_ = p.Delete(ctx, key)
		return nil, nil
	}
	return &snap, nil
}

func (p *memoryPersister) Save(ctx context.Context, key string, snap *Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items[key] = *snap
	return nil
}

func (p *memoryPersister) Delete(ctx context.Context, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.items, key)
	return nil
}

func (p *memoryPersister) Close() error { return nil }

func expired(snap *Snapshot, ttl time.Duration) bool {
	return ttl > 0 && !snap.SavedAt.IsZero() && time.Since(snap.SavedAt) > ttl
}

// filePersister writes one JSON file per key.
type filePersister struct {
	dir    string
	ttl    time.Duration
	logger zerolog.Logger
}

// NewFilePersister creates dir if needed and stores snapshots in it.
func NewFilePersister(dir string, ttl time.Duration, logger zerolog.Logger) (Persister, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create session directory %s: %w", dir, err)
	}
	return &filePersister{
		dir:    dir,
		ttl:    ttl,
		logger: logger.With().Str("component", "file-session-store").Logger(),
	}, nil
}

func (p *filePersister) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid session key %q", key)
	}
	return filepath.Join(p.dir, key+".json"), nil
}

func (p *filePersister) Load(ctx context.Context, key string) (*Snapshot, error) {
	path, err := p.path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session %s: %w", key, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		p.logger.Warn().Err(err).Str("key", key).Msg("discarding corrupt session file")
		_ = os.Remove(path)
		return nil, nil
	}

	if expired(&snap, p.ttl) {
		_ = os.Remove(path)
		return nil, nil
	}
	return &snap, nil
}

func (p *filePersister) Save(ctx context.Context, key string, snap *Snapshot) error {
	path, err := p.path(key)
	if err != nil {
		return err
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	tmp, err := os.CreateTemp(p.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create session file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to store session file: %w", err)
	}
	return nil
}

func (p *filePersister) Delete(ctx context.Context, key string) error {
	path, err := p.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete session %s: %w", key, err)
	}
	return nil
}

func (p *filePersister) Close() error { return nil }

// redisPersister stores snapshots as JSON strings with a TTL.
type redisPersister struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisPersister stores snapshots under prefix+key. Close closes client.
func NewRedisPersister(client *redis.Client, prefix string, ttl time.Duration, logger zerolog.Logger) Persister {
	return &redisPersister{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger.With().Str("component", "redis-session-store").Logger(),
	}
}

func (p *redisPersister) Load(ctx context.Context, key string) (*Snapshot, error) {
	data, err := p.client.Get(ctx, p.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session from redis: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		p.logger.Warn().Err(err).Str("key", key).Msg("discarding corrupt session")
		_ = p.client.Del(ctx, p.prefix+key).Err()
		return nil, nil
	}
	return &snap, nil
}

func (p *redisPersister) Save(ctx context.Context, key string, snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := p.client.Set(ctx, p.prefix+key, data, p.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session in redis: %w", err)
	}
	return nil
}

func (p *redisPersister) Delete(ctx context.Context, key string) error {
	if err := p.client.Del(ctx, p.prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete session from redis: %w", err)
	}
	return nil
}

func (p *redisPersister) Close() error {
	return p.client.Close()
}
