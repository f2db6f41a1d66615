package match

import (
	"context"
	"fmt"
	"os"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

const snapshotRedisKey = "phrasefit:snapshot"

// Persister saves and loads full store snapshots. The store stays
// authoritative in memory; a backend only has to survive restarts.
type Persister interface {
	Save(*Snapshot) error
	Load() (*Snapshot, error)
	Close() error
}

// FileStore persists snapshots as a JSON file on disk.
type FileStore struct {
	filePath string
}

func NewFileStore(filePath string) *FileStore {
	return &FileStore{filePath: filePath}
}

func (fs *FileStore) Save(snap *Snapshot) error {
	data, err := sonic.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return os.WriteFile(fs.filePath, data, 0o644)
}

func (fs *FileStore) Load() (*Snapshot, error) {
	data, err := os.ReadFile(fs.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &Snapshot{}, nil
		}
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}
	var snap Snapshot
	if err := sonic.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot file: %w", err)
	}
	return &snap, nil
}

func (fs *FileStore) Close() error { return nil }

// RedisStore persists snapshots under a single Redis key.
type RedisStore struct {
	client *redis.Client
	ctx    context.Context
	key    string
}

func NewRedisStore(url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	ctx := context.Background()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisStore{
		client: client,
		ctx:    ctx,
		key:    snapshotRedisKey,
	}, nil
}

func (rs *RedisStore) Save(snap *Snapshot) error {
	data, err := sonic.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return rs.client.Set(rs.ctx, rs.key, data, 0).Err()
}

func (rs *RedisStore) Load() (*Snapshot, error) {
	val, err := rs.client.Get(rs.ctx, rs.key).Result()
	if err != nil {
		if err == redis.Nil {
			return &Snapshot{}, nil
		}
		return nil, fmt.Errorf("failed to load snapshot from redis: %w", err)
	}
	var snap Snapshot
	if err := sonic.Unmarshal([]byte(val), &snap); err != nil {
		return nil, fmt.Errorf("failed to decode redis snapshot: %w", err)
	}
	return &snap, nil
}

func (rs *RedisStore) Close() error {
	return rs.client.Close()
}
