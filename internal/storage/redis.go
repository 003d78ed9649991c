package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"

	"github.com/tavernkeep/tavern-engine/pkg/tavern"
	"github.com/tavernkeep/tavern-engine/pkg/world"
)

// Sessions idle out after a day; every save refreshes the TTL.
const snapshotTTL = 24 * time.Hour

// RedisStorage implements Storage using Redis for session snapshots
// and the filesystem for tavern content.
type RedisStorage struct {
	client  *redis.Client
	logger  *slog.Logger
	dataDir string
}

var _ Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a Redis storage instance. redisURL is a
// redis:// URL.
func NewRedisStorage(redisURL string, dataDir string, logger *slog.Logger) (*RedisStorage, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if dataDir == "" {
		dataDir = "./data"
	}
	return &RedisStorage{
		client:  redis.NewClient(opts),
		logger:  logger,
		dataDir: dataDir,
	}, nil
}

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available during startup.
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

// Session snapshots (Redis-backed)

func snapshotKey(id uuid.UUID) string {
	return "session:" + id.String()
}

func (r *RedisStorage) SaveSnapshot(ctx context.Context, id uuid.UUID, snap *world.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		r.logger.Error("Failed to marshal snapshot", "uuid", id, "error", err)
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := r.client.Set(ctx, snapshotKey(id), string(data), snapshotTTL).Err(); err != nil {
		r.logger.Error("Failed to save snapshot", "uuid", id, "error", err)
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

func (r *RedisStorage) LoadSnapshot(ctx context.Context, id uuid.UUID) (*world.Snapshot, error) {
	data, err := r.client.Get(ctx, snapshotKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Warn("Snapshot not found", "uuid", id)
			return nil, nil
		}
		r.logger.Error("Failed to load snapshot", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var snap world.Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		r.logger.Error("Failed to unmarshal snapshot", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

func (r *RedisStorage) DeleteSnapshot(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Del(ctx, snapshotKey(id)).Err(); err != nil {
		r.logger.Error("Failed to delete snapshot", "uuid", id, "error", err)
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

// Tavern content (filesystem-backed)

func (r *RedisStorage) GetTavern(ctx context.Context, filename string) (*tavern.Tavern, error) {
	return loadTavernFile(filepath.Join(r.dataDir, "taverns", filename))
}

func (r *RedisStorage) ListTaverns(ctx context.Context) (map[string]string, error) {
	return listTavernFiles(r.dataDir, r.logger)
}

// loadTavernFile reads and validates one tavern content bundle.
func loadTavernFile(path string) (*tavern.Tavern, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{Filename: filepath.Base(path)}
		}
		return nil, fmt.Errorf("failed to read tavern file: %w", err)
	}

	var tv tavern.Tavern
	if err := yaml.Unmarshal(data, &tv); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tavern: %w", err)
	}
	if err := tv.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tavern content %s: %w", filepath.Base(path), err)
	}
	return &tv, nil
}

func listTavernFiles(dataDir string, logger *slog.Logger) (map[string]string, error) {
	tavernsDir := filepath.Join(dataDir, "taverns")
	taverns := make(map[string]string)

	err := filepath.WalkDir(tavernsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if ext := filepath.Ext(path); ext != ".yaml" && ext != ".yml" {
			return nil
		}

		tv, err := loadTavernFile(path)
		if err != nil {
			logger.Warn("Skipping unreadable tavern file", "path", path, "error", err)
			return nil
		}

		taverns[tv.Name] = filepath.Base(path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list taverns: %w", err)
	}

	return taverns, nil
}
