package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"modelpicker/internal/core"
	"modelpicker/internal/util"

	"github.com/redis/go-redis/v9"
)

// FileStorage persists lookup statistics as a JSON file.
type FileStorage struct {
	filePath string
}

func NewFileStorage(filePath string) *FileStorage {
	if filePath == "" {
		filePath = core.StatsFilePath
	}
	return &FileStorage{filePath: filePath}
}

// SaveStats writes through a temporary file so readers never see a partial
// document.
func (fs *FileStorage) SaveStats(stats *core.LookupStats) error {
	data, err := util.MarshalJSON(stats)
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(fs.filePath), filepath.Base(fs.filePath)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, core.FilePermissionReadWrite); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, fs.filePath)
}

func (fs *FileStorage) LoadStats() (*core.LookupStats, error) {
	data, err := os.ReadFile(fs.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return core.EmptyLookupStats(), nil
		}
		return nil, err
	}

	var stats core.LookupStats
	if err := util.UnmarshalJSON(data, &stats); err != nil {
		return nil, fmt.Errorf("decode %s: %w", fs.filePath, err)
	}
	stats.Normalize()
	return &stats, nil
}

func (fs *FileStorage) Close() error {
	return nil
}

// RedisStorage persists lookup statistics under a single Redis key.
type RedisStorage struct {
	client *redis.Client
	key    string
}

// RedisStorageConfig Redis storage config
type RedisStorageConfig struct {
	URL string
	Key string
}

func NewRedisStorage(ctx context.Context, config RedisStorageConfig) (*RedisStorage, error) {
	opts, err := redis.ParseURL(config.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Join(fmt.Errorf("ping redis: %w", err), client.Close())
	}

	key := config.Key
	if key == "" {
		key = core.StatsRedisKey
	}
	return &RedisStorage{client: client, key: key}, nil
}

func (rs *RedisStorage) SaveStats(stats *core.LookupStats) error {
	data, err := util.MarshalJSON(stats)
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}
	return rs.client.Set(context.Background(), rs.key, data, 0).Err()
}

func (rs *RedisStorage) LoadStats() (*core.LookupStats, error) {
	val, err := rs.client.Get(context.Background(), rs.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return core.EmptyLookupStats(), nil
		}
		return nil, err
	}

	var stats core.LookupStats
	if err := util.UnmarshalJSON(val, &stats); err != nil {
		return nil, fmt.Errorf("decode redis key %s: %w", rs.key, err)
	}
	stats.Normalize()
	return &stats, nil
}

func (rs *RedisStorage) Close() error {
	return rs.client.Close()
}

// InitStorage picks Redis when REDIS_URL is set and reachable, otherwise the
// STATS_FILE JSON file.
func InitStorage(ctx context.Context, logger core.Logger) core.StorageInterface {
	if logger == nil {
		logger = &core.NopLogger{}
	}
	statsFile := util.GetEnvWithDefault("STATS_FILE", core.StatsFilePath)

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		redisStorage, err := NewRedisStorage(ctx, RedisStorageConfig{URL: redisURL, Key: core.StatsRedisKey})
		if err != nil {
			logger.Warn("Failed to initialize Redis storage: %v, falling back to file storage %s", err, statsFile)
			return NewFileStorage(statsFile)
		}
		logger.Info("Using Redis storage (key %s)", core.StatsRedisKey)
		return redisStorage
	}

	logger.Info("Using file storage %s", statsFile)
	return NewFileStorage(statsFile)
}
