package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/atinyakov/IdentityGrid/internal/db"
	"github.com/atinyakov/IdentityGrid/internal/repository"
)

// Backend names a KeyValue implementation.
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendFile     Backend = "file"
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
	BackendBadger   Backend = "badger"
	BackendRedis    Backend = "redis"
)

// Config selects and configures the persistence backend.
type Config struct {
	// Backend is one of memory, file, sqlite, postgres, badger or redis.
	Backend Backend `json:"backend" yaml:"backend"`
	// Path is the directory (file, badger) or database file (sqlite).
	Path string `json:"path" yaml:"path"`
	// DSN is the PostgreSQL connection string.
	DSN string `json:"dsn" yaml:"dsn"`
	// RedisAddr is host:port of the Redis server.
	RedisAddr     string `json:"redis_addr" yaml:"redis_addr"`
	RedisPassword string `json:"redis_password" yaml:"redis_password"`
	RedisDB       int    `json:"redis_db" yaml:"redis_db"`
	// Codec is json (default) or msgpack.
	Codec string `json:"codec" yaml:"codec"`
}

// Open builds the KeyValue backend and codec described by cfg.
func Open(ctx context.Context, cfg Config, log *zap.Logger) (KeyValue, Codec, error) {
	codec, err := CodecByName(cfg.Codec)
	if err != nil {
		return nil, nil, err
	}

	var kv KeyValue
	switch cfg.Backend {
	case BackendMemory, "":
		kv = NewMemoryStore()
	case BackendFile:
		kv, err = NewFileStore(orDefault(cfg.Path, "data"))
	case BackendSQLite:
		conn, openErr := db.InitSQLite(orDefault(cfg.Path, "identity-grid.db"))
		if openErr != nil {
			return nil, nil, openErr
		}
		kv = repository.NewSQLiteKeyValueRepository(conn)
	case BackendPostgres:
		if cfg.DSN == "" {
			return nil, nil, fmt.Errorf("postgres backend requires a DSN")
		}
		conn, openErr := db.InitPostgres(cfg.DSN)
		if openErr != nil {
			return nil, nil, openErr
		}
		kv = repository.NewPostgresKeyValueRepository(conn)
	case BackendBadger:
		kv, err = NewBadgerStore(cfg.Path)
	case BackendRedis:
		kv, err = NewRedisStore(ctx, orDefault(cfg.RedisAddr, "localhost:6379"), cfg.RedisPassword, cfg.RedisDB)
	default:
		return nil, nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, nil, err
	}

	log.Info("opened storage backend",
		zap.String("backend", string(cfg.Backend)),
		zap.String("codec", codec.Name()),
	)
	return kv, codec, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
