// Package tokenstore persists the session credential under a single
// well-known key. Presence of the key means "previously authenticated";
// absence means anonymous. The session controller is the only writer, and
// the stored value is read exactly once, at process start, to seed it.
//
// This is a leaf package: it knows nothing about HTTP or sessions.
package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
)

// DefaultKey is the storage key the raw token is persisted under.
const DefaultKey = "token"

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Sentinel errors.
var (
	ErrEmptyToken     = errors.New("tokenstore: refusing to save an empty token")
	ErrUnknownBackend = errors.New("tokenstore: unknown backend")
	ErrInvalidKey     = errors.New("tokenstore: invalid key")
)

// Store is a key-value slot holding the current token, or nothing.
// Load returns ("", nil) when no token is stored. Remove is idempotent.
type Store interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Remove(ctx context.Context) error
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend   string // file, sqlite, badger, redis, memory
	Dir       string // data directory for file, sqlite, and badger
	Key       string // storage key; DefaultKey when empty
	RedisAddr string
	RedisDB   int
}

// Open constructs the backend named by opts.Backend.
func Open(ctx context.Context, opts Options, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	key := opts.Key
	if key == "" {
		key = DefaultKey
	}

	if err := validateKey(key); err != nil {
		return nil, err
	}

	logger.Debug("opening token store",
		slog.String("backend", opts.Backend),
		slog.String("key", key),
	)

	switch opts.Backend {
	case BackendFile, "":
		return NewFileStore(filepath.Join(opts.Dir, key)), nil
	case BackendSQLite:
		return OpenSQLite(ctx, filepath.Join(opts.Dir, sqliteFileName), key, logger)
	case BackendBadger:
		return OpenBadger(filepath.Join(opts.Dir, badgerDirName), key)
	case BackendRedis:
		return NewRedisStore(opts.RedisAddr, opts.RedisDB, key), nil
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}

// validateKey rejects keys that would escape the data directory when used
// as a file name.
func validateKey(key string) error {
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	return nil
}
