package tokenstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

const badgerDirName = "badger"

// BadgerStore keeps the token in an embedded Badger key-value database.
type BadgerStore struct {
	db  *badger.DB
	key []byte
}

// OpenBadger opens the database in dir. An empty dir opens an in-memory
// database, which is what tests use.
func OpenBadger(dir, key string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("tokenstore: open badger: %w", err)
	}

	return &BadgerStore{db: db, key: []byte(key)}, nil
}

func (s *BadgerStore) Load(_ context.Context) (string, error) {
	var token []byte

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}

		if err != nil {
			return err
		}

		token, err = item.ValueCopy(nil)

		return err
	})
	if err != nil {
		return "", fmt.Errorf("tokenstore: loading %q: %w", s.key, err)
	}

	return string(token), nil
}

func (s *BadgerStore) Save(_ context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.key, []byte(token))
	})
	if err != nil {
		return fmt.Errorf("tokenstore: saving %q: %w", s.key, err)
	}

	return nil
}

func (s *BadgerStore) Remove(_ context.Context) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(s.key)
	})
	if err != nil {
		return fmt.Errorf("tokenstore: removing %q: %w", s.key, err)
	}

	return nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
