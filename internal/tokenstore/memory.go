package tokenstore

import (
	"context"
	"sync"
)

// MemoryStore keeps the token in process memory. Nothing survives a restart.
type MemoryStore struct {
	mu    sync.Mutex
	token string
	set   bool

	saves   int
	removes int
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// NewMemoryStoreWith returns an in-memory store pre-seeded with token.
func NewMemoryStoreWith(token string) *MemoryStore {
	return &MemoryStore{token: token, set: token != ""}
}

func (s *MemoryStore) Load(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.set {
		return "", nil
	}

	return s.token, nil
}

func (s *MemoryStore) Save(_ context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	s.set = true
	s.saves++

	return nil
}

func (s *MemoryStore) Remove(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.set = false
	s.removes++

	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// Present reports whether a token is currently stored.
func (s *MemoryStore) Present() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.set
}

// Writes returns how many Save and Remove calls the store has seen.
func (s *MemoryStore) Writes() (saves, removes int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saves, s.removes
}
