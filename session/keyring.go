package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

// ErrKeyNotFound is returned by [Keyring.Get] when a key has never been set
// or has been deleted. Absence of a key is an expected, logged-out state.
var ErrKeyNotFound = errors.New("keyring: key not found")

// ErrStorageUnavailable wraps durable-layer I/O failures.
var ErrStorageUnavailable = errors.New("keyring: storage unavailable")

// Keyring is the durable key-value store behind the [Store]. Implementations
// must be safe for concurrent use.
type Keyring interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// MemoryKeyring is a process-local [Keyring]. It is the default backend and
// the test double for the durable layer.
type MemoryKeyring struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryKeyring creates an empty in-memory keyring.
func NewMemoryKeyring() *MemoryKeyring {
	return &MemoryKeyring{values: make(map[string]string)}
}

// Get implements [Keyring].
func (k *MemoryKeyring) Get(_ context.Context, key string) (string, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	v, ok := k.values[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return v, nil
}

// Set implements [Keyring].
func (k *MemoryKeyring) Set(_ context.Context, key, value string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.values[key] = value
	return nil
}

// Delete implements [Keyring]. Deleting an absent key is a no-op.
func (k *MemoryKeyring) Delete(_ context.Context, key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	delete(k.values, key)
	return nil
}

// FileKeyring persists keys as a single JSON object in one file, created with
// 0600 permissions. Suited to CLI and desktop deployments of the client.
type FileKeyring struct {
	mu   sync.Mutex
	path string
}

// NewFileKeyring creates a file-backed keyring at path. The file is created
// lazily on the first Set.
func NewFileKeyring(path string) *FileKeyring {
	return &FileKeyring{path: path}
}

// Get implements [Keyring].
func (k *FileKeyring) Get(_ context.Context, key string) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	values, err := k.load()
	if err != nil {
		return "", err
	}
	v, ok := values[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return v, nil
}

// Set implements [Keyring].
func (k *FileKeyring) Set(_ context.Context, key, value string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	values, err := k.load()
	if err != nil && !errors.Is(err, ErrKeyNotFound) {
		return err
	}
	if values == nil {
		values = make(map[string]string)
	}
	values[key] = value
	return k.save(values)
}

// Delete implements [Keyring]. Deleting an absent key is a no-op.
func (k *FileKeyring) Delete(_ context.Context, key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	values, err := k.load()
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil
		}
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return k.save(values)
}

// load returns the stored map, ErrKeyNotFound when the file does not exist
// yet, or ErrStorageUnavailable on I/O and decode failures. A corrupt file is
// a storage failure here; the Store degrades it to an empty session.
func (k *FileKeyring) load() (map[string]string, error) {
	data, err := os.ReadFile(k.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	values := make(map[string]string)
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return values, nil
}

func (k *FileKeyring) save(values map[string]string) error {
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if err := os.WriteFile(k.path, data, 0o600); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}
