package blob

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

// Memory implements Store in process memory. Tests use it in place of a real
// bucket; the zero value is not usable, construct with NewMemory.
type Memory struct {
	mu      sync.Mutex
	objects map[string]memObject
	// Puts counts actual uploads, letting tests assert idempotency.
	Puts int
}

type memObject struct {
	hash string
	data []byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{objects: make(map[string]memObject)}
}

// Stat reports the recorded hash for key, or ok=false when absent.
func (m *Memory) Stat(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[key]
	if !ok {
		return "", false, nil
	}
	return obj.hash, true, nil
}

// Put stores the file bytes under key.
func (m *Memory) Put(_ context.Context, key, localPath, hash string, progress ProgressFunc) (string, error) {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return "", fmt.Errorf("blob: read %s: %w", localPath, err)
	}
	m.mu.Lock()
	m.objects[key] = memObject{hash: hash, data: data}
	m.Puts++
	m.mu.Unlock()
	if progress != nil {
		progress(int64(len(data)), int64(len(data)))
	}
	return key, nil
}

// List returns every object under prefix in key order.
func (m *Memory) List(_ context.Context, prefix string) ([]Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Object
	for k, obj := range m.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, Object{Key: k, Hash: obj.hash})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Delete removes the object at key.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// Len returns the number of stored objects.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
