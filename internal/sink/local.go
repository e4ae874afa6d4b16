package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Local implements Sink on the local file system with atomic writes.
type Local struct {
	root string // absolute path to the output directory
}

// NewLocal creates a local sink rooted at the given directory, creating it
// when missing.
func NewLocal(root string) (*Local, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("sink: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("sink: create root: %w", err)
	}
	return &Local{root: abs}, nil
}

// safePath resolves a relative document path against the output root and
// rejects any result that escapes it.
func (l *Local) safePath(rel string) (string, error) {
	cleaned := filepath.Clean(strings.TrimPrefix(rel, "/"))
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("sink: absolute paths not allowed: %s", rel)
	}
	joined := filepath.Join(l.root, cleaned)
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("sink: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, l.root+string(os.PathSeparator)) && abs != l.root {
		return "", fmt.Errorf("sink: path escapes output root: %s", rel)
	}
	return abs, nil
}

// Publish atomically writes content: temp file, fsync, rename.
func (l *Local) Publish(_ context.Context, path string, content []byte) error {
	abs, err := l.safePath(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("sink: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".raido-tmp-*")
	if err != nil {
		return fmt.Errorf("sink: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("sink: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sink: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("sink: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("sink: rename: %w", err)
	}
	success = true
	return nil
}
