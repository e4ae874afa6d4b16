// Package assets resolves locally archived files to durable URLs, uploading
// them through a content-addressed deduplication cache when publishing.
package assets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/blob"
	"github.com/starford/raido/internal/checksum"
)

// ProgressFactory builds a per-upload progress callback. label describes the
// transfer, size is the total byte count. A nil factory disables reporting.
type ProgressFactory func(label string, size int64) blob.ProgressFunc

// StoreConfig configures a Store.
type StoreConfig struct {
	Blob          blob.Store
	Root          string // archive root; relative saved paths resolve against it
	KeyPrefix     string // bucket namespace, e.g. "course-assets"
	MaxImageWidth int    // wider images are downscaled before hashing; 0 disables
	Logger        *slog.Logger
	Progress      ProgressFactory
}

// Store is the deduplicating upload cache in front of the blob store. The
// dedup identity of a file is its content hash, not its key: renaming a
// source file must not create a second object.
type Store struct {
	blob      blob.Store
	root      string
	keyPrefix string
	maxWidth  int
	logger    *slog.Logger
	progress  ProgressFactory

	// hashes memoizes content hashes by absolute path. Fill is one-way:
	// computed once after any downscale, never recomputed.
	hashes map[string]string
}

// NewStore creates a Store.
func NewStore(cfg StoreConfig) *Store {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		blob:      cfg.Blob,
		root:      cfg.Root,
		keyPrefix: cfg.KeyPrefix,
		maxWidth:  cfg.MaxImageWidth,
		logger:    logger,
		progress:  cfg.Progress,
		hashes:    make(map[string]string),
	}
}

// Key returns the bucket key for a root-relative local path.
func (s *Store) Key(localRel string) string {
	return path.Join(s.keyPrefix, filepath.ToSlash(localRel))
}

// coursePrefix is the bucket namespace holding every object of one course.
func (s *Store) coursePrefix(courseSlug string) string {
	return path.Join(s.keyPrefix, courseSlug) + "/"
}

func (s *Store) abs(localPath string) string {
	if filepath.IsAbs(localPath) {
		return localPath
	}
	return filepath.Join(s.root, localPath)
}

// contentHash returns the memoized hash for the file, computing it on first
// use. Images are downscaled before the first computation so the cached hash
// always reflects the bytes that would be uploaded.
func (s *Store) contentHash(absPath string) (string, error) {
	if h, ok := s.hashes[absPath]; ok {
		return h, nil
	}
	if s.maxWidth > 0 && isImagePath(absPath) {
		if err := downscaleImage(absPath, s.maxWidth); err != nil {
			return "", err
		}
	}
	h, err := checksum.File(absPath)
	if err != nil {
		return "", err
	}
	s.hashes[absPath] = h
	return h, nil
}

// ExistsByHash reports whether content with the given hash is already stored
// for the course, returning the key it lives under. The expected key is
// checked first; on a miss the whole course namespace is scanned, because
// identical bytes may have been uploaded under a different path.
func (s *Store) ExistsByHash(ctx context.Context, courseSlug, key, hash string) (string, bool, error) {
	storedHash, ok, err := s.blob.Stat(ctx, key)
	if err != nil {
		return "", false, err
	}
	if ok && storedHash == hash {
		return key, true, nil
	}

	objects, err := s.blob.List(ctx, s.coursePrefix(courseSlug))
	if err != nil {
		return "", false, err
	}
	for _, obj := range objects {
		if obj.Hash == hash {
			return obj.Key, true, nil
		}
	}
	return "", false, nil
}

// Upload puts the local file into the blob store, deduplicating by content
// hash. It is idempotent: uploading byte-identical content twice returns the
// same key both times and creates no second object.
func (s *Store) Upload(ctx context.Context, courseSlug, localPath string) (string, error) {
	abs := s.abs(localPath)
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("assets: %w: %s", apperr.ErrPathNotFound, abs)
	}

	hash, err := s.contentHash(abs)
	if err != nil {
		return "", err
	}
	key := s.Key(s.rel(localPath))

	existing, ok, err := s.ExistsByHash(ctx, courseSlug, key, hash)
	if err != nil {
		return "", fmt.Errorf("assets: %v: %w", err, apperr.ErrUploadFailed)
	}
	if ok {
		if existing == key {
			s.logger.Info("asset already stored", slog.String("hash", hash), slog.String("key", existing))
		} else {
			s.logger.Info("asset already stored under another name",
				slog.String("hash", hash), slog.String("key", existing))
		}
		return existing, nil
	}

	s.logger.Info("uploading asset",
		slog.String("key", key),
		slog.String("hash", hash),
		slog.Int64("size", info.Size()))

	var progress blob.ProgressFunc
	if s.progress != nil {
		progress = s.progress(path.Base(key), info.Size())
	}
	storedKey, err := s.blob.Put(ctx, key, abs, hash, progress)
	if err != nil {
		return "", fmt.Errorf("assets: put %s: %v: %w", key, err, apperr.ErrUploadFailed)
	}
	return storedKey, nil
}

// rel normalises localPath to a root-relative path for key derivation.
func (s *Store) rel(localPath string) string {
	if !filepath.IsAbs(localPath) {
		return localPath
	}
	rel, err := filepath.Rel(s.root, localPath)
	if err != nil {
		return filepath.Base(localPath)
	}
	return rel
}

// PruneDuplicates deletes every object in the course namespace whose hash was
// already seen under an earlier key, and returns the number deleted.
func (s *Store) PruneDuplicates(ctx context.Context, courseSlug string) (int, error) {
	objects, err := s.blob.List(ctx, s.coursePrefix(courseSlug))
	if err != nil {
		return 0, err
	}
	seen := make(map[string]struct{}, len(objects))
	deleted := 0
	for _, obj := range objects {
		if _, dup := seen[obj.Hash]; dup {
			if err := s.blob.Delete(ctx, obj.Key); err != nil {
				return deleted, err
			}
			deleted++
			continue
		}
		seen[obj.Hash] = struct{}{}
	}
	s.logger.Info("pruned duplicate objects", slog.String("course", courseSlug), slog.Int("deleted", deleted))
	return deleted, nil
}

// PruneByExtension deletes every object in the course namespace whose key
// ends with ext (case-insensitive), and returns the number deleted.
func (s *Store) PruneByExtension(ctx context.Context, courseSlug, ext string) (int, error) {
	objects, err := s.blob.List(ctx, s.coursePrefix(courseSlug))
	if err != nil {
		return 0, err
	}
	suffix := strings.ToLower(ext)
	deleted := 0
	for _, obj := range objects {
		if strings.HasSuffix(strings.ToLower(obj.Key), suffix) {
			if err := s.blob.Delete(ctx, obj.Key); err != nil {
				return deleted, err
			}
			deleted++
		}
	}
	s.logger.Info("pruned objects by extension",
		slog.String("course", courseSlug), slog.String("ext", ext), slog.Int("deleted", deleted))
	return deleted, nil
}
