package assets

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/starford/raido/internal/apperr"
)

// Resolution modes.
const (
	// ModeRelative maps local paths to root-relative URLs without touching
	// the blob store; documents are expected to be served next to the files.
	ModeRelative = "relative"
	// ModePublish uploads local files through the dedup cache and returns
	// absolute URLs under the configured base.
	ModePublish = "publish"
)

// Resolver turns a locally archived file path into a public URL. The mode is
// fixed at construction, not per call.
type Resolver struct {
	mode    string
	baseURL string
	root    string
	store   *Store
}

// NewResolver creates a resolver. store may be nil in relative mode.
func NewResolver(mode, baseURL, root string, store *Store) *Resolver {
	return &Resolver{mode: mode, baseURL: baseURL, root: root, store: store}
}

// Resolve returns the public URL for localPath within the course. A non-empty
// extOverride replaces the path's extension before resolution; this is how a
// subtitle file sibling to a video is addressed without re-deriving naming.
func (r *Resolver) Resolve(ctx context.Context, courseSlug, localPath, extOverride string) (string, error) {
	if extOverride != "" {
		localPath = ReplaceExt(localPath, extOverride)
	}

	switch r.mode {
	case ModeRelative:
		rel, err := r.relToRoot(localPath)
		if err != nil {
			return "", err
		}
		return joinURL(r.baseURL, filepath.ToSlash(rel))
	case ModePublish:
		// Upload stats the file itself and reports ErrPathNotFound.
		key, err := r.store.Upload(ctx, courseSlug, localPath)
		if err != nil {
			return "", err
		}
		return joinURL(r.baseURL, key)
	default:
		return "", fmt.Errorf("assets: unknown resolution mode %q", r.mode)
	}
}

func (r *Resolver) absPath(localPath string) string {
	if filepath.IsAbs(localPath) {
		return localPath
	}
	return filepath.Join(r.root, localPath)
}

// relToRoot strips the archive root, rejecting paths that escape it.
func (r *Resolver) relToRoot(localPath string) (string, error) {
	rel, err := filepath.Rel(r.root, r.absPath(localPath))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("assets: %w: %s", apperr.ErrOutsideRoot, localPath)
	}
	return rel, nil
}

// ReplaceExt substitutes the path's extension, adding a leading dot to ext
// when missing.
func ReplaceExt(path, ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// ReplaceExtURL substitutes the extension of a URL's final path element.
func ReplaceExtURL(rawURL, ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if i := strings.LastIndex(rawURL, "."); i > strings.LastIndex(rawURL, "/") {
		return rawURL[:i] + ext
	}
	return rawURL + ext
}

func joinURL(base, p string) (string, error) {
	if base == "" {
		return "/" + strings.TrimPrefix(p, "/"), nil
	}
	u, err := url.JoinPath(base, p)
	if err != nil {
		return "", fmt.Errorf("assets: join url %q + %q: %w", base, p, err)
	}
	return u, nil
}
