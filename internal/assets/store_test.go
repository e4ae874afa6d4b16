package assets

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/blob"
	"github.com/starford/raido/internal/checksum"
)

func testStore(t *testing.T) (*Store, *blob.Memory, string) {
	t.Helper()
	root := t.TempDir()
	mem := blob.NewMemory()
	store := NewStore(StoreConfig{
		Blob:          mem,
		Root:          root,
		KeyPrefix:     "course-assets",
		MaxImageWidth: 8,
		Logger:        slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})),
	})
	return store, mem, root
}

func writeArchiveFile(t *testing.T, root, rel string, data []byte) {
	t.Helper()
	abs := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestUpload_Idempotent(t *testing.T) {
	ctx := context.Background()
	store, mem, root := testStore(t)
	writeArchiveFile(t, root, "c1/video.mp4", []byte("video bytes"))

	key1, err := store.Upload(ctx, "c1", "c1/video.mp4")
	if err != nil {
		t.Fatalf("first Upload: %v", err)
	}
	key2, err := store.Upload(ctx, "c1", "c1/video.mp4")
	if err != nil {
		t.Fatalf("second Upload: %v", err)
	}
	if key1 != key2 {
		t.Errorf("keys differ: %q vs %q", key1, key2)
	}
	if mem.Puts != 1 {
		t.Errorf("Puts = %d, want 1", mem.Puts)
	}
	if mem.Len() != 1 {
		t.Errorf("stored objects = %d, want 1", mem.Len())
	}
}

func TestUpload_DedupAcrossPaths(t *testing.T) {
	ctx := context.Background()
	store, mem, root := testStore(t)
	content := []byte("identical bytes")
	writeArchiveFile(t, root, "c1/original.pdf", content)
	writeArchiveFile(t, root, "c1/renamed.pdf", content)

	key1, err := store.Upload(ctx, "c1", "c1/original.pdf")
	if err != nil {
		t.Fatalf("Upload original: %v", err)
	}
	key2, err := store.Upload(ctx, "c1", "c1/renamed.pdf")
	if err != nil {
		t.Fatalf("Upload renamed: %v", err)
	}
	// Dedup domain is hash, not path: the second upload resolves to the
	// first object and creates nothing new.
	if key2 != key1 {
		t.Errorf("renamed upload key = %q, want %q", key2, key1)
	}
	if mem.Len() != 1 {
		t.Errorf("stored objects = %d, want 1", mem.Len())
	}
}

// failingStore simulates a blob store whose transport is down: stats and
// listings come back empty, every upload fails.
type failingStore struct{}

func (failingStore) Stat(_ context.Context, _ string) (string, bool, error) {
	return "", false, nil
}

func (failingStore) Put(_ context.Context, _, _, _ string, _ blob.ProgressFunc) (string, error) {
	return "", errors.New("transport down")
}

func (failingStore) List(_ context.Context, _ string) ([]blob.Object, error) {
	return nil, nil
}

func (failingStore) Delete(_ context.Context, _ string) error {
	return nil
}

func TestUpload_TransportFailure(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store := NewStore(StoreConfig{
		Blob:      failingStore{},
		Root:      root,
		KeyPrefix: "course-assets",
		Logger:    slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})),
	})
	writeArchiveFile(t, root, "c1/video.mp4", []byte("video bytes"))

	_, err := store.Upload(ctx, "c1", "c1/video.mp4")
	if !errors.Is(err, apperr.ErrUploadFailed) {
		t.Errorf("err = %v, want ErrUploadFailed", err)
	}
}

func TestUpload_MissingFile(t *testing.T) {
	ctx := context.Background()
	store, _, _ := testStore(t)
	_, err := store.Upload(ctx, "c1", "c1/absent.mp4")
	if !errors.Is(err, apperr.ErrPathNotFound) {
		t.Errorf("err = %v, want ErrPathNotFound", err)
	}
}

func TestUpload_DownscalesWideImageBeforeHashing(t *testing.T) {
	ctx := context.Background()
	store, mem, root := testStore(t)

	img := image.NewRGBA(image.Rect(0, 0, 20, 10))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	writeArchiveFile(t, root, "c1/wide.png", buf.Bytes())

	key, err := store.Upload(ctx, "c1", "c1/wide.png")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	f, err := os.Open(filepath.Join(root, "c1/wide.png"))
	if err != nil {
		t.Fatal(err)
	}
	resized, _, err := image.Decode(f)
	f.Close()
	if err != nil {
		t.Fatal(err)
	}
	if w, h := resized.Bounds().Dx(), resized.Bounds().Dy(); w != 8 || h != 4 {
		t.Errorf("resized to %dx%d, want 8x4", w, h)
	}

	// The recorded hash must reflect the resized bytes on disk.
	wantHash, err := checksum.File(filepath.Join(root, "c1/wide.png"))
	if err != nil {
		t.Fatal(err)
	}
	gotHash, ok, err := mem.Stat(ctx, key)
	if err != nil || !ok {
		t.Fatalf("Stat: ok=%v err=%v", ok, err)
	}
	if gotHash != wantHash {
		t.Errorf("stored hash = %q, want hash of resized bytes %q", gotHash, wantHash)
	}
}

func TestUpload_NarrowImageUntouched(t *testing.T) {
	ctx := context.Background()
	store, _, root := testStore(t)

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	writeArchiveFile(t, root, "c1/small.png", buf.Bytes())

	if _, err := store.Upload(ctx, "c1", "c1/small.png"); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	after, err := os.ReadFile(filepath.Join(root, "c1/small.png"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(after, buf.Bytes()) {
		t.Error("image within the width limit must not be rewritten")
	}
}

func TestExistsByHash_ExactKeyFirst(t *testing.T) {
	ctx := context.Background()
	store, mem, root := testStore(t)
	writeArchiveFile(t, root, "c1/doc.pdf", []byte("doc"))

	key, err := store.Upload(ctx, "c1", "c1/doc.pdf")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	hash, _, _ := mem.Stat(ctx, key)

	got, ok, err := store.ExistsByHash(ctx, "c1", key, hash)
	if err != nil || !ok || got != key {
		t.Errorf("ExistsByHash = (%q, %v, %v), want (%q, true, nil)", got, ok, err, key)
	}

	_, ok, err = store.ExistsByHash(ctx, "c1", key, "unknown-hash")
	if err != nil {
		t.Fatalf("ExistsByHash: %v", err)
	}
	if ok {
		t.Error("expected miss for unknown hash")
	}
}

func TestPruneDuplicates(t *testing.T) {
	ctx := context.Background()
	store, mem, root := testStore(t)
	writeArchiveFile(t, root, "c1/a.bin", []byte("same"))

	// Two keys, same hash: one survives.
	abs := filepath.Join(root, "c1/a.bin")
	if _, err := mem.Put(ctx, "course-assets/c1/a.bin", abs, "h", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := mem.Put(ctx, "course-assets/c1/b.bin", abs, "h", nil); err != nil {
		t.Fatal(err)
	}

	deleted, err := store.PruneDuplicates(ctx, "c1")
	if err != nil {
		t.Fatalf("PruneDuplicates: %v", err)
	}
	if deleted != 1 || mem.Len() != 1 {
		t.Errorf("deleted = %d, remaining = %d, want 1 and 1", deleted, mem.Len())
	}
}

func TestPruneByExtension(t *testing.T) {
	ctx := context.Background()
	store, mem, root := testStore(t)
	writeArchiveFile(t, root, "c1/x", []byte("x"))
	abs := filepath.Join(root, "c1/x")
	_, _ = mem.Put(ctx, "course-assets/c1/slides.PDF", abs, "h1", nil)
	_, _ = mem.Put(ctx, "course-assets/c1/video.mp4", abs, "h2", nil)

	deleted, err := store.PruneByExtension(ctx, "c1", ".pdf")
	if err != nil {
		t.Fatalf("PruneByExtension: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}
	if _, ok, _ := mem.Stat(ctx, "course-assets/c1/video.mp4"); !ok {
		t.Error("non-matching object must survive")
	}
}
