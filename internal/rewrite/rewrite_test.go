package rewrite

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/starford/raido/internal/assets"
	"github.com/starford/raido/internal/models"
)

type fakeLookup map[string]*models.Asset

func (f fakeLookup) AssetByID(id string) (*models.Asset, bool, error) {
	a, ok := f[id]
	return a, ok, nil
}

func testRewriter(t *testing.T, lookup fakeLookup) *Rewriter {
	t.Helper()
	resolver := assets.NewResolver(assets.ModeRelative, "", t.TempDir(), nil)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return New(lookup, resolver, logger)
}

func TestCollapseColonLines(t *testing.T) {
	in := "definition\n   : explanation\nnext"
	got := CollapseColonLines(in)
	want := "definition: explanation\nnext"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if CollapseColonLines(got) != got {
		t.Error("CollapseColonLines must be idempotent")
	}
}

func TestRewrite_StripsTitleHeader(t *testing.T) {
	rw := testRewriter(t, fakeLookup{})
	out, err := rw.Rewrite(context.Background(), "<h1>Welcome</h1><p>intro</p>", "c1", "Welcome")
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if strings.Contains(out, "<h1>") {
		t.Errorf("matching header should be removed, got %q", out)
	}
	if !strings.Contains(out, "<p>intro</p>") {
		t.Errorf("body content lost: %q", out)
	}

	// Reapplying after removal is a no-op.
	again, err := rw.Rewrite(context.Background(), out, "c1", "Welcome")
	if err != nil {
		t.Fatalf("second Rewrite: %v", err)
	}
	if again != out {
		t.Errorf("second application changed output:\n%q\n%q", out, again)
	}
}

func TestRewrite_HeaderNormalization(t *testing.T) {
	rw := testRewriter(t, fakeLookup{})
	// Newlines and double spaces collapse before comparison.
	out, err := rw.Rewrite(context.Background(), "<h2>Deep\nLearning  Basics</h2>", "c1", "Deep Learning Basics")
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if strings.Contains(out, "<h2>") {
		t.Errorf("normalized header should match and be removed: %q", out)
	}
}

func TestRewrite_KeepsNonMatchingHeader(t *testing.T) {
	rw := testRewriter(t, fakeLookup{})
	out, err := rw.Rewrite(context.Background(), "<h1>Other Title</h1>", "c1", "Welcome")
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if !strings.Contains(out, "<h1>Other Title</h1>") {
		t.Errorf("non-matching header must survive: %q", out)
	}
}

func TestRewrite_OnlyFirstHeaderPerLevelChecked(t *testing.T) {
	rw := testRewriter(t, fakeLookup{})
	raw := "<h1>Other</h1><h1>Welcome</h1>"
	out, err := rw.Rewrite(context.Background(), raw, "c1", "Welcome")
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	// The second h1 matches the title but only the first is a candidate.
	if !strings.Contains(out, "<h1>Welcome</h1>") {
		t.Errorf("second header must not be touched: %q", out)
	}
}

func TestRewrite_ConvertsAssetReference(t *testing.T) {
	rw := testRewriter(t, fakeLookup{
		"a1": {ID: "a1", CourseSlug: "c1", Name: "Slides", Extension: "pdf", SavedPath: "c1/files/slides.pdf"},
	})
	out, err := rw.Rewrite(context.Background(),
		`<p><asset id="a1" name="Slides" extension="pdf" assettype="pdf"></asset></p>`, "c1", "Item")
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if !strings.Contains(out, `href="/c1/files/slides.pdf"`) {
		t.Errorf("missing resolved href: %q", out)
	}
	if !strings.Contains(out, `target="_blank"`) {
		t.Errorf("missing target attribute: %q", out)
	}
	if !strings.Contains(out, "Slides(pdf)") {
		t.Errorf("label must append extension: %q", out)
	}
}

func TestRewrite_LabelKeepsExistingExtension(t *testing.T) {
	rw := testRewriter(t, fakeLookup{
		"a1": {ID: "a1", CourseSlug: "c1", Name: "notes.pdf", Extension: "pdf", SavedPath: "c1/notes.pdf"},
	})
	out, err := rw.Rewrite(context.Background(),
		`<asset id="a1" name="notes.pdf" extension="pdf"></asset>`, "c1", "Item")
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if strings.Contains(out, "notes.pdf(pdf)") {
		t.Errorf("extension must not be appended twice: %q", out)
	}
	if !strings.Contains(out, ">notes.pdf</a>") {
		t.Errorf("label = %q", out)
	}
}

func TestRewrite_UnknownAssetLeftUnconverted(t *testing.T) {
	rw := testRewriter(t, fakeLookup{})
	raw := `<p>see <asset id="ghost" name="Gone" extension="pdf"></asset></p>`
	out, err := rw.Rewrite(context.Background(), raw, "c1", "Item")
	if err != nil {
		t.Fatalf("generation must not fail on unknown asset: %v", err)
	}
	if !strings.Contains(out, "<asset") {
		t.Errorf("unknown reference must stay as literal markup: %q", out)
	}
	if strings.Contains(out, "<a ") {
		t.Errorf("no link may be produced for unknown reference: %q", out)
	}
}

func TestRewrite_ImageResponsiveAndSource(t *testing.T) {
	rw := testRewriter(t, fakeLookup{
		"img1": {ID: "img1", CourseSlug: "c1", SavedPath: "c1/images/diagram.png"},
	})
	out, err := rw.Rewrite(context.Background(),
		`<img assetid="img1" src="stale.png"/><img src="plain.png"/>`, "c1", "Item")
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if strings.Count(out, "img-responsive") != 2 {
		t.Errorf("every image gets the responsive class: %q", out)
	}
	if !strings.Contains(out, `src="/c1/images/diagram.png"`) {
		t.Errorf("asset image source not rewritten: %q", out)
	}
	if !strings.Contains(out, `src="plain.png"`) {
		t.Errorf("plain image source must be untouched: %q", out)
	}
}

func TestRewrite_UnescapesEntitiesOnce(t *testing.T) {
	rw := testRewriter(t, fakeLookup{})
	out, err := rw.Rewrite(context.Background(), "<p>Tom &amp; Jerry &amp;lt;3</p>", "c1", "Item")
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if !strings.Contains(out, "Tom & Jerry") {
		t.Errorf("entities must be unescaped: %q", out)
	}
	if !strings.Contains(out, "&lt;3") {
		t.Errorf("double-escaped entities unescape exactly one level: %q", out)
	}
}
