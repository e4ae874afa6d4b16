// Package rewrite transforms raw archived item markup into publish-safe HTML:
// it neutralises colon-led lines, strips headers that duplicate the item
// title, and routes every embedded asset reference through the URL resolver.
package rewrite

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/assets"
	"github.com/starford/raido/internal/models"
)

// colonStart matches a newline followed by whitespace and a colon, which
// downstream markup consumers would misread as a definition list.
var colonStart = regexp.MustCompile(`\n\s*:`)

// headerTags is checked largest to smallest; only the first element of each
// tag level is a removal candidate.
var headerTags = []string{"h1", "h2", "h3"}

// AssetLookup finds an asset by its embedded identifier. Unknown identifiers
// report ok=false, never an error: archival and publishing are decoupled and
// partial runs are expected.
type AssetLookup interface {
	AssetByID(id string) (*models.Asset, bool, error)
}

// Rewriter rewrites item markup for publication.
type Rewriter struct {
	lookup   AssetLookup
	resolver *assets.Resolver
	logger   *slog.Logger
}

// New creates a Rewriter.
func New(lookup AssetLookup, resolver *assets.Resolver, logger *slog.Logger) *Rewriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Rewriter{lookup: lookup, resolver: resolver, logger: logger}
}

// Rewrite converts raw markup into publish HTML. itemName is the display name
// whose duplicate headers are stripped. Header stripping runs before asset
// rewriting so it sees the original text.
func (rw *Rewriter) Rewrite(ctx context.Context, raw, courseSlug, itemName string) (string, error) {
	normalized := CollapseColonLines(raw)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(normalized))
	if err != nil {
		return "", fmt.Errorf("rewrite: parse markup: %w", err)
	}

	stripTitleHeader(doc, itemName)

	if err := rw.rewriteAssetRefs(ctx, doc, courseSlug); err != nil {
		return "", err
	}
	if err := rw.rewriteImages(ctx, doc, courseSlug); err != nil {
		return "", err
	}

	out, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("rewrite: serialize: %w", err)
	}
	// Entities are unescaped exactly once, after serialization.
	return html.UnescapeString(out), nil
}

// CollapseColonLines rewrites any line consisting of leading whitespace and a
// colon so the colon follows the previous line directly. Applying it twice is
// a no-op.
func CollapseColonLines(s string) string {
	return colonStart.ReplaceAllString(s, ":")
}

// stripTitleHeader removes, per header tag level, the first header whose
// normalized inner markup equals the item name.
func stripTitleHeader(doc *goquery.Document, itemName string) {
	for _, tag := range headerTags {
		sel := doc.Find(tag).First()
		if sel.Length() == 0 {
			continue
		}
		inner, err := sel.Html()
		if err != nil {
			continue
		}
		if normalizeHeaderText(inner) == itemName {
			sel.Remove()
		}
	}
}

func normalizeHeaderText(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "  ", " ")
	return strings.TrimSpace(s)
}

// rewriteAssetRefs converts each known <asset> element into a download link.
// Elements with an unknown identifier are left untouched.
func (rw *Rewriter) rewriteAssetRefs(ctx context.Context, doc *goquery.Document, courseSlug string) error {
	var rewriteErr error
	doc.Find("asset").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		id := s.AttrOr("id", "")
		asset, ok, err := rw.lookup.AssetByID(id)
		if err != nil {
			rewriteErr = err
			return false
		}
		if !ok {
			rw.logger.Warn("leaving element unconverted",
				slog.String("reason", apperr.ErrUnknownAsset.Error()),
				slog.String("asset_id", id), slog.String("course", courseSlug))
			return true
		}

		u, err := rw.resolver.Resolve(ctx, courseSlug, asset.SavedPath, "")
		if err != nil {
			rewriteErr = err
			return false
		}

		label := linkLabel(s.AttrOr("name", ""), s.AttrOr("extension", ""))
		inner, _ := s.Html()
		s.ReplaceWithHtml(fmt.Sprintf(`<a href="%s" target="_blank">%s%s</a>`,
			u, html.EscapeString(label), inner))
		return true
	})
	return rewriteErr
}

// linkLabel appends the file extension in parentheses when the visible name
// does not already end with it.
func linkLabel(name, extension string) string {
	ext := "." + strings.TrimPrefix(extension, ".")
	if extension != "" && !strings.HasSuffix(name, ext) {
		return name + "(" + extension + ")"
	}
	return name
}

// rewriteImages marks every image responsive and rewrites sources that carry
// an asset identifier.
func (rw *Rewriter) rewriteImages(ctx context.Context, doc *goquery.Document, courseSlug string) error {
	var rewriteErr error
	doc.Find("img").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		s.AddClass("img-responsive")

		id, exists := s.Attr("assetid")
		if !exists {
			return true
		}
		asset, ok, err := rw.lookup.AssetByID(id)
		if err != nil {
			rewriteErr = err
			return false
		}
		if !ok {
			rw.logger.Warn("leaving image source untouched",
				slog.String("reason", apperr.ErrUnknownAsset.Error()),
				slog.String("asset_id", id), slog.String("course", courseSlug))
			return true
		}

		u, err := rw.resolver.Resolve(ctx, courseSlug, asset.SavedPath, "")
		if err != nil {
			rewriteErr = err
			return false
		}
		s.SetAttr("src", u)
		return true
	})
	return rewriteErr
}
