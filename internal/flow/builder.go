// Package flow walks the course hierarchy and assembles the publishable
// documents: one flow per module, an optional Resources flow, and two course
// manifests derived from the same flow list.
package flow

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/starford/raido/internal/assets"
	"github.com/starford/raido/internal/catalog"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/rewrite"
	"github.com/starford/raido/internal/sink"
	"github.com/starford/raido/internal/videopage"
)

// Page is one published unit of content derived from a single item. Pages
// are transient: built, rendered, and discarded within a generation pass.
type Page struct {
	ID      string
	Title   string
	Content string
}

// Flow is one generated per-module document.
type Flow struct {
	ID          string
	Name        string
	Description string
	Pages       []Page
}

// Builder drives document generation for one course at a time.
type Builder struct {
	db       *catalog.DB
	rewriter *rewrite.Rewriter
	resolver *assets.Resolver
	sink     sink.Sink
	logger   *slog.Logger
}

// NewBuilder creates a Builder.
func NewBuilder(db *catalog.DB, rw *rewrite.Rewriter, resolver *assets.Resolver, s sink.Sink, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{db: db, rewriter: rw, resolver: resolver, sink: s, logger: logger}
}

// BuildCourse regenerates and publishes every document of the course. Course
// documents are always rebuilt in full; only binary asset uploads are
// deduplicated incrementally.
func (b *Builder) BuildCourse(ctx context.Context, course models.Course) error {
	modules, err := b.db.ModulesOf(course.Slug)
	if err != nil {
		return err
	}

	var flows []Flow
	ordinal := 0
	for i, module := range modules {
		fl, err := b.buildModuleFlow(ctx, course, module, i+1)
		if err != nil {
			return err
		}
		if err := b.publishFlow(ctx, course.Slug, fl); err != nil {
			return err
		}
		flows = append(flows, fl)
		ordinal = i + 1
	}

	refs, err := b.db.ReferencesOf(course.Slug)
	if err != nil {
		return err
	}
	if len(refs) > 0 {
		fl, err := b.buildReferenceFlow(ctx, course, refs, ordinal+1)
		if err != nil {
			return err
		}
		if err := b.publishFlow(ctx, course.Slug, fl); err != nil {
			return err
		}
		flows = append(flows, fl)
	}

	return b.publishManifests(ctx, course, flows)
}

// buildModuleFlow produces the flow for one module. Page identifiers use the
// 1-based enumeration index over all items, including items that yield no
// page; identifiers must stay stable against already published documents.
func (b *Builder) buildModuleFlow(ctx context.Context, course models.Course, module models.Module, ordinal int) (Flow, error) {
	items, err := b.db.ItemsOf(module.Slug)
	if err != nil {
		return Flow{}, err
	}

	fl := Flow{
		ID:          FlowID(course.Slug, ordinal, module.Slug),
		Name:        module.Name,
		Description: module.Description,
	}
	for i, item := range items {
		var content string
		switch item.Type {
		case models.ItemTypeLecture:
			content, err = b.videoPageContent(ctx, course, item)
			if err != nil {
				return Flow{}, err
			}
		default:
			if item.Content == "" {
				continue
			}
			content, err = b.rewriter.Rewrite(ctx, item.Content, course.Slug, item.Name)
			if err != nil {
				return Flow{}, err
			}
		}
		if content == "" {
			continue
		}
		fl.Pages = append(fl.Pages, Page{ID: PageID(item.Slug, i+1), Title: item.Name, Content: content})
	}
	return fl, nil
}

// videoPageContent renders a lecture's video player plus its downloadable
// resources. A lecture without a video asset yields no page; that is an
// expected state for auxiliary-only lectures, not an error.
func (b *Builder) videoPageContent(ctx context.Context, course models.Course, item models.Item) (string, error) {
	video, ok, err := b.db.VideoAssetOf(item.Slug)
	if err != nil {
		return "", err
	}
	if !ok {
		b.logger.Debug("lecture without video asset, skipping page",
			slog.String("item", item.Slug))
		return "", nil
	}

	page, err := videopage.Assemble(ctx, b.resolver, course.Slug, video)
	if err != nil {
		return "", err
	}
	videoHTML, err := renderVideo(page)
	if err != nil {
		return "", err
	}

	itemAssets, err := b.db.ItemAssetsOf(item.Slug)
	if err != nil {
		return "", err
	}
	resourcesHTML := ""
	if len(itemAssets) > 0 {
		entries := make([]resourceEntry, 0, len(itemAssets))
		for _, asset := range itemAssets {
			u, err := b.resolver.Resolve(ctx, course.Slug, asset.SavedPath, "")
			if err != nil {
				return "", err
			}
			entries = append(entries, resourceEntry{
				URL:      u,
				Type:     asset.Type,
				Name:     asset.Name,
				FileName: filepath.Base(asset.SavedPath),
				IsPDF:    strings.HasSuffix(strings.ToLower(u), ".pdf"),
			})
		}
		resourcesHTML, err = renderResources(entries)
		if err != nil {
			return "", err
		}
	}

	return videoHTML + "\n" + resourcesHTML, nil
}

// buildReferenceFlow synthesizes the Resources flow from the course's
// references, one ordinal past the last module.
func (b *Builder) buildReferenceFlow(ctx context.Context, course models.Course, refs []models.Reference, ordinal int) (Flow, error) {
	fl := Flow{
		ID:   FlowID(course.Slug, ordinal, "resource"),
		Name: "Resources",
	}
	for i, ref := range refs {
		if ref.Content == "" {
			continue
		}
		content, err := b.rewriter.Rewrite(ctx, ref.Content, course.Slug, ref.Name)
		if err != nil {
			return Flow{}, err
		}
		if content == "" {
			continue
		}
		fl.Pages = append(fl.Pages, Page{ID: PageID(ref.Slug, i+1), Title: ref.Name, Content: content})
	}
	return fl, nil
}

func (b *Builder) publishFlow(ctx context.Context, courseSlug string, fl Flow) error {
	doc, err := renderFlowDoc(fl)
	if err != nil {
		return err
	}
	docPath := path.Join(courseSlug, "flows", fl.ID+".yml")
	if err := b.sink.Publish(ctx, docPath, doc); err != nil {
		return fmt.Errorf("flow: publish %s: %w", docPath, err)
	}
	b.logger.Info("flow published", slog.String("flow_id", fl.ID), slog.Int("pages", len(fl.Pages)))
	return nil
}

// publishManifests writes the embedded chunk manifest and the standalone
// table of contents; both derive from the same flow list.
func (b *Builder) publishManifests(ctx context.Context, course models.Course, flows []Flow) error {
	embed, err := renderManifest(true, course, flows)
	if err != nil {
		return err
	}
	embedPath := path.Join(course.Slug, strings.ReplaceAll(course.Slug, "_", "-")+"_course_chunks.yml")
	if err := b.sink.Publish(ctx, embedPath, embed); err != nil {
		return fmt.Errorf("flow: publish %s: %w", embedPath, err)
	}

	standalone, err := renderManifest(false, course, flows)
	if err != nil {
		return err
	}
	standalonePath := path.Join(course.Slug, "course.yml")
	if err := b.sink.Publish(ctx, standalonePath, standalone); err != nil {
		return fmt.Errorf("flow: publish %s: %w", standalonePath, err)
	}

	b.logger.Info("course manifests published", slog.String("course", course.Slug), slog.Int("flows", len(flows)))
	return nil
}

// FlowID builds the stable flow identifier: course, ordinal, and module slug
// joined and normalised to hyphens.
func FlowID(courseSlug string, ordinal int, moduleSlug string) string {
	slug := fmt.Sprintf("%s_%d_%s", courseSlug, ordinal, moduleSlug)
	return strings.ReplaceAll(slug, "_", "-")
}

// PageID builds the stable page identifier from the item slug and its 1-based
// enumeration position, normalised to underscores.
func PageID(itemSlug string, position int) string {
	return strings.ReplaceAll(fmt.Sprintf("%s_%d", itemSlug, position), "-", "_")
}
