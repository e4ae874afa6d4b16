// Package videopage derives a lecture's playable URL and its ordered,
// deduplicated subtitle track list from the archiver's raw subtitle listing.
package videopage

import (
	"context"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/starford/raido/internal/assets"
	"github.com/starford/raido/internal/models"
)

const subtitleSuffix = ".vtt"

// priorityLangs are emitted first, in this order, when present in the
// listing. The first emitted track is the default.
var priorityLangs = []string{"zh-CN", "zh-TW", "en"}

// localeAliases maps archive language codes onto parseable BCP 47 tags.
var localeAliases = map[string]string{
	"zh-CN": "zh-Hans",
	"zh-TW": "zh-Hant",
}

// Subtitle is one caption track of a video page.
type Subtitle struct {
	URL      string
	Lang     string
	LangName string
	Default  bool
}

// Page is the playable video plus its subtitle tracks.
type Page struct {
	URL       string
	Subtitles []Subtitle
}

// Assemble resolves the video URL and builds the subtitle track list. The
// video URL is always resolved, even with zero subtitle candidates.
// Priority-language subtitle files are uploaded through the resolver; any
// leftover candidates keep their listing order and derive sibling URLs from
// the resolved video URL.
func Assemble(ctx context.Context, resolver *assets.Resolver, courseSlug string, video *models.VideoAsset) (*Page, error) {
	videoURL, err := resolver.Resolve(ctx, courseSlug, video.SavedPath, "")
	if err != nil {
		return nil, err
	}

	candidates := splitListing(video.Subtitles)

	var langs []string
	for _, lang := range priorityLangs {
		if !contains(candidates, lang+subtitleSuffix) {
			continue
		}
		if _, err := resolver.Resolve(ctx, courseSlug, video.SavedPath, "."+lang+subtitleSuffix); err != nil {
			return nil, err
		}
		langs = append(langs, lang)
	}
	for _, token := range candidates {
		lang := strings.TrimSuffix(token, subtitleSuffix)
		if !contains(langs, lang) {
			langs = append(langs, lang)
		}
	}

	page := &Page{URL: videoURL}
	for i, lang := range langs {
		page.Subtitles = append(page.Subtitles, Subtitle{
			URL:      assets.ReplaceExtURL(videoURL, "."+lang+subtitleSuffix),
			Lang:     lang,
			LangName: langDisplayName(lang),
			Default:  i == 0,
		})
	}
	return page, nil
}

// splitListing returns the trimmed tokens of the raw comma-separated listing
// that name subtitle files.
func splitListing(raw string) []string {
	var out []string
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if strings.HasSuffix(token, subtitleSuffix) {
			out = append(out, token)
		}
	}
	return out
}

// langDisplayName returns the English display name of a language code,
// falling back to "English" for anything unparseable.
func langDisplayName(lang string) string {
	if alias, ok := localeAliases[lang]; ok {
		lang = alias
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return "English"
	}
	name := display.English.Languages().Name(tag)
	if name == "" {
		return "English"
	}
	return name
}

func contains(tokens []string, want string) bool {
	for _, t := range tokens {
		if t == want {
			return true
		}
	}
	return false
}
