package videopage

import (
	"context"
	"testing"

	"github.com/starford/raido/internal/assets"
	"github.com/starford/raido/internal/models"
)

func relResolver(t *testing.T) *assets.Resolver {
	t.Helper()
	return assets.NewResolver(assets.ModeRelative, "https://cdn.example.com", t.TempDir(), nil)
}

func TestAssemble_PriorityOrderAndDefault(t *testing.T) {
	video := &models.VideoAsset{
		ItemSlug:  "lec-1",
		SavedPath: "c1/week1/lec-1.mp4",
		Subtitles: "en.vtt,zh-CN.vtt",
	}
	page, err := Assemble(context.Background(), relResolver(t), "c1", video)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if page.URL != "https://cdn.example.com/c1/week1/lec-1.mp4" {
		t.Errorf("video url = %q", page.URL)
	}
	if len(page.Subtitles) != 2 {
		t.Fatalf("subtitles = %v, want 2", page.Subtitles)
	}
	// zh-CN outranks en regardless of listing order.
	if page.Subtitles[0].Lang != "zh-CN" || !page.Subtitles[0].Default {
		t.Errorf("first subtitle = %+v, want default zh-CN", page.Subtitles[0])
	}
	if page.Subtitles[1].Lang != "en" || page.Subtitles[1].Default {
		t.Errorf("second subtitle = %+v, want non-default en", page.Subtitles[1])
	}
	if page.Subtitles[0].URL != "https://cdn.example.com/c1/week1/lec-1.zh-CN.vtt" {
		t.Errorf("subtitle url = %q", page.Subtitles[0].URL)
	}
}

func TestAssemble_LeftoverLangsKeepListingOrder(t *testing.T) {
	video := &models.VideoAsset{
		SavedPath: "c1/lec.mp4",
		Subtitles: "fr.vtt, en.vtt, de.vtt",
	}
	page, err := Assemble(context.Background(), relResolver(t), "c1", video)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	var langs []string
	for _, s := range page.Subtitles {
		langs = append(langs, s.Lang)
	}
	want := []string{"en", "fr", "de"}
	if len(langs) != len(want) {
		t.Fatalf("langs = %v, want %v", langs, want)
	}
	for i := range want {
		if langs[i] != want[i] {
			t.Fatalf("langs = %v, want %v", langs, want)
		}
	}
	if !page.Subtitles[0].Default || page.Subtitles[1].Default || page.Subtitles[2].Default {
		t.Errorf("exactly the first subtitle is default: %+v", page.Subtitles)
	}
}

func TestAssemble_IgnoresNonSubtitleTokens(t *testing.T) {
	video := &models.VideoAsset{
		SavedPath: "c1/lec.mp4",
		Subtitles: "en.vtt,thumbnail.png,en.txt",
	}
	page, err := Assemble(context.Background(), relResolver(t), "c1", video)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(page.Subtitles) != 1 || page.Subtitles[0].Lang != "en" {
		t.Errorf("subtitles = %+v, want only en", page.Subtitles)
	}
}

func TestAssemble_NoSubtitles(t *testing.T) {
	video := &models.VideoAsset{
		SavedPath: "c1/lec.mp4",
		Subtitles: "",
	}
	page, err := Assemble(context.Background(), relResolver(t), "c1", video)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	// The video URL resolves even without subtitle candidates.
	if page.URL == "" {
		t.Error("video url must always be resolved")
	}
	if len(page.Subtitles) != 0 {
		t.Errorf("subtitles = %+v, want none (and no default)", page.Subtitles)
	}
}

func TestLangDisplayName(t *testing.T) {
	cases := map[string]string{
		"zh-CN": "Simplified Chinese",
		"zh-TW": "Traditional Chinese",
		"en":    "English",
		"??":    "English",
	}
	for lang, want := range cases {
		if got := langDisplayName(lang); got != want {
			t.Errorf("langDisplayName(%q) = %q, want %q", lang, got, want)
		}
	}
}
