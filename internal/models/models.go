// Package models defines the domain types for Raido.
package models

// Item type tags as stored by the archival process.
const (
	ItemTypeLecture = "lecture"
)

// Course is the root of the archived hierarchy.
type Course struct {
	Slug string
	Name string
}

// Module is an ordered section of a course.
type Module struct {
	Slug        string
	CourseSlug  string
	Name        string
	Description string
	Ordinal     int
}

// Item is one unit of module content. Content is empty for items the
// archival process saved without a text body (e.g. pure video lectures).
type Item struct {
	Slug       string
	ModuleSlug string
	Name       string
	Type       string
	Content    string
}

// Reference is supplementary reading owned directly by a course; it becomes
// a page in the synthetic Resources flow.
type Reference struct {
	Slug       string
	CourseSlug string
	Name       string
	Content    string
}

// VideoAsset is the locally saved video of a lecture item, at most one per
// item. Subtitles holds the raw comma-separated listing written by the
// archiver, e.g. "en.vtt,zh-CN.vtt".
type VideoAsset struct {
	ItemSlug  string
	SavedPath string
	Subtitles string
}

// Asset is a named, typed resource (pdf, slide, doc, image) addressable by
// a stable identifier referenced from item markup.
type Asset struct {
	ID         string
	CourseSlug string
	Type       string
	Name       string
	Extension  string
	SavedPath  string
}
