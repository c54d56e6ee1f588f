package entity

import "time"

// Article belongs to exactly one author; AuthorID is immutable after
// creation and every mutation is authorized against it.
//
// Image is the normalized full-size JPEG, Thumbnail the small JPEG derived
// from it at the same time. ThumbnailURL is set only when the thumbnail
// was offloaded to object storage.
type Article struct {
	ID           string
	Title        string
	Content      string
	Image        []byte
	Thumbnail    []byte
	ThumbnailURL string
	AuthorID     string
	PublishedAt  time.Time
	UpdatedAt    time.Time
}

// ArticleSummary is the list-view projection: no content body, no full
// image binary.
type ArticleSummary struct {
	ID           string
	Title        string
	AuthorID     string
	AuthorName   string
	Thumbnail    []byte
	ThumbnailURL string
	PublishedAt  time.Time
}
