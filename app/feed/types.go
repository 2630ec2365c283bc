package feed

import (
	"time"
)

// Feed processing types

type Metadata struct {
	Title           string
	Link            string
	Description     string
	Language        string
	FeedPublishedAt *time.Time
}

type Item struct {
	GUID        string
	Title       string
	Link        string
	Description string
	Content     string
	PublishedAt *time.Time
}

// RawArticle is one resolved feed entry, before translation and summarization.
type RawArticle struct {
	Title        string
	BodyText     string
	SourceName   string
	CanonicalURL string
	Language     string
	// RFC3339 timestamp, or "" when the feed entry carries no date.
	PublishedAt string
}

// Source registry types

type Source struct {
	Name           string  `yaml:"name" json:"name"`
	Type           string  `yaml:"type" json:"type"`
	URL            string  `yaml:"url" json:"url"`
	Lang           string  `yaml:"lang" json:"lang"`
	DiversityScore float64 `yaml:"diversity_score,omitempty" json:"diversity_score,omitempty"`
	Perspective    string  `yaml:"perspective,omitempty" json:"perspective,omitempty"`
	Region         string  `yaml:"region,omitempty" json:"region,omitempty"`
}

type registryFile struct {
	Sources []Source `yaml:"sources"`
}
