package api

import (
	"context"
	"time"

	"github.com/lysyi3m/rss-digest/app/broadcast"
	"github.com/lysyi3m/rss-digest/app/digest"
	"github.com/lysyi3m/rss-digest/app/feed"
	"github.com/lysyi3m/rss-digest/app/logbuf"
	"github.com/lysyi3m/rss-digest/app/pipeline"
	"github.com/lysyi3m/rss-digest/app/tasks"
)

type BroadcasterInterface interface {
	Summaries(ctx context.Context) ([]string, error)
	Generate(ctx context.Context) (string, error)
	Speak(ctx context.Context, text string) (string, error)
}

var _ BroadcasterInterface = (*broadcast.Service)(nil)

type SourceRegistryInterface interface {
	Sources() []feed.Source
	Count() int
	Add(source feed.Source) error
	Remove(name string) error
}

var _ SourceRegistryInterface = (*feed.Registry)(nil)

var _ tasks.PipelineRunner = (*pipeline.Runner)(nil)

type Handler struct {
	runner      tasks.PipelineRunner
	broadcaster BroadcasterInterface
	artifacts   digest.ArtifactStore
	extractor   tasks.RelationshipExtractor
	registry    SourceRegistryInterface
	logs        *logbuf.Ring
	now         func() time.Time
}

type audioRequest struct {
	Text string `json:"text"`
}
