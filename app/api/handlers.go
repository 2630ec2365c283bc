package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/rss-digest/app/broadcast"
	"github.com/lysyi3m/rss-digest/app/cfg"
	"github.com/lysyi3m/rss-digest/app/digest"
	"github.com/lysyi3m/rss-digest/app/feed"
	"github.com/lysyi3m/rss-digest/app/graph"
	"github.com/lysyi3m/rss-digest/app/logbuf"
	"github.com/lysyi3m/rss-digest/app/tasks"
)

const defaultLogLimit = 100

func NewHandler(runner tasks.PipelineRunner, broadcaster BroadcasterInterface,
	artifacts digest.ArtifactStore, extractor tasks.RelationshipExtractor,
	registry SourceRegistryInterface, logs *logbuf.Ring) *Handler {
	return &Handler{
		runner:      runner,
		broadcaster: broadcaster,
		artifacts:   artifacts,
		extractor:   extractor,
		registry:    registry,
		logs:        logs,
		now:         time.Now,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"version":   cfg.GetVersion(),
		"timestamp": h.now().In(time.Local).Format(time.RFC3339),
		"sources":   h.registry.Count(),
	})
}

// RunPipeline runs to completion even if the client goes away, so a dropped
// connection cannot leave a partial digest behind.
func (h *Handler) RunPipeline(c *gin.Context) {
	result := h.runner.Run(context.WithoutCancel(c.Request.Context()))
	c.JSON(http.StatusOK, result)
}

func (h *Handler) GetSummaries(c *gin.Context) {
	summaries, err := h.broadcaster.Summaries(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "list_summaries", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summaries})
}

func (h *Handler) GenerateBroadcast(c *gin.Context) {
	script, err := h.broadcaster.Generate(c.Request.Context())
	if errors.Is(err, broadcast.ErrNothingToBroadcast) {
		c.JSON(http.StatusNotFound, gin.H{"error": "No summaries available"})
		return
	}
	if err != nil {
		slog.Error("Broadcast generation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Broadcast generation failed", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"broadcast": script})
}

func (h *Handler) GenerateAudio(c *gin.Context) {
	var req audioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	audioURL, err := h.broadcaster.Speak(c.Request.Context(), req.Text)
	if errors.Is(err, broadcast.ErrNothingToBroadcast) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No text to synthesize"})
		return
	}
	if err != nil {
		slog.Error("Audio generation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Audio generation failed: %v", err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"audio_url": audioURL})
}

func (h *Handler) GetGraph(c *gin.Context) {
	triples, ok := h.todayTriples(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, graph.ToVisualView(graph.BuildGraph(triples)))
}

func (h *Handler) GetGraphStatements(c *gin.Context) {
	triples, ok := h.todayTriples(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"statements": graph.ToGraphStatements(triples)})
}

func (h *Handler) GetDigest(c *gin.Context) {
	entries, err := h.artifacts.Read(h.now())
	if errors.Is(err, digest.ErrDigestNotFound) {
		entries = []digest.Entry{}
	} else if err != nil {
		slog.Error("Failed to read digest", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error reading news digest"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entries})
}

func (h *Handler) ListSources(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sources": h.registry.Sources()})
}

func (h *Handler) AddSource(c *gin.Context) {
	var source feed.Source
	if err := c.ShouldBindJSON(&source); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.registry.Add(source); err != nil {
		switch {
		case errors.Is(err, feed.ErrDuplicateSource):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Feed source with this name or URL already exists"})
		case errors.Is(err, feed.ErrInvalidSource):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			slog.Error("Failed to save sources", "source", source.Name, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error writing feeds configuration"})
		}
		return
	}

	slog.Info("Source added", "source", source.Name, "url", source.URL)
	c.JSON(http.StatusOK, gin.H{
		"message": "Feed source added successfully",
		"source":  source,
	})
}

func (h *Handler) DeleteSource(c *gin.Context) {
	name := c.Param("name")

	if err := h.registry.Remove(name); err != nil {
		if errors.Is(err, feed.ErrSourceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Feed source with name '%s' not found", name)})
			return
		}
		slog.Error("Failed to save sources", "source", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error writing feeds configuration"})
		return
	}

	slog.Info("Source removed", "source", name)
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Feed source '%s' deleted successfully", name)})
}

func (h *Handler) GetLogs(c *gin.Context) {
	limit := defaultLogLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = parsed
	}

	clearAfter, _ := strconv.ParseBool(c.Query("clear"))

	var entries []logbuf.Entry
	var hasMore bool
	if clearAfter {
		entries, hasMore = h.logs.Drain(limit)
	} else {
		entries, hasMore = h.logs.Snapshot(limit)
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":     entries,
		"has_more": hasMore,
	})
}

func (h *Handler) ClearLogs(c *gin.Context) {
	h.logs.Clear()
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Logs cleared"})
}

// todayTriples writes the error response itself and returns false when the
// graph cannot be built.
func (h *Handler) todayTriples(c *gin.Context) ([]graph.Triple, bool) {
	scope, err := graph.ParseScope(c.Query("scope"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}

	entries, err := h.artifacts.Read(h.now())
	if errors.Is(err, digest.ErrDigestNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "News digest file not found"})
		return nil, false
	}
	if err != nil {
		slog.Error("Failed to read digest", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error decoding news digest JSON"})
		return nil, false
	}

	text := digest.JoinSummaries(entries)
	if text == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "No summaries found in news digest"})
		return nil, false
	}

	triples, err := h.extractor.ExtractRelationships(text, scope)
	if err != nil {
		slog.Error("Relationship extraction failed", "scope", string(scope), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Relationship extraction failed"})
		return nil, false
	}

	return triples, true
}
