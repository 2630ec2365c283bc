package logbuf

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Handler tees records at or above its level into a Ring and passes every
// record on to the wrapped handler.
type Handler struct {
	next   slog.Handler
	ring   *Ring
	level  slog.Leveler
	attrs  string
	prefix string
}

var _ slog.Handler = (*Handler)(nil)

func NewHandler(next slog.Handler, ring *Ring, level slog.Leveler) *Handler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &Handler{next: next, ring: ring, level: level}
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level.Level() || h.next.Enabled(ctx, level)
}

func (h *Handler) Handle(ctx context.Context, record slog.Record) error {
	if record.Level >= h.level.Level() {
		h.ring.Push(Entry{
			Timestamp: record.Time,
			Level:     record.Level.String(),
			Message:   h.format(record),
		})
	}

	if h.next.Enabled(ctx, record.Level) {
		return h.next.Handle(ctx, record)
	}
	return nil
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var b strings.Builder
	b.WriteString(h.attrs)
	for _, attr := range attrs {
		writeAttr(&b, h.prefix, attr)
	}

	clone := *h
	clone.next = h.next.WithAttrs(attrs)
	clone.attrs = b.String()
	return &clone
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	clone := *h
	clone.next = h.next.WithGroup(name)
	clone.prefix = h.prefix + name + "."
	return &clone
}

func (h *Handler) format(record slog.Record) string {
	var b strings.Builder
	b.WriteString(record.Message)
	b.WriteString(h.attrs)
	record.Attrs(func(attr slog.Attr) bool {
		writeAttr(&b, h.prefix, attr)
		return true
	})
	return b.String()
}

func writeAttr(b *strings.Builder, prefix string, attr slog.Attr) {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return
	}

	if attr.Value.Kind() == slog.KindGroup {
		groupPrefix := prefix
		if attr.Key != "" {
			groupPrefix = prefix + attr.Key + "."
		}
		for _, inner := range attr.Value.Group() {
			writeAttr(b, groupPrefix, inner)
		}
		return
	}

	value := attr.Value.String()
	if strings.ContainsAny(value, " \t\n\"=") {
		value = fmt.Sprintf("%q", value)
	}
	fmt.Fprintf(b, " %s%s=%s", prefix, attr.Key, value)
}
