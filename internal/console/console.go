// Package console renders slog records as tagged terminal lines:
// "[INFO] message key=value". Tags are colored unless disabled.
package console

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/gookit/color"
)

// LevelSuccess sits between Info and Warn and marks a completed step.
const LevelSuccess = slog.LevelInfo + 2

// Options configures a Handler.
type Options struct {
	Level   slog.Leveler // minimum level, Info when nil
	NoColor bool
}

// Handler is a slog.Handler writing one line per record.
type Handler struct {
	mu     *sync.Mutex
	w      io.Writer
	opts   Options
	pre    string // attrs from WithAttrs, already formatted
	groups []string
}

var _ slog.Handler = (*Handler)(nil)

// NewHandler returns a Handler writing to w.
func NewHandler(w io.Writer, opts *Options) *Handler {
	h := &Handler{mu: &sync.Mutex{}, w: w}
	if opts != nil {
		h.opts = *opts
	}
	return h
}

// New returns a logger backed by a Handler.
func New(w io.Writer, opts *Options) *slog.Logger {
	return slog.New(NewHandler(w, opts))
}

// Enabled reports whether level meets the configured minimum.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

// Handle formats and writes r.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(h.tag(r.Level))
	b.WriteByte(' ')
	b.WriteString(r.Message)

	b.WriteString(h.pre)
	prefix := groupPrefix(h.groups)
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, prefix, a)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

// WithAttrs returns a Handler that always appends attrs.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	var b strings.Builder
	prefix := groupPrefix(h.groups)
	for _, a := range attrs {
		writeAttr(&b, prefix, a)
	}
	h2 := *h
	h2.pre = h.pre + b.String()
	return &h2
}

// WithGroup returns a Handler that qualifies later keys with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.groups = append(append([]string(nil), h.groups...), name)
	return &h2
}

func (h *Handler) tag(level slog.Level) string {
	label, paint := levelTag(level)
	tag := "[" + label + "]"
	if h.opts.NoColor {
		return tag
	}
	return paint.Sprint(tag)
}

func levelTag(level slog.Level) (string, color.Color) {
	switch {
	case level >= slog.LevelError:
		return "ERROR", color.Red
	case level >= slog.LevelWarn:
		return "WARNING", color.Yellow
	case level >= LevelSuccess:
		return "SUCCESS", color.Green
	case level >= slog.LevelInfo:
		return "INFO", color.Cyan
	default:
		return "DEBUG", color.Gray
	}
}

func groupPrefix(groups []string) string {
	if len(groups) == 0 {
		return ""
	}
	return strings.Join(groups, ".") + "."
}

func writeAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range group {
			writeAttr(b, prefix, ga)
		}
		return
	}
	val := a.Value.String()
	if strings.ContainsAny(val, " \t\"=") {
		val = fmt.Sprintf("%q", val)
	}
	b.WriteByte(' ')
	b.WriteString(prefix)
	b.WriteString(a.Key)
	b.WriteByte('=')
	b.WriteString(val)
}
