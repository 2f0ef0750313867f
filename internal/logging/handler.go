package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// palette holds the colors used by Handler. A nil palette means plain output.
type palette struct {
	time  *color.Color
	trace *color.Color
	debug *color.Color
	info  *color.Color
	warn  *color.Color
	err   *color.Color
	key   *color.Color
}

func newPalette() *palette {
	return &palette{
		time:  color.New(color.FgHiBlack),
		trace: color.New(color.FgHiBlack),
		debug: color.New(color.FgMagenta),
		info:  color.New(color.FgGreen),
		warn:  color.New(color.FgYellow),
		err:   color.New(color.FgRed, color.Bold),
		key:   color.New(color.FgCyan),
	}
}

// Handler implements slog.Handler for terminal output.
// Values of secret-looking attributes are masked before they are written,
// since server definitions are logged with their env and headers.
type Handler struct {
	opts   slog.HandlerOptions
	out    io.Writer
	mu     *sync.Mutex
	attrs  []slog.Attr
	prefix string
	colors *palette
}

// NewHandler creates a text handler that colorizes output when out is a
// color-capable terminal.
func NewHandler(out io.Writer, opts *slog.HandlerOptions) *Handler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}

	h := &Handler{
		opts: *opts,
		out:  out,
		mu:   &sync.Mutex{},
	}
	if SupportsColor(out) {
		h.colors = newPalette()
	}
	return h
}

// Enabled reports whether the handler handles records at the given level.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

// Handle formats r as a single line: time, level, message, attributes.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder

	if !r.Time.IsZero() {
		sb.WriteString(h.paint(h.timeColor(), r.Time.Format(time.Kitchen)))
		sb.WriteByte(' ')
	}

	fmt.Fprintf(&sb, "%-5s %s", h.paint(h.levelColor(r.Level), levelName(r.Level)), r.Message)

	for _, a := range h.attrs {
		h.writeAttr(&sb, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(&sb, slog.Attr{Key: h.prefix + a.Key, Value: a.Value})
		return true
	})
	sb.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, sb.String())
	return err
}

func (h *Handler) writeAttr(sb *strings.Builder, a slog.Attr) {
	value := a.Value.Resolve().Any()
	if ShouldMask(a.Key) {
		value = MaskValue(fmt.Sprint(value))
	} else if s, ok := value.(string); ok && ContainsTokenPrefix(s) {
		value = MaskValue(s)
	}
	fmt.Fprintf(sb, " %s=%v", h.paint(h.keyColor(), a.Key), value)
}

// WithAttrs returns a new Handler with the given attributes.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newH := *h
	newH.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	newH.attrs = append(newH.attrs, h.attrs...)
	for _, a := range attrs {
		newH.attrs = append(newH.attrs, slog.Attr{Key: h.prefix + a.Key, Value: a.Value})
	}
	return &newH
}

// WithGroup returns a new Handler whose subsequent attribute keys are
// prefixed with name and a dot.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	newH := *h
	newH.prefix = h.prefix + name + "."
	return &newH
}

func (h *Handler) paint(c *color.Color, s string) string {
	if c == nil {
		return s
	}
	return c.Sprint(s)
}

func (h *Handler) timeColor() *color.Color {
	if h.colors == nil {
		return nil
	}
	return h.colors.time
}

func (h *Handler) keyColor() *color.Color {
	if h.colors == nil {
		return nil
	}
	return h.colors.key
}

func (h *Handler) levelColor(level slog.Level) *color.Color {
	if h.colors == nil {
		return nil
	}
	switch {
	case level >= slog.LevelError:
		return h.colors.err
	case level >= slog.LevelWarn:
		return h.colors.warn
	case level >= slog.LevelInfo:
		return h.colors.info
	case level >= slog.LevelDebug:
		return h.colors.debug
	default:
		return h.colors.trace
	}
}

func levelName(level slog.Level) string {
	if level < slog.LevelDebug {
		return "TRACE"
	}
	return level.String()
}
