package control

import (
	"strings"

	"github.com/consolewm/consolewm/ansitext"
	"github.com/consolewm/consolewm/markup"
)

// Text is a leaf control that renders a single markup-decorated string,
// word-wrapped to the available width. It is the pipeline's minimal
// stand-in for a label/paragraph widget.
//
// A Text built via NewTemplate keeps its parsed root and hole args
// instead of baking Markup once, so a signal hole's current value shows
// up on every Render rather than the value at construction time — the
// window still has to call Invalidate() when a dependency changes, the
// same way the teacher's signal effects trigger a redraw rather than
// pushing text directly.
type Text struct {
	Base
	Markup string

	templateRoot *markup.Node
	templateArgs []interface{}
	templateHl   markup.HighlightFunc
}

// NewText returns a Text control displaying literal bracketed markup
// (the `[tag]...[/]` dialect ansitext understands).
func NewText(s string) *Text {
	return &Text{Markup: s}
}

// NewTemplate parses src as markup source and returns a Text control
// that substitutes args into its %v holes on every Render. hl may be
// nil if src has no code blocks. Any arg implementing signals.Getter is
// resolved to its current value at render time, not at construction.
func NewTemplate(src string, hl markup.HighlightFunc, args ...interface{}) *Text {
	return &Text{
		templateRoot: markup.Parse(src),
		templateArgs: args,
		templateHl:   hl,
	}
}

func (t *Text) markupText() string {
	if t.templateRoot != nil {
		return markup.Translate(t.templateRoot, t.templateArgs, t.templateHl)
	}
	return t.Markup
}

func (t *Text) MeasureDesired(availW, availH int) (int, int) {
	lines := wrapMarkup(t.markupText(), availW)
	h := len(lines)
	if availH > 0 && h > availH {
		h = availH
	}
	w := 0
	for _, l := range lines {
		if n := ansitext.VisibleLengthMarkup(l); n > w {
			w = n
		}
	}
	if availW > 0 && w > availW {
		w = availW
	}
	return w, h
}

func (t *Text) Render(availW, availH int) []string {
	lines := wrapMarkup(t.markupText(), availW)
	if availH > 0 && len(lines) > availH {
		lines = lines[:availH]
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = markup.ToAnsi(l)
	}
	return out
}

// wrapMarkup greedily wraps s on spaces to width, truncating any word
// longer than width with ansitext.TruncateMarkup so tags stay balanced.
func wrapMarkup(s string, width int) []string {
	if width <= 0 {
		return []string{s}
	}
	var out []string
	for _, paragraph := range strings.Split(s, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := ""
		lineLen := 0
		for _, w := range words {
			wLen := ansitext.VisibleLengthMarkup(w)
			if wLen > width {
				w = ansitext.TruncateMarkup(w, width)
				wLen = ansitext.VisibleLengthMarkup(w)
			}
			if lineLen == 0 {
				line = w
				lineLen = wLen
				continue
			}
			if lineLen+1+wLen > width {
				out = append(out, line)
				line = w
				lineLen = wLen
				continue
			}
			line += " " + w
			lineLen += 1 + wLen
		}
		if line != "" || len(out) == 0 {
			out = append(out, line)
		}
	}
	return out
}
