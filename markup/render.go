package markup

import (
	"fmt"
	"strings"

	"github.com/consolewm/consolewm/cellgrid"
	"github.com/consolewm/consolewm/signals"
)

// CodeSpan is one highlighted run of a code block, as produced by a
// HighlightFunc. Defined here (rather than imported from the highlight
// package) so markup has no dependency on highlight — the highlight
// package depends on markup instead, and a caller (control.Code, the
// compositor's code-preview control, etc.) supplies the HighlightFunc.
type CodeSpan struct {
	Text  string
	Style Style
}

// HighlightFunc renders source in the named language into styled spans.
// A nil HighlightFunc causes code blocks to render as plain text.
type HighlightFunc func(source, lang string) []CodeSpan

// Translate lowers a parsed AST plus positional hole arguments into the
// bracketed `[tag]...[/]` dialect ansitext operates on. It mirrors the
// structure of the teacher's render.go renderNode, but instead of
// drawing directly into a screen buffer it emits a decorated string —
// the window renderer composites that string into a control's cells
// once layout has placed it, rather than basement's tight
// parse-and-draw coupling.
func Translate(root *Node, args []interface{}, hl HighlightFunc) string {
	var sb strings.Builder
	translateNode(&sb, root, args, Style{}, hl)
	return sb.String()
}

func translateNode(sb *strings.Builder, n *Node, args []interface{}, inherited Style, hl HighlightFunc) {
	switch n.Type {
	case NodeRoot:
		for i, child := range n.Children {
			if i > 0 {
				sb.WriteString("\n")
			}
			translateNode(sb, child, args, inherited, hl)
		}

	case NodeBlock, NodeHeader:
		style := inherited.Merge(n.Style)
		writeOpen(sb, style)
		for _, child := range n.Children {
			translateNode(sb, child, args, style, hl)
		}
		writeClose(sb, style)

	case NodeHR:
		sb.WriteString(strings.Repeat("─", 40))

	case NodeQuote:
		sb.WriteString("│ ")
		for _, child := range n.Children {
			translateNode(sb, child, args, inherited, hl)
		}

	case NodeList:
		for i, child := range n.Children {
			if i > 0 {
				sb.WriteString("\n")
			}
			translateNode(sb, child, args, inherited, hl)
		}

	case NodeListItem:
		sb.WriteString("• ")
		for _, child := range n.Children {
			translateNode(sb, child, args, inherited, hl)
		}

	case NodeCodeBlock:
		if hl != nil {
			for _, span := range hl(n.Content, n.Lang) {
				writeOpen(sb, span.Style)
				sb.WriteString(span.Text)
				writeClose(sb, span.Style)
			}
		} else {
			sb.WriteString(n.Content)
		}

	case NodeText:
		sb.WriteString(n.Content)

	case NodeStyle:
		style := inherited.Merge(n.Style)
		writeOpen(sb, style)
		for _, child := range n.Children {
			translateNode(sb, child, args, style, hl)
		}
		writeClose(sb, style)

	case NodeHole:
		if n.HoleID >= 0 && n.HoleID < len(args) {
			val := args[n.HoleID]
			if getter, ok := val.(signals.Getter); ok {
				val = getter.GetValue()
			}
			if s, ok := val.(string); ok && strings.ContainsAny(s, "[") {
				sb.WriteString(s)
				return
			}
			sb.WriteString(fmt.Sprintf("%v", val))
		}
	}
}

// tagNames lists the bracketed-markup tag each Style boolean maps to,
// in the order they're opened/closed.
var tagNames = []struct {
	name string
	has  func(Style) bool
}{
	{"bold", func(s Style) bool { return s.Bold }},
	{"dim", func(s Style) bool { return s.Dim }},
	{"italic", func(s Style) bool { return s.Italic }},
	{"underline", func(s Style) bool { return s.Underline }},
	{"strike", func(s Style) bool { return s.Strike }},
	{"reverse", func(s Style) bool { return s.Reverse }},
	{"blink", func(s Style) bool { return s.Blink }},
}

func writeOpen(sb *strings.Builder, s Style) {
	for _, t := range tagNames {
		if t.has(s) {
			sb.WriteString("[" + t.name + "]")
		}
	}
	if s.Color != (cellgrid.Color{}) && s.Color.Palette >= 0 {
		fmt.Fprintf(sb, "[fg-%d]", s.Color.Palette)
	}
	if s.BgColor != (cellgrid.Color{}) && s.BgColor.Palette >= 0 {
		fmt.Fprintf(sb, "[bg-%d]", s.BgColor.Palette)
	}
}

func writeClose(sb *strings.Builder, s Style) {
	if s.BgColor != (cellgrid.Color{}) && s.BgColor.Palette >= 0 {
		sb.WriteString("[/]")
	}
	if s.Color != (cellgrid.Color{}) && s.Color.Palette >= 0 {
		sb.WriteString("[/]")
	}
	for i := len(tagNames) - 1; i >= 0; i-- {
		if tagNames[i].has(s) {
			sb.WriteString("[/]")
		}
	}
}
