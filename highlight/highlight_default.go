//go:build !chroma

package highlight

import "github.com/consolewm/consolewm/markup"

// Highlight is the no-Chroma fallback build: a single dim span, same
// degraded behavior the teacher ships under the default build tags.
func Highlight(source, lang string) []markup.CodeSpan {
	return []markup.CodeSpan{{Text: source, Style: markup.Style{Dim: true}}}
}
