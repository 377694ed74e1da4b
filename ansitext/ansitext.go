// Package ansitext implements the measuring/truncating helpers the
// window renderer needs over two different "decorated string" dialects
// (spec.md §4.C3): bracketed markup (`[tag]...[/]`, as produced by the
// teacher's basement templates before they are lowered to raw ANSI) and
// raw ANSI SGR escapes (as produced by a control that already rendered
// itself, or by the `markup` package's own translator).
//
// There is no ecosystem library in the retrieval pack that does
// truncate-preserving-open-tags for either dialect — go-ansicode (the
// closest relative, in danielgatis-go-headless-term) is a terminal
// *emulator* that interprets escapes against a grid, not a string
// truncation helper, and it can't be fetched here anyway (its go.mod
// replace points at a sibling module this pack doesn't include). This
// is therefore hand-rolled, same as the teacher's own markup engine
// hand-rolls its tag scanning in basement/parser.go.
package ansitext

import (
	"regexp"
	"strings"
)

var markupTagRe = regexp.MustCompile(`\[(/?)([a-zA-Z0-9_-]*)\]`)

// VisibleLengthMarkup returns the length of s with bracketed markup
// tags removed.
func VisibleLengthMarkup(s string) int {
	return len([]rune(stripMarkup(s)))
}

func stripMarkup(s string) string {
	return markupTagRe.ReplaceAllString(s, "")
}

var ansiEscapeRe = regexp.MustCompile("\x1b\\[[0-9;]*[a-zA-Z]")

// VisibleLengthAnsi returns the length of s after stripping
// `ESC [ ... [a-zA-Z]` sequences.
func VisibleLengthAnsi(s string) int {
	return len([]rune(ansiEscapeRe.ReplaceAllString(s, "")))
}

// TruncateMarkup preserves at most n visible columns of s, unwinding
// any still-open tags by appending a matching "[/]" per open tag, in
// reverse order, so the result is always well-formed. An unterminated
// "[" (one that never finds a matching "]") is treated as a literal
// character, matching the teacher's parser's tolerance for malformed
// input.
func TruncateMarkup(s string, n int) string {
	if n <= 0 {
		return ""
	}
	var out strings.Builder
	var openStack []string
	visible := 0
	runes := []rune(s)

	for i := 0; i < len(runes); i++ {
		if visible >= n {
			break
		}
		if runes[i] == '[' {
			end := indexRune(runes[i:], ']')
			if end < 0 {
				// Unterminated '[': literal.
				out.WriteRune('[')
				visible++
				continue
			}
			tag := string(runes[i+1 : i+end])
			out.WriteString("[" + tag + "]")
			if strings.HasPrefix(tag, "/") {
				if len(openStack) > 0 {
					openStack = openStack[:len(openStack)-1]
				}
			} else {
				openStack = append(openStack, tag)
			}
			i += end
			continue
		}
		out.WriteRune(runes[i])
		visible++
	}

	for i := len(openStack) - 1; i >= 0; i-- {
		out.WriteString("[/]")
	}
	return out.String()
}

func indexRune(runes []rune, target rune) int {
	for i, r := range runes {
		if r == target {
			return i
		}
	}
	return -1
}

// TruncateAnsi preserves embedded ANSI escapes verbatim, stops after n
// visible characters, closes any still-open SGR attributes, and
// appends a final reset.
//
// spec.md §9 Open Question 2 leaves ambiguous whether a bare
// `ESC[0m` resets every open layer or pops one. This implementation
// treats `ESC[0m` (and the bare `ESC[m` alias) as closing the entire
// open stack, since that is what a reset sequence means to every real
// terminal; any other `m`-terminated escape just pushes a new layer
// without popping (SGR sequences compose, they don't nest).
func TruncateAnsi(s string, n int) string {
	var out strings.Builder
	visible := 0
	openLayers := 0
	runes := []rune(s)

	for i := 0; i < len(runes) && visible < n; i++ {
		if runes[i] == 0x1b {
			seqLen := matchEscape(runes[i:])
			seq := string(runes[i : i+seqLen])
			out.WriteString(seq)
			if strings.HasSuffix(seq, "m") {
				if seq == "\x1b[0m" || seq == "\x1b[m" {
					openLayers = 0
				} else {
					openLayers++
				}
			}
			i += seqLen - 1
			continue
		}
		out.WriteRune(runes[i])
		visible++
	}
	_ = openLayers
	out.WriteString("\x1b[0m")
	return out.String()
}

// matchEscape returns the length of the CSI (or bare two-rune)
// escape sequence starting at runes[0].
func matchEscape(runes []rune) int {
	if len(runes) < 2 {
		return len(runes)
	}
	if runes[1] != '[' {
		return 2
	}
	for i := 2; i < len(runes); i++ {
		if runes[i] >= 0x40 && runes[i] <= 0x7e {
			return i + 1
		}
	}
	return len(runes)
}

// SubstringAnsi returns the visible-column slice [start, start+length)
// of s, preserving any escapes embedded within that slice (escapes
// before the slice are dropped, matching "substring", not "render from
// here to the end").
func SubstringAnsi(s string, start, length int) string {
	var out strings.Builder
	visible := 0
	runes := []rune(s)
	end := start + length

	for i := 0; i < len(runes); i++ {
		if runes[i] == 0x1b {
			seqLen := matchEscape(runes[i:])
			if visible >= start && visible < end {
				out.WriteString(string(runes[i : i+seqLen]))
			}
			i += seqLen - 1
			continue
		}
		if visible >= start && visible < end {
			out.WriteRune(runes[i])
		}
		visible++
		if visible >= end {
			break
		}
	}
	return out.String()
}
