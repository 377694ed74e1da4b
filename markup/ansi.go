package markup

import (
	"regexp"
	"strings"
)

var tagRe = regexp.MustCompile(`\[(/?)([a-zA-Z0-9_-]*)\]`)

var sgrOpen = map[string]string{
	"bold":      "\x1b[1m",
	"dim":       "\x1b[2m",
	"italic":    "\x1b[3m",
	"underline": "\x1b[4m",
	"blink":     "\x1b[5m",
	"reverse":   "\x1b[7m",
	"strike":    "\x1b[9m",
}

// ToAnsi is the window manager's "Markup -> ANSI translator" collaborator
// (spec.md §6): it lowers the bracketed `[tag]...[/]` dialect Translate
// produces into raw ANSI SGR text, tolerating unknown tags by passing
// them through literally (so a caller's custom tag name doesn't corrupt
// the line, it just has no visual effect) and guaranteeing a trailing
// reset.
func ToAnsi(s string) string {
	var sb strings.Builder
	var openStack []string
	last := 0

	for _, m := range tagRe.FindAllStringSubmatchIndex(s, -1) {
		sb.WriteString(s[last:m[0]])
		isClose := s[m[2]:m[3]] == "/"
		name := s[m[4]:m[5]]

		if isClose {
			if len(openStack) > 0 {
				openStack = openStack[:len(openStack)-1]
			}
			sb.WriteString("\x1b[0m")
			for _, n := range openStack {
				sb.WriteString(sgrFor(n))
			}
		} else {
			if code := sgrFor(name); code != "" || strings.HasPrefix(name, "fg-") || strings.HasPrefix(name, "bg-") {
				openStack = append(openStack, name)
				sb.WriteString(sgrFor(name))
			} else {
				// Unknown tag: pass through literally.
				sb.WriteString(s[m[0]:m[1]])
			}
		}
		last = m[1]
	}
	sb.WriteString(s[last:])
	if !strings.HasSuffix(sb.String(), "\x1b[0m") {
		sb.WriteString("\x1b[0m")
	}
	return sb.String()
}

func sgrFor(tag string) string {
	if code, ok := sgrOpen[tag]; ok {
		return code
	}
	if n, ok := strings.CutPrefix(tag, "fg-"); ok {
		return "\x1b[38;5;" + n + "m"
	}
	if n, ok := strings.CutPrefix(tag, "bg-"); ok {
		return "\x1b[48;5;" + n + "m"
	}
	return ""
}
