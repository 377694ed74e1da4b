package control

import (
	"strings"
	"testing"

	"github.com/consolewm/consolewm/signals"
)

func TestTextWrapsToWidth(t *testing.T) {
	txt := NewText("hello world foo")
	lines := txt.Render(5, -1)
	for _, l := range lines {
		if n := len([]rune(stripAnsi(l))); n > 5 {
			t.Errorf("line %q exceeds width 5 (%d runes)", l, n)
		}
	}
}

func stripAnsi(s string) string {
	out := []rune{}
	inEscape := false
	for _, r := range s {
		if r == 0x1b {
			inEscape = true
			continue
		}
		if inEscape {
			if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
				inEscape = false
			}
			continue
		}
		out = append(out, r)
	}
	return string(out)
}

func TestNewTemplateSubstitutesHoleAndBolds(t *testing.T) {
	txt := NewTemplate("**%v**", nil, "hi")
	if txt.markupText() == "" {
		t.Fatalf("expected non-empty markup")
	}
	if m := txt.markupText(); !strings.Contains(m, "hi") || !strings.Contains(m, "[bold]") {
		t.Errorf("expected the hole value inside a bold tag, got %q", m)
	}
}

// TestNewTemplateResolvesSignalOnEveryRender covers a template hole fed
// a signal directly: each Render should reflect the signal's current
// value rather than the one in effect at construction.
func TestNewTemplateResolvesSignalOnEveryRender(t *testing.T) {
	count := signals.New(0)
	txt := NewTemplate("Count: %v", nil, count)

	first := strings.Join(txt.Render(40, -1), "")
	if !strings.Contains(first, "Count: 0") {
		t.Fatalf("expected initial render to show 0, got %q", first)
	}

	count.Set(5)

	second := strings.Join(txt.Render(40, -1), "")
	if !strings.Contains(second, "Count: 5") {
		t.Fatalf("expected render after Set(5) to show 5, got %q", second)
	}
}

func TestStackMeasureSumsVerticalChildren(t *testing.T) {
	s := NewStack(Vertical)
	s.Add(NewText("a"))
	s.Add(NewText("bb"))
	_, h := s.MeasureDesired(10, -1)
	if h != 2 {
		t.Errorf("expected height 2 for two one-line children, got %d", h)
	}
}

func TestScrollClampsOffset(t *testing.T) {
	sc := NewScroll(NewText("line1\nline2\nline3\nline4\nline5"))
	sc.MeasureDesired(10, 2)
	sc.OffsetY = 1000
	sc.clamp()
	if sc.OffsetY != sc.contentH-sc.viewH {
		t.Errorf("expected offset clamped to content height minus view height, got %d", sc.OffsetY)
	}
}
