package highlight

import "testing"

func TestHighlightPreservesSourceText(t *testing.T) {
	spans := Highlight("let x = 1", "go")
	var text string
	for _, s := range spans {
		text += s.Text
	}
	if text != "let x = 1" {
		t.Errorf("highlight dropped or altered source text: got %q", text)
	}
}

func TestHighlightNonEmptySource(t *testing.T) {
	spans := Highlight("x", "")
	if len(spans) == 0 {
		t.Fatalf("expected at least one span")
	}
}
