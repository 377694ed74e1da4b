package markup

import "testing"

func TestToAnsiBoldTag(t *testing.T) {
	out := ToAnsi("[bold]hi[/]")
	want := "\x1b[1mhi\x1b[0m"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestToAnsiUnknownTagPassesThroughLiterally(t *testing.T) {
	out := ToAnsi("[widget]hi[/]")
	if out != "[widget]hi\x1b[0m" {
		t.Errorf("got %q", out)
	}
}

func TestToAnsiFgTagEmitsPaletteEscape(t *testing.T) {
	out := ToAnsi("[fg-1]red[/]")
	want := "\x1b[38;5;1mred\x1b[0m"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestTranslateThenToAnsiRoundTrip(t *testing.T) {
	root := Parse("**hi**")
	bracketed := Translate(root, nil, nil)
	out := ToAnsi(bracketed)
	if out != "\x1b[1mhi\x1b[0m" {
		t.Errorf("got %q", out)
	}
}
