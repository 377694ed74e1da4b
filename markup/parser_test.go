package markup

import "testing"

func TestParseBold(t *testing.T) {
	root := Parse("**hi**")
	if len(root.Children) != 1 || root.Children[0].Type != NodeBlock {
		t.Fatalf("expected one block, got %+v", root.Children)
	}
	block := root.Children[0]
	if len(block.Children) != 1 || block.Children[0].Type != NodeStyle || !block.Children[0].Style.Bold {
		t.Fatalf("expected one bold style child, got %+v", block.Children)
	}
}

func TestParseHeaderLevel1IsReverse(t *testing.T) {
	root := Parse("# Title")
	if len(root.Children) != 1 || root.Children[0].Type != NodeHeader {
		t.Fatalf("expected header node, got %+v", root.Children)
	}
	if !root.Children[0].Style.Reverse {
		t.Errorf("level-1 header should be reverse styled")
	}
}

func TestParseHoleAssignsSequentialIDs(t *testing.T) {
	root := Parse("%v and %v")
	var holes []*Node
	var walk func(*Node)
	walk = func(n *Node) {
		if n.Type == NodeHole {
			holes = append(holes, n)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)
	if len(holes) != 2 {
		t.Fatalf("expected 2 holes, got %d", len(holes))
	}
	if holes[0].HoleID != 0 || holes[1].HoleID != 1 {
		t.Errorf("expected sequential hole IDs, got %d, %d", holes[0].HoleID, holes[1].HoleID)
	}
}

func TestTranslateBoldProducesBracketedTag(t *testing.T) {
	root := Parse("**hi**")
	out := Translate(root, nil, nil)
	if out != "[bold]hi[/]" {
		t.Errorf("got %q", out)
	}
}

func TestTranslateHoleSubstitutesArg(t *testing.T) {
	root := Parse("count: %v")
	out := Translate(root, []interface{}{42}, nil)
	if out != "count: 42" {
		t.Errorf("got %q", out)
	}
}

func TestStyleMergeChildColorOverridesParent(t *testing.T) {
	parent := Style{Bold: true, Color: NamedColor("red")}
	child := Style{Color: NamedColor("blue")}
	merged := parent.Merge(child)
	if !merged.Bold {
		t.Errorf("expected bold to persist from parent")
	}
	if merged.Color != NamedColor("blue") {
		t.Errorf("expected child color to win")
	}
}
