// Package markup is the window manager's decorated-text dialect: a
// small markdown-ish source language parsed into a tree, then lowered
// by Translate to the bracketed `[tag]...[/]` string
// ansitext.TruncateMarkup understands, which ToAnsi turns into ANSI SGR
// text.
//
// Grounded on the teacher's basement package (basement/ast.go,
// basement/parser.go): same AST shape (NodeType, Node, inline-token
// parsing with the %v hole convention) generalized so a Style carries a
// cellgrid.Color instead of a literal ANSI escape string, since the
// window manager's theme resolution (theme.Colors.Resolve) needs to see
// structured colors, not pre-baked escape sequences.
package markup

import "github.com/consolewm/consolewm/cellgrid"

// NodeType identifies the kind of a markup AST node.
type NodeType int

const (
	NodeRoot NodeType = iota
	NodeText
	NodeStyle
	NodeHole // %v placeholder
	NodeBlock
	NodeHeader
	NodeList
	NodeListItem
	NodeCodeBlock
	NodeHR
	NodeQuote
)

// Style is the inline decoration carried by a NodeStyle/NodeHeader
// node. A Color/BgColor left at the zero value or set to
// cellgrid.Default means "inherit".
type Style struct {
	Bold      bool
	Dim       bool
	Italic    bool
	Underline bool
	Strike    bool
	Reverse   bool
	Blink     bool
	Color     cellgrid.Color
	BgColor   cellgrid.Color
}

// Merge combines parent and child styles, with child's explicit colors
// taking precedence and boolean attributes OR'd together — the same
// inheritance rule the teacher's render.go mergeStyles used.
func (parent Style) Merge(child Style) Style {
	out := Style{
		Bold:      parent.Bold || child.Bold,
		Dim:       parent.Dim || child.Dim,
		Italic:    parent.Italic || child.Italic,
		Underline: parent.Underline || child.Underline,
		Strike:    parent.Strike || child.Strike,
		Reverse:   parent.Reverse || child.Reverse,
		Blink:     parent.Blink || child.Blink,
		Color:     parent.Color,
		BgColor:   parent.BgColor,
	}
	if child.Color != cellgrid.Default && child.Color != (cellgrid.Color{}) {
		out.Color = child.Color
	}
	if child.BgColor != cellgrid.Default && child.BgColor != (cellgrid.Color{}) {
		out.BgColor = child.BgColor
	}
	return out
}

// Node is a markup AST node.
type Node struct {
	Type     NodeType
	Content  string // NodeText content, or NodeCodeBlock source
	Lang     string // NodeCodeBlock language tag
	Style    Style
	Children []*Node
	HoleID   int // NodeHole argument index, assigned by AssignHoles
}

// NewNode returns an empty node of the given type.
func NewNode(typ NodeType) *Node {
	return &Node{Type: typ}
}

// AddChild appends child to n's children.
func (n *Node) AddChild(child *Node) {
	n.Children = append(n.Children, child)
}

// AssignHoles numbers every NodeHole in document order, 0-based,
// matching positional arguments passed to Translate/Render.
func AssignHoles(n *Node) {
	count := 0
	assignHoles(n, &count)
}

func assignHoles(n *Node, count *int) {
	if n.Type == NodeHole {
		n.HoleID = *count
		*count++
	}
	for _, c := range n.Children {
		assignHoles(c, count)
	}
}
