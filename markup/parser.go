package markup

import (
	"regexp"
	"strings"

	"github.com/consolewm/consolewm/cellgrid"
)

var (
	headerBlockRe = regexp.MustCompile(`^(#{1,6})[ \t]+(.+)`)
	hrBlockRe     = regexp.MustCompile(`^(\*{3,}|-{3,}|_{3,})$`)
	listBlockRe   = regexp.MustCompile(`^([ \t]*)([*+-]|\d+\.)[ \t]+(.+)`)
	quoteBlockRe  = regexp.MustCompile(`^>[ \t]*(.+)`)
	codeFenceRe   = regexp.MustCompile("^```(.*)")

	inlineTokenRe = regexp.MustCompile(`(%v)|(\*\*.+?\*\*)|(\*.+?\*)|(__.+?__)|(~~.+?~~)|(!?#[a-zA-Z0-9]{3,8}\(.+?\))`)
)

// Parse parses a markup document into an AST and assigns hole IDs.
func Parse(input string) *Node {
	root := ParseAST(input)
	AssignHoles(root)
	return root
}

// ParseAST parses input into a markup tree without assigning hole IDs
// (callers that don't use %v holes can skip that step).
func ParseAST(input string) *Node {
	root := NewNode(NodeRoot)
	lines := strings.Split(input, "\n")

	var currentList *Node
	var inCodeBlock bool
	var codeBlockLang string
	var codeBlockContent strings.Builder

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		if matches := codeFenceRe.FindStringSubmatch(trimmed); matches != nil {
			if inCodeBlock {
				node := NewNode(NodeCodeBlock)
				node.Content = codeBlockContent.String()
				node.Lang = codeBlockLang
				root.AddChild(node)
				codeBlockContent.Reset()
				inCodeBlock = false
				codeBlockLang = ""
			} else {
				inCodeBlock = true
				codeBlockLang = strings.TrimSpace(matches[1])
			}
			continue
		}
		if inCodeBlock {
			codeBlockContent.WriteString(line + "\n")
			continue
		}

		if matches := listBlockRe.FindStringSubmatch(line); matches != nil {
			if currentList == nil {
				currentList = NewNode(NodeList)
				root.AddChild(currentList)
			}
			item := NewNode(NodeListItem)
			item.Children = parseInline(matches[3])
			currentList.AddChild(item)
			continue
		}
		if trimmed != "" {
			currentList = nil
		}

		if matches := headerBlockRe.FindStringSubmatch(line); matches != nil {
			level := len(matches[1])
			content := matches[2]

			style := Style{Bold: true}
			if level == 1 {
				style.Reverse = true
			} else if level == 2 {
				style.Underline = true
			}

			node := NewNode(NodeHeader)
			node.Style = style
			node.Children = parseInline(content)
			root.AddChild(node)
			continue
		}

		if hrBlockRe.MatchString(trimmed) {
			root.AddChild(NewNode(NodeHR))
			continue
		}

		if matches := quoteBlockRe.FindStringSubmatch(line); matches != nil {
			node := NewNode(NodeQuote)
			node.Children = parseInline(matches[1])
			root.AddChild(node)
			continue
		}

		if trimmed == "" {
			root.AddChild(NewNode(NodeText))
			continue
		}

		node := NewNode(NodeBlock)
		node.Children = parseInline(line)
		root.AddChild(node)
	}

	return root
}

func parseInline(text string) []*Node {
	var nodes []*Node

	lastIndex := 0
	matches := inlineTokenRe.FindAllStringIndex(text, -1)

	for _, match := range matches {
		start, end := match[0], match[1]

		if start > lastIndex {
			nodes = append(nodes, &Node{Type: NodeText, Content: text[lastIndex:start]})
		}

		token := text[start:end]

		switch {
		case token == "%v":
			nodes = append(nodes, &Node{Type: NodeHole, HoleID: -1})
		case strings.HasPrefix(token, "**"):
			nodes = append(nodes, styledChild(Style{Bold: true}, token[2:len(token)-2]))
		case strings.HasPrefix(token, "__"):
			nodes = append(nodes, styledChild(Style{Underline: true}, token[2:len(token)-2]))
		case strings.HasPrefix(token, "~~"):
			nodes = append(nodes, styledChild(Style{Strike: true}, token[2:len(token)-2]))
		case strings.HasPrefix(token, "*"):
			nodes = append(nodes, styledChild(Style{Italic: true}, token[1:len(token)-1]))
		case strings.Contains(token, "#"):
			isBg := strings.HasPrefix(token, "!")
			startParen := strings.Index(token, "(")
			endParen := strings.LastIndex(token, ")")

			if startParen > -1 && endParen > startParen {
				colorName := token[1:startParen]
				if isBg {
					colorName = token[2:startParen]
				}
				content := token[startParen+1 : endParen]
				color := NamedColor(colorName)

				var style Style
				if isBg {
					style = Style{BgColor: color}
				} else {
					style = Style{Color: color}
				}
				nodes = append(nodes, styledChild(style, content))
			} else {
				nodes = append(nodes, &Node{Type: NodeText, Content: token})
			}
		}

		lastIndex = end
	}

	if lastIndex < len(text) {
		nodes = append(nodes, &Node{Type: NodeText, Content: text[lastIndex:]})
	}

	return nodes
}

func styledChild(style Style, content string) *Node {
	n := NewNode(NodeStyle)
	n.Style = style
	n.Children = parseInline(content)
	return n
}

// NamedColor maps a basic color name to a palette color. Unknown names
// resolve to cellgrid.Default (no color override).
func NamedColor(name string) cellgrid.Color {
	switch name {
	case "black":
		return cellgrid.Palette256(16) // palette 0 is the zero Color, which Style reads as "inherit"
	case "red":
		return cellgrid.Palette256(1)
	case "green":
		return cellgrid.Palette256(2)
	case "yellow":
		return cellgrid.Palette256(3)
	case "blue":
		return cellgrid.Palette256(4)
	case "magenta":
		return cellgrid.Palette256(5)
	case "cyan":
		return cellgrid.Palette256(6)
	case "white":
		return cellgrid.Palette256(7)
	case "grey", "gray":
		return cellgrid.Palette256(8)
	default:
		return cellgrid.Default
	}
}
