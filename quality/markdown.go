package quality

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
	),
)

// Structure counts the block elements of a Markdown document.
type Structure struct {
	Headings   []int `json:"headings"`
	ListItems  int   `json:"list_items"`
	CodeBlocks int   `json:"code_blocks"`
	Paragraphs int   `json:"paragraphs"`
}

// MarkdownStructure parses text and records heading levels in document
// order along with list item, code block and paragraph counts.
func MarkdownStructure(src string) Structure {
	source := []byte(src)
	doc := markdown.Parser().Parse(text.NewReader(source))

	var s Structure
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			s.Headings = append(s.Headings, node.Level)
		case *ast.ListItem:
			s.ListItems++
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			s.CodeBlocks++
		case *ast.Paragraph:
			s.Paragraphs++
		}
		return ast.WalkContinue, nil
	})
	return s
}

// StructurePreserved reports whether translated keeps the headings, list
// items and code blocks of original. Paragraph counts may differ.
func StructurePreserved(original, translated string) bool {
	a, b := MarkdownStructure(original), MarkdownStructure(translated)
	if len(a.Headings) != len(b.Headings) {
		return false
	}
	for i := range a.Headings {
		if a.Headings[i] != b.Headings[i] {
			return false
		}
	}
	return a.ListItems == b.ListItems && a.CodeBlocks == b.CodeBlocks
}
