package vocab

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// parseMarkdown collects the body rows of every table in a markdown
// document. Header rows are skipped.
func parseMarkdown(source []byte) List {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	doc := md.Parser().Parse(text.NewReader(source))

	var list List
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		row, ok := n.(*extast.TableRow)
		if !ok {
			return ast.WalkContinue, nil
		}

		var fields []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			fields = append(fields, plainText(cell, source))
		}
		if strings.TrimSpace(strings.Join(fields, "")) != "" {
			list = append(list, newEntry(fields))
		}
		return ast.WalkSkipChildren, nil
	})

	return list
}

// plainText extracts the text of a node with inline formatting removed.
func plainText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}
