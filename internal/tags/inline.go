package tags

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// inlineTagRegex matches #tag and #parent/child. The # must start the text
// or follow whitespace, so headings ("# Title"), URL fragments and
// mid-word hashes do not count.
var inlineTagRegex = regexp.MustCompile(`(?:^|\s)#([\p{L}\p{N}\p{M}_\-/]+)`)

// Inline returns the tags written in a markdown body. Nested tags are kept
// whole ("#area/work" yields "area/work"). Code blocks, code spans and raw
// HTML are ignored.
func Inline(body string) Set {
	out := NewSet()
	if !strings.Contains(body, "#") {
		return out
	}

	masked := maskCode([]byte(body))
	for _, m := range inlineTagRegex.FindAllStringSubmatch(string(masked), -1) {
		tag := strings.TrimRight(m[1], "/")
		if tag == "" || allDigits(tag) {
			continue
		}
		out.Add(tag)
	}
	return out
}

// maskCode blanks every byte that goldmark places inside code or raw HTML.
// Newlines are kept so line structure (and the whitespace rule) still holds.
func maskCode(src []byte) []byte {
	masked := make([]byte, len(src))
	copy(masked, src)

	blank := func(start, stop int) {
		for i := start; i < stop && i < len(masked); i++ {
			if masked[i] != '\n' {
				masked[i] = ' '
			}
		}
	}
	blankLines := func(n ast.Node) {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			blank(seg.Start, seg.Stop)
		}
	}

	doc := goldmark.New().Parser().Parse(text.NewReader(src))
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.FencedCodeBlock:
			if node.Info != nil {
				blank(node.Info.Segment.Start, node.Info.Segment.Stop)
			}
			blankLines(node)
			return ast.WalkSkipChildren, nil
		case *ast.CodeBlock, *ast.HTMLBlock:
			blankLines(node)
			return ast.WalkSkipChildren, nil
		case *ast.CodeSpan:
			for c := node.FirstChild(); c != nil; c = c.NextSibling() {
				if t, ok := c.(*ast.Text); ok {
					blank(t.Segment.Start, t.Segment.Stop)
				}
			}
			return ast.WalkSkipChildren, nil
		case *ast.RawHTML:
			for i := 0; i < node.Segments.Len(); i++ {
				seg := node.Segments.At(i)
				blank(seg.Start, seg.Stop)
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return masked
}

func allDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '/' {
			return false
		}
	}
	return true
}
