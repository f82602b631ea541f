package markdown

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

type ansiRenderer struct {
	bold      lipgloss.Style
	italic    lipgloss.Style
	accent    lipgloss.Style
	muted     lipgloss.Style
	bullet    lipgloss.Style
	underline lipgloss.Style
}

func newRenderer(theme Theme) *ansiRenderer {
	return &ansiRenderer{
		bold:      lipgloss.NewStyle().Bold(true),
		italic:    lipgloss.NewStyle().Italic(true),
		accent:    lipgloss.NewStyle().Foreground(ansiColor(theme.Accent)).Bold(true),
		muted:     lipgloss.NewStyle().Foreground(ansiColor(theme.Muted)).Faint(true),
		bullet:    lipgloss.NewStyle().Foreground(ansiColor(theme.Success)),
		underline: lipgloss.NewStyle().Underline(true),
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}

func (r *ansiRenderer) render(source []byte, width int) string {
	doc := goldmark.DefaultParser().Parse(text.NewReader(source))
	var buf bytes.Buffer
	for c := doc.FirstChild(); c != nil; c = c.NextSibling() {
		r.renderBlock(c, source, width, &buf)
		if c.NextSibling() != nil {
			buf.WriteString("\n")
		}
	}
	return strings.TrimRight(buf.String(), "\n")
}

func (r *ansiRenderer) renderBlock(node ast.Node, source []byte, width int, buf *bytes.Buffer) {
	switch n := node.(type) {
	case *ast.Heading:
		buf.WriteString(r.wrap(r.accent.Render(r.inline(n, source)), width))
		buf.WriteString("\n")

	case *ast.Paragraph, *ast.TextBlock:
		buf.WriteString(r.wrap(r.inline(n, source), width))
		buf.WriteString("\n")

	case *ast.List:
		r.renderList(n, source, width, buf, 0)

	case *ast.FencedCodeBlock, *ast.CodeBlock:
		gutter := r.muted.Render("│") + " "
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.WriteString(gutter + strings.TrimRight(string(seg.Value(source)), "\n") + "\n")
		}

	case *ast.ThematicBreak:
		buf.WriteString(r.muted.Render(strings.Repeat("─", min(width, 40))) + "\n")

	default:
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			r.renderBlock(c, source, width, buf)
		}
	}
}

func (r *ansiRenderer) renderList(list *ast.List, source []byte, width int, buf *bytes.Buffer, depth int) {
	num := list.Start
	for c := list.FirstChild(); c != nil; c = c.NextSibling() {
		item, ok := c.(*ast.ListItem)
		if !ok {
			continue
		}
		marker := "• "
		if list.IsOrdered() {
			marker = fmt.Sprintf("%d. ", num)
			num++
		}
		indent := strings.Repeat("  ", depth)
		for ic := item.FirstChild(); ic != nil; ic = ic.NextSibling() {
			if sub, ok := ic.(*ast.List); ok {
				r.renderList(sub, source, width, buf, depth+1)
				continue
			}
			r.writeItem(buf, indent, marker, r.inline(ic, source), width)
			marker = strings.Repeat(" ", len([]rune(marker)))
		}
	}
}

// writeItem writes a list item with continuation lines aligned under the text.
func (r *ansiRenderer) writeItem(buf *bytes.Buffer, indent, marker, content string, width int) {
	markerWidth := len([]rune(marker))
	itemWidth := max(width-len(indent)-markerWidth, 10)
	lines := strings.Split(r.wrap(content, itemWidth), "\n")
	styled := r.bullet.Render(marker)
	if strings.TrimSpace(marker) == "" {
		styled = marker
	}
	for i, line := range lines {
		if i == 0 {
			buf.WriteString(indent + styled + line + "\n")
			continue
		}
		buf.WriteString(indent + strings.Repeat(" ", markerWidth) + line + "\n")
	}
}

func (r *ansiRenderer) wrap(s string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(s)
}

func (r *ansiRenderer) inline(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		r.renderInline(c, source, &buf)
	}
	return buf.String()
}

func (r *ansiRenderer) renderInline(node ast.Node, source []byte, buf *bytes.Buffer) {
	switch n := node.(type) {
	case *ast.Text:
		buf.Write(n.Segment.Value(source))
		if n.SoftLineBreak() {
			buf.WriteByte(' ')
		}
		if n.HardLineBreak() {
			buf.WriteByte('\n')
		}
	case *ast.String:
		buf.Write(n.Value)
	case *ast.Emphasis:
		if n.Level == 1 {
			buf.WriteString(r.italic.Render(r.inline(n, source)))
		} else {
			buf.WriteString(r.bold.Render(r.inline(n, source)))
		}
	case *ast.CodeSpan:
		buf.WriteString(r.bold.Render(r.inline(n, source)))
	case *ast.Link:
		buf.WriteString(r.underline.Render(r.inline(n, source)))
		buf.WriteString(" " + r.muted.Render("("+string(n.Destination)+")"))
	case *ast.AutoLink:
		buf.WriteString(r.underline.Render(string(n.URL(source))))
	default:
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			r.renderInline(c, source, buf)
		}
	}
}
