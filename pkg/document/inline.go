package document

import "strings"

// serializeInline flattens a block-level node's inline content to a
// markdown-flavored string. Marks wrap in a fixed application order,
// bold, then italic, then code, then link, so a run carrying both
// bold and link marks serializes as [**x**](href).
//
// Interactive comments never appear in plain serialization; they only
// ever surface as tooltips. Interactive spans reached here (i.e.
// inside content that was not extracted as its own block) degrade to
// their inner text.
func serializeInline(n *Node) string {
	var b strings.Builder
	for _, child := range n.Content {
		serializeInlineNode(child, &b)
	}
	return b.String()
}

func serializeInlineNode(n *Node, b *strings.Builder) {
	switch n.Type {
	case KindText:
		b.WriteString(applyMarks(n))
	case KindHardBreak:
		b.WriteByte('\n')
	case KindInteractiveComment:
		// skipped
	case KindInteractiveSpan:
		b.WriteString(n.plainTextOrContentAttr())
	default:
		for _, child := range n.Content {
			serializeInlineNode(child, b)
		}
	}
}

func applyMarks(n *Node) string {
	out := n.Text
	if n.HasMark(MarkBold) {
		out = "**" + out + "**"
	}
	if n.HasMark(MarkItalic) {
		out = "*" + out + "*"
	}
	if n.HasMark(MarkCode) {
		out = "`" + out + "`"
	}
	if n.HasMark(MarkLink) {
		out = "[" + out + "](" + n.MarkAttr(MarkLink, "href") + ")"
	}
	return out
}

// plainTextOrContentAttr returns an interactive span's visible text:
// the dedicated content attribute of the atomic representation when
// present, otherwise the span's inner text (legacy non-atomic
// representation).
func (n *Node) plainTextOrContentAttr() string {
	if content := n.Attr("content"); content != "" {
		return content
	}
	return n.plainText()
}
