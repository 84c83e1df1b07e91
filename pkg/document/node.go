// Package document models the rich-text document tree produced by the
// WYSIWYG authoring surface and converts it to and from guide blocks.
package document

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Node kinds understood by the converter. The first group mirrors
// standard rich-text structure; the second group are the specialized
// kinds carrying guide semantics.
const (
	KindDoc            = "doc"
	KindHeading        = "heading"
	KindParagraph      = "paragraph"
	KindBulletList     = "bulletList"
	KindOrderedList    = "orderedList"
	KindListItem       = "listItem"
	KindCodeBlock      = "codeBlock"
	KindBlockquote     = "blockquote"
	KindHorizontalRule = "horizontalRule"
	KindHardBreak      = "hardBreak"
	KindText           = "text"

	KindInteractiveSpan    = "interactiveSpan"
	KindInteractiveComment = "interactiveComment"
	KindGuideSection       = "guideSection"
)

// Mark types applied to text runs.
const (
	MarkBold   = "bold"
	MarkItalic = "italic"
	MarkCode   = "code"
	MarkLink   = "link"
)

// InteractiveItemClass is the reserved CSS-class marker flagging a
// list item as interactive.
const InteractiveItemClass = "interactive-item"

type Mark struct {
	Type  string                 `json:"type"`
	Attrs map[string]interface{} `json:"attrs,omitempty"`
}

// Node is one node of the document tree. Text is set only for
// text-kind leaves; Content holds child nodes in document order.
type Node struct {
	Type    string                 `json:"type"`
	Attrs   map[string]interface{} `json:"attrs,omitempty"`
	Marks   []Mark                 `json:"marks,omitempty"`
	Text    string                 `json:"text,omitempty"`
	Content []*Node                `json:"content,omitempty"`
}

// Parse decodes a document tree from JSON and checks the root kind.
func Parse(data []byte) (*Node, error) {
	var root Node
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, errors.WithStack(err)
	}
	if root.Type != KindDoc {
		return nil, errors.Errorf("root node is %q, want %q", root.Type, KindDoc)
	}
	return &root, nil
}

// Attr returns a node attribute coerced to string. Non-string scalars
// are stringified; absent attributes yield "".
func (n *Node) Attr(name string) string {
	if n.Attrs == nil {
		return ""
	}
	value, ok := n.Attrs[name]
	if !ok || value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// AttrInt returns an integer attribute, or 0 when absent or
// unparsable.
func (n *Node) AttrInt(name string) int {
	raw := n.Attr(name)
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return value
}

// AttrBool returns a boolean attribute, or false when absent or
// unparsable.
func (n *Node) AttrBool(name string) bool {
	value, err := strconv.ParseBool(n.Attr(name))
	if err != nil {
		return false
	}
	return value
}

// AttrBoolPtr returns a boolean attribute, or nil when absent so the
// corresponding JSON field can be omitted.
func (n *Node) AttrBoolPtr(name string) *bool {
	raw := n.Attr(name)
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &value
}

// HasClass reports whether the node's class attribute contains the
// given space-separated class name.
func (n *Node) HasClass(class string) bool {
	for _, c := range strings.Fields(n.Attr("class")) {
		if c == class {
			return true
		}
	}
	return false
}

// HasMark reports whether the node carries a mark of the given type.
func (n *Node) HasMark(markType string) bool {
	for _, m := range n.Marks {
		if m.Type == markType {
			return true
		}
	}
	return false
}

// MarkAttr returns an attribute of the first mark of the given type.
func (n *Node) MarkAttr(markType, name string) string {
	for _, m := range n.Marks {
		if m.Type != markType {
			continue
		}
		if v, ok := m.Attrs[name].(string); ok {
			return v
		}
		return ""
	}
	return ""
}

// plainText concatenates every text run under n in document order,
// excluding descendant interactive spans and comments. It is the text
// a reader sees around the interactive elements.
func (n *Node) plainText() string {
	var b strings.Builder
	for _, child := range n.Content {
		child.collectPlainText(&b)
	}
	return b.String()
}

func (n *Node) collectPlainText(b *strings.Builder) {
	switch n.Type {
	case KindInteractiveSpan, KindInteractiveComment:
		return
	case KindText:
		b.WriteString(n.Text)
		return
	case KindHardBreak:
		b.WriteByte('\n')
		return
	}
	for _, child := range n.Content {
		child.collectPlainText(b)
	}
}

// anyText concatenates every text run under n including interactive
// content. Used to decide whether an unknown node is worth degrading
// to markdown.
func (n *Node) anyText() string {
	if n.Type == KindText {
		return n.Text
	}
	var b strings.Builder
	for _, child := range n.Content {
		b.WriteString(child.anyText())
	}
	return b.String()
}

// findInteractiveSpans collects descendant interactive spans in
// document order. Descent stops at multistep/guided containers so a
// nested container keeps ownership of its own steps; the container
// itself is still reported.
func (n *Node) findInteractiveSpans() []*Node {
	var spans []*Node
	for _, child := range n.Content {
		if child.Type == KindInteractiveSpan {
			spans = append(spans, child)
			if isContainerSpan(child) {
				continue
			}
		}
		spans = append(spans, child.findInteractiveSpans()...)
	}
	return spans
}

func isContainerSpan(n *Node) bool {
	action := n.Attr("action")
	return action == "multistep" || action == "guided"
}

// comments collects the text of direct and nested interactive-comment
// children, one entry per comment node.
func (n *Node) comments() []string {
	var result []string
	for _, child := range n.Content {
		if child.Type == KindInteractiveComment {
			if text := strings.TrimSpace(child.anyText()); text != "" {
				result = append(result, text)
			}
			continue
		}
		result = append(result, child.comments()...)
	}
	return result
}
