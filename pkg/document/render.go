package document

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/guidecraft/guidecraft/pkg/guide"
)

// Render builds the document tree for a guide so it can be loaded
// into the rich-text authoring surface. Markdown block content is
// parsed with goldmark back into structural nodes. Conditional blocks
// have no document-tree representation and are reported as warnings.
func Render(g *guide.Guide) (*Node, []string) {
	r := &renderer{parser: goldmark.DefaultParser()}

	root := &Node{Type: KindDoc}
	for _, block := range g.Blocks {
		root.Content = append(root.Content, r.renderBlock(block)...)
	}
	return root, r.warnings
}

type renderer struct {
	parser   parser.Parser
	warnings []string
}

func (r *renderer) renderBlock(block guide.Block) []*Node {
	switch block.Type {
	case guide.BlockTypeMarkdown:
		return r.renderMarkdown(block.Content)
	case guide.BlockTypeInteractive:
		return []*Node{wrapInParagraph(renderInteractiveSpan(block))}
	case guide.BlockTypeMultistep, guide.BlockTypeGuided:
		return []*Node{wrapInParagraph(renderStepContainer(block))}
	case guide.BlockTypeSection:
		return []*Node{r.renderSection(block)}
	case guide.BlockTypeConditional:
		r.warnings = append(r.warnings, "conditional block has no document representation, skipped")
		return nil
	default:
		r.warnings = append(r.warnings, "unknown block type "+string(block.Type)+", skipped")
		return nil
	}
}

func wrapInParagraph(n *Node) *Node {
	return &Node{Type: KindParagraph, Content: []*Node{n}}
}

func renderInteractiveSpan(block guide.Block) *Node {
	attrs := map[string]interface{}{
		"action":    block.Action,
		"reftarget": block.RefTarget,
	}
	setAttr(attrs, "content", block.Content)
	setAttr(attrs, "targetvalue", block.TargetValue)
	setAttr(attrs, "tooltip", block.Tooltip)
	setAttr(attrs, "requirements", strings.Join(block.Requirements, ","))
	if block.DoIt != nil {
		attrs["doIt"] = *block.DoIt
	}
	return &Node{Type: KindInteractiveSpan, Attrs: attrs}
}

func renderStepContainer(block guide.Block) *Node {
	attrs := map[string]interface{}{
		"action": string(guide.ActionMultistep),
	}
	if block.Type == guide.BlockTypeGuided {
		attrs["action"] = guide.ActionGuided
		if block.StepTimeout > 0 {
			attrs["stepTimeout"] = block.StepTimeout
		}
		if block.Skippable {
			attrs["skippable"] = true
		}
		if block.CompleteEarly {
			attrs["completeEarly"] = true
		}
	}
	setAttr(attrs, "requirements", strings.Join(block.Requirements, ","))

	container := &Node{Type: KindInteractiveSpan, Attrs: attrs}
	if block.Content != "" {
		container.Content = append(container.Content, &Node{Type: KindText, Text: block.Content})
	}
	for _, step := range block.Steps {
		container.Content = append(container.Content, renderStep(step))
	}
	return container
}

func renderStep(step guide.Step) *Node {
	attrs := map[string]interface{}{
		"action":    step.Action,
		"reftarget": step.RefTarget,
	}
	setAttr(attrs, "targetvalue", step.TargetValue)
	setAttr(attrs, "tooltip", step.Tooltip)
	setAttr(attrs, "requirements", strings.Join(step.Requirements, ","))
	if step.Skippable {
		attrs["skippable"] = true
	}
	return &Node{Type: KindInteractiveSpan, Attrs: attrs}
}

func (r *renderer) renderSection(block guide.Block) *Node {
	attrs := map[string]interface{}{}
	setAttr(attrs, "id", block.ID)
	setAttr(attrs, "data-requirements", strings.Join(block.Requirements, ","))

	section := &Node{Type: KindGuideSection, Attrs: attrs}
	if block.Title != "" {
		section.Content = append(section.Content, &Node{
			Type:    KindHeading,
			Attrs:   map[string]interface{}{"level": 2},
			Content: []*Node{{Type: KindText, Text: block.Title}},
		})
	}
	for _, nested := range block.Blocks {
		section.Content = append(section.Content, r.renderBlock(nested)...)
	}
	return section
}

func setAttr(attrs map[string]interface{}, name, value string) {
	if value != "" {
		attrs[name] = value
	}
}

// renderMarkdown parses a markdown block's content into document
// nodes so that headings, lists, quotes, and fences survive as
// structure rather than raw text.
func (r *renderer) renderMarkdown(content string) []*Node {
	source := []byte(content)
	doc := r.parser.Parse(text.NewReader(source))

	var nodes []*Node
	for astNode := doc.FirstChild(); astNode != nil; astNode = astNode.NextSibling() {
		if n := r.renderMarkdownNode(astNode, source); n != nil {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

func (r *renderer) renderMarkdownNode(astNode ast.Node, source []byte) *Node {
	switch astNode.Kind() {
	case ast.KindHeading:
		heading := astNode.(*ast.Heading)
		return &Node{
			Type:    KindHeading,
			Attrs:   map[string]interface{}{"level": heading.Level},
			Content: renderInlineChildren(astNode, source, nil),
		}

	case ast.KindParagraph, ast.KindTextBlock:
		return &Node{
			Type:    KindParagraph,
			Content: renderInlineChildren(astNode, source, nil),
		}

	case ast.KindFencedCodeBlock:
		fenced := astNode.(*ast.FencedCodeBlock)
		attrs := map[string]interface{}{}
		if language := string(fenced.Language(source)); language != "" {
			attrs["language"] = language
		}
		return &Node{
			Type:    KindCodeBlock,
			Attrs:   attrs,
			Content: []*Node{{Type: KindText, Text: codeLines(astNode, source)}},
		}

	case ast.KindCodeBlock:
		return &Node{
			Type:    KindCodeBlock,
			Content: []*Node{{Type: KindText, Text: codeLines(astNode, source)}},
		}

	case ast.KindList:
		list := astNode.(*ast.List)
		kind := KindBulletList
		if list.IsOrdered() {
			kind = KindOrderedList
		}
		node := &Node{Type: kind}
		for item := astNode.FirstChild(); item != nil; item = item.NextSibling() {
			itemNode := &Node{Type: KindListItem}
			for child := item.FirstChild(); child != nil; child = child.NextSibling() {
				if n := r.renderMarkdownNode(child, source); n != nil {
					itemNode.Content = append(itemNode.Content, n)
				}
			}
			node.Content = append(node.Content, itemNode)
		}
		return node

	case ast.KindBlockquote:
		node := &Node{Type: KindBlockquote}
		for child := astNode.FirstChild(); child != nil; child = child.NextSibling() {
			if n := r.renderMarkdownNode(child, source); n != nil {
				node.Content = append(node.Content, n)
			}
		}
		return node

	case ast.KindThematicBreak:
		return &Node{Type: KindHorizontalRule}

	default:
		if raw := strings.TrimSpace(string(astNode.Text(source))); raw != "" {
			return &Node{
				Type:    KindParagraph,
				Content: []*Node{{Type: KindText, Text: raw}},
			}
		}
		return nil
	}
}

func renderInlineChildren(astNode ast.Node, source []byte, marks []Mark) []*Node {
	var nodes []*Node
	for child := astNode.FirstChild(); child != nil; child = child.NextSibling() {
		nodes = append(nodes, renderInlineNode(child, source, marks)...)
	}
	return nodes
}

func renderInlineNode(astNode ast.Node, source []byte, marks []Mark) []*Node {
	switch astNode.Kind() {
	case ast.KindText:
		t := astNode.(*ast.Text)
		value := string(t.Segment.Value(source))
		if t.SoftLineBreak() {
			value += "\n"
		}
		nodes := []*Node{{Type: KindText, Text: value, Marks: copyMarks(marks)}}
		if t.HardLineBreak() {
			nodes = append(nodes, &Node{Type: KindHardBreak})
		}
		return nodes

	case ast.KindEmphasis:
		emphasis := astNode.(*ast.Emphasis)
		mark := Mark{Type: MarkItalic}
		if emphasis.Level >= 2 {
			mark.Type = MarkBold
		}
		return renderInlineChildren(astNode, source, append(copyMarks(marks), mark))

	case ast.KindCodeSpan:
		value := string(astNode.Text(source))
		withCode := append(copyMarks(marks), Mark{Type: MarkCode})
		return []*Node{{Type: KindText, Text: value, Marks: withCode}}

	case ast.KindLink:
		link := astNode.(*ast.Link)
		mark := Mark{
			Type:  MarkLink,
			Attrs: map[string]interface{}{"href": string(link.Destination)},
		}
		return renderInlineChildren(astNode, source, append(copyMarks(marks), mark))

	case ast.KindAutoLink:
		autoLink := astNode.(*ast.AutoLink)
		url := string(autoLink.URL(source))
		mark := Mark{
			Type:  MarkLink,
			Attrs: map[string]interface{}{"href": url},
		}
		return []*Node{{Type: KindText, Text: url, Marks: append(copyMarks(marks), mark)}}

	default:
		if value := string(astNode.Text(source)); value != "" {
			return []*Node{{Type: KindText, Text: value, Marks: copyMarks(marks)}}
		}
		return nil
	}
}

func copyMarks(marks []Mark) []Mark {
	if len(marks) == 0 {
		return nil
	}
	out := make([]Mark, len(marks))
	copy(out, marks)
	return out
}

func codeLines(astNode ast.Node, source []byte) string {
	var b strings.Builder
	lines := astNode.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		b.Write(line.Value(source))
	}
	return strings.TrimRight(b.String(), "\n")
}
