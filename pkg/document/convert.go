package document

import (
	"fmt"
	"strings"

	"github.com/guidecraft/guidecraft/pkg/guide"
)

// Default contents for step containers whose own text is empty.
const (
	defaultMultistepContent = "Multi-step action"
	defaultGuidedContent    = "Guided action"
)

// Result is the outcome of a document conversion. Conversion is
// total: unconvertible constructs degrade to markdown blocks and are
// reported in Warnings, never as errors.
type Result struct {
	Blocks   []guide.Block
	Warnings []string
}

type converter struct {
	warnings []string
}

func (c *converter) warnf(format string, args ...interface{}) {
	c.warnings = append(c.warnings, fmt.Sprintf(format, args...))
}

// Convert walks a document tree and produces the ordered guide block
// sequence. A final pass coalesces adjacent top-level markdown
// blocks; sections merge their own blocks during their conversion
// call, so the pass does not recurse.
func Convert(root *Node) *Result {
	c := &converter{}
	blocks := c.convertNodes(root.Content)
	return &Result{
		Blocks:   guide.MergeMarkdownBlocks(blocks),
		Warnings: c.warnings,
	}
}

func (c *converter) convertNodes(nodes []*Node) []guide.Block {
	var blocks []guide.Block
	for _, node := range nodes {
		blocks = append(blocks, c.convertNode(node)...)
	}
	return blocks
}

func (c *converter) convertNode(node *Node) []guide.Block {
	switch node.Type {
	case KindHeading:
		return c.convertHeading(node)
	case KindParagraph:
		return c.convertParagraph(node)
	case KindBulletList:
		return c.convertList(node, false)
	case KindOrderedList:
		return c.convertList(node, true)
	case KindCodeBlock:
		return c.convertCodeBlock(node)
	case KindBlockquote:
		return c.convertBlockquote(node)
	case KindHorizontalRule:
		return []guide.Block{guide.NewMarkdownBlock("---")}
	case KindGuideSection:
		return c.convertSection(node)
	case KindInteractiveSpan:
		return c.convertInteractiveSpan(node)
	default:
		return c.convertUnknown(node)
	}
}

func (c *converter) convertHeading(node *Node) []guide.Block {
	level := node.AttrInt("level")
	if level < 1 {
		level = 1
	}
	text := serializeInline(node)
	if strings.TrimSpace(text) == "" {
		return nil
	}
	content := strings.Repeat("#", level) + " " + text
	return []guide.Block{guide.NewMarkdownBlock(content)}
}

// convertParagraph extracts direct interactive-span children as their
// own blocks. When a paragraph mixes spans with plain text, the plain
// text is dropped with a warning; this is a deliberate simplification
// inherited from the original authoring surface.
func (c *converter) convertParagraph(node *Node) []guide.Block {
	var spans []*Node
	for _, child := range node.Content {
		if child.Type == KindInteractiveSpan {
			spans = append(spans, child)
		}
	}

	if len(spans) == 0 {
		text := serializeInline(node)
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return []guide.Block{guide.NewMarkdownBlock(text)}
	}

	if dropped := strings.TrimSpace(node.plainText()); dropped != "" {
		c.warnf("paragraph text %q dropped alongside interactive elements", dropped)
	}

	var blocks []guide.Block
	for _, span := range spans {
		blocks = append(blocks, c.convertInteractiveSpan(span)...)
	}
	return blocks
}

// convertList walks list items in order. Consecutive non-interactive
// items accumulate into one markdown block; the run is flushed
// whenever an interactive item interrupts it, preserving relative
// block ordering while keeping block-count fragmentation low.
func (c *converter) convertList(node *Node, ordered bool) []guide.Block {
	var blocks []guide.Block
	var lines []string

	flush := func() {
		if len(lines) == 0 {
			return
		}
		blocks = append(blocks, guide.NewMarkdownBlock(strings.Join(lines, "\n")))
		lines = nil
	}

	itemNumber := 0
	for _, item := range node.Content {
		if item.Type != KindListItem {
			continue
		}
		itemNumber++

		if c.isInteractiveItem(item) {
			flush()
			blocks = append(blocks, c.convertInteractiveListItem(item)...)
			continue
		}

		text := itemInlineText(item)
		if ordered {
			lines = append(lines, fmt.Sprintf("%d. %s", itemNumber, text))
		} else {
			lines = append(lines, "- "+text)
		}
	}
	flush()

	return blocks
}

// isInteractiveItem reports whether a list item takes the interactive
// conversion path: flagged with the reserved class marker or carrying
// interactive spans.
func (c *converter) isInteractiveItem(item *Node) bool {
	return item.HasClass(InteractiveItemClass) || len(item.findInteractiveSpans()) > 0
}

// convertInteractiveListItem converts one interactive list item. A
// single span converts directly; several spans with no container
// action of their own collapse into one implicit multistep whose
// steps follow document order.
func (c *converter) convertInteractiveListItem(item *Node) []guide.Block {
	spans := item.findInteractiveSpans()
	switch {
	case len(spans) == 0:
		text := itemInlineText(item)
		c.warnf("interactive list item has no action elements")
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return []guide.Block{guide.NewMarkdownBlock(text)}

	case len(spans) == 1:
		return c.convertInteractiveSpan(spans[0])

	default:
		for _, span := range spans {
			if isContainerSpan(span) {
				// An explicit container owns its steps; convert spans
				// one by one instead of grouping them.
				var blocks []guide.Block
				for _, s := range spans {
					blocks = append(blocks, c.convertInteractiveSpan(s)...)
				}
				return blocks
			}
		}

		steps := c.extractSteps(spans, false)
		if len(steps) == 0 {
			c.warnf("interactive list item has no steps")
			return nil
		}
		content := strings.TrimSpace(item.plainText())
		if content == "" {
			content = defaultMultistepContent
		}
		block := guide.NewMultistepBlock(content, steps)
		return []guide.Block{block}
	}
}

func (c *converter) convertCodeBlock(node *Node) []guide.Block {
	language := node.Attr("language")
	code := node.plainText()
	content := "```" + language + "\n" + code + "\n```"
	return []guide.Block{guide.NewMarkdownBlock(content)}
}

func (c *converter) convertBlockquote(node *Node) []guide.Block {
	var lines []string
	for _, child := range node.Content {
		for _, line := range strings.Split(serializeInline(child), "\n") {
			lines = append(lines, "> "+line)
		}
	}
	if len(lines) == 0 {
		return nil
	}
	return []guide.Block{guide.NewMarkdownBlock(strings.Join(lines, "\n"))}
}

// convertSection converts a section-kind node. The first child
// heading becomes the section title and is excluded from the nested
// blocks. Nested blocks are merged here, which is why the document
// level merge pass does not recurse.
func (c *converter) convertSection(node *Node) []guide.Block {
	children := node.Content
	title := ""
	if len(children) > 0 && children[0].Type == KindHeading {
		title = strings.TrimSpace(serializeInline(children[0]))
		children = children[1:]
	}

	var blocks []guide.Block
	for _, child := range children {
		if child.Type == KindGuideSection {
			c.warnf("nested section %q flattened; sections cannot nest", child.Attr("id"))
			blocks = append(blocks, c.convertSection(child)[0].Blocks...)
			continue
		}
		blocks = append(blocks, c.convertNode(child)...)
	}

	section := guide.Block{
		Type:         guide.BlockTypeSection,
		ID:           node.Attr("id"),
		Title:        title,
		Blocks:       guide.MergeMarkdownBlocks(blocks),
		Requirements: guide.ParseRequirements(node.Attr("data-requirements")),
	}
	return []guide.Block{section}
}

func (c *converter) convertUnknown(node *Node) []guide.Block {
	text := strings.TrimSpace(node.anyText())
	if text == "" {
		return nil
	}
	c.warnf("unknown node kind %q converted to markdown", node.Type)
	return []guide.Block{guide.NewMarkdownBlock(text)}
}

// convertInteractiveSpan converts one interactive span into a block.
// The action attribute decides the shape: multistep and guided are
// containers whose descendant spans become steps; anything else is a
// single atomic interactive block.
func (c *converter) convertInteractiveSpan(span *Node) []guide.Block {
	action := span.Attr("action")
	if action == "" {
		c.warnf("interactive element missing action, skipped")
		return nil
	}

	switch action {
	case guide.ActionMultistep:
		return c.convertStepContainer(span, guide.BlockTypeMultistep)
	case guide.ActionGuided:
		return c.convertStepContainer(span, guide.BlockTypeGuided)
	}

	reftarget := span.Attr("reftarget")
	if reftarget == "" {
		c.warnf("interactive element with action %q missing reftarget, skipped", action)
		return nil
	}

	block := guide.Block{
		Type:         guide.BlockTypeInteractive,
		Action:       action,
		RefTarget:    reftarget,
		Content:      span.plainTextOrContentAttr(),
		TargetValue:  span.Attr("targetvalue"),
		Requirements: guide.ParseRequirements(span.Attr("requirements")),
		Tooltip:      c.tooltipFor(span),
		DoIt:         span.AttrBoolPtr("doIt"),
	}
	return []guide.Block{block}
}

// tooltipFor reads the dedicated tooltip attribute first, falling
// back to nested comment nodes joined with blank lines (the legacy
// representation).
func (c *converter) tooltipFor(span *Node) string {
	if tooltip := span.Attr("tooltip"); tooltip != "" {
		return tooltip
	}
	return strings.Join(span.comments(), "\n\n")
}

func (c *converter) convertStepContainer(span *Node, blockType guide.BlockType) []guide.Block {
	guided := blockType == guide.BlockTypeGuided
	steps := c.extractSteps(span.findInteractiveSpans(), guided)
	if len(steps) == 0 {
		c.warnf("%s container has no steps, skipped", span.Attr("action"))
		return nil
	}

	content := strings.TrimSpace(span.plainText())

	block := guide.Block{
		Type:         blockType,
		Content:      content,
		Steps:        steps,
		Requirements: guide.ParseRequirements(span.Attr("requirements")),
	}

	if guided {
		if block.Content == "" {
			block.Content = defaultGuidedContent
		}
		block.StepTimeout = span.AttrInt("stepTimeout")
		block.Skippable = span.AttrBool("skippable")
		block.CompleteEarly = span.AttrBool("completeEarly")
	} else if block.Content == "" {
		block.Content = defaultMultistepContent
	}

	return []guide.Block{block}
}

// extractSteps turns interactive spans into steps, skipping nested
// containers (they keep their own steps) and spans with incomplete
// attributes.
func (c *converter) extractSteps(spans []*Node, guided bool) []guide.Step {
	var steps []guide.Step
	for _, span := range spans {
		if isContainerSpan(span) {
			continue
		}
		action := span.Attr("action")
		reftarget := span.Attr("reftarget")
		if action == "" || reftarget == "" {
			c.warnf("step missing action or reftarget, skipped")
			continue
		}
		step := guide.Step{
			Action:       action,
			RefTarget:    reftarget,
			TargetValue:  span.Attr("targetvalue"),
			Requirements: guide.ParseRequirements(span.Attr("requirements")),
			Tooltip:      c.tooltipFor(span),
		}
		if guided {
			step.Skippable = span.AttrBool("skippable")
		}
		steps = append(steps, step)
	}
	return steps
}

func itemInlineText(item *Node) string {
	var parts []string
	for _, child := range item.Content {
		if text := serializeInline(child); strings.TrimSpace(text) != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}
