package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guidecraft/guidecraft/pkg/guide"
)

func doc(children ...*Node) *Node {
	return &Node{Type: KindDoc, Content: children}
}

func para(children ...*Node) *Node {
	return &Node{Type: KindParagraph, Content: children}
}

func textN(s string, marks ...Mark) *Node {
	return &Node{Type: KindText, Text: s, Marks: marks}
}

func spanN(attrs map[string]interface{}, children ...*Node) *Node {
	return &Node{Type: KindInteractiveSpan, Attrs: attrs, Content: children}
}

func heading(level int, text string) *Node {
	return &Node{
		Type:    KindHeading,
		Attrs:   map[string]interface{}{"level": level},
		Content: []*Node{textN(text)},
	}
}

func TestConvert_Heading(t *testing.T) {
	result := Convert(doc(heading(3, "Getting started")))
	require.Len(t, result.Blocks, 1)
	assert.Equal(t, guide.BlockTypeMarkdown, result.Blocks[0].Type)
	assert.Equal(t, "### Getting started", result.Blocks[0].Content)
	assert.Empty(t, result.Warnings)
}

func TestConvert_ParagraphMarks(t *testing.T) {
	result := Convert(doc(para(
		textN("see "),
		textN("docs", Mark{Type: MarkBold}, Mark{Type: MarkLink, Attrs: map[string]interface{}{"href": "https://example.com"}}),
	)))
	require.Len(t, result.Blocks, 1)
	assert.Equal(t, "see [**docs**](https://example.com)", result.Blocks[0].Content)
}

func TestConvert_EmptyParagraphYieldsNoBlock(t *testing.T) {
	result := Convert(doc(para(textN("   "))))
	assert.Empty(t, result.Blocks)
	assert.Empty(t, result.Warnings)
}

func TestConvert_InteractiveSpan(t *testing.T) {
	result := Convert(doc(para(spanN(map[string]interface{}{
		"action":       "highlight",
		"reftarget":    "#save-button",
		"content":      "Click save",
		"requirements": "logged-in, admin",
		"tooltip":      "The save button",
	}))))
	require.Len(t, result.Blocks, 1)
	block := result.Blocks[0]
	assert.Equal(t, guide.BlockTypeInteractive, block.Type)
	assert.Equal(t, "highlight", block.Action)
	assert.Equal(t, "#save-button", block.RefTarget)
	assert.Equal(t, "Click save", block.Content)
	assert.Equal(t, []string{"logged-in", "admin"}, block.Requirements)
	assert.Equal(t, "The save button", block.Tooltip)
	assert.Empty(t, result.Warnings)
}

func TestConvert_InteractiveSpanMissingRefTarget(t *testing.T) {
	result := Convert(doc(para(spanN(map[string]interface{}{"action": "button"}))))
	assert.Empty(t, result.Blocks)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "missing reftarget")
}

func TestConvert_ParagraphDropsTextAroundSpans(t *testing.T) {
	result := Convert(doc(para(
		textN("First do this: "),
		spanN(map[string]interface{}{"action": "button", "reftarget": "#next"}),
	)))
	require.Len(t, result.Blocks, 1)
	assert.Equal(t, guide.BlockTypeInteractive, result.Blocks[0].Type)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "dropped")
}

func TestConvert_TooltipFromComments(t *testing.T) {
	result := Convert(doc(para(spanN(
		map[string]interface{}{"action": "hover", "reftarget": ".menu"},
		&Node{Type: KindInteractiveComment, Content: []*Node{textN("Opens the menu")}},
		&Node{Type: KindInteractiveComment, Content: []*Node{textN("Hold still")}},
	))))
	require.Len(t, result.Blocks, 1)
	assert.Equal(t, "Opens the menu\n\nHold still", result.Blocks[0].Tooltip)
}

func TestConvert_MultistepContainer(t *testing.T) {
	result := Convert(doc(para(spanN(
		map[string]interface{}{"action": "multistep"},
		textN("Create a dashboard"),
		spanN(map[string]interface{}{"action": "button", "reftarget": "#new"}),
		spanN(map[string]interface{}{"action": "formfill", "reftarget": "#name", "targetvalue": "My board"}),
	))))
	require.Len(t, result.Blocks, 1)
	block := result.Blocks[0]
	assert.Equal(t, guide.BlockTypeMultistep, block.Type)
	assert.Equal(t, "Create a dashboard", block.Content)
	require.Len(t, block.Steps, 2)
	assert.Equal(t, "button", block.Steps[0].Action)
	assert.Equal(t, "My board", block.Steps[1].TargetValue)
}

func TestConvert_MultistepDefaultContent(t *testing.T) {
	result := Convert(doc(para(spanN(
		map[string]interface{}{"action": "multistep"},
		spanN(map[string]interface{}{"action": "button", "reftarget": "#a"}),
	))))
	require.Len(t, result.Blocks, 1)
	assert.Equal(t, "Multi-step action", result.Blocks[0].Content)
}

func TestConvert_GuidedContainerNoSteps(t *testing.T) {
	result := Convert(doc(para(spanN(map[string]interface{}{"action": "guided"}))))
	assert.Empty(t, result.Blocks)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "no steps")
}

func TestConvert_GuidedContainerAttributes(t *testing.T) {
	result := Convert(doc(para(spanN(
		map[string]interface{}{
			"action":        "guided",
			"stepTimeout":   float64(30),
			"skippable":     true,
			"completeEarly": true,
		},
		spanN(map[string]interface{}{"action": "highlight", "reftarget": "#a", "skippable": true}),
		spanN(map[string]interface{}{"action": "button", "reftarget": "#b"}),
	))))
	require.Len(t, result.Blocks, 1)
	block := result.Blocks[0]
	assert.Equal(t, guide.BlockTypeGuided, block.Type)
	assert.Equal(t, 30, block.StepTimeout)
	assert.True(t, block.Skippable)
	assert.True(t, block.CompleteEarly)
	require.Len(t, block.Steps, 2)
	assert.True(t, block.Steps[0].Skippable)
	assert.False(t, block.Steps[1].Skippable)
}

func TestConvert_ListItemImplicitMultistep(t *testing.T) {
	item := &Node{Type: KindListItem, Content: []*Node{para(
		spanN(map[string]interface{}{"action": "highlight", "reftarget": "#a"}),
		spanN(map[string]interface{}{"action": "formfill", "reftarget": "#b"}),
		spanN(map[string]interface{}{"action": "button", "reftarget": "#c"}),
	)}}
	result := Convert(doc(&Node{Type: KindBulletList, Content: []*Node{item}}))

	require.Len(t, result.Blocks, 1)
	block := result.Blocks[0]
	assert.Equal(t, guide.BlockTypeMultistep, block.Type)
	require.Len(t, block.Steps, 3)
	assert.Equal(t, "highlight", block.Steps[0].Action)
	assert.Equal(t, "formfill", block.Steps[1].Action)
	assert.Equal(t, "button", block.Steps[2].Action)
}

func TestConvert_ListAccumulatesAroundInteractiveItems(t *testing.T) {
	plain := func(s string) *Node {
		return &Node{Type: KindListItem, Content: []*Node{para(textN(s))}}
	}
	interactive := &Node{Type: KindListItem, Content: []*Node{para(
		spanN(map[string]interface{}{"action": "button", "reftarget": "#go"}),
	)}}
	result := Convert(doc(&Node{
		Type:    KindOrderedList,
		Content: []*Node{plain("one"), plain("two"), interactive, plain("four")},
	}))

	require.Len(t, result.Blocks, 3)
	assert.Equal(t, "1. one\n2. two", result.Blocks[0].Content)
	assert.Equal(t, guide.BlockTypeInteractive, result.Blocks[1].Type)
	assert.Equal(t, "4. four", result.Blocks[2].Content)
}

func TestConvert_CodeBlock(t *testing.T) {
	result := Convert(doc(&Node{
		Type:    KindCodeBlock,
		Attrs:   map[string]interface{}{"language": "sql"},
		Content: []*Node{textN("SELECT 1;")},
	}))
	require.Len(t, result.Blocks, 1)
	assert.Equal(t, "```sql\nSELECT 1;\n```", result.Blocks[0].Content)
}

func TestConvert_Blockquote(t *testing.T) {
	result := Convert(doc(&Node{
		Type:    KindBlockquote,
		Content: []*Node{para(textN("first")), para(textN("second"))},
	}))
	require.Len(t, result.Blocks, 1)
	assert.Equal(t, "> first\n> second", result.Blocks[0].Content)
}

func TestConvert_HorizontalRule(t *testing.T) {
	result := Convert(doc(&Node{Type: KindHorizontalRule}))
	require.Len(t, result.Blocks, 1)
	assert.Equal(t, "---", result.Blocks[0].Content)
}

func TestConvert_UnknownKind(t *testing.T) {
	result := Convert(doc(&Node{Type: "mermaidDiagram", Content: []*Node{textN("graph TD")}}))
	require.Len(t, result.Blocks, 1)
	assert.Equal(t, "graph TD", result.Blocks[0].Content)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "mermaidDiagram")

	silent := Convert(doc(&Node{Type: "cursorMarker"}))
	assert.Empty(t, silent.Blocks)
	assert.Empty(t, silent.Warnings)
}

func TestConvert_Section(t *testing.T) {
	section := &Node{
		Type: KindGuideSection,
		Attrs: map[string]interface{}{
			"id":                "setup",
			"data-requirements": "logged-in",
		},
		Content: []*Node{
			heading(2, "Setup"),
			para(textN("Before you begin.")),
			para(textN("Install the plugin.")),
			para(spanN(map[string]interface{}{"action": "navigate", "reftarget": "/plugins"})),
		},
	}
	result := Convert(doc(section))

	require.Len(t, result.Blocks, 1)
	block := result.Blocks[0]
	assert.Equal(t, guide.BlockTypeSection, block.Type)
	assert.Equal(t, "setup", block.ID)
	assert.Equal(t, "Setup", block.Title)
	assert.Equal(t, []string{"logged-in"}, block.Requirements)
	// the two paragraphs merged inside the section
	require.Len(t, block.Blocks, 2)
	assert.Equal(t, "Before you begin.\n\nInstall the plugin.", block.Blocks[0].Content)
	assert.Equal(t, guide.BlockTypeInteractive, block.Blocks[1].Type)
}

func TestConvert_SectionWithoutIDOmitsID(t *testing.T) {
	result := Convert(doc(&Node{
		Type:    KindGuideSection,
		Content: []*Node{para(textN("body"))},
	}))
	require.Len(t, result.Blocks, 1)
	assert.Empty(t, result.Blocks[0].ID)
	assert.Empty(t, result.Blocks[0].Title)
}

func TestConvert_MergesTopLevelMarkdown(t *testing.T) {
	result := Convert(doc(
		heading(1, "Title"),
		para(textN("intro")),
		para(spanN(map[string]interface{}{"action": "button", "reftarget": "#x"})),
		para(textN("outro one")),
		para(textN("outro two")),
	))

	require.Len(t, result.Blocks, 3)
	assert.Equal(t, "# Title\n\nintro", result.Blocks[0].Content)
	assert.Equal(t, guide.BlockTypeInteractive, result.Blocks[1].Type)
	assert.Equal(t, "outro one\n\noutro two", result.Blocks[2].Content)
}

func TestConvert_RequirementsNeverEmptySlice(t *testing.T) {
	result := Convert(doc(para(spanN(map[string]interface{}{
		"action":       "button",
		"reftarget":    "#x",
		"requirements": " , ,",
	}))))
	require.Len(t, result.Blocks, 1)
	assert.Nil(t, result.Blocks[0].Requirements)
}
