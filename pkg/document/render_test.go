package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guidecraft/guidecraft/pkg/guide"
)

func TestRender_MarkdownStructure(t *testing.T) {
	g := &guide.Guide{Blocks: []guide.Block{
		guide.NewMarkdownBlock("## Install\n\nRun the installer."),
	}}
	root, warnings := Render(g)
	assert.Empty(t, warnings)
	require.Len(t, root.Content, 2)
	assert.Equal(t, KindHeading, root.Content[0].Type)
	assert.Equal(t, KindParagraph, root.Content[1].Type)
}

func TestRender_ConditionalWarns(t *testing.T) {
	g := &guide.Guide{Blocks: []guide.Block{guide.NewConditionalBlock("env == \"prod\"")}}
	root, warnings := Render(g)
	assert.Empty(t, root.Content)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "conditional")
}

// Round trip: a guide rendered to a document tree and converted back
// reproduces its blocks, up to markdown-block merging.
func TestRenderConvert_RoundTrip(t *testing.T) {
	doIt := true
	original := &guide.Guide{
		ID:    "welcome",
		Title: "Welcome tour",
		Blocks: []guide.Block{
			guide.NewMarkdownBlock("# Welcome\n\nThis guide shows the basics."),
			{
				Type:         guide.BlockTypeInteractive,
				Action:       "highlight",
				RefTarget:    "#nav",
				Content:      "Find the nav",
				TargetValue:  "",
				Requirements: []string{"logged-in"},
				Tooltip:      "Main navigation",
				DoIt:         &doIt,
			},
			{
				Type:    guide.BlockTypeMultistep,
				Content: "Create a thing",
				Steps: []guide.Step{
					{Action: "button", RefTarget: "#new"},
					{Action: "formfill", RefTarget: "#name", TargetValue: "thing"},
				},
			},
			{
				Type:          guide.BlockTypeGuided,
				Content:       "Now you try",
				StepTimeout:   45,
				Skippable:     true,
				CompleteEarly: true,
				Steps: []guide.Step{
					{Action: "button", RefTarget: "#run", Skippable: true},
					{Action: "highlight", RefTarget: "#result"},
				},
			},
			{
				Type:  guide.BlockTypeSection,
				ID:    "cleanup",
				Title: "Clean up",
				Blocks: []guide.Block{
					guide.NewMarkdownBlock("Almost done."),
					{Type: guide.BlockTypeInteractive, Action: "button", RefTarget: "#delete", Content: "Delete it"},
				},
			},
		},
	}

	root, warnings := Render(original)
	require.Empty(t, warnings)

	result := Convert(root)
	require.Empty(t, result.Warnings)

	expected := guide.MergeMarkdownBlocks(original.Blocks)
	require.Len(t, result.Blocks, len(expected))
	for i := range expected {
		assert.Equal(t, expected[i].Type, result.Blocks[i].Type, "block %d", i)
	}

	interactive := result.Blocks[1]
	assert.Equal(t, "highlight", interactive.Action)
	assert.Equal(t, "#nav", interactive.RefTarget)
	assert.Equal(t, "Find the nav", interactive.Content)
	assert.Equal(t, []string{"logged-in"}, interactive.Requirements)
	assert.Equal(t, "Main navigation", interactive.Tooltip)
	require.NotNil(t, interactive.DoIt)
	assert.True(t, *interactive.DoIt)

	multistep := result.Blocks[2]
	assert.Equal(t, "Create a thing", multistep.Content)
	require.Len(t, multistep.Steps, 2)
	assert.Equal(t, original.Blocks[2].Steps, multistep.Steps)

	guided := result.Blocks[3]
	assert.Equal(t, 45, guided.StepTimeout)
	assert.True(t, guided.Skippable)
	assert.True(t, guided.CompleteEarly)
	assert.Equal(t, original.Blocks[3].Steps, guided.Steps)

	section := result.Blocks[4]
	assert.Equal(t, "cleanup", section.ID)
	assert.Equal(t, "Clean up", section.Title)
	require.Len(t, section.Blocks, 2)
	assert.Equal(t, "Almost done.", section.Blocks[0].Content)
	assert.Equal(t, "#delete", section.Blocks[1].RefTarget)
}

func TestRender_MarkdownInlineMarks(t *testing.T) {
	g := &guide.Guide{Blocks: []guide.Block{
		guide.NewMarkdownBlock("press **run**, then `ls`, then read [the docs](https://docs.example.com)"),
	}}
	root, warnings := Render(g)
	require.Empty(t, warnings)

	result := Convert(root)
	require.Len(t, result.Blocks, 1)
	assert.Equal(
		t,
		"press **run**, then `ls`, then read [the docs](https://docs.example.com)",
		result.Blocks[0].Content,
	)
}

func TestRender_MarkdownCodeFence(t *testing.T) {
	g := &guide.Guide{Blocks: []guide.Block{
		guide.NewMarkdownBlock("```bash\necho hello\n```"),
	}}
	root, warnings := Render(g)
	require.Empty(t, warnings)
	require.Len(t, root.Content, 1)
	assert.Equal(t, KindCodeBlock, root.Content[0].Type)
	assert.Equal(t, "bash", root.Content[0].Attr("language"))

	result := Convert(root)
	require.Len(t, result.Blocks, 1)
	assert.Equal(t, "```bash\necho hello\n```", result.Blocks[0].Content)
}
