package guide

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequirements(t *testing.T) {
	assert.Nil(t, ParseRequirements(""))
	assert.Nil(t, ParseRequirements(" , ,"))
	assert.Equal(t, []string{"a"}, ParseRequirements("a"))
	assert.Equal(t, []string{"a", "b"}, ParseRequirements(" a , b "))
}

func TestMergeMarkdownBlocks(t *testing.T) {
	blocks := []Block{
		NewMarkdownBlock("one"),
		NewMarkdownBlock("two"),
		NewInteractiveBlock("button", "#x", ""),
		NewMarkdownBlock("three"),
	}
	merged := MergeMarkdownBlocks(blocks)
	require.Len(t, merged, 3)
	assert.Equal(t, "one\n\ntwo", merged[0].Content)
	assert.Equal(t, BlockTypeInteractive, merged[1].Type)
	assert.Equal(t, "three", merged[2].Content)
}

func TestMergeMarkdownBlocks_NoMarkdown(t *testing.T) {
	blocks := []Block{NewInteractiveBlock("button", "#x", "")}
	assert.Equal(t, blocks, MergeMarkdownBlocks(blocks))
	assert.Empty(t, MergeMarkdownBlocks(nil))
}

func TestBlockClone_Independent(t *testing.T) {
	section := NewSectionBlock("s1", "Section", []Block{
		NewMultistepBlock("steps", []Step{{Action: "button", RefTarget: "#a"}}),
	})

	clone, err := section.Clone()
	require.NoError(t, err)
	assert.Equal(t, section, clone)

	clone.Blocks[0].Steps[0].RefTarget = "#changed"
	assert.Equal(t, "#a", section.Blocks[0].Steps[0].RefTarget)
}

func TestBlockJSONShape(t *testing.T) {
	doIt := true
	block := Block{
		Type:      BlockTypeInteractive,
		Action:    "formfill",
		RefTarget: "#name",
		Content:   "Fill the name",
		DoIt:      &doIt,
	}
	data, err := json.Marshal(block)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "interactive", raw["type"])
	assert.Equal(t, "formfill", raw["action"])
	assert.Equal(t, "#name", raw["reftarget"])
	assert.Equal(t, true, raw["doIt"])
	// empty optional fields stay off the wire
	_, hasRequirements := raw["requirements"]
	assert.False(t, hasRequirements)
	_, hasSteps := raw["steps"]
	assert.False(t, hasSteps)
}

func TestGuideJSONRoundTrip(t *testing.T) {
	g := &Guide{
		ID:            "g1",
		Title:         "Guide",
		SchemaVersion: SchemaVersion,
		Match:         map[string]interface{}{"path": "/dashboards"},
		Blocks: []Block{
			NewMarkdownBlock("hello"),
			{
				Type:      BlockTypeConditional,
				Condition: "user.isAdmin",
				WhenTrue:  []Block{NewMarkdownBlock("admin")},
				WhenFalse: []Block{NewMarkdownBlock("viewer")},
			},
		},
	}

	data, err := g.Marshal()
	require.NoError(t, err)

	parsed, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, g, parsed)
}

func TestValidateCondition(t *testing.T) {
	assert.NoError(t, ValidateCondition("user.isAdmin && env == \"prod\""))
	assert.Error(t, ValidateCondition(""))
	assert.Error(t, ValidateCondition("a &&"))
}

func TestGuideValidate(t *testing.T) {
	g := &Guide{Blocks: []Block{
		NewSectionBlock("s", "S", []Block{
			NewSectionBlock("inner", "Nested", nil),
		}),
		{Type: BlockTypeConditional, Condition: "=== nope"},
		{Type: "bogus"},
	}}

	findings := g.Validate()
	require.Len(t, findings, 3)
	assert.Contains(t, findings[0], "section nested")
	assert.Contains(t, findings[1], "invalid condition")
	assert.Contains(t, findings[2], "unknown block type")
}
