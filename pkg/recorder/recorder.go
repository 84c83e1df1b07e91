// Package recorder turns flat lists of captured user-interaction
// steps into guide blocks and manages the recording session state,
// including its persisted snapshot.
package recorder

import (
	"github.com/guidecraft/guidecraft/pkg/guide"
)

// Step is one recorded user interaction. GroupID is assigned by the
// capture layer when it decides steps belong together, e.g. the
// open/select pair of a dropdown interaction.
type Step struct {
	Action      string `json:"action"`
	RefTarget   string `json:"reftarget"`
	TargetValue string `json:"targetvalue,omitempty"`
	Content     string `json:"content,omitempty"`
	GroupID     string `json:"groupId,omitempty"`
}

type GroupingType string

const (
	GroupingSingle    GroupingType = "single"
	GroupingMultistep GroupingType = "multistep"
)

// Grouping is a run of recorded steps destined for one block.
type Grouping struct {
	Type  GroupingType
	Steps []Step
}

// GroupSteps run-length groups a time-ordered step list on GroupID:
// consecutive steps sharing a non-empty group id collapse into one
// multistep grouping, everything else stands alone.
func GroupSteps(steps []Step) []Grouping {
	var groupings []Grouping
	for i := 0; i < len(steps); {
		step := steps[i]
		if step.GroupID == "" {
			groupings = append(groupings, Grouping{Type: GroupingSingle, Steps: []Step{step}})
			i++
			continue
		}
		j := i + 1
		for j < len(steps) && steps[j].GroupID == step.GroupID {
			j++
		}
		run := make([]Step, j-i)
		copy(run, steps[i:j])
		groupingType := GroupingMultistep
		if len(run) == 1 {
			groupingType = GroupingSingle
		}
		groupings = append(groupings, Grouping{Type: groupingType, Steps: run})
		i = j
	}
	return groupings
}

// ToBlock converts a grouping into the block appended to the editor:
// a single interactive block, or a multistep block for a grouped run.
func (g Grouping) ToBlock() guide.Block {
	if g.Type == GroupingSingle {
		step := g.Steps[0]
		return guide.Block{
			Type:        guide.BlockTypeInteractive,
			Action:      step.Action,
			RefTarget:   step.RefTarget,
			TargetValue: step.TargetValue,
			Content:     step.Content,
		}
	}

	steps := make([]guide.Step, len(g.Steps))
	for i, step := range g.Steps {
		steps[i] = guide.Step{
			Action:      step.Action,
			RefTarget:   step.RefTarget,
			TargetValue: step.TargetValue,
		}
	}
	content := g.Steps[0].Content
	if content == "" {
		content = "Multi-step action"
	}
	return guide.NewMultistepBlock(content, steps)
}

// BlocksFor converts recorded steps to blocks in recorded order.
func BlocksFor(steps []Step) []guide.Block {
	groupings := GroupSteps(steps)
	blocks := make([]guide.Block, 0, len(groupings))
	for _, grouping := range groupings {
		blocks = append(blocks, grouping.ToBlock())
	}
	return blocks
}
