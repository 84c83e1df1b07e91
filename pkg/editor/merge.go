package editor

import (
	"github.com/guidecraft/guidecraft/internal/ulid"
	"github.com/guidecraft/guidecraft/pkg/guide"
)

// MergeBlocksToMultistep replaces two or more selected root-level
// blocks with one multistep block at the first selected block's
// position. Steps follow selection order. Returns the merged block's
// id.
func (e *Editor) MergeBlocksToMultistep(selectedIDs []string) (string, bool) {
	return e.mergeBlocks(selectedIDs, guide.BlockTypeMultistep)
}

// MergeBlocksToGuided is MergeBlocksToMultistep producing a guided
// block.
func (e *Editor) MergeBlocksToGuided(selectedIDs []string) (string, bool) {
	return e.mergeBlocks(selectedIDs, guide.BlockTypeGuided)
}

func (e *Editor) mergeBlocks(selectedIDs []string, blockType guide.BlockType) (string, bool) {
	var newID string
	ok := e.mutate(func() bool {
		if len(selectedIDs) < 2 {
			return false
		}

		selected := make(map[string]struct{}, len(selectedIDs))
		var steps []guide.Step
		content := ""
		for _, id := range selectedIDs {
			i, found := e.findBlockLocked(id)
			if !found {
				// A stale selection invalidates the whole merge.
				return false
			}
			if _, dup := selected[id]; dup {
				return false
			}
			selected[id] = struct{}{}

			block := e.blocks[i].Block
			steps = append(steps, blockSteps(block)...)
			if content == "" && block.Content != "" && block.Type != guide.BlockTypeMarkdown {
				content = block.Content
			}
		}
		if len(steps) == 0 {
			return false
		}
		if content == "" {
			content = "Multi-step action"
			if blockType == guide.BlockTypeGuided {
				content = "Guided action"
			}
		}

		merged := guide.Block{Type: blockType, Content: content, Steps: steps}

		firstIndex, _ := e.findBlockLocked(selectedIDs[0])
		eb := EditorBlock{ID: ulid.GenerateID(), Block: merged}

		rest := make([]EditorBlock, 0, len(e.blocks)-len(selectedIDs)+1)
		for i, existing := range e.blocks {
			if i == firstIndex {
				rest = append(rest, eb)
				continue
			}
			if _, drop := selected[existing.ID]; drop {
				continue
			}
			rest = append(rest, existing)
		}
		e.blocks = rest
		e.selectedID = eb.ID
		newID = eb.ID
		return true
	})
	return newID, ok
}

// blockSteps maps a block to the steps it contributes to a merge:
// an interactive block becomes one step, a multistep or guided block
// contributes its existing steps, everything else contributes none.
func blockSteps(block guide.Block) []guide.Step {
	switch block.Type {
	case guide.BlockTypeInteractive:
		return []guide.Step{{
			Action:       block.Action,
			RefTarget:    block.RefTarget,
			TargetValue:  block.TargetValue,
			Requirements: block.Requirements,
			Tooltip:      block.Tooltip,
		}}
	case guide.BlockTypeMultistep, guide.BlockTypeGuided:
		return block.Steps
	default:
		return nil
	}
}
