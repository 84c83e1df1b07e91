package editor

import (
	"go.uber.org/zap"

	"github.com/guidecraft/guidecraft/pkg/guide"
)

// Branch names one of a conditional block's two block sequences.
type Branch string

const (
	BranchWhenTrue  Branch = "whenTrue"
	BranchWhenFalse Branch = "whenFalse"
)

// BranchRef addresses one branch of a conditional block.
type BranchRef struct {
	ConditionalID string `json:"conditionalId"`
	Branch        Branch `json:"branch"`
}

// branchLocked resolves a branch ref to a pointer into the live
// collection. Callers hold the editor lock.
func (e *Editor) branchLocked(ref BranchRef) (*[]guide.Block, bool) {
	conditional, ok := e.findContainerLocked(ref.ConditionalID, guide.BlockTypeConditional)
	if !ok {
		return nil, false
	}
	switch ref.Branch {
	case BranchWhenTrue:
		return &conditional.WhenTrue, true
	case BranchWhenFalse:
		return &conditional.WhenFalse, true
	default:
		return nil, false
	}
}

// AddBlockToConditionalBranch appends (at < 0) or inserts a block
// into a conditional branch. Containers cannot nest.
func (e *Editor) AddBlockToConditionalBranch(ref BranchRef, block guide.Block, at int) bool {
	return e.mutate(func() bool {
		if !nestable(block) {
			return false
		}
		branch, ok := e.branchLocked(ref)
		if !ok {
			return false
		}
		*branch = spliceIn(*branch, block, at)
		return true
	})
}

// NestBlockInConditionalBranch moves a root-level block into a
// conditional branch, mirroring NestBlockInSection.
func (e *Editor) NestBlockInConditionalBranch(blockID string, ref BranchRef, at int) bool {
	return e.mutate(func() bool {
		bi, ok := e.findBlockLocked(blockID)
		if !ok {
			return false
		}
		ci, ok := e.findBlockLocked(ref.ConditionalID)
		if !ok || ci == bi {
			return false
		}
		if e.blocks[ci].Block.Type != guide.BlockTypeConditional {
			return false
		}
		if !nestable(e.blocks[bi].Block) {
			return false
		}

		payload := e.blocks[bi].Block
		e.blocks = append(e.blocks[:bi], e.blocks[bi+1:]...)
		if ci > bi {
			ci--
		}
		conditional := &e.blocks[ci].Block
		var branch *[]guide.Block
		switch ref.Branch {
		case BranchWhenTrue:
			branch = &conditional.WhenTrue
		case BranchWhenFalse:
			branch = &conditional.WhenFalse
		default:
			return false
		}
		*branch = spliceIn(*branch, payload, at)
		if e.selectedID == blockID {
			e.selectedID = ""
		}
		return true
	})
}

// UnnestBlockFromConditionalBranch moves a branch entry back to the
// root level under a fresh id, after the conditional or at its
// position.
func (e *Editor) UnnestBlockFromConditionalBranch(ref BranchRef, index int, afterConditional bool) (string, bool) {
	var newID string
	ok := e.mutate(func() bool {
		ci, found := e.findBlockLocked(ref.ConditionalID)
		if !found || e.blocks[ci].Block.Type != guide.BlockTypeConditional {
			return false
		}
		branch, found := e.branchLocked(ref)
		if !found {
			return false
		}
		if index < 0 || index >= len(*branch) {
			return false
		}
		payload := (*branch)[index]
		*branch = append((*branch)[:index], (*branch)[index+1:]...)

		insertAt := ci
		if afterConditional {
			insertAt = ci + 1
		}
		newID = e.insertLocked(payload, insertAt)
		return true
	})
	return newID, ok
}

// UpdateConditionalNestedBlock replaces a branch entry by index.
func (e *Editor) UpdateConditionalNestedBlock(ref BranchRef, index int, block guide.Block) bool {
	return e.mutate(func() bool {
		branch, ok := e.branchLocked(ref)
		if !ok || !nestable(block) {
			return false
		}
		if index < 0 || index >= len(*branch) {
			return false
		}
		(*branch)[index] = block
		return true
	})
}

// DeleteConditionalNestedBlock removes a branch entry by index.
func (e *Editor) DeleteConditionalNestedBlock(ref BranchRef, index int) bool {
	return e.mutate(func() bool {
		branch, ok := e.branchLocked(ref)
		if !ok {
			return false
		}
		if index < 0 || index >= len(*branch) {
			return false
		}
		*branch = append((*branch)[:index], (*branch)[index+1:]...)
		return true
	})
}

// DuplicateConditionalNestedBlock clones a branch entry and inserts
// the copy immediately after the source index.
func (e *Editor) DuplicateConditionalNestedBlock(ref BranchRef, index int) bool {
	return e.mutate(func() bool {
		branch, ok := e.branchLocked(ref)
		if !ok {
			return false
		}
		if index < 0 || index >= len(*branch) {
			return false
		}
		clone, err := (*branch)[index].Clone()
		if err != nil {
			e.logger.Error("duplicate aborted, branch block clone failed", zap.Error(err))
			return false
		}
		*branch = spliceIn(*branch, clone, index+1)
		return true
	})
}

// MoveConditionalNestedBlock reorders entries inside one branch.
func (e *Editor) MoveConditionalNestedBlock(ref BranchRef, fromIndex, toIndex int) bool {
	return e.mutate(func() bool {
		branch, ok := e.branchLocked(ref)
		if !ok {
			return false
		}
		moved, rest, ok := spliceOut(*branch, fromIndex, toIndex)
		if !ok {
			return false
		}
		*branch = spliceIn(rest, moved, toIndex)
		return true
	})
}

// MoveBlockBetweenConditionalBranches moves an entry from one branch
// of a conditional to the other. toIndex < 0 appends.
func (e *Editor) MoveBlockBetweenConditionalBranches(conditionalID string, fromBranch Branch, fromIndex int, toBranch Branch, toIndex int) bool {
	return e.mutate(func() bool {
		from, ok := e.branchLocked(BranchRef{ConditionalID: conditionalID, Branch: fromBranch})
		if !ok {
			return false
		}
		to, ok := e.branchLocked(BranchRef{ConditionalID: conditionalID, Branch: toBranch})
		if !ok {
			return false
		}
		if fromIndex < 0 || fromIndex >= len(*from) {
			return false
		}
		payload := (*from)[fromIndex]
		*from = append((*from)[:fromIndex], (*from)[fromIndex+1:]...)
		*to = spliceIn(*to, payload, toIndex)
		return true
	})
}
