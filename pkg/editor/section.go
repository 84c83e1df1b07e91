package editor

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/guidecraft/guidecraft/pkg/guide"
)

// BlockRef addresses a block nested inside a container by container
// id and position.
type BlockRef struct {
	ContainerID string `json:"containerId"`
	Index       int    `json:"index"`
}

// ParseNestedRef parses the legacy "<containerID>-<index>" composite
// reference still produced by older drag sources. The index is taken
// after the last hyphen, so a container id ending in "-<digits>"
// is ambiguous under this encoding; new code passes a BlockRef.
func ParseNestedRef(s string) (BlockRef, error) {
	cut := strings.LastIndex(s, "-")
	if cut <= 0 || cut == len(s)-1 {
		return BlockRef{}, errors.Errorf("malformed nested block reference %q", s)
	}
	index, err := strconv.Atoi(s[cut+1:])
	if err != nil || index < 0 {
		return BlockRef{}, errors.Errorf("malformed nested block index in %q", s)
	}
	return BlockRef{ContainerID: s[:cut], Index: index}, nil
}

// AddBlockToSection appends (at < 0) or inserts a block into a
// section's nested blocks. Sections and conditionals cannot nest.
func (e *Editor) AddBlockToSection(sectionID string, block guide.Block, at int) bool {
	return e.mutate(func() bool {
		if !nestable(block) {
			return false
		}
		section, ok := e.findContainerLocked(sectionID, guide.BlockTypeSection)
		if !ok {
			return false
		}
		section.Blocks = spliceIn(section.Blocks, block, at)
		return true
	})
}

// NestBlockInSection moves a root-level block into a section. The
// moving block's editor id is retired; the payload lives on inside
// the section. No-op when either id is stale, the target is not a
// section, or the moving block is itself a container.
func (e *Editor) NestBlockInSection(blockID, sectionID string, at int) bool {
	return e.mutate(func() bool {
		bi, ok := e.findBlockLocked(blockID)
		if !ok {
			return false
		}
		si, ok := e.findBlockLocked(sectionID)
		if !ok || si == bi {
			return false
		}
		if e.blocks[si].Block.Type != guide.BlockTypeSection {
			return false
		}
		if !nestable(e.blocks[bi].Block) {
			return false
		}

		payload := e.blocks[bi].Block
		e.blocks = append(e.blocks[:bi], e.blocks[bi+1:]...)
		// Removal shifts the section left when it followed the moved
		// block.
		if si > bi {
			si--
		}
		section := &e.blocks[si].Block
		section.Blocks = spliceIn(section.Blocks, payload, at)
		if e.selectedID == blockID {
			e.selectedID = ""
		}
		return true
	})
}

// UnnestBlockFromSection moves a nested block back to the root level
// under a fresh id, immediately after the section (afterSection) or
// at the section's own position. Returns the new root id.
func (e *Editor) UnnestBlockFromSection(ref BlockRef, afterSection bool) (string, bool) {
	var newID string
	ok := e.mutate(func() bool {
		si, ok := e.findBlockLocked(ref.ContainerID)
		if !ok || e.blocks[si].Block.Type != guide.BlockTypeSection {
			return false
		}
		section := &e.blocks[si].Block
		if ref.Index < 0 || ref.Index >= len(section.Blocks) {
			return false
		}
		payload := section.Blocks[ref.Index]
		section.Blocks = append(section.Blocks[:ref.Index], section.Blocks[ref.Index+1:]...)

		insertAt := si
		if afterSection {
			insertAt = si + 1
		}
		newID = e.insertLocked(payload, insertAt)
		return true
	})
	return newID, ok
}

// UpdateNestedBlock replaces a section's nested block by index.
func (e *Editor) UpdateNestedBlock(sectionID string, index int, block guide.Block) bool {
	return e.mutate(func() bool {
		section, ok := e.findContainerLocked(sectionID, guide.BlockTypeSection)
		if !ok || !nestable(block) {
			return false
		}
		if index < 0 || index >= len(section.Blocks) {
			return false
		}
		section.Blocks[index] = block
		return true
	})
}

// DeleteNestedBlock removes a section's nested block by index.
func (e *Editor) DeleteNestedBlock(sectionID string, index int) bool {
	return e.mutate(func() bool {
		section, ok := e.findContainerLocked(sectionID, guide.BlockTypeSection)
		if !ok {
			return false
		}
		if index < 0 || index >= len(section.Blocks) {
			return false
		}
		section.Blocks = append(section.Blocks[:index], section.Blocks[index+1:]...)
		return true
	})
}

// DuplicateNestedBlock clones a section's nested block and inserts
// the copy immediately after the source index.
func (e *Editor) DuplicateNestedBlock(sectionID string, index int) bool {
	return e.mutate(func() bool {
		section, ok := e.findContainerLocked(sectionID, guide.BlockTypeSection)
		if !ok {
			return false
		}
		if index < 0 || index >= len(section.Blocks) {
			return false
		}
		clone, err := section.Blocks[index].Clone()
		if err != nil {
			e.logger.Error("duplicate aborted, nested block clone failed", zap.Error(err))
			return false
		}
		section.Blocks = spliceIn(section.Blocks, clone, index+1)
		return true
	})
}

// MoveNestedBlock reorders blocks inside one section, with the same
// post-removal index semantics as MoveBlock.
func (e *Editor) MoveNestedBlock(sectionID string, fromIndex, toIndex int) bool {
	return e.mutate(func() bool {
		section, ok := e.findContainerLocked(sectionID, guide.BlockTypeSection)
		if !ok {
			return false
		}
		moved, rest, ok := spliceOut(section.Blocks, fromIndex, toIndex)
		if !ok {
			return false
		}
		section.Blocks = spliceIn(rest, moved, toIndex)
		return true
	})
}

// MoveBlockBetweenSections moves a nested block from one section to
// another (or within one). toIndex < 0 appends.
func (e *Editor) MoveBlockBetweenSections(fromSectionID string, fromIndex int, toSectionID string, toIndex int) bool {
	return e.mutate(func() bool {
		from, ok := e.findContainerLocked(fromSectionID, guide.BlockTypeSection)
		if !ok {
			return false
		}
		to, ok := e.findContainerLocked(toSectionID, guide.BlockTypeSection)
		if !ok {
			return false
		}
		if fromIndex < 0 || fromIndex >= len(from.Blocks) {
			return false
		}
		payload := from.Blocks[fromIndex]
		from.Blocks = append(from.Blocks[:fromIndex], from.Blocks[fromIndex+1:]...)
		to.Blocks = spliceIn(to.Blocks, payload, toIndex)
		return true
	})
}

// spliceIn inserts a block at index, clamped to [0, len]; a negative
// index appends.
func spliceIn(blocks []guide.Block, block guide.Block, at int) []guide.Block {
	if at < 0 || at > len(blocks) {
		at = len(blocks)
	}
	blocks = append(blocks, guide.Block{})
	copy(blocks[at+1:], blocks[at:])
	blocks[at] = block
	return blocks
}

// spliceOut removes the block at fromIndex, validating both move
// indices against the pre-removal slice.
func spliceOut(blocks []guide.Block, fromIndex, toIndex int) (guide.Block, []guide.Block, bool) {
	if fromIndex == toIndex {
		return guide.Block{}, nil, false
	}
	if fromIndex < 0 || fromIndex >= len(blocks) || toIndex < 0 || toIndex >= len(blocks) {
		return guide.Block{}, nil, false
	}
	moved := blocks[fromIndex]
	rest := append(blocks[:fromIndex], blocks[fromIndex+1:]...)
	return moved, rest, true
}
