// Package editor owns the block-editor's in-memory state: an ordered
// collection of identified blocks plus guide metadata, mutated only
// through the API in this package. Every mutation computes the next
// state, marks the editor dirty, and notifies change listeners with
// an exported snapshot. Structurally invalid calls (stale ids, bad
// indices, type mismatches) are silent no-ops.
package editor

import (
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/guidecraft/guidecraft/internal/ulid"
	"github.com/guidecraft/guidecraft/pkg/guide"
)

type ViewMode string

const (
	ViewModeEdit    ViewMode = "edit"
	ViewModePreview ViewMode = "preview"
	ViewModeJSON    ViewMode = "json"
)

// EditorBlock pairs a block payload with a process-lifetime-unique
// id. The id never appears in the exported guide and is regenerated
// whenever a guide is loaded or imported.
type EditorBlock struct {
	ID    string
	Block guide.Block
}

// Metadata is the guide-level state the editor carries next to the
// block collection.
type Metadata struct {
	ID    string
	Title string
	Match map[string]interface{}
}

// ChangeListener receives the exported guide after each mutation.
// The snapshot is by value; listeners never see internal state.
type ChangeListener func(guide.Guide)

type Editor struct {
	mu         sync.Mutex
	meta       Metadata
	blocks     []EditorBlock
	selectedID string
	viewMode   ViewMode
	dirty      bool

	jsonOriginal string
	jsonText     string

	listeners    map[int]ChangeListener
	nextListener int

	logger *zap.Logger
}

type Option func(*Editor)

func WithLogger(logger *zap.Logger) Option {
	return func(e *Editor) { e.logger = logger }
}

func New(opts ...Option) *Editor {
	e := &Editor{
		viewMode:  ViewModeEdit,
		listeners: map[int]ChangeListener{},
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// OnChange registers a listener and returns its unsubscribe func.
func (e *Editor) OnChange(listener ChangeListener) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextListener
	e.nextListener++
	e.listeners[id] = listener
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.listeners, id)
	}
}

// mutate runs fn under the lock. When fn reports a change the dirty
// flag is set and listeners are notified after the lock is released,
// so a listener may call back into the editor.
func (e *Editor) mutate(fn func() bool) bool {
	e.mu.Lock()
	changed := fn()
	var snapshot guide.Guide
	var listeners []ChangeListener
	if changed {
		e.dirty = true
		snapshot = e.exportLocked()
		listeners = e.listenersLocked()
	}
	e.mu.Unlock()

	for _, listener := range listeners {
		listener(snapshot)
	}
	return changed
}

func (e *Editor) listenersLocked() []ChangeListener {
	if len(e.listeners) == 0 {
		return nil
	}
	out := make([]ChangeListener, 0, len(e.listeners))
	for _, l := range e.listeners {
		out = append(out, l)
	}
	return out
}

// exportLocked builds the exported guide: ids stripped, match only
// when non-empty, schema version stamped.
func (e *Editor) exportLocked() guide.Guide {
	blocks := make([]guide.Block, 0, len(e.blocks))
	for _, eb := range e.blocks {
		blocks = append(blocks, eb.Block)
	}
	cloned, err := guide.CloneBlocks(blocks)
	if err != nil {
		// Block payloads are plain data; reaching this means an
		// upstream invariant broke. Exported state stays usable.
		e.logger.Error("block clone failed during export", zap.Error(err))
		cloned = blocks
	}
	g := guide.Guide{
		ID:            e.meta.ID,
		Title:         e.meta.Title,
		SchemaVersion: guide.SchemaVersion,
		Blocks:        cloned,
	}
	if len(e.meta.Match) > 0 {
		g.Match = e.meta.Match
	}
	if g.Blocks == nil {
		g.Blocks = []guide.Block{}
	}
	return g
}

// Guide returns the exported JSON guide view of the current state.
func (e *Editor) Guide() guide.Guide {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.exportLocked()
}

// Blocks returns a snapshot of the editor block collection.
func (e *Editor) Blocks() []EditorBlock {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]EditorBlock, len(e.blocks))
	copy(out, e.blocks)
	return out
}

// BlockIDs returns current ids in order, for persistence alongside
// the exported guide.
func (e *Editor) BlockIDs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids := make([]string, len(e.blocks))
	for i, eb := range e.blocks {
		ids[i] = eb.ID
	}
	return ids
}

func (e *Editor) Metadata() Metadata {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.meta
}

// SetMetadata replaces guide-level metadata. This is a structural
// mutation for dirtiness purposes.
func (e *Editor) SetMetadata(meta Metadata) {
	e.mutate(func() bool {
		e.meta = meta
		return true
	})
}

func (e *Editor) IsDirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirty
}

// MarkSaved acknowledges a completed save; the next mutation dirties
// the editor again.
func (e *Editor) MarkSaved() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dirty = false
}

func (e *Editor) ViewMode() ViewMode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewMode
}

// SetViewMode switches between edit and preview. Entering or leaving
// the JSON view goes through EnterJSONView/LeaveJSONView instead.
// View changes never dirty the editor.
func (e *Editor) SetViewMode(mode ViewMode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if mode == ViewModeJSON || e.viewMode == ViewModeJSON {
		return
	}
	e.viewMode = mode
}

// SelectBlock updates the selection. Selection changes never dirty
// the editor.
func (e *Editor) SelectBlock(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selectedID = id
}

func (e *Editor) SelectedBlockID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selectedID
}

// NewGuide resets the editor to an empty guide.
func (e *Editor) NewGuide(id, title string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.meta = Metadata{ID: id, Title: title}
	e.blocks = nil
	e.selectedID = ""
	e.viewMode = ViewModeEdit
	e.dirty = false
}

// LoadGuide replaces the whole state with a loaded guide. Every block
// receives a fresh id; the editor comes up clean.
func (e *Editor) LoadGuide(g guide.Guide) {
	e.mu.Lock()
	e.loadGuideLocked(g, nil)
	snapshot := e.exportLocked()
	listeners := e.listenersLocked()
	e.mu.Unlock()

	for _, listener := range listeners {
		listener(snapshot)
	}
}

// LoadGuideWithIDs is the id-preserving restore used when resuming an
// interrupted recording session: ids are zipped 1:1 with blocks.
func (e *Editor) LoadGuideWithIDs(g guide.Guide, ids []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(ids) != len(g.Blocks) {
		return errors.Errorf("id count %d does not match block count %d", len(ids), len(g.Blocks))
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return errors.Errorf("duplicate block id %q", id)
		}
		seen[id] = struct{}{}
	}
	e.loadGuideLocked(g, ids)
	return nil
}

func (e *Editor) loadGuideLocked(g guide.Guide, ids []string) {
	e.meta = Metadata{ID: g.ID, Title: g.Title, Match: g.Match}
	e.blocks = make([]EditorBlock, len(g.Blocks))
	for i, block := range g.Blocks {
		id := ""
		if ids != nil {
			id = ids[i]
		}
		if id == "" {
			id = ulid.GenerateID()
		}
		e.blocks[i] = EditorBlock{ID: id, Block: block}
	}
	e.selectedID = ""
	e.dirty = false
}

// AddBlock appends a block and returns its new id. The new block
// becomes the selection.
func (e *Editor) AddBlock(block guide.Block) string {
	return e.InsertBlock(block, len(e.Blocks()))
}

// InsertBlock inserts at index, clamped to [0, len], and returns the
// new id.
func (e *Editor) InsertBlock(block guide.Block, index int) string {
	var id string
	e.mutate(func() bool {
		id = e.insertLocked(block, index)
		return true
	})
	return id
}

func (e *Editor) insertLocked(block guide.Block, index int) string {
	if index < 0 {
		index = 0
	}
	if index > len(e.blocks) {
		index = len(e.blocks)
	}
	eb := EditorBlock{ID: ulid.GenerateID(), Block: block}
	e.blocks = append(e.blocks, EditorBlock{})
	copy(e.blocks[index+1:], e.blocks[index:])
	e.blocks[index] = eb
	e.selectedID = eb.ID
	return eb.ID
}

// UpdateBlock replaces the payload for the given id. No-op if the id
// is gone.
func (e *Editor) UpdateBlock(id string, block guide.Block) bool {
	return e.mutate(func() bool {
		i, ok := e.findBlockLocked(id)
		if !ok {
			return false
		}
		e.blocks[i].Block = block
		return true
	})
}

// RemoveBlock deletes the block with the given id, clearing the
// selection if it pointed at it.
func (e *Editor) RemoveBlock(id string) bool {
	return e.mutate(func() bool {
		i, ok := e.findBlockLocked(id)
		if !ok {
			return false
		}
		e.blocks = append(e.blocks[:i], e.blocks[i+1:]...)
		if e.selectedID == id {
			e.selectedID = ""
		}
		return true
	})
}

// MoveBlock moves a block between root positions. toIndex addresses
// the array after removal, standard array-move semantics. Out of
// range or equal indices are a no-op.
func (e *Editor) MoveBlock(fromIndex, toIndex int) bool {
	return e.mutate(func() bool {
		if fromIndex == toIndex {
			return false
		}
		if fromIndex < 0 || fromIndex >= len(e.blocks) || toIndex < 0 || toIndex >= len(e.blocks) {
			return false
		}
		moved := e.blocks[fromIndex]
		rest := append(e.blocks[:fromIndex], e.blocks[fromIndex+1:]...)
		rest = append(rest, EditorBlock{})
		copy(rest[toIndex+1:], rest[toIndex:])
		rest[toIndex] = moved
		e.blocks = rest
		return true
	})
}

// DuplicateBlock deep-clones the block with the given id and inserts
// the copy, under a fresh id, immediately after the source. Returns
// the new id, or false when the source is gone or the clone failed.
func (e *Editor) DuplicateBlock(id string) (string, bool) {
	var newID string
	ok := e.mutate(func() bool {
		i, found := e.findBlockLocked(id)
		if !found {
			return false
		}
		clone, err := e.blocks[i].Block.Clone()
		if err != nil {
			e.logger.Error("duplicate aborted, block clone failed", zap.Error(err))
			return false
		}
		eb := EditorBlock{ID: ulid.GenerateID(), Block: clone}
		e.blocks = append(e.blocks, EditorBlock{})
		copy(e.blocks[i+2:], e.blocks[i+1:])
		e.blocks[i+1] = eb
		newID = eb.ID
		return true
	})
	return newID, ok
}

func (e *Editor) findBlockLocked(id string) (int, bool) {
	for i := range e.blocks {
		if e.blocks[i].ID == id {
			return i, true
		}
	}
	return 0, false
}

// findContainerLocked locates a root block of the wanted type by id
// and returns a pointer into the live collection.
func (e *Editor) findContainerLocked(id string, wanted guide.BlockType) (*guide.Block, bool) {
	i, ok := e.findBlockLocked(id)
	if !ok {
		return nil, false
	}
	if e.blocks[i].Block.Type != wanted {
		return nil, false
	}
	return &e.blocks[i].Block, true
}

// nestable reports whether a block may live inside a section or a
// conditional branch. Containers never nest.
func nestable(block guide.Block) bool {
	return block.Type != guide.BlockTypeSection && block.Type != guide.BlockTypeConditional
}
