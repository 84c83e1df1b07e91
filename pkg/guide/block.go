package guide

import "strings"

// BlockType discriminates the Block tagged union in the exported
// JSON guide format.
type BlockType string

const (
	BlockTypeMarkdown    BlockType = "markdown"
	BlockTypeInteractive BlockType = "interactive"
	BlockTypeMultistep   BlockType = "multistep"
	BlockTypeGuided      BlockType = "guided"
	BlockTypeSection     BlockType = "section"
	BlockTypeConditional BlockType = "conditional"
)

// Atomic action values carried by interactive blocks and steps.
const (
	ActionHighlight = "highlight"
	ActionButton    = "button"
	ActionHover     = "hover"
	ActionFormFill  = "formfill"
	ActionNavigate  = "navigate"
	ActionNoop      = "noop"
)

// Container action values. These mark an interactive span as a
// multistep/guided parent rather than an atomic action.
const (
	ActionMultistep = "multistep"
	ActionGuided    = "guided"
)

// IsContainerAction reports whether action denotes a step container
// rather than an atomic action.
func IsContainerAction(action string) bool {
	return action == ActionMultistep || action == ActionGuided
}

// Step is one action entry inside a multistep or guided block. It has
// the shape of an interactive block minus the content field.
type Step struct {
	Action       string   `json:"action"`
	RefTarget    string   `json:"reftarget"`
	TargetValue  string   `json:"targetvalue,omitempty"`
	Requirements []string `json:"requirements,omitempty"`
	Tooltip      string   `json:"tooltip,omitempty"`
	Skippable    bool     `json:"skippable,omitempty"`
}

// Block is one unit of guide content. It is a tagged union
// discriminated by Type; only the fields belonging to the given type
// are populated, everything else stays at its zero value and is
// omitted from JSON.
//
// Block payloads are plain JSON-serializable data. No field may ever
// hold a function value or introduce a cycle; Clone relies on it.
type Block struct {
	Type BlockType `json:"type"`

	// markdown, interactive, multistep, guided
	Content string `json:"content,omitempty"`

	// interactive
	Action      string `json:"action,omitempty"`
	RefTarget   string `json:"reftarget,omitempty"`
	TargetValue string `json:"targetvalue,omitempty"`
	Tooltip     string `json:"tooltip,omitempty"`
	DoIt        *bool  `json:"doIt,omitempty"`

	Requirements []string `json:"requirements,omitempty"`

	// multistep, guided
	Steps []Step `json:"steps,omitempty"`

	// guided pacing controls
	StepTimeout   int  `json:"stepTimeout,omitempty"`
	Skippable     bool `json:"skippable,omitempty"`
	CompleteEarly bool `json:"completeEarly,omitempty"`

	// section
	ID     string  `json:"id,omitempty"`
	Title  string  `json:"title,omitempty"`
	Blocks []Block `json:"blocks,omitempty"`

	// conditional
	Condition string  `json:"condition,omitempty"`
	WhenTrue  []Block `json:"whenTrue,omitempty"`
	WhenFalse []Block `json:"whenFalse,omitempty"`
}

func NewMarkdownBlock(content string) Block {
	return Block{Type: BlockTypeMarkdown, Content: content}
}

func NewInteractiveBlock(action, reftarget, content string) Block {
	return Block{
		Type:      BlockTypeInteractive,
		Action:    action,
		RefTarget: reftarget,
		Content:   content,
	}
}

func NewMultistepBlock(content string, steps []Step) Block {
	return Block{Type: BlockTypeMultistep, Content: content, Steps: steps}
}

func NewGuidedBlock(content string, steps []Step) Block {
	return Block{Type: BlockTypeGuided, Content: content, Steps: steps}
}

func NewSectionBlock(id, title string, blocks []Block) Block {
	return Block{Type: BlockTypeSection, ID: id, Title: title, Blocks: blocks}
}

func NewConditionalBlock(condition string) Block {
	return Block{Type: BlockTypeConditional, Condition: condition}
}

// ParseRequirements splits a comma-separated requirements attribute
// into its entries, trimming whitespace and dropping empties. An
// absent or effectively empty attribute yields nil so that the
// requirements field is omitted from JSON, never an empty array.
func ParseRequirements(raw string) []string {
	if raw == "" {
		return nil
	}
	var result []string
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry != "" {
			result = append(result, entry)
		}
	}
	return result
}

// MergeMarkdownBlocks coalesces every run of consecutive markdown
// blocks into a single markdown block, joining contents with a blank
// line. Non-markdown blocks pass through unchanged. The scan is not
// recursive; callers merge nested containers during their own
// conversion pass.
func MergeMarkdownBlocks(blocks []Block) []Block {
	if len(blocks) == 0 {
		return blocks
	}

	result := make([]Block, 0, len(blocks))
	var run []string

	flush := func() {
		if len(run) == 0 {
			return
		}
		result = append(result, NewMarkdownBlock(strings.Join(run, "\n\n")))
		run = nil
	}

	for _, block := range blocks {
		if block.Type == BlockTypeMarkdown {
			run = append(run, block.Content)
			continue
		}
		flush()
		result = append(result, block)
	}
	flush()

	return result
}
