package guide

import (
	"github.com/expr-lang/expr"
	"github.com/pkg/errors"
)

// ValidateCondition compiles a conditional block's condition string to
// check its syntax. Conditions are evaluated by the runtime player,
// never here; authoring only guards against expressions that can
// never evaluate.
func ValidateCondition(condition string) error {
	if condition == "" {
		return errors.New("condition is empty")
	}
	if _, err := expr.Compile(condition, expr.AllowUndefinedVariables()); err != nil {
		return errors.Wrap(err, "invalid condition")
	}
	return nil
}

// Validate walks the guide and reports structural problems: unknown
// block types, nested sections, and unparsable conditions. It returns
// findings as strings so callers can surface them without aborting.
func (g *Guide) Validate() []string {
	var findings []string
	validateBlocks(g.Blocks, false, &findings)
	return findings
}

func validateBlocks(blocks []Block, nested bool, findings *[]string) {
	for _, block := range blocks {
		switch block.Type {
		case BlockTypeMarkdown, BlockTypeInteractive, BlockTypeMultistep, BlockTypeGuided:
		case BlockTypeSection:
			if nested {
				*findings = append(*findings, "section nested inside another container")
			}
			validateBlocks(block.Blocks, true, findings)
		case BlockTypeConditional:
			if nested {
				*findings = append(*findings, "conditional nested inside another container")
			}
			if err := ValidateCondition(block.Condition); err != nil {
				*findings = append(*findings, err.Error())
			}
			validateBlocks(block.WhenTrue, true, findings)
			validateBlocks(block.WhenFalse, true, findings)
		default:
			*findings = append(*findings, "unknown block type: "+string(block.Type))
		}
	}
}
