package guide

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// SchemaVersion is stamped on exported guides.
const SchemaVersion = "1.0"

// Guide is the exported JSON document consumed by the runtime player
// and the backend. Block ids used inside the editor are not part of
// this format.
type Guide struct {
	ID            string                 `json:"id"`
	Title         string                 `json:"title"`
	SchemaVersion string                 `json:"schemaVersion,omitempty"`
	Match         map[string]interface{} `json:"match,omitempty"`
	Blocks        []Block                `json:"blocks"`
}

// Parse decodes a JSON guide.
func Parse(data []byte) (*Guide, error) {
	var g Guide
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, errors.WithStack(err)
	}
	return &g, nil
}

// Marshal encodes the guide with stable two-space indentation, the
// form used by the JSON view and by files on disk.
func (g *Guide) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return data, nil
}

// Clone deep-copies the guide via a JSON round trip. Guides are plain
// data, so the only way this fails is a violated invariant upstream;
// callers treat an error as fatal to the operation, not the process.
func (g *Guide) Clone() (*Guide, error) {
	data, err := json.Marshal(g)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	var clone Guide
	if err := json.Unmarshal(data, &clone); err != nil {
		return nil, errors.WithStack(err)
	}
	return &clone, nil
}

// Clone deep-copies a single block via a JSON round trip.
func (b Block) Clone() (Block, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return Block{}, errors.WithStack(err)
	}
	var clone Block
	if err := json.Unmarshal(data, &clone); err != nil {
		return Block{}, errors.WithStack(err)
	}
	return clone, nil
}

// CloneBlocks deep-copies a block slice via a single JSON round trip.
func CloneBlocks(blocks []Block) ([]Block, error) {
	if blocks == nil {
		return nil, nil
	}
	data, err := json.Marshal(blocks)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	var clone []Block
	if err := json.Unmarshal(data, &clone); err != nil {
		return nil, errors.WithStack(err)
	}
	return clone, nil
}
