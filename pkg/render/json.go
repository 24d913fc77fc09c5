package render

import (
	"encoding/json"

	"github.com/matzehuels/dreamscape/pkg/scene"
)

// Document is the JSON export of an artwork: its descriptor plus any
// caller-supplied metadata.
type Document struct {
	Parameters scene.VisualParameters `json:"parameters"`
	Metadata   any                    `json:"metadata,omitempty"`
}

// JSON encodes the descriptor and metadata as indented JSON.
func JSON(p scene.VisualParameters, metadata any) ([]byte, error) {
	data, err := json.MarshalIndent(Document{Parameters: p, Metadata: metadata}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
