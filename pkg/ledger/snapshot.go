package ledger

import (
	"encoding/json"
	"fmt"
	"os"

	derrors "github.com/matzehuels/dreamscape/pkg/errors"
	"github.com/matzehuels/dreamscape/pkg/scene"
)

// LoadSnapshot reads Data saved by SaveSnapshot.
func LoadSnapshot(path string) (Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Data{}, derrors.Wrap(derrors.ErrCodeInvalidInput, err, "read snapshot %s", path)
	}
	var d Data
	if err := json.Unmarshal(raw, &d); err != nil {
		return Data{}, derrors.Wrap(derrors.ErrCodeInvalidInput, err, "parse snapshot %s", path)
	}
	return d, nil
}

// SaveSnapshot writes d to path as indented JSON.
func SaveSnapshot(path string, d Data) error {
	if d.Blocks == nil {
		d.Blocks = []scene.Block{}
	}
	if d.Transactions == nil {
		d.Transactions = []scene.Transaction{}
	}
	raw, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(raw, '\n'), 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
