package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/wonny/trendscore/internal/contracts"
)

// RunParams are the operator controls that change what a run computes.
// Display filters are applied by callers afterwards and never reach here.
type RunParams struct {
	Variant   contracts.Variant `json:"variant"`
	Window    int               `json:"window"`
	BatchSize int               `json:"batch_size"`
	Symbols   []string          `json:"symbols,omitempty"` // overrides the configured source
	Refresh   bool              `json:"-"`                 // bypass the cache lookup
}

// Validate checks operator supplied values
func (p RunParams) Validate() error {
	if p.Variant != "" {
		if _, err := contracts.ParseVariant(string(p.Variant)); err != nil {
			return err
		}
	}
	if p.Window != 0 && p.Window < 2 {
		return fmt.Errorf("window must be >= 2, got %d", p.Window)
	}
	if p.BatchSize != 0 && (p.BatchSize < 1 || p.BatchSize > 500) {
		return fmt.Errorf("batch size must be in [1, 500], got %d", p.BatchSize)
	}
	return nil
}

// withDefaults fills zero fields and normalizes the symbol override
func (p RunParams) withDefaults(d RunParams) RunParams {
	if p.Variant == "" {
		p.Variant = d.Variant
	}
	if p.Window == 0 {
		p.Window = d.Window
	}
	if p.BatchSize == 0 {
		p.BatchSize = d.BatchSize
	}
	if len(p.Symbols) > 0 {
		p.Symbols = contracts.NormalizeSymbols(p.Symbols)
	}
	return p
}

// hashOf returns a short stable digest of v's JSON form
func hashOf(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:16], nil
}
