package inspect

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/deploymenttheory/go-minidump/pkg/app"
)

// MaxResultsLimit caps the number of regions in one report
const MaxResultsLimit = 1 << 20

// MaxReadLength caps a single memory read
const MaxReadLength = 64 * 1024 * 1024

var sizeMultipliers = map[string]uint64{
	"":   1,
	"B":  1,
	"KB": 1024,
	"MB": 1024 * 1024,
	"GB": 1024 * 1024 * 1024,
}

// Validate validates an inspection request
func (r *Request) Validate() error {
	// Dump path is required
	if r.DumpPath == "" {
		return app.NewError(app.ErrCodeInvalidInput, "dump path is required", nil)
	}

	if err := r.Range.Validate(); err != nil {
		return app.NewError(app.ErrCodeInvalidInput, "invalid address range", err)
	}

	if r.MinSize != "" {
		if _, err := ParseSize(r.MinSize); err != nil {
			return app.NewError(app.ErrCodeInvalidInput, "invalid min-size format", err)
		}
	}

	if r.MaxResults < 1 || r.MaxResults > MaxResultsLimit {
		return app.NewError(app.ErrCodeInvalidInput, fmt.Sprintf("max results must be between 1 and %d", MaxResultsLimit), nil)
	}

	return nil
}

// Validate validates a read request
func (r *ReadRequest) Validate() error {
	if r.DumpPath == "" {
		return app.NewError(app.ErrCodeInvalidInput, "dump path is required", nil)
	}

	if r.Address == "" {
		if r.RegionIndex < 0 {
			return app.NewError(app.ErrCodeInvalidInput, "either a region index or an address is required", nil)
		}
		return nil
	}

	if _, err := app.ParseAddress(r.Address); err != nil {
		return app.NewError(app.ErrCodeInvalidInput, "invalid address", err)
	}
	if r.Length == 0 || r.Length > MaxReadLength {
		return app.NewError(app.ErrCodeInvalidInput, fmt.Sprintf("length must be between 1 and %d", MaxReadLength), nil)
	}
	return nil
}

// ParseSize converts size strings like "4KB" or "1.5MB" to bytes. A bare
// number is a byte count.
func ParseSize(size string) (uint64, error) {
	size = strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(size), " ", ""))
	if size == "" {
		return 0, fmt.Errorf("empty size")
	}

	split := len(size)
	for i, char := range size {
		if !(char >= '0' && char <= '9' || char == '.') {
			split = i
			break
		}
	}
	numPart, unit := size[:split], size[split:]

	if numPart == "" {
		return 0, fmt.Errorf("no numeric value found")
	}
	value, err := strconv.ParseFloat(numPart, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid numeric value: %s", numPart)
	}

	multiplier, ok := sizeMultipliers[unit]
	if !ok {
		return 0, fmt.Errorf("invalid size unit: %s (valid: B, KB, MB, GB)", unit)
	}

	return uint64(value * float64(multiplier)), nil
}
