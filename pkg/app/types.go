package app

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// AddressRange selects regions by virtual address. A zero End means no upper bound.
type AddressRange struct {
	Start uint64
	End   uint64
}

// Validate ensures the range is well formed
func (ar *AddressRange) Validate() error {
	if ar.End != 0 && ar.End <= ar.Start {
		return errors.New("address range end must be greater than start")
	}
	return nil
}

// IsEmpty returns true if no bound is set
func (ar *AddressRange) IsEmpty() bool {
	return ar.Start == 0 && ar.End == 0
}

// Overlaps reports whether size bytes at start intersect the range. The last
// byte saturates at the top of the address space instead of wrapping.
func (ar *AddressRange) Overlaps(start, size uint64) bool {
	if ar.IsEmpty() {
		return true
	}
	if ar.End != 0 && start >= ar.End {
		return false
	}
	if size == 0 {
		return start >= ar.Start
	}
	last := start + size - 1
	if last < start {
		last = math.MaxUint64
	}
	return last >= ar.Start
}

// String returns a string representation of the range
func (ar *AddressRange) String() string {
	switch {
	case ar.IsEmpty():
		return "all addresses"
	case ar.End == 0:
		return fmt.Sprintf("0x%x-", ar.Start)
	default:
		return fmt.Sprintf("0x%x-0x%x", ar.Start, ar.End)
	}
}

// ParseAddress parses a decimal or 0x-prefixed hexadecimal address
func ParseAddress(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty address")
	}
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return v, nil
}

// CommonError represents application-level errors
type CommonError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CommonError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *CommonError) Unwrap() error {
	return e.Cause
}

// Common error codes
const (
	ErrCodeInvalidInput     = "INVALID_INPUT"
	ErrCodeContainerAccess  = "CONTAINER_ACCESS"
	ErrCodeNotMinidump      = "NOT_MINIDUMP"
	ErrCodeAllocationFailed = "ALLOCATION_FAILED"
	ErrCodeRegionNotFound   = "REGION_NOT_FOUND"
)

// NewError creates a new CommonError
func NewError(code, message string, cause error) *CommonError {
	return &CommonError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// ErrorCode returns the code of the first CommonError in err's chain
func ErrorCode(err error) string {
	var ce *CommonError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}
