package app

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressRange(t *testing.T) {
	tests := []struct {
		name     string
		r        AddressRange
		wantErr  bool
		str      string
		start    uint64
		size     uint64
		overlaps bool
	}{
		{name: "empty matches everything", r: AddressRange{}, str: "all addresses", start: 0x1000, size: 0x1000, overlaps: true},
		{name: "bounded inside", r: AddressRange{Start: 0x1000, End: 0x2000}, str: "0x1000-0x2000", start: 0x1800, size: 0x100, overlaps: true},
		{name: "end is exclusive", r: AddressRange{Start: 0x1000, End: 0x2000}, str: "0x1000-0x2000", start: 0x2000, size: 0x100, overlaps: false},
		{name: "region ends at start", r: AddressRange{Start: 0x1000, End: 0x2000}, str: "0x1000-0x2000", start: 0x800, size: 0x800, overlaps: false},
		{name: "open ended", r: AddressRange{Start: 0x1000}, str: "0x1000-", start: 0xffff0000, size: 0x1000, overlaps: true},
		{name: "region at top of address space", r: AddressRange{Start: 0xfffffffffffff800}, str: "0xfffffffffffff800-", start: 0xfffffffffffff000, size: 0x1000, overlaps: true},
		{name: "region below top-of-space range", r: AddressRange{Start: 0xffffffffffffff00}, str: "0xffffffffffffff00-", start: 0xfffffffffffff000, size: 0x100, overlaps: false},
		{name: "empty region at start", r: AddressRange{Start: 0x1000, End: 0x2000}, str: "0x1000-0x2000", start: 0x1000, size: 0, overlaps: true},
		{name: "inverted", r: AddressRange{Start: 0x2000, End: 0x1000}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.r.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.str, tt.r.String())
			assert.Equal(t, tt.overlaps, tt.r.Overlaps(tt.start, tt.size))
		})
	}
}

func TestParseAddress(t *testing.T) {
	tests := []struct {
		input    string
		expected uint64
		wantErr  bool
	}{
		{"0x7ff000", 0x7ff000, false},
		{"4096", 4096, false},
		{" 0X10 ", 0x10, false},
		{"0xffffffffffffffff", ^uint64(0), false},
		{"", 0, true},
		{"-1", 0, true},
		{"0xg", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAddress(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestCommonError(t *testing.T) {
	cause := errors.New("disk gone")
	err := NewError(ErrCodeContainerAccess, "failed to read crash.dmp", cause)

	assert.Equal(t, "failed to read crash.dmp: disk gone", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, ErrCodeContainerAccess, ErrorCode(fmt.Errorf("outer: %w", err)))
	assert.Equal(t, "", ErrorCode(cause))
	assert.Equal(t, "bad", NewError(ErrCodeInvalidInput, "bad", nil).Error())
}

func TestContext_LogRespectsVerbosity(t *testing.T) {
	var buf bytes.Buffer
	ctx := NewContext()
	ctx.Stderr = &buf

	ctx.Log("hidden")
	ctx.Verbose = true
	ctx.Log("shown")
	ctx.Quiet = true
	ctx.Log("quiet")
	ctx.Error("also quiet")

	assert.Equal(t, "shown\n", buf.String())
}
