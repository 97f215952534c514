package header

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/deploymenttheory/go-minidump/internal/interfaces"
	"github.com/deploymenttheory/go-minidump/internal/types"
)

// containerHeaderReader implements the ContainerHeaderReader interface
type containerHeaderReader struct {
	header types.ContainerHeader
}

// ReadContainerHeader seeks to the start of r and validates the fixed header.
// Every failure is reported as types.ErrNotMinidump so that a prober can try
// other formats.
func ReadContainerHeader(r io.ReadSeeker) (interfaces.ContainerHeaderReader, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: seek to header: %v", types.ErrNotMinidump, err)
	}

	data := make([]byte, types.ContainerHeaderSize)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("%w: short header read: %v", types.ErrNotMinidump, err)
	}

	return NewContainerHeaderReader(data)
}

// NewContainerHeaderReader creates a ContainerHeaderReader from raw header bytes
func NewContainerHeaderReader(data []byte) (interfaces.ContainerHeaderReader, error) {
	if len(data) < types.ContainerHeaderSize {
		return nil, fmt.Errorf("%w: header needs %d bytes, got %d", types.ErrNotMinidump, types.ContainerHeaderSize, len(data))
	}

	header := parseContainerHeader(data)

	if header.Signature != types.MinidumpSignature {
		return nil, fmt.Errorf("%w: invalid signature: got 0x%08X, want 0x%08X", types.ErrNotMinidump, header.Signature, types.MinidumpSignature)
	}

	// A container without streams is never accepted.
	if header.StreamCount == 0 {
		return nil, fmt.Errorf("%w: stream count is zero", types.ErrNotMinidump)
	}

	return &containerHeaderReader{header: header}, nil
}

// parseContainerHeader decodes the 32-byte MINIDUMP_HEADER
func parseContainerHeader(data []byte) types.ContainerHeader {
	le := binary.LittleEndian
	return types.ContainerHeader{
		Signature:          le.Uint32(data[types.HeaderSignatureOffset:]),
		Version:            le.Uint32(data[types.HeaderVersionOffset:]),
		StreamCount:        le.Uint32(data[types.HeaderStreamCountOffset:]),
		StreamDirectoryRva: types.RVA(le.Uint32(data[types.HeaderDirectoryRvaOffset:])),
		Checksum:           le.Uint32(data[types.HeaderChecksumOffset:]),
		TimeDateStamp:      le.Uint32(data[types.HeaderTimestampOffset:]),
		Flags:              le.Uint64(data[types.HeaderFlagsOffset:]),
	}
}

// Header returns the decoded header record
func (r *containerHeaderReader) Header() types.ContainerHeader {
	return r.header
}

// Signature returns the format signature
func (r *containerHeaderReader) Signature() uint32 {
	return r.header.Signature
}

// StreamCount returns the number of directory entries
func (r *containerHeaderReader) StreamCount() uint32 {
	return r.header.StreamCount
}

// DirectoryRva returns the offset of the stream directory
func (r *containerHeaderReader) DirectoryRva() types.RVA {
	return r.header.StreamDirectoryRva
}
