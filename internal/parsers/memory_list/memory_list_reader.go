package memory_list

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/deploymenttheory/go-minidump/internal/interfaces"
	"github.com/deploymenttheory/go-minidump/internal/types"
)

// ErrTruncatedStream reports that a memory list ended before its declared count.
var ErrTruncatedStream = errors.New("memory list truncated")

// maxPreallocatedRanges caps the capacity reserved up front from an untrusted count
const maxPreallocatedRanges = 4096

// memoryListReader implements the MemoryListReader interface
type memoryListReader struct {
	declaredCount uint32
	descriptors   []types.MemoryDescriptor
}

// ReadMemoryList decodes the memory-list stream at location.
//
// The returned reader is never nil. When the stream cannot be read in full,
// it holds every descriptor that was read before the failure and the error
// says why decoding stopped. No descriptor is built from a partial record.
func ReadMemoryList(r io.ReadSeeker, location types.LocationDescriptor) (interfaces.MemoryListReader, error) {
	list := &memoryListReader{}

	if _, err := r.Seek(int64(location.Rva), io.SeekStart); err != nil {
		return list, fmt.Errorf("seek to memory list at 0x%x: %w", location.Rva, err)
	}

	var countBuf [types.MemoryListCountSize]byte
	if _, err := io.ReadFull(r, countBuf[:]); err != nil {
		return list, fmt.Errorf("read memory list count at 0x%x: %w", location.Rva, err)
	}
	list.declaredCount = binary.LittleEndian.Uint32(countBuf[:])
	list.descriptors = make([]types.MemoryDescriptor, 0, min(list.declaredCount, maxPreallocatedRanges))

	record := make([]byte, types.MemoryDescriptorSize)
	for i := uint32(0); i < list.declaredCount; i++ {
		if _, err := io.ReadFull(r, record); err != nil {
			return list, fmt.Errorf("%w: range %d of %d: %v", ErrTruncatedStream, i, list.declaredCount, err)
		}
		list.descriptors = append(list.descriptors, parseMemoryDescriptor(record))
	}

	return list, nil
}

// parseMemoryDescriptor decodes one 16-byte MINIDUMP_MEMORY_DESCRIPTOR
func parseMemoryDescriptor(data []byte) types.MemoryDescriptor {
	le := binary.LittleEndian
	return types.MemoryDescriptor{
		StartOfMemoryRange: le.Uint64(data[0:8]),
		Memory: types.LocationDescriptor{
			DataSize: le.Uint32(data[8:12]),
			Rva:      types.RVA(le.Uint32(data[12:16])),
		},
	}
}

// DeclaredCount returns the range count stored in the stream
func (m *memoryListReader) DeclaredCount() uint32 {
	return m.declaredCount
}

// Descriptors returns the descriptors read in full
func (m *memoryListReader) Descriptors() []types.MemoryDescriptor {
	return m.descriptors
}

// Truncated reports whether fewer descriptors were read than declared
func (m *memoryListReader) Truncated() bool {
	return uint32(len(m.descriptors)) < m.declaredCount
}
