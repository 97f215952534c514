// File: internal/interfaces/container.go
package interfaces

import (
	"github.com/deploymenttheory/go-minidump/internal/types"
)

// ContainerHeaderReader provides methods for reading a validated container header
type ContainerHeaderReader interface {
	// Header returns the decoded header record
	Header() types.ContainerHeader

	// Signature returns the format signature ('MDMP')
	Signature() uint32

	// StreamCount returns the number of entries in the stream directory
	StreamCount() uint32

	// DirectoryRva returns the file offset of the stream directory
	DirectoryRva() types.RVA
}

// DirectoryReader provides methods for reading the stream directory
type DirectoryReader interface {
	// Entries returns every directory entry in directory order
	Entries() []types.DirectoryEntry

	// EntriesOfType returns the entries carrying the given stream type
	EntriesOfType(streamType types.StreamType) []types.DirectoryEntry

	// Count returns the number of entries
	Count() int
}

// MemoryListReader provides methods for reading a decoded memory-list stream
type MemoryListReader interface {
	// DeclaredCount returns the range count stored at the head of the stream
	DeclaredCount() uint32

	// Descriptors returns the range descriptors that were fully read
	Descriptors() []types.MemoryDescriptor

	// Truncated reports whether decoding stopped before DeclaredCount ranges
	Truncated() bool
}
