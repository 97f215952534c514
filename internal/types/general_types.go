// Package types implements the on-disk records of the Windows minidump container.
// Layouts follow the MINIDUMP_* structures in minidumpapiset.h / Breakpad's
// minidump_format.h. All multi-byte integers are little-endian.
package types

// RVA is a byte offset relative to the start of the container file.
type RVA uint32

// LocationDescriptor locates a payload inside the container.
// Reference: MINIDUMP_LOCATION_DESCRIPTOR
type LocationDescriptor struct {
	// Size of the payload in bytes.
	DataSize uint32
	// Offset of the payload from the start of the file.
	Rva RVA
}

// End returns the offset one past the last byte of the payload.
func (l LocationDescriptor) End() uint64 {
	return uint64(l.Rva) + uint64(l.DataSize)
}

// ContainerHeader is the fixed record at offset 0 of every minidump.
// Reference: MINIDUMP_HEADER
type ContainerHeader struct {
	Signature          uint32
	Version            uint32
	StreamCount        uint32
	StreamDirectoryRva RVA
	Checksum           uint32
	TimeDateStamp      uint32
	Flags              uint64
}

// FormatVersion returns the low word of Version, which carries the format
// version (0xa793 for files written by dbghelp).
func (h ContainerHeader) FormatVersion() uint16 {
	return uint16(h.Version & 0xffff)
}

// ImplementationVersion returns the high word of Version.
func (h ContainerHeader) ImplementationVersion() uint16 {
	return uint16(h.Version >> 16)
}

// DirectoryEntry describes one stream of the container.
// Reference: MINIDUMP_DIRECTORY
type DirectoryEntry struct {
	// Position of the entry in the directory.
	Index      uint32
	StreamType StreamType
	Location   LocationDescriptor
}

// MemoryDescriptor describes one contiguous captured memory range.
// Reference: MINIDUMP_MEMORY_DESCRIPTOR
type MemoryDescriptor struct {
	StartOfMemoryRange uint64
	Memory             LocationDescriptor
}
