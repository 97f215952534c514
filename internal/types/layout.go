package types

// Minidump layout constants
const (
	// MinidumpSignature is 'MDMP' read as a little-endian u32.
	MinidumpSignature uint32 = 0x504d444d

	// MinidumpVersion is the format version written by dbghelp (low word of Version).
	MinidumpVersion uint16 = 0xa793

	// Record sizes in bytes
	ContainerHeaderSize    = 32
	DirectoryEntrySize     = 12
	LocationDescriptorSize = 8
	MemoryListCountSize    = 4
	MemoryDescriptorSize   = 16

	// Field offsets within the header
	HeaderSignatureOffset    = 0
	HeaderVersionOffset      = 4
	HeaderStreamCountOffset  = 8
	HeaderDirectoryRvaOffset = 12
	HeaderChecksumOffset     = 16
	HeaderTimestampOffset    = 20
	HeaderFlagsOffset        = 24
)
