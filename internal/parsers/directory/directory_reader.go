package directory

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/deploymenttheory/go-minidump/internal/interfaces"
	"github.com/deploymenttheory/go-minidump/internal/types"
)

// directoryReader implements the DirectoryReader interface
type directoryReader struct {
	entries []types.DirectoryEntry
}

// ReadDirectory reads every entry of the stream directory described by header.
// The directory must be readable in full: any seek or short read rejects the
// container with types.ErrNotMinidump.
func ReadDirectory(r io.ReadSeeker, header interfaces.ContainerHeaderReader) (interfaces.DirectoryReader, error) {
	count := header.StreamCount()
	base := int64(header.DirectoryRva())

	dir := &directoryReader{
		entries: make([]types.DirectoryEntry, 0, min(count, 1024)),
	}

	record := make([]byte, types.DirectoryEntrySize)
	for i := uint32(0); i < count; i++ {
		offset := base + int64(i)*types.DirectoryEntrySize
		if _, err := r.Seek(offset, io.SeekStart); err != nil {
			return nil, fmt.Errorf("%w: seek to directory entry %d at 0x%x: %v", types.ErrNotMinidump, i, offset, err)
		}
		if _, err := io.ReadFull(r, record); err != nil {
			return nil, fmt.Errorf("%w: read directory entry %d at 0x%x: %v", types.ErrNotMinidump, i, offset, err)
		}
		dir.entries = append(dir.entries, parseDirectoryEntry(i, record))
	}

	return dir, nil
}

// parseDirectoryEntry decodes one 12-byte MINIDUMP_DIRECTORY record
func parseDirectoryEntry(index uint32, data []byte) types.DirectoryEntry {
	le := binary.LittleEndian
	return types.DirectoryEntry{
		Index:      index,
		StreamType: types.StreamType(le.Uint32(data[0:4])),
		Location: types.LocationDescriptor{
			DataSize: le.Uint32(data[4:8]),
			Rva:      types.RVA(le.Uint32(data[8:12])),
		},
	}
}

// Entries returns every entry in directory order
func (d *directoryReader) Entries() []types.DirectoryEntry {
	return d.entries
}

// EntriesOfType returns the entries with the given stream type
func (d *directoryReader) EntriesOfType(streamType types.StreamType) []types.DirectoryEntry {
	var out []types.DirectoryEntry
	for _, e := range d.entries {
		if e.StreamType == streamType {
			out = append(out, e)
		}
	}
	return out
}

// Count returns the number of entries
func (d *directoryReader) Count() int {
	return len(d.entries)
}
