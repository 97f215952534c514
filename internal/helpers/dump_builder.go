package helpers

import (
	"encoding/binary"

	"github.com/deploymenttheory/go-minidump/internal/types"
)

// MemoryRange is one captured range placed in a synthetic dump.
type MemoryRange struct {
	Start uint64
	Data  []byte
}

type builderStream struct {
	streamType types.StreamType

	// memory-list streams
	ranges        []MemoryRange
	declaredCount *uint32

	// opaque streams
	payload []byte

	// entries with a caller supplied location and no payload
	raw      bool
	location types.LocationDescriptor
}

// DumpBuilder lays out minidump containers in memory for tests and fixtures.
// Layout: header, directory, captured memory bytes, then stream payloads in
// the order they were added.
type DumpBuilder struct {
	signature     uint32
	version       uint32
	timestamp     uint32
	flags         uint64
	streamCount   *uint32
	directoryRva  *uint32
	streams       []builderStream
	truncateAfter int
}

// NewDumpBuilder returns a builder producing a valid, empty-directory dump.
func NewDumpBuilder() *DumpBuilder {
	return &DumpBuilder{
		signature:     types.MinidumpSignature,
		version:       uint32(types.MinidumpVersion),
		truncateAfter: -1,
	}
}

// WithSignature overrides the header signature.
func (b *DumpBuilder) WithSignature(sig uint32) *DumpBuilder {
	b.signature = sig
	return b
}

// WithStreamCount overrides the stream count written to the header.
func (b *DumpBuilder) WithStreamCount(n uint32) *DumpBuilder {
	b.streamCount = &n
	return b
}

// WithDirectoryRva overrides the directory location written to the header.
func (b *DumpBuilder) WithDirectoryRva(rva uint32) *DumpBuilder {
	b.directoryRva = &rva
	return b
}

// WithTimestamp sets the header time/date stamp.
func (b *DumpBuilder) WithTimestamp(ts uint32) *DumpBuilder {
	b.timestamp = ts
	return b
}

// WithFlags sets the header flags.
func (b *DumpBuilder) WithFlags(flags uint64) *DumpBuilder {
	b.flags = flags
	return b
}

// TruncateTo cuts the output to n bytes.
func (b *DumpBuilder) TruncateTo(n int) *DumpBuilder {
	b.truncateAfter = n
	return b
}

// AddMemoryList appends a memory-list stream describing ranges.
func (b *DumpBuilder) AddMemoryList(ranges ...MemoryRange) *DumpBuilder {
	b.streams = append(b.streams, builderStream{
		streamType: types.MemoryListStream,
		ranges:     ranges,
	})
	return b
}

// AddMemoryListDeclaring appends a memory-list stream whose count field says
// declared while only len(ranges) descriptors are written.
func (b *DumpBuilder) AddMemoryListDeclaring(declared uint32, ranges ...MemoryRange) *DumpBuilder {
	b.streams = append(b.streams, builderStream{
		streamType:    types.MemoryListStream,
		ranges:        ranges,
		declaredCount: &declared,
	})
	return b
}

// AddStream appends a stream with an opaque payload.
func (b *DumpBuilder) AddStream(streamType types.StreamType, payload []byte) *DumpBuilder {
	b.streams = append(b.streams, builderStream{
		streamType: streamType,
		payload:    payload,
	})
	return b
}

// AddRawEntry appends a directory entry pointing at an arbitrary location.
func (b *DumpBuilder) AddRawEntry(streamType types.StreamType, dataSize, rva uint32) *DumpBuilder {
	b.streams = append(b.streams, builderStream{
		streamType: streamType,
		raw:        true,
		location:   types.LocationDescriptor{DataSize: dataSize, Rva: types.RVA(rva)},
	})
	return b
}

// MemoryRVA returns the file offset at which the j-th range of the i-th stream
// is written. Only meaningful for memory-list streams.
func (b *DumpBuilder) MemoryRVA(streamIndex, rangeIndex int) uint32 {
	blobs, _ := b.layout()
	return blobs[streamIndex][rangeIndex]
}

// layout assigns an RVA to every memory blob and stream payload.
func (b *DumpBuilder) layout() ([][]uint32, []types.LocationDescriptor) {
	offset := uint32(types.ContainerHeaderSize + types.DirectoryEntrySize*len(b.streams))

	blobs := make([][]uint32, len(b.streams))
	for i, s := range b.streams {
		for _, r := range s.ranges {
			blobs[i] = append(blobs[i], offset)
			offset += uint32(len(r.Data))
		}
	}

	locations := make([]types.LocationDescriptor, len(b.streams))
	for i, s := range b.streams {
		switch {
		case s.raw:
			locations[i] = s.location
		case s.streamType == types.MemoryListStream:
			size := uint32(types.MemoryListCountSize + types.MemoryDescriptorSize*len(s.ranges))
			locations[i] = types.LocationDescriptor{DataSize: size, Rva: types.RVA(offset)}
			offset += size
		default:
			locations[i] = types.LocationDescriptor{DataSize: uint32(len(s.payload)), Rva: types.RVA(offset)}
			offset += uint32(len(s.payload))
		}
	}

	return blobs, locations
}

// Bytes renders the container.
func (b *DumpBuilder) Bytes() []byte {
	le := binary.LittleEndian
	blobs, locations := b.layout()

	header := make([]byte, types.ContainerHeaderSize)
	streamCount := uint32(len(b.streams))
	if b.streamCount != nil {
		streamCount = *b.streamCount
	}
	directoryRva := uint32(types.ContainerHeaderSize)
	if b.directoryRva != nil {
		directoryRva = *b.directoryRva
	}
	le.PutUint32(header[types.HeaderSignatureOffset:], b.signature)
	le.PutUint32(header[types.HeaderVersionOffset:], b.version)
	le.PutUint32(header[types.HeaderStreamCountOffset:], streamCount)
	le.PutUint32(header[types.HeaderDirectoryRvaOffset:], directoryRva)
	le.PutUint32(header[types.HeaderTimestampOffset:], b.timestamp)
	le.PutUint64(header[types.HeaderFlagsOffset:], b.flags)

	out := header
	for i, s := range b.streams {
		entry := make([]byte, types.DirectoryEntrySize)
		le.PutUint32(entry[0:4], uint32(s.streamType))
		le.PutUint32(entry[4:8], locations[i].DataSize)
		le.PutUint32(entry[8:12], uint32(locations[i].Rva))
		out = append(out, entry...)
	}

	for _, s := range b.streams {
		for _, r := range s.ranges {
			out = append(out, r.Data...)
		}
	}

	for i, s := range b.streams {
		switch {
		case s.raw:
		case s.streamType == types.MemoryListStream:
			count := uint32(len(s.ranges))
			if s.declaredCount != nil {
				count = *s.declaredCount
			}
			out = le.AppendUint32(out, count)
			for j, r := range s.ranges {
				out = le.AppendUint64(out, r.Start)
				out = le.AppendUint32(out, uint32(len(r.Data)))
				out = le.AppendUint32(out, blobs[i][j])
			}
		default:
			out = append(out, s.payload...)
		}
	}

	if b.truncateAfter >= 0 && b.truncateAfter < len(out) {
		out = out[:b.truncateAfter]
	}
	return out
}
