package directory

import (
	"io"

	"github.com/deploymenttheory/go-minidump/internal/interfaces"
	"github.com/deploymenttheory/go-minidump/internal/parsers/memory_list"
	"github.com/deploymenttheory/go-minidump/internal/types"
)

// Stream is a decoded directory entry. The set of implementations is closed;
// each stream kind carries its own payload type.
type Stream interface {
	Kind() types.StreamKind
	Entry() types.DirectoryEntry
	isStream()
}

type streamBase struct {
	entry types.DirectoryEntry
}

func (s streamBase) Entry() types.DirectoryEntry { return s.entry }
func (streamBase) isStream()                     {}

// MemoryListStream carries the descriptors of a memory-list stream.
type MemoryListStream struct {
	streamBase
	List interfaces.MemoryListReader
}

func (*MemoryListStream) Kind() types.StreamKind { return types.StreamKindMemoryList }

// ThreadListStream is recognized but its payload is not decoded.
type ThreadListStream struct{ streamBase }

func (*ThreadListStream) Kind() types.StreamKind { return types.StreamKindThreadList }

// ModuleListStream is recognized but its payload is not decoded.
type ModuleListStream struct{ streamBase }

func (*ModuleListStream) Kind() types.StreamKind { return types.StreamKindModuleList }

// ExceptionStream is recognized but its payload is not decoded.
type ExceptionStream struct{ streamBase }

func (*ExceptionStream) Kind() types.StreamKind { return types.StreamKindException }

// SystemInfoStream is recognized but its payload is not decoded.
type SystemInfoStream struct{ streamBase }

func (*SystemInfoStream) Kind() types.StreamKind { return types.StreamKindSystemInfo }

// UnknownStream is any stream type outside the recognized set.
type UnknownStream struct{ streamBase }

func (*UnknownStream) Kind() types.StreamKind { return types.StreamKindUnknown }

// DecodeStream decodes the payload of one directory entry.
//
// A payload failure returns the partially decoded stream together with the
// error; the stream is never nil.
func DecodeStream(r io.ReadSeeker, entry types.DirectoryEntry) (Stream, error) {
	base := streamBase{entry: entry}

	switch types.KindOf(entry.StreamType) {
	case types.StreamKindMemoryList:
		list, err := memory_list.ReadMemoryList(r, entry.Location)
		return &MemoryListStream{streamBase: base, List: list}, err
	case types.StreamKindThreadList:
		return &ThreadListStream{base}, nil
	case types.StreamKindModuleList:
		return &ModuleListStream{base}, nil
	case types.StreamKindException:
		return &ExceptionStream{base}, nil
	case types.StreamKindSystemInfo:
		return &SystemInfoStream{base}, nil
	default:
		return &UnknownStream{base}, nil
	}
}
