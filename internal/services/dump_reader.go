package services

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/deploymenttheory/go-minidump/internal/interfaces"
	"github.com/deploymenttheory/go-minidump/internal/parsers/directory"
	"github.com/deploymenttheory/go-minidump/internal/parsers/header"
	"github.com/deploymenttheory/go-minidump/internal/parsers/regions"
	"github.com/deploymenttheory/go-minidump/internal/types"
)

// DefaultMaxRegions bounds the region arena when no limit is configured
const DefaultMaxRegions = 1 << 20

// ParseOptions configures a DumpReader
type ParseOptions struct {
	// Region holds the fixed attributes given to every region
	Region regions.BuilderConfig

	// MaxRegions limits the default arena allocator. Ignored when Allocator is set.
	MaxRegions int

	// Allocator overrides the region allocator
	Allocator interfaces.RegionAllocator
}

// DefaultParseOptions returns the options used when none are given
func DefaultParseOptions() ParseOptions {
	return ParseOptions{
		Region:     regions.DefaultBuilderConfig(),
		MaxRegions: DefaultMaxRegions,
	}
}

// DumpReader runs a single parse of a minidump container over one byte
// stream. The reader assumes exclusive use of the stream's cursor.
type DumpReader struct {
	reader  io.ReadSeeker
	options ParseOptions
	state   types.ContainerState
}

// NewDumpReader creates a reader in the unprobed state
func NewDumpReader(r io.ReadSeeker, options ParseOptions) *DumpReader {
	return &DumpReader{
		reader:  r,
		options: options,
		state:   types.StateUnprobed,
	}
}

// State returns the current parse state
func (dr *DumpReader) State() types.ContainerState {
	return dr.state
}

func (dr *DumpReader) transition(to types.ContainerState) {
	Logger().Debug("minidump state transition",
		zap.Stringer("from", dr.state),
		zap.Stringer("to", to))
	dr.state = to
}

// Parse validates the header, walks the directory and builds the region table.
//
// A structural header or directory failure returns an error matching
// types.ErrNotMinidump. Allocation failure returns an error matching
// types.ErrAllocationFailed. In both cases no Dump is returned. Payload
// failures inside individual streams are recorded on the Dump as issues.
func (dr *DumpReader) Parse() (*Dump, error) {
	if dr.state != types.StateUnprobed {
		return nil, fmt.Errorf("dump reader already used: state %s", dr.state)
	}

	headerReader, err := header.ReadContainerHeader(dr.reader)
	if err != nil {
		dr.reject(err)
		return nil, err
	}
	dr.transition(types.StateHeaderValid)
	Logger().Debug("minidump header accepted",
		zap.Uint32("stream_count", headerReader.StreamCount()),
		zap.Uint32("directory_rva", uint32(headerReader.DirectoryRva())))

	dir, err := directory.ReadDirectory(dr.reader, headerReader)
	if err != nil {
		dr.reject(err)
		return nil, err
	}

	// The table stays private until the walk has finished.
	table := regions.NewTable()
	allocator := dr.options.Allocator
	if allocator == nil {
		allocator = regions.NewArenaAllocator(dr.options.MaxRegions)
	}
	builder := regions.NewBuilder(allocator, dr.options.Region)

	var issues []types.StreamIssue
	walker := directory.NewWalker(dr.reader)
	err = walker.Walk(dir, func(stream directory.Stream, decodeErr error) error {
		entry := stream.Entry()
		Logger().Debug("minidump directory entry",
			zap.Uint32("index", entry.Index),
			zap.Stringer("stream_type", entry.StreamType),
			zap.Uint32("data_size", entry.Location.DataSize),
			zap.Uint32("rva", uint32(entry.Location.Rva)))

		if decodeErr != nil {
			issues = append(issues, types.StreamIssue{
				EntryIndex: entry.Index,
				StreamType: entry.StreamType,
				Reason:     decodeErr.Error(),
			})
			Logger().Info("minidump stream decode stopped early",
				zap.Uint32("index", entry.Index),
				zap.Stringer("stream_type", entry.StreamType),
				zap.Error(decodeErr))
		}

		switch s := stream.(type) {
		case *directory.MemoryListStream:
			return buildMemoryListRegions(builder, table, s)
		default:
			// Thread, module, exception and system-info payloads are not
			// decoded. Unknown stream types are ignored.
		}
		return nil
	})
	if err != nil {
		dr.transition(types.StateFailed)
		Logger().Error("minidump open aborted", zap.Error(err))
		return nil, err
	}
	dr.transition(types.StateDirectoryWalked)

	dump := &Dump{
		header:  headerReader.Header(),
		entries: dir.Entries(),
		regions: table,
		issues:  issues,
		source:  dr.reader,
		size:    sourceSize(dr.reader),
	}
	dr.transition(types.StateReady)
	dump.state = dr.state

	return dump, nil
}

func (dr *DumpReader) reject(err error) {
	Logger().Debug("not a minidump", zap.Error(err))
	dr.transition(types.StateRejected)
}

// buildMemoryListRegions appends one region per decoded descriptor
func buildMemoryListRegions(builder *regions.Builder, sink interfaces.RegionAppender, stream *directory.MemoryListStream) error {
	for _, desc := range stream.List.Descriptors() {
		region, err := builder.Build(desc, sink)
		if err != nil {
			return err
		}
		Logger().Debug("minidump region created",
			zap.Uint64("vma", region.VirtualAddress),
			zap.Uint32("filepos", region.FileOffset),
			zap.Uint32("size", region.Size))
	}
	return nil
}

// sourceSize returns the length of r, or -1 when it cannot be determined
func sourceSize(r io.ReadSeeker) int64 {
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return -1
	}
	return size
}

// ParseDump is shorthand for NewDumpReader(r, options).Parse()
func ParseDump(r io.ReadSeeker, options ParseOptions) (*Dump, error) {
	return NewDumpReader(r, options).Parse()
}

// IsNotMinidump reports whether err is the not-this-format verdict
func IsNotMinidump(err error) bool {
	return errors.Is(err, types.ErrNotMinidump)
}
