package services

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/deploymenttheory/go-minidump/internal/device"
	"github.com/deploymenttheory/go-minidump/internal/parsers/regions"
	internal "github.com/deploymenttheory/go-minidump/internal/services"
	"github.com/deploymenttheory/go-minidump/internal/types"
)

// ErrFormatNotRecognized is returned when an input is not of the probed format
var ErrFormatNotRecognized = errors.New("format not recognized")

// ErrAllocationFailed is returned when region storage is exhausted
var ErrAllocationFailed = types.ErrAllocationFailed

// ErrRegionNotFound is returned when a region index or address matches no region
var ErrRegionNotFound = internal.ErrRegionNotFound

// minidumpService implements the MinidumpService interface
type minidumpService struct {
	config *device.Config
}

// NewMinidumpService creates a new minidump service. A nil config uses defaults.
func NewMinidumpService(config *device.Config) MinidumpService {
	if config == nil {
		config = DefaultConfig()
	}
	return &minidumpService{config: config}
}

// DefaultConfig returns the configuration used when none is loaded
func DefaultConfig() *device.Config {
	return &device.Config{
		RegionName:     types.DefaultRegionName,
		AlignmentPower: types.DefaultRegionAlignmentPower,
		MaxRegions:     internal.DefaultMaxRegions,
		LogLevel:       "info",
		OutputFormat:   "table",
	}
}

// ParseOptionsFromConfig converts configuration into parse options
func ParseOptionsFromConfig(config *device.Config) internal.ParseOptions {
	options := internal.DefaultParseOptions()
	if config == nil {
		return options
	}
	options.Region = regions.BuilderConfig{
		Name:           config.RegionName,
		AlignmentPower: config.AlignmentPower,
		Flags:          types.DefaultRegionFlags,
	}
	options.MaxRegions = config.MaxRegions
	return options
}

// OpenFile opens and parses the minidump at path. The returned dump owns the
// file handle and must be closed.
func OpenFile(path string, config *device.Config) (*internal.Dump, error) {
	file, err := device.OpenDumpFile(path)
	if err != nil {
		return nil, err
	}

	dump, err := Open(file, config)
	if err != nil {
		file.Close()
		return nil, err
	}
	dump.SetCloser(file)
	return dump, nil
}

// Open parses a minidump from r. The caller keeps ownership of r.
func Open(r io.ReadSeeker, config *device.Config) (*internal.Dump, error) {
	dump, err := internal.ParseDump(r, ParseOptionsFromConfig(config))
	if err != nil {
		if internal.IsNotMinidump(err) {
			return nil, fmt.Errorf("%w: %w", ErrFormatNotRecognized, err)
		}
		return nil, fmt.Errorf("failed to open minidump: %w", err)
	}
	return dump, nil
}

// Inspect opens the file at path and summarizes it
func (s *minidumpService) Inspect(path string) (*DumpInfo, error) {
	start := time.Now()
	dump, err := OpenFile(path, s.config)
	if err != nil {
		return nil, err
	}
	defer dump.Close()

	info := Summarize(dump)
	info.Path = path
	info.ParseTime = time.Since(start)
	return info, nil
}

// ReadRegion returns a region and its captured bytes
func (s *minidumpService) ReadRegion(path string, index int) (RegionInfo, []byte, error) {
	dump, err := OpenFile(path, s.config)
	if err != nil {
		return RegionInfo{}, nil, err
	}
	defer dump.Close()

	data, err := dump.ReadRegion(index)
	if err != nil {
		return RegionInfo{}, nil, err
	}
	return newRegionInfo(index, dump.Regions().At(index)), data, nil
}

// ReadMemory returns captured bytes at a virtual address
func (s *minidumpService) ReadMemory(path string, addr uint64, length uint32) ([]byte, error) {
	dump, err := OpenFile(path, s.config)
	if err != nil {
		return nil, err
	}
	defer dump.Close()

	return dump.ReadMemory(addr, length)
}

// Summarize converts a parsed dump into its reporting form
func Summarize(dump *internal.Dump) *DumpInfo {
	header := dump.Header()

	var sig [4]byte
	binary.LittleEndian.PutUint32(sig[:], header.Signature)

	info := &DumpInfo{
		Size:           dump.Size(),
		Signature:      string(sig[:]),
		Version:        header.FormatVersion(),
		Timestamp:      time.Unix(int64(header.TimeDateStamp), 0).UTC(),
		Flags:          header.Flags,
		StreamCount:    header.StreamCount,
		TotalCaptured:  dump.Regions().TotalSize(),
		FailingCommand: dump.FailingCommand(),
		FailingSignal:  dump.FailingSignal(),
	}

	for _, entry := range dump.Entries() {
		info.Streams = append(info.Streams, StreamInfo{
			Index:    entry.Index,
			Type:     uint32(entry.StreamType),
			TypeName: entry.StreamType.String(),
			Kind:     types.KindOf(entry.StreamType).String(),
			DataSize: entry.Location.DataSize,
			Rva:      uint32(entry.Location.Rva),
		})
	}

	for i, region := range dump.Regions().Regions() {
		info.Regions = append(info.Regions, newRegionInfo(i, region))
	}

	for _, issue := range dump.Issues() {
		info.Issues = append(info.Issues, IssueInfo{
			Index:    issue.EntryIndex,
			TypeName: issue.StreamType.String(),
			Reason:   issue.Reason,
		})
	}

	return info
}

func newRegionInfo(index int, region types.Region) RegionInfo {
	return RegionInfo{
		Index:          index,
		Name:           region.Name,
		VirtualAddress: region.VirtualAddress,
		Size:           region.Size,
		FileOffset:     region.FileOffset,
		AlignmentPower: region.AlignmentPower,
		Flags:          region.Flags.String(),
	}
}
