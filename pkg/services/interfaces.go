package services

import (
	"io"
	"time"

	"github.com/deploymenttheory/go-minidump/internal/types"
)

// DumpInfo summarizes an accepted minidump
type DumpInfo struct {
	Path           string        `json:"path" yaml:"path"`
	Size           int64         `json:"size" yaml:"size"`
	Signature      string        `json:"signature" yaml:"signature"`
	Version        uint16        `json:"version" yaml:"version"`
	Timestamp      time.Time     `json:"timestamp" yaml:"timestamp"`
	Flags          uint64        `json:"flags" yaml:"flags"`
	StreamCount    uint32        `json:"stream_count" yaml:"stream_count"`
	Streams        []StreamInfo  `json:"streams" yaml:"streams"`
	Regions        []RegionInfo  `json:"regions" yaml:"regions"`
	TotalCaptured  uint64        `json:"total_captured" yaml:"total_captured"`
	Issues         []IssueInfo   `json:"issues,omitempty" yaml:"issues,omitempty"`
	FailingCommand string        `json:"failing_command" yaml:"failing_command"`
	FailingSignal  int           `json:"failing_signal" yaml:"failing_signal"`
	ParseTime      time.Duration `json:"parse_time" yaml:"parse_time"`
}

// StreamInfo describes one directory entry
type StreamInfo struct {
	Index    uint32 `json:"index" yaml:"index"`
	Type     uint32 `json:"type" yaml:"type"`
	TypeName string `json:"type_name" yaml:"type_name"`
	Kind     string `json:"kind" yaml:"kind"`
	DataSize uint32 `json:"data_size" yaml:"data_size"`
	Rva      uint32 `json:"rva" yaml:"rva"`
}

// RegionInfo describes one reconstructed memory region
type RegionInfo struct {
	Index          int    `json:"index" yaml:"index"`
	Name           string `json:"name" yaml:"name"`
	VirtualAddress uint64 `json:"virtual_address" yaml:"virtual_address"`
	Size           uint32 `json:"size" yaml:"size"`
	FileOffset     uint32 `json:"file_offset" yaml:"file_offset"`
	AlignmentPower uint32 `json:"alignment_power" yaml:"alignment_power"`
	Flags          string `json:"flags" yaml:"flags"`
}

// IssueInfo describes a stream that could only be partly decoded
type IssueInfo struct {
	Index    uint32 `json:"index" yaml:"index"`
	TypeName string `json:"type_name" yaml:"type_name"`
	Reason   string `json:"reason" yaml:"reason"`
}

// MinidumpService provides high-level operations on minidump files
type MinidumpService interface {
	// Inspect opens the file at path, summarizes it and closes it again
	Inspect(path string) (*DumpInfo, error)

	// ReadRegion returns region index of the file at path and its captured bytes
	ReadRegion(path string, index int) (RegionInfo, []byte, error)

	// ReadMemory returns length captured bytes at a virtual address
	ReadMemory(path string, addr uint64, length uint32) ([]byte, error)
}

// FormatOpener recognizes and opens one file format
type FormatOpener interface {
	// Name returns the format name
	Name() string

	// Open decodes r. An error matching ErrFormatNotRecognized is a silent
	// decline; any other error is fatal to the probe.
	Open(r io.ReadSeeker) (Handle, error)
}

// Handle is an opened object exposing captured memory regions
type Handle interface {
	Format() string
	Regions() []types.Region
	Close() error
}
