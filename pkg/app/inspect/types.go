package inspect

import (
	"fmt"
	"time"

	"github.com/deploymenttheory/go-minidump/pkg/app"
	"github.com/deploymenttheory/go-minidump/pkg/services"
)

// Request represents a dump inspection request
type Request struct {
	DumpPath string

	// Region selection
	Range      app.AddressRange
	MinSize    string
	MaxResults int

	// Sections to include in the report
	IncludeStreams bool
	IncludeRegions bool
}

// Response represents an inspection report
type Response struct {
	ReportID     string             `json:"report_id" yaml:"report_id"`
	Dump         *services.DumpInfo `json:"dump" yaml:"dump"`
	TotalRegions int                `json:"total_regions" yaml:"total_regions"`
	Truncated    bool               `json:"truncated" yaml:"truncated"`
	Filter       Filter             `json:"filter" yaml:"filter"`
}

// Filter records the region selection that was applied
type Filter struct {
	Range      string `json:"range" yaml:"range"`
	MinSize    uint64 `json:"min_size,omitempty" yaml:"min_size,omitempty"`
	MaxResults int    `json:"max_results" yaml:"max_results"`
}

// ReadRequest asks for captured memory, by region index or by address
type ReadRequest struct {
	DumpPath    string
	RegionIndex int
	Address     string
	Length      uint32
}

// ReadResponse carries captured memory bytes
type ReadResponse struct {
	ReportID string        `json:"report_id" yaml:"report_id"`
	Address  uint64        `json:"address" yaml:"address"`
	Length   int           `json:"length" yaml:"length"`
	Data     []byte        `json:"data" yaml:"data"`
	ReadTime time.Duration `json:"read_time" yaml:"read_time"`
}

// SizeClass represents region size categories for display
type SizeClass string

const (
	SizeClassPage   SizeClass = "page"   // <= 4KB
	SizeClassSmall  SizeClass = "small"  // < 1MB
	SizeClassMedium SizeClass = "medium" // < 64MB
	SizeClassLarge  SizeClass = "large"  // >= 64MB
)

// GetSizeClass returns the size class for a region size
func GetSizeClass(size uint32) SizeClass {
	switch {
	case size <= 4096:
		return SizeClassPage
	case size < 1024*1024:
		return SizeClassSmall
	case size < 64*1024*1024:
		return SizeClassMedium
	default:
		return SizeClassLarge
	}
}

// formatBytes formats byte count as human readable
func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
