// File: internal/interfaces/regions.go
package interfaces

import (
	"github.com/deploymenttheory/go-minidump/internal/types"
)

// RegionAllocator hands out region storage scoped to one open container
type RegionAllocator interface {
	// Allocate returns zeroed storage for one region, or an error when exhausted
	Allocate() (*types.Region, error)

	// Allocated returns how many regions have been handed out
	Allocated() int
}

// RegionAppender is the append-only capability given to the region builder
type RegionAppender interface {
	// Append adds a region to the end of the table
	Append(region *types.Region)
}

// RegionTable provides read access to the regions of an open container
type RegionTable interface {
	// Len returns the number of regions
	Len() int

	// At returns the region at index i in creation order
	At(i int) types.Region

	// Regions returns a copy of all regions in creation order
	Regions() []types.Region

	// FindByAddress returns the first region containing addr
	FindByAddress(addr uint64) (types.Region, bool)

	// TotalSize returns the sum of all region sizes in bytes
	TotalSize() uint64
}
