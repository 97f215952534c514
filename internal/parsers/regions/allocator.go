package regions

import (
	"fmt"

	"github.com/deploymenttheory/go-minidump/internal/interfaces"
	"github.com/deploymenttheory/go-minidump/internal/types"
)

const slabSize = 256

// arenaAllocator hands out regions from fixed-size slabs. Storage lives as
// long as the allocator, which is owned by one open container.
type arenaAllocator struct {
	limit     int
	slab      []types.Region
	allocated int
}

// NewArenaAllocator creates an allocator that fails after limit regions.
// A limit of zero or less means unbounded.
func NewArenaAllocator(limit int) interfaces.RegionAllocator {
	return &arenaAllocator{limit: limit}
}

// Allocate returns storage for one region
func (a *arenaAllocator) Allocate() (*types.Region, error) {
	if a.limit > 0 && a.allocated >= a.limit {
		return nil, fmt.Errorf("%w: region limit %d reached", types.ErrAllocationFailed, a.limit)
	}
	if len(a.slab) == 0 {
		a.slab = make([]types.Region, slabSize)
	}
	region := &a.slab[0]
	a.slab = a.slab[1:]
	a.allocated++
	return region, nil
}

// Allocated returns how many regions have been handed out
func (a *arenaAllocator) Allocated() int {
	return a.allocated
}
