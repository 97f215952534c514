package regions

import (
	"sort"

	"github.com/deploymenttheory/go-minidump/internal/types"
)

// Table is an ordered, append-only region table. It satisfies both
// interfaces.RegionAppender and interfaces.RegionTable.
type Table struct {
	regions []*types.Region
}

// NewTable creates an empty table
func NewTable() *Table {
	return &Table{}
}

// Append adds a region in creation order
func (t *Table) Append(region *types.Region) {
	t.regions = append(t.regions, region)
}

// Len returns the number of regions
func (t *Table) Len() int {
	return len(t.regions)
}

// At returns a copy of the region at index i
func (t *Table) At(i int) types.Region {
	return *t.regions[i]
}

// Regions returns a copy of all regions in creation order
func (t *Table) Regions() []types.Region {
	out := make([]types.Region, len(t.regions))
	for i, r := range t.regions {
		out[i] = *r
	}
	return out
}

// FindByAddress returns the first region, in creation order, containing addr
func (t *Table) FindByAddress(addr uint64) (types.Region, bool) {
	for _, r := range t.regions {
		if r.Contains(addr) {
			return *r, true
		}
	}
	return types.Region{}, false
}

// TotalSize returns the sum of all region sizes
func (t *Table) TotalSize() uint64 {
	var total uint64
	for _, r := range t.regions {
		total += uint64(r.Size)
	}
	return total
}

// SortedByAddress returns a copy of the regions ordered by virtual address
func (t *Table) SortedByAddress() []types.Region {
	out := t.Regions()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].VirtualAddress < out[j].VirtualAddress
	})
	return out
}
