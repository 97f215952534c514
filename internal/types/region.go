package types

import (
	"fmt"
	"strings"
)

// RegionFlags mark the properties of a reconstructed region.
type RegionFlags uint32

const (
	RegionAllocated  RegionFlags = 0x001
	RegionLoaded     RegionFlags = 0x002
	RegionHasContent RegionFlags = 0x100
)

// Default values for regions built from a memory-list stream. The container
// carries no per-range name, so every region shares the same label.
const (
	DefaultRegionName           = ".data"
	DefaultRegionAlignmentPower = 4
	DefaultRegionFlags          = RegionAllocated | RegionLoaded | RegionHasContent
)

// Has reports whether all bits of f are set.
func (r RegionFlags) Has(f RegionFlags) bool {
	return r&f == f
}

func (r RegionFlags) String() string {
	var parts []string
	if r.Has(RegionAllocated) {
		parts = append(parts, "ALLOC")
	}
	if r.Has(RegionLoaded) {
		parts = append(parts, "LOAD")
	}
	if r.Has(RegionHasContent) {
		parts = append(parts, "CONTENTS")
	}
	if len(parts) == 0 {
		return "NONE"
	}
	return strings.Join(parts, ",")
}

// Region is a captured memory range reconstructed from the container.
// Regions are immutable once built.
type Region struct {
	Name           string
	VirtualAddress uint64
	FileOffset     uint32
	Size           uint32
	AlignmentPower uint32
	Flags          RegionFlags
}

// End returns the virtual address one past the region. It wraps to zero for
// a region that reaches the top of the address space.
func (r Region) End() uint64 {
	return r.VirtualAddress + uint64(r.Size)
}

// Contains reports whether addr falls within the region.
func (r Region) Contains(addr uint64) bool {
	return addr >= r.VirtualAddress && addr-r.VirtualAddress < uint64(r.Size)
}

// Alignment returns the alignment in bytes.
func (r Region) Alignment() uint64 {
	return 1 << r.AlignmentPower
}

func (r Region) String() string {
	return fmt.Sprintf("%s vma=0x%016x size=0x%x filepos=0x%x align=2**%d %s",
		r.Name, r.VirtualAddress, r.Size, r.FileOffset, r.AlignmentPower, r.Flags)
}
