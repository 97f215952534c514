package regions

import (
	"errors"
	"fmt"

	"github.com/deploymenttheory/go-minidump/internal/interfaces"
	"github.com/deploymenttheory/go-minidump/internal/types"
)

// BuilderConfig controls the fixed attributes given to every region
type BuilderConfig struct {
	Name           string
	AlignmentPower uint32
	Flags          types.RegionFlags
}

// DefaultBuilderConfig returns the conventional region attributes
func DefaultBuilderConfig() BuilderConfig {
	return BuilderConfig{
		Name:           types.DefaultRegionName,
		AlignmentPower: types.DefaultRegionAlignmentPower,
		Flags:          types.DefaultRegionFlags,
	}
}

// Builder turns memory descriptors into regions
type Builder struct {
	allocator interfaces.RegionAllocator
	config    BuilderConfig
}

// NewBuilder creates a builder drawing storage from allocator
func NewBuilder(allocator interfaces.RegionAllocator, config BuilderConfig) *Builder {
	if config.Name == "" {
		config.Name = types.DefaultRegionName
	}
	return &Builder{
		allocator: allocator,
		config:    config,
	}
}

// Build creates the region for desc and appends it to sink.
// The only error is an allocation failure, which always matches
// types.ErrAllocationFailed.
func (b *Builder) Build(desc types.MemoryDescriptor, sink interfaces.RegionAppender) (types.Region, error) {
	region, err := b.allocator.Allocate()
	if err != nil {
		if errors.Is(err, types.ErrAllocationFailed) {
			return types.Region{}, fmt.Errorf("range at 0x%x: %w", desc.StartOfMemoryRange, err)
		}
		return types.Region{}, fmt.Errorf("%w: range at 0x%x: %v", types.ErrAllocationFailed, desc.StartOfMemoryRange, err)
	}
	if region == nil {
		return types.Region{}, fmt.Errorf("%w: range at 0x%x: allocator returned no storage", types.ErrAllocationFailed, desc.StartOfMemoryRange)
	}

	*region = types.Region{
		Name:           b.config.Name,
		VirtualAddress: desc.StartOfMemoryRange,
		FileOffset:     uint32(desc.Memory.Rva),
		Size:           desc.Memory.DataSize,
		AlignmentPower: b.config.AlignmentPower,
		Flags:          b.config.Flags,
	}
	sink.Append(region)

	return *region, nil
}
