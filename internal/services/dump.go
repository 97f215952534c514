package services

import (
	"errors"
	"fmt"
	"io"

	"github.com/deploymenttheory/go-minidump/internal/interfaces"
	"github.com/deploymenttheory/go-minidump/internal/types"
)

// failingCommandPlaceholder is reported because the command line of the
// crashed process is not decoded.
const failingCommandPlaceholder = "placeholder"

// ErrRegionNotFound is returned when a region index or address matches no region
var ErrRegionNotFound = errors.New("region not found")

// Dump is an accepted minidump container and the regions recovered from it.
type Dump struct {
	header  types.ContainerHeader
	entries []types.DirectoryEntry
	regions interfaces.RegionTable
	issues  []types.StreamIssue
	state   types.ContainerState

	source io.ReadSeeker
	size   int64
	closer io.Closer
}

// Header returns the container header
func (d *Dump) Header() types.ContainerHeader {
	return d.header
}

// Entries returns the stream directory in directory order
func (d *Dump) Entries() []types.DirectoryEntry {
	return d.entries
}

// Regions returns the region table
func (d *Dump) Regions() interfaces.RegionTable {
	return d.regions
}

// Issues returns the streams whose payloads could not be fully decoded
func (d *Dump) Issues() []types.StreamIssue {
	return d.issues
}

// State returns the terminal parse state, always StateReady for a returned Dump
func (d *Dump) State() types.ContainerState {
	return d.state
}

// Size returns the length of the underlying file, or -1 when unknown
func (d *Dump) Size() int64 {
	return d.size
}

// FailingCommand returns the command of the crashed process
func (d *Dump) FailingCommand() string {
	return failingCommandPlaceholder
}

// FailingSignal returns the signal that terminated the process. Exception
// streams are not decoded, so this is always zero.
func (d *Dump) FailingSignal() int {
	return 0
}

// FindRegion returns the first region containing addr
func (d *Dump) FindRegion(addr uint64) (types.Region, bool) {
	return d.regions.FindByAddress(addr)
}

// ReadRegion returns the captured bytes of the region at index i
func (d *Dump) ReadRegion(i int) ([]byte, error) {
	if i < 0 || i >= d.regions.Len() {
		return nil, fmt.Errorf("%w: index %d out of range [0, %d)", ErrRegionNotFound, i, d.regions.Len())
	}
	region := d.regions.At(i)
	return d.readContent(region, 0, region.Size)
}

// ReadMemory reads length bytes of captured memory starting at virtual
// address addr. The range must lie inside a single region.
func (d *Dump) ReadMemory(addr uint64, length uint32) ([]byte, error) {
	region, ok := d.regions.FindByAddress(addr)
	if !ok {
		return nil, fmt.Errorf("%w: address 0x%x is not in any captured region", ErrRegionNotFound, addr)
	}
	offset := addr - region.VirtualAddress
	if offset+uint64(length) > uint64(region.Size) {
		return nil, fmt.Errorf("read of %d bytes at 0x%x crosses the end of region at 0x%x", length, addr, region.VirtualAddress)
	}
	return d.readContent(region, uint32(offset), length)
}

func (d *Dump) readContent(region types.Region, offset, length uint32) ([]byte, error) {
	start := int64(region.FileOffset) + int64(offset)
	if d.size >= 0 && start+int64(length) > d.size {
		return nil, fmt.Errorf("region content at 0x%x+%d lies beyond end of file (%d bytes)", start, length, d.size)
	}

	buf := make([]byte, length)
	if ra, ok := d.source.(io.ReaderAt); ok {
		if _, err := io.ReadFull(io.NewSectionReader(ra, start, int64(length)), buf); err != nil {
			return nil, fmt.Errorf("failed to read region content at 0x%x: %w", start, err)
		}
		return buf, nil
	}

	if _, err := d.source.Seek(start, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to region content at 0x%x: %w", start, err)
	}
	if _, err := io.ReadFull(d.source, buf); err != nil {
		return nil, fmt.Errorf("failed to read region content at 0x%x: %w", start, err)
	}
	return buf, nil
}

// SetCloser attaches the handle released by Close
func (d *Dump) SetCloser(c io.Closer) {
	d.closer = c
}

// Close releases the underlying handle, if the dump owns one. Regions are
// not usable for content reads afterwards.
func (d *Dump) Close() error {
	if d.closer == nil {
		return nil
	}
	err := d.closer.Close()
	d.closer = nil
	return err
}
