package services

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/deploymenttheory/go-minidump/internal/helpers"
	"github.com/deploymenttheory/go-minidump/internal/parsers/regions"
	"github.com/deploymenttheory/go-minidump/internal/types"
)

// countingAllocator fails after failAfter allocations
type countingAllocator struct {
	failAfter int
	allocated int
}

func (c *countingAllocator) Allocate() (*types.Region, error) {
	if c.allocated >= c.failAfter {
		return nil, errors.New("simulated out of memory")
	}
	c.allocated++
	return new(types.Region), nil
}

func (c *countingAllocator) Allocated() int { return c.allocated }

func rangesOf(n int) []helpers.MemoryRange {
	out := make([]helpers.MemoryRange, n)
	for i := range out {
		data := bytes.Repeat([]byte{byte(i + 1)}, 16*(i+1))
		out[i] = helpers.MemoryRange{Start: 0x10000 + uint64(i)*0x10000, Data: data}
	}
	return out
}

func TestParseDump_Rejections(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{
			name: "Empty input",
			data: nil,
		},
		{
			name: "Short header",
			data: helpers.NewDumpBuilder().AddMemoryList(rangesOf(1)...).TruncateTo(20).Bytes(),
		},
		{
			name: "ELF signature",
			data: helpers.NewDumpBuilder().WithSignature(0x464c457f).AddMemoryList(rangesOf(1)...).Bytes(),
		},
		{
			name: "Zero streams",
			data: helpers.NewDumpBuilder().Bytes(),
		},
		{
			name: "Zero stream count with entries present",
			data: helpers.NewDumpBuilder().AddMemoryList(rangesOf(2)...).WithStreamCount(0).Bytes(),
		},
		{
			name: "Directory unreadable",
			data: helpers.NewDumpBuilder().AddMemoryList(rangesOf(1)...).WithStreamCount(50).Bytes(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := NewDumpReader(bytes.NewReader(tt.data), DefaultParseOptions())
			assert.Equal(t, types.StateUnprobed, reader.State())

			dump, err := reader.Parse()
			assert.Nil(t, dump)
			require.Error(t, err)
			assert.True(t, IsNotMinidump(err))
			assert.False(t, errors.Is(err, types.ErrAllocationFailed))
			assert.Equal(t, types.StateRejected, reader.State())
		})
	}
}

func TestParseDump_RoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 5, 64} {
		ranges := rangesOf(n)
		b := helpers.NewDumpBuilder().AddMemoryList(ranges...)

		dump, err := ParseDump(bytes.NewReader(b.Bytes()), DefaultParseOptions())
		require.NoError(t, err)
		assert.Equal(t, types.StateReady, dump.State())
		assert.Empty(t, dump.Issues())

		table := dump.Regions()
		require.Equal(t, n, table.Len())
		for i, r := range ranges {
			region := table.At(i)
			assert.Equal(t, r.Start, region.VirtualAddress)
			assert.Equal(t, b.MemoryRVA(0, i), region.FileOffset)
			assert.Equal(t, uint32(len(r.Data)), region.Size)
			assert.Equal(t, types.DefaultRegionName, region.Name)
			assert.Equal(t, types.DefaultRegionFlags, region.Flags)
		}
	}
}

func TestParseDump_TruncatedMemoryList(t *testing.T) {
	data := helpers.NewDumpBuilder().
		AddMemoryListDeclaring(5, rangesOf(3)...).
		Bytes()

	dump, err := ParseDump(bytes.NewReader(data), DefaultParseOptions())
	require.NoError(t, err)
	assert.Equal(t, types.StateReady, dump.State())
	assert.Equal(t, 3, dump.Regions().Len())

	require.Len(t, dump.Issues(), 1)
	assert.Equal(t, uint32(0), dump.Issues()[0].EntryIndex)
	assert.Equal(t, types.MemoryListStream, dump.Issues()[0].StreamType)
}

func TestParseDump_EntryIsolation(t *testing.T) {
	first := helpers.MemoryRange{Start: 0x1000, Data: []byte{1, 1}}
	third := helpers.MemoryRange{Start: 0x3000, Data: []byte{3, 3, 3}}
	fourth := helpers.MemoryRange{Start: 0x4000, Data: []byte{4}}

	data := helpers.NewDumpBuilder().
		AddMemoryList(first).
		AddRawEntry(types.MemoryListStream, 20, 0x40000000).
		AddMemoryList(third).
		AddMemoryList(fourth).
		Bytes()

	dump, err := ParseDump(bytes.NewReader(data), DefaultParseOptions())
	require.NoError(t, err)

	regions := dump.Regions().Regions()
	require.Len(t, regions, 3)
	assert.Equal(t, uint64(0x1000), regions[0].VirtualAddress)
	assert.Equal(t, uint64(0x3000), regions[1].VirtualAddress)
	assert.Equal(t, uint64(0x4000), regions[2].VirtualAddress)

	require.Len(t, dump.Issues(), 1)
	assert.Equal(t, uint32(1), dump.Issues()[0].EntryIndex)
}

func TestParseDump_UnknownAndRecognizedStreams(t *testing.T) {
	data := helpers.NewDumpBuilder().
		AddStream(types.StreamType(0xdeadbeef), []byte("opaque")).
		AddStream(types.ThreadListStream, make([]byte, 4)).
		AddMemoryList(rangesOf(2)...).
		AddStream(types.ModuleListStream, make([]byte, 4)).
		AddStream(types.ExceptionStream, make([]byte, 168)).
		AddStream(types.SystemInfoStream, make([]byte, 56)).
		AddStream(types.StreamType(0x7fffffff), nil).
		Bytes()

	dump, err := ParseDump(bytes.NewReader(data), DefaultParseOptions())
	require.NoError(t, err)
	assert.Equal(t, 2, dump.Regions().Len())
	assert.Len(t, dump.Entries(), 7)
	assert.Empty(t, dump.Issues())
}

func TestParseDump_NoRegionsIsStillReady(t *testing.T) {
	data := helpers.NewDumpBuilder().
		AddStream(types.SystemInfoStream, make([]byte, 56)).
		Bytes()

	dump, err := ParseDump(bytes.NewReader(data), DefaultParseOptions())
	require.NoError(t, err)
	assert.Equal(t, types.StateReady, dump.State())
	assert.Equal(t, 0, dump.Regions().Len())
}

func TestParseDump_DuplicateMemoryLists(t *testing.T) {
	data := helpers.NewDumpBuilder().
		AddMemoryList(rangesOf(2)...).
		AddMemoryList(rangesOf(3)...).
		Bytes()

	dump, err := ParseDump(bytes.NewReader(data), DefaultParseOptions())
	require.NoError(t, err)
	assert.Equal(t, 5, dump.Regions().Len())
}

func TestParseDump_AllocationFailure(t *testing.T) {
	data := helpers.NewDumpBuilder().
		AddMemoryList(rangesOf(2)...).
		AddMemoryList(rangesOf(3)...).
		Bytes()

	options := DefaultParseOptions()
	options.Allocator = &countingAllocator{failAfter: 3}

	reader := NewDumpReader(bytes.NewReader(data), options)
	dump, err := reader.Parse()
	assert.Nil(t, dump)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrAllocationFailed)
	assert.False(t, IsNotMinidump(err))
	assert.Equal(t, types.StateFailed, reader.State())
}

func TestParseDump_MaxRegions(t *testing.T) {
	data := helpers.NewDumpBuilder().AddMemoryList(rangesOf(4)...).Bytes()

	options := DefaultParseOptions()
	options.MaxRegions = 3
	_, err := ParseDump(bytes.NewReader(data), options)
	assert.ErrorIs(t, err, types.ErrAllocationFailed)

	options.MaxRegions = 4
	dump, err := ParseDump(bytes.NewReader(data), options)
	require.NoError(t, err)
	assert.Equal(t, 4, dump.Regions().Len())
}

func TestParseDump_CustomRegionAttributes(t *testing.T) {
	data := helpers.NewDumpBuilder().AddMemoryList(rangesOf(1)...).Bytes()

	options := DefaultParseOptions()
	options.Region = regions.BuilderConfig{Name: "memory", AlignmentPower: 12, Flags: types.DefaultRegionFlags}

	dump, err := ParseDump(bytes.NewReader(data), options)
	require.NoError(t, err)
	region := dump.Regions().At(0)
	assert.Equal(t, "memory", region.Name)
	assert.Equal(t, uint32(12), region.AlignmentPower)
}

func TestDumpReader_SingleUse(t *testing.T) {
	data := helpers.NewDumpBuilder().AddMemoryList(rangesOf(1)...).Bytes()
	reader := NewDumpReader(bytes.NewReader(data), DefaultParseOptions())

	_, err := reader.Parse()
	require.NoError(t, err)

	_, err = reader.Parse()
	assert.Error(t, err)
}

func TestDump_ReadRegionAndMemory(t *testing.T) {
	ranges := []helpers.MemoryRange{
		{Start: 0x401000, Data: []byte("hello, minidump")},
		{Start: 0x7ffe0000, Data: []byte{0xde, 0xad, 0xbe, 0xef}},
	}
	data := helpers.NewDumpBuilder().AddMemoryList(ranges...).Bytes()

	dump, err := ParseDump(bytes.NewReader(data), DefaultParseOptions())
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), dump.Size())

	content, err := dump.ReadRegion(0)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello, minidump"), content)

	content, err = dump.ReadRegion(1)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, content)

	_, err = dump.ReadRegion(2)
	assert.Error(t, err)

	mem, err := dump.ReadMemory(0x401007, 8)
	require.NoError(t, err)
	assert.Equal(t, []byte("minidump"), mem)

	_, err = dump.ReadMemory(0x401007, 9)
	assert.Error(t, err)
	_, err = dump.ReadMemory(0x500000, 1)
	assert.Error(t, err)

	region, ok := dump.FindRegion(0x7ffe0003)
	require.True(t, ok)
	assert.Equal(t, uint64(0x7ffe0000), region.VirtualAddress)

	assert.Equal(t, "placeholder", dump.FailingCommand())
	assert.Equal(t, 0, dump.FailingSignal())
	assert.NoError(t, dump.Close())
}

func TestDump_ReadMemoryAtTopOfAddressSpace(t *testing.T) {
	content := bytes.Repeat([]byte{0xcc}, 0x1000)
	copy(content, "top of memory")
	data := helpers.NewDumpBuilder().
		AddMemoryList(helpers.MemoryRange{Start: 0xfffffffffffff000, Data: content}).
		Bytes()

	dump, err := ParseDump(bytes.NewReader(data), DefaultParseOptions())
	require.NoError(t, err)

	region, ok := dump.FindRegion(0xfffffffffffff800)
	require.True(t, ok)
	assert.Equal(t, uint64(0xfffffffffffff000), region.VirtualAddress)

	mem, err := dump.ReadMemory(0xfffffffffffff000, 13)
	require.NoError(t, err)
	assert.Equal(t, []byte("top of memory"), mem)

	mem, err = dump.ReadMemory(0xfffffffffffffff0, 16)
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{0xcc}, 16), mem)

	_, err = dump.ReadMemory(0xfffffffffffffff0, 17)
	assert.Error(t, err)
}

func TestDump_ReadRegionBeyondEOF(t *testing.T) {
	data := helpers.NewDumpBuilder().
		AddStream(types.SystemInfoStream, nil).
		AddRawEntry(types.MemoryListStream, 20, 0x60).
		Bytes()

	// A memory list placed by hand whose only range points past end of file.
	list := []byte{
		0x01, 0x00, 0x00, 0x00,
		0x00, 0x10, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x10, 0x00, 0x00,
		0x00, 0x00, 0x10, 0x00,
	}
	padded := make([]byte, 0x60)
	copy(padded, data)
	padded = append(padded, list...)

	dump, err := ParseDump(bytes.NewReader(padded), DefaultParseOptions())
	require.NoError(t, err)
	require.Equal(t, 1, dump.Regions().Len())

	_, err = dump.ReadRegion(0)
	assert.Error(t, err)
}

func TestParseDump_Logging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(zap.NewNop())

	data := helpers.NewDumpBuilder().
		AddMemoryListDeclaring(3, rangesOf(2)...).
		Bytes()

	_, err := ParseDump(bytes.NewReader(data), DefaultParseOptions())
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage("minidump header accepted").Len())
	assert.Equal(t, 1, logs.FilterMessage("minidump directory entry").Len())
	assert.Equal(t, 2, logs.FilterMessage("minidump region created").Len())
	assert.Equal(t, 1, logs.FilterMessage("minidump stream decode stopped early").Len())
}
