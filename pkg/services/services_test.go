package services

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-minidump/internal/device"
	"github.com/deploymenttheory/go-minidump/internal/helpers"
	"github.com/deploymenttheory/go-minidump/internal/types"
)

func writeDump(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "crash.dmp")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func sampleDump() []byte {
	return helpers.NewDumpBuilder().
		WithTimestamp(1700000000).
		AddStream(types.SystemInfoStream, make([]byte, 56)).
		AddMemoryList(
			helpers.MemoryRange{Start: 0x10000, Data: []byte("stack bytes")},
			helpers.MemoryRange{Start: 0x20000, Data: []byte{1, 2, 3, 4}},
		).
		AddStream(types.StreamType(0xabcdef), []byte{0}).
		Bytes()
}

func TestMinidumpService_Inspect(t *testing.T) {
	path := writeDump(t, sampleDump())
	svc := NewMinidumpService(nil)

	info, err := svc.Inspect(path)
	require.NoError(t, err)

	assert.Equal(t, path, info.Path)
	assert.Equal(t, "MDMP", info.Signature)
	assert.Equal(t, types.MinidumpVersion, info.Version)
	assert.Equal(t, int64(1700000000), info.Timestamp.Unix())
	assert.Equal(t, uint32(3), info.StreamCount)
	require.Len(t, info.Streams, 3)
	assert.Equal(t, "SystemInfo", info.Streams[0].TypeName)
	assert.Equal(t, "system-info", info.Streams[0].Kind)
	assert.Equal(t, "MemoryList", info.Streams[1].TypeName)
	assert.Equal(t, "0x00abcdef", info.Streams[2].TypeName)
	assert.Equal(t, "unknown", info.Streams[2].Kind)

	require.Len(t, info.Regions, 2)
	assert.Equal(t, uint64(0x10000), info.Regions[0].VirtualAddress)
	assert.Equal(t, uint32(11), info.Regions[0].Size)
	assert.Equal(t, "ALLOC,LOAD,CONTENTS", info.Regions[0].Flags)
	assert.Equal(t, uint64(15), info.TotalCaptured)
	assert.Empty(t, info.Issues)
	assert.Equal(t, "placeholder", info.FailingCommand)
}

func TestMinidumpService_ReadRegionAndMemory(t *testing.T) {
	path := writeDump(t, sampleDump())
	svc := NewMinidumpService(nil)

	region, content, err := svc.ReadRegion(path, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte("stack bytes"), content)
	assert.Equal(t, 0, region.Index)
	assert.Equal(t, uint64(0x10000), region.VirtualAddress)
	assert.Equal(t, uint32(11), region.Size)

	region, content, err = svc.ReadRegion(path, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, content)
	assert.Equal(t, uint64(0x20000), region.VirtualAddress)

	mem, err := svc.ReadMemory(path, 0x20001, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 3}, mem)

	_, _, err = svc.ReadRegion(path, 5)
	assert.ErrorIs(t, err, ErrRegionNotFound)

	_, err = svc.ReadMemory(path, 0x30000, 1)
	assert.ErrorIs(t, err, ErrRegionNotFound)
}

func TestOpenFile_Errors(t *testing.T) {
	_, err := OpenFile(filepath.Join(t.TempDir(), "missing.dmp"), nil)
	assert.Error(t, err)

	path := writeDump(t, []byte("\x7fELF not a minidump at all, just bytes"))
	_, err = OpenFile(path, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFormatNotRecognized)
	assert.ErrorIs(t, err, types.ErrNotMinidump)
}

func TestOpen_AllocationLimit(t *testing.T) {
	config := DefaultConfig()
	config.MaxRegions = 1

	_, err := Open(bytes.NewReader(sampleDump()), config)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllocationFailed)
	assert.False(t, errors.Is(err, ErrFormatNotRecognized))
}

func TestParseOptionsFromConfig(t *testing.T) {
	options := ParseOptionsFromConfig(&device.Config{RegionName: "mem", AlignmentPower: 8, MaxRegions: 7})
	assert.Equal(t, "mem", options.Region.Name)
	assert.Equal(t, uint32(8), options.Region.AlignmentPower)
	assert.Equal(t, types.DefaultRegionFlags, options.Region.Flags)
	assert.Equal(t, 7, options.MaxRegions)

	defaults := ParseOptionsFromConfig(nil)
	assert.Equal(t, types.DefaultRegionName, defaults.Region.Name)
}

// stubFormat accepts inputs starting with its magic
type stubFormat struct {
	name  string
	magic string
	err   error
}

func (s stubFormat) Name() string { return s.name }

func (s stubFormat) Open(r io.ReadSeeker) (Handle, error) {
	if s.err != nil {
		return nil, s.err
	}
	buf := make([]byte, len(s.magic))
	if _, err := io.ReadFull(r, buf); err != nil || string(buf) != s.magic {
		return nil, ErrFormatNotRecognized
	}
	return stubHandle{name: s.name}, nil
}

type stubHandle struct{ name string }

func (h stubHandle) Format() string          { return h.name }
func (h stubHandle) Regions() []types.Region { return nil }
func (h stubHandle) Close() error            { return nil }

func TestProber(t *testing.T) {
	prober := NewProber(stubFormat{name: "elf", magic: "\x7fELF"})
	prober.Register(MinidumpFormat{})
	assert.Equal(t, []string{"elf", "minidump"}, prober.Formats())

	handle, err := prober.Probe(bytes.NewReader(sampleDump()))
	require.NoError(t, err)
	assert.Equal(t, "minidump", handle.Format())
	assert.Len(t, handle.Regions(), 2)
	assert.NoError(t, handle.Close())

	handle, err = prober.Probe(bytes.NewReader([]byte("\x7fELF....")))
	require.NoError(t, err)
	assert.Equal(t, "elf", handle.Format())

	_, err = prober.Probe(bytes.NewReader([]byte("PK\x03\x04")))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestProber_ZeroStreamMinidumpFallsThrough(t *testing.T) {
	prober := NewProber(MinidumpFormat{}, stubFormat{name: "raw", magic: "MDMP"})

	handle, err := prober.Probe(bytes.NewReader(helpers.NewDumpBuilder().Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "raw", handle.Format())
}

func TestProber_FatalErrorStops(t *testing.T) {
	boom := errors.New("device failure")
	prober := NewProber(stubFormat{name: "broken", err: boom}, MinidumpFormat{})

	_, err := prober.Probe(bytes.NewReader(sampleDump()))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestServiceFactory(t *testing.T) {
	factory := NewServiceFactory(nil)
	require.NoError(t, factory.Initialize())

	assert.NotNil(t, factory.MinidumpService())
	assert.Equal(t, []string{"minidump"}, factory.Prober().Formats())
	assert.Equal(t, "table", factory.Config().OutputFormat)
}
