package types

import "fmt"

// StreamType is the tag carried by each directory entry.
// Reference: MINIDUMP_STREAM_TYPE
type StreamType uint32

const (
	UnusedStream              StreamType = 0
	ReservedStream0           StreamType = 1
	ReservedStream1           StreamType = 2
	ThreadListStream          StreamType = 3
	ModuleListStream          StreamType = 4
	MemoryListStream          StreamType = 5
	ExceptionStream           StreamType = 6
	SystemInfoStream          StreamType = 7
	ThreadExListStream        StreamType = 8
	Memory64ListStream        StreamType = 9
	CommentStreamA            StreamType = 10
	CommentStreamW            StreamType = 11
	HandleDataStream          StreamType = 12
	FunctionTableStream       StreamType = 13
	UnloadedModuleListStream  StreamType = 14
	MiscInfoStream            StreamType = 15
	MemoryInfoListStream      StreamType = 16
	ThreadInfoListStream      StreamType = 17
	HandleOperationListStream StreamType = 18
	TokenStream               StreamType = 19
	JavaScriptDataStream      StreamType = 20
	SystemMemoryInfoStream    StreamType = 21
	ProcessVMCountersStream   StreamType = 22
	IptTraceStream            StreamType = 23
	ThreadNamesStream         StreamType = 24

	// Breakpad extensions
	BreakpadInfoStream      StreamType = 0x47670001
	BreakpadAssertionStream StreamType = 0x47670002
	LinuxCPUInfoStream      StreamType = 0x47670003
	LinuxProcStatusStream   StreamType = 0x47670004
	LinuxLSBReleaseStream   StreamType = 0x47670005
	LinuxCmdLineStream      StreamType = 0x47670006
	LinuxEnvironStream      StreamType = 0x47670007
	LinuxAuxvStream         StreamType = 0x47670008
	LinuxMapsStream         StreamType = 0x47670009
	LinuxDSODebugStream     StreamType = 0x4767000A
)

var streamTypeNames = map[StreamType]string{
	UnusedStream:              "Unused",
	ReservedStream0:           "Reserved0",
	ReservedStream1:           "Reserved1",
	ThreadListStream:          "ThreadList",
	ModuleListStream:          "ModuleList",
	MemoryListStream:          "MemoryList",
	ExceptionStream:           "Exception",
	SystemInfoStream:          "SystemInfo",
	ThreadExListStream:        "ThreadExList",
	Memory64ListStream:        "Memory64List",
	CommentStreamA:            "CommentA",
	CommentStreamW:            "CommentW",
	HandleDataStream:          "HandleData",
	FunctionTableStream:       "FunctionTable",
	UnloadedModuleListStream:  "UnloadedModuleList",
	MiscInfoStream:            "MiscInfo",
	MemoryInfoListStream:      "MemoryInfoList",
	ThreadInfoListStream:      "ThreadInfoList",
	HandleOperationListStream: "HandleOperationList",
	TokenStream:               "Token",
	JavaScriptDataStream:      "JavaScriptData",
	SystemMemoryInfoStream:    "SystemMemoryInfo",
	ProcessVMCountersStream:   "ProcessVMCounters",
	IptTraceStream:            "IptTrace",
	ThreadNamesStream:         "ThreadNames",
	BreakpadInfoStream:        "BreakpadInfo",
	BreakpadAssertionStream:   "BreakpadAssertion",
	LinuxCPUInfoStream:        "LinuxCPUInfo",
	LinuxProcStatusStream:     "LinuxProcStatus",
	LinuxLSBReleaseStream:     "LinuxLSBRelease",
	LinuxCmdLineStream:        "LinuxCmdLine",
	LinuxEnvironStream:        "LinuxEnviron",
	LinuxAuxvStream:           "LinuxAuxv",
	LinuxMapsStream:           "LinuxMaps",
	LinuxDSODebugStream:       "LinuxDSODebug",
}

// String returns the stream type name, or its hex tag when unnamed.
func (t StreamType) String() string {
	if name, ok := streamTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("0x%08x", uint32(t))
}

// IsKnown reports whether the tag is a documented stream type.
func (t StreamType) IsKnown() bool {
	_, ok := streamTypeNames[t]
	return ok
}

// StreamKind is the closed set of stream variants the decoder dispatches on.
type StreamKind int

const (
	StreamKindUnknown StreamKind = iota
	StreamKindThreadList
	StreamKindModuleList
	StreamKindMemoryList
	StreamKindException
	StreamKindSystemInfo
)

// KindOf maps a directory tag to the variant the decoder handles.
// Everything outside the recognized set is StreamKindUnknown.
func KindOf(t StreamType) StreamKind {
	switch t {
	case ThreadListStream:
		return StreamKindThreadList
	case ModuleListStream:
		return StreamKindModuleList
	case MemoryListStream:
		return StreamKindMemoryList
	case ExceptionStream:
		return StreamKindException
	case SystemInfoStream:
		return StreamKindSystemInfo
	default:
		return StreamKindUnknown
	}
}

func (k StreamKind) String() string {
	switch k {
	case StreamKindThreadList:
		return "thread-list"
	case StreamKindModuleList:
		return "module-list"
	case StreamKindMemoryList:
		return "memory-list"
	case StreamKindException:
		return "exception"
	case StreamKindSystemInfo:
		return "system-info"
	default:
		return "unknown"
	}
}
