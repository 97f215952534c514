package inspect

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/deploymenttheory/go-minidump/pkg/app"
	"github.com/deploymenttheory/go-minidump/pkg/services"
)

// Handle processes an inspection request
func Handle(ctx *app.Context, svc services.MinidumpService, req *Request) (*Response, error) {
	// 1. Validate request
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx.Log(fmt.Sprintf("Inspecting minidump: %s", req.DumpPath))
	ctx.Progress("Reading container...", 10)

	// 2. Parse the dump
	info, err := svc.Inspect(req.DumpPath)
	if err != nil {
		return nil, classifyError(req.DumpPath, err)
	}

	ctx.Progress("Selecting regions...", 80)

	// 3. Apply region selection
	minSize, _ := ParseSize(req.MinSize)
	response := &Response{
		ReportID:     uuid.NewString(),
		Dump:         info,
		TotalRegions: len(info.Regions),
		Filter: Filter{
			Range:      req.Range.String(),
			MinSize:    minSize,
			MaxResults: req.MaxResults,
		},
	}

	var selected []services.RegionInfo
	for _, region := range info.Regions {
		if !req.Range.Overlaps(region.VirtualAddress, uint64(region.Size)) {
			continue
		}
		if uint64(region.Size) < minSize {
			continue
		}
		selected = append(selected, region)
	}

	// Truncate results if over limit
	if len(selected) > req.MaxResults {
		selected = selected[:req.MaxResults]
		response.Truncated = true
	}
	info.Regions = selected

	if !req.IncludeStreams {
		info.Streams = nil
	}
	if !req.IncludeRegions {
		info.Regions = nil
	}

	for _, issue := range info.Issues {
		ctx.Log(fmt.Sprintf("  stream %d (%s) decoded partially: %s", issue.Index, issue.TypeName, issue.Reason))
	}

	ctx.Progress("Complete", 100)
	ctx.Log(fmt.Sprintf("Inspection completed: %d of %d regions selected in %v", len(selected), response.TotalRegions, info.ParseTime))

	return response, nil
}

// HandleRead processes a memory read request
func HandleRead(ctx *app.Context, svc services.MinidumpService, req *ReadRequest) (*ReadResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	response := &ReadResponse{ReportID: uuid.NewString()}

	if req.Address != "" {
		addr, _ := app.ParseAddress(req.Address)
		ctx.Log(fmt.Sprintf("Reading %d bytes at 0x%x from %s", req.Length, addr, req.DumpPath))

		data, err := svc.ReadMemory(req.DumpPath, addr, req.Length)
		if err != nil {
			return nil, classifyError(req.DumpPath, err)
		}
		response.Address = addr
		response.Data = data
	} else {
		ctx.Log(fmt.Sprintf("Reading region %d from %s", req.RegionIndex, req.DumpPath))

		region, data, err := svc.ReadRegion(req.DumpPath, req.RegionIndex)
		if err != nil {
			return nil, classifyError(req.DumpPath, err)
		}
		response.Address = region.VirtualAddress
		response.Data = data
	}

	response.Length = len(response.Data)
	response.ReadTime = time.Since(start)
	return response, nil
}

// classifyError maps service errors onto application error codes
func classifyError(path string, err error) error {
	switch {
	case errors.Is(err, services.ErrFormatNotRecognized):
		return app.NewError(app.ErrCodeNotMinidump, fmt.Sprintf("%s is not a minidump", path), err)
	case errors.Is(err, services.ErrAllocationFailed):
		return app.NewError(app.ErrCodeAllocationFailed, "region table could not be allocated", err)
	case errors.Is(err, services.ErrRegionNotFound):
		return app.NewError(app.ErrCodeRegionNotFound, fmt.Sprintf("no such region in %s", path), err)
	default:
		return app.NewError(app.ErrCodeContainerAccess, fmt.Sprintf("failed to read %s", path), err)
	}
}
