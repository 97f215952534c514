package services

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/deploymenttheory/go-minidump/internal/device"
	internal "github.com/deploymenttheory/go-minidump/internal/services"
	"github.com/deploymenttheory/go-minidump/internal/types"
)

// ErrUnknownFormat is returned when no registered format accepts the input
var ErrUnknownFormat = errors.New("file format not recognized")

// Prober tries registered formats in order until one accepts the input
type Prober struct {
	formats []FormatOpener
	mu      sync.RWMutex
}

// NewProber creates a prober with the given formats
func NewProber(formats ...FormatOpener) *Prober {
	return &Prober{formats: formats}
}

// Register appends a format to the probe order
func (p *Prober) Register(format FormatOpener) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.formats = append(p.formats, format)
}

// Formats returns the registered format names in probe order
func (p *Prober) Formats() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, len(p.formats))
	for i, f := range p.formats {
		names[i] = f.Name()
	}
	return names
}

// Probe opens r with the first format that accepts it. A format declining
// with ErrFormatNotRecognized is skipped; any other error ends the probe.
func (p *Prober) Probe(r io.ReadSeeker) (Handle, error) {
	p.mu.RLock()
	formats := append([]FormatOpener(nil), p.formats...)
	p.mu.RUnlock()

	for _, format := range formats {
		if _, err := r.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("failed to rewind input: %w", err)
		}
		handle, err := format.Open(r)
		if err == nil {
			return handle, nil
		}
		if errors.Is(err, ErrFormatNotRecognized) {
			continue
		}
		return nil, fmt.Errorf("%s: %w", format.Name(), err)
	}
	return nil, ErrUnknownFormat
}

// MinidumpFormat opens Windows minidump containers
type MinidumpFormat struct {
	Config *device.Config
}

// Name returns the format name
func (MinidumpFormat) Name() string {
	return "minidump"
}

// Open parses r as a minidump
func (f MinidumpFormat) Open(r io.ReadSeeker) (Handle, error) {
	dump, err := Open(r, f.Config)
	if err != nil {
		return nil, err
	}
	return &minidumpHandle{dump: dump}, nil
}

// minidumpHandle adapts a parsed dump to the Handle interface
type minidumpHandle struct {
	dump *internal.Dump
}

func (h *minidumpHandle) Format() string {
	return "minidump"
}

func (h *minidumpHandle) Regions() []types.Region {
	return h.dump.Regions().Regions()
}

func (h *minidumpHandle) Close() error {
	return h.dump.Close()
}

// Dump returns the underlying parsed dump
func (h *minidumpHandle) Dump() *internal.Dump {
	return h.dump
}
