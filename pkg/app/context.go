package app

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/deploymenttheory/go-minidump/internal/device"
)

// Context holds application-wide configuration and state
type Context struct {
	// Output preferences
	OutputFormat string
	Verbose      bool
	Quiet        bool

	// Loaded configuration
	Config *device.Config

	// Structured logger handed to library packages
	Logger *zap.Logger

	// Destinations for results and diagnostics
	Stdout io.Writer
	Stderr io.Writer

	// Progress reporting
	ProgressCallback func(message string, percent int)
}

// NewContext creates a new application context
func NewContext() *Context {
	return &Context{
		OutputFormat: "table",
		Logger:       zap.NewNop(),
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
	}
}

// SetProgress sets the progress callback function
func (c *Context) SetProgress(callback func(string, int)) {
	c.ProgressCallback = callback
}

// Progress reports progress if callback is set
func (c *Context) Progress(message string, percent int) {
	if c.ProgressCallback != nil {
		c.ProgressCallback(message, percent)
	}
}

// Log outputs a message based on verbosity settings
func (c *Context) Log(message string) {
	if !c.Quiet && c.Verbose {
		fmt.Fprintln(c.Stderr, message)
	}
}

// Error outputs an error message unless quiet
func (c *Context) Error(message string) {
	if !c.Quiet {
		fmt.Fprintln(c.Stderr, "Error:", message)
	}
}
