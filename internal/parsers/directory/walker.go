package directory

import (
	"io"

	"github.com/deploymenttheory/go-minidump/internal/interfaces"
)

// VisitFunc receives each decoded stream together with its payload error, if
// any. Returning a non-nil error stops the walk.
type VisitFunc func(stream Stream, decodeErr error) error

// Walker dispatches every directory entry to its stream decoder.
type Walker struct {
	reader io.ReadSeeker
}

// NewWalker creates a walker reading payloads from r
func NewWalker(r io.ReadSeeker) *Walker {
	return &Walker{reader: r}
}

// Walk decodes the entries of dir in order. A payload failure in one entry
// never stops the walk; only an error returned by visit does.
func (w *Walker) Walk(dir interfaces.DirectoryReader, visit VisitFunc) error {
	for _, entry := range dir.Entries() {
		stream, decodeErr := DecodeStream(w.reader, entry)
		if err := visit(stream, decodeErr); err != nil {
			return err
		}
	}
	return nil
}
