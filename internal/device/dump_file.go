package device

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// DumpFile is an open minidump file. It tracks how the file is read so that
// tools can report the cost of a parse. One DumpFile serves one parse at a
// time: the decoders move its cursor freely.
type DumpFile struct {
	file  *os.File
	path  string
	size  int64
	stats *DumpStatistics
}

// DumpStatistics tracks file access statistics
type DumpStatistics struct {
	seeks     int64
	reads     int64
	bytesRead int64
	mu        sync.RWMutex
}

// OpenDumpFile opens the file at path for reading
func OpenDumpFile(path string) (*DumpFile, error) {
	if path == "" {
		return nil, fmt.Errorf("dump file path cannot be empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dump file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat dump file: %w", err)
	}
	if stat.IsDir() {
		file.Close()
		return nil, fmt.Errorf("%s is a directory", path)
	}

	return &DumpFile{
		file:  file,
		path:  path,
		size:  stat.Size(),
		stats: &DumpStatistics{},
	}, nil
}

// Read implements io.Reader
func (d *DumpFile) Read(p []byte) (int, error) {
	n, err := d.file.Read(p)
	d.recordRead(n)
	return n, err
}

// ReadAt implements io.ReaderAt
func (d *DumpFile) ReadAt(p []byte, off int64) (int, error) {
	n, err := d.file.ReadAt(p, off)
	d.recordRead(n)
	return n, err
}

// Seek implements io.Seeker
func (d *DumpFile) Seek(offset int64, whence int) (int64, error) {
	d.stats.mu.Lock()
	d.stats.seeks++
	d.stats.mu.Unlock()
	return d.file.Seek(offset, whence)
}

func (d *DumpFile) recordRead(n int) {
	d.stats.mu.Lock()
	d.stats.reads++
	d.stats.bytesRead += int64(n)
	d.stats.mu.Unlock()
}

// Path returns the path the file was opened from
func (d *DumpFile) Path() string {
	return d.path
}

// Size returns the size of the file in bytes
func (d *DumpFile) Size() int64 {
	return d.size
}

// Close closes the file
func (d *DumpFile) Close() error {
	if d.file != nil {
		err := d.file.Close()
		d.file = nil
		return err
	}
	return nil
}

// Stats returns a snapshot of the access statistics
func (d *DumpFile) Stats() (seeks, reads, bytesRead int64) {
	d.stats.mu.RLock()
	defer d.stats.mu.RUnlock()
	return d.stats.seeks, d.stats.reads, d.stats.bytesRead
}

// ResetStats clears the access statistics
func (d *DumpFile) ResetStats() {
	d.stats.mu.Lock()
	defer d.stats.mu.Unlock()
	d.stats.seeks = 0
	d.stats.reads = 0
	d.stats.bytesRead = 0
}

// PrintStats writes the access statistics to w
func (d *DumpFile) PrintStats(w io.Writer) {
	seeks, reads, bytesRead := d.Stats()
	fmt.Fprintln(w, "=== Dump File Statistics ===")
	fmt.Fprintf(w, "File: %s (%d bytes)\n", d.path, d.size)
	fmt.Fprintf(w, "Seeks: %d\n", seeks)
	fmt.Fprintf(w, "Reads: %d\n", reads)
	fmt.Fprintf(w, "Bytes read: %d\n", bytesRead)
}
