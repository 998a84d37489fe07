package dump

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/moffa90/go-hella/protocol"
)

// filenameLayout names dumps after the moment the read started.
const filenameLayout = "20060102-150405"

// DefaultFilename returns the timestamped name for a dump taken at t,
// e.g. "20240131-142501.bin".
func DefaultFilename(t time.Time) string {
	return t.Format(filenameLayout) + Extension
}

// File is a progressive dump sink. Bytes go to a temporary file next to the
// target; Commit renames it into place and Abort removes it, so a failed
// read never leaves a truncated dump behind.
type File struct {
	path string
	tmp  *os.File
	n    int
	done bool
}

// Create opens a sink for a dump at path.
//
// Example:
//
//	f, err := dump.Create(filepath.Join(dir, dump.DefaultFilename(time.Now())))
//	if err != nil {
//	    return err
//	}
//	if _, err := sess.ReadMemory(ctx, f); err != nil {
//	    f.Abort()
//	    return err
//	}
//	return f.Commit()
func Create(path string) (*File, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create dump directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.partial")
	if err != nil {
		return nil, fmt.Errorf("create dump: %w", err)
	}
	return &File{path: path, tmp: tmp}, nil
}

// Path returns the final path of the dump.
func (f *File) Path() string {
	return f.path
}

// Write implements io.Writer.
func (f *File) Write(p []byte) (int, error) {
	if f.done {
		return 0, fmt.Errorf("dump %s already finished", f.path)
	}
	n, err := f.tmp.Write(p)
	f.n += n
	return n, err
}

// Commit moves the dump into place. It fails if fewer or more than
// protocol.MemorySize bytes were written; the partial data is removed.
func (f *File) Commit() error {
	if f.done {
		return fmt.Errorf("dump %s already finished", f.path)
	}
	if f.n != protocol.MemorySize {
		f.Abort()
		return fmt.Errorf("%w: wrote %d bytes, want %d", ErrSize, f.n, protocol.MemorySize)
	}

	f.done = true
	if err := f.tmp.Close(); err != nil {
		_ = os.Remove(f.tmp.Name())
		return fmt.Errorf("close dump: %w", err)
	}
	if err := os.Rename(f.tmp.Name(), f.path); err != nil {
		_ = os.Remove(f.tmp.Name())
		return fmt.Errorf("save dump: %w", err)
	}
	return nil
}

// Abort discards the partial dump. Calling Abort after Commit is a no-op.
func (f *File) Abort() {
	if f.done {
		return
	}
	f.done = true
	_ = f.tmp.Close()
	_ = os.Remove(f.tmp.Name())
}

// WriteFile stores a complete image at path.
func WriteFile(path string, img protocol.MemoryImage) error {
	f, err := Create(path)
	if err != nil {
		return err
	}
	if _, err := f.Write(img[:]); err != nil {
		f.Abort()
		return fmt.Errorf("write dump: %w", err)
	}
	return f.Commit()
}
