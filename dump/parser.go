package dump

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/moffa90/go-hella/protocol"
)

// Extension is the file extension of memory dumps.
const Extension = ".bin"

// ErrSize indicates a dump that is not exactly protocol.MemorySize bytes.
var ErrSize = errors.New("dump: wrong size")

// Parse reads a memory dump from the given file path.
//
// Example:
//
//	img, err := dump.Parse("20240131-142501.bin")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("min 0x%04X\n", img.Limits().Min)
func Parse(path string) (protocol.MemoryImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return protocol.MemoryImage{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ParseReader(f)
}

// ParseReader reads a memory dump from any io.Reader. The reader must hold
// exactly protocol.MemorySize bytes.
func ParseReader(r io.Reader) (protocol.MemoryImage, error) {
	var img protocol.MemoryImage

	n, err := io.ReadFull(r, img[:])
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return protocol.MemoryImage{}, fmt.Errorf("%w: got %d bytes, want %d", ErrSize, n, protocol.MemorySize)
	case err != nil:
		return protocol.MemoryImage{}, fmt.Errorf("failed to read dump: %w", err)
	}

	var extra [1]byte
	if m, _ := r.Read(extra[:]); m > 0 {
		return protocol.MemoryImage{}, fmt.Errorf("%w: more than %d bytes", ErrSize, protocol.MemorySize)
	}
	return img, nil
}
