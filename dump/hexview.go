package dump

import (
	"fmt"
	"io"

	"github.com/moffa90/go-hella/protocol"
)

const bytesPerRow = 16

// WriteHex prints img as a hex table, sixteen bytes per row. Dangerous
// addresses are marked with '*'. The decoded limits follow the table.
//
//	00: 01 08 0F 01 13 02 20 ...
func WriteHex(w io.Writer, img protocol.MemoryImage, v protocol.Variant) error {
	p := &errWriter{w: w}

	p.printf("    ")
	for col := 0; col < bytesPerRow; col++ {
		p.printf(" %02X ", col)
	}
	p.printf("\n")

	for row := 0; row < protocol.MemorySize; row += bytesPerRow {
		p.printf("%02X:", row)
		for col := 0; col < bytesPerRow; col++ {
			addr := row + col
			mark := " "
			if protocol.IsDangerous(addr) {
				mark = "*"
			}
			p.printf(" %02X%s", img[addr], mark)
		}
		p.printf("\n")
	}

	l := img.Limits()
	p.printf("\n* dangerous address\n")
	p.printf("min   0x%04X (%s)\n", l.Min, percent(v, l.Min))
	p.printf("max   0x%04X (%s)\n", l.Max, percent(v, l.Max))
	p.printf("range 0x%02X (%d)\n", l.Range, l.Range)
	return p.err
}

func percent(v protocol.Variant, pos uint16) string {
	pct := v.Percent(int(pos))
	if pct == protocol.OutOfRange {
		return "outside " + v.Name + " travel"
	}
	return fmt.Sprintf("%d%% open", pct)
}

// errWriter keeps the first write error so printing code stays linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
