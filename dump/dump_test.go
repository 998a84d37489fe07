package dump

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moffa90/go-hella/protocol"
)

func sampleImage() protocol.MemoryImage {
	var img protocol.MemoryImage
	for i := range img {
		img[i] = byte(i)
	}
	img[protocol.AddrMinHigh], img[protocol.AddrMinLow] = 0x01, 0x13
	img[protocol.AddrMaxHigh], img[protocol.AddrMaxLow] = 0x02, 0x20
	img[protocol.AddrRange] = 0x43
	return img
}

func TestDefaultFilename(t *testing.T) {
	ts := time.Date(2024, 1, 31, 14, 25, 1, 0, time.UTC)
	assert.Equal(t, "20240131-142501.bin", DefaultFilename(ts))
}

func TestParseReader(t *testing.T) {
	img := sampleImage()

	tests := []struct {
		name    string
		input   []byte
		wantErr bool
	}{
		{"exact size", img[:], false},
		{"empty", nil, true},
		{"short", img[:50], true},
		{"long", append(img[:], 0x00), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReader(bytes.NewReader(tt.input))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrSize)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(img, got); diff != "" {
				t.Errorf("image mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWriteFileAndParse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dumps", DefaultFilename(time.Now()))
	img := sampleImage()

	require.NoError(t, WriteFile(path, img))

	got, err := Parse(path)
	require.NoError(t, err)
	assert.Equal(t, img, got)
	assert.Equal(t, img.Limits(), got.Limits())
}

func TestParseMissingFile(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "nope.bin"))
	assert.Error(t, err)
}

func TestFileCommit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "unit.bin")

	f, err := Create(path)
	require.NoError(t, err)
	assert.Equal(t, path, f.Path())

	img := sampleImage()
	for _, b := range img {
		_, err := f.Write([]byte{b})
		require.NoError(t, err)
	}
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "dump must not appear before commit")

	require.NoError(t, f.Commit())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, img[:], data)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file removed")

	_, err = f.Write([]byte{0})
	assert.Error(t, err)
}

func TestFileAbortAndShortCommit(t *testing.T) {
	dir := t.TempDir()

	f, err := Create(filepath.Join(dir, "aborted.bin"))
	require.NoError(t, err)
	_, _ = f.Write(make([]byte, 50))
	f.Abort()
	f.Abort()

	g, err := Create(filepath.Join(dir, "short.bin"))
	require.NoError(t, err)
	_, _ = g.Write(make([]byte, 127))
	assert.ErrorIs(t, g.Commit(), ErrSize)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no partial dump may remain")
}

func TestWriteHex(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHex(&buf, sampleImage(), protocol.VariantG222))

	out := buf.String()
	lines := strings.Split(out, "\n")
	assert.Equal(t, "00: 00  01  02  01  13  02  20  07  08  09* 0A* 0B  0C  0D  0E  0F ", lines[1])
	assert.Contains(t, out, "40: 40  41* 42 ")
	assert.Contains(t, out, "min   0x0113 (86% open)")
	assert.Contains(t, out, "max   0x0220 (30% open)")
	assert.Contains(t, out, "range 0x43 (67)")

	img := sampleImage()
	img[protocol.AddrMaxHigh], img[protocol.AddrMaxLow] = 0x03, 0x00
	buf.Reset()
	require.NoError(t, WriteHex(&buf, img, protocol.VariantG222))
	assert.Contains(t, buf.String(), "max   0x0300 (outside G-222 travel)")
}
