// Package dump stores and loads controller memory images.
//
// # Dump Format
//
// A dump is the raw 128-byte configuration store, address 0x00 first, with
// no header. Files are named after the time the read started:
//
//	20240131-142501.bin
//
// Dumps are written progressively through a File while the read runs and
// only appear under their final name once all 128 bytes arrived.
package dump
