package protocol

import (
	"encoding/binary"
	"sort"
)

// MemoryImage is a complete snapshot of the controller's configuration store.
// A MemoryImage is only produced once all MemorySize bytes have been read.
type MemoryImage [MemorySize]byte

// Word returns the big-endian 16-bit value stored at address and address+1.
// ok is false when the pair does not fit in the image.
func (m *MemoryImage) Word(address int) (value uint16, ok bool) {
	if address < 0 || address+1 > MaxAddress {
		return 0, false
	}
	return binary.BigEndian.Uint16(m[address : address+2]), true
}

// Limits decodes the position limits and range byte held in the image.
func (m *MemoryImage) Limits() Limits {
	minPos, _ := m.Word(AddrMinHigh)
	maxPos, _ := m.Word(AddrMaxHigh)
	return Limits{
		Min:   minPos,
		Max:   maxPos,
		Range: m[AddrRange],
	}
}

// Limits is the calibrated travel stored in the controller.
type Limits struct {
	Min   uint16
	Max   uint16
	Range byte
}

// dangerousAddresses maps addresses that must not be changed casually to a
// short description. Writing them can make the controller stop answering on
// the bus.
var dangerousAddresses = map[int]string{
	0x09: "command CAN ID (high)",
	0x0A: "command CAN ID (low)",
	0x10: "unknown critical function",
	0x24: "request CAN ID (high)",
	0x25: "request CAN ID (low)",
	0x27: "response CAN ID (high)",
	0x28: "response CAN ID (low)",
	0x29: "control mode config",
	0x41: "interface config",
}

// IsDangerous reports whether address is in the dangerous set.
func IsDangerous(address int) bool {
	_, ok := dangerousAddresses[address]
	return ok
}

// DangerDescription returns why address is dangerous, or "" if it is not.
func DangerDescription(address int) string {
	return dangerousAddresses[address]
}

// DangerousAddresses returns the dangerous set in ascending order.
func DangerousAddresses() []int {
	addrs := make([]int, 0, len(dangerousAddresses))
	for a := range dangerousAddresses {
		addrs = append(addrs, a)
	}
	sort.Ints(addrs)
	return addrs
}
