package protocol

import "time"

// Bus identifiers. All are standard 11-bit identifiers.
const (
	// RequestID carries every command sent to the controller.
	RequestID = 0x3F0

	// MemoryResponseID carries the value of a selected memory address in
	// payload byte 0.
	MemoryResponseID = 0x3E8

	// PositionBroadcastID carries the periodic telemetry frame.
	PositionBroadcastID = 0x658

	// AckResponseID carries the handshake acknowledgment.
	AckResponseID = 0x3EB
)

// AckSignature is the value of payload byte 7 in a valid acknowledgment.
const AckSignature = 0x53

// Command opcodes (payload byte 0 of a request frame).
const (
	// OpWake starts a session; the controller answers on AckResponseID.
	OpWake = 0x49

	// OpSelect selects a 16-bit register given in payload bytes 1-2.
	// Selecting MemoryPage<<8|addr also reads back that memory byte.
	OpSelect = 0x31

	// OpWrite writes payload byte 3 to the selected register.
	OpWrite = 0x57

	// OpEnd closes a command sequence.
	OpEnd = 0x44
)

// MemoryPage is the register page that maps the 128-byte configuration store.
const MemoryPage = 0x0C

// Controller registers used by the write and calibration sequences.
const (
	RegSequence = 0x0094
	RegMode     = 0x015D
	RegDrive    = 0x0080
	RegCalibA   = 0x0161
	RegCalibB   = 0x0163
)

// Values written to RegMode and RegSequence.
const (
	ModeProgram = 0x05
	ModeRun     = 0x02

	KeyUnlock = 0x2D
	KeyCommit = 0x8D
)

// Memory layout.
const (
	// MemorySize is the size of the configuration store in bytes.
	MemorySize = 128

	// MaxAddress is the highest valid memory address.
	MaxAddress = MemorySize - 1

	// AddrMinHigh and AddrMinLow hold the minimum position limit (big-endian).
	AddrMinHigh = 0x03
	AddrMinLow  = 0x04

	// AddrMaxHigh and AddrMaxLow hold the maximum position limit (big-endian).
	AddrMaxHigh = 0x05
	AddrMaxLow  = 0x06

	// AddrRange holds the range byte derived from the limits.
	AddrRange = 0x22

	// AddrRangeAux follows the range byte and is touched by every limit write.
	AddrRangeAux = 0x23
)

// Timing defaults.
const (
	// DefaultMessageDelay is the pause between frames of a macro. The
	// controller corrupts the transaction if frames arrive faster.
	DefaultMessageDelay = 20 * time.Millisecond

	// DefaultTimeout bounds a handshake and each response wait.
	DefaultTimeout = time.Second

	// DefaultPollInterval is the receive slice used while waiting.
	DefaultPollInterval = 100 * time.Millisecond
)
