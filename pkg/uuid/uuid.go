// Package uuid provides UUID v7 generation.
// UUID v7 is sortable by timestamp, so job and audit ids created later
// compare greater — the job listing relies on this for its tiebreak.
package uuid

import (
	crand "crypto/rand"
	"fmt"
	"time"
)

// UUID represents a UUID v7 identifier.
type UUID [16]byte

// NewV7 generates a new UUID v7.
// Layout (as per draft-ietf-uuidrev-rfc4122bis):
// - 48 bits: UNIX timestamp in milliseconds
// - 4 bits: version (0111)
// - 12 bits: random
// - 2 bits: variant (10)
// - 62 bits: random
func NewV7() UUID {
	now := time.Now().UnixMilli()

	var uuid UUID

	// Timestamp (48 bits, ms precision) — bytes 0-5
	uuid[0] = byte(now >> 40)
	uuid[1] = byte(now >> 32)
	uuid[2] = byte(now >> 24)
	uuid[3] = byte(now >> 16)
	uuid[4] = byte(now >> 8)
	uuid[5] = byte(now)

	// Random part — bytes 6-15, version and variant bits patched in.
	// crypto/rand never fails on supported platforms; a failure here means
	// the process has no usable entropy source and cannot mint ids at all.
	if _, err := crand.Read(uuid[6:]); err != nil {
		panic(fmt.Sprintf("uuid: read random bytes: %v", err))
	}
	uuid[6] = 0x70 | (uuid[6] & 0x0f)
	uuid[7] = 0x80 | (uuid[7] & 0x3f)

	return uuid
}

// String returns the UUID in standard form: xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx
func (u UUID) String() string {
	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x",
		u[0:4],
		u[4:6],
		u[6:8],
		u[8:10],
		u[10:16],
	)
}
