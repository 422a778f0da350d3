package telemetry

import (
	"fmt"
	"math/rand"
)

// NewIdentifier returns a GUID-shaped string built from four independent
// 8-digit hex draws. The middle two draws are split 4+4 behind separators,
// giving xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx. It is not an RFC 4122 UUID
// and uniqueness is best effort.
func NewIdentifier() string {
	mid1 := hexSegment()
	mid2 := hexSegment()
	return hexSegment() +
		"-" + mid1[:4] + "-" + mid1[4:] +
		"-" + mid2[:4] + "-" + mid2[4:] +
		hexSegment()
}

// RandomDigits returns four random decimal digits. Not unique.
func RandomDigits() string {
	return fmt.Sprintf("%04d", rand.Intn(10000))
}

func hexSegment() string {
	return fmt.Sprintf("%08x", rand.Uint32())
}
