// Package reference issues Paystack transaction references. A reference is
// bound to an order before any payment attempt and is never recycled, even
// when the order it was issued for is abandoned.
package reference

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

const prefix = "NORA"

// Issue returns a new transaction reference, e.g. NORA-1719849600123-9F2C41D0.
// The timestamp keeps references human-traceable; the random block keeps
// concurrent issues distinct.
func Issue() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), strings.ToUpper(hex.EncodeToString(b)))
}

// Valid reports whether ref looks like a reference this service issued.
func Valid(ref string) bool {
	return strings.HasPrefix(ref, prefix+"-")
}
