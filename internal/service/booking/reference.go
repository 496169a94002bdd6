package booking

import (
	"fmt"
	"math/rand"
	"time"
)

// NewReference generates a human-shareable booking reference: "PNR" +
// UTC timestamp down to seconds + 4 random digits. Two bookings in the
// same second still collide only on the random suffix, and the store's
// unique index plus the engine's retry covers that case.
func NewReference() string {
	t := time.Now().UTC().Format("060102150405")
	return fmt.Sprintf("PNR%s%04d", t, 1000+rand.Intn(9000))
}
