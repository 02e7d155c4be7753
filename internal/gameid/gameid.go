// Package gameid generates collision-resistant, human-typeable game
// identifiers of the form <BASE36_TIMESTAMP>_<6_HEX_CHARS>, upper-cased.
// The timestamp segment grows over calendar time; the random segment comes
// from a cryptographically secure source.
package gameid

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// randomBytes is the number of random bytes in the suffix (6 hex characters).
const randomBytes = 3

// New returns a fresh game identifier. Identifiers are not guaranteed
// globally unique, but collisions within the same millisecond require a
// 24-bit random match, which is negligible at game-creation rates.
func New() string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)

	buf := make([]byte, randomBytes)
	// crypto/rand.Read never fails on supported platforms.
	_, _ = rand.Read(buf)

	return strings.ToUpper(ts + "_" + hex.EncodeToString(buf))
}
