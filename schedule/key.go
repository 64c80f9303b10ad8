package schedule

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// keySep joins the segments of identity keys and fingerprint input. Free-form
// fields never appear raw in a key (only their hash does), so the separator
// cannot collide with content.
const keySep = "|"

// fingerprintLen is the number of hex characters kept from the content hash.
const fingerprintLen = 8

// Identity names the calendar slot an event occupies: the raw date and start
// time exactly as the document spells them, unpadded.
func Identity(e Event) string {
	return e.Date + keySep + e.StartTime
}

// Fingerprint condenses every rendered field of an event into a short hex
// digest. Editing any field a viewer can see changes the fingerprint.
func Fingerprint(e Event) string {
	input := strings.Join([]string{e.Date, e.StartTime, e.Title, e.Description, e.Image, e.Category}, keySep)
	sum := md5.Sum([]byte(input)) //nolint:gosec // G401: md5 is a change detector here, not used for security
	return hex.EncodeToString(sum[:])[:fingerprintLen]
}

// Key is the full record key embedded in posted messages: identity plus
// fingerprint. Two events with equal keys render identically.
func Key(e Event) string {
	return Identity(e) + keySep + Fingerprint(e)
}
