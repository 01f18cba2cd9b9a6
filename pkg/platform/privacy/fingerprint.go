// Package privacy derives log-safe stand-ins for subject identifiers.
//
// Discovery logs and audit events must never carry a raw email, phone number
// or account ID. Fingerprint produces a keyed BLAKE2b digest so the same
// identifier correlates across log lines of one deployment without being
// reversible by anyone who lacks the key.
package privacy

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"
)

const fingerprintBytes = 8

// Fingerprinter hashes identifiers with a deployment key.
type Fingerprinter struct {
	key []byte
}

// NewFingerprinter creates a Fingerprinter. Keys longer than 64 bytes are
// truncated; an empty key yields unkeyed digests.
func NewFingerprinter(key string) *Fingerprinter {
	k := []byte(key)
	if len(k) > blake2b.Size {
		k = k[:blake2b.Size]
	}
	return &Fingerprinter{key: k}
}

// Fingerprint returns a short hex digest of the canonical (trimmed, lowercased) value.
func (f *Fingerprinter) Fingerprint(value string) string {
	canonical := strings.ToLower(strings.TrimSpace(value))
	if canonical == "" {
		return ""
	}
	var key []byte
	if f != nil {
		key = f.key
	}
	h, err := blake2b.New(fingerprintBytes, key)
	if err != nil {
		// Only reachable with an oversized key, which NewFingerprinter prevents.
		sum := blake2b.Sum256([]byte(canonical))
		return hex.EncodeToString(sum[:fingerprintBytes])
	}
	h.Write([]byte(canonical))
	return hex.EncodeToString(h.Sum(nil))
}

var defaultFingerprinter = NewFingerprinter("")

// Fingerprint hashes value with the unkeyed default fingerprinter.
func Fingerprint(value string) string {
	return defaultFingerprinter.Fingerprint(value)
}
