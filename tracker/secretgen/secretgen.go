// Package secretgen provisions the tracker's ServerSecret at process
// start, either randomly or from configuration.
package secretgen

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/torrust/udp-connid-tracker/connid"
)

// Random returns a freshly generated 32-byte secret using a CSPRNG. Use
// this when no secret is configured; the resulting secret lives only for
// the process lifetime, so connection IDs issued before a restart will
// not verify afterward.
func Random() (connid.Secret, error) {
	var s connid.Secret
	if _, err := rand.Read(s[:]); err != nil {
		return connid.Secret{}, fmt.Errorf("secretgen: generate random secret: %w", err)
	}
	return s, nil
}

// FromHex decodes a 64-character hex string (32 bytes) into a secret, as
// loaded from configuration.
func FromHex(s string) (connid.Secret, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return connid.Secret{}, fmt.Errorf("secretgen: invalid hex secret: %w", err)
	}
	if len(raw) != 32 {
		return connid.Secret{}, fmt.Errorf("secretgen: secret must be 32 bytes, got %d", len(raw))
	}
	var secret connid.Secret
	copy(secret[:], raw)
	return secret, nil
}
