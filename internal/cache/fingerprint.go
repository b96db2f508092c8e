package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"intentional/internal/util/jsonutil"
)

// Fingerprint hashes a stage id together with the canonical JSON encoding of
// its semantic inputs. Equal inputs give equal fingerprints regardless of
// map ordering.
func Fingerprint(stage string, inputs any) (string, error) {
	canon, err := jsonutil.Canonical(inputs)
	if err != nil {
		return "", fmt.Errorf("fingerprint %s: %w", stage, err)
	}
	h := sha256.New()
	h.Write([]byte(stage))
	h.Write([]byte{0})
	h.Write(canon)
	return hex.EncodeToString(h.Sum(nil)), nil
}
