package ledger

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gowebpki/jcs"
)

// Fingerprint canonicalizes payload per RFC 8785 and returns the hex SHA-256
// of the canonical form. Equal payloads fingerprint equally regardless of
// map ordering or formatting.
func Fingerprint(payload any) (string, error) {
	canonical, err := canonicalize(payload)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

func canonicalize(payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ledger payload: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize ledger payload: %w", err)
	}
	return canonical, nil
}

// transactionHash derives a 0x-prefixed hash for a ledger write from the
// payload digest and the submission time, so repeated writes of the same
// payload still get distinct transaction references.
func transactionHash(dataHash string, at time.Time) string {
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(at.UnixNano()))
	sum := sha256.Sum256(append([]byte(dataHash), ts[:]...))
	return "0x" + hex.EncodeToString(sum[:])
}
