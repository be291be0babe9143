package core

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// DerivationHash keys a derived grid by the inputs it was computed from
type DerivationHash Hash

func (h DerivationHash) String() string { return Hash(h).String() }

// ComputeDerivationHash hashes a snapshot identity and the two ordered selections.
// Selections are order-sensitive because effective axes keep the selection order.
func ComputeDerivationHash(snapshot SnapshotID, stages, stakeholders []string) DerivationHash {
	var data strings.Builder
	data.WriteString(snapshot.String())
	for _, group := range [][]string{stages, stakeholders} {
		data.WriteByte(0x1e)
		for _, v := range group {
			data.WriteString(v)
			data.WriteByte(0x1f)
		}
	}
	return DerivationHash(NewHash([]byte(data.String())))
}
