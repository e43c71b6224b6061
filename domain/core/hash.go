package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
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

// InputFingerprint hashes the identifying inputs of a run (layer names, feature
// counts, seed) so two runs over the same inputs can be recognized as replays.
func InputFingerprint(layers map[string]int, seed int64) Hash {
	names := make([]string, 0, len(layers))
	for name := range layers {
		names = append(names, name)
	}
	sort.Strings(names)

	var data strings.Builder
	for _, name := range names {
		data.WriteString(name)
		data.WriteString(fmt.Sprintf(":%d;", layers[name]))
	}
	data.WriteString(fmt.Sprintf("seed=%d", seed))

	return NewHash([]byte(data.String()))
}
