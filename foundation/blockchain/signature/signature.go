// Package signature provides helper functions for handling the blockchain
// hashing needs.
package signature

import (
	"crypto/sha256"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// HashLength is the size in bytes of every hash produced by this package.
const HashLength = sha256.Size

// ZeroHash represents a hash code of zeros.
const ZeroHash string = "0x0000000000000000000000000000000000000000000000000000000000000000"

// =============================================================================

// Hash returns the sha256 digest of the specified bytes.
func Hash(data []byte) []byte {
	hash := sha256.Sum256(data)
	return hash[:]
}

// HashConcat returns the sha256 digest of the parts written one after
// the other, without any separator.
func HashConcat(parts ...[]byte) []byte {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)
}

// Hex returns the 0x prefixed hex form of a hash. An empty hash is displayed
// as the zero hash so the origin block's parent still reads as a hash.
func Hex(hash []byte) string {
	if len(hash) == 0 {
		return ZeroHash
	}
	return hexutil.Encode(hash)
}

// FromHex parses the 0x prefixed hex form of a hash.
func FromHex(s string) ([]byte, error) {
	if s == ZeroHash {
		return nil, nil
	}
	return hexutil.Decode(s)
}
