// Package pow implements the proof of work puzzle used to seal blocks.
//
// The puzzle hashes the previous block hash, a digest of the block payload,
// the block timestamp, the difficulty and a nonce. A nonce solves the puzzle
// when the leading 8 bytes of that hash, read as a big endian integer, are
// below the target. Only the leading 64 bits of the digest take part in the
// comparison.
package pow

import (
	"encoding/binary"
	"errors"
	"math"
	"strconv"

	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
)

// DifficultyBits is the number of leading zero bits a sealing hash needs.
const DifficultyBits = 18

// MaxNonce is the last nonce the search will try.
const MaxNonce uint64 = math.MaxUint64

// ErrNonceSpace is returned when every nonce was tried without a solution.
var ErrNonceSpace = errors.New("nonce space exhausted")

// Target returns the threshold the leading 64 bits of a hash must be
// strictly below.
func Target() uint64 {
	return 1 << (64 - DifficultyBits)
}

// Solved reports whether the hash satisfies the difficulty target.
func Solved(hash []byte) bool {
	if len(hash) < 8 {
		return false
	}
	return binary.BigEndian.Uint64(hash[:8]) < Target()
}

// =============================================================================

// Candidate represents the data of a block that is fixed before sealing.
type Candidate interface {
	PrevHash() []byte
	PayloadDigest() []byte
	Time() uint64
}

// Seal is the solution found for a candidate.
type Seal struct {
	Nonce uint64
	Hash  []byte
}

// ProofOfWork holds everything needed to hash a candidate for any nonce.
type ProofOfWork struct {
	prefix []byte
	target uint64
}

// New constructs the puzzle for the candidate. The candidate's fields are
// read once here, later changes to the candidate are not seen.
func New(c Candidate) *ProofOfWork {
	prev := c.PrevHash()
	payload := c.PayloadDigest()

	prefix := make([]byte, 0, len(prev)+len(payload)+24)
	prefix = append(prefix, prev...)
	prefix = append(prefix, payload...)
	prefix = strconv.AppendUint(prefix, c.Time(), 10)
	prefix = strconv.AppendUint(prefix, DifficultyBits, 10)

	return &ProofOfWork{
		prefix: prefix,
		target: Target(),
	}
}

// Prepare returns the bytes hashed for the specified nonce.
func (pow *ProofOfWork) Prepare(nonce uint64) []byte {
	data := make([]byte, len(pow.prefix), len(pow.prefix)+20)
	copy(data, pow.prefix)
	return strconv.AppendUint(data, nonce, 10)
}

// Hash returns the sealing hash for the specified nonce.
func (pow *ProofOfWork) Hash(nonce uint64) []byte {
	return signature.Hash(pow.Prepare(nonce))
}

// Run searches the nonces in ascending order starting at zero and returns
// the first one that solves the puzzle. The search is synchronous and can't
// be cancelled.
func (pow *ProofOfWork) Run(ev func(v string, args ...any)) (Seal, error) {
	if ev == nil {
		ev = func(string, ...any) {}
	}

	ev("pow: Run: MINING: started")
	defer ev("pow: Run: MINING: completed")

	for nonce := uint64(0); ; nonce++ {
		if nonce > 0 && nonce%1_000_000 == 0 {
			ev("pow: Run: MINING: attempts[%d]", nonce)
		}

		hash := pow.Hash(nonce)
		if binary.BigEndian.Uint64(hash[:8]) < pow.target {
			ev("pow: Run: MINING: SOLVED: nonce[%d]: hash[%s]", nonce, signature.Hex(hash))
			return Seal{Nonce: nonce, Hash: hash}, nil
		}

		if nonce == MaxNonce {
			return Seal{}, ErrNonceSpace
		}
	}
}

// Validate reports whether the nonce solves the puzzle.
func (pow *ProofOfWork) Validate(nonce uint64) bool {
	return Solved(pow.Hash(nonce))
}
