// Package outcome holds the pure functions deciding quest and battle results.
// Nothing here keeps state: every draw is re-derived from a seed and a label so
// a message can be replayed and produce the same outcome.
package outcome

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
)

type SeedInput struct {
	Sender       string
	BlockTime    time.Time
	MessageIndex uint64
	Entropy      string

	// Purpose separates draws of different kinds inside the same message.
	Purpose string
}

// Seed hashes the message context with Keccak256 and reads the first 8 bytes
// as a big endian integer.
func Seed(in SeedInput) uint64 {
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[:8], uint64(in.BlockTime.Unix()))
	binary.BigEndian.PutUint64(buf[8:], in.MessageIndex)

	hash := crypto.Keccak256(
		[]byte(in.Sender),
		buf[:],
		[]byte(in.Entropy),
		[]byte(in.Purpose),
	)

	return binary.BigEndian.Uint64(hash[:8])
}

func derive(seed uint64, label string) uint64 {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], seed)
	hash := crypto.Keccak256(buf[:], []byte(label))
	return binary.BigEndian.Uint64(hash[:8])
}

// Roll returns an integer in the closed range [lo, hi].
func Roll(seed uint64, label string, lo, hi int) int {
	if hi <= lo {
		return lo
	}

	span := uint64(hi - lo + 1)
	return lo + int(derive(seed, label)%span)
}

// Float returns a number in [0, 1).
func Float(seed uint64, label string) float64 {
	return float64(derive(seed, label)>>11) / float64(uint64(1)<<53)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
