package deck

import (
	"crypto/cipher"
	"math/big"

	"go.dedis.ch/kyber/v4/suites"
	"go.dedis.ch/kyber/v4/util/random"
)

var suite suites.Suite = suites.MustFind("Ed25519")

// RandomStream returns the cryptographic stream used when no other source is supplied.
func RandomStream() cipher.Stream {
	return suite.RandomStream()
}

// Shuffle permutes cards in place with a uniform Fisher–Yates shuffle.
// Indices are drawn from stream; a nil stream means RandomStream().
func Shuffle[T any](cards []T, stream cipher.Stream) {
	if stream == nil {
		stream = RandomStream()
	}
	for i := len(cards) - 1; i > 0; i-- {
		j := int(random.Int(big.NewInt(int64(i+1)), stream).Int64())
		cards[i], cards[j] = cards[j], cards[i]
	}
}

// Shuffled returns a shuffled copy of cards, leaving the input untouched.
func Shuffled[T any](cards []T, stream cipher.Stream) []T {
	out := make([]T, len(cards))
	copy(out, cards)
	Shuffle(out, stream)
	return out
}

// Permutation returns a random permutation of [0, n).
func Permutation(n int, stream cipher.Stream) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	Shuffle(perm, stream)
	return perm
}
