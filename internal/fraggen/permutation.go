package fraggen

import (
	"math/bits"
	"math/rand"
)

// pseudoPermutation approximates a random permutation of [0, m) with
// (a*x + b) mod p mod m where p is a prime at or above m. Min-hashing
// with r of these stands in for r true shingle-order permutations.
type pseudoPermutation struct {
	m uint64
	p uint64
	a uint64
	b uint64
}

// newPseudoPermutation draws a and b from rnd. p must be >= m; the next
// prime above p is used.
func newPseudoPermutation(m, p uint64, rnd *rand.Rand) pseudoPermutation {
	if p < m {
		p = m
	}
	prime := nextPrime(p)

	return pseudoPermutation{
		m: m,
		p: prime,
		a: 1 + uint64(rnd.Int63n(int64(prime-1))),
		b: 1 + uint64(rnd.Int63n(int64(prime-1))),
	}
}

// apply permutes index x. The multiply is widened to 128 bits so large
// shingle spaces do not overflow. a and b are below p and x is below m,
// so the 128-bit product's high word stays below p and Div64 is safe.
func (pp pseudoPermutation) apply(x uint64) uint64 {
	hi, lo := bits.Mul64(pp.a, x)
	var carry uint64
	lo, carry = bits.Add64(lo, pp.b, 0)
	hi += carry
	_, rem := bits.Div64(hi, lo, pp.p)

	return rem % pp.m
}

func nextPrime(n uint64) uint64 {
	p := n + 1
	if p%2 == 0 {
		p++
	}
	for !isOddPrime(p) {
		p += 2
	}

	return p
}

func isOddPrime(p uint64) bool {
	if p < 3 {
		return p == 2
	}
	for n := uint64(3); n*n <= p; n += 2 {
		if p%n == 0 {
			return false
		}
	}

	return true
}
