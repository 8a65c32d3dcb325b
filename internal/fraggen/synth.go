package fraggen

import (
	"fmt"
	"strings"
)

// Synthesize maps payload to a nucleotide string, two bits per base, most
// significant bits first. salt perturbs the payload through an invertible
// XOR mask so a rejected symbol resynthesizes to a different string that
// still decodes back to the same bytes. salt 0 is the identity mask.
// Pure: identical (payload, salt) always yields the identical string.
func Synthesize(payload []byte, salt uint64) string {
	var sb strings.Builder
	sb.Grow(len(payload) * 4)

	mask := newSaltMask(salt)
	for _, b := range payload {
		b ^= mask.next()
		sb.WriteByte(bases[(b>>6)&0b11])
		sb.WriteByte(bases[(b>>4)&0b11])
		sb.WriteByte(bases[(b>>2)&0b11])
		sb.WriteByte(bases[b&0b11])
	}

	return sb.String()
}

// Desynthesize inverts Synthesize for the same salt.
func Desynthesize(seq string, salt uint64) ([]byte, error) {
	if len(seq)%4 != 0 {
		return nil, fmt.Errorf("sequence length %d is not a whole number of bytes", len(seq))
	}
	if err := validSeq(seq); err != nil {
		return nil, err
	}

	mask := newSaltMask(salt)
	payload := make([]byte, 0, len(seq)/4)
	for i := 0; i < len(seq); i += 4 {
		var b byte
		for j := 0; j < 4; j++ {
			b = b<<2 | byte(baseOrder[seq[i+j]])
		}
		payload = append(payload, b^mask.next())
	}

	return payload, nil
}

// saltMask is a deterministic byte stream keyed by the synthesis salt
// (splitmix64). The zero salt emits only zero bytes.
type saltMask struct {
	state uint64
	word  uint64
	left  int
	zero  bool
}

func newSaltMask(salt uint64) *saltMask {
	return &saltMask{state: salt, zero: salt == 0}
}

func (m *saltMask) next() byte {
	if m.zero {
		return 0
	}
	if m.left == 0 {
		m.state += 0x9e3779b97f4a7c15
		z := m.state
		z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
		z = (z ^ (z >> 27)) * 0x94d049bb133111eb
		m.word = z ^ (z >> 31)
		m.left = 8
	}

	b := byte(m.word)
	m.word >>= 8
	m.left--

	return b
}
