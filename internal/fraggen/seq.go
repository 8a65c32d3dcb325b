// Package fraggen turns erasure-coded symbols of binary data objects into
// nucleotide fragments that satisfy structural and separation constraints
// for a probe-addressed DNA store.
package fraggen

import "fmt"

// bases is the nucleotide alphabet in 2-bit encoding order.
const bases = "ACGT"

// baseOrder maps a nucleotide to its 2-bit value. -1 for anything else.
var baseOrder = [256]int8{}

func init() {
	for i := range baseOrder {
		baseOrder[i] = -1
	}
	for i := 0; i < len(bases); i++ {
		baseOrder[bases[i]] = int8(i)
	}
}

// validSeq errs if seq contains anything outside ATCG.
func validSeq(seq string) error {
	for i := 0; i < len(seq); i++ {
		if baseOrder[seq[i]] < 0 {
			return fmt.Errorf("unrecognized nucleotide %q at index %d", seq[i], i)
		}
	}
	return nil
}

// longestHomopolymer returns the length of the longest run of a
// single nucleotide in seq.
func longestHomopolymer(seq string) int {
	if seq == "" {
		return 0
	}

	longest, current := 1, 1
	for i := 1; i < len(seq); i++ {
		if seq[i] == seq[i-1] {
			current++
		} else {
			if current > longest {
				longest = current
			}
			current = 1
		}
	}
	if current > longest {
		longest = current
	}

	return longest
}

// gcContent returns the fraction of the sequence that is G or C.
func gcContent(seq string) float64 {
	if seq == "" {
		return 0
	}

	gc := 0
	for i := 0; i < len(seq); i++ {
		if seq[i] == 'G' || seq[i] == 'C' {
			gc++
		}
	}

	return float64(gc) / float64(len(seq))
}
