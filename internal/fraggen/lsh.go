package fraggen

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
)

// maxShingleK keeps the 4^k shingle space inside Int63n's range when
// drawing permutation coefficients.
const maxShingleK = 30

// Member is one sequence registered in an Index.
type Member struct {
	// ID of the probe or of the accepted fragment ("objectID_symbolID")
	ID string

	// Seq is the member's nucleotide string
	Seq string
}

// band is one bucket map of the index, guarded independently so reads
// of different bands never contend.
type band struct {
	mu      sync.RWMutex
	buckets map[string][]Member
}

// Index is a min-hash LSH index over k-mer shingles. r hash functions are
// partitioned into b bands; a member lands in one bucket per band and any
// bucket co-occupant of a query is a candidate neighbor. Candidates are
// recall-oriented only: callers confirm every hit with the exact
// distance oracle before acting on it.
type Index struct {
	k        int
	bandSize int
	bands    []*band
	perms    []pseudoPermutation
}

// NewIndex creates an index for k-mers of length k with r min-hashes in
// b bands. rnd fixes the permutation draw so runs are reproducible.
func NewIndex(k, r, b int, rnd *rand.Rand) (*Index, error) {
	if k < 1 || k > maxShingleK {
		return nil, fmt.Errorf("shingle length must be between 1 and %d, got %d", maxShingleK, k)
	}
	if r < 1 || b < 1 || r%b != 0 {
		return nil, fmt.Errorf("hash count %d must be a positive multiple of band count %d", r, b)
	}

	shingleSpace := uint64(1) << (2 * uint(k)) // 4^k
	p := shingleSpace
	perms := make([]pseudoPermutation, 0, r)
	for i := 0; i < r; i++ {
		perm := newPseudoPermutation(shingleSpace, p, rnd)
		p = perm.p
		perms = append(perms, perm)
	}

	bands := make([]*band, b)
	for i := range bands {
		bands[i] = &band{buckets: make(map[string][]Member)}
	}

	return &Index{
		k:        k,
		bandSize: r / b,
		bands:    bands,
		perms:    perms,
	}, nil
}

// Insert registers m in every band's bucket map. Safe for concurrent use.
func (x *Index) Insert(m Member) {
	sigs := x.signatures(m.Seq)
	for i, b := range x.bands {
		b.mu.Lock()
		b.buckets[sigs[i]] = append(b.buckets[sigs[i]], m)
		b.mu.Unlock()
	}
}

// Candidates returns every member sharing at least one band bucket with
// seq, deduplicated by ID.
func (x *Index) Candidates(seq string) []Member {
	sigs := x.signatures(seq)
	seen := make(map[string]bool)
	var result []Member

	for i, b := range x.bands {
		b.mu.RLock()
		for _, m := range b.buckets[sigs[i]] {
			if !seen[m.ID] {
				seen[m.ID] = true
				result = append(result, m)
			}
		}
		b.mu.RUnlock()
	}

	return result
}

// minHashes computes the min-hash of seq's shingles under every
// permutation. A sequence shorter than k has no shingles, so every
// min-hash stays at the sentinel: all such sequences land in one shared
// bucket per band and always propose each other. The distance oracle
// confirms or discards those pairings like any other candidate.
func (x *Index) minHashes(seq string) []uint64 {
	ids := shingleIDs(seq, x.k)

	mins := make([]uint64, len(x.perms))
	for i, perm := range x.perms {
		min := uint64(1<<63 - 1)
		for _, id := range ids {
			h := perm.apply(id)
			if h == 0 {
				min = 0
				break
			}
			if h < min {
				min = h
			}
		}
		mins[i] = min
	}

	return mins
}

// signatures concatenates each band's slice of min-hashes into that
// band's bucket key.
func (x *Index) signatures(seq string) []string {
	mins := x.minHashes(seq)

	sigs := make([]string, 0, len(x.bands))
	offset := 0
	var sb strings.Builder
	for range x.bands {
		sb.Reset()
		for m := 0; m < x.bandSize; m++ {
			sb.WriteString(strconv.FormatUint(mins[offset+m], 10))
			sb.WriteByte('.')
		}
		sigs = append(sigs, sb.String())
		offset += x.bandSize
	}

	return sigs
}

// shingleIDs maps every k-mer of seq to its rank in the 4^k shingle space.
func shingleIDs(seq string, k int) []uint64 {
	if k > len(seq) {
		return nil
	}

	ids := make([]uint64, 0, len(seq)-k+1)
	for i := 0; i+k <= len(seq); i++ {
		var id uint64
		for j := 0; j < k; j++ {
			id |= uint64(baseOrder[seq[i+j]]) << (2 * uint(j))
		}
		ids = append(ids, id)
	}

	return ids
}
