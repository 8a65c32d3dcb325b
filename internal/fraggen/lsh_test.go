package fraggen

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func randomSeq(rnd *rand.Rand, length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = bases[rnd.Intn(4)]
	}
	return string(b)
}

func Test_NewIndex_parameters(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))

	if _, err := NewIndex(0, 20, 4, rnd); err == nil {
		t.Error("k = 0 accepted")
	}
	if _, err := NewIndex(4, 21, 4, rnd); err == nil {
		t.Error("r not a multiple of b accepted")
	}
	if _, err := NewIndex(maxShingleK+1, 20, 4, rnd); err == nil {
		t.Error("oversized k accepted")
	}
	if _, err := NewIndex(4, 20, 4, rnd); err != nil {
		t.Errorf("valid parameters rejected: %v", err)
	}
}

// an identical sequence hashes to the same signature in every band, so a
// planted member must always come back as a candidate of itself.
func Test_Index_recall_identical(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))

	const trials = 50
	for trial := 0; trial < trials; trial++ {
		index, err := NewIndex(4, 40, 8, rnd)
		require.NoError(t, err)

		planted := randomSeq(rnd, 30)
		index.Insert(Member{ID: "planted", Seq: planted})
		for i := 0; i < 20; i++ {
			index.Insert(Member{ID: randomSeq(rnd, 4), Seq: randomSeq(rnd, 30)})
		}

		found := false
		for _, m := range index.Candidates(planted) {
			if m.ID == "planted" {
				found = true
				break
			}
		}
		require.True(t, found, "trial %d: planted member missed at distance 0", trial)
	}
}

func Test_Index_candidates_deduplicated(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	index, err := NewIndex(4, 40, 8, rnd)
	require.NoError(t, err)

	seq := randomSeq(rnd, 30)
	index.Insert(Member{ID: "a", Seq: seq})

	// a co-occurs with the query in all 8 bands but must appear once
	candidates := index.Candidates(seq)
	require.Len(t, candidates, 1)
	require.Equal(t, "a", candidates[0].ID)
}

func Test_Index_concurrent_use(t *testing.T) {
	rnd := rand.New(rand.NewSource(11))
	index, err := NewIndex(4, 20, 4, rnd)
	require.NoError(t, err)

	seqs := make([]string, 64)
	for i := range seqs {
		seqs[i] = randomSeq(rnd, 24)
	}

	done := make(chan bool)
	for w := 0; w < 8; w++ {
		go func(w int) {
			for i, s := range seqs {
				if i%8 == w {
					index.Insert(Member{ID: s, Seq: s})
				}
				index.Candidates(s)
			}
			done <- true
		}(w)
	}
	for w := 0; w < 8; w++ {
		<-done
	}

	// everything inserted must be findable by itself
	for _, s := range seqs {
		found := false
		for _, m := range index.Candidates(s) {
			if m.ID == s {
				found = true
				break
			}
		}
		require.True(t, found, "inserted member %s not found", s)
	}
}

// sequences shorter than the shingle length have no shingles; they all
// share the sentinel signature and must still propose each other, so the
// oracle gets to rule on them like on any candidate pair.
func Test_Index_sequences_shorter_than_k(t *testing.T) {
	rnd := rand.New(rand.NewSource(19))
	index, err := NewIndex(6, 40, 8, rnd)
	require.NoError(t, err)

	index.Insert(Member{ID: "short", Seq: "ACG"})
	index.Insert(Member{ID: "long", Seq: randomSeq(rnd, 30)})

	var ids []string
	for _, m := range index.Candidates("TG") {
		ids = append(ids, m.ID)
	}
	require.Contains(t, ids, "short")

	// the empty query takes the same path
	require.NotPanics(t, func() { index.Candidates("") })
}

func Test_pseudoPermutation_range(t *testing.T) {
	rnd := rand.New(rand.NewSource(5))
	perm := newPseudoPermutation(256, 256, rnd)

	for x := uint64(0); x < 256; x++ {
		if got := perm.apply(x); got >= 256 {
			t.Fatalf("apply(%d) = %d, out of range", x, got)
		}
	}
}

func Test_shingleIDs(t *testing.T) {
	// AA -> 0, CA -> 1 (first base is the low 2 bits)
	ids := shingleIDs("AAC", 2)
	if len(ids) != 2 {
		t.Fatalf("got %d ids, want 2", len(ids))
	}
	if ids[0] != 0 {
		t.Errorf("shingle AA = %d, want 0", ids[0])
	}
	if ids[1] != 4 {
		t.Errorf("shingle AC = %d, want 4", ids[1])
	}
}
