package fraggen

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// WriteFasta writes the accepted fragments and their probe assignments to
// a FASTA file. Probe sequences themselves are not written; the caption
// carries the assignment. Entries are ordered by object then symbol so
// output is stable across runs.
func WriteFasta(path string, accepted []AcceptedSeq) error {
	sorted := make([]AcceptedSeq, len(accepted))
	copy(sorted, accepted)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].ObjectID != sorted[j].ObjectID {
			return sorted[i].ObjectID < sorted[j].ObjectID
		}
		return sorted[i].SymbolID < sorted[j].SymbolID
	})

	var sb strings.Builder
	for _, a := range sorted {
		sb.WriteString(fmt.Sprintf(">%s probe=%s\n%s\n", a.FragmentID(), a.ProbeID, a.Seq))
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("failed to write the output: %v", err)
	}

	return nil
}
