package fraggen

import "fmt"

// Metric selects the exact pairwise distance used by the oracle.
type Metric int

const (
	// MetricEdit is Levenshtein distance
	MetricEdit Metric = iota

	// MetricHamming is positional mismatch count, length difference included
	MetricHamming
)

// ParseMetric maps a metric name from the CLI to a Metric.
func ParseMetric(name string) (Metric, error) {
	switch name {
	case "edit":
		return MetricEdit, nil
	case "hamming":
		return MetricHamming, nil
	}

	return 0, fmt.Errorf("unrecognized distance metric: %s", name)
}

func (m Metric) String() string {
	if m == MetricHamming {
		return "hamming"
	}
	return "edit"
}

// Distance is the exact distance between two sequences under m. It is
// the ground truth behind every LSH candidate hit.
func Distance(m Metric, a, b string) int {
	if m == MetricHamming {
		return hammingDistance(a, b)
	}
	return editDistance(a, b)
}

// hammingDistance counts mismatched positions. When the sequences differ
// in length the overhang counts as mismatches.
func hammingDistance(a, b string) int {
	if len(a) > len(b) {
		a, b = b, a
	}

	dist := len(b) - len(a)
	for i := 0; i < len(a); i++ {
		if a[i] != b[i] {
			dist++
		}
	}

	return dist
}

// editDistance is two-row Levenshtein with an early exit once every cell
// of the current row is at or above the longer length.
func editDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}

	v0 := make([]int, len(b)+1)
	v1 := make([]int, len(b)+1)
	for j := range v0 {
		v0[j] = j
	}

	for i := 0; i < len(a); i++ {
		v1[0] = i + 1
		rowMin := v1[0]
		for j := 0; j < len(b); j++ {
			cost := 1
			if a[i] == b[j] {
				cost = 0
			}

			d := v1[j] + 1
			if v0[j+1]+1 < d {
				d = v0[j+1] + 1
			}
			if v0[j]+cost < d {
				d = v0[j] + cost
			}
			v1[j+1] = d
			if d < rowMin {
				rowMin = d
			}
		}

		// no later row can fall below its minimum
		if rowMin >= maxLen {
			return maxLen
		}

		v0, v1 = v1, v0
	}

	return v0[len(b)]
}
