package fraggen

import "testing"

func Test_editDistance(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want int
	}{
		{"both empty", "", "", 0},
		{"one empty", "", "ACGT", 4},
		{"identical", "ACGTACGT", "ACGTACGT", 0},
		{"single substitution", "ACGT", "ACTT", 1},
		{"single insertion", "ACGT", "ACGGT", 1},
		{"single deletion", "ACGT", "AGT", 1},
		{"disjoint", "AAAA", "TTTT", 4},
		{"length difference", "AC", "ACGTACGT", 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := editDistance(tt.a, tt.b); got != tt.want {
				t.Errorf("editDistance(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			// symmetric
			if got := editDistance(tt.b, tt.a); got != tt.want {
				t.Errorf("editDistance(%s, %s) = %v, want %v", tt.b, tt.a, got, tt.want)
			}
		})
	}
}

func Test_hammingDistance(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want int
	}{
		{"identical", "ACGT", "ACGT", 0},
		{"all mismatched", "AAAA", "TTTT", 4},
		{"overhang counts", "ACGT", "ACGTAA", 2},
		{"mismatch plus overhang", "ACGA", "ACGTAA", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hammingDistance(tt.a, tt.b); got != tt.want {
				t.Errorf("hammingDistance(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func Test_ParseMetric(t *testing.T) {
	if m, err := ParseMetric("edit"); err != nil || m != MetricEdit {
		t.Errorf("ParseMetric(edit) = %v, %v", m, err)
	}
	if m, err := ParseMetric("hamming"); err != nil || m != MetricHamming {
		t.Errorf("ParseMetric(hamming) = %v, %v", m, err)
	}
	if _, err := ParseMetric("jaccard"); err == nil {
		t.Error("ParseMetric(jaccard) = nil error, want error")
	}
}
