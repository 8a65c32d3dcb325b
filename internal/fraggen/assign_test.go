package fraggen

import "testing"

func Test_AssignProbes(t *testing.T) {
	probes := []Probe{
		{ID: "a", Seq: "ACGT"},
		{ID: "b", Seq: "TTTT"},
		{ID: "c", Seq: "GGGG"},
	}

	assign, err := AssignProbes(3, probes)
	if err != nil {
		t.Fatal(err)
	}

	for i, want := range []string{"a", "b", "c"} {
		if got := assign.ProbeFor(i); got.ID != want {
			t.Errorf("ProbeFor(%d) = %s, want %s", i, got.ID, want)
		}
	}
}

func Test_AssignProbes_wraps_small_pool(t *testing.T) {
	probes := []Probe{{ID: "a", Seq: "ACGT"}, {ID: "b", Seq: "TTTT"}}

	assign, err := AssignProbes(5, probes)
	if err != nil {
		t.Fatal(err)
	}

	if got := assign.ProbeFor(4); got.ID != "a" {
		t.Errorf("ProbeFor(4) = %s, want a", got.ID)
	}
}

func Test_AssignProbes_empty_pool(t *testing.T) {
	_, err := AssignProbes(1, nil)
	if err == nil {
		t.Fatal("empty pool accepted")
	}
	if !ErrProbePool.Has(err) {
		t.Errorf("unexpected error class: %v", err)
	}
}
