package fraggen

import "fmt"

// Mode selects exact versus LSH-accelerated separation checks. A pure
// strategy switch: accept/reject semantics are identical in every mode,
// modulo the documented LSH false-negative risk.
type Mode int

const (
	// ModeLSH uses the similarity indices for both separation checks
	ModeLSH Mode = iota

	// ModeMixed uses the index for the probe check only
	ModeMixed

	// ModeNaive scans the full pools with the exact oracle
	ModeNaive
)

// ParseMode maps an encoding-mode name from the CLI to a Mode.
func ParseMode(name string) (Mode, error) {
	switch name {
	case "lsh":
		return ModeLSH, nil
	case "mixed":
		return ModeMixed, nil
	case "naive":
		return ModeNaive, nil
	}

	return 0, fmt.Errorf("unrecognized encoding mode: %s", name)
}

func (m Mode) String() string {
	switch m {
	case ModeMixed:
		return "mixed"
	case ModeNaive:
		return "naive"
	}
	return "lsh"
}

// Reason is the verdict of the constraint validator for one candidate.
type Reason int

const (
	// Accepted means every enabled constraint passed
	Accepted Reason = iota

	// HomopolymerTooLong means a single-nucleotide run exceeds the limit
	HomopolymerTooLong

	// GCOutOfRange means the GC content is outside the configured window
	GCOutOfRange

	// TooCloseToProbe means a probe is within the probe separation threshold
	TooCloseToProbe

	// TooCloseToOtherSequence means an accepted fragment is within the
	// sequence separation threshold
	TooCloseToOtherSequence

	// FoldsTooStably means the predicted secondary structure is too stable
	FoldsTooStably

	// FoldingUnavailable means the folding service could not answer; this is
	// a rejection of the attempt, never an implicit "stable"
	FoldingUnavailable
)

func (r Reason) String() string {
	switch r {
	case Accepted:
		return "accepted"
	case HomopolymerTooLong:
		return "homopolymer too long"
	case GCOutOfRange:
		return "gc out of range"
	case TooCloseToProbe:
		return "too close to probe"
	case TooCloseToOtherSequence:
		return "too close to other sequence"
	case FoldsTooStably:
		return "folds too stably"
	case FoldingUnavailable:
		return "folding service unavailable"
	}
	return "unknown"
}

// EnergySource answers folding-energy queries. *FoldClient in production,
// stubbed in tests.
type EnergySource interface {
	Energy(seq string) (float64, error)
}

// Validator composes the structural, separation, and folding checks in
// increasing cost order. The sequence-separation check lives on the
// SequenceStore commit path (it must be atomic with insertion); everything
// here is free of shared mutable state and safe for concurrent use.
type Validator struct {
	Mode   Mode
	Metric Metric

	MaxHomopolymer int

	CheckGC bool
	MinGC   float64
	MaxGC   float64

	MinDistToProbes int
	MinDistToSeqs   int

	// the read-only probe pool, scanned exactly in naive mode
	Probes []Probe

	// the probe similarity index, used in lsh and mixed modes
	ProbeIndex *Index

	// whether a candidate's own assigned probe is exempt from the
	// probe-separation constraint
	ExcludeOwnProbe bool

	// folding screen; nil when disabled
	Folder       EnergySource
	MaxFoldError float64

	// times a failed folding request is retried within one attempt
	FoldRetries int
}

// CheckStructure runs the single-scan structural constraints.
func (v *Validator) CheckStructure(seq string) Reason {
	if longestHomopolymer(seq) > v.MaxHomopolymer {
		return HomopolymerTooLong
	}

	if v.CheckGC {
		if gc := gcContent(seq); gc < v.MinGC || gc > v.MaxGC {
			return GCOutOfRange
		}
	}

	return Accepted
}

// CheckProbes enforces the probe separation threshold. In lsh and mixed
// modes the index proposes candidates and the oracle confirms each before
// a rejection is issued; naive mode scans the pool. ownProbeID is skipped
// when the exclusion policy is on.
func (v *Validator) CheckProbes(seq, ownProbeID string) Reason {
	if v.Mode == ModeNaive {
		for _, p := range v.Probes {
			if v.ExcludeOwnProbe && p.ID == ownProbeID {
				continue
			}
			if Distance(v.Metric, seq, p.Seq) < v.MinDistToProbes {
				return TooCloseToProbe
			}
		}
		return Accepted
	}

	for _, m := range v.ProbeIndex.Candidates(seq) {
		if v.ExcludeOwnProbe && m.ID == ownProbeID {
			continue
		}
		// the index is a filter, not ground truth
		if Distance(v.Metric, seq, m.Seq) < v.MinDistToProbes {
			return TooCloseToProbe
		}
	}

	return Accepted
}

// CheckFolding queries the folding screen, retrying a bounded number of
// times when the service errors. Returns FoldingUnavailable (with the
// underlying error) when it never answers.
func (v *Validator) CheckFolding(seq string) (Reason, error) {
	if v.Folder == nil {
		return Accepted, nil
	}

	var lastErr error
	for try := 0; try <= v.FoldRetries; try++ {
		dg, err := v.Folder.Energy(seq)
		if err != nil {
			lastErr = err
			continue
		}

		if foldError(dg) > v.MaxFoldError {
			return FoldsTooStably, nil
		}
		return Accepted, nil
	}

	return FoldingUnavailable, lastErr
}
