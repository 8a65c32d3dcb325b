package fraggen

import (
	"fmt"
	"sync"
	"time"
)

// AcceptedSeq is a fragment that passed every constraint. Immutable once
// committed; the accepted set only grows during a run.
type AcceptedSeq struct {
	ObjectID int
	SymbolID int
	ProbeID  string
	Seq      string
	Attempts int
}

// FragmentID names the fragment in indices, FASTA captions and reports.
func (a AcceptedSeq) FragmentID() string {
	return fmt.Sprintf("%d_%d", a.ObjectID, a.SymbolID)
}

// SequenceStore holds the growing accepted-fragment set and its
// similarity index. The separation check against other accepted fragments
// and the insertion of a new one form one critical section: two workers
// must never both clear the check against each other's uncommitted
// candidate and then both commit.
type SequenceStore struct {
	mu sync.Mutex

	metric  Metric
	minDist int

	// index is non-nil only in lsh mode; mixed and naive scan the slice
	index *Index

	accepted []AcceptedSeq
}

// NewSequenceStore creates the store. index may be nil (mixed/naive
// modes), in which case commits scan the full accepted set exactly.
func NewSequenceStore(metric Metric, minDist int, index *Index) *SequenceStore {
	return &SequenceStore{metric: metric, minDist: minDist, index: index}
}

// TryCommit atomically checks candidate separation against everything
// accepted so far and, on success, makes the fragment visible to all
// later checks. Returns false when the candidate sits too close to an
// already-committed fragment.
func (s *SequenceStore) TryCommit(a AcceptedSeq) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index != nil {
		for _, m := range s.index.Candidates(a.Seq) {
			if Distance(s.metric, a.Seq, m.Seq) < s.minDist {
				return false
			}
		}
	} else {
		for i := range s.accepted {
			if Distance(s.metric, a.Seq, s.accepted[i].Seq) < s.minDist {
				return false
			}
		}
	}

	if s.index != nil {
		s.index.Insert(Member{ID: a.FragmentID(), Seq: a.Seq})
	}
	s.accepted = append(s.accepted, a)

	return true
}

// Accepted is a snapshot of the committed fragments.
func (s *SequenceStore) Accepted() []AcceptedSeq {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]AcceptedSeq, len(s.accepted))
	copy(out, s.accepted)

	return out
}

// Len is the committed fragment count.
func (s *SequenceStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.accepted)
}

// Task is one symbol's generation unit.
type Task struct {
	Symbol Symbol
	Probe  Probe
}

// Result is the terminal state of one task: either an accepted sequence
// or a distinguishable failure. Failures never silently shrink the
// output; the caller counts and reports them.
type Result struct {
	Symbol  Symbol
	ProbeID string

	// Seq is empty unless the task succeeded
	Seq      string
	Attempts int

	// LastReason is the rejection that ended the final attempt
	LastReason Reason

	// Err is non-nil on failure: ErrExhausted or ErrFolding
	Err error

	SynthTime time.Duration
	FoldTime  time.Duration
	Total     time.Duration
}

// Scheduler fans symbol-generation tasks across a fixed worker pool.
// Tasks are independent except for the shared store and indices; no
// ordering is guaranteed between symbols.
type Scheduler struct {
	Workers     int
	MaxAttempts int
	Validator   *Validator
	Store       *SequenceStore
}

// Run generates every task and returns one result per task, in
// completion order.
func (s *Scheduler) Run(tasks []Task) []Result {
	taskCh := make(chan Task)
	resultCh := make(chan Result)

	var wg sync.WaitGroup
	for i := 0; i < s.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range taskCh {
				resultCh <- s.generate(t)
			}
		}()
	}

	go func() {
		for _, t := range tasks {
			taskCh <- t
		}
		close(taskCh)
		wg.Wait()
		close(resultCh)
	}()

	results := make([]Result, 0, len(tasks))
	for r := range resultCh {
		results = append(results, r)
	}

	return results
}

// generate loops synthesize -> validate -> (commit | retry) until the
// candidate is accepted or the retry budget runs out. The attempt counter
// doubles as the synthesis salt, keeping the synthesizer stateless.
func (s *Scheduler) generate(t Task) Result {
	start := time.Now()
	var foldTime time.Duration
	lastReason := Accepted

	for attempt := 0; attempt < s.MaxAttempts; attempt++ {
		seq := Synthesize(t.Symbol.Payload, uint64(attempt))

		if lastReason = s.Validator.CheckStructure(seq); lastReason != Accepted {
			continue
		}

		if lastReason = s.Validator.CheckProbes(seq, t.Probe.ID); lastReason != Accepted {
			continue
		}

		foldStart := time.Now()
		reason, foldErr := s.Validator.CheckFolding(seq)
		foldTime += time.Since(foldStart)
		if reason != Accepted {
			lastReason = reason
			if foldErr != nil {
				stderr.Printf("folding query failed for symbol %d_%d: %v", t.Symbol.ObjectID, t.Symbol.SymbolID, foldErr)
			}
			continue
		}

		accepted := AcceptedSeq{
			ObjectID: t.Symbol.ObjectID,
			SymbolID: t.Symbol.SymbolID,
			ProbeID:  t.Probe.ID,
			Seq:      seq,
			Attempts: attempt + 1,
		}
		if !s.Store.TryCommit(accepted) {
			lastReason = TooCloseToOtherSequence
			continue
		}

		total := time.Since(start)
		return Result{
			Symbol:     t.Symbol,
			ProbeID:    t.Probe.ID,
			Seq:        seq,
			Attempts:   attempt + 1,
			LastReason: Accepted,
			SynthTime:  total - foldTime,
			FoldTime:   foldTime,
			Total:      total,
		}
	}

	err := ErrExhausted.New("symbol %d_%d after %d attempts: %s", t.Symbol.ObjectID, t.Symbol.SymbolID, s.MaxAttempts, lastReason)
	if lastReason == FoldingUnavailable {
		err = ErrFolding.New("symbol %d_%d: service kept failing through %d attempts", t.Symbol.ObjectID, t.Symbol.SymbolID, s.MaxAttempts)
	}

	total := time.Since(start)
	return Result{
		Symbol:     t.Symbol,
		ProbeID:    t.Probe.ID,
		Attempts:   s.MaxAttempts,
		LastReason: lastReason,
		Err:        err,
		SynthTime:  total - foldTime,
		FoldTime:   foldTime,
		Total:      total,
	}
}
