package fraggen

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/dnadrive/fraggen/config"
)

// Encode is the write path of the store: it reads the data objects and
// the probe pool, erasure-codes every object into symbols, generates one
// constrained fragment per symbol, and writes the accepted fragments and
// the timing report.
func Encode(c *config.Config) error {
	mode, err := ParseMode(c.Mode)
	if err != nil {
		return ErrInput.Wrap(err)
	}
	metric, err := ParseMetric(c.Metric)
	if err != nil {
		return ErrInput.Wrap(err)
	}

	objects, err := ReadObjects(c.In, c.ReadAsLines)
	if err != nil {
		return err
	}
	stderr.Printf("objects imported       = %d", len(objects))
	if len(objects) == 0 {
		return ErrInput.New("no data objects found in %s", c.In)
	}

	probes, err := ReadProbes(c.Probes)
	if err != nil {
		return err
	}
	stderr.Printf("probes imported        = %d", len(probes))

	assignment, err := AssignProbes(len(objects), probes)
	if err != nil {
		return err
	}

	rnd := rand.New(rand.NewSource(c.Seed))

	// the probe index is static after this; the original pool stays the
	// exact fallback for naive mode
	var probeIndex *Index
	if mode != ModeNaive {
		if probeIndex, err = NewIndex(c.ProbesLSH.K, c.ProbesLSH.R, c.ProbesLSH.B, rnd); err != nil {
			return ErrProbePool.Wrap(err)
		}
		buildStart := time.Now()
		insertProbes(probeIndex, probes, c.Workers)
		stderr.Printf("built probe LSH in %s", time.Since(buildStart).Round(time.Millisecond))
	}

	var seqIndex *Index
	if mode == ModeLSH {
		if seqIndex, err = NewIndex(c.SeqsLSH.K, c.SeqsLSH.R, c.SeqsLSH.B, rnd); err != nil {
			return ErrInput.Wrap(err)
		}
	}

	var folder EnergySource
	if c.Folding.Enabled {
		client, err := DialFold(c.Folding.Host, c.Folding.BasePort, c.Workers, c.Folding.Temp)
		if err != nil {
			return err
		}
		defer client.Close()
		folder = client
	}

	codec := NewCodec(c.SymbolSize, c.Overhead)
	var tasks []Task
	for _, obj := range objects {
		symbols, err := codec.Encode(obj)
		if err != nil {
			return err
		}

		probe := assignment.ProbeFor(obj.ID)
		for _, sym := range symbols {
			tasks = append(tasks, Task{Symbol: sym, Probe: probe})
		}
	}
	stderr.Printf("symbols to generate    = %d", len(tasks))

	validator := &Validator{
		Mode:            mode,
		Metric:          metric,
		MaxHomopolymer:  c.MaxHomopolymer,
		CheckGC:         c.CheckGC,
		MinGC:           c.MinGC,
		MaxGC:           c.MaxGC,
		MinDistToProbes: c.MinDistToProbes,
		MinDistToSeqs:   c.MinDistToSeqs,
		Probes:          probes,
		ProbeIndex:      probeIndex,
		ExcludeOwnProbe: c.ExcludeOwnProbe,
		Folder:          folder,
		MaxFoldError:    c.Folding.MaxError,
		FoldRetries:     c.Folding.Retries,
	}

	store := NewSequenceStore(metric, c.MinDistToSeqs, seqIndex)
	scheduler := &Scheduler{
		Workers:     c.Workers,
		MaxAttempts: c.MaxAttempts,
		Validator:   validator,
		Store:       store,
	}

	var reporter *Reporter
	if c.Report {
		reporter, err = NewReporter(c.ReportPath, c.AppendReport, len(tasks), ReportParams{
			Overhead:        c.Overhead,
			MaxHomopolymer:  c.MaxHomopolymer,
			MinDistToProbes: c.MinDistToProbes,
			MinDistToSeqs:   c.MinDistToSeqs,
			Mode:            mode,
			UseFolding:      c.Folding.Enabled,
		})
		if err != nil {
			return err
		}
		defer reporter.Close()
	}

	start := time.Now()
	results := scheduler.Run(tasks)

	exhausted := 0
	unavailable := 0
	for _, res := range results {
		if res.Err != nil {
			if res.LastReason == FoldingUnavailable {
				unavailable++
			} else {
				exhausted++
			}
			stderr.Printf("%v", res.Err)
		}

		if reporter != nil {
			if err := reporter.Row(res); err != nil {
				return fmt.Errorf("failed to write report row: %v", err)
			}
		}
	}

	if err := WriteFasta(c.Out, store.Accepted()); err != nil {
		return err
	}

	stderr.Printf("accepted fragments     = %d / %d", store.Len(), len(tasks))
	if exhausted > 0 {
		stderr.Printf("exhausted symbols      = %d (objects may not be reconstructable)", exhausted)
	}
	if unavailable > 0 {
		stderr.Printf("folding failures       = %d", unavailable)
	}
	stderr.Printf("finished encoding in %s", time.Since(start).Round(time.Millisecond))

	return nil
}

// insertProbes registers the pool in the index across a temporary worker
// pool; the index locks per band.
func insertProbes(index *Index, probes []Probe, workers int) {
	probeCh := make(chan Probe)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range probeCh {
				index.Insert(Member{ID: p.ID, Seq: p.Seq})
			}
		}()
	}

	for _, p := range probes {
		probeCh <- p
	}
	close(probeCh)
	wg.Wait()
}
