package fraggen

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
)

// reportHeader is written once per report file, when it is new or empty.
var reportHeader = []string{
	"Run Id",
	"Progress(%)",
	"Object Id",
	"Symbol Id",
	"Done Id",
	"Attempts",
	"Status",
	"Synth Time(ms)",
	"Fold Time(ms)",
	"Total Time(ms)",
	"Payload Bytes",
	"Total Bytes",
	"Length",
	"Overhead",
	"Max HP Length",
	"Min. Dist To Probes",
	"Min. Dist To Seqs",
	"Encoding Mode",
	"Use DG Server",
}

// ReportParams are the run parameters repeated on every report row so
// appended runs stay comparable.
type ReportParams struct {
	Overhead        float64
	MaxHomopolymer  int
	MinDistToProbes int
	MinDistToSeqs   int
	Mode            Mode
	UseFolding      bool
}

// Reporter appends one timing/count row per finished symbol to a CSV
// file. Failed symbols appear with their failure status; they are
// reported, never dropped.
type Reporter struct {
	f     *os.File
	w     *csv.Writer
	runID string

	params     ReportParams
	total      int
	done       int
	totalBytes int
}

// NewReporter opens (or creates) the report at path. With appendTo unset
// the file is truncated; either way the header is written only when the
// file is empty.
func NewReporter(path string, appendTo bool, total int, params ReportParams) (*Reporter, error) {
	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if !appendTo {
		flags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	}

	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open report %s: %v", path, err)
	}

	r := &Reporter{
		f:      f,
		w:      csv.NewWriter(f),
		runID:  uuid.NewString(),
		params: params,
		total:  total,
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat report %s: %v", path, err)
	}
	if stat.Size() == 0 {
		if err := r.w.Write(reportHeader); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write report header: %v", err)
		}
	}

	return r, nil
}

// Row records one finished symbol.
func (r *Reporter) Row(res Result) error {
	r.done++
	r.totalBytes += len(res.Symbol.Payload)

	status := "accepted"
	if res.Err != nil {
		status = res.LastReason.String()
	}

	return r.w.Write([]string{
		r.runID,
		strconv.FormatFloat(100*float64(r.done)/float64(r.total), 'f', 2, 64),
		strconv.Itoa(res.Symbol.ObjectID),
		strconv.Itoa(res.Symbol.SymbolID),
		strconv.Itoa(r.done),
		strconv.Itoa(res.Attempts),
		status,
		strconv.FormatInt(res.SynthTime.Milliseconds(), 10),
		strconv.FormatInt(res.FoldTime.Milliseconds(), 10),
		strconv.FormatInt(res.Total.Milliseconds(), 10),
		strconv.Itoa(len(res.Symbol.Payload)),
		strconv.Itoa(r.totalBytes),
		strconv.Itoa(len(res.Seq)),
		strconv.FormatFloat(r.params.Overhead, 'f', -1, 64),
		strconv.Itoa(r.params.MaxHomopolymer),
		strconv.Itoa(r.params.MinDistToProbes),
		strconv.Itoa(r.params.MinDistToSeqs),
		r.params.Mode.String(),
		strconv.FormatBool(r.params.UseFolding),
	})
}

// Close flushes and closes the report file.
func (r *Reporter) Close() error {
	r.w.Flush()
	if err := r.w.Error(); err != nil {
		r.f.Close()
		return fmt.Errorf("failed to flush report: %v", err)
	}

	return r.f.Close()
}
