package cmd

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dnadrive/fraggen/config"
	"github.com/dnadrive/fraggen/internal/fraggen"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// encodeCmd erasure-codes the input objects and generates one constrained
// nucleotide fragment per symbol.
var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Encode data objects into probe-addressable DNA fragments",
	Long: `Encode data objects into probe-addressable DNA fragments

Each object is split by a fountain-style erasure code into symbols; each
symbol is synthesized into a nucleotide string that is retried until it
satisfies every constraint: a maximum homopolymer run, a minimum distance
to every addressing probe, a minimum distance to every fragment accepted
earlier in the run, and (optionally) a secondary-structure screen against
a folding server. The "lsh" and "mixed" modes accelerate the distance
constraints with min-hash similarity indices; "naive" checks them by
exhaustive comparison.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := config.New()

		printParameters(c)
		if c.Approve && !approved() {
			fmt.Println("-> parameters were not approved -> aborting")
			return nil
		}

		return fraggen.Encode(c)
	},
}

func init() {
	RootCmd.AddCommand(encodeCmd)

	f := encodeCmd.Flags()
	f.StringP("in", "i", "lines.txt", "path to the input data objects")
	f.StringP("probes", "p", "probes.fa", "path to the probe pool (FASTA)")
	f.StringP("out", "o", "info-dna.fa", "path to write the accepted fragments to (FASTA)")
	f.Bool("read-as-lines", true, "read one object per line; otherwise u32 big-endian length-prefixed records")
	f.StringP("mode", "m", "lsh", "encoding mode: lsh, mixed or naive")
	f.String("metric", "edit", "distance metric: edit or hamming")
	f.Float64("overhead", 0.0, "redundancy fraction beyond the minimum symbol count")
	f.Int("symbol-size", 6, "payload bytes per erasure-coded symbol")
	f.Int("max-hp-len", 5, "maximum homopolymer run in an accepted fragment")
	f.Bool("check-gc", false, "enforce the GC-content window")
	f.Float64("min-gc", 0.4, "lower GC-content bound")
	f.Float64("max-gc", 0.6, "upper GC-content bound")
	f.Int("min-dist-to-probes", 5, "minimum distance between a fragment and every probe")
	f.Int("min-dist-to-seqs", 5, "minimum distance between any two accepted fragments")
	f.Bool("exclude-own-probe", false, "exempt a fragment's own probe from the probe-separation check")
	f.Int("lsh-k-probes", 4, "shingle length of the probe index")
	f.Int("lsh-r-probes", 200, "min-hash count of the probe index")
	f.Int("lsh-b-probes", 20, "band count of the probe index")
	f.Int("lsh-k-seqs", 5, "shingle length of the fragment index")
	f.Int("lsh-r-seqs", 200, "min-hash count of the fragment index")
	f.Int("lsh-b-seqs", 20, "band count of the fragment index")
	f.Bool("use-dg-server", false, "screen candidates against the folding server")
	f.String("dg-host", "127.0.0.1", "folding server host")
	f.Int("dg-base-port", 6000, "first folding server port, one per worker")
	f.Float64("dg-temp", 25.0, "temperature (celsius) for folding queries")
	f.Float64("dg-max-error", 0.5, "maximum folding error before rejection")
	f.Int("dg-retries", 2, "retries per failed folding request")
	f.Int("max-attempts", 200, "synthesis attempts per symbol before it is exhausted")
	f.Int("workers", 0, "worker pool size (0 = hardware threads)")
	f.Int64("seed", 42, "seed for the min-hash permutations")
	f.Bool("report", true, "write the timing report")
	f.String("report-path", "fraggen_report.csv", "path of the timing report (CSV)")
	f.Bool("append-to-report", true, "append to an existing report instead of truncating")
	f.Bool("approve", false, "echo the parameters and wait for confirmation")

	// bind the parameters to viper
	viper.BindPFlag("in", f.Lookup("in"))
	viper.BindPFlag("probes", f.Lookup("probes"))
	viper.BindPFlag("out", f.Lookup("out"))
	viper.BindPFlag("read-as-lines", f.Lookup("read-as-lines"))
	viper.BindPFlag("mode", f.Lookup("mode"))
	viper.BindPFlag("metric", f.Lookup("metric"))
	viper.BindPFlag("overhead", f.Lookup("overhead"))
	viper.BindPFlag("symbol-size", f.Lookup("symbol-size"))
	viper.BindPFlag("max-hp-len", f.Lookup("max-hp-len"))
	viper.BindPFlag("check-gc", f.Lookup("check-gc"))
	viper.BindPFlag("min-gc", f.Lookup("min-gc"))
	viper.BindPFlag("max-gc", f.Lookup("max-gc"))
	viper.BindPFlag("min-dist-to-probes", f.Lookup("min-dist-to-probes"))
	viper.BindPFlag("min-dist-to-seqs", f.Lookup("min-dist-to-seqs"))
	viper.BindPFlag("exclude-own-probe", f.Lookup("exclude-own-probe"))
	viper.BindPFlag("lsh-probes.k", f.Lookup("lsh-k-probes"))
	viper.BindPFlag("lsh-probes.r", f.Lookup("lsh-r-probes"))
	viper.BindPFlag("lsh-probes.b", f.Lookup("lsh-b-probes"))
	viper.BindPFlag("lsh-seqs.k", f.Lookup("lsh-k-seqs"))
	viper.BindPFlag("lsh-seqs.r", f.Lookup("lsh-r-seqs"))
	viper.BindPFlag("lsh-seqs.b", f.Lookup("lsh-b-seqs"))
	viper.BindPFlag("use-dg-server", f.Lookup("use-dg-server"))
	viper.BindPFlag("dg-host", f.Lookup("dg-host"))
	viper.BindPFlag("dg-base-port", f.Lookup("dg-base-port"))
	viper.BindPFlag("dg-temp", f.Lookup("dg-temp"))
	viper.BindPFlag("dg-max-error", f.Lookup("dg-max-error"))
	viper.BindPFlag("dg-retries", f.Lookup("dg-retries"))
	viper.BindPFlag("max-attempts", f.Lookup("max-attempts"))
	viper.BindPFlag("workers", f.Lookup("workers"))
	viper.BindPFlag("seed", f.Lookup("seed"))
	viper.BindPFlag("report", f.Lookup("report"))
	viper.BindPFlag("report-path", f.Lookup("report-path"))
	viper.BindPFlag("append-to-report", f.Lookup("append-to-report"))
	viper.BindPFlag("approve", f.Lookup("approve"))

	config.SetDefaults()
}

// printParameters echoes the run parameters before encoding starts.
func printParameters(c *config.Config) {
	fmt.Println("++++++++++++++++++++++++++++++++")
	fmt.Println("-> Using following parameters <-")
	fmt.Println("++++++++++++++++++++++++++++++++")
	fmt.Printf("in                     = %s\n", c.In)
	fmt.Printf("probes                 = %s\n", c.Probes)
	if _, err := os.Stat(c.Out); err == nil {
		fmt.Printf("out                    = %s [file will be overridden]\n", c.Out)
	} else {
		fmt.Printf("out                    = %s\n", c.Out)
	}
	fmt.Printf("read-as-lines          = %v\n", c.ReadAsLines)
	fmt.Printf("mode                   = %s\n", c.Mode)
	fmt.Printf("metric                 = %s\n", c.Metric)
	fmt.Printf("overhead               = %v\n", c.Overhead)
	fmt.Printf("symbol-size            = %d\n", c.SymbolSize)
	fmt.Printf("max-hp-len             = %d\n", c.MaxHomopolymer)
	fmt.Printf("min-dist-to-probes     = %d\n", c.MinDistToProbes)
	fmt.Printf("min-dist-to-seqs       = %d\n", c.MinDistToSeqs)
	fmt.Printf("exclude-own-probe      = %v\n", c.ExcludeOwnProbe)
	fmt.Printf("use-dg-server          = %v\n", c.Folding.Enabled)
	fmt.Printf("max-attempts           = %d\n", c.MaxAttempts)
	fmt.Printf("workers                = %d\n", c.Workers)

	switch c.Mode {
	case "lsh":
		fmt.Printf("lsh-probes (k/r/b)     = %d/%d/%d\n", c.ProbesLSH.K, c.ProbesLSH.R, c.ProbesLSH.B)
		fmt.Printf("lsh-seqs (k/r/b)       = %d/%d/%d\n", c.SeqsLSH.K, c.SeqsLSH.R, c.SeqsLSH.B)
	case "mixed":
		fmt.Printf("lsh-probes (k/r/b)     = %d/%d/%d\n", c.ProbesLSH.K, c.ProbesLSH.R, c.ProbesLSH.B)
		fmt.Printf("lsh-seqs (k/r/b)       = %d/%d/%d [ignored]\n", c.SeqsLSH.K, c.SeqsLSH.R, c.SeqsLSH.B)
	default:
		fmt.Printf("lsh-probes (k/r/b)     = %d/%d/%d [ignored]\n", c.ProbesLSH.K, c.ProbesLSH.R, c.ProbesLSH.B)
		fmt.Printf("lsh-seqs (k/r/b)       = %d/%d/%d [ignored]\n", c.SeqsLSH.K, c.SeqsLSH.R, c.SeqsLSH.B)
	}

	if c.Report {
		fmt.Printf("report-path            = %s\n", c.ReportPath)
		fmt.Printf("append-to-report       = %v\n", c.AppendReport)
	} else {
		fmt.Printf("report-path            = %s [ignored]\n", c.ReportPath)
	}
}

// approved reads a confirmation from stdin.
func approved() bool {
	fmt.Print("\nAre these parameters correct? [y/n]\n")

	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		log.Fatalf("failed to read confirmation: %v", err)
	}

	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes" || answer == "1" || answer == "true"
}
