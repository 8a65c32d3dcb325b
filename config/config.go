// Package config is for app wide settings that are unmarshalled
// from Viper (see: /cmd)
package config

import (
	"log"
	"runtime"

	"github.com/spf13/viper"
)

// LSHConfig holds the parameters of one similarity index.
type LSHConfig struct {
	// the k-mer (shingle) length
	K int `mapstructure:"k"`

	// the number of min-hash functions
	R int `mapstructure:"r"`

	// the number of bands the hashes are partitioned into (R must be a multiple of B)
	B int `mapstructure:"b"`
}

// FoldingConfig is for settings involving the secondary-structure server.
type FoldingConfig struct {
	// whether to screen candidates against the folding server at all
	Enabled bool `mapstructure:"use-dg-server"`

	// host of the folding server
	Host string `mapstructure:"dg-host"`

	// first port of the folding server, one port per hardware thread
	BasePort int `mapstructure:"dg-base-port"`

	// temperature (celsius) sent with each folding query
	Temp float64 `mapstructure:"dg-temp"`

	// the maximum folding error, computed from the free energy, before a candidate is rejected
	MaxError float64 `mapstructure:"dg-max-error"`

	// times a failed folding request is retried before the attempt is failed
	Retries int `mapstructure:"dg-retries"`
}

// Config is the root-level settings struct and is a mix of settings
// available in settings.yaml and those available from the command line.
type Config struct {
	// path to the input data objects
	In string `mapstructure:"in"`

	// path to the probe FASTA file
	Probes string `mapstructure:"probes"`

	// path the accepted fragments are written to (FASTA)
	Out string `mapstructure:"out"`

	// read input as newline-delimited records, otherwise as u32 big-endian length-prefixed records
	ReadAsLines bool `mapstructure:"read-as-lines"`

	// one of "lsh", "mixed", "naive"
	Mode string `mapstructure:"mode"`

	// distance metric, "edit" or "hamming"
	Metric string `mapstructure:"metric"`

	// redundancy fraction added beyond the minimum symbols needed to reconstruct
	Overhead float64 `mapstructure:"overhead"`

	// bytes of payload per erasure-coded symbol
	SymbolSize int `mapstructure:"symbol-size"`

	// the maximum run of a single nucleotide in an accepted fragment
	MaxHomopolymer int `mapstructure:"max-hp-len"`

	// whether the GC-content window is enforced
	CheckGC bool `mapstructure:"check-gc"`

	// GC-content window
	MinGC float64 `mapstructure:"min-gc"`
	MaxGC float64 `mapstructure:"max-gc"`

	// minimum distance between an accepted fragment and every probe
	MinDistToProbes int `mapstructure:"min-dist-to-probes"`

	// minimum distance between any two accepted fragments
	MinDistToSeqs int `mapstructure:"min-dist-to-seqs"`

	// whether a fragment's own assigned probe is excluded from the probe-separation check
	ExcludeOwnProbe bool `mapstructure:"exclude-own-probe"`

	// similarity index over the probe pool
	ProbesLSH LSHConfig `mapstructure:"lsh-probes"`

	// similarity index over the accepted fragments
	SeqsLSH LSHConfig `mapstructure:"lsh-seqs"`

	// folding server settings
	Folding FoldingConfig `mapstructure:",squash"`

	// synthesis attempts per symbol before it is reported as exhausted
	MaxAttempts int `mapstructure:"max-attempts"`

	// size of the generation worker pool
	Workers int `mapstructure:"workers"`

	// seed for the min-hash permutations, fixed for reproducible runs
	Seed int64 `mapstructure:"seed"`

	// timing report settings
	Report       bool   `mapstructure:"report"`
	ReportPath   string `mapstructure:"report-path"`
	AppendReport bool   `mapstructure:"append-to-report"`

	// echo the parameters and wait for confirmation before encoding
	Approve bool `mapstructure:"approve"`
}

// New returns a new Config struct populated by Viper settings
// (either from the local settings.yaml) and/or command line arguments.
func New() *Config {
	c := &Config{}

	if err := viper.Unmarshal(c); err != nil {
		log.Fatalf("unable to decode settings into struct: %v", err)
	}

	if c.Workers < 1 {
		c.Workers = runtime.NumCPU()
	}

	return c
}

// SetDefaults seeds viper with the default encoding parameters.
func SetDefaults() {
	viper.SetDefault("in", "lines.txt")
	viper.SetDefault("probes", "probes.fa")
	viper.SetDefault("out", "info-dna.fa")
	viper.SetDefault("read-as-lines", true)
	viper.SetDefault("mode", "lsh")
	viper.SetDefault("metric", "edit")
	viper.SetDefault("overhead", 0.0)
	viper.SetDefault("symbol-size", 6)
	viper.SetDefault("max-hp-len", 5)
	viper.SetDefault("check-gc", false)
	viper.SetDefault("min-gc", 0.4)
	viper.SetDefault("max-gc", 0.6)
	viper.SetDefault("min-dist-to-probes", 5)
	viper.SetDefault("min-dist-to-seqs", 5)
	viper.SetDefault("exclude-own-probe", false)
	viper.SetDefault("lsh-probes.k", 4)
	viper.SetDefault("lsh-probes.r", 200)
	viper.SetDefault("lsh-probes.b", 20)
	viper.SetDefault("lsh-seqs.k", 5)
	viper.SetDefault("lsh-seqs.r", 200)
	viper.SetDefault("lsh-seqs.b", 20)
	viper.SetDefault("use-dg-server", false)
	viper.SetDefault("dg-host", "127.0.0.1")
	viper.SetDefault("dg-base-port", 6000)
	viper.SetDefault("dg-temp", 25.0)
	viper.SetDefault("dg-max-error", 0.5)
	viper.SetDefault("dg-retries", 2)
	viper.SetDefault("max-attempts", 200)
	viper.SetDefault("workers", 0)
	viper.SetDefault("seed", 42)
	viper.SetDefault("report", true)
	viper.SetDefault("report-path", "fraggen_report.csv")
	viper.SetDefault("append-to-report", true)
	viper.SetDefault("approve", false)
}
