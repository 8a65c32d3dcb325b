package fraggen

import (
	"bufio"
	"encoding/binary"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// stderr is for logging to Stderr (without an annoying timestamp)
	stderr = log.New(os.Stderr, "", 0)
)

// DataObject is one unit of binary data to encode. Immutable once ingested.
type DataObject struct {
	ID  int
	Raw []byte
}

// ReadObjects ingests the data objects from path: one per newline when
// asLines is set, otherwise one per u32 big-endian length-prefixed record.
func ReadObjects(path string, asLines bool) ([]DataObject, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ErrInput.New("failed to open %s: %v", path, err)
	}
	defer f.Close()

	return readObjectsFrom(f, asLines)
}

func readObjectsFrom(r io.Reader, asLines bool) ([]DataObject, error) {
	var objects []DataObject

	if asLines {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
		for scanner.Scan() {
			raw := append([]byte(nil), scanner.Bytes()...)
			objects = append(objects, DataObject{ID: len(objects), Raw: raw})
		}
		if err := scanner.Err(); err != nil {
			return nil, ErrInput.New("failed to read records: %v", err)
		}

		return objects, nil
	}

	br := bufio.NewReader(r)
	var size [4]byte
	for {
		if _, err := io.ReadFull(br, size[:]); err != nil {
			if err == io.EOF {
				break
			}
			return nil, ErrInput.New("failed to read record length: %v", err)
		}

		raw := make([]byte, binary.BigEndian.Uint32(size[:]))
		if _, err := io.ReadFull(br, raw); err != nil {
			return nil, ErrInput.New("record %d shorter than its length prefix: %v", len(objects), err)
		}
		objects = append(objects, DataObject{ID: len(objects), Raw: raw})
	}

	return objects, nil
}

// unwantedChars strips anything that isn't a nucleotide from FASTA entries.
var unwantedChars = regexp.MustCompile(`(?im)[^atcg]|\W`)

// ReadProbes reads the probe pool from a FASTA file (by its path on the
// local FS).
func ReadProbes(path string) ([]Probe, error) {
	if !filepath.IsAbs(path) {
		var err error
		if path, err = filepath.Abs(path); err != nil {
			return nil, ErrInput.New("failed to create path to probe file: %v", err)
		}
	}

	dat, err := os.ReadFile(path)
	if err != nil {
		return nil, ErrInput.New("failed to read %s: %v", path, err)
	}

	probes, err := readFasta(path, string(dat))
	if err != nil {
		return nil, err
	}

	return probes, nil
}

// readFasta parses a multi-FASTA string to probes.
func readFasta(path, contents string) (probes []Probe, err error) {
	lines := strings.Split(contents, "\n")

	// find the headers
	var headerIndices []int
	var ids []string
	for i, line := range lines {
		if strings.HasPrefix(line, ">") {
			id := strings.TrimSpace(line[1:])
			if fields := strings.Fields(id); len(fields) > 0 {
				id = fields[0]
			}
			headerIndices = append(headerIndices, i)
			ids = append(ids, id)
		}
	}

	// accumulate the sequences from between the headers
	var seqs []string
	for i, headerIndex := range headerIndices {
		nextLine := len(lines)
		if i < len(headerIndices)-1 {
			nextLine = headerIndices[i+1]
		}
		seqJoined := strings.Join(lines[headerIndex+1:nextLine], "")
		seq := unwantedChars.ReplaceAllString(seqJoined, "")
		seqs = append(seqs, strings.ToUpper(seq))
	}

	for i, id := range ids {
		if seqs[i] == "" {
			continue
		}
		probes = append(probes, Probe{ID: id, Seq: seqs[i]})
	}

	// opened and parsed file but found nothing
	if len(probes) < 1 {
		return nil, ErrInput.New("failed to parse any probes from %s", path)
	}

	return probes, nil
}
