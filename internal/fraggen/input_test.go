package fraggen

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

func Test_readObjectsFrom_lines(t *testing.T) {
	in := "first object\nsecond\n\nlast"
	objects, err := readObjectsFrom(bytes.NewReader([]byte(in)), true)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"first object", "second", "", "last"}
	if len(objects) != len(want) {
		t.Fatalf("got %d objects, want %d", len(objects), len(want))
	}
	for i, w := range want {
		if objects[i].ID != i {
			t.Errorf("object %d has ID %d", i, objects[i].ID)
		}
		if string(objects[i].Raw) != w {
			t.Errorf("object %d = %q, want %q", i, objects[i].Raw, w)
		}
	}
}

func Test_readObjectsFrom_length_prefixed(t *testing.T) {
	var buf bytes.Buffer
	records := [][]byte{
		[]byte("hello"),
		{0x00, 0x01, 0x02},
		{}, // zero-length records are legal
		[]byte("with\nnewline"),
	}
	var size [4]byte
	for _, rec := range records {
		binary.BigEndian.PutUint32(size[:], uint32(len(rec)))
		buf.Write(size[:])
		buf.Write(rec)
	}

	objects, err := readObjectsFrom(&buf, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(objects) != len(records) {
		t.Fatalf("got %d objects, want %d", len(objects), len(records))
	}
	for i, rec := range records {
		if !bytes.Equal(objects[i].Raw, rec) {
			t.Errorf("object %d = %x, want %x", i, objects[i].Raw, rec)
		}
	}
}

func Test_readObjectsFrom_truncated_record(t *testing.T) {
	var buf bytes.Buffer
	var size [4]byte
	binary.BigEndian.PutUint32(size[:], 100)
	buf.Write(size[:])
	buf.WriteString("short")

	if _, err := readObjectsFrom(&buf, false); err == nil {
		t.Error("truncated record accepted")
	}
}

func Test_readFasta(t *testing.T) {
	contents := `>p0 some description
ACGTA
CGTAC

>p1
tt ggcc aa
>empty
>p2
ACGT-NNN-ACGT
`

	probes, err := readFasta("test.fa", contents)
	if err != nil {
		t.Fatal(err)
	}

	want := []Probe{
		{ID: "p0", Seq: "ACGTACGTAC"},
		{ID: "p1", Seq: "TTGGCCAA"},
		{ID: "p2", Seq: "ACGTACGT"},
	}
	if len(probes) != len(want) {
		t.Fatalf("got %d probes, want %d", len(probes), len(want))
	}
	for i, w := range want {
		if probes[i] != w {
			t.Errorf("probe %d = %+v, want %+v", i, probes[i], w)
		}
	}
}

func Test_readFasta_no_probes(t *testing.T) {
	if _, err := readFasta("empty.fa", "just text, no headers"); err == nil {
		t.Error("fasta without entries accepted")
	}
}

func Test_ReadProbes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "probes.fa")
	if err := os.WriteFile(path, []byte(">a\nACGT\n>b\nTTTT\n"), 0644); err != nil {
		t.Fatal(err)
	}

	probes, err := ReadProbes(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(probes) != 2 || probes[0].ID != "a" || probes[1].Seq != "TTTT" {
		t.Errorf("unexpected probes: %+v", probes)
	}
}
