package fraggen

import (
	"encoding/binary"
	"math"

	"github.com/vivint/infectious"
)

// Symbol is one erasure-coded unit of a data object. Symbols are
// independent generation units: any Required() of an object's symbols
// reconstruct the object.
type Symbol struct {
	ObjectID int
	SymbolID int
	Payload  []byte
	IsRepair bool
}

// Codec wraps the Reed-Solomon forward error correction behind the
// symbol contract. The object bytes are length-framed, padded to a whole
// number of shares of SymbolSize bytes, and split into k source shares
// plus ceil(overhead*k) repair shares.
type Codec struct {
	// SymbolSize is the payload bytes per symbol
	SymbolSize int

	// Overhead is the redundancy fraction added beyond the minimum
	Overhead float64
}

// lenFrame is the bytes of big-endian length header prepended to the
// object before padding, so Decode can strip the pad again.
const lenFrame = 4

// NewCodec returns a codec producing symbols of size bytes each.
func NewCodec(size int, overhead float64) *Codec {
	return &Codec{SymbolSize: size, Overhead: overhead}
}

// plan returns the source (k) and total (n) share counts for an object
// of rawLen bytes.
func (c *Codec) plan(rawLen int) (k, n int) {
	framed := rawLen + lenFrame
	k = framed / c.SymbolSize
	if framed%c.SymbolSize != 0 {
		k++
	}
	if k < 1 {
		k = 1
	}

	repair := 0
	if c.Overhead > 0 {
		repair = int(math.Ceil(float64(k) * c.Overhead))
	}

	return k, k + repair
}

// maxShares is the Reed-Solomon total share ceiling.
const maxShares = 256

// Encode erasure-codes one data object into its symbol set.
func (c *Codec) Encode(obj DataObject) ([]Symbol, error) {
	k, n := c.plan(len(obj.Raw))
	if n > maxShares {
		return nil, ErrCodec.New("object %d needs %d shares, above the %d share ceiling: increase symbol-size", obj.ID, n, maxShares)
	}

	framed := make([]byte, lenFrame+len(obj.Raw), k*c.SymbolSize)
	binary.BigEndian.PutUint32(framed, uint32(len(obj.Raw)))
	copy(framed[lenFrame:], obj.Raw)
	framed = framed[:k*c.SymbolSize]

	fec, err := infectious.NewFEC(k, n)
	if err != nil {
		return nil, ErrCodec.Wrap(err)
	}

	symbols := make([]Symbol, 0, n)
	err = fec.Encode(framed, func(s infectious.Share) {
		symbols = append(symbols, Symbol{
			ObjectID: obj.ID,
			SymbolID: s.Number,
			Payload:  append([]byte(nil), s.Data...),
			IsRepair: s.Number >= k,
		})
	})
	if err != nil {
		return nil, ErrCodec.Wrap(err)
	}

	return symbols, nil
}

// Decode reconstructs an object's bytes from any Required-sized subset of
// its symbols. rawLen is the object's original byte count; it determines
// the share layout. Used to verify round trips; the store's write path
// never decodes.
func (c *Codec) Decode(symbols []Symbol, rawLen int) ([]byte, error) {
	k, n := c.plan(rawLen)

	fec, err := infectious.NewFEC(k, n)
	if err != nil {
		return nil, ErrCodec.Wrap(err)
	}

	shares := make([]infectious.Share, 0, len(symbols))
	for _, s := range symbols {
		shares = append(shares, infectious.Share{Number: s.SymbolID, Data: s.Payload})
	}

	framed, err := fec.Decode(nil, shares)
	if err != nil {
		return nil, ErrCodec.Wrap(err)
	}
	if len(framed) < lenFrame {
		return nil, ErrCodec.New("decoded message shorter than its length frame")
	}

	length := int(binary.BigEndian.Uint32(framed))
	if length > len(framed)-lenFrame {
		return nil, ErrCodec.New("decoded length %d exceeds share payload", length)
	}

	return framed[lenFrame : lenFrame+length], nil
}

// Required is the number of an object's symbols that suffice to decode it.
func (c *Codec) Required(rawLen int) int {
	k, _ := c.plan(rawLen)
	return k
}
