package gdf

import (
	"encoding/binary"
	"math"

	"example.com/fzgate/internal/zebra"
)

// Cursor walks a flat word buffer of GDF data. Sectors are length-prefixed:
// the header word shifted right by four bits gives the sector size in words,
// which must agree with the declared item count. 16-bit sectors are stored
// pairwise byte-swapped at the word level and are corrected on extraction.
type Cursor struct {
	data    []byte
	ndw     int // addressable words
	pos     int // current word
	phStart int64
}

// NewCursor wraps data, limiting access to ndw words. phStart is carried
// into every error for diagnostics.
func NewCursor(data []byte, ndw int, phStart int64) *Cursor {
	if max := len(data) / 4; ndw > max {
		ndw = max
	}
	return &Cursor{data: data, ndw: ndw, phStart: phStart}
}

// Pos reports the current word position.
func (c *Cursor) Pos() int { return c.pos }

// Advance moves the cursor forward n words without decoding.
func (c *Cursor) Advance(n int) error {
	if c.pos+n > c.ndw {
		return zebra.Decodef(c.phStart, "bank data does not have %d more words: %d+%d > %d",
			n, c.pos, n, c.ndw)
	}
	c.pos += n
	return nil
}

// Seq extracts n unstructured words, as used by the user-data sequences and
// the bank header.
func (c *Cursor) Seq(n int, name string) ([]uint32, error) {
	if c.pos+n > c.ndw {
		return nil, zebra.Decodef(c.phStart,
			"user data does not have full %s sequence: %d+%d > %d", name, c.pos, n, c.ndw)
	}
	out := make([]uint32, n)
	for i := 0; i < n; i++ {
		out[i] = binary.BigEndian.Uint32(c.data[(c.pos+i)*4 : (c.pos+i+1)*4])
	}
	c.pos += n
	return out, nil
}

// sector validates the framing of the next sector against the declared item
// count and size, consumes the header word and returns the sector word count.
func (c *Cursor) sector(items, size int) (int, error) {
	if c.pos+1 > c.ndw {
		return 0, zebra.Decodef(c.phStart, "bank data does not have sector header: %d+1 > %d", c.pos, c.ndw)
	}
	hdr := binary.BigEndian.Uint32(c.data[c.pos*4 : c.pos*4+4])
	c.pos++
	nw := int(hdr >> 4)
	if want := (items*size + 3) / 4; nw != want {
		return 0, zebra.Decodef(c.phStart, "bank sector size not as expected: %d != %d", nw, want)
	}
	if c.pos+nw > c.ndw {
		return 0, zebra.Decodef(c.phStart, "bank data does not have full sector: %d+%d > %d", c.pos, nw, c.ndw)
	}
	return nw, nil
}

// SkipSector validates the next sector's framing and steps over it.
func (c *Cursor) SkipSector(items, size int) error {
	nw, err := c.sector(items, size)
	if err != nil {
		return err
	}
	c.pos += nw
	return nil
}

// EnterSector validates the next sector's framing and consumes only the
// header word, leaving the cursor at the first data word. Used by the legacy
// fused layouts that address their contents by raw word offset.
func (c *Cursor) EnterSector(items, size int) error {
	_, err := c.sector(items, size)
	return err
}

// Raw extracts n bytes at the current word position, advancing the cursor
// by whole words.
func (c *Cursor) Raw(n int) ([]byte, error) {
	nw := (n + 3) / 4
	if c.pos+nw > c.ndw {
		return nil, zebra.Decodef(c.phStart, "bank data does not have %d raw bytes", n)
	}
	out := c.data[c.pos*4 : c.pos*4+n]
	c.pos += nw
	return out, nil
}

// U32Sector extracts a sector of 32-bit unsigned values.
func (c *Cursor) U32Sector(items int) ([]uint32, error) {
	nw, err := c.sector(items, 4)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, nw)
	for i := 0; i < nw; i++ {
		out[i] = binary.BigEndian.Uint32(c.data[(c.pos+i)*4 : (c.pos+i+1)*4])
	}
	c.pos += nw
	return out, nil
}

// U16Sector extracts a sector of 16-bit values, undoing the pairwise swap
// within each word.
func (c *Cursor) U16Sector(items int) ([]uint16, error) {
	nw, err := c.sector(items, 2)
	if err != nil {
		return nil, err
	}
	out := c.rawU16(c.pos, nw)
	c.pos += nw
	if len(out) > items {
		out = out[:items]
	}
	return out, nil
}

// PeekU16 reads count 16-bit values at the current position without framing
// and without advancing, for the few legacy layouts that address values by
// raw word offset.
func (c *Cursor) PeekU16(count int) ([]uint16, error) {
	nw := (count + 1) / 2
	if c.pos+nw > c.ndw {
		return nil, zebra.Decodef(c.phStart, "bank data does not have %d raw halfwords", count)
	}
	out := c.rawU16(c.pos, nw)
	return out[:count], nil
}

func (c *Cursor) rawU16(wordPos, nw int) []uint16 {
	out := make([]uint16, 0, nw*2)
	for i := 0; i < nw; i++ {
		w := binary.BigEndian.Uint32(c.data[(wordPos+i)*4 : (wordPos+i+1)*4])
		out = append(out, uint16(w&0xFFFF), uint16(w>>16))
	}
	return out
}

// F32Sector extracts a sector of 32-bit floats.
func (c *Cursor) F32Sector(items int) ([]float32, error) {
	nw, err := c.sector(items, 4)
	if err != nil {
		return nil, err
	}
	out := make([]float32, nw)
	for i := 0; i < nw; i++ {
		out[i] = math.Float32frombits(binary.BigEndian.Uint32(c.data[(c.pos+i)*4 : (c.pos+i+1)*4]))
	}
	c.pos += nw
	return out, nil
}

// F64Sector extracts a sector of 64-bit floats.
func (c *Cursor) F64Sector(items int) ([]float64, error) {
	nw, err := c.sector(items, 8)
	if err != nil {
		return nil, err
	}
	out := make([]float64, nw/2)
	for i := range out {
		out[i] = math.Float64frombits(binary.BigEndian.Uint64(c.data[(c.pos+i*2)*4 : (c.pos+i*2+2)*4]))
	}
	c.pos += nw
	return out, nil
}

// ByteSector extracts a byte-string sector. The returned slice covers the
// whole padded sector, as the historical writer rounded strings up to word
// boundaries.
func (c *Cursor) ByteSector(items int) ([]byte, error) {
	nw, err := c.sector(items, 1)
	if err != nil {
		return nil, err
	}
	out := c.data[c.pos*4 : (c.pos+nw)*4]
	c.pos += nw
	return out, nil
}

// F64At reads one 64-bit float at an absolute word offset without moving the
// cursor.
func (c *Cursor) F64At(word int) (float64, error) {
	if word+2 > c.ndw {
		return 0, zebra.Decodef(c.phStart, "bank data does not have doubleword at %d", word)
	}
	return math.Float64frombits(binary.BigEndian.Uint64(c.data[word*4 : (word+2)*4])), nil
}
