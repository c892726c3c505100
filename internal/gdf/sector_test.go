package gdf

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"example.com/fzgate/internal/zebra"
)

func sectorWords(words ...uint32) []byte {
	out := make([]byte, len(words)*4)
	for i, w := range words {
		binary.BigEndian.PutUint32(out[i*4:], w)
	}
	return out
}

func TestU32Sector(t *testing.T) {
	data := sectorWords(3<<4, 10, 20, 30)
	c := NewCursor(data, 4, 0)
	got, err := c.U32Sector(3)
	if err != nil {
		t.Fatalf("U32Sector: %v", err)
	}
	if len(got) != 3 || got[0] != 10 || got[2] != 30 {
		t.Fatalf("unexpected values: %v", got)
	}
	if c.Pos() != 4 {
		t.Fatalf("Pos = %d, want 4", c.Pos())
	}
}

func TestU16SectorUnswapsPairs(t *testing.T) {
	// Halfwords are stored low-first within each big-endian word.
	data := sectorWords(2<<4, 200<<16|100, 400<<16|300)
	c := NewCursor(data, 3, 0)
	got, err := c.U16Sector(4)
	if err != nil {
		t.Fatalf("U16Sector: %v", err)
	}
	want := []uint16{100, 200, 300, 400}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("value %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestU16SectorOddCountTrimmed(t *testing.T) {
	data := sectorWords(2<<4, 2<<16|1, 3)
	c := NewCursor(data, 3, 0)
	got, err := c.U16Sector(3)
	if err != nil {
		t.Fatalf("U16Sector: %v", err)
	}
	if len(got) != 3 || got[2] != 3 {
		t.Fatalf("unexpected values: %v", got)
	}
}

func TestSectorSizeMismatch(t *testing.T) {
	data := sectorWords(5<<4, 0, 0, 0, 0, 0)
	c := NewCursor(data, 6, 7)
	_, err := c.U32Sector(3)
	var de *zebra.DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if de.PHStart != 7 {
		t.Fatalf("PHStart = %d, want 7", de.PHStart)
	}
}

func TestSectorBeyondDeclaredWords(t *testing.T) {
	// The buffer is long enough but NDW says the bank ends sooner.
	data := sectorWords(3<<4, 1, 2, 3)
	c := NewCursor(data, 2, 0)
	_, err := c.U32Sector(3)
	var de *zebra.DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}

func TestF64SectorAndF64At(t *testing.T) {
	bits := math.Float64bits(51544.25)
	data := sectorWords(2<<4, uint32(bits>>32), uint32(bits))
	c := NewCursor(data, 3, 0)

	v, err := c.F64At(1)
	if err != nil {
		t.Fatalf("F64At: %v", err)
	}
	if v != 51544.25 {
		t.Fatalf("F64At = %v", v)
	}

	got, err := c.F64Sector(1)
	if err != nil {
		t.Fatalf("F64Sector: %v", err)
	}
	if len(got) != 1 || got[0] != 51544.25 {
		t.Fatalf("F64Sector = %v", got)
	}
}

func TestByteSectorReturnsPaddedWords(t *testing.T) {
	data := sectorWords(2<<4, 0x41424344, 0x45000000)
	c := NewCursor(data, 3, 0)
	got, err := c.ByteSector(5)
	if err != nil {
		t.Fatalf("ByteSector: %v", err)
	}
	if len(got) != 8 {
		t.Fatalf("len = %d, want the padded 8 bytes", len(got))
	}
	if printableString(got) != "ABCDE" {
		t.Fatalf("unexpected text %q", printableString(got))
	}
}

func TestPeekU16DoesNotAdvance(t *testing.T) {
	data := sectorWords(2<<16|1, 4<<16|3)
	c := NewCursor(data, 2, 0)
	got, err := c.PeekU16(3)
	if err != nil {
		t.Fatalf("PeekU16: %v", err)
	}
	if got[0] != 1 || got[2] != 3 {
		t.Fatalf("unexpected values: %v", got)
	}
	if c.Pos() != 0 {
		t.Fatalf("PeekU16 moved the cursor to %d", c.Pos())
	}
}
