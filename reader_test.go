package fzgate

import (
	"bytes"
	"compress/gzip"
	"errors"
	"io"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"example.com/fzgate/internal/gdf"
	"example.com/fzgate/internal/zebra"
)

func wordsToBytes(words []uint32) []byte {
	out := make([]byte, len(words)*4)
	for i, w := range words {
		out[i*4] = byte(w >> 24)
		out[i*4+1] = byte(w >> 16)
		out[i*4+2] = byte(w >> 8)
		out[i*4+3] = byte(w)
	}
	return out
}

func f64Words(v float64) []uint32 {
	bits := math.Float64bits(v)
	return []uint32{uint32(bits >> 32), uint32(bits)}
}

// textWords packs s padded with spaces to n bytes into big-endian words.
func textWords(s string, n int) []uint32 {
	padded := make([]byte, (n+3)/4*4)
	for i := range padded {
		padded[i] = ' '
	}
	copy(padded, s)
	out := make([]uint32, len(padded)/4)
	for i := range out {
		out[i] = uint32(padded[i*4])<<24 | uint32(padded[i*4+1])<<16 |
			uint32(padded[i*4+2])<<8 | uint32(padded[i*4+3])
	}
	return out
}

// runPayloadWords is a complete version-80 run-header bank payload for run
// 1234, sky quality A, timestamped 2000-01-01.
func runPayloadWords() []uint32 {
	var w []uint32
	w = append(w, 80, 0, 0, 0)
	w = append(w, f64Words(51544.0)...)
	w = append(w, 2<<4, 0, 0)
	w = append(w, 13<<4, 0, 0, 0, 1234, 0, 1, 3, 0, 0, 0, 0, 0, 8)
	w = append(w, 7<<4, math.Float32bits(28), 0, 0, 0, 0, 0, 0)
	w = append(w, 4<<4)
	w = append(w, f64Words(51543.9)...)
	w = append(w, f64Words(51544.2)...)
	w = append(w, 40<<4)
	w = append(w, textWords("run_file.fz", 80)...)
	w = append(w, textWords("SJF, ADT", 80)...)
	w = append(w, 2<<4)
	w = append(w, textWords("good sky", 8)...)
	return w
}

// runBankLogical wraps the payload in the user-data structure and a
// bank-start logical record carrying the given run number in its user header.
func runBankLogical(runNo uint32) []uint32 {
	payload := runPayloadWords()
	ndw := uint32(len(payload))

	var udw []uint32
	udw = append(udw, 2)        // UHIOCW, one descriptor word
	udw = append(udw, 1, runNo) // user header: record and run number
	udw = append(udw, 2, 0)     // IOCBH and IOCBD
	udw = append(udw, 0, 0, 0, 1, 0x52555552, 0, 0, ndw, 0)
	udw = append(udw, payload...)

	nwbk := uint32(len(udw)) - 3 // bank-structure words after the UHIO region
	ldata := []uint32{0x4640E400, 0, 0, 0, 0, 0, 0, nwbk, 0, 3}
	ldata = append(ldata, udw...)
	return append([]uint32{uint32(len(ldata)), 2}, ldata...)
}

func encodeFrame(t *testing.T, flags uint32, payload []uint32, nwphr uint32) []byte {
	t.Helper()
	want := int(nwphr) - 8
	if len(payload) > want {
		t.Fatalf("payload %d words does not fit frame of %d", len(payload), nwphr)
	}
	words := []uint32{0x0123CDEF, 0x80708070, 0x4321ABCD, 0x80618061}
	words = append(words, flags<<24|nwphr, 1, 8, 0)
	words = append(words, payload...)
	for i := len(payload); i < want; i++ {
		words = append(words, 0)
	}
	return wordsToBytes(words)
}

// runStream is a full single-frame stream: one run-header bank followed by
// an end-of-run marker.
func runStream(t *testing.T, runNo uint32) []byte {
	t.Helper()
	payload := append(runBankLogical(runNo), 1, 1, 0xFFFFFFFF)
	return encodeFrame(t, 0, payload, 200)
}

func TestRunNumberFromFilename(t *testing.T) {
	cases := []struct {
		path string
		want uint32
	}{
		{"gt012345.fz", 12345},
		{"/data/whipple/gt005086.fz.bz2", 5086},
		{"gt900.fzg", 900},
		{"observations.fz", 0},
	}
	for _, tc := range cases {
		if got := RunNumberFromFilename(tc.path); got != tc.want {
			t.Fatalf("RunNumberFromFilename(%q) = %d, want %d", tc.path, got, tc.want)
		}
	}
}

func TestReadRunRecord(t *testing.T) {
	r := NewReader(bytes.NewReader(runStream(t, 1234)), Options{ExpectedRun: 1234})
	defer r.Close()

	rec, err := r.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if rec.Type != gdf.RecordRun || !rec.Decoded {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.Run.RunNum != 1234 || rec.Run.SkyQuality != "A" {
		t.Fatalf("unexpected run data: %+v", rec.Run)
	}
	if rec.Run.Observers != "SJF, ADT" || rec.Run.Comment != "good sky" {
		t.Fatalf("unexpected text fields: %+v", rec.Run)
	}
	if r.RunMismatches() != 0 {
		t.Fatalf("RunMismatches = %d, want 0", r.RunMismatches())
	}
	if _, err := r.Read(); err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

func TestRunMismatchCounted(t *testing.T) {
	r := NewReader(bytes.NewReader(runStream(t, 1234)), Options{ExpectedRun: 999})
	defer r.Close()

	if _, err := r.Read(); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if r.RunMismatches() != 1 {
		t.Fatalf("RunMismatches = %d, want 1", r.RunMismatches())
	}
}

func TestReadTruncatedStream(t *testing.T) {
	r := NewReader(bytes.NewReader(make([]byte, 20)), Options{})
	defer r.Close()

	_, err := r.Read()
	var te *zebra.TruncatedError
	if !errors.As(err, &te) {
		t.Fatalf("expected TruncatedError, got %v", err)
	}
}

func TestResynchroniseOption(t *testing.T) {
	stream := append([]byte{0x00, 0xFF, 0x10}, runStream(t, 1234)...)

	r := NewReader(bytes.NewReader(stream), Options{})
	_, err := r.Read()
	var de *zebra.DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError without resynchronisation, got %v", err)
	}
	r.Close()

	r = NewReader(bytes.NewReader(stream), Options{Resynchronise: true})
	defer r.Close()
	rec, err := r.Read()
	if err != nil {
		t.Fatalf("Read with resynchronisation: %v", err)
	}
	if rec.Type != gdf.RecordRun {
		t.Fatalf("unexpected record type %s", rec.Type)
	}
}

func TestEmergencyStopFrameSkipped(t *testing.T) {
	bad := encodeFrame(t, 0x80, runBankLogical(1234), 200)
	stream := append(bad, runStream(t, 1234)...)

	r := NewReader(bytes.NewReader(stream), Options{})
	defer r.Close()

	rec, err := r.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if rec.Type != gdf.RecordRun {
		t.Fatalf("unexpected record type %s", rec.Type)
	}
	if _, err := r.Read(); err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}
	if r.FramesFound() != 2 {
		t.Fatalf("FramesFound = %d, want 2", r.FramesFound())
	}
}

func TestOpenGzipFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gt001234.fzg")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	gz := gzip.NewWriter(f)
	if _, err := gz.Write(runStream(t, 1234)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("close gzip: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}

	r, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	count := 0
	err = r.ForEach(func(rec *gdf.Record) error {
		count++
		if rec.Run == nil || rec.Run.RunNum != 1234 {
			t.Fatalf("unexpected record: %+v", rec)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("ForEach: %v", err)
	}
	if count != 1 {
		t.Fatalf("decoded %d records, want 1", count)
	}
	if r.RunMismatches() != 0 {
		t.Fatalf("run number from file name not honoured")
	}
}

func TestOpenCompressedArchive(t *testing.T) {
	// The .fzz path pipes through gunzip, which also accepts gzip input, so
	// a gzip body exercises the subprocess plumbing without compress(1).
	if _, err := exec.LookPath("gunzip"); err != nil {
		t.Skip("gunzip not available")
	}
	path := filepath.Join(t.TempDir(), "gt001234.fzz")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	gz := gzip.NewWriter(f)
	if _, err := gz.Write(runStream(t, 1234)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("close gzip: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}

	r, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	count := 0
	err = r.ForEach(func(rec *gdf.Record) error {
		count++
		if rec.Run == nil || rec.Run.RunNum != 1234 {
			t.Fatalf("unexpected record: %+v", rec)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("ForEach: %v", err)
	}
	if count != 1 {
		t.Fatalf("decoded %d records, want 1", count)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
