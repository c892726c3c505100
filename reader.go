// Package fzgate reads archived Whipple 10m telescope data files: GDF banks
// packed into ZEBRA exchange-mode physical records, usually compressed on
// disk. A Reader yields one decoded Record per bank.
package fzgate

import (
	"compress/bzip2"
	"compress/gzip"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"example.com/fzgate/internal/common"
	"example.com/fzgate/internal/gdf"
	"example.com/fzgate/internal/zebra"
)

// Options configures a Reader.
type Options struct {
	// Resynchronise recovers from corrupted physical-record boundaries by
	// scanning forward for the next magic sequence instead of failing.
	Resynchronise bool

	// Trace receives per-step diagnostic lines when non-nil.
	Trace io.Writer

	// ExpectedRun, when non-zero, is checked against the run number each
	// bank's user header carries. Mismatches are counted, not fatal.
	ExpectedRun uint32

	// Metrics, when non-nil, accumulates throughput counters.
	Metrics *common.Metrics
}

// Reader decodes GDF records from one stream.
type Reader struct {
	src  io.Reader
	asm  *zebra.Assembler
	opts Options

	session       string
	runMismatches int64
}

// runNumberPattern matches the archive naming convention, e.g. gt012345.fz.
var runNumberPattern = regexp.MustCompile(`gt0*(\d+)`)

// RunNumberFromFilename extracts the run number encoded in an archive file
// name, or 0 when the name does not follow the convention.
func RunNumberFromFilename(path string) uint32 {
	m := runNumberPattern.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return 0
	}
	n, err := strconv.ParseUint(m[1], 10, 32)
	if err != nil {
		return 0
	}
	return uint32(n)
}

// Open opens the archive file at path, transparently decompressing .gz, .fzg,
// .bz2 and the LZW-compressed .Z/.fzz archives. When opts.ExpectedRun is zero
// it is filled in from the file name.
func Open(path string, opts Options) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if opts.ExpectedRun == 0 {
		opts.ExpectedRun = RunNumberFromFilename(path)
	}

	var src io.Reader = f
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".fzg":
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		src = &closerChain{Reader: gz, closers: []io.Closer{gz, f}}
	case ".bz2":
		src = &closerChain{Reader: bzip2.NewReader(f), closers: []io.Closer{f}}
	case ".z", ".fzz":
		// Unix compress(1) output. The standard library has no reader for
		// the .Z container, so pipe through gunzip as the archive tooling
		// always has.
		f.Close()
		cmd := exec.Command("gunzip", "-c", path)
		stdout, err := cmd.StdoutPipe()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		cmd.Stderr = io.Discard
		if err := cmd.Start(); err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		src = &commandReader{ReadCloser: stdout, cmd: cmd}
	}
	return NewReader(src, opts), nil
}

// NewReader wraps an already-open stream of uncompressed exchange-mode data.
func NewReader(src io.Reader, opts Options) *Reader {
	asm := zebra.NewAssembler(src, opts.Resynchronise)
	asm.SetTrace(opts.Trace)
	if opts.Metrics != nil {
		asm.SetMetrics(opts.Metrics)
	}
	r := &Reader{src: src, asm: asm, opts: opts}
	if opts.Trace != nil {
		r.session = uuid.NewString()
		fmt.Fprintf(opts.Trace, "session %s: reader opened, expected run %d\n",
			r.session, opts.ExpectedRun)
	}
	return r
}

// Read returns the next decoded record. It returns io.EOF at a clean end of
// stream; a *zebra.DecodeError or *zebra.TruncatedError otherwise.
func (r *Reader) Read() (*gdf.Record, error) {
	bd, err := r.asm.NextBankData()
	if err != nil {
		return nil, err
	}
	r.checkUserHeader(bd)
	dec := gdf.NewDecoder(r.asm.LastFrameStart(), r.opts.Trace)
	return dec.Decode(bd)
}

// checkUserHeader compares the run number the DAQ stamped into the user
// header against the expected one.
func (r *Reader) checkUserHeader(bd zebra.BankData) {
	if r.opts.ExpectedRun == 0 || bd.NWUH < 2 || len(bd.Words) < 8 {
		return
	}
	recordNo := binary.BigEndian.Uint32(bd.Words[0:4])
	runNo := binary.BigEndian.Uint32(bd.Words[4:8])
	if runNo != r.opts.ExpectedRun {
		r.runMismatches++
		if r.opts.Trace != nil {
			fmt.Fprintf(r.opts.Trace, "UH: record %d carries run %d, expected %d\n",
				recordNo, runNo, r.opts.ExpectedRun)
		}
	}
}

// ForEach reads records until the stream ends or fn returns an error. A clean
// end of stream returns nil.
func (r *Reader) ForEach(fn func(*gdf.Record) error) error {
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
}

// BytesRead reports total bytes consumed from the (decompressed) stream.
func (r *Reader) BytesRead() int64 { return r.asm.BytesRead() }

// FramesFound reports how many physical records have been parsed.
func (r *Reader) FramesFound() int64 { return r.asm.FramesFound() }

// LastFrameStart reports the byte offset of the most recent physical record.
func (r *Reader) LastFrameStart() int64 { return r.asm.LastFrameStart() }

// RunMismatches reports how many banks carried an unexpected run number.
func (r *Reader) RunMismatches() int64 { return r.runMismatches }

// Close releases the assembler and closes the underlying file, if any.
func (r *Reader) Close() error {
	r.asm.Release()
	if c, ok := r.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// closerChain is a reader that closes a stack of wrapped resources in order.
type closerChain struct {
	io.Reader
	closers []io.Closer
}

func (c *closerChain) Close() error {
	var first error
	for _, cl := range c.closers {
		if err := cl.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// commandReader streams the stdout of a decompression subprocess and reaps it
// on Close. Closing before the subprocess has drained makes it exit on the
// broken pipe; that exit status is not an error.
type commandReader struct {
	io.ReadCloser
	cmd *exec.Cmd
}

func (c *commandReader) Close() error {
	c.ReadCloser.Close()
	if err := c.cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return err
		}
	}
	return nil
}
