package zebra

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"example.com/fzgate/internal/common"
)

const (
	frameHeaderBytes  = 32
	minFrameWords     = 90
	flagEmergencyStop = 0x80

	// Archived physical records are a few KiB; a declared payload beyond
	// this is corruption, not data.
	maxFramePayloadBytes = 64 << 20
)

// zebraMagic is the fixed 16-byte steering pattern at the start of every
// physical record in exchange mode.
var zebraMagic = [4]uint32{0x0123CDEF, 0x80708070, 0x4321ABCD, 0x80618061}

// Assembler reassembles GDF bank data from a ZEBRA exchange-mode byte stream.
// It owns the carry-over buffer between logical records and all running
// counters. One Assembler serves exactly one stream; it is not safe for
// concurrent use.
type Assembler struct {
	src    io.Reader
	resync bool
	trace  io.Writer

	saved     []byte // residual physical payload for the next logical record
	bytesRead int64
	phStart   int64 // byte offset of the most recently started physical record
	frames    int64
	endOfRun  bool

	metrics *common.Metrics
}

// NewAssembler wraps src. When resync is true, magic mismatches at frame
// start are recovered by sliding the read window one byte at a time; all
// other structural violations stay fatal.
func NewAssembler(src io.Reader, resync bool) *Assembler {
	return &Assembler{src: src, resync: resync}
}

// SetTrace directs per-step diagnostic lines to w. A nil writer disables
// tracing.
func (a *Assembler) SetTrace(w io.Writer) { a.trace = w }

// SetMetrics attaches a metrics recorder.
func (a *Assembler) SetMetrics(m *common.Metrics) { a.metrics = m }

// BytesRead reports the total bytes consumed from the stream.
func (a *Assembler) BytesRead() int64 { return a.bytesRead }

// FramesFound reports how many physical-record headers have been parsed.
func (a *Assembler) FramesFound() int64 { return a.frames }

// LastFrameStart reports the byte offset of the most recently started
// physical record.
func (a *Assembler) LastFrameStart() int64 { return a.phStart }

// EndOfRunSeen reports whether a run marker with a non-positive run number
// has been observed.
func (a *Assembler) EndOfRunSeen() bool { return a.endOfRun }

// Release drops the carry-over buffer. The assembler must not be used after.
func (a *Assembler) Release() {
	a.saved = nil
	a.src = nil
}

func (a *Assembler) tracef(format string, args ...interface{}) {
	if a.trace == nil {
		return
	}
	fmt.Fprintf(a.trace, format+"\n", args...)
}

// readFrame pulls one physical record. It returns io.EOF only on a clean
// boundary before any header byte; a partial header or payload is a
// TruncatedError. A result with discard set means the frame carried the
// emergency-stop flag: its payload was consumed and must be ignored.
func (a *Assembler) readFrame() (frameResult, error) {
	a.phStart = a.bytesRead

	buf := make([]byte, frameHeaderBytes)
	n, err := io.ReadFull(a.src, buf)
	a.bytesRead += int64(n)
	if n == 0 && (errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)) {
		return frameResult{}, io.EOF
	}
	if err != nil {
		return frameResult{}, Truncatedf(a.phStart, "physical record magic and header could not be read")
	}

	nadjust := 0
	for !magicMatches(buf) {
		if !a.resync {
			return frameResult{}, Decodef(a.phStart,
				"physical record magic not found, values were %08x %08x %08x %08x",
				binary.BigEndian.Uint32(buf[0:4]), binary.BigEndian.Uint32(buf[4:8]),
				binary.BigEndian.Uint32(buf[8:12]), binary.BigEndian.Uint32(buf[12:16]))
		}
		copy(buf, buf[1:])
		m, err := io.ReadFull(a.src, buf[frameHeaderBytes-1:])
		a.bytesRead += int64(m)
		if err != nil {
			return frameResult{}, Truncatedf(a.phStart, "stream ended while resynchronising")
		}
		a.phStart++
		nadjust++
	}
	if nadjust > 0 {
		a.tracef("PH: adjusted header by %d bytes", nadjust)
		if a.metrics != nil {
			a.metrics.IncResync()
		}
	}

	nwphrRaw := binary.BigEndian.Uint32(buf[16:20])
	prc := binary.BigEndian.Uint32(buf[20:24])
	nwtolr := binary.BigEndian.Uint32(buf[24:28])
	nfast := binary.BigEndian.Uint32(buf[28:32])
	flags := nwphrRaw >> 24
	nwphr := nwphrRaw & 0x00FFFFFF

	a.frames++
	a.tracef("PH: frame %d at byte %d: NWPHR=%d PRC=%d NWTOLR=%d NFAST=%d FLAGS=0x%02x",
		a.frames, a.phStart, nwphr, prc, nwtolr, nfast, flags)

	if nwphr < minFrameWords {
		return frameResult{}, Decodef(a.phStart, "physical record length error: NWPHR=%d", nwphr)
	}

	// Size the payload in 64-bit arithmetic: NWPHR and NFAST are attacker-
	// controlled on a corrupt stream and their product overflows uint32.
	payloadBytes := (int64(nwphr)*(1+int64(nfast)) - 8) * 4
	if payloadBytes > maxFramePayloadBytes {
		return frameResult{}, Decodef(a.phStart,
			"physical record length error: NWPHR=%d NFAST=%d", nwphr, nfast)
	}

	payload := make([]byte, payloadBytes)
	n, err = io.ReadFull(a.src, payload)
	a.bytesRead += int64(n)
	if err != nil {
		return frameResult{}, Truncatedf(a.phStart, "physical record payload could not be read")
	}

	if a.metrics != nil {
		a.metrics.AddFrame(int64(frameHeaderBytes + len(payload)))
	}

	if flags&flagEmergencyStop != 0 {
		a.saved = nil
		a.tracef("PH: emergency stop flag set, frame discarded")
		if a.metrics != nil {
			a.metrics.IncDiscard()
		}
		return frameResult{discard: true}, nil
	}

	return frameResult{nwtolr: nwtolr, payload: payload}, nil
}

func magicMatches(buf []byte) bool {
	for i, want := range zebraMagic {
		if binary.BigEndian.Uint32(buf[i*4:i*4+4]) != want {
			return false
		}
	}
	return true
}
