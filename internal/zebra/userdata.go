package zebra

import (
	"encoding/binary"
	"errors"
	"io"
)

// logicalHeaderMagic opens the 10-word extended header on bank-start records.
const logicalHeaderMagic = 0x4640E400

const logicalHeaderWords = 10

// NextBankData assembles the next complete bank-data buffer, skipping
// padding and run markers and concatenating extension records. It returns
// io.EOF at a clean end of stream, which is only clean after an end-of-run
// marker has been seen; otherwise the stream counts as truncated.
func (a *Assembler) NextBankData() (BankData, error) {
	for {
		bd, err := a.nextBankData()
		if errors.Is(err, errEmergencyStop) {
			a.tracef("PH: emergency stop, bank assembly restarted")
			continue
		}
		return bd, err
	}
}

func (a *Assembler) nextBankData() (BankData, error) {
	var (
		nwlr, lrtyp uint32
		ldata       []byte
		err         error
	)
	for lrtyp != lrtypStart && lrtyp != lrtypStartAlt {
		nwlr, lrtyp, ldata, err = a.nextLogical()
		if errors.Is(err, io.EOF) {
			if !a.endOfRun {
				return BankData{}, Truncatedf(a.phStart, "stream ended before end-of-data marker")
			}
			return BankData{}, io.EOF
		}
		if err != nil {
			return BankData{}, err
		}
		switch lrtyp {
		case lrtypRunMarker:
			if nwlr > 0 {
				nrun := int32(binary.BigEndian.Uint32(ldata[0:4]))
				a.tracef("LH: run marker NRUN=%d", nrun)
				if nrun <= 0 {
					a.endOfRun = true
				}
			}
		case lrtypExtension:
			return BankData{}, Decodef(a.phStart, "logical extension found where start expected")
		}
	}

	if len(ldata) < logicalHeaderWords*4 {
		return BankData{}, Decodef(a.phStart,
			"logical record too short for header: %d words", len(ldata)/4)
	}
	var hdr [logicalHeaderWords]uint32
	for i := range hdr {
		hdr[i] = binary.BigEndian.Uint32(ldata[i*4 : i*4+4])
	}
	if hdr[0] != logicalHeaderMagic {
		return BankData{}, Decodef(a.phStart, "logical record magic not found: %08x", hdr[0])
	}
	nwtx, nwseg, nwtab := hdr[4], hdr[5], hdr[6]
	nwbk, lentry, nwuhio := hdr[7], hdr[8], hdr[9]

	nwbkst := int64(nwlr) - int64(logicalHeaderWords) - int64(nwuhio) - int64(nwseg) - int64(nwtx) - int64(nwtab)
	a.tracef("LH: NWLR=%d NWTX=%d NWSEG=%d NWTAB=%d NWBK=%d LENTRY=%d NWUHIO=%d NWBKST=%d",
		nwlr, nwtx, nwseg, nwtab, nwbk, lentry, nwuhio, nwbkst)

	for nwbkst < int64(nwbk) {
		xnwlr, xlrtyp, xdata, err := a.nextLogical()
		if errors.Is(err, io.EOF) {
			return BankData{}, Decodef(a.phStart, "end of stream while searching for logical extension")
		}
		if err != nil {
			return BankData{}, err
		}
		switch xlrtyp {
		case lrtypStart, lrtypStartAlt:
			return BankData{}, Decodef(a.phStart, "logical start found where extension expected")
		case lrtypExtension:
			ldata = append(ldata, xdata...)
			nwbkst += int64(xnwlr)
			a.tracef("LH: extension NWLR=%d NWBKST=%d", xnwlr, nwbkst)
		default:
			a.tracef("LH: NWLR=%d LRTYP=%d (skipping)", xnwlr, xlrtyp)
		}
	}
	if nwbkst != int64(nwbk) {
		return BankData{}, Decodef(a.phStart,
			"bank words found do not match expected: %d != %d", nwbkst, nwbk)
	}

	pos := logicalHeaderWords * 4
	var nwuh uint32
	if nwuhio != 0 {
		if len(ldata) < pos+4 {
			return BankData{}, Decodef(a.phStart, "user data truncated before I/O control word")
		}
		uhiocw := binary.BigEndian.Uint32(ldata[pos : pos+4])
		pos += 4
		nwio := NIO(uhiocw)
		if nwio > nwuhio {
			return BankData{}, Decodef(a.phStart,
				"user header I/O size inconsistent: NWIO=%d > NWUHIO=%d", nwio, nwuhio)
		}
		nwuh = nwuhio - nwio
		a.tracef("UHIOCW: IOCB=%d NWIO=%d NWUH=%d", uhiocw, nwio, nwuh)
	}

	if a.metrics != nil {
		a.metrics.AddRecord()
	}

	return BankData{
		NWTX:   nwtx,
		NWSEG:  nwseg,
		NWTAB:  nwtab,
		NWBK:   nwbk,
		LENTRY: lentry,
		NWUH:   nwuh,
		Words:  ldata[pos:],
	}, nil
}

// NIO derives the I/O-descriptor word count from an I/O control word. The
// historical GDF reader masks with 0xFFF3 instead of subtracting 12; archived
// files depend on that, so keep the mask.
func NIO(iocb uint32) uint32 {
	if iocb < 12 {
		return 1
	}
	return iocb & 0xFFF3
}
