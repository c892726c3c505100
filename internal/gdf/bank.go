package gdf

import (
	"fmt"
	"io"
	"strings"

	"example.com/fzgate/internal/zebra"
)

// Bank identifiers, four ASCII bytes as written in the stream.
const (
	hbidEvent    = 0x45545445 // ETTE
	hbidRun      = 0x52555552 // RUUR
	hbidHV       = 0x48565648 // HVVH
	hbidFrame    = 0x46545446 // FTTF
	hbidTracking = 0x54525254 // TRRT
	hbidCCD      = 0x43434343 // CCCC
)

const bankHeaderWords = 9

// BankHeader is the generic 9-word header preceding every bank payload.
type BankHeader struct {
	NXTPTR     uint32
	UPPTR      uint32
	ORIGPTR    uint32
	NBID       uint32
	HBID       uint32
	NLINK      uint32
	NSTRUCLINK uint32
	NDW        uint32
	STATUS     uint32
}

// Decoder turns assembled bank data into Records. phStart is the offset of
// the physical record the data started in, carried into every error.
type Decoder struct {
	phStart int64
	trace   io.Writer
}

// NewDecoder returns a Decoder for a bank that started in the physical
// record at phStart.
func NewDecoder(phStart int64, trace io.Writer) *Decoder {
	return &Decoder{phStart: phStart, trace: trace}
}

func (d *Decoder) tracef(format string, args ...interface{}) {
	if d.trace == nil {
		return
	}
	fmt.Fprintf(d.trace, format+"\n", args...)
}

// Decode walks the user-data sequences, parses the bank header and
// dispatches on the bank identifier. Unrecognised identifiers produce an
// Unknown record carrying the four-character tag.
func (d *Decoder) Decode(bd zebra.BankData) (*Record, error) {
	if len(bd.Words)%4 != 0 {
		return nil, zebra.Decodef(d.phStart,
			"user data is not a multiple of the word size: %d bytes", len(bd.Words))
	}
	c := NewCursor(bd.Words, len(bd.Words)/4, d.phStart)

	if _, err := c.Seq(int(bd.NWUH), "UH"); err != nil {
		return nil, err
	}
	if _, err := c.Seq(int(bd.NWSEG), "ST"); err != nil {
		return nil, err
	}
	if _, err := c.Seq(int(bd.NWTX), "TV"); err != nil {
		return nil, err
	}
	if _, err := c.Seq(int(bd.NWTAB), "RT"); err != nil {
		return nil, err
	}

	iocbSeq, err := c.Seq(1, "IOCBH")
	if err != nil {
		return nil, err
	}
	nio := zebra.NIO(iocbSeq[0])
	d.tracef("IOCBH: IOCB=%d NIO=%d", iocbSeq[0], nio)
	if _, err := c.Seq(int(nio), "IOCBD"); err != nil {
		return nil, err
	}

	bh, err := c.Seq(bankHeaderWords, "BH")
	if err != nil {
		return nil, err
	}
	hdr := BankHeader{
		NXTPTR: bh[0], UPPTR: bh[1], ORIGPTR: bh[2], NBID: bh[3], HBID: bh[4],
		NLINK: bh[5], NSTRUCLINK: bh[6], NDW: bh[7], STATUS: bh[8],
	}
	d.tracef("BH: HBID=%08x (%s) NBID=%d NDW=%d STATUS=%d",
		hdr.HBID, hbidString(hdr.HBID), hdr.NBID, hdr.NDW, hdr.STATUS)

	payload := NewCursor(bd.Words[c.Pos()*4:], int(hdr.NDW), d.phStart)

	switch hdr.HBID {
	case hbidEvent:
		return d.decodeEvent(payload)
	case hbidRun:
		return d.decodeRun(payload)
	case hbidHV:
		return d.decodeHV(payload)
	case hbidFrame:
		return d.decodeFrame(payload)
	case hbidTracking:
		return d.decodeTracking(payload)
	case hbidCCD:
		rec, err := d.commonHeader(payload, RecordCCD)
		if err != nil {
			return nil, err
		}
		return rec.record, nil
	}
	return &Record{Type: RecordUnknown, BankID: hbidString(hdr.HBID)}, nil
}

func hbidString(hbid uint32) string {
	return string([]byte{byte(hbid >> 24), byte(hbid >> 16), byte(hbid >> 8), byte(hbid)})
}

// commonHeader reads the two-field header shared by every bank type: the
// format version word and the record timestamp, whose position moved from
// word 3 to word 4 at version 27.
type headerResult struct {
	record  *Record
	version uint32
}

func (d *Decoder) commonHeader(c *Cursor, typ RecordType) (headerResult, error) {
	vseq, err := c.Seq(1, "GDF version")
	if err != nil {
		return headerResult{}, err
	}
	version := vseq[0]
	nw := 5
	if version >= 27 {
		nw = 6
	}
	mjd, err := c.F64At(nw - 2)
	if err != nil {
		return headerResult{}, err
	}
	if err := c.Advance(nw - 1); err != nil {
		return headerResult{}, err
	}
	rec := &Record{
		Type:       typ,
		GDFVersion: version,
		TimeMJD:    CleanMJD(mjd),
		TimeUTC:    MJDToUTCString(mjd),
	}
	return headerResult{record: rec, version: version}, nil
}

// printableString keeps printable ASCII plus tab, LF and CR, then trims
// surrounding whitespace.
func printableString(b []byte) string {
	var sb strings.Builder
	for _, ch := range b {
		if (ch >= 32 && ch <= 126) || ch == 9 || ch == 10 || ch == 13 {
			sb.WriteByte(ch)
		}
	}
	return strings.TrimSpace(sb.String())
}
