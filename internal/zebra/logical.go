package zebra

import (
	"encoding/binary"
	"errors"
	"io"
)

// Logical record types. Types 2 and 3 start a bank, 4 extends one, the rest
// are markers or padding.
const (
	lrtypImplicitPad = 0
	lrtypRunMarker   = 1
	lrtypStart       = 2
	lrtypStartAlt    = 3
	lrtypExtension   = 4
	lrtypPad         = 5
	lrtypPadAlt      = 6
	lrtypMax         = 6
)

// nextLogical assembles one logical record, reading physical records as
// needed and saving any unused residual payload for the next call. Padding
// and zero-length markers are skipped silently. The returned payload is never
// shorter than NWLR*4 bytes.
func (a *Assembler) nextLogical() (nwlr, lrtyp uint32, data []byte, err error) {
	var pdata []byte
	for nwlr == 0 {
		if len(pdata) == 0 {
			if a.saved != nil {
				pdata, a.saved = a.saved, nil
			} else {
				res, err := a.readFrame()
				if err != nil {
					return 0, 0, nil, err
				}
				if res.discard {
					return 0, 0, nil, errEmergencyStop
				}
				if res.nwtolr != 8 {
					return 0, 0, nil, Decodef(a.phStart,
						"physical record has unexpected data before logical record: NWTOLR=%d", res.nwtolr)
				}
				pdata = res.payload
			}
		}

		if len(pdata) == 4 {
			// A lone trailing word can only be a zero-length marker.
			if v := binary.BigEndian.Uint32(pdata); v != 0 {
				return 0, 0, nil, Decodef(a.phStart, "logical record size error: %d", v)
			}
			pdata = nil
			continue
		}
		if len(pdata) < 8 {
			return 0, 0, nil, Decodef(a.phStart, "logical record header short: %d bytes", len(pdata))
		}

		nwlr = binary.BigEndian.Uint32(pdata[0:4])
		lrtyp = binary.BigEndian.Uint32(pdata[4:8])
		if lrtyp > lrtypMax {
			return 0, 0, nil, Decodef(a.phStart, "logical record type error: LRTYP=%d > %d", lrtyp, lrtypMax)
		}

		switch {
		case nwlr == 0:
			// Implicit padding word.
			pdata = pdata[4:]
			continue
		case lrtyp == lrtypPad || lrtyp == lrtypPadAlt:
			// Explicit padding fills out the rest of the physical record.
			a.tracef("LH: NWLR=%d LRTYP=%d (padding)", nwlr, lrtyp)
			nwlr = 0
			pdata = nil
			continue
		case int(nwlr)*4 < len(pdata)-8:
			// More data follows this record in the same physical payload.
			data = pdata[8 : nwlr*4+8]
			a.saved = append([]byte(nil), pdata[nwlr*4+8:]...)
		default:
			data = pdata[8:]
		}
	}

	for int(nwlr)*4 > len(data) {
		if a.saved != nil {
			return 0, 0, nil, Decodef(a.phStart,
				"internal consistency error: carry-over buffer present while fetching more data")
		}
		res, err := a.readFrame()
		if errors.Is(err, io.EOF) {
			return 0, 0, nil, Truncatedf(a.phStart, "stream ended with incomplete logical record")
		}
		if err != nil {
			return 0, 0, nil, err
		}
		if res.discard {
			return 0, 0, nil, errEmergencyStop
		}
		switch {
		case res.nwtolr == 0:
			// Whole payload continues the current record.
			data = append(data, res.payload...)
		case res.nwtolr > 8:
			split := (res.nwtolr - 8) * 4
			data = append(data, res.payload[:split]...)
			a.saved = append([]byte(nil), res.payload[split:]...)
		default:
			return 0, 0, nil, Decodef(a.phStart,
				"new logical record while current record incomplete")
		}
	}

	a.tracef("LH: NWLR=%d LRTYP=%d (%d bytes)", nwlr, lrtyp, len(data))
	return nwlr, lrtyp, data, nil
}
