package gdf

// eventLayout describes the sector plan for one bracket of format versions.
// Brackets are ordered newest first; the first entry whose minVersion is not
// above the bank's version wins.
type eventLayout struct {
	minVersion uint32
	merged     bool // clock and elapsed-time words folded into the header sector
	headerI32  int  // length of the counters sector in the split format
	combined16 int  // single 16-bit sector carrying clock and ADC together
}

var eventLayouts = []eventLayout{
	{minVersion: 74, merged: true},
	{minVersion: 27, headerI32: 13},
	{minVersion: 0, headerI32: 10, combined16: 144},
}

func eventLayoutFor(version uint32) eventLayout {
	for _, l := range eventLayouts {
		if version >= l.minVersion {
			return l
		}
	}
	return eventLayouts[len(eventLayouts)-1]
}

func (d *Decoder) decodeEvent(c *Cursor) (*Record, error) {
	hr, err := d.commonHeader(c, RecordEvent)
	if err != nil {
		return nil, err
	}
	rec := hr.record
	lay := eventLayoutFor(hr.version)
	ev := &EventData{}

	if lay.merged {
		head, err := c.U32Sector(20)
		if err != nil {
			return nil, err
		}
		ev.NADC = int(head[0])
		ev.RunNum, ev.EventNum = head[1], head[2]
		ev.LiveTimeSec, ev.LiveTimeNs = head[3], head[4]
		ev.NTrigger, ev.ElapsedSec, ev.ElapsedNs = head[13], head[14], head[15]
		ev.ClockWords = [3]uint32{head[16], head[17], head[18]}

		trig, err := c.U32Sector(7)
		if err != nil {
			return nil, err
		}
		ev.TriggerCode = trig[0]

		if ev.NTrigger > 0 {
			if ev.TriggerData, err = c.U32Sector(int(ev.NTrigger)); err != nil {
				return nil, err
			}
		}
		if ev.NADC > 0 {
			if ev.ADC, err = c.U16Sector(ev.NADC); err != nil {
				return nil, err
			}
		}
		// The trailing scaler sector is unused but its framing still gets
		// checked against the rest of the bank.
		if err := c.SkipSector(28, 2); err != nil {
			return nil, err
		}

		ev.ClockKind = ClockKindFor(hr.version, ev.RunNum)
		switch ev.ClockKind {
		case ClockHytec:
			ev.Clock = DecodeHytec(ev.ClockWords[0], ev.ClockWords[1], ev.ClockWords[2])
		default:
			ev.Clock = DecodeTrueTime(ev.ClockWords[0], ev.ClockWords[1], ev.ClockWords[2])
		}
	} else {
		trig, err := c.U32Sector(7)
		if err != nil {
			return nil, err
		}
		ev.TriggerCode = trig[0]

		head, err := c.U32Sector(lay.headerI32)
		if err != nil {
			return nil, err
		}
		ev.NADC = int(head[0])
		ev.RunNum, ev.EventNum = head[1], head[2]
		ev.LiveTimeSec, ev.LiveTimeNs = head[3], head[4]

		var high, mid, low uint16
		if lay.combined16 == 0 {
			if ev.ADC, err = c.U16Sector(ev.NADC); err != nil {
				return nil, err
			}
			gps, err := c.U16Sector(28)
			if err != nil {
				return nil, err
			}
			high, mid, low = gps[0], gps[1], gps[2]
		} else {
			fused, err := c.U16Sector(lay.combined16)
			if err != nil {
				return nil, err
			}
			high, mid, low = fused[0], fused[1], fused[2]
			ev.ADC = fused[4:124]
		}
		ev.ClockKind = ClockMichigan
		ev.ClockWords = [3]uint32{uint32(low), uint32(mid), uint32(high)}
		ev.Clock = DecodeMichiganGPS(low, mid, high)
	}

	if ev.TriggerCode&0x01 != 0 {
		ev.EventType = "pedestal"
	} else {
		ev.EventType = "sky"
	}

	rec.Decoded = true
	rec.Event = ev
	return rec, nil
}
