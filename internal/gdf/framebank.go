package gdf

// frameLayout covers the legacy pedestal/calibration frame bank, which was
// merged into the event bank at version 74 and is header-only from there on.
type frameLayout struct {
	minVersion uint32
	supported  bool
	headerI32  int
	fused16    int // single 16-bit sector holding clock and ADC together
}

var frameLayouts = []frameLayout{
	{minVersion: 74},
	{minVersion: 27, supported: true, headerI32: 8},
	{minVersion: 0, supported: true, headerI32: 5, fused16: 4 + 16 + 120*3 + 128*2},
}

func frameLayoutFor(version uint32) frameLayout {
	for _, l := range frameLayouts {
		if version >= l.minVersion {
			return l
		}
	}
	return frameLayouts[len(frameLayouts)-1]
}

func (d *Decoder) decodeFrame(c *Cursor) (*Record, error) {
	hr, err := d.commonHeader(c, RecordFrame)
	if err != nil {
		return nil, err
	}
	rec := hr.record
	lay := frameLayoutFor(hr.version)
	if !lay.supported {
		return rec, nil
	}

	if err := c.SkipSector(2, 4); err != nil { // STATUS
		return nil, err
	}
	head, err := c.U32Sector(lay.headerI32)
	if err != nil {
		return nil, err
	}
	nphs, nadc, nsca := int(head[0]), int(head[1]), int(head[2])
	fr := &FrameData{
		RunNum:    head[3],
		FrameNum:  head[4],
		EventType: "pedestal",
		NADC:      nadc,
		ClockKind: ClockMichigan,
	}

	var high, mid, low uint16
	if lay.fused16 == 0 {
		if err := c.SkipSector(nadc, 2); err != nil { // CAL_ADC, unused
			return nil, err
		}
		if fr.ADC, err = c.U16Sector(nadc); err != nil { // PED_ADC1
			return nil, err
		}
		if err := c.SkipSector(nadc, 2); err != nil { // PED_ADC2, unused
			return nil, err
		}
		if err := c.SkipSector(nsca, 2); err != nil { // SCALC, unused
			return nil, err
		}
		if err := c.SkipSector(nsca, 2); err != nil { // SCALS, unused
			return nil, err
		}
		gps, err := c.U16Sector(4 + 2 + 2*nphs)
		if err != nil {
			return nil, err
		}
		high, mid, low = gps[0], gps[1], gps[2]
	} else {
		if err := c.EnterSector(lay.fused16, 2); err != nil {
			return nil, err
		}
		gps, err := c.PeekU16(4)
		if err != nil {
			return nil, err
		}
		high, mid, low = gps[0], gps[1], gps[2]
		if err := c.Advance(70); err != nil {
			return nil, err
		}
		adc, err := c.PeekU16(120)
		if err != nil {
			return nil, err
		}
		fr.ADC = adc
		if err := c.Advance(60); err != nil {
			return nil, err
		}
	}

	fr.ClockWords = [3]uint32{uint32(low), uint32(mid), uint32(high)}
	fr.Clock = DecodeMichiganGPS(low, mid, high)

	rec.Decoded = true
	rec.Frame = fr
	return rec, nil
}
