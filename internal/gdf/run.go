package gdf

// runLayout splits the run-header bank at version 27, where the free-text
// fields moved into proper byte-string sectors.
type runLayout struct {
	minVersion    uint32
	stringSectors bool
}

var runLayouts = []runLayout{
	{minVersion: 27, stringSectors: true},
	{minVersion: 0},
}

func runLayoutFor(version uint32) runLayout {
	for _, l := range runLayouts {
		if version >= l.minVersion {
			return l
		}
	}
	return runLayouts[len(runLayouts)-1]
}

func (d *Decoder) decodeRun(c *Cursor) (*Record, error) {
	hr, err := d.commonHeader(c, RecordRun)
	if err != nil {
		return nil, err
	}
	rec := hr.record

	if err := c.SkipSector(2, 4); err != nil { // STATUS
		return nil, err
	}
	counters, err := c.U32Sector(13)
	if err != nil {
		return nil, err
	}
	runNum := counters[3]
	skyQuality := counters[5]
	trigMode := counters[6]
	commentLen := int(counters[12])

	floats, err := c.F32Sector(7)
	if err != nil {
		return nil, err
	}
	doubles, err := c.F64Sector(2)
	if err != nil {
		return nil, err
	}

	var observers, comment string
	if runLayoutFor(hr.version).stringSectors {
		obs, err := c.ByteSector(160)
		if err != nil {
			return nil, err
		}
		observers = printableString(obs[80:160])
		com, err := c.ByteSector(commentLen)
		if err != nil {
			return nil, err
		}
		comment = printableString(com)
	} else {
		// Fixed-offset text: a filename field sits first but was never used.
		if err := c.Advance(21); err != nil {
			return nil, err
		}
		obs, err := c.Raw(80)
		if err != nil {
			return nil, err
		}
		observers = printableString(obs)
		com, err := c.Raw(commentLen)
		if err != nil {
			return nil, err
		}
		comment = printableString(com)
	}

	rec.Decoded = true
	rec.Run = &RunData{
		RunNum:          runNum,
		SkyQuality:      skyQualityLetter(skyQuality),
		TrigMode:        trigMode,
		SidLength:       floats[0],
		NominalMJDStart: doubles[0],
		NominalMJDEnd:   doubles[1],
		Observers:       observers,
		Comment:         comment,
	}
	return rec, nil
}

// skyQualityLetter maps the recorded sky-quality code to the observers'
// letter grade. Only codes 1 and 2 were ever assigned; everything else,
// including 0, is unknown.
func skyQualityLetter(code uint32) string {
	if code > 0 && code < 3 {
		return string(rune('A' + code - 1))
	}
	return "?"
}
