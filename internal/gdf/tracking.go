package gdf

// trackingModeNames maps the recorded mode code to its operator-facing name.
var trackingModeNames = map[uint32]string{
	1: "on",
	2: "off",
	3: "slewing",
	4: "standby",
	5: "zenith",
	6: "check",
	7: "stowing",
	8: "drift",
}

// trackingLayout: versions 42 through 64 wrote a two-word status sector, and
// the recorded sidereal time is only trustworthy after version 67.
type trackingLayout struct {
	minVersion uint32
	maxVersion uint32 // inclusive; 0 means open-ended
	statusI32  int
}

var trackingLayouts = []trackingLayout{
	{minVersion: 65, statusI32: 1},
	{minVersion: 42, maxVersion: 64, statusI32: 2},
	{minVersion: 0, maxVersion: 41, statusI32: 1},
}

const siderealMinVersion = 68

func trackingLayoutFor(version uint32) trackingLayout {
	for _, l := range trackingLayouts {
		if version >= l.minVersion && (l.maxVersion == 0 || version <= l.maxVersion) {
			return l
		}
	}
	return trackingLayouts[0]
}

func (d *Decoder) decodeTracking(c *Cursor) (*Record, error) {
	hr, err := d.commonHeader(c, RecordTracking)
	if err != nil {
		return nil, err
	}
	rec := hr.record
	lay := trackingLayoutFor(hr.version)

	head, err := c.U32Sector(3)
	if err != nil {
		return nil, err
	}
	modeCode, readCycle := head[1], head[2]

	status, err := c.U32Sector(lay.statusI32)
	if err != nil {
		return nil, err
	}

	angles, err := c.F64Sector(15)
	if err != nil {
		return nil, err
	}
	targetRA, targetDec := angles[2], angles[3]
	telescopeAz, telescopeEl, trackingErr := angles[6], angles[7], angles[8]
	offsetRA, offsetDec, sidereal := angles[9], angles[10], angles[11]

	target, err := c.ByteSector(80)
	if err != nil {
		return nil, err
	}

	modeName, ok := trackingModeNames[modeCode]
	if !ok {
		modeName = "unknown"
	}

	tr := &TrackingData{
		Mode:           modeName,
		ModeCode:       modeCode,
		ReadCycle:      readCycle,
		Status:         status[0],
		TargetRAHours:  targetRA * radToHours,
		TargetRAHMS:    HMSString(targetRA),
		TargetDecDeg:   targetDec * radToDeg,
		TargetDecDMS:   DMSString(targetDec),
		TelescopeAzDeg: telescopeAz * radToDeg,
		TelescopeElDeg: telescopeEl * radToDeg,
		TrackingErrDeg: trackingErr * radToDeg,
		OffsetRAHours:  offsetRA * radToHours,
		OffsetRAHMS:    HMSString(offsetRA),
		OffsetDecDeg:   offsetDec * radToDeg,
		OffsetDecDMS:   DMSString(offsetDec),
		Target:         printableString(target),
	}
	if hr.version >= siderealMinVersion {
		tr.HasSidereal = true
		tr.SiderealHours = sidereal * radToHours
		tr.SiderealHMS = HMSString(sidereal)
	}

	rec.Decoded = true
	rec.Tracking = tr
	return rec, nil
}
