package gdf

// The HV bank was ignored by the GDF library before version 67; match that
// by returning a header-only record.
const hvMinVersion = 67

func (d *Decoder) decodeHV(c *Cursor) (*Record, error) {
	hr, err := d.commonHeader(c, RecordHV)
	if err != nil {
		return nil, err
	}
	rec := hr.record
	if hr.version < hvMinVersion {
		return rec, nil
	}

	head, err := c.U32Sector(4)
	if err != nil {
		return nil, err
	}
	hv := &HVData{
		ModeCode:    head[1],
		NumChannels: head[2],
		ReadCycle:   head[3],
	}

	if n := int(hv.NumChannels); n > 0 {
		if hv.Status, err = c.U16Sector(n); err != nil {
			return nil, err
		}
		if hv.VSet, err = c.F32Sector(n); err != nil {
			return nil, err
		}
		if hv.VActual, err = c.F32Sector(n); err != nil {
			return nil, err
		}
		if hv.ISupply, err = c.F32Sector(n); err != nil {
			return nil, err
		}
		if hv.IAnode, err = c.F32Sector(n); err != nil {
			return nil, err
		}
	}

	rec.Decoded = true
	rec.HV = hv
	return rec, nil
}
