package gdf

// RecordType tags the decoded variant of a GDF bank.
type RecordType string

const (
	RecordEvent    RecordType = "event"
	RecordFrame    RecordType = "frame"
	RecordRun      RecordType = "run"
	RecordHV       RecordType = "hv"
	RecordTracking RecordType = "tracking"
	RecordCCD      RecordType = "ccd"
	RecordUnknown  RecordType = "unknown"
)

// Record is one decoded GDF bank. Exactly one of the payload pointers is set
// for the variants that carry data; Decoded is false when the bank's format
// version predates support, in which case only the common header fields are
// meaningful.
type Record struct {
	Type       RecordType `json:"record_type"`
	BankID     string     `json:"bank_id,omitempty"`
	GDFVersion uint32     `json:"gdf_version"`
	TimeMJD    float64    `json:"record_time_mjd"`
	TimeUTC    string     `json:"record_time_str"`
	Decoded    bool       `json:"record_was_decoded"`

	Event    *EventData    `json:"event,omitempty"`
	Frame    *FrameData    `json:"frame,omitempty"`
	Run      *RunData      `json:"run,omitempty"`
	HV       *HVData       `json:"hv,omitempty"`
	Tracking *TrackingData `json:"tracking,omitempty"`
}

// EventData is a triggered shower event.
type EventData struct {
	RunNum      uint32    `json:"run_num"`
	EventNum    uint32    `json:"event_num"`
	LiveTimeSec uint32    `json:"livetime_sec"`
	LiveTimeNs  uint32    `json:"livetime_ns"`
	TriggerCode uint32    `json:"trigger_code"`
	EventType   string    `json:"event_type"`
	NADC        int       `json:"nadc"`
	ADC         []uint16  `json:"adc_values"`
	ClockKind   ClockKind `json:"clock_kind"`
	ClockWords  [3]uint32 `json:"clock_words"`
	Clock       ClockTime `json:"clock"`

	// Present from format version 74 on.
	ElapsedSec  uint32   `json:"elaptime_sec,omitempty"`
	ElapsedNs   uint32   `json:"elaptime_ns,omitempty"`
	NTrigger    uint32   `json:"ntrigger,omitempty"`
	TriggerData []uint32 `json:"trigger_data,omitempty"`
}

// FrameData is a legacy pedestal/calibration snapshot, written separately
// from events before the formats were merged.
type FrameData struct {
	RunNum     uint32    `json:"run_num"`
	FrameNum   uint32    `json:"frame_num"`
	EventType  string    `json:"event_type"`
	NADC       int       `json:"nadc"`
	ADC        []uint16  `json:"adc_values"`
	ClockKind  ClockKind `json:"clock_kind"`
	ClockWords [3]uint32 `json:"clock_words"`
	Clock      ClockTime `json:"clock"`
}

// RunData is a run header.
type RunData struct {
	RunNum          uint32  `json:"run_num"`
	SkyQuality      string  `json:"sky_quality"`
	TrigMode        uint32  `json:"trig_mode"`
	SidLength       float32 `json:"sid_length"`
	NominalMJDStart float64 `json:"nominal_mjd_start"`
	NominalMJDEnd   float64 `json:"nominal_mjd_end"`
	Observers       string  `json:"observers"`
	Comment         string  `json:"comment"`
}

// HVData is a high-voltage settings snapshot.
type HVData struct {
	ModeCode    uint32    `json:"mode_code"`
	NumChannels uint32    `json:"num_channels"`
	ReadCycle   uint32    `json:"read_cycle"`
	Status      []uint16  `json:"status"`
	VSet        []float32 `json:"v_set"`
	VActual     []float32 `json:"v_actual"`
	ISupply     []float32 `json:"i_supply"`
	IAnode      []float32 `json:"i_anode"`
}

// TrackingData is a telescope tracking snapshot.
type TrackingData struct {
	Mode           string  `json:"mode"`
	ModeCode       uint32  `json:"mode_code"`
	ReadCycle      uint32  `json:"read_cycle"`
	Status         uint32  `json:"status"`
	TargetRAHours  float64 `json:"target_ra_hours"`
	TargetRAHMS    string  `json:"target_ra_hms_str"`
	TargetDecDeg   float64 `json:"target_dec_deg"`
	TargetDecDMS   string  `json:"target_dec_dms_str"`
	TelescopeAzDeg float64 `json:"telescope_az_deg"`
	TelescopeElDeg float64 `json:"telescope_el_deg"`
	TrackingErrDeg float64 `json:"tracking_error_deg"`
	OffsetRAHours  float64 `json:"onoff_offset_ra_hours"`
	OffsetRAHMS    string  `json:"onoff_offset_ra_hms_str"`
	OffsetDecDeg   float64 `json:"onoff_offset_dec_deg"`
	OffsetDecDMS   string  `json:"onoff_offset_dec_dms_str"`
	Target         string  `json:"target"`
	HasSidereal    bool    `json:"-"`
	SiderealHours  float64 `json:"sidereal_time_hours,omitempty"`
	SiderealHMS    string  `json:"sidereal_time_hms_str,omitempty"`
}

// IsPedestalEvent reports whether the record is a decoded pedestal event or
// frame.
func (r *Record) IsPedestalEvent() bool {
	if r == nil || !r.Decoded {
		return false
	}
	switch r.Type {
	case RecordEvent:
		return r.Event != nil && r.Event.EventType == "pedestal"
	case RecordFrame:
		return r.Frame != nil && r.Frame.EventType == "pedestal"
	}
	return false
}

// IsSkyEvent reports whether the record is a decoded sky event.
func (r *Record) IsSkyEvent() bool {
	return r != nil && r.Decoded && r.Type == RecordEvent &&
		r.Event != nil && r.Event.EventType == "sky"
}
