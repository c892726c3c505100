package gdf

import "fmt"

// ClockKind names the embedded timing subsystem an event was stamped by.
type ClockKind string

const (
	ClockTrueTime ClockKind = "truetime"
	ClockMichigan ClockKind = "michigan"
	ClockHytec    ClockKind = "hytec"
)

// ClockTime is a decoded embedded clock reading, normalised to day-of-year
// plus seconds and nanoseconds within the day. Valid is false whenever the
// clock's status nibble reports a fault.
type ClockTime struct {
	DayOfYear int     `json:"day_of_year"`
	Sec       int     `json:"sec"`
	Nanos     int64   `json:"ns"`
	Seconds   float64 `json:"utc_time_sec"`
	String    string  `json:"utc_time_str"`
	Status    uint32  `json:"status"`
	Valid     bool    `json:"valid"`
}

// The GRS-2 interface replaced the older Hytec module partway through the
// era covered by format version 74 and later; runs below this number carry
// Hytec words in the same three-word slot.
const trueTimeFirstRun = 12000

// ClockKindFor selects the clock encoding for an event bank.
func ClockKindFor(version, runNum uint32) ClockKind {
	switch {
	case version < 74:
		return ClockMichigan
	case runNum < trueTimeFirstRun:
		return ClockHytec
	default:
		return ClockTrueTime
	}
}

// DecodeTrueTime unpacks a TrueTime/GRS reading: a 10 MHz tick counter, a
// BCD hours/minutes/seconds word and a BCD day-of-year word with a status
// nibble in bits 16-19.
func DecodeTrueTime(tick10MHz, bcdTime, bcdDay uint32) ClockTime {
	isec := int((bcdTime>>20)&0xF)*36000 +
		int((bcdTime>>16)&0xF)*3600 +
		int((bcdTime>>12)&0xF)*600 +
		int((bcdTime>>8)&0xF)*60 +
		int((bcdTime>>4)&0xF)*10 +
		int(bcdTime&0xF)

	day := int((bcdDay>>8)&0x3)*100 +
		int((bcdDay>>4)&0xF)*10 +
		int(bcdDay&0xF)

	status := (bcdDay >> 16) & 0xF
	nanos := int64(tick10MHz) * 100

	return ClockTime{
		DayOfYear: day,
		Sec:       isec,
		Nanos:     nanos,
		Seconds:   float64(isec) + float64(tick10MHz)*1e-7,
		String: fmt.Sprintf("%02x:%02x:%02x.%07d",
			(bcdTime>>16)&0xFF, (bcdTime>>8)&0xFF, bcdTime&0xFF, tick10MHz),
		Status: status,
		Valid:  status == 0,
	}
}

// DecodeMichiganGPS unpacks the old Michigan GPS reading from its three
// 16-bit words.
func DecodeMichiganGPS(low, mid, high uint16) ClockTime {
	us := (int(mid&0x3)<<2)*100000 +
		int((low>>14)&0x3)*100000 +
		int((low>>10)&0xF)*10000 +
		int((low>>6)&0xF)*1000 +
		int(low&0x3)*250

	day := int((high>>14)&0x3)*100 +
		int((high>>10)&0xF)*10 +
		int((high>>6)&0xF)

	status := uint32((low >> 2) & 0xF)

	isec := int((high>>4)&0x3)*36000 +
		int(high&0xF)*3600 +
		int((mid>>13)&0x7)*600 +
		int((mid>>9)&0xF)*60 +
		int((mid>>6)&0x7)*10 +
		int((mid>>2)&0xF)

	return ClockTime{
		DayOfYear: day,
		Sec:       isec,
		Nanos:     int64(us) * 1000,
		Seconds:   float64(isec) + float64(us)*1e-6,
		String: fmt.Sprintf("%02x:%02x:%02x.%05d",
			high&0x3F, (mid>>9)&0x7F, (mid>>2)&0x7F, us),
		Status: status,
		Valid:  status == 0,
	}
}

// DecodeHytec unpacks a Hytec reading: a microsecond counter, a binary
// second-of-day word with the status nibble in bits 28-31, and a binary
// day-of-year word.
func DecodeHytec(micros, secWord, dayWord uint32) ClockTime {
	isec := int(secWord & 0x1FFFF)
	status := secWord >> 28
	day := int(dayWord & 0x1FF)
	us := micros % 1000000

	return ClockTime{
		DayOfYear: day,
		Sec:       isec,
		Nanos:     int64(us) * 1000,
		Seconds:   float64(isec) + float64(us)*1e-6,
		String: fmt.Sprintf("%02d:%02d:%02d.%06d",
			isec/3600, (isec/60)%60, isec%60, us),
		Status: status,
		Valid:  status == 0,
	}
}
