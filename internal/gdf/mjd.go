package gdf

import (
	"fmt"
	"math"
	"time"
)

// Plausible MJD range for archived Whipple data, 1992 through 2011. Anything
// outside is treated as an unset clock.
const (
	mjdMin = 48622.0
	mjdMax = 55927.0
)

// mjdUnixEpoch is the MJD of 1970-01-01.
const mjdUnixEpoch = 40587.0

// CleanMJD returns mjd unchanged when it is finite and plausible, else 0.
func CleanMJD(mjd float64) float64 {
	if math.IsNaN(mjd) || mjd < mjdMin || mjd > mjdMax {
		return 0
	}
	return mjd
}

// MJDToUTCString formats mjd as "2006-01-02 15:04:05.000" UTC, or "unknown"
// when the value does not clean to a plausible timestamp.
func MJDToUTCString(mjd float64) string {
	if CleanMJD(mjd) == 0 {
		return "unknown"
	}
	ms := int64(math.Round((mjd - mjdUnixEpoch) * 86400000))
	if ms < 0 {
		ms = 0
	}
	t := time.Unix(ms/1000, 0).UTC()
	return fmt.Sprintf("%s.%03d", t.Format("2006-01-02 15:04:05"), ms%1000)
}
