package gdf

import (
	"fmt"
	"math"
)

// Conversion factors carried over from the historical analysis chain, which
// used this particular value of pi.
const (
	gdfPi      = 3.14159265358979324
	radToDeg   = 180.0 / gdfPi
	radToHours = 12.0 / gdfPi
)

// HMSString formats an angle in radians as hours, minutes and tenths of a
// second of time.
func HMSString(rad float64) string {
	const tenthSec = 10 * 3600.0 * 12.0 / gdfPi
	x := int(math.Round(rad * tenthSec))
	return fmt.Sprintf("%02dh%02dm%04.1fs", x/36000, (x/600)%60, float64(x%600)/10.0)
}

// DMSString formats an angle in radians as signed degrees, minutes and
// tenths of a second of arc.
func DMSString(rad float64) string {
	const tenthSec = 10 * 3600.0 * 180.0 / gdfPi
	x := int(math.Round(math.Abs(rad) * tenthSec))
	sign := "+"
	if rad < 0 {
		sign = "-"
	}
	return fmt.Sprintf("%s%03dd%02dm%04.1fs", sign, x/36000, (x/600)%60, float64(x%600)/10.0)
}
