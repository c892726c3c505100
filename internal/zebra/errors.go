package zebra

import (
	"errors"
	"fmt"
)

// errEmergencyStop is the internal discard-and-retry signal raised when a
// physical record carries the emergency-stop flag. It never escapes the
// bank-data assembly loop.
var errEmergencyStop = errors.New("emergency stop frame discarded")

// DecodeError reports a structural violation in the ZEBRA container or GDF
// bank layout. PHStart is the byte offset of the most recently started
// physical record, which is where to look for the corruption.
type DecodeError struct {
	Reason  string
	PHStart int64
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s. PH start byte: %d", e.Reason, e.PHStart)
}

// TruncatedError reports a stream that ended while a physical record, logical
// record or sector was still being read. Always fatal for the session.
type TruncatedError struct {
	Reason  string
	PHStart int64
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("%s. PH start byte: %d", e.Reason, e.PHStart)
}

// Decodef builds a DecodeError for the record starting at phStart.
func Decodef(phStart int64, format string, args ...interface{}) error {
	return &DecodeError{Reason: fmt.Sprintf(format, args...), PHStart: phStart}
}

// Truncatedf builds a TruncatedError for the record starting at phStart.
func Truncatedf(phStart int64, format string, args ...interface{}) error {
	return &TruncatedError{Reason: fmt.Sprintf(format, args...), PHStart: phStart}
}
