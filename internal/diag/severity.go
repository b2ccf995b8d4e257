package diag

// Severity ranks a diagnostic. Only SevError stops a document: the driver
// checks the error count after each stage and drops the output.
type Severity uint8

const (
	SevInfo    Severity = iota // timings and other notes, never shown by default
	SevWarning                 // duplicate constants, constants used as areas
	SevError
)

// String is the upper-case label used by the short and pretty formats.
func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}
