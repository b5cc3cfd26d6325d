package enums

import "fmt"

// ImportKind names the two spreadsheet imports the back office accepts.
type ImportKind string

const (
	ImportKindRoster  ImportKind = "roster"
	ImportKindCallLog ImportKind = "call_log"
)

var validImportKinds = []ImportKind{
	ImportKindRoster,
	ImportKindCallLog,
}

// String implements fmt.Stringer.
func (k ImportKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known ImportKind.
func (k ImportKind) IsValid() bool {
	for _, candidate := range validImportKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseImportKind converts raw input into an ImportKind.
func ParseImportKind(value string) (ImportKind, error) {
	for _, candidate := range validImportKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid import kind %q", value)
}

// ImportStatus is the terminal state recorded for an import run.
type ImportStatus string

const (
	ImportStatusSucceeded ImportStatus = "succeeded"
	ImportStatusFailed    ImportStatus = "failed"
)

// String implements fmt.Stringer.
func (s ImportStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ImportStatus.
func (s ImportStatus) IsValid() bool {
	return s == ImportStatusSucceeded || s == ImportStatusFailed
}
