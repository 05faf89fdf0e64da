package enums

import "fmt"

// LedgerEntryKind is the reason code of a loyalty ledger entry.
type LedgerEntryKind string

const (
	LedgerEntryKindEarned  LedgerEntryKind = "earned"
	LedgerEntryKindSpent   LedgerEntryKind = "spent"
	LedgerEntryKindPenalty LedgerEntryKind = "penalty"
)

var validLedgerEntryKinds = []LedgerEntryKind{
	LedgerEntryKindEarned,
	LedgerEntryKindSpent,
	LedgerEntryKindPenalty,
}

// String implements fmt.Stringer.
func (k LedgerEntryKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known LedgerEntryKind.
func (k LedgerEntryKind) IsValid() bool {
	for _, candidate := range validLedgerEntryKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseLedgerEntryKind converts raw input into a LedgerEntryKind.
func ParseLedgerEntryKind(value string) (LedgerEntryKind, error) {
	for _, candidate := range validLedgerEntryKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ledger entry kind %q", value)
}
