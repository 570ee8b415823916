package types

// Family identifies one class of tracked record. Each family has its own
// schema, storage key, per-day cardinality, and export envelope layout.
type Family string

// Known record families.
const (
	FamilyLedger  Family = "ledger" // expenses and incomes share one envelope
	FamilySleep   Family = "sleep"
	FamilyDaily   Family = "daily"
	FamilyDiary   Family = "diary"
	FamilyReading Family = "reading"
	FamilyMusic   Family = "music"
)

// Families lists all importable/exportable families.
var Families = []Family{
	FamilyLedger,
	FamilySleep,
	FamilyDaily,
	FamilyDiary,
	FamilyReading,
	FamilyMusic,
}

// Storage keys for the primary record store, one per record collection.
// The ledger family persists two collections.
const (
	KeyExpenses = "expenses"
	KeyIncomes  = "incomes"
	KeySleep    = "sleepRecords"
	KeyDaily    = "dailyRecords"
	KeyDiaries  = "diaries"
	KeyReadings = "readings"
	KeyMusic    = "musicLogs"
)

// Import file size limits, checked before any parse attempt.
const (
	MaxImportSize      = 10 << 20  // plain families
	MaxImportSizeImage = 100 << 20 // attachment-bearing families
)

// ParseFamily maps a user-supplied family name to a Family.
func ParseFamily(s string) (Family, error) {
	for _, f := range Families {
		if string(f) == s {
			return f, nil
		}
	}
	return "", ErrUnknownFamily
}

// SingletonPerDay reports whether the family allows at most one record per
// date. For these families import de-duplication keys on date, not id.
func (f Family) SingletonPerDay() bool {
	switch f {
	case FamilySleep, FamilyDaily, FamilyDiary:
		return true
	}
	return false
}

// HasAttachments reports whether records of the family may carry images.
func (f Family) HasAttachments() bool {
	switch f {
	case FamilyDiary, FamilyReading, FamilyMusic:
		return true
	}
	return false
}

// ImportSizeLimit returns the maximum accepted import file size in bytes.
func (f Family) ImportSizeLimit() int64 {
	if f.HasAttachments() {
		return MaxImportSizeImage
	}
	return MaxImportSize
}
