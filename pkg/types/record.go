package types

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar-day format used by every record family.
const DateLayout = "2006-01-02"

// Record is implemented by all tracked record types (as pointer receivers).
type Record interface {
	// RecordID returns the immutable id assigned at creation.
	RecordID() string
	// RecordDate returns the semantic day ("2006-01-02") the record
	// belongs to.
	RecordDate() string
	// CreatedStamp returns the creation time as epoch milliseconds,
	// regardless of how the family encodes createdAt on the wire.
	CreatedStamp() int64
}

// Attachable is implemented by record types that may carry an image, either
// inline (legacy base64 payload) or as a reference into the blob store. In
// steady state at most one of the two is set; both may coexist only in the
// middle of a migration pass.
type Attachable interface {
	Record
	InlineImage() string
	SetInlineImage(string)
	AttachmentID() string
	SetAttachmentID(string)
}

// NewID generates a new record id. UUID v7 keeps ids roughly time-ordered;
// falls back to v4 if v7 generation fails.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// SortCanonical orders records by date descending, creation time descending.
// This is the display and persistence order for every family.
func SortCanonical[T Record](recs []T) {
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].RecordDate() != recs[j].RecordDate() {
			return recs[i].RecordDate() > recs[j].RecordDate()
		}
		return recs[i].CreatedStamp() > recs[j].CreatedStamp()
	})
}

// isoStamp converts an ISO-8601 createdAt string to epoch milliseconds.
// Unparseable values sort last (zero).
func isoStamp(s string) int64 {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0
	}
	return t.UnixMilli()
}

// NowISO returns the current time in the ISO-8601 encoding used by the
// string-createdAt families.
func NowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}
