package types

// Expense is a single spending record.
type Expense struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Amount      Amount `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"createdAt"`
}

func (e *Expense) RecordID() string    { return e.ID }
func (e *Expense) RecordDate() string  { return e.Date }
func (e *Expense) CreatedStamp() int64 { return isoStamp(e.CreatedAt) }

// Income is a single earning record. Same shape as Expense but kept as a
// distinct type: the two families have separate storage keys, category
// taxonomies, and envelope sections.
type Income struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Amount      Amount `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"createdAt"`
}

func (n *Income) RecordID() string    { return n.ID }
func (n *Income) RecordDate() string  { return n.Date }
func (n *Income) CreatedStamp() int64 { return isoStamp(n.CreatedAt) }
