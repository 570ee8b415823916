package types

// Meal statuses for daily check-ins.
const (
	MealHome    = "home"
	MealOut     = "out"
	MealSkipped = "skipped"
)

// ValidMealStatuses is the set of recognized meal status values.
var ValidMealStatuses = map[string]bool{
	MealHome:    true,
	MealOut:     true,
	MealSkipped: true,
}

// Sleep records one night of sleep. At most one record may exist per date.
type Sleep struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	BedTime   string `json:"bedTime"`  // "HH:MM"
	WakeTime  string `json:"wakeTime"` // "HH:MM"
	Quality   int    `json:"quality"`  // 0..100
	Notes     string `json:"notes,omitempty"`
	CreatedAt int64  `json:"createdAt"` // epoch millis
}

func (s *Sleep) RecordID() string    { return s.ID }
func (s *Sleep) RecordDate() string  { return s.Date }
func (s *Sleep) CreatedStamp() int64 { return s.CreatedAt }

// Daily is the once-per-day check-in: meal statuses and a mood score.
type Daily struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	Breakfast string `json:"breakfast"`
	Lunch     string `json:"lunch"`
	Dinner    string `json:"dinner"`
	Mood      int    `json:"mood"` // 0..100
	Notes     string `json:"notes,omitempty"`
	CreatedAt int64  `json:"createdAt"`
}

func (d *Daily) RecordID() string    { return d.ID }
func (d *Daily) RecordDate() string  { return d.Date }
func (d *Daily) CreatedStamp() int64 { return d.CreatedAt }
