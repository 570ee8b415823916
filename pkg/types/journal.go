package types

// Diary is a free-text journal entry, one per day, optionally illustrated.
type Diary struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	Title     string `json:"title,omitempty"`
	Content   string `json:"content"`
	Weather   string `json:"weather,omitempty"`
	Mood      int    `json:"mood,omitempty"` // 0..100
	Image     string `json:"image,omitempty"`
	ImageID   string `json:"imageId,omitempty"`
	CreatedAt string `json:"createdAt"` // ISO-8601
}

func (d *Diary) RecordID() string         { return d.ID }
func (d *Diary) RecordDate() string       { return d.Date }
func (d *Diary) CreatedStamp() int64      { return isoStamp(d.CreatedAt) }
func (d *Diary) InlineImage() string      { return d.Image }
func (d *Diary) SetInlineImage(s string)  { d.Image = s }
func (d *Diary) AttachmentID() string     { return d.ImageID }
func (d *Diary) SetAttachmentID(s string) { d.ImageID = s }

// Reading logs a reading session. Multiple entries per day are allowed.
type Reading struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	Title     string `json:"title"`
	Author    string `json:"author,omitempty"`
	Progress  int    `json:"progress,omitempty"` // percent read, 0..100
	Notes     string `json:"notes,omitempty"`
	Image     string `json:"image,omitempty"`
	ImageID   string `json:"imageId,omitempty"`
	CreatedAt int64  `json:"createdAt"` // epoch millis
}

func (r *Reading) RecordID() string         { return r.ID }
func (r *Reading) RecordDate() string       { return r.Date }
func (r *Reading) CreatedStamp() int64      { return r.CreatedAt }
func (r *Reading) InlineImage() string      { return r.Image }
func (r *Reading) SetInlineImage(s string)  { r.Image = s }
func (r *Reading) AttachmentID() string     { return r.ImageID }
func (r *Reading) SetAttachmentID(s string) { r.ImageID = s }

// Music logs a listened track. Multiple entries per day are allowed.
type Music struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	Track     string `json:"track"`
	Artist    string `json:"artist,omitempty"`
	Rating    int    `json:"rating,omitempty"` // 0..100
	Notes     string `json:"notes,omitempty"`
	Image     string `json:"image,omitempty"`
	ImageID   string `json:"imageId,omitempty"`
	CreatedAt int64  `json:"createdAt"`
}

func (m *Music) RecordID() string         { return m.ID }
func (m *Music) RecordDate() string       { return m.Date }
func (m *Music) CreatedStamp() int64      { return m.CreatedAt }
func (m *Music) InlineImage() string      { return m.Image }
func (m *Music) SetInlineImage(s string)  { m.Image = s }
func (m *Music) AttachmentID() string     { return m.ImageID }
func (m *Music) SetAttachmentID(s string) { m.ImageID = s }
