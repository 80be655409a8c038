package models

// Note is a single notepad entry. Content is markdown. Timestamps are epoch
// milliseconds to stay wire-compatible with the web client's export format.
type Note struct {
	ID         string         `bson:"id" json:"id"`
	Title      string         `bson:"title" json:"title"`
	Content    string         `bson:"content" json:"content"`
	Color      string         `bson:"color,omitempty" json:"color,omitempty"`
	CategoryID string         `bson:"categoryId,omitempty" json:"categoryId,omitempty"`
	IsFavorite bool           `bson:"isFavorite" json:"isFavorite"`
	IsPinned   bool           `bson:"isPinned" json:"isPinned"`
	Reminder   *Reminder      `bson:"reminder,omitempty" json:"reminder,omitempty"`
	Journal    []JournalEntry `bson:"journal,omitempty" json:"journal,omitempty"`
	CreatedAt  int64          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  int64          `bson:"updatedAt" json:"updatedAt"`
	DeletedAt  *int64         `bson:"deletedAt,omitempty" json:"deletedAt,omitempty"`
}

// InTrash reports whether the note has been soft-deleted.
func (n *Note) InTrash() bool {
	return n.DeletedAt != nil
}

// JournalEntry is one dated free-text entry attached to a note.
type JournalEntry struct {
	ID        string `bson:"id" json:"id"`
	Text      string `bson:"text" json:"text"`
	CreatedAt int64  `bson:"createdAt" json:"createdAt"`
}

// Category groups notes for filtering.
type Category struct {
	ID   string `bson:"id" json:"id"`
	Name string `bson:"name" json:"name"`
}

// Template is a reusable note body the editor offers when creating a note.
type Template struct {
	ID      string `bson:"id" json:"id"`
	Title   string `bson:"title" json:"title"`
	Content string `bson:"content" json:"content"`
}

// Archive is the import/export envelope: a full snapshot of a device's notes
// and categories.
type Archive struct {
	Version    int        `json:"version"`
	ExportedAt int64      `json:"exportedAt"`
	Notes      []Note     `json:"notes"`
	Categories []Category `json:"categories"`
	Templates  []Template `json:"templates"`
}
