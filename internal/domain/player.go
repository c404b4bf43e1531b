package domain

import "time"

// Record field names shared by the extractor schemas, the normalizer and the stats.
const (
	FieldName        = "Name"
	FieldPosition    = "Position"
	FieldNationality = "Nationality"
	FieldClub        = "Club"
	FieldAppearances = "Appearances"
)

// UnknownNationality is substituted when a row carries no nationality marker
const UnknownNationality = "Unknown"

// Record is one extracted row: field name to extracted value.
// Text fields hold strings, numeric fields hold ints.
type Record map[string]any

// String returns the named field as a string, or "" when absent or not a string
func (r Record) String(field string) string {
	if v, ok := r[field].(string); ok {
		return v
	}
	return ""
}

// Int returns the named field as an int
func (r Record) Int(field string) (int, bool) {
	switch v := r[field].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		// JSON round-trips through the queue decode numbers as float64
		return int(v), true
	}
	return 0, false
}

// Player represents a normalized player row from any source
type Player struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Position    string    `json:"position,omitempty"`
	Nationality string    `json:"nationality"`
	Club        string    `json:"club,omitempty"`
	Appearances int       `json:"appearances"`
	Source      string    `json:"source"`
	SourceURL   string    `json:"source_url"`
	CrawledAt   time.Time `json:"crawled_at"`
}

// RawPlayer represents raw extracted data before normalization
type RawPlayer struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	Page        int       `json:"page"`
	Data        Record    `json:"data"`
	Version     string    `json:"version,omitempty"` // Content hash for change detection
	ExtractedAt time.Time `json:"extracted_at"`
}

// PlayerSource represents a player listing source
type PlayerSource string

const (
	// SourcePlayers is the infinite-scroll player directory
	SourcePlayers PlayerSource = "players"
	// SourceAppearances is the paginated appearances leaderboard
	SourceAppearances PlayerSource = "appearances"
)
