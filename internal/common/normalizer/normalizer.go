package normalizer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/project-tktt/pl-crawler/internal/domain"
)

// Normalizer converts RawPlayer to normalized Player format
type Normalizer struct{}

// NewNormalizer creates a new normalizer
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize converts a RawPlayer to a standardized Player.
// Text is taken as plain text; entity decoding belongs to the cleaner.
func (n *Normalizer) Normalize(raw *domain.RawPlayer) (*domain.Player, error) {
	if raw == nil {
		return nil, errors.New("nil raw player")
	}
	data := raw.Data

	player := &domain.Player{
		ID:          raw.ID,
		Source:      raw.Source,
		SourceURL:   raw.URL,
		CrawledAt:   raw.ExtractedAt,
		Name:        getString(data, domain.FieldName),
		Position:    getString(data, domain.FieldPosition),
		Nationality: getString(data, domain.FieldNationality),
		Club:        getString(data, domain.FieldClub),
		Appearances: getInt(data, domain.FieldAppearances),
	}

	if player.Name == "" {
		return nil, fmt.Errorf("player %s has no name", raw.ID)
	}
	if player.Nationality == "" {
		player.Nationality = domain.UnknownNationality
	}
	if player.Appearances < 0 {
		player.Appearances = 0
	}
	if player.ID == "" {
		player.ID = domain.PlayerID(domain.PlayerSource(raw.Source), data)
	}

	return player, nil
}

// getString extracts a trimmed string from data
func getString(data map[string]any, keys ...string) string {
	for _, key := range keys {
		if val, ok := data[key]; ok {
			switch v := val.(type) {
			case string:
				if v != "" {
					return strings.TrimSpace(v)
				}
			case float64:
				return fmt.Sprintf("%.0f", v)
			case int:
				return strconv.Itoa(v)
			}
		}
	}
	return ""
}

// getInt extracts integer from data
func getInt(data map[string]any, keys ...string) int {
	for _, key := range keys {
		if val, ok := data[key]; ok {
			switch v := val.(type) {
			case float64:
				return int(v)
			case int:
				return v
			case string:
				if i, err := strconv.Atoi(strings.ReplaceAll(strings.TrimSpace(v), ",", "")); err == nil {
					return i
				}
			}
		}
	}
	return 0
}
