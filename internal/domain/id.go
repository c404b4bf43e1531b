package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// PlayerID derives a stable identifier for a record within a source.
// The directory lists one row per player and position; the leaderboard one row per player and club.
func PlayerID(source PlayerSource, r Record) string {
	parts := []string{string(source), strings.ToLower(r.String(FieldName))}
	switch source {
	case SourceAppearances:
		parts = append(parts, strings.ToLower(r.String(FieldClub)))
	default:
		parts = append(parts, strings.ToLower(r.String(FieldPosition)))
	}
	return hashString(strings.Join(parts, "|"))
}

// Version hashes the record content so updated rows (e.g. new appearances) can be detected
func Version(r Record) string {
	data, err := json.Marshal(r)
	if err != nil {
		return ""
	}
	return hashString(string(data))
}

func hashString(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:16]) // First 16 bytes (32 hex chars)
}
