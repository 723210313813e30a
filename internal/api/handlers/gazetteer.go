package handlers

import "strings"

// gazetteer is the small fixed list of recognizable city keywords used as a
// convenience fallback when a chat message omits the structured city field.
// This is deliberately not core logic: the structured field always wins, and
// an unrecognized message asks the user to supply it.
//
// Multi-word names come first so "new york" matches before any single token.
var gazetteer = []struct {
	keyword string
	city    string
}{
	{"new york", "New York"},
	{"cape town", "Cape Town"},
	{"paris", "Paris"},
	{"london", "London"},
	{"tokyo", "Tokyo"},
	{"sydney", "Sydney"},
	{"berlin", "Berlin"},
	{"madrid", "Madrid"},
	{"rome", "Rome"},
	{"toronto", "Toronto"},
	{"chicago", "Chicago"},
	{"reykjavik", "Reykjavik"},
}

// extractCity scans a free-text message for a known city keyword and returns
// its canonical name, or "" when nothing matches.
func extractCity(message string) string {
	lowered := strings.ToLower(message)
	for _, entry := range gazetteer {
		if strings.Contains(lowered, entry.keyword) {
			return entry.city
		}
	}
	return ""
}
