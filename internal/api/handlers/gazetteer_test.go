package handlers

import "testing"

func TestExtractCity(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"What's the weather in Paris?", "Paris"},
		{"is it raining in LONDON right now", "London"},
		{"new york forecast please", "New York"},
		{"I'm flying to cape town tomorrow", "Cape Town"},
		{"Will it snow tomorrow?", ""},
		{"", ""},
	}

	for _, tc := range tests {
		t.Run(tc.message, func(t *testing.T) {
			if got := extractCity(tc.message); got != tc.want {
				t.Errorf("extractCity(%q) = %q, want %q", tc.message, got, tc.want)
			}
		})
	}
}

func TestExtractCityMultiWordBeforeSubstring(t *testing.T) {
	// "new york" must resolve to New York even though "york" alone is not
	// in the gazetteer and other keywords could partially overlap.
	if got := extractCity("heading to New York City"); got != "New York" {
		t.Errorf("got %q", got)
	}
}
