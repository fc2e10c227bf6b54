package tcgcsv

import (
	"testing"

	"github.com/rs/zerolog"

	tracker "github.com/gauravagarwal003/tcg-tracker"
	"github.com/gauravagarwal003/tcg-tracker/date"
)

func TestParsePrices(t *testing.T) {
	data := []byte(`{
		"success": true,
		"results": [
			{"productId": 21, "subTypeName": "Normal", "marketPrice": 5.25, "lowPrice": 4.0},
			{"productId": 21, "subTypeName": "Foil", "marketPrice": 12.0},
			{"productId": 42, "subTypeName": "Normal", "marketPrice": null},
			{"productId": 42, "subTypeName": "Foil", "marketPrice": 3.5},
			{"productId": 99, "subTypeName": "Normal", "marketPrice": 0}
		]
	}`)

	prices, err := parsePrices(data)
	if err != nil {
		t.Fatalf("parsePrices: %v", err)
	}

	// first variant with a usable market price wins.
	if p, exists := prices["21"]; !exists || !p.Equal(tracker.M(5.25)) {
		t.Errorf("product 21 = %v, want $5.25", p)
	}
	// null market price on the first variant falls through to the next.
	if p, exists := prices["42"]; !exists || !p.Equal(tracker.M(3.5)) {
		t.Errorf("product 42 = %v, want $3.50", p)
	}
	// a zero market price is not a price.
	if _, exists := prices["99"]; exists {
		t.Error("product 99 must be absent")
	}
}

func TestParsePricesNoResults(t *testing.T) {
	if _, err := parsePrices([]byte(`{"success": true}`)); err == nil {
		t.Error("expected an error for a file without results")
	}
	if _, err := parsePrices([]byte(`not json`)); err == nil {
		t.Error("expected an error for malformed JSON")
	}
}

func TestArchiveURL(t *testing.T) {
	c := New("https://tcgcsv.com/archive/tcgplayer", t.TempDir(), zerolog.Nop())
	on := date.MustParse("2024-06-03")
	want := "https://tcgcsv.com/archive/tcgplayer/prices-2024-06-03.ppmd.7z"
	if got := c.archiveURL(on); got != want {
		t.Errorf("archiveURL = %q, want %q", got, want)
	}
}
