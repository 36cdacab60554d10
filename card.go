package fitapp

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// UnavailableText is shown for card values that could not be computed.
const UnavailableText = "unavailable"

const secondsPerDay = 86400

// CardEntry is one labeled metric. Value is nil when unavailable.
type CardEntry struct {
	Label string   `json:"label"`
	Text  string   `json:"text"`
	Value *float64 `json:"value"`
}

// SummaryCard is an ordered label -> value mapping.
type SummaryCard []CardEntry

// Lookup returns the entry with the given label.
func (c SummaryCard) Lookup(label string) (CardEntry, bool) {
	for _, e := range c {
		if e.Label == label {
			return e, true
		}
	}
	return CardEntry{}, false
}

// Map flattens the card to label -> text.
func (c SummaryCard) Map() map[string]string {
	out := make(map[string]string, len(c))
	for _, e := range c {
		out[e.Label] = e.Text
	}
	return out
}

var printer = message.NewPrinter(language.English)

type cardBuilder struct {
	entries SummaryCard
}

func (b *cardBuilder) add(label string, v float64, format func(float64) string) {
	if !isFinite(v) {
		b.entries = append(b.entries, CardEntry{Label: label, Text: UnavailableText})
		return
	}
	b.entries = append(b.entries, CardEntry{Label: label, Text: format(v), Value: floatPtr(v)})
}

func (b *cardBuilder) card() SummaryCard {
	if b.entries == nil {
		return SummaryCard{}
	}
	return b.entries
}

func fixed2(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func fixed1(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(1)
}

func wholeNumber(v float64) string {
	return printer.Sprintf("%d", int64(math.Round(v)))
}

// MetersToKilometers divides by exactly 1000.
func MetersToKilometers(m float64) float64 {
	return m / 1000.0
}

// FormatDuration renders seconds as H:MM:SS, dropping whole days and fractional seconds.
func FormatDuration(seconds float64) string {
	if !isFinite(seconds) || seconds < 0 {
		return UnavailableText
	}
	s := int64(math.Floor(seconds)) % secondsPerDay
	h := s / 3600
	m := (s % 3600) / 60
	sec := s % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
}
