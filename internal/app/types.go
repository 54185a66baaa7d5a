package app

import (
	"cmp"
	"fmt"
)

// Meeting represents a single scheduled meeting
type Meeting struct {
	Description string `json:"description" yaml:"description"`
	Month       int    `json:"month" yaml:"month"`
	Day         int    `json:"day" yaml:"day"`
	Hour        int    `json:"hour" yaml:"hour"`
}

// TimeKey identifies the slot a meeting occupies
type TimeKey struct {
	Month int
	Day   int
	Hour  int
}

// Key returns the time key of the meeting
func (m Meeting) Key() TimeKey {
	return TimeKey{Month: m.Month, Day: m.Day, Hour: m.Hour}
}

// String renders the meeting in the calendar line format, without newline
func (m Meeting) String() string {
	return fmt.Sprintf("%s %s", m.Description, m.Key())
}

// String renders the key as "DD.MM at HH"
func (k TimeKey) String() string {
	return fmt.Sprintf("%02d.%02d at %02d", k.Day, k.Month, k.Hour)
}

// Compare orders keys by month, then day, then hour
func (k TimeKey) Compare(other TimeKey) int {
	if c := cmp.Compare(k.Month, other.Month); c != 0 {
		return c
	}
	if c := cmp.Compare(k.Day, other.Day); c != 0 {
		return c
	}
	return cmp.Compare(k.Hour, other.Hour)
}

// LoadReport summarizes a bulk load
type LoadReport struct {
	Loaded  int
	Skipped int
}
