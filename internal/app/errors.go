package app

import (
	"errors"
	"fmt"
)

var (
	// ErrSlotOccupied is returned when a meeting already exists at the time key
	ErrSlotOccupied = errors.New("time slot already allocated")

	// ErrNotFound is returned when no meeting exists at the time key
	ErrNotFound = errors.New("time slot not in calendar")

	// ErrUnknownFormat is returned for export formats other than ics, csv and json
	ErrUnknownFormat = errors.New("unknown export format")
)

// Field bounds, inclusive
const (
	MinMonth = 0
	MaxMonth = 12
	MinDay   = 0
	MaxDay   = 31
	MinHour  = 0
	MaxHour  = 23
)

// FieldError indicates a time component outside its accepted range
type FieldError struct {
	Field string
	Value int
	Min   int
	Max   int
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s %d out of range [%d, %d]", e.Field, e.Value, e.Min, e.Max)
}

// SlotError ties a slot sentinel (ErrSlotOccupied, ErrNotFound) to the key it concerns
type SlotError struct {
	Key TimeKey
	Err error
}

func (e *SlotError) Error() string {
	return fmt.Sprintf("%s: %v", e.Key, e.Err)
}

func (e *SlotError) Unwrap() error {
	return e.Err
}

// IOError wraps a file failure during save or load
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// validateKey checks month, hour and day in that order
func validateKey(k TimeKey) error {
	if k.Month < MinMonth || k.Month > MaxMonth {
		return &FieldError{Field: "month", Value: k.Month, Min: MinMonth, Max: MaxMonth}
	}
	if k.Hour < MinHour || k.Hour > MaxHour {
		return &FieldError{Field: "hour", Value: k.Hour, Min: MinHour, Max: MaxHour}
	}
	if k.Day < MinDay || k.Day > MaxDay {
		return &FieldError{Field: "day", Value: k.Day, Min: MinDay, Max: MaxDay}
	}
	return nil
}
