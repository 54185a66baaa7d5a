package app

import (
	"bufio"
	"errors"
	"io"
	"iter"
	"slices"
	"strconv"
	"strings"
)

// MeetingStore keeps meetings ordered by time key with at most one meeting per key.
// It is not safe for concurrent use; the session that owns it is the only caller.
type MeetingStore struct {
	meetings []Meeting

	// fingerprint of the serialized contents at the last save or load
	saved [fingerprintSize]byte
}

// NewMeetingStore returns an empty store with no unsaved changes
func NewMeetingStore() *MeetingStore {
	s := &MeetingStore{}
	s.markClean()
	return s
}

// search returns the insertion index for key and whether a meeting already occupies it
func (s *MeetingStore) search(key TimeKey) (int, bool) {
	return slices.BinarySearchFunc(s.meetings, key, func(m Meeting, k TimeKey) int {
		return m.Key().Compare(k)
	})
}

// Add inserts a meeting at its ordered position.
// It returns a *FieldError for out-of-range fields and a *SlotError wrapping
// ErrSlotOccupied when the slot is taken; the store is unchanged in both cases.
func (s *MeetingStore) Add(description string, month, day, hour int) error {
	key := TimeKey{Month: month, Day: day, Hour: hour}
	if err := validateKey(key); err != nil {
		return err
	}

	i, found := s.search(key)
	if found {
		return &SlotError{Key: key, Err: ErrSlotOccupied}
	}

	s.meetings = slices.Insert(s.meetings, i, Meeting{
		Description: description,
		Month:       month,
		Day:         day,
		Hour:        hour,
	})
	return nil
}

// Delete removes the meeting at the given key.
// Keys outside the accepted ranges are not rejected, they are simply not found.
func (s *MeetingStore) Delete(month, day, hour int) error {
	key := TimeKey{Month: month, Day: day, Hour: hour}
	i, found := s.search(key)
	if !found {
		return &SlotError{Key: key, Err: ErrNotFound}
	}
	s.meetings = slices.Delete(s.meetings, i, i+1)
	return nil
}

// Get returns the meeting at key, if any
func (s *MeetingStore) Get(key TimeKey) (Meeting, bool) {
	i, found := s.search(key)
	if !found {
		return Meeting{}, false
	}
	return s.meetings[i], true
}

// Len returns the number of meetings
func (s *MeetingStore) Len() int {
	return len(s.meetings)
}

// List returns a copy of all meetings in ascending time order
func (s *MeetingStore) List() []Meeting {
	return slices.Clone(s.meetings)
}

// All iterates over a snapshot of the meetings in ascending time order
func (s *MeetingStore) All() iter.Seq[Meeting] {
	return slices.Values(s.List())
}

// Reset removes all meetings
func (s *MeetingStore) Reset() {
	s.meetings = nil
}

// WriteTo writes one line per meeting in the calendar file format
func (s *MeetingStore) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var total int64
	for _, m := range s.meetings {
		n, err := bw.WriteString(m.String() + "\n")
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, bw.Flush()
}

// Serialize returns the calendar file contents for the store
func (s *MeetingStore) Serialize() string {
	var sb strings.Builder
	// strings.Builder never fails
	_, _ = s.WriteTo(&sb)
	return sb.String()
}

// Decode replaces the store contents with the meetings read from r.
// Lines that do not parse, are out of range or repeat a taken slot are skipped
// and counted in the report. A read error stops the load and is returned; the
// meetings decoded before it stay in the store.
func (s *MeetingStore) Decode(r io.Reader) (LoadReport, error) {
	s.Reset()

	var report LoadReport
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			s.decodeLine(line, &report)
		}
		if errors.Is(err, io.EOF) {
			return report, nil
		}
		if err != nil {
			return report, err
		}
	}
}

// Deserialize replaces the store contents with the meetings in text
func (s *MeetingStore) Deserialize(text string) LoadReport {
	// strings.Reader never fails
	report, _ := s.Decode(strings.NewReader(text))
	return report
}

func (s *MeetingStore) decodeLine(line string, report *LoadReport) {
	if strings.TrimSpace(line) == "" {
		return
	}
	m, ok := ParseLine(line)
	if !ok {
		report.Skipped++
		return
	}
	if err := s.Add(m.Description, m.Month, m.Day, m.Hour); err != nil {
		report.Skipped++
		return
	}
	report.Loaded++
}

// ParseLine parses "<description> <DD>.<MM> at <HH>".
// The line is split from the right so descriptions may contain spaces, tabs
// or be empty; they may not contain " at " or a newline.
func ParseLine(line string) (Meeting, bool) {
	line = strings.TrimRight(line, "\r\n")

	at := strings.LastIndex(line, " at ")
	if at < 0 {
		return Meeting{}, false
	}
	rest, hourStr := line[:at], line[at+len(" at "):]

	sp := strings.LastIndexByte(rest, ' ')
	if sp < 0 {
		return Meeting{}, false
	}
	description, date := rest[:sp], rest[sp+1:]

	dayStr, monthStr, ok := strings.Cut(date, ".")
	if !ok {
		return Meeting{}, false
	}

	day, err := strconv.Atoi(dayStr)
	if err != nil {
		return Meeting{}, false
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil {
		return Meeting{}, false
	}
	hour, err := strconv.Atoi(strings.TrimSpace(hourStr))
	if err != nil {
		return Meeting{}, false
	}

	return Meeting{Description: description, Month: month, Day: day, Hour: hour}, true
}
