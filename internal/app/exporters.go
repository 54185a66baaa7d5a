package app

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Export formats
const (
	FormatICS  = "ics"
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// ExportOptions places the year-less meetings on a concrete calendar
type ExportOptions struct {
	Year         int
	Location     *time.Location
	AlarmMinutes int

	// Now stamps ICS events; time.Now when nil
	Now func() time.Time
}

// Export writes meetings in the given format
func Export(w io.Writer, meetings []Meeting, format string, opts ExportOptions) error {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	switch strings.ToLower(format) {
	case FormatICS:
		return GenerateICS(w, meetings, opts)
	case FormatCSV:
		return GenerateCSV(w, meetings)
	case FormatJSON:
		return GenerateJSON(w, meetings, opts.Year)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// MeetingTime returns the start of the meeting in the given year, or false
// when the day does not exist in that year (month 0, day 0, 30.02, ...)
func MeetingTime(m Meeting, year int, loc *time.Location) (time.Time, bool) {
	if m.Month < 1 || m.Day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(m.Month), m.Day, m.Hour, 0, 0, 0, loc)
	if int(t.Month()) != m.Month || t.Day() != m.Day {
		return time.Time{}, false
	}
	return t, true
}

// icsWriter writes CRLF-terminated content lines and keeps the first error
type icsWriter struct {
	w   io.Writer
	err error
}

func (iw *icsWriter) line(format string, args ...any) {
	if iw.err != nil {
		return
	}
	_, iw.err = fmt.Fprintf(iw.w, format+"\r\n", args...)
}

// GenerateICS generates an iCalendar file with one hour-long event per meeting
func GenerateICS(w io.Writer, meetings []Meeting, opts ExportOptions) error {
	iw := &icsWriter{w: w}
	stamp := opts.Now().UTC().Format("20060102T150405Z")

	iw.line("BEGIN:VCALENDAR")
	iw.line("VERSION:2.0")
	iw.line("PRODID:%s", ICSProductID)
	iw.line("CALSCALE:GREGORIAN")
	iw.line("X-WR-CALNAME:meetcal %d", opts.Year)
	if tzid := icsTZID(opts.Location); tzid != "" {
		iw.line("X-WR-TIMEZONE:%s", tzid)
		writeVTimezone(iw, tzid, opts.Location, opts.Year)
	}

	for _, m := range meetings {
		start, ok := MeetingTime(m, opts.Year, opts.Location)
		if !ok {
			continue
		}
		end := start.Add(time.Hour)

		// UID must be stable for calendar updates; the slot is unique
		uid := fmt.Sprintf("%04d%02d%02dT%02d@meetcal", opts.Year, m.Month, m.Day, m.Hour)

		iw.line("BEGIN:VEVENT")
		iw.line("UID:%s", uid)
		iw.line("DTSTAMP:%s", stamp)
		iw.line("DTSTART%s", icsDateTime(start, opts.Location))
		iw.line("DTEND%s", icsDateTime(end, opts.Location))
		iw.line("SUMMARY:%s", escapeText(m.Description))

		if opts.AlarmMinutes > 0 {
			iw.line("BEGIN:VALARM")
			iw.line("ACTION:DISPLAY")
			iw.line("DESCRIPTION:Reminder: %s", escapeText(m.Description))
			iw.line("TRIGGER:-PT%dM", opts.AlarmMinutes)
			iw.line("END:VALARM")
		}

		iw.line("END:VEVENT")
	}

	iw.line("END:VCALENDAR")
	return iw.err
}

// icsTZID returns the TZID for named zones; Local and UTC are written as UTC times
func icsTZID(loc *time.Location) string {
	if loc == nil || loc == time.Local || loc == time.UTC {
		return ""
	}
	return loc.String()
}

// icsDateTime renders the value part of DTSTART/DTEND including the separator
func icsDateTime(t time.Time, loc *time.Location) string {
	if tzid := icsTZID(loc); tzid != "" {
		return fmt.Sprintf(";TZID=%s:%s", tzid, t.Format("20060102T150405"))
	}
	return ":" + t.UTC().Format("20060102T150405Z")
}

// writeVTimezone describes loc for the export year: one STANDARD or DAYLIGHT
// sub-component per offset change, or a single STANDARD for fixed offsets
func writeVTimezone(iw *icsWriter, tzid string, loc *time.Location, year int) {
	iw.line("BEGIN:VTIMEZONE")
	iw.line("TZID:%s", tzid)

	transitions := zoneTransitions(loc, year)
	if len(transitions) == 0 {
		start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
		name, offset := start.Zone()
		iw.line("BEGIN:STANDARD")
		iw.line("DTSTART:%s", start.Format("20060102T150405"))
		iw.line("TZOFFSETFROM:%s", icsOffset(offset))
		iw.line("TZOFFSETTO:%s", icsOffset(offset))
		iw.line("TZNAME:%s", name)
		iw.line("END:STANDARD")
	}

	for _, tr := range transitions {
		kind := "STANDARD"
		if tr.at.IsDST() {
			kind = "DAYLIGHT"
		}
		name, to := tr.at.Zone()
		// DTSTART is the wall clock just before the change
		onset := tr.at.UTC().Add(time.Duration(tr.from) * time.Second)

		iw.line("BEGIN:%s", kind)
		iw.line("DTSTART:%s", onset.Format("20060102T150405"))
		iw.line("TZOFFSETFROM:%s", icsOffset(tr.from))
		iw.line("TZOFFSETTO:%s", icsOffset(to))
		iw.line("TZNAME:%s", name)
		iw.line("END:%s", kind)
	}

	iw.line("END:VTIMEZONE")
}

type zoneTransition struct {
	at   time.Time
	from int
}

// zoneTransitions finds the UTC offset changes of loc within year
func zoneTransitions(loc *time.Location, year int) []zoneTransition {
	var out []zoneTransition
	t := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	end := time.Date(year+1, time.January, 1, 0, 0, 0, 0, loc)
	_, prev := t.Zone()

	for t.Before(end) {
		next := t.Add(time.Hour)
		if _, offset := next.Zone(); offset != prev {
			// narrow down to the minute
			lo, hi := t, next
			for hi.Sub(lo) > time.Minute {
				mid := lo.Add(hi.Sub(lo) / 2).Truncate(time.Minute)
				if _, o := mid.Zone(); o == prev {
					lo = mid
				} else {
					hi = mid
				}
			}
			out = append(out, zoneTransition{at: hi, from: prev})
			prev = offset
		}
		t = next
	}
	return out
}

// icsOffset formats a UTC offset in seconds as +HHMM / -HHMM
func icsOffset(seconds int) string {
	sign := "+"
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}
	return fmt.Sprintf("%s%02d%02d", sign, seconds/3600, seconds%3600/60)
}

var icsEscaper = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\n", `\n`)

func escapeText(s string) string {
	return icsEscaper.Replace(s)
}

// GenerateCSV generates a CSV file with one row per meeting
func GenerateCSV(w io.Writer, meetings []Meeting) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Datum", "Uhrzeit", "Beschreibung"}); err != nil {
		return err
	}
	for _, m := range meetings {
		row := []string{
			fmt.Sprintf("%02d.%02d", m.Day, m.Month),
			fmt.Sprintf("%02d:00", m.Hour),
			m.Description,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// GenerateJSON generates a JSON document with all meetings
func GenerateJSON(w io.Writer, meetings []Meeting, year int) error {
	if meetings == nil {
		meetings = []Meeting{}
	}
	data := map[string]interface{}{
		"year":     year,
		"meetings": meetings,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// ExportFile writes meetings in the given format to path
func ExportFile(path string, meetings []Meeting, format string, opts ExportOptions) (err error) {
	switch strings.ToLower(format) {
	case FormatICS, FormatCSV, FormatJSON:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, FilePermissions)
	if err != nil {
		return &IOError{Op: "export", Path: path, Err: err}
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = &IOError{Op: "export", Path: path, Err: closeErr}
		}
	}()

	if err := Export(file, meetings, format, opts); err != nil {
		return &IOError{Op: "export", Path: path, Err: err}
	}
	return nil
}
