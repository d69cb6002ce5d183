// Package format turns timestamps and text into the strings the views display.
// Formatting is fixed to en-US.
package format

import (
	"strconv"
	"time"
	"unicode/utf8"
)

// PreviewLength is how many characters of an entry the list view shows.
const PreviewLength = 100

// Time converts milliseconds since epoch to a time in loc.
func Time(ms int64, loc *time.Location) time.Time {
	return time.UnixMilli(ms).In(loc)
}

// Date renders e.g. "Monday, January 2, 2006". Zero timestamps render empty.
func Date(ms int64, loc *time.Location) string {
	if ms == 0 {
		return ""
	}
	return Time(ms, loc).Format("Monday, January 2, 2006")
}

// Clock renders e.g. "3:04 PM". Zero timestamps render empty.
func Clock(ms int64, loc *time.Location) string {
	if ms == 0 {
		return ""
	}
	return Time(ms, loc).Format("3:04 PM")
}

// Stamp joins Date and Clock the way list cards and the detail view show them.
func Stamp(ms int64, loc *time.Location) string {
	if ms == 0 {
		return ""
	}
	return Date(ms, loc) + " • " + Clock(ms, loc)
}

// Greeting returns the time-of-day greeting for t.
func Greeting(t time.Time) string {
	switch h := t.Hour(); {
	case h < 12:
		return "Good morning"
	case h < 18:
		return "Good afternoon"
	default:
		return "Good evening"
	}
}

// Preview shortens text to PreviewLength characters, appending "..." when cut.
func Preview(text string) string {
	if text == "" {
		return "(No text)"
	}
	if utf8.RuneCountInString(text) <= PreviewLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:PreviewLength]) + "..."
}

// Days renders a streak like "1 day" or "3 days".
func Days(n int) string {
	if n == 1 {
		return "1 day"
	}
	return strconv.Itoa(n) + " days"
}
