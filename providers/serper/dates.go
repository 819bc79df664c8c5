package serper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	dottedDateRe   = regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.(\d{4})$`)
	isoPrefixRe    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	relativeDateRe = regexp.MustCompile(`(?i)(\d+)\s+(hour|day|week|month|year)s?\s+ago`)
)

// Layouts für den generischen Parse-Fallback.
var fallbackLayouts = []string{
	time.RFC3339,
	"Jan 2, 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"2006/01/02",
}

// NormalizeDate wandelt die heterogenen Datumsangaben der Serper-API in ein
// ISO-Datum (yyyy-MM-dd) um. Reihenfolge: deutsches Punktformat, ISO-Präfix,
// relative Angaben ("3 days ago") bezogen auf now, generischer Fallback.
// Unparsbare Angaben ergeben den leeren String.
func NormalizeDate(raw string, now time.Time) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	if m := dottedDateRe.FindStringSubmatch(raw); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		return fmt.Sprintf("%s-%02d-%02d", m[3], month, day)
	}

	if isoPrefixRe.MatchString(raw) {
		return raw[:10]
	}

	if m := relativeDateRe.FindStringSubmatch(raw); m != nil {
		amount, _ := strconv.Atoi(m[1])
		t := now
		switch strings.ToLower(m[2]) {
		case "hour":
			t = t.Add(-time.Duration(amount) * time.Hour)
		case "day":
			t = t.AddDate(0, 0, -amount)
		case "week":
			t = t.AddDate(0, 0, -amount*7)
		case "month":
			t = t.AddDate(0, -amount, 0)
		case "year":
			t = t.AddDate(-amount, 0, 0)
		}
		return t.Format("2006-01-02")
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}
