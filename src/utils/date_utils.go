package utils

import (
	"database/sql"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/username/salesinsight/backend/src/logger"
)

const (
	DayKeyFormat   = "2006-01-02"
	MonthKeyFormat = "2006-01"
	dayFirstLayout = "2/1/2006"
)

var (
	monthOnlyPattern   = regexp.MustCompile(`^\d{4}-\d{2}$`)
	slashDatePattern   = regexp.MustCompile(`^(\d{1,2})/\d{1,2}/\d{4}$`)
	numericDatePattern = regexp.MustCompile(`^(\d{1,2})[.\-](\d{1,2})[.\-](\d{4})(?:[ T](\d{1,2}):(\d{2})(?::(\d{2}))?)?$`)
)

// ResolveDate turns a free-form date string into a calendar date (UTC midnight).
//
// Precedence:
//  1. YYYY-MM is the first day of that month.
//  2. D/M/YYYY whose first component exceeds 12 is read day-first.
//  3. Anything else goes through generic parsing, month-first when ambiguous.
//     A value the generic parser rejects is retried with day and month
//     swapped, so "13/1/2023 10:00" is 13 January. A numeric D.M.YYYY or
//     D-M-YYYY date, optionally followed by HH:MM[:SS], is retried day-first
//     when its first component exceeds 12.
//
// Unparseable input yields an invalid NullTime and a warning; it never fails.
func ResolveDate(val string) sql.NullTime {
	s := strings.TrimSpace(val)
	if s == "" {
		logger.L.Warn("Empty date value, marking as missing")
		return sql.NullTime{}
	}

	if monthOnlyPattern.MatchString(s) {
		t, err := time.Parse(MonthKeyFormat, s)
		if err != nil {
			logger.L.Warn("Invalid year-month date, marking as missing", "value", s, "error", err)
			return sql.NullTime{}
		}
		return sql.NullTime{Time: t, Valid: true}
	}

	if m := slashDatePattern.FindStringSubmatch(s); m != nil {
		if first, _ := strconv.Atoi(m[1]); first > 12 {
			t, err := time.Parse(dayFirstLayout, s)
			if err != nil {
				logger.L.Warn("Invalid day-first date, marking as missing", "value", s, "error", err)
				return sql.NullTime{}
			}
			return sql.NullTime{Time: t, Valid: true}
		}
	}

	t, err := dateparse.ParseIn(s, time.UTC, dateparse.RetryAmbiguousDateWithSwap(true))
	if err != nil {
		if swapped, ok := parseSwappedDayFirst(s); ok {
			return sql.NullTime{Time: swapped, Valid: true}
		}
		logger.L.Warn("Could not parse date, marking as missing", "value", s, "error", err)
		return sql.NullTime{}
	}
	return sql.NullTime{Time: TruncateToDate(t), Valid: true}
}

func parseSwappedDayFirst(s string) (time.Time, bool) {
	m := numericDatePattern.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if day <= 12 || month < 1 || month > 12 {
		return time.Time{}, false
	}
	if m[4] != "" {
		hour, _ := strconv.Atoi(m[4])
		minute, _ := strconv.Atoi(m[5])
		second, _ := strconv.Atoi(m[6])
		if hour > 23 || minute > 59 || second > 59 {
			return time.Time{}, false
		}
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// TruncateToDate drops the time of day, keeping the calendar date as written.
func TruncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DayKey formats a resolved date as YYYY-MM-DD, or "" for the missing marker.
func DayKey(d sql.NullTime) string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format(DayKeyFormat)
}

// MonthKey formats a resolved date as YYYY-MM, or "" for the missing marker.
func MonthKey(d sql.NullTime) string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format(MonthKeyFormat)
}
