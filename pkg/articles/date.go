package articles

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when/rules"
	"github.com/olebedev/when/rules/en"

	"github.com/agentstation/docsync/pkg/constants"
)

var bareDate = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})[-/](\d{1,2})$`)

// dateLayouts are tried in order before written-out dates.
// Layouts without a zone are read as local calendar dates.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006.01.02",
	"1/2/2006",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"2 Jan 2006",
	"2 January 2006",
	"Mon Jan 2 2006",
	"Mon, Jan 2, 2006",
	time.RFC1123,
	time.RFC1123Z,
	time.UnixDate,
}

var (
	monthDay     = en.ExactMonthDate(rules.Override)
	trailingYear = regexp.MustCompile(`^(.*?)[\s,]+(\d{4})$`)
)

// NormalizeDate returns the value as YYYY-MM-DD, or "" when it is empty,
// "-" or cannot be read as a complete calendar date. The result never
// depends on the current time.
func NormalizeDate(value string) string {
	s := strings.TrimSpace(value)
	if s == "" || s == "-" {
		return ""
	}

	if m := bareDate.FindStringSubmatch(s); m != nil {
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		if month >= 1 && month <= 12 && day >= 1 && day <= 31 {
			return fmt.Sprintf("%s-%02d-%02d", m[1], month, day)
		}
		return ""
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t.In(time.Local).Format(constants.DateFormat)
		}
	}

	return writtenDate(s)
}

// writtenDate reads forms such as "3rd of March 2024" or "March 3rd, 2024".
// Day, month and a four-digit year must all be present.
func writtenDate(s string) string {
	m := trailingYear.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	rest := strings.TrimSpace(m[1])
	year, _ := strconv.Atoi(m[2])

	match := monthDay.Find(rest)
	if match == nil || !strings.EqualFold(match.Text, rest) {
		return ""
	}
	var c rules.Context
	ok, err := match.Apply(&c, &rules.Options{}, time.Time{})
	if err != nil || !ok || c.Month == nil || c.Day == nil {
		return ""
	}

	t := time.Date(year, time.Month(*c.Month), *c.Day, 0, 0, 0, 0, time.Local)
	if t.Day() != *c.Day {
		return ""
	}
	return t.Format(constants.DateFormat)
}
