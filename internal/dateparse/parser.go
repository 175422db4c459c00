package dateparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// TemporalValue is the canonical result of parsing free-form deadline text.
// Exactly one of three shapes holds: a point (End nil, Ongoing false), a
// range (End non-nil), or an open-ended interval (Ongoing true, End nil).
type TemporalValue struct {
	Start   time.Time
	End     *time.Time
	Ongoing bool
}

// IsRange reports whether the value covers an explicit closed interval.
func (v *TemporalValue) IsRange() bool {
	return v != nil && v.End != nil
}

const (
	minYear = 2000
	maxYear = 2100
)

// Quarters resolve to a fixed representative month rather than the
// calendar quarter start, so "Q1" lands mid-quarter instead of Jan 1.
var quarterMonth = [5]time.Month{0, time.February, time.May, time.August, time.November}

// rangeEndDay is the day-of-month used for the end of month and quarter
// ranges. 28 exists in every month, so no month-length arithmetic is needed.
const rangeEndDay = 28

var ongoingLiterals = map[string]bool{
	"ongoing":    true,
	"continuous": true,
	"tbd":        true,
	"indefinite": true,
}

const monthPat = `(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:tember|t)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)`

// Hyphen, en dash and em dash are all accepted as range separators.
const dashPat = `\s*[-–—]\s*`

var (
	reMonthRangeTwoYears = regexp.MustCompile(`^` + monthPat + `\s+(\d{4})` + dashPat + monthPat + `\s+(\d{4})$`)
	reMonthRangeOneYear  = regexp.MustCompile(`^` + monthPat + dashPat + monthPat + `\s+(\d{4})$`)
	reQuarterRange       = regexp.MustCompile(`^q([1-4])` + dashPat + `q([1-4])\s+(\d{4})$`)
	reYearRange          = regexp.MustCompile(`^(\d{4})` + dashPat + `(\d{4})$`)
	reFiscalYear         = regexp.MustCompile(`^(?:fy\s*(\d{2}|\d{4})|fiscal\s+year\s+(\d{4}))$`)
	reQuarter            = regexp.MustCompile(`^(?:q([1-4])|quarter\s+([1-4])(?:\s+of)?)\s+(\d{4})$`)
	reSeason             = regexp.MustCompile(`^(spring|summer|fall|autumn|winter)\s+(\d{4})$`)
	reMonthYear          = regexp.MustCompile(`^(?:by\s+)?` + monthPat + `\s+(\d{4})$`)
	reVague              = regexp.MustCompile(`^(early|mid|late)[-\s](\d{4})$`)
	reEndOfYear          = regexp.MustCompile(`^(?:by\s+)?(?:the\s+)?end\s+of\s+(\d{4})$`)
	reStartOfYear        = regexp.MustCompile(`^(?:starting\s+in|beginning\s+(?:of|in))\s+(\d{4})$`)
	reByYear             = regexp.MustCompile(`^by\s+(\d{4})$`)
	reBareYear           = regexp.MustCompile(`^(\d{4})$`)
)

var seasonMonth = map[string]time.Month{
	"spring": time.April,
	"summer": time.July,
	"fall":   time.October,
	"autumn": time.October,
	"winter": time.January, // of the following year
}

var monthNames = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// Layouts tried by the generic calendar fallback, most specific first.
var fallbackLayouts = []string{
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"2 January 2006",
	"01/02/2006",
}

// Parse resolves free-form deadline text against the current date.
// It returns nil when no strategy matches; it never panics on bad input.
func Parse(text string) *TemporalValue {
	return ParseAt(text, time.Now())
}

// ParseAt is the deterministic core of Parse. The today argument is only
// consulted for ongoing literals, which anchor at the current date.
//
// Strategy order matters: range patterns run before single-date patterns
// and the bare-year heuristic runs last, because looser patterns would
// otherwise match substrings of richer expressions ("Q1 2026" contains
// "2026").
func ParseAt(text string, today time.Time) *TemporalValue {
	norm := strings.ToLower(strings.TrimSpace(text))
	if norm == "" {
		return nil
	}

	if ongoingLiterals[norm] {
		return &TemporalValue{Start: midnight(today), Ongoing: true}
	}

	if v := parseRange(norm); v != nil {
		return v
	}
	if v := parseFiscalYear(norm); v != nil {
		return v
	}
	if v := parseQuarter(norm); v != nil {
		return v
	}
	if v := parseSeason(norm); v != nil {
		return v
	}
	if v := parseMonthYear(norm); v != nil {
		return v
	}
	if v := parseVague(norm); v != nil {
		return v
	}
	if v := parseEndOfYear(norm); v != nil {
		return v
	}
	if v := parseStartOfYear(norm); v != nil {
		return v
	}
	if v := parseBareYear(norm); v != nil {
		return v
	}
	return parseFallback(text)
}

func parseRange(norm string) *TemporalValue {
	// Two explicit years is the most specific pattern and must run before
	// the shared-year variant, which would otherwise swallow its prefix.
	if m := reMonthRangeTwoYears.FindStringSubmatch(norm); m != nil {
		y1, _ := strconv.Atoi(m[2])
		y2, _ := strconv.Atoi(m[4])
		return monthRange(y1, monthNames[m[1][:3]], y2, monthNames[m[3][:3]])
	}
	if m := reMonthRangeOneYear.FindStringSubmatch(norm); m != nil {
		y, _ := strconv.Atoi(m[3])
		return monthRange(y, monthNames[m[1][:3]], y, monthNames[m[2][:3]])
	}
	if m := reQuarterRange.FindStringSubmatch(norm); m != nil {
		q1, _ := strconv.Atoi(m[1])
		q2, _ := strconv.Atoi(m[2])
		y, _ := strconv.Atoi(m[3])
		return monthRange(y, quarterMonth[q1], y, quarterMonth[q2])
	}
	if m := reYearRange.FindStringSubmatch(norm); m != nil {
		y1, _ := strconv.Atoi(m[1])
		y2, _ := strconv.Atoi(m[2])
		if !yearInRange(y1) || !yearInRange(y2) {
			return nil
		}
		if y2 < y1 {
			y1, y2 = y2, y1
		}
		end := date(y2, time.December, 31)
		return &TemporalValue{Start: date(y1, time.January, 1), End: &end}
	}
	return nil
}

// monthRange builds a closed range from the first day of the start period
// to day 28 of the end period. Reversed periods are swapped before the day
// anchors are applied, so End is never before Start.
func monthRange(y1 int, m1 time.Month, y2 int, m2 time.Month) *TemporalValue {
	if y2 < y1 || (y2 == y1 && m2 < m1) {
		y1, y2 = y2, y1
		m1, m2 = m2, m1
	}
	end := date(y2, m2, rangeEndDay)
	return &TemporalValue{Start: date(y1, m1, 1), End: &end}
}

// Fiscal years resolve to September 30, the end of the US federal fiscal
// year. Two-digit forms are interpreted as 2000+NN.
func parseFiscalYear(norm string) *TemporalValue {
	m := reFiscalYear.FindStringSubmatch(norm)
	if m == nil {
		return nil
	}
	raw := m[1]
	if raw == "" {
		raw = m[2]
	}
	y, _ := strconv.Atoi(raw)
	if len(raw) == 2 {
		y += 2000
	}
	return &TemporalValue{Start: date(y, time.September, 30)}
}

func parseQuarter(norm string) *TemporalValue {
	m := reQuarter.FindStringSubmatch(norm)
	if m == nil {
		return nil
	}
	raw := m[1]
	if raw == "" {
		raw = m[2]
	}
	q, _ := strconv.Atoi(raw)
	y, _ := strconv.Atoi(m[3])
	return &TemporalValue{Start: date(y, quarterMonth[q], 1)}
}

// Winter spans the year boundary and is anchored to its later half, so
// "winter 2026" resolves to January 2027.
func parseSeason(norm string) *TemporalValue {
	m := reSeason.FindStringSubmatch(norm)
	if m == nil {
		return nil
	}
	y, _ := strconv.Atoi(m[2])
	if m[1] == "winter" {
		y++
	}
	return &TemporalValue{Start: date(y, seasonMonth[m[1]], 1)}
}

func parseMonthYear(norm string) *TemporalValue {
	m := reMonthYear.FindStringSubmatch(norm)
	if m == nil {
		return nil
	}
	y, _ := strconv.Atoi(m[2])
	return &TemporalValue{Start: date(y, monthNames[m[1][:3]], 1)}
}

func parseVague(norm string) *TemporalValue {
	m := reVague.FindStringSubmatch(norm)
	if m == nil {
		return nil
	}
	y, _ := strconv.Atoi(m[2])
	switch m[1] {
	case "early":
		return &TemporalValue{Start: date(y, time.March, 1)}
	case "mid":
		return &TemporalValue{Start: date(y, time.July, 1)}
	default:
		return &TemporalValue{Start: date(y, time.November, 1)}
	}
}

func parseEndOfYear(norm string) *TemporalValue {
	m := reEndOfYear.FindStringSubmatch(norm)
	if m == nil {
		return nil
	}
	y, _ := strconv.Atoi(m[1])
	return &TemporalValue{Start: date(y, time.December, 31)}
}

func parseStartOfYear(norm string) *TemporalValue {
	m := reStartOfYear.FindStringSubmatch(norm)
	if m == nil {
		return nil
	}
	y, _ := strconv.Atoi(m[1])
	return &TemporalValue{Start: date(y, time.January, 1)}
}

// Bare years keep two distinct anchors: "by 2026" reads as a deadline and
// resolves to January 1, while a lone "2026" resolves to the July 1
// midpoint. The [2000, 2100] window keeps unrelated 4-digit numbers from
// matching.
func parseBareYear(norm string) *TemporalValue {
	if m := reByYear.FindStringSubmatch(norm); m != nil {
		y, _ := strconv.Atoi(m[1])
		if !yearInRange(y) {
			return nil
		}
		return &TemporalValue{Start: date(y, time.January, 1)}
	}
	if m := reBareYear.FindStringSubmatch(norm); m != nil {
		y, _ := strconv.Atoi(m[1])
		if !yearInRange(y) {
			return nil
		}
		return &TemporalValue{Start: date(y, time.July, 1)}
	}
	return nil
}

func parseFallback(text string) *TemporalValue {
	raw := strings.TrimSpace(text)
	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &TemporalValue{Start: midnight(t)}
		}
	}
	return nil
}

func yearInRange(y int) bool {
	return y >= minYear && y <= maxYear
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
