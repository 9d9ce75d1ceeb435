package schema

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Period is a canonical time bucket label derived from a timestamp under a
// chosen granularity: "2024" (yearly), "2024-H1" (semiannual), "2024-Q3"
// (quarterly), or "2024-07" (monthly). Labels of one granularity sort
// chronologically as plain strings.
type Period string

// PeriodOf maps a timestamp to its calendar period under the granularity.
func PeriodOf(t time.Time, g Granularity) Period {
	year := t.Year()
	month := int(t.Month())
	switch g {
	case Yearly:
		return Period(strconv.Itoa(year))
	case Semiannual:
		half := 1
		if month > 6 {
			half = 2
		}
		return Period(fmt.Sprintf("%d-H%d", year, half))
	case Quarterly:
		quarter := (month-1)/3 + 1
		return Period(fmt.Sprintf("%d-Q%d", year, quarter))
	default: // Monthly
		return Period(fmt.Sprintf("%d-%02d", year, month))
	}
}

// parsePeriod splits a period label into its granularity, year, and
// zero-based sub-index within the year (0 for yearly).
func parsePeriod(p Period) (Granularity, int, int, error) {
	s := string(p)
	if !strings.Contains(s, "-") {
		year, err := strconv.Atoi(s)
		if err != nil {
			return "", 0, 0, fmt.Errorf("invalid period %q", p)
		}
		return Yearly, year, 0, nil
	}

	parts := strings.SplitN(s, "-", 2)
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return "", 0, 0, fmt.Errorf("invalid period %q", p)
	}

	suffix := parts[1]
	switch {
	case strings.HasPrefix(suffix, "H"):
		half, err := strconv.Atoi(suffix[1:])
		if err != nil || half < 1 || half > 2 {
			return "", 0, 0, fmt.Errorf("invalid period %q", p)
		}
		return Semiannual, year, half - 1, nil
	case strings.HasPrefix(suffix, "Q"):
		quarter, err := strconv.Atoi(suffix[1:])
		if err != nil || quarter < 1 || quarter > 4 {
			return "", 0, 0, fmt.Errorf("invalid period %q", p)
		}
		return Quarterly, year, quarter - 1, nil
	default:
		month, err := strconv.Atoi(suffix)
		if err != nil || month < 1 || month > 12 {
			return "", 0, 0, fmt.Errorf("invalid period %q", p)
		}
		return Monthly, year, month - 1, nil
	}
}

// PeriodSpan returns the half-open calendar span [start, end) of a period.
func PeriodSpan(p Period) (time.Time, time.Time, error) {
	g, year, sub, err := parsePeriod(p)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	var startMonth, months int
	switch g {
	case Yearly:
		startMonth, months = 1, 12
	case Semiannual:
		startMonth, months = sub*6+1, 6
	case Quarterly:
		startMonth, months = sub*3+1, 3
	default:
		startMonth, months = sub+1, 1
	}

	start := time.Date(year, time.Month(startMonth), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, months, 0)
	return start, end, nil
}

// PeriodIndex returns a sequential index for a period so that consecutive
// calendar buckets of the same granularity differ by exactly one.
func PeriodIndex(p Period) (int, error) {
	g, year, sub, err := parsePeriod(p)
	if err != nil {
		return 0, err
	}
	switch g {
	case Yearly:
		return year, nil
	case Semiannual:
		return year*2 + sub, nil
	case Quarterly:
		return year*4 + sub, nil
	default:
		return year*12 + sub, nil
	}
}

// PeriodDistance returns b - a in whole periods. Both labels must share the
// same granularity.
func PeriodDistance(a, b Period) (int, error) {
	ga, _, _, err := parsePeriod(a)
	if err != nil {
		return 0, err
	}
	gb, _, _, err := parsePeriod(b)
	if err != nil {
		return 0, err
	}
	if ga != gb {
		return 0, fmt.Errorf("periods %q and %q have different granularities", a, b)
	}
	ia, err := PeriodIndex(a)
	if err != nil {
		return 0, err
	}
	ib, err := PeriodIndex(b)
	if err != nil {
		return 0, err
	}
	return ib - ia, nil
}

// ComparePeriods orders two periods chronologically by their span start.
// It returns a negative value when a precedes b, zero when equal, and a
// positive value otherwise.
func ComparePeriods(a, b Period) int {
	sa, _, errA := PeriodSpan(a)
	sb, _, errB := PeriodSpan(b)
	if errA != nil || errB != nil {
		return strings.Compare(string(a), string(b))
	}
	return sa.Compare(sb)
}

// PeriodsBetween enumerates every period of the granularity from first to
// last inclusive.
func PeriodsBetween(first, last Period) ([]Period, error) {
	start, _, err := PeriodSpan(first)
	if err != nil {
		return nil, err
	}
	g, _, _, err := parsePeriod(first)
	if err != nil {
		return nil, err
	}
	if _, _, _, err := parsePeriod(last); err != nil {
		return nil, err
	}

	var periods []Period
	cur := start
	for {
		p := PeriodOf(cur, g)
		periods = append(periods, p)
		if p == last {
			return periods, nil
		}
		if ComparePeriods(p, last) > 0 {
			return nil, fmt.Errorf("period %q precedes %q", last, first)
		}
		_, end, err := PeriodSpan(p)
		if err != nil {
			return nil, err
		}
		cur = end
	}
}
