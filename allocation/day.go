package allocation

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// =============================================================================
// DAY KEY - "day1".."dayN", cycling Monday..Sunday
// =============================================================================

// DayKey identifies one day of the tip period.
type DayKey string

const dayKeyPrefix = "day"

var weekdays = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Day returns the key for the n-th day of the period (1-based).
func Day(n int) DayKey {
	return DayKey(dayKeyPrefix + strconv.Itoa(n))
}

// ParseDayKey validates s as a day key.
func ParseDayKey(s string) (DayKey, error) {
	key := DayKey(s)
	if _, ok := key.Number(); !ok {
		return "", fmt.Errorf("invalid day key %q: want %s<N> with N >= 1", s, dayKeyPrefix)
	}
	return key, nil
}

// Number returns the numeric suffix of the key. Only the canonical spelling
// counts: "day01" is not day 1.
func (d DayKey) Number() (int, bool) {
	s := string(d)
	if !strings.HasPrefix(s, dayKeyPrefix) {
		return 0, false
	}
	digits := s[len(dayKeyPrefix):]
	if digits == "" || strings.ContainsAny(digits, "+-") {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 || Day(n) != d {
		return 0, false
	}
	return n, true
}

// Index is the zero-based position of the day, or -1 for a malformed key.
func (d DayKey) Index() int {
	n, ok := d.Number()
	if !ok {
		return -1
	}
	return n - 1
}

// Weekday maps the key onto Monday..Sunday by (index mod 7).
func (d DayKey) Weekday() string {
	i := d.Index()
	if i < 0 {
		return ""
	}
	return weekdays[i%7]
}

// Label renders "<Weekday> - Day <N>".
func (d DayKey) Label() string {
	n, ok := d.Number()
	if !ok {
		return string(d)
	}
	return fmt.Sprintf("%s - Day %d", d.Weekday(), n)
}

// SortDayKeys orders keys by day number; malformed keys sort last by name.
func SortDayKeys(keys []DayKey) []DayKey {
	sort.SliceStable(keys, func(i, j int) bool {
		return dayLess(keys[i], keys[j])
	})
	return keys
}

func dayLess(a, b DayKey) bool {
	ai, bi := a.Index(), b.Index()
	switch {
	case ai < 0 && bi < 0:
		return a < b
	case ai < 0:
		return false
	case bi < 0:
		return true
	default:
		return ai < bi
	}
}

// =============================================================================
// TIME SPAN - Length of the tip period
// =============================================================================

type TimeSpan string

const (
	TimeSpanWeekly   TimeSpan = "Weekly"
	TimeSpanBiWeekly TimeSpan = "Bi-Weekly"
)

// ParseTimeSpan accepts the two supported period lengths.
func ParseTimeSpan(s string) (TimeSpan, error) {
	switch TimeSpan(s) {
	case TimeSpanWeekly, TimeSpanBiWeekly:
		return TimeSpan(s), nil
	default:
		return "", fmt.Errorf("unknown time span %q: want %q or %q", s, TimeSpanWeekly, TimeSpanBiWeekly)
	}
}

// Days is 7 for Weekly and 14 for Bi-Weekly, 0 otherwise.
func (t TimeSpan) Days() int {
	switch t {
	case TimeSpanWeekly:
		return 7
	case TimeSpanBiWeekly:
		return 14
	default:
		return 0
	}
}

// DayKeys lists day1..dayN for the span.
func (t TimeSpan) DayKeys() []DayKey {
	n := t.Days()
	keys := make([]DayKey, n)
	for i := range keys {
		keys[i] = Day(i + 1)
	}
	return keys
}

// Contains reports whether the key falls inside the span.
func (t TimeSpan) Contains(d DayKey) bool {
	n, ok := d.Number()
	return ok && n <= t.Days()
}
