package entity

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	PrimaryRate   = 0.10
	RecurringRate = 0.03
)

// MonthKey is a calendar month at year+month granularity.
type MonthKey struct {
	Year  int
	Month time.Month
}

func MonthKeyOf(t time.Time) MonthKey {
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

func (k MonthKey) Before(o MonthKey) bool {
	if k.Year != o.Year {
		return k.Year < o.Year
	}
	return k.Month < o.Month
}

func (k MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month))
}

// FirstInstant is the first instant of the month in UTC.
func (k MonthKey) FirstInstant() time.Time {
	return time.Date(k.Year, k.Month, 1, 0, 0, 0, 0, time.UTC)
}

var monthPrefix = regexp.MustCompile(`^(\d{4})-(\d{2})`)

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseMonthKey reduces an ISO timestamp or a YYYY-MM string to its month.
// Full timestamps are read in the zone they carry.
func ParseMonthKey(s string) (MonthKey, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return MonthKey{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return MonthKeyOf(t), true
		}
	}
	m := monthPrefix.FindStringSubmatch(s)
	if m == nil {
		return MonthKey{}, false
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return MonthKey{}, false
	}
	month, err := strconv.Atoi(m[2])
	if err != nil || month < 1 || month > 12 {
		return MonthKey{}, false
	}
	return MonthKey{Year: year, Month: time.Month(month)}, true
}

// CommissionFigures are nil when not applicable.
type CommissionFigures struct {
	Primary   *float64 `json:"commission"`
	Recurring *float64 `json:"recurringCommission"`
}

// ValidAmount reports whether a closed amount is a finite, non-negative number.
func ValidAmount(amount float64) bool {
	return !math.IsNaN(amount) && !math.IsInf(amount, 0) && amount >= 0
}

// Commission derives the primary (10%) and recurring (3%) commission for a
// closed deal. The recurring part is only payable once the closed month lies
// strictly before the month of now.
func Commission(amount *float64, closedMonth *string, now time.Time) CommissionFigures {
	var out CommissionFigures
	if amount == nil || !ValidAmount(*amount) {
		return out
	}
	primary := roundCents(*amount * PrimaryRate)
	out.Primary = &primary

	if closedMonth == nil {
		return out
	}
	key, ok := ParseMonthKey(*closedMonth)
	if !ok || !key.Before(MonthKeyOf(now)) {
		return out
	}
	recurring := roundCents(*amount * RecurringRate)
	out.Recurring = &recurring
	return out
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
