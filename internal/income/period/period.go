// Package period computes the earnings period: the 36-month trailing window of
// income months relevant to a benefit calculation, anchored to a calculation
// date via the monthly reporting deadline.
package period

import (
	"time"

	"inntektlager/pkg/domain"
)

// windowMonths is the length of the trailing earnings window.
const windowMonths = 36

// EarningsPeriod is derived from a calculation date and never persisted.
type EarningsPeriod struct {
	CalculationDate time.Time
	LastClosedMonth domain.Month
	FirstMonth      domain.Month
}

// For computes the earnings period for a calculation date.
//
// The nominal reporting deadline is the 5th of the calculation month. It is
// advanced day by day past weekends and holidays to the real deadline. On or
// before the real deadline the previous month is not yet reported, so the last
// closed month is the calculation month minus two; after the deadline it is
// minus one. FirstMonth trails LastClosedMonth by 35 months.
func For(calculationDate time.Time) EarningsPeriod {
	deadline := reportingDeadline(calculationDate)

	calcMonth := domain.MonthOf(calculationDate)
	var lastClosed domain.Month
	if !calculationDate.After(deadline) {
		lastClosed = calcMonth.AddMonths(-2)
	} else {
		lastClosed = calcMonth.AddMonths(-1)
	}

	return EarningsPeriod{
		CalculationDate: calculationDate,
		LastClosedMonth: lastClosed,
		FirstMonth:      lastClosed.AddMonths(-(windowMonths - 1)),
	}
}

// Contains reports whether a month falls inside the earnings window.
func (p EarningsPeriod) Contains(m domain.Month) bool {
	return !m.Before(p.FirstMonth) && !m.After(p.LastClosedMonth)
}

// reportingDeadline returns the first working day on or after the 5th of the
// calculation month.
func reportingDeadline(calculationDate time.Time) time.Time {
	day := time.Date(calculationDate.Year(), calculationDate.Month(), 5, 0, 0, 0, 0, calculationDate.Location())
	for !isWorkingDay(day) {
		day = day.AddDate(0, 0, 1)
	}
	// Compare against end of the deadline day so a calculation made any time
	// that day still counts as on the deadline.
	return day.AddDate(0, 0, 1).Add(-time.Nanosecond)
}

func isWorkingDay(day time.Time) bool {
	switch day.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return !isHoliday(day)
}

// isHoliday covers the Norwegian public holidays: the fixed-date ones plus the
// Easter-derived moveable feasts.
func isHoliday(day time.Time) bool {
	switch [2]int{int(day.Month()), day.Day()} {
	case [2]int{1, 1}, [2]int{5, 1}, [2]int{5, 17}, [2]int{12, 25}, [2]int{12, 26}:
		return true
	}

	easter := easterSunday(day.Year())
	for _, offset := range []int{-3, -2, 0, 1, 39, 49, 50} {
		// Maundy Thursday, Good Friday, Easter Sunday, Easter Monday,
		// Ascension Day, Whit Sunday, Whit Monday.
		holiday := easter.AddDate(0, 0, offset)
		if day.Month() == holiday.Month() && day.Day() == holiday.Day() {
			return true
		}
	}
	return false
}

// easterSunday computes Gregorian Easter with the anonymous Gauss algorithm.
func easterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	dayOfMonth := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), dayOfMonth, 0, 0, 0, 0, time.UTC)
}
