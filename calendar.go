package main

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/gb"
)

// ---------------------------------------------------------------------------
// Business Calendar
// ---------------------------------------------------------------------------

// dayArgRegex validates a service day argument: D/M/YYYY or DD/MM/YYYY
var dayArgRegex = regexp.MustCompile(`^(0?[1-9]|[12][0-9]|3[01])/(0?[1-9]|1[0-2])/(20[0-9]{2})$`)

// newBusinessCalendar creates a calendar with the England & Wales bank
// holidays.
func newBusinessCalendar() *cal.BusinessCalendar {
	c := cal.NewBusinessCalendar()
	c.Name = "Brooks Waste"
	c.Description = "England & Wales bank holidays"
	c.AddHoliday(
		gb.NewYear,
		gb.GoodFriday,
		gb.EasterMonday,
		gb.EarlyMay,
		gb.SpringHoliday,
		gb.SummerHoliday,
		gb.ChristmasDay,
		gb.BoxingDay,
	)
	return c
}

// previousWorkday returns the last workday strictly before t, at midnight UTC.
func previousWorkday(c *cal.BusinessCalendar, t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	for {
		day = day.AddDate(0, 0, -1)
		if c.IsWorkday(day) {
			return day
		}
	}
}

// parseServiceDay resolves the day argument of the day command. An empty
// argument means the previous workday relative to now.
func parseServiceDay(arg string, now time.Time) (time.Time, error) {
	if arg == "" {
		return previousWorkday(newBusinessCalendar(), now), nil
	}
	m := dayArgRegex.FindStringSubmatch(arg)
	if m == nil {
		return time.Time{}, fmt.Errorf("invalid day %q, expected DD/MM/YYYY", arg)
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day {
		return time.Time{}, fmt.Errorf("invalid day %q: %s has no day %d", arg, time.Month(month), day)
	}
	return t, nil
}

// isoDate formats a day the way the records store it.
func isoDate(t time.Time) string {
	return t.Format("2006-01-02")
}
