package reminder

import (
	"fmt"
	"math"
	"time"

	"github.com/robfig/cron/v3"
)

// dailyCronParser accepts standard five-field cron expressions.
var dailyCronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// NextDailyRun computes the next fire time of the daily batch in the given
// location. With the default "0 8 * * *" spec, a clock at 07:00 local yields
// today 08:00 and a clock at 09:00 yields tomorrow 08:00 — a process started
// after the anchor never fires the daily batch immediately.
func NextDailyRun(now time.Time, loc *time.Location, cronSpec string) (time.Time, error) {
	schedule, err := dailyCronParser.Parse(cronSpec)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid daily cron expression %q: %w", cronSpec, err)
	}
	return schedule.Next(now.In(loc)), nil
}

// StartOfDay truncates an instant to local midnight.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// DaysBetween returns the signed number of days from b to a, rounding the
// raw difference so DST transitions and minor clock skew do not shift a
// 23- or 25-hour day off by one.
func DaysBetween(a, b time.Time) int {
	return int(math.Round(a.Sub(b).Hours() / 24))
}
