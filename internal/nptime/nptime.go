// Package nptime is the single authority for calendar-day bucketing.
//
// Study days are counted in Nepal time (UTC+5:45). The zone has no daylight
// saving, so a fixed offset is safe: the day string is produced by a real
// timezone-aware formatter, while day boundaries for instant-range queries
// are derived with plain fixed-offset arithmetic. No other package may
// compute "today" on its own.
package nptime

import (
	"fmt"
	"time"
)

const dayLayout = "2006-01-02"

// Location is the fixed UTC+5:45 zone used for all day bucketing.
var Location = time.FixedZone("Asia/Kathmandu", 5*3600+45*60)

// DayString formats an instant as its YYYY-MM-DD calendar date in Nepal
// time, independent of server locale.
func DayString(t time.Time) string {
	return t.In(Location).Format(dayLayout)
}

// AddDays shifts an instant by n whole days. Used to compute "yesterday"
// for streak comparison, not for precise local-time arithmetic.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// StartOfDayUTC returns the UTC instant of 00:00:00 Nepal time on the given
// YYYY-MM-DD day.
func StartOfDayUTC(day string) (time.Time, error) {
	local, err := time.ParseInLocation(dayLayout, day, Location)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day %q: %w", day, err)
	}
	return local.UTC(), nil
}

// EndOfDayUTCExclusive returns StartOfDayUTC(day) + 24h, the exclusive upper
// bound for instant-range queries over that day.
func EndOfDayUTCExclusive(day string) (time.Time, error) {
	start, err := StartOfDayUTC(day)
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(24 * time.Hour), nil
}
