// Package timefmt renders elapsed and remaining times for dashboard tables.
package timefmt

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Zero is returned for any non-positive or non-finite input.
const Zero = "0m"

// NoStart is shown in place of a ban start time that was never recorded.
const NoStart = "-"

const (
	msPerMinute   = 60000
	minutesPerDay = 1440
)

// Milliseconds formats a millisecond count as "Xd Xh Xm".
// Days are emitted only when non-zero, hours when non-zero or when days are present,
// minutes always. Anything below one minute is truncated.
func Milliseconds(ms float64) string {
	if math.IsNaN(ms) || math.IsInf(ms, 0) || ms <= 0 {
		return Zero
	}

	total := int64(math.Floor(ms / msPerMinute))
	days := total / minutesPerDay
	hours := (total % minutesPerDay) / 60
	minutes := total % 60

	parts := make([]string, 0, 3)
	if days > 0 {
		parts = append(parts, strconv.FormatInt(days, 10)+"d")
	}
	if hours > 0 || days > 0 {
		parts = append(parts, strconv.FormatInt(hours, 10)+"h")
	}
	parts = append(parts, strconv.FormatInt(minutes, 10)+"m")

	return strings.Join(parts, " ")
}

// Minutes formats a minute count, see Milliseconds.
func Minutes(m float64) string {
	if math.IsNaN(m) || math.IsInf(m, 0) || m <= 0 {
		return Zero
	}

	return Milliseconds(m * msPerMinute)
}

// Duration formats d, see Milliseconds.
func Duration(d time.Duration) string {
	return Milliseconds(float64(d.Milliseconds()))
}

// BanStart renders a ban start time as "dd/mm/yyyy, HH:MM" (24h) in loc,
// or NoStart for a zero time.
func BanStart(t time.Time, loc *time.Location) string {
	if t.IsZero() || t.Unix() <= 0 {
		return NoStart
	}
	if loc == nil {
		loc = time.UTC
	}

	return t.In(loc).Format("02/01/2006, 15:04")
}
