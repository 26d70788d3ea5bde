package subtitle

import (
	"fmt"
	"math"
)

type TimestampOptions struct {
	// print "00:" even when the hour is zero
	AlwaysIncludeHours bool
	// separator between seconds and milliseconds; empty means "."
	DecimalMarker string
}

var (
	vttClock = TimestampOptions{}
	srtClock = TimestampOptions{AlwaysIncludeHours: true, DecimalMarker: ","}
)

// Milliseconds converts seconds to whole milliseconds using math.Round, so
// exact halves round away from zero (0.0625s -> 63ms). Negative and NaN
// input clamps to 0, values past the int64 range clamp to math.MaxInt64.
func Milliseconds(seconds float64) int64 {
	ms := math.Round(seconds * 1000)
	switch {
	case math.IsNaN(ms) || ms <= 0:
		return 0
	case ms >= math.MaxInt64:
		return math.MaxInt64
	}
	return int64(ms)
}

// FormatTimestamp renders seconds as [HH:]MM:SS<marker>mmm. The hour field
// is dropped only when it is zero and opts.AlwaysIncludeHours is false; it
// widens past two digits instead of wrapping.
func FormatTimestamp(seconds float64, opts TimestampOptions) string {
	ms := Milliseconds(seconds)

	hours := ms / 3_600_000
	ms -= hours * 3_600_000

	minutes := ms / 60_000
	ms -= minutes * 60_000

	secs := ms / 1_000
	ms -= secs * 1_000

	marker := opts.DecimalMarker
	if marker == "" {
		marker = "."
	}

	hoursMarker := ""
	if opts.AlwaysIncludeHours || hours > 0 {
		hoursMarker = fmt.Sprintf("%02d:", hours)
	}

	return fmt.Sprintf("%s%02d:%02d%s%03d", hoursMarker, minutes, secs, marker, ms)
}
