package grid

import (
	"fmt"
	"math"
	"strings"
	"time"
)

var refLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006-1-2 15:4:5",
	"2006-1-2",
}

// DecodeTimes converts numeric time values with CF units ("hours since 1900-01-01")
// to UTC times.
func DecodeTimes(units string, values []float64) ([]time.Time, error) {
	unit, ref, err := parseCFUnits(units)
	if err != nil {
		return nil, err
	}
	out := make([]time.Time, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			return nil, fmt.Errorf("missing time value at index %d", i)
		}
		out[i] = ref.Add(time.Duration(math.Round(v * float64(unit))))
	}
	return out, nil
}

func parseCFUnits(units string) (time.Duration, time.Time, error) {
	parts := strings.SplitN(strings.TrimSpace(units), " since ", 2)
	if len(parts) != 2 {
		return 0, time.Time{}, fmt.Errorf("unsupported time units %q", units)
	}

	var unit time.Duration
	switch strings.ToLower(strings.TrimSpace(parts[0])) {
	case "seconds", "second", "secs", "sec", "s":
		unit = time.Second
	case "minutes", "minute", "mins", "min":
		unit = time.Minute
	case "hours", "hour", "hrs", "hr", "h":
		unit = time.Hour
	case "days", "day", "d":
		unit = 24 * time.Hour
	default:
		return 0, time.Time{}, fmt.Errorf("unsupported time unit %q", parts[0])
	}

	ref := strings.TrimSpace(parts[1])
	ref = strings.TrimSuffix(ref, " UTC")
	ref = strings.TrimSuffix(ref, "Z")
	for _, layout := range refLayouts {
		t, err := time.ParseInLocation(layout, ref, time.UTC)
		if err == nil {
			return unit, t, nil
		}
	}
	return 0, time.Time{}, fmt.Errorf("unsupported reference time %q", parts[1])
}

// describeStep turns the spacing of two times into "1 hour", "6 hours", "1 day" etc.
func describeStep(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	plural := func(n int64, word string) string {
		if n == 1 {
			return fmt.Sprintf("1 %s", word)
		}
		return fmt.Sprintf("%d %ss", n, word)
	}
	switch {
	case d == 0:
		return "0 seconds"
	case d%(24*time.Hour) == 0:
		return plural(int64(d/(24*time.Hour)), "day")
	case d%time.Hour == 0:
		return plural(int64(d/time.Hour), "hour")
	case d%time.Minute == 0:
		return plural(int64(d/time.Minute), "minute")
	default:
		return d.String()
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05")
}
