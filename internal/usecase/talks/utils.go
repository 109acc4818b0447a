package talks

import "time"

func nowUTCString() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// daysSince returns whole days between an RFC3339 timestamp and now;
// unparseable or empty input yields zero.
func daysSince(ts string, now time.Time) int {
	if ts == "" {
		return 0
	}
	parsed, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		if parsed, err = time.Parse(time.RFC3339, ts); err != nil {
			return 0
		}
	}
	days := int(now.Sub(parsed).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
