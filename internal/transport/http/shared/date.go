package shared

import "time"

// ParseDate accepts YYYY-MM-DD or an RFC3339 timestamp.
func ParseDate(value string) (time.Time, error) {
	if parsed, err := time.Parse(dateLayout, value); err == nil {
		return parsed, nil
	}
	return time.Parse(time.RFC3339, value)
}
