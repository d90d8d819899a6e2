package envelope

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// timestampLayouts are tried in order for string timestamps.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// maxEpochMillis is 9999-12-31T23:59:59.999Z; numbers beyond it in either
// direction are not timestamps.
const maxEpochMillis = 253402300799999

// ParseTimestamp accepts an ISO-8601 string or a number of epoch
// milliseconds. Anything else, including a missing field, yields the zero
// time.
func ParseTimestamp(raw json.RawMessage) time.Time {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return time.Time{}
		}

		return parseTimestampString(s)
	}

	if ms, err := strconv.ParseInt(string(raw), 10, 64); err == nil {
		return fromEpochMillis(ms)
	}

	// Exponent or fraction forms; fractional milliseconds are truncated.
	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil || math.IsNaN(f) || math.Abs(f) > maxEpochMillis {
		return time.Time{}
	}

	return fromEpochMillis(int64(f))
}

func fromEpochMillis(ms int64) time.Time {
	if ms > maxEpochMillis || ms < -maxEpochMillis {
		return time.Time{}
	}

	return time.UnixMilli(ms).UTC()
}

func parseTimestampString(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}

	// Some servers stringify epoch millis.
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return fromEpochMillis(ms)
	}

	return time.Time{}
}

func formatTimestamp(t time.Time) json.RawMessage {
	if t.IsZero() {
		return nil
	}

	data, _ := json.Marshal(t.UTC().Format(time.RFC3339Nano))

	return data
}
