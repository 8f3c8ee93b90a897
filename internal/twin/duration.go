// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package twin

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// parseISO8601Duration parses the subset of ISO-8601 durations the twin
// document uses: PnDTnHnMnS, with the date part limited to whole days (no
// calendar-aware years/months — the snapshot/message-batching intervals
// this guards are all sub-day). There is no library in the example corpus
// for ISO-8601 durations, so this is hand-rolled; everything else in the
// twin package defers to encoding/json.
func parseISO8601Duration(s string) (time.Duration, error) {
	if s == "" || s[0] != 'P' {
		return 0, fmt.Errorf("twin: duration %q must start with 'P'", s)
	}
	rest := s[1:]

	var days time.Duration
	if idx := strings.IndexByte(rest, 'D'); idx >= 0 {
		n, err := strconv.Atoi(rest[:idx])
		if err != nil {
			return 0, fmt.Errorf("twin: invalid day component in %q: %w", s, err)
		}
		days = time.Duration(n) * 24 * time.Hour
		rest = rest[idx+1:]
	}

	if rest == "" {
		return days, nil
	}
	if rest[0] != 'T' {
		return 0, fmt.Errorf("twin: expected 'T' time designator in %q", s)
	}
	rest = rest[1:]

	var total time.Duration
	unit := map[byte]time.Duration{'H': time.Hour, 'M': time.Minute, 'S': time.Second}
	for len(rest) > 0 {
		i := 0
		for i < len(rest) && (rest[i] == '.' || (rest[i] >= '0' && rest[i] <= '9')) {
			i++
		}
		if i == 0 || i == len(rest) {
			return 0, fmt.Errorf("twin: malformed time component in %q", s)
		}
		numStr := rest[:i]
		designator := rest[i]
		mult, ok := unit[designator]
		if !ok {
			return 0, fmt.Errorf("twin: unknown designator %q in %q", string(designator), s)
		}
		n, err := strconv.ParseFloat(numStr, 64)
		if err != nil {
			return 0, fmt.Errorf("twin: invalid numeric component in %q: %w", s, err)
		}
		total += time.Duration(n * float64(mult))
		rest = rest[i+1:]
	}

	return days + total, nil
}

// formatISO8601Duration renders d back to an ISO-8601 duration string,
// using whole hours/minutes/seconds only (sufficient for the twin's own
// round-tripping; it never needs to render fractional seconds).
func formatISO8601Duration(d time.Duration) string {
	if d == 0 {
		return "PT0S"
	}
	var b strings.Builder
	b.WriteString("PT")
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	seconds := d / time.Second

	if hours > 0 {
		fmt.Fprintf(&b, "%dH", hours)
	}
	if minutes > 0 {
		fmt.Fprintf(&b, "%dM", minutes)
	}
	if seconds > 0 || (hours == 0 && minutes == 0) {
		fmt.Fprintf(&b, "%dS", seconds)
	}
	return b.String()
}
