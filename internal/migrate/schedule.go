package migrate

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	millisPerMinute = int64(60 * 1000)
	millisPerDay    = 24 * 60 * millisPerMinute
)

// ParseExpiryDays parses the legacy expiry field. Like the scheduler that
// wrote it, only the leading integer counts: "15", " 15" and "15 days" are
// all 15. Text without a leading integer is rejected.
func ParseExpiryDays(s string) (int64, error) {
	t := strings.TrimSpace(s)
	end := 0
	if end < len(t) && (t[end] == '-' || t[end] == '+') {
		end++
	}
	digits := end
	for end < len(t) && t[end] >= '0' && t[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, fmt.Errorf("expiry %q is not an integer number of days", s)
	}
	days, err := strconv.ParseInt(t[:end], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("expiry %q: %w", s, err)
	}
	return days, nil
}

// MinutesUntilDue is the jobToBeExecutedAfter offset: whole minutes from now
// until createdAt+expiryDays, rounded toward negative infinity. A negative
// result means the expiry has already passed and the job is due.
func MinutesUntilDue(createdAtMillis, expiryDays int64, now time.Time) int64 {
	delta := createdAtMillis + expiryDays*millisPerDay - now.UnixMilli()
	return floorDiv(delta, millisPerMinute)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
