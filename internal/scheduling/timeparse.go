package scheduling

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ParseError reports a time or date expression outside the accepted grammar.
// Callers surface it as a clarification request, never as a hard failure.
type ParseError struct {
	Expr   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("scheduling: cannot parse %q: %s", e.Expr, e.Reason)
}

var timeExprRE = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?\s*(am|pm)?$`)

// ResolveTime turns a human time expression ("1pm", "13:00", "2") plus an
// optional date expression ("today", "tomorrow", "2026-09-14"; empty means
// today) into a UTC instant, anchored to now in the given location.
//
// A bare hour without am/pm in 1..7 is read as PM: in a walk-in clinic or
// salon "book me at 2" means 14:00, not 02:00. When no explicit date was
// given and the resolved local instant has already passed, the result rolls
// forward one day so the caller always gets the closest upcoming slot.
func ResolveTime(timeExpr, dateExpr string, loc *time.Location, now time.Time) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}

	hour, minute, err := parseClock(timeExpr)
	if err != nil {
		return time.Time{}, err
	}

	localNow := now.In(loc)
	day := localNow
	explicitDate := false
	switch expr := strings.ToLower(strings.TrimSpace(dateExpr)); expr {
	case "", "today":
	case "tomorrow":
		day = localNow.AddDate(0, 0, 1)
		explicitDate = true
	default:
		parsed, perr := time.ParseInLocation("2006-01-02", expr, loc)
		if perr != nil {
			return time.Time{}, &ParseError{Expr: dateExpr, Reason: "expected today, tomorrow, or YYYY-MM-DD"}
		}
		day = parsed
		explicitDate = true
	}

	resolved := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc)
	if !explicitDate && !resolved.After(localNow) {
		resolved = resolved.AddDate(0, 0, 1)
	}
	return resolved.UTC(), nil
}

// parseClock parses the time grammar into a 24-hour clock pair.
func parseClock(timeExpr string) (hour, minute int, err error) {
	expr := strings.ToLower(strings.TrimSpace(timeExpr))
	m := timeExprRE.FindStringSubmatch(expr)
	if m == nil {
		return 0, 0, &ParseError{Expr: timeExpr, Reason: "expected forms like 2, 2pm, 14:00, 2:30pm"}
	}

	hour, _ = strconv.Atoi(m[1])
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	if hour > 23 || minute > 59 {
		return 0, 0, &ParseError{Expr: timeExpr, Reason: "hour or minute out of range"}
	}

	switch m[3] {
	case "pm":
		if hour > 12 {
			return 0, 0, &ParseError{Expr: timeExpr, Reason: "hour out of range for pm"}
		}
		if hour != 12 {
			hour += 12
		}
	case "am":
		if hour > 12 {
			return 0, 0, &ParseError{Expr: timeExpr, Reason: "hour out of range for am"}
		}
		if hour == 12 {
			hour = 0
		}
	default:
		// Business-hours bias: a bare 1-7 means afternoon.
		if hour >= 1 && hour <= 7 {
			hour += 12
		}
	}
	return hour, minute, nil
}

// ResolveDay resolves a date expression to local midnight of that day.
// Unlike ResolveTime there is no rollover: "today" is today even though
// midnight has passed.
func ResolveDay(dateExpr string, loc *time.Location, now time.Time) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	localNow := now.In(loc)
	switch expr := strings.ToLower(strings.TrimSpace(dateExpr)); expr {
	case "", "today":
		return time.Date(localNow.Year(), localNow.Month(), localNow.Day(), 0, 0, 0, 0, loc), nil
	case "tomorrow":
		return time.Date(localNow.Year(), localNow.Month(), localNow.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1), nil
	default:
		parsed, err := time.ParseInLocation("2006-01-02", expr, loc)
		if err != nil {
			return time.Time{}, &ParseError{Expr: dateExpr, Reason: "expected today, tomorrow, or YYYY-MM-DD"}
		}
		return parsed, nil
	}
}

// DayBounds returns the UTC instants for local midnight-to-midnight of the
// day containing t, evaluated in loc. Used to scope "appointments on this
// date" queries.
func DayBounds(t time.Time, loc *time.Location) (start, end time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	start = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc).UTC()
	end = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1).UTC()
	return start, end
}

// LoadLocation validates an IANA zone name, falling back to UTC when the
// name is empty or unknown.
func LoadLocation(name string) *time.Location {
	if strings.TrimSpace(name) == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
