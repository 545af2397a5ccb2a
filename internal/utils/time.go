package contextutils

import "time"

// LoadLocationOrUTC resolves an IANA time zone name, falling back to UTC when the
// name is empty or unknown. The effective zone name is returned alongside.
func LoadLocationOrUTC(name string) (*time.Location, string) {
	if name == "" {
		return time.UTC, "UTC"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC, "UTC"
	}
	return loc, name
}

// SameCalendarDay reports whether a and b fall on the same year, month and day in loc.
func SameCalendarDay(a, b time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}
