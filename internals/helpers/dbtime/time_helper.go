package dbtime

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

// LoadLocation: nama timezone dari config (mis. "Asia/Kolkata"), fallback UTC.
func LoadLocation(name string) *time.Location {
	name = strings.TrimSpace(name)
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Warnw("unknown timezone, falling back to UTC", "timezone", name, "err", err)
		return time.UTC
	}
	return loc
}

// DayOf: tengah malam (00:00) tanggal t di loc.
func DayOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

// Clock dipakai service supaya "sekarang" bisa dipatok di test.
type Clock func() time.Time

func (c Clock) Now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}
