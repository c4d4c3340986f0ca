package schedule

import (
	"fmt"
	"strings"
	"time"
)

const (
	ClockLayout = "15:04"
	DateLayout  = "2006-01-02"
)

// Clock es una hora de pared (sin fecha ni zona).
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock acepta "HH:MM" y también "HH:MM:SS" (formato de columnas time).
// Los segundos se descartan.
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{ClockLayout, "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return Clock{Hour: t.Hour(), Minute: t.Minute()}, nil
		}
	}
	return Clock{}, &ParseError{Layout: "HH:MM", Value: s}
}

// Add suma horas con wrap a 24h. El cambio de día lo maneja quien llama.
func (c Clock) Add(hours int) Clock {
	h := (c.Hour + hours) % 24
	if h < 0 {
		h += 24
	}
	return Clock{Hour: h, Minute: c.Minute}
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// ParseDate parsea "YYYY-MM-DD" a medianoche UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, &ParseError{Layout: "YYYY-MM-DD", Value: s}
	}
	return t, nil
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DayOf devuelve el día calendario de t (en su propia zona) como medianoche UTC,
// para poder comparar con fechas parseadas por ParseDate.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
