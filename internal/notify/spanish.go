package notify

import (
	"fmt"
	"time"
)

// Spanish day and month names. The confirmation copy is user-facing Spanish,
// so dates are spelled out without relying on libc locales.
var spanishWeekdays = [...]string{
	time.Sunday:    "Domingo",
	time.Monday:    "Lunes",
	time.Tuesday:   "Martes",
	time.Wednesday: "Miércoles",
	time.Thursday:  "Jueves",
	time.Friday:    "Viernes",
	time.Saturday:  "Sábado",
}

var spanishMonths = [...]string{
	time.January:   "enero",
	time.February:  "febrero",
	time.March:     "marzo",
	time.April:     "abril",
	time.May:       "mayo",
	time.June:      "junio",
	time.July:      "julio",
	time.August:    "agosto",
	time.September: "septiembre",
	time.October:   "octubre",
	time.November:  "noviembre",
	time.December:  "diciembre",
}

// SpanishWeekday returns the capitalized Spanish weekday name, e.g. "Martes".
func SpanishWeekday(t time.Time) string {
	return spanishWeekdays[t.Weekday()]
}

// SpanishLongDate returns a date like "10 de noviembre".
func SpanishLongDate(t time.Time) string {
	return fmt.Sprintf("%d de %s", t.Day(), spanishMonths[t.Month()])
}
