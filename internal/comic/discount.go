package comic

import (
	"time"
	"unicode/utf8"
)

// HasDiscount reports whether a comic is discounted on the given ISO weekday
// (1 = Monday ... 7 = Sunday). The last character of the ISBN picks the day.
func HasDiscount(isbn string, weekday int) bool {
	if isbn == "" {
		return false
	}
	last, _ := utf8.DecodeLastRuneInString(isbn)
	d := int(last - '0')
	return weekday-(d+2)/2 == 1
}

// ISOWeekday converts a time to 1 = Monday ... 7 = Sunday.
func ISOWeekday(t time.Time) int {
	if wd := t.Weekday(); wd != time.Sunday {
		return int(wd)
	}
	return 7
}
