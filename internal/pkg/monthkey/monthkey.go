package monthkey

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Key identifies one calendar month as stored in an account's
// last_update watermark ("M/YYYY", month not zero-padded).
type Key struct {
	Month int
	Year  int
}

// Parse parses a "M/YYYY" marker into a Key
func Parse(marker string) (Key, error) {
	parts := strings.Split(marker, "/")
	if len(parts) != 2 {
		return Key{}, fmt.Errorf("invalid month marker %q", marker)
	}

	month, err := strconv.Atoi(parts[0])
	if err != nil {
		return Key{}, fmt.Errorf("invalid month in marker %q", marker)
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return Key{}, fmt.Errorf("invalid year in marker %q", marker)
	}

	if month < 1 || month > 12 {
		return Key{}, fmt.Errorf("month out of range in marker %q", marker)
	}
	if year < 1 {
		return Key{}, fmt.Errorf("year out of range in marker %q", marker)
	}

	return Key{Month: month, Year: year}, nil
}

// Current returns the key for the month containing t
func Current(t time.Time) Key {
	return Key{Month: int(t.Month()), Year: t.Year()}
}

// String formats the key as a "M/YYYY" marker
func (k Key) String() string {
	return fmt.Sprintf("%d/%d", k.Month, k.Year)
}

// Next returns the immediately following calendar month,
// wrapping December to January of the next year
func (k Key) Next() Key {
	if k.Month == 12 {
		return Key{Month: 1, Year: k.Year + 1}
	}
	return Key{Month: k.Month + 1, Year: k.Year}
}

// Diff returns the number of month increments from start to end.
// Negative when end precedes start.
func Diff(start, end Key) int {
	return (end.Year-start.Year)*12 + (end.Month - start.Month)
}

// FirstOfMonth returns the first day of the month formatted as a
// US-locale date string (M/D/YYYY, no leading zeros). Payment
// history dates are stored in exactly this form.
func (k Key) FirstOfMonth() string {
	return fmt.Sprintf("%d/1/%d", k.Month, k.Year)
}

// PaymentDateLayout is the time.Parse layout matching FirstOfMonth output.
const PaymentDateLayout = "1/2/2006"

// YearOf extracts the calendar year from a stored payment date string
func YearOf(paymentDate string) (int, error) {
	t, err := time.Parse(PaymentDateLayout, paymentDate)
	if err != nil {
		return 0, fmt.Errorf("invalid payment date %q: %w", paymentDate, err)
	}
	return t.Year(), nil
}
