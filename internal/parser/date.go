package parser

import (
	"fmt"
	"time"
)

const isoDate = "2006-01-02"

// ParseDate converts a French date token such as "4 avr. 2025" or "15 janv"
// to YYYY-MM-DD. fallbackYear is used when the token has no year; pass 0
// when there is none.
func ParseDate(raw string, fallbackYear int) (string, error) {
	return French().ParseDate(raw, fallbackYear)
}

// ParseDate converts a date token to YYYY-MM-DD using this locale's month
// names. Impossible dates such as 31 April are rejected, not clamped.
func (l *Locale) ParseDate(raw string, fallbackYear int) (string, error) {
	tok, ok := FindDateToken(normalizeLine(raw))
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrNoDate, raw)
	}
	return l.resolveDate(tok, fallbackYear)
}

func (l *Locale) resolveDate(tok DateToken, fallbackYear int) (string, error) {
	month, ok := l.Month(tok.Month)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMonth, tok.Month)
	}

	year := tok.Year
	if !tok.HasYear {
		if fallbackYear <= 0 {
			return "", fmt.Errorf("%w: %q", ErrNoYear, tok.Text)
		}
		year = fallbackYear
	}
	if year < 1 {
		return "", fmt.Errorf("%w: year %04d in %q", ErrInvalidDate, year, tok.Text)
	}

	t := time.Date(year, month, tok.Day, 0, 0, 0, 0, time.UTC)
	if tok.Day < 1 || t.Day() != tok.Day || t.Month() != month || t.Year() != year {
		return "", fmt.Errorf("%w: day %d of %s %d", ErrInvalidDate, tok.Day, month, year)
	}
	return t.Format(isoDate), nil
}
