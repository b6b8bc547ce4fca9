package parser

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const currencyMarker = "€"

var (
	// day, month word, optional "." and optional 4-digit year: "4 avr. 2025", "15 janv"
	datePattern = regexp.MustCompile(`(?i)(\d{1,2})\s*([a-zàâäéèêëïîôöùûüÿ]+)\.?\s*(\d{4})?`)
	// €5.90, €1.234,56, € 1 234,56, €-12,00
	amountPattern = regexp.MustCompile(`€\s*([+-]?\d{1,3}(?:[,.\s]\d{3})*[,.]?\d{0,2})`)
	// standalone 20xx
	yearPattern = regexp.MustCompile(`\b(20\d{2})\b`)
)

// DateToken is a day + month name + optional year found in a line.
// Start and End are byte offsets into the normalized line.
type DateToken struct {
	Start int
	End   int
	Text  string
	Day   int
	Month string
	Year  int
	// HasYear is false when the token carries no year, in which case the
	// document or declared year applies.
	HasYear bool
}

// AmountToken is a currency-marked number found in a line.
type AmountToken struct {
	Start  int
	End    int
	Text   string // as matched, including the currency marker
	Number string // the numeric part only
}

// FindDateToken returns the leftmost date token in s.
func FindDateToken(s string) (DateToken, bool) {
	m := datePattern.FindStringSubmatchIndex(s)
	if m == nil {
		return DateToken{}, false
	}

	tok := DateToken{
		Start: m[0],
		End:   m[1],
		Text:  s[m[0]:m[1]],
		Month: s[m[4]:m[5]],
	}
	tok.Day, _ = strconv.Atoi(s[m[2]:m[3]])
	if m[6] >= 0 {
		tok.Year, _ = strconv.Atoi(s[m[6]:m[7]])
		tok.HasYear = true
	}
	return tok, true
}

// FindAmountTokens returns every amount token in s, left to right.
func FindAmountTokens(s string) []AmountToken {
	matches := amountPattern.FindAllStringSubmatchIndex(s, -1)
	if matches == nil {
		return nil
	}

	tokens := make([]AmountToken, 0, len(matches))
	for _, m := range matches {
		tokens = append(tokens, AmountToken{
			Start:  m[0],
			End:    m[1],
			Text:   s[m[0]:m[1]],
			Number: s[m[2]:m[3]],
		})
	}
	return tokens
}

// FindYearToken returns the first standalone year between 2000 and 2099.
func FindYearToken(s string) (int, bool) {
	m := yearPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return year, true
}

func hasDateToken(s string) bool {
	return datePattern.MatchString(s)
}

func hasAmountToken(s string) bool {
	return amountPattern.MatchString(s)
}

// normalizeLine composes accents and turns the no-break spaces OCR emits
// around French thousands groups into plain spaces.
func normalizeLine(line string) string {
	line = norm.NFC.String(line)
	line = strings.ReplaceAll(line, "\u00a0", " ")
	line = strings.ReplaceAll(line, "\u202f", " ")
	line = strings.ReplaceAll(line, "\u200b", "")
	return line
}
