package parser

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/insightdelivered/statement-ocr/internal/models"
)

// Reasons a line yields no transaction.
var (
	ErrNotTransaction    = errors.New("not a transaction line")
	ErrNoDate            = errors.New("no date")
	ErrNoAmountAfterDate = errors.New("no amount after date")
	ErrUnknownMonth      = errors.New("unknown month")
	ErrNoYear            = errors.New("no year")
	ErrInvalidDate       = errors.New("invalid date")
)

const (
	minLineLength = 20
	maxLineLength = 200
)

// Fields are the raw pieces of a transaction line.
type Fields struct {
	Date        DateToken
	Description string
	// Amounts hold every amount after the date; offsets are relative to
	// the start of the line.
	Amounts []AmountToken
}

// IsTransactionLine reports whether a line looks like a transaction: it has
// a date, at least one € amount, and is between 20 and 200 characters long.
func IsTransactionLine(line string) bool {
	return isTransactionLine(normalizeLine(line))
}

func isTransactionLine(line string) bool {
	n := utf8.RuneCountInString(line)
	if n < minLineLength || n > maxLineLength {
		return false
	}
	return hasDateToken(line) && hasAmountToken(line)
}

// ExtractFields splits a line into its date token, description and amount
// tokens. The description is the text between the date and the first
// amount that follows it.
func ExtractFields(line string) (Fields, error) {
	return extractFields(normalizeLine(line))
}

func extractFields(line string) (Fields, error) {
	date, ok := FindDateToken(line)
	if !ok {
		return Fields{}, ErrNoDate
	}

	rest := line[date.End:]
	amounts := FindAmountTokens(rest)
	if len(amounts) == 0 {
		return Fields{}, ErrNoAmountAfterDate
	}

	for i := range amounts {
		amounts[i].Start += date.End
		amounts[i].End += date.End
	}

	return Fields{
		Date:        date,
		Description: collapseSpaces(line[date.End:amounts[0].Start]),
		Amounts:     amounts,
	}, nil
}

// ParseLine turns one statement line into a transaction.
func (p *Parser) ParseLine(line string, fallbackYear int) (models.Transaction, error) {
	line = normalizeLine(line)
	if !isTransactionLine(line) {
		return models.Transaction{}, ErrNotTransaction
	}

	fields, err := extractFields(line)
	if err != nil {
		return models.Transaction{}, err
	}

	date, err := p.locale.resolveDate(fields.Date, fallbackYear)
	if err != nil {
		return models.Transaction{}, err
	}

	values := make([]float64, len(fields.Amounts))
	for i, a := range fields.Amounts {
		values[i] = ParseAmount(a.Text)
	}
	roles := ResolveRoles(values)

	return models.Transaction{
		Date:        date,
		Description: fields.Description,
		AmountOut:   roles.AmountOut,
		AmountIn:    roles.AmountIn,
		Balance:     roles.Balance,
	}, nil
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// skipReason maps a ParseLine error to the short code stored in DebugLine.
func skipReason(err error) string {
	switch {
	case errors.Is(err, ErrNotTransaction):
		return "not_transaction"
	case errors.Is(err, ErrNoDate):
		return "no_date"
	case errors.Is(err, ErrNoAmountAfterDate):
		return "no_amount_after_date"
	case errors.Is(err, ErrUnknownMonth):
		return "unknown_month"
	case errors.Is(err, ErrNoYear):
		return "no_year"
	case errors.Is(err, ErrInvalidDate):
		return "invalid_date"
	default:
		return fmt.Sprintf("error: %v", err)
	}
}
