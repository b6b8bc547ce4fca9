package models

// Transaction represents a single bank statement transaction.
//
// Amount roles are independently optional: a nil pointer means the role
// could not be determined from the line, not that it is zero.
type Transaction struct {
	Date        string   `json:"date"` // YYYY-MM-DD
	Description string   `json:"description"`
	AmountOut   *float64 `json:"amount_out"`
	AmountIn    *float64 `json:"amount_in"`
	Balance     *float64 `json:"balance"`
}

// YearSource records where a document's fallback year came from.
type YearSource string

const (
	YearFromDocument YearSource = "document"
	YearDeclared     YearSource = "declared"
	YearFromClock    YearSource = "clock"
)

// Line results recorded in DebugLine.Result.
const (
	ResultParsed  = "parsed"
	ResultSkipped = "skipped"
)

// DebugLine captures what the parser did with each input line.
type DebugLine struct {
	LineNum   int    `json:"lineNum"`
	Text      string `json:"text"`
	HasDate   bool   `json:"hasDate"`
	HasAmount bool   `json:"hasAmount"`
	Result    string `json:"result"`           // "parsed" or "skipped"
	Reason    string `json:"reason,omitempty"` // why a line was skipped
}

// StatementInfo holds the outcome of parsing one document.
type StatementInfo struct {
	Year         int
	YearSource   YearSource
	Transactions []Transaction
	DebugLines   []DebugLine
}

// Skipped returns the debug records of lines that produced no transaction.
func (s *StatementInfo) Skipped() []DebugLine {
	var out []DebugLine
	for _, dl := range s.DebugLines {
		if dl.Result == ResultSkipped {
			out = append(out, dl)
		}
	}
	return out
}
