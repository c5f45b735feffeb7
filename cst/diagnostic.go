package cst

import "fmt"

type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "ERROR"
	case SeverityWarning:
		return "WARNING"
	default:
		return "UNKNOWN"
	}
}

// Diagnostic is a problem found while lexing or parsing a query. Parsers
// collect diagnostics on the tree instead of returning errors.
type Diagnostic struct {
	Code     string
	Message  string
	Start    Position
	End      Position
	Severity Severity
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Start, d.Message)
}
