package formatter

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/fatih/color"

	"github.com/gnolang/qedit/check"
	"github.com/gnolang/qedit/cst"
)

const tabWidth = 8

// diagnostic codes
const (
	CodeSyntax = "syntax"
	CodeLex    = "lex"
)

var (
	errorStyle   = color.New(color.FgRed, color.Bold)
	warningStyle = color.New(color.FgHiYellow, color.Bold)
	ruleStyle    = color.New(color.FgYellow, color.Bold)
	fileStyle    = color.New(color.FgCyan, color.Bold)
	lineStyle    = color.New(color.FgHiBlue, color.Bold)
	messageStyle = color.New(color.FgRed, color.Bold)
	noteStyle    = color.New(color.FgGreen, color.Bold)
)

// issueFormatter is implemented by the templates of each diagnostic code.
type issueFormatter interface {
	IssueTemplate() string
}

func getIssueFormatter(code string) issueFormatter {
	switch code {
	case CodeLex:
		return &LexIssueFormatter{}
	default:
		return &GeneralIssueFormatter{}
	}
}

// GenerateFormattedIssue renders reports one after the other, each with a
// header, the offending query line and an underline below the problem.
func GenerateFormattedIssue(reports []check.Report) string {
	var builder strings.Builder
	for _, r := range reports {
		builder.WriteString(buildIssue(r, getIssueFormatter(r.Diag.Code)))
	}
	return builder.String()
}

// FormatDiagnostics renders the diagnostics of a query given on its own,
// with name standing in for the file name.
func FormatDiagnostics(name, query string, diags []cst.Diagnostic) string {
	reports := make([]check.Report, len(diags))
	for i, d := range diags {
		reports[i] = check.Report{File: name, Line: 1, Query: query, Diag: d}
	}
	return GenerateFormattedIssue(reports)
}

type IssueData struct {
	Severity        string
	Code            string
	Filename        string
	Line            int
	StartColumn     int
	EndColumn       int
	MaxLineNumWidth int
	Padding         string
	Message         string
	SourceLine      string
	HasSource       bool
}

func buildIssue(r check.Report, formatter issueFormatter) string {
	d := r.Diag
	line := r.Line
	var source string
	hasSource := false
	if lines := strings.Split(r.Query, "\n"); d.Start.Line >= 1 && d.Start.Line <= len(lines) {
		source = strings.TrimRight(lines[d.Start.Line-1], "\r")
		line += d.Start.Line - 1
		hasSource = true
	}

	endColumn := d.End.Column
	if d.End.Line != d.Start.Line || endColumn <= d.Start.Column {
		endColumn = d.Start.Column + 1
	}

	maxLineNumWidth := calculateMaxLineNumWidth(line)
	data := IssueData{
		Severity:        d.Severity.String(),
		Code:            d.Code,
		Filename:        r.File,
		Line:            line,
		StartColumn:     max(d.Start.Column, 1),
		EndColumn:       max(endColumn, 2),
		MaxLineNumWidth: maxLineNumWidth,
		Padding:         strings.Repeat(" ", maxLineNumWidth+1),
		Message:         d.Message,
		SourceLine:      source,
		HasSource:       hasSource,
	}

	funcMap := template.FuncMap{
		"header":              header,
		"snippet":             snippet,
		"underlineAndMessage": underlineAndMessage,
		"message":             message,
		"note":                note,
	}

	tmpl := template.Must(template.New("issue").Funcs(funcMap).Parse(formatter.IssueTemplate()))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Sprintf("Error formatting issue: %v", err)
	}
	return buf.String()
}

// utils functions used in the text templates

func header(code, severity string, maxLineNumWidth int, filename string, line, column int) string {
	var endString string
	switch severity {
	case "WARNING":
		endString = warningStyle.Sprint("warning: ")
	default:
		endString = errorStyle.Sprint("error: ")
	}
	endString += ruleStyle.Sprintf("%s\n", code)

	padding := strings.Repeat(" ", maxLineNumWidth)
	endString += lineStyle.Sprintf("%s--> ", padding)
	endString += fileStyle.Sprintf("%s:%d:%d\n", filename, line, column)
	return endString
}

func snippet(source string, line, maxLineNumWidth int, padding string) string {
	endString := lineStyle.Sprintf("%s|\n", padding)
	endString += lineStyle.Sprintf("%*d | ", maxLineNumWidth, line)
	endString += source + "\n"
	return endString
}

func underlineAndMessage(msg, padding, source string, startColumn, endColumn int) string {
	endString := lineStyle.Sprintf("%s| ", padding)

	start := calculateVisualColumn(source, startColumn)
	end := calculateVisualColumn(source, endColumn)
	if end <= start {
		end = start + 1
	}
	endString += strings.Repeat(" ", start)
	endString += messageStyle.Sprintf("%s\n", strings.Repeat("~", end-start))

	endString += lineStyle.Sprintf("%s= ", padding)
	endString += messageStyle.Sprintf("%s\n", msg)
	return endString
}

func message(msg, padding string) string {
	return lineStyle.Sprintf("%s= ", padding) + messageStyle.Sprintf("%s\n", msg)
}

func note(text, padding string) string {
	return lineStyle.Sprintf("%s= ", padding) + noteStyle.Sprint("note: ") + text + "\n"
}

func calculateMaxLineNumWidth(line int) int {
	return len(fmt.Sprintf("%d", line))
}

// calculateVisualColumn returns the 0-based screen column of the 1-based
// byte column in line, expanding tabs. Columns past the end of the line
// continue one cell per byte.
func calculateVisualColumn(line string, column int) int {
	if column <= 1 {
		return 0
	}
	visualColumn := 0
	for i, ch := range line {
		if i+1 >= column {
			return visualColumn
		}
		if ch == '\t' {
			visualColumn += tabWidth - (visualColumn % tabWidth)
		} else {
			visualColumn++
		}
	}
	return visualColumn + column - 1 - len(line)
}
