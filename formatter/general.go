package formatter

type GeneralIssueFormatter struct{}

func (f *GeneralIssueFormatter) IssueTemplate() string {
	return `{{header .Code .Severity .MaxLineNumWidth .Filename .Line .StartColumn -}}
{{if .HasSource -}}
{{snippet .SourceLine .Line .MaxLineNumWidth .Padding -}}
{{underlineAndMessage .Message .Padding .SourceLine .StartColumn .EndColumn -}}
{{else -}}
{{message .Message .Padding -}}
{{end}}
`
}

// LexIssueFormatter adds a hint to input the lexer could not match.
type LexIssueFormatter struct{}

func (f *LexIssueFormatter) IssueTemplate() string {
	return `{{header .Code .Severity .MaxLineNumWidth .Filename .Line .StartColumn -}}
{{if .HasSource -}}
{{snippet .SourceLine .Line .MaxLineNumWidth .Padding -}}
{{underlineAndMessage .Message .Padding .SourceLine .StartColumn .EndColumn -}}
{{else -}}
{{message .Message .Padding -}}
{{end -}}
{{note "quote literal text that contains operator characters" .Padding}}
`
}
