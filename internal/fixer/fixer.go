package fixer

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Change replaces the query on one line of a query file.
type Change struct {
	Line int // 1-based
	Old  string
	New  string
}

type Fixer struct {
	DryRun bool
	Out    io.Writer
}

func New(dryRun bool, out io.Writer) *Fixer {
	if out == nil {
		out = os.Stdout
	}
	return &Fixer{DryRun: dryRun, Out: out}
}

// Fix writes the changes to filename. A change whose Old text no longer
// matches the line is refused, and nothing is written. In dry-run mode the
// changes are only printed as inline diffs.
func (f *Fixer) Fix(filename string, changes []Change) error {
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	sort.Slice(changes, func(i, j int) bool {
		return changes[i].Line > changes[j].Line
	})

	lines := strings.Split(string(content), "\n")
	for _, c := range changes {
		if c.Line < 1 || c.Line > len(lines) {
			return fmt.Errorf("%s: line %d out of range", filename, c.Line)
		}
		cur := strings.TrimRight(lines[c.Line-1], "\r")
		if strings.TrimSpace(cur) != strings.TrimSpace(c.Old) {
			return fmt.Errorf("%s:%d: query changed on disk", filename, c.Line)
		}

		if f.DryRun {
			fmt.Fprintf(f.Out, "%s:%d: %s\n", filename, c.Line, Diff(c.Old, c.New))
			continue
		}
		lines[c.Line-1] = extractIndent(cur) + c.New
	}

	if f.DryRun {
		return nil
	}
	if err := os.WriteFile(filename, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	fmt.Fprintf(f.Out, "Fixed %d queries in %s\n", len(changes), filename)
	return nil
}

func extractIndent(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}

// Diff renders the character changes from old to new inline, deletions as
// [-text-] and insertions as {+text+}.
func Diff(old, new string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(old, new, false))

	var sb strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			sb.WriteString("[-" + d.Text + "-]")
		case diffmatchpatch.DiffInsert:
			sb.WriteString("{+" + d.Text + "+}")
		default:
			sb.WriteString(d.Text)
		}
	}
	return sb.String()
}
