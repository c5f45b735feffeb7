// Package check parses query files in bulk and collects their diagnostics.
// A query file holds one query per line; blank lines and lines starting
// with '#' are skipped.
package check

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/gnolang/qedit/cst"
	"github.com/gnolang/qedit/internal"
	"github.com/gnolang/qedit/scanner"
)

// Report is one diagnostic of a query, positioned in its file.
type Report struct {
	File  string
	Line  int
	Query string
	Diag  cst.Diagnostic
}

// Column returns the 1-based column of the diagnostic in the file line.
func (r Report) Column() int {
	if r.Diag.Start.Column > 0 {
		return r.Diag.Start.Column
	}
	return 1
}

func (r Report) String() string {
	return fmt.Sprintf("%s:%d:%d: %s", r.File, r.Line, r.Column(), r.Diag.Message)
}

type Checker interface {
	Check(path string) ([]Report, error)
}

// QueryChecker picks the language of a file from its extension and falls
// back to Default.
type QueryChecker struct {
	Default internal.Language
}

func (c QueryChecker) Check(path string) ([]Report, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	lang, ok := internal.LanguageFor(path)
	if !ok {
		lang = c.Default
	}
	return CheckSource(lang, path, src), nil
}

// CheckSource parses every query line of src.
func CheckSource(lang internal.Language, name string, src []byte) []Report {
	var reports []Report
	sc := bufio.NewScanner(bytes.NewReader(src))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimRight(sc.Text(), "\r")
		trimmed := strings.TrimSpace(text)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		tree := internal.Parse(lang, text)
		if tree == nil {
			continue
		}
		for _, d := range tree.Errors {
			reports = append(reports, Report{File: name, Line: line, Query: text, Diag: d})
		}
	}
	return reports
}

// Options controls a bulk check.
type Options struct {
	Extensions []string
	Workers    int
	// Progress receives the progress bar. Nil disables it.
	Progress io.Writer
}

func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	checker Checker,
	paths []string,
	opts Options,
) ([]Report, error) {
	var all []Report
	for _, path := range paths {
		reports, err := ProcessPath(ctx, logger, checker, path, opts)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			}
			return nil, err
		}
		all = append(all, reports...)
	}
	return all, nil
}

type fileResult struct {
	path    string
	reports []Report
	err     error
}

// ProcessPath checks path, or every query file below it when it is a
// directory. Files are checked concurrently by at most opts.Workers
// goroutines; reports keep the order of the file list. A file that cannot
// be read is logged and skipped.
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	checker Checker,
	path string,
	opts Options,
) ([]Report, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}
	if !info.IsDir() {
		return checker.Check(path)
	}

	found, err := scanner.New(path, opts.Extensions...).Scan()
	if err != nil {
		return nil, fmt.Errorf("error scanning %s: %w", path, err)
	}

	maxWorkers := opts.Workers
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}
	sem := make(chan struct{}, maxWorkers)
	results := make([]fileResult, len(found))
	done := make(chan struct{}, len(found))

	bar := newBar(opts.Progress, len(found), path)

	started := 0
loop:
	for i, f := range found {
		select {
		case <-ctx.Done():
			break loop
		case sem <- struct{}{}:
		}
		started++
		go func(i int, fp string) {
			defer func() {
				<-sem
				done <- struct{}{}
			}()
			reports, err := checker.Check(fp)
			results[i] = fileResult{path: fp, reports: reports, err: err}
			if bar != nil {
				_ = bar.Add(1)
			}
		}(i, f.Path)
	}

	for i := 0; i < started; i++ {
		<-done
	}
	if bar != nil {
		_ = bar.Finish()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var reports []Report
	for _, r := range results {
		if r.err != nil {
			logger.Error("Error processing file", zap.String("file", r.path), zap.Error(r.err))
			continue
		}
		reports = append(reports, r.reports...)
	}
	logger.Debug("checked directory",
		zap.String("path", path),
		zap.Int("files", len(found)),
		zap.Int("reports", len(reports)))
	return reports, nil
}

func newBar(w io.Writer, total int, desc string) *progressbar.ProgressBar {
	if w == nil || total == 0 {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
