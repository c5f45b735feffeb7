// Package script runs yaml edit scripts: an ordered list of operations,
// each applied to the text produced by the previous one.
package script

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/gnolang/qedit/internal"
)

var ErrNoSteps = errors.New("script has no steps")

// Step is one operation. Path addresses the target node by child indices
// from the root of the tree parsed before the step ("" is the root).
type Step struct {
	Op   string            `yaml:"op"`
	Path string            `yaml:"path,omitempty"`
	Args map[string]string `yaml:"args,omitempty"`
}

type Script struct {
	// Language overrides the language chosen on the command line.
	Language string `yaml:"language,omitempty"`
	Steps    []Step `yaml:"steps"`
}

// StepError reports the step that stopped a script.
type StepError struct {
	Index int
	Op    string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index, e.Op, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	if len(s.Steps) == 0 {
		return nil, ErrNoSteps
	}
	for i, st := range s.Steps {
		if st.Op == "" {
			return nil, &StepError{Index: i, Err: errors.New("missing op")}
		}
		if _, err := internal.ParsePath(st.Path); err != nil {
			return nil, &StepError{Index: i, Op: st.Op, Err: err}
		}
	}
	return &s, nil
}

// Run applies the steps to text one cycle at a time. It stops at the first
// step that fails and returns the text reached before it together with a
// *StepError.
func (s *Script) Run(eng *internal.Engine, text string, logger *zap.Logger) (internal.Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	res := internal.Result{Text: text, Tree: eng.Parse(text)}
	for i, st := range s.Steps {
		if !eng.HasOp(st.Op) {
			return res, &StepError{Index: i, Op: st.Op, Err: fmt.Errorf("unknown %s operation", eng.Language())}
		}
		if res.Tree != nil && res.Tree.HasErrors() {
			return res, &StepError{Index: i, Op: st.Op, Err: fmt.Errorf("query does not parse: %v", res.Tree.ErrorStrings())}
		}
		id, err := internal.Locate(res.Tree, st.Path)
		if err != nil {
			return res, &StepError{Index: i, Op: st.Op, Err: err}
		}
		next, err := eng.Apply(res.Tree, st.Op, id, st.Args)
		if err != nil {
			return res, &StepError{Index: i, Op: st.Op, Err: err}
		}
		logger.Info("applied step",
			zap.Int("step", i),
			zap.String("op", st.Op),
			zap.String("path", st.Path),
			zap.String("text", next.Text))
		next.Changed = next.Changed || res.Changed
		res = next
	}
	return res, nil
}
