package internal

import (
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/gnolang/qedit/cst"
	"github.com/gnolang/qedit/fcsql"
	"github.com/gnolang/qedit/internal/config"
	"github.com/gnolang/qedit/internal/edit"
	"github.com/gnolang/qedit/lexcql"
)

// Language names one of the supported query languages.
type Language string

const (
	LangFCS Language = "fcsql"
	LangCQL Language = "lexcql"
)

var extensions = map[string]Language{
	".fcsql": LangFCS,
	".fcs":   LangFCS,
	".cql":   LangCQL,
}

// ParseLanguage accepts a language name as given on the command line.
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(s) {
	case "fcsql", "fcs":
		return LangFCS, nil
	case "lexcql", "cql":
		return LangCQL, nil
	}
	return "", fmt.Errorf("unknown query language %q", s)
}

// LanguageFor guesses the language of a query file from its extension.
func LanguageFor(path string) (Language, bool) {
	lang, ok := extensions[strings.ToLower(filepath.Ext(path))]
	return lang, ok
}

// Parse parses text in lang. It returns nil for blank text.
func Parse(lang Language, text string) *cst.Tree {
	if lang == LangCQL {
		return lexcql.Parse(text)
	}
	return fcsql.Parse(text)
}

// Args holds the named string arguments of an operation.
type Args map[string]string

func (a Args) side() (edit.Side, error) { return edit.ParseSide(a["side"]) }

func (a Args) bound(key string) (*int, error) {
	s, ok := a[key]
	if !ok || s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return &v, nil
}

// Result is the outcome of one edit cycle.
type Result struct {
	Text string
	// Tree is Text parsed again, ready for the next cycle.
	Tree    *cst.Tree
	Changed bool
}

type (
	fcsOp func(e *fcsql.Editor, id cst.NodeID, args Args) error
	cqlOp func(e *lexcql.Editor, id cst.NodeID, args Args) error
)

// Engine runs named edit operations on queries of one language.
type Engine struct {
	lang     Language
	defaults config.EditorConfig
	logger   *zap.Logger
}

// NewEngine creates an engine for lang. Templates inserted by operations use
// the defaults from cfg.
func NewEngine(lang Language, cfg config.EditorConfig, logger *zap.Logger) (*Engine, error) {
	if lang != LangFCS && lang != LangCQL {
		return nil, fmt.Errorf("unknown query language %q", lang)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{lang: lang, defaults: cfg, logger: logger}, nil
}

func (e *Engine) Language() Language { return e.lang }

// Parse parses text in the engine's language.
func (e *Engine) Parse(text string) *cst.Tree { return Parse(e.lang, text) }

// Ops lists the operation names known for the engine's language.
func (e *Engine) Ops() []string {
	var names []string
	if e.lang == LangCQL {
		for name := range cqlOps {
			names = append(names, name)
		}
	} else {
		for name := range fcsOps {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// HasOp reports whether op is registered for the engine's language.
func (e *Engine) HasOp(op string) bool {
	if e.lang == LangCQL {
		_, ok := cqlOps[op]
		return ok
	}
	_, ok := fcsOps[op]
	return ok
}

// Apply runs one cycle: op edits the tree at node id, the buffer is rendered
// and the resulting text is parsed again. When the operation is refused the
// returned result still carries the unchanged text and tree.
func (e *Engine) Apply(tree *cst.Tree, op string, id cst.NodeID, args Args) (Result, error) {
	if !e.HasOp(op) {
		return Result{}, fmt.Errorf("unknown %s operation %q", e.lang, op)
	}
	if args == nil {
		args = Args{}
	}

	var (
		sess *edit.Session
		err  error
	)
	if e.lang == LangCQL {
		ed := lexcql.NewEditor(tree, e.logger)
		if e.defaults.DefaultIndex != "" {
			ed.DefaultIndex = e.defaults.DefaultIndex
		}
		if e.defaults.DefaultConnector != "" {
			ed.DefaultConnector = e.defaults.DefaultConnector
		}
		sess = ed.Session
		err = cqlOps[op](ed, id, args)
	} else {
		ed := fcsql.NewEditor(tree, e.logger)
		if e.defaults.DefaultLayer != "" {
			ed.DefaultLayer = e.defaults.DefaultLayer
		}
		sess = ed.Session
		err = fcsOps[op](ed, id, args)
	}

	text := sess.Render()
	res := Result{Text: text, Tree: tree, Changed: sess.Changed()}
	if res.Changed {
		res.Tree = e.Parse(text)
	}
	if err != nil {
		return res, fmt.Errorf("%s: %w", op, err)
	}
	e.logger.Debug("edit applied",
		zap.String("op", op),
		zap.Int32("node", int32(id)),
		zap.Bool("changed", res.Changed))
	return res, nil
}

// run wraps an argument parsing failure so that it is reported like any
// other refused operation.
func run(s *edit.Session, op string, id cst.NodeID, err error) error {
	return s.Run(op, id, func() error { return err })
}

var segmentKinds = map[string]fcsql.SegmentKind{
	"":       fcsql.SegmentAny,
	"any":    fcsql.SegmentAny,
	"term":   fcsql.SegmentTerm,
	"string": fcsql.SegmentString,
}

var wrapKinds = map[string]fcsql.WrapKind{
	"":         fcsql.WrapGroup,
	"group":    fcsql.WrapGroup,
	"negation": fcsql.WrapNegation,
	"not":      fcsql.WrapNegation,
}

var listKinds = map[string]fcsql.ListKind{
	"":    fcsql.ListOr,
	"or":  fcsql.ListOr,
	"and": fcsql.ListAnd,
}

func quantifierArg(args Args) (fcsql.Quantifier, error) {
	shape, err := fcsql.ParseShape(args["shape"])
	if err != nil {
		return fcsql.Quantifier{}, err
	}
	q := fcsql.Quantifier{Shape: shape}
	if q.Min, err = args.bound("min"); err != nil {
		return q, err
	}
	if q.Max, err = args.bound("max"); err != nil {
		return q, err
	}
	return q, nil
}

var fcsOps = map[string]fcsOp{
	"add-segment": func(e *fcsql.Editor, id cst.NodeID, args Args) error {
		kind, ok := segmentKinds[args["kind"]]
		if !ok {
			return run(e.Session, "add-segment", id, edit.Failf("unknown segment kind %q", args["kind"]))
		}
		if id == cst.NoNode || (e.Tree != nil && e.Tree.Valid(id) && e.Tree.Kind(id) == fcsql.KindQuery) {
			return e.AddSegmentFirst(kind)
		}
		return e.AddSegmentAfter(id, kind)
	},
	"remove-segment": func(e *fcsql.Editor, id cst.NodeID, _ Args) error {
		return e.RemoveSegment(id)
	},
	"set-within": func(e *fcsql.Editor, _ cst.NodeID, args Args) error {
		return e.SetWithin(args["scope"])
	},
	"change-layer": func(e *fcsql.Editor, id cst.NodeID, args Args) error {
		return e.ChangeLayer(id, args["value"])
	},
	"change-operator": func(e *fcsql.Editor, id cst.NodeID, args Args) error {
		return e.ChangeOperator(id, args["value"])
	},
	"change-value": func(e *fcsql.Editor, id cst.NodeID, args Args) error {
		return e.ChangeValue(id, args["value"])
	},
	"set-implicit-value": func(e *fcsql.Editor, id cst.NodeID, args Args) error {
		return e.SetImplicitValue(id, args["value"])
	},
	"set-flags": func(e *fcsql.Editor, id cst.NodeID, args Args) error {
		return e.SetFlags(id, args["value"])
	},
	"wrap": func(e *fcsql.Editor, id cst.NodeID, args Args) error {
		kind, ok := wrapKinds[args["kind"]]
		if !ok {
			return run(e.Session, "wrap", id, edit.Failf("unknown wrap kind %q", args["kind"]))
		}
		return e.Wrap(id, kind)
	},
	"unwrap": func(e *fcsql.Editor, id cst.NodeID, _ Args) error {
		return e.Unwrap(id)
	},
	"change-to-list": func(e *fcsql.Editor, id cst.NodeID, args Args) error {
		kind, ok := listKinds[strings.ToLower(args["kind"])]
		if !ok {
			return run(e.Session, "change-to-list", id, edit.Failf("unknown list kind %q", args["kind"]))
		}
		side, err := args.side()
		if err != nil {
			return run(e.Session, "change-to-list", id, edit.Failf("%v", err))
		}
		return e.ChangeToList(id, kind, side, args["operand"])
	},
	"remove": func(e *fcsql.Editor, id cst.NodeID, _ Args) error {
		return e.RemoveExpression(id)
	},
	"add-quantifier": func(e *fcsql.Editor, id cst.NodeID, args Args) error {
		q, err := quantifierArg(args)
		if err != nil {
			return run(e.Session, "add-quantifier", id, edit.Failf("%v", err))
		}
		return e.AddQuantifier(id, q)
	},
	"remove-quantifier": func(e *fcsql.Editor, id cst.NodeID, _ Args) error {
		return e.RemoveQuantifier(id)
	},
	"set-quantifier": func(e *fcsql.Editor, id cst.NodeID, args Args) error {
		q, err := quantifierArg(args)
		if err != nil {
			return run(e.Session, "set-quantifier", id, edit.Failf("%v", err))
		}
		return e.SetQuantifier(id, q)
	},
}

var cqlOps = map[string]cqlOp{
	"add-clause": func(e *lexcql.Editor, id cst.NodeID, args Args) error {
		side, err := args.side()
		if err != nil {
			return run(e.Session, "add-clause", id, edit.Failf("%v", err))
		}
		return e.AddClause(id, side, args["connector"], args["clause"])
	},
	"add-subquery": func(e *lexcql.Editor, id cst.NodeID, args Args) error {
		side, err := args.side()
		if err != nil {
			return run(e.Session, "add-subquery", id, edit.Failf("%v", err))
		}
		return e.AddSubquery(id, side, args["connector"], args["clause"])
	},
	"remove": func(e *lexcql.Editor, id cst.NodeID, _ Args) error {
		return e.RemoveNode(id)
	},
	"set-index": func(e *lexcql.Editor, id cst.NodeID, args Args) error {
		return e.SetIndex(id, args["value"])
	},
	"set-relation": func(e *lexcql.Editor, id cst.NodeID, args Args) error {
		return e.SetRelation(id, args["value"])
	},
	"toggle-modifier": func(e *lexcql.Editor, id cst.NodeID, args Args) error {
		return e.ToggleModifier(id, args["name"])
	},
	"set-modifier-value": func(e *lexcql.Editor, id cst.NodeID, args Args) error {
		return e.SetModifierValue(id, args["value"])
	},
	"set-connector": func(e *lexcql.Editor, id cst.NodeID, args Args) error {
		return e.SetConnector(id, args["value"])
	},
	"toggle-connector": func(e *lexcql.Editor, id cst.NodeID, _ Args) error {
		return e.ToggleConnector(id)
	},
	"set-term": func(e *lexcql.Editor, id cst.NodeID, args Args) error {
		return e.SetTerm(id, args["value"])
	},
}

// Locate resolves a child-index path such as "0.1" against tree. The empty
// path is the root.
func Locate(tree *cst.Tree, path string) (cst.NodeID, error) {
	if tree == nil {
		return cst.NoNode, fmt.Errorf("empty query")
	}
	idx, err := ParsePath(path)
	if err != nil {
		return cst.NoNode, err
	}
	return tree.Resolve(idx)
}

// ParsePath splits a dotted child-index path.
func ParsePath(path string) ([]int, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}
	parts := strings.Split(path, ".")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		i, err := strconv.Atoi(p)
		if err != nil || i < 0 {
			return nil, fmt.Errorf("invalid path %q: bad index %q", path, p)
		}
		out = append(out, i)
	}
	return out, nil
}

// FormatPath is the inverse of ParsePath.
func FormatPath(path []int) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ".")
}
