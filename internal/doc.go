// Package internal runs named structural edit operations on queries of both
// supported query languages.
//
// Key components:
//
// Engine: looks up an operation by name ("remove", "wrap", "toggle-modifier"
// ...) for its language and runs one edit cycle: the operation schedules
// edits on the parsed tree, the buffer is rendered and the new text is
// parsed again for the next cycle.
//
// Args: the string arguments of an operation, such as the new value, the
// side of an insertion or the bounds of a quantifier.
//
// Paths: nodes are addressed by child-index paths from the root ("0.1"),
// which stay meaningful across re-parses of similar text.
//
// Usage:
//
//	eng, err := internal.NewEngine(internal.LangFCS, cfg.Editor, logger)
//	if err != nil {
//	    // handle error
//	}
//	tree := eng.Parse(`[ word = "a" & word = "b" ]`)
//	id, _ := internal.Locate(tree, "0.0.0.1")
//	res, err := eng.Apply(tree, "remove", id, nil)
//	// res.Text == `[ word = "a" ]`
package internal
