package lexcql

import (
	"slices"
	"strings"
)

// exclusionGroups lists relation modifiers that cancel each other: at most
// one member of a group is present on a relation.
var exclusionGroups = [][]string{
	{"masked", "unmasked", "regexp"},
	{"ignoreCase", "respectCase"},
	{"ignoreAccents", "respectAccents"},
}

// valuedModifiers are inserted with an empty value template.
var valuedModifiers = map[string]bool{
	"lang": true,
}

// excludedBy returns the modifiers that cannot coexist with name.
func excludedBy(name string) []string {
	for _, group := range exclusionGroups {
		for _, member := range group {
			if !strings.EqualFold(member, name) {
				continue
			}
			out := make([]string, 0, len(group)-1)
			for _, other := range group {
				if !strings.EqualFold(other, name) {
					out = append(out, other)
				}
			}
			return out
		}
	}
	return nil
}

// toggled returns the modifier names of current after toggling name.
func toggled(current []string, name string) []string {
	var out []string
	for _, n := range current {
		if strings.EqualFold(n, name) {
			for _, m := range current {
				if !strings.EqualFold(m, name) {
					out = append(out, m)
				}
			}
			return out
		}
	}
	excluded := excludedBy(name)
	for _, n := range current {
		if !containsFold(excluded, n) {
			out = append(out, n)
		}
	}
	return append(out, name)
}

// containsFold reports whether names holds name, ignoring case.
func containsFold(names []string, name string) bool {
	return slices.ContainsFunc(names, func(n string) bool {
		return strings.EqualFold(n, name)
	})
}

func modifierTemplate(name string) string {
	if valuedModifiers[strings.ToLower(name)] {
		return "/" + name + `=""`
	}
	return "/" + name
}
