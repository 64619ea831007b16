package prompt

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// placeholder matches ${name}; name is alphanumeric and underscore.
var placeholder = regexp.MustCompile(`\$\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// UndefinedVariableError lists placeholders that had no value.
type UndefinedVariableError struct {
	Names []string
}

// Error implements the error interface.
func (e *UndefinedVariableError) Error() string {
	return fmt.Sprintf("prompt: undefined variables: %s", strings.Join(e.Names, ", "))
}

// Expand replaces each ${name} in s with vars[name]. Values are inserted
// verbatim, so a value containing "${x}" is not expanded again. Every
// placeholder without a value is reported in one *UndefinedVariableError.
func Expand(s string, vars map[string]string) (string, error) {
	missing := make(map[string]bool)
	out := placeholder.ReplaceAllStringFunc(s, func(match string) string {
		name := match[2 : len(match)-1]
		if v, ok := vars[name]; ok {
			return v
		}
		missing[name] = true
		return match
	})
	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for n := range missing {
			names = append(names, n)
		}
		sort.Strings(names)
		return out, &UndefinedVariableError{Names: names}
	}
	return out, nil
}

// Variables returns the distinct placeholder names in s, in order of first
// appearance.
func Variables(s string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range placeholder.FindAllStringSubmatch(s, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}
