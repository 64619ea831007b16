package flowchart

import (
	"regexp"
	"strings"
)

// Repair names one fix applied by the sanitizer.
type Repair string

// Repairs applied by SanitizeReport.
const (
	RepairCodeFence      Repair = "code_fence"
	RepairLanguageTag    Repair = "language_tag"
	RepairClosingBracket Repair = "closing_bracket"
	RepairMissingComma   Repair = "missing_comma"
)

const codeFence = "```"

var (
	// languageTag matches an info-string token such as "python" or "json".
	languageTag = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_+.-]*`)

	// adjacentTuples matches a tuple closed at the end of a line and the
	// next one opened on a following line, with no comma between them.
	adjacentTuples = regexp.MustCompile(`\)[ \t]*\r?\n\s*\(`)
)

// Sanitize strips formatting artifacts from model output and applies
// best-effort syntactic repairs. It never fails.
func Sanitize(raw string) string {
	s, _ := SanitizeReport(raw)
	return s
}

// SanitizeReport is Sanitize that also lists the repairs it applied,
// in the order they were applied.
func SanitizeReport(raw string) (string, []Repair) {
	var repairs []Repair
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, codeFence) {
		// Keep the segment between the first two fences; if the closing
		// fence is missing keep everything after the opening one.
		parts := strings.SplitN(s, codeFence, 3)
		s = strings.TrimSpace(parts[1])
		repairs = append(repairs, RepairCodeFence)
	}

	if tag := languageTag.FindString(s); tag != "" {
		rest := strings.TrimLeft(s[len(tag):], " \t\r\n")
		if rest != "" && (rest[0] == '[' || rest[0] == '(') {
			s = rest
			repairs = append(repairs, RepairLanguageTag)
		}
	}

	if strings.HasPrefix(s, "[") && !strings.HasSuffix(s, "]") {
		s += "]"
		repairs = append(repairs, RepairClosingBracket)
	}

	if adjacentTuples.MatchString(s) {
		s = adjacentTuples.ReplaceAllString(s, "),\n(")
		repairs = append(repairs, RepairMissingComma)
	}

	return s, repairs
}
