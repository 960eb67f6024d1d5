package contexttrack

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// significantPatterns pick the lines worth keeping from the middle of an
// oversized payload: declarations, imports, flagged comments, control flow.
var significantPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(func|type|const|var|package|def|class|async def|@|import|from)\b`),
	regexp.MustCompile(`^\s*(if|for|while|switch|select|try|except|with|return|yield|raise|case)\b`),
	regexp.MustCompile(`^\s*(#|//)\s*(TODO|FIXME|NOTE)`),
}

func isSignificant(line string) bool {
	for _, re := range significantPatterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// Summarize deterministically reduces text to at most maxChars: the first and
// last ~20% of lines verbatim, the middle thinned to structurally significant
// lines, stride-sampled when still too dense, hard-truncated with a marker as
// a last resort. No randomness; the same input always yields the same output.
func Summarize(text string, maxChars int) string {
	if len(text) <= maxChars {
		return text
	}

	lines := strings.Split(text, "\n")
	total := len(lines)
	keepStart := total * 20 / 100
	keepEnd := total * 80 / 100

	head := strings.Join(lines[:keepStart], "\n")
	tail := strings.Join(lines[keepEnd:], "\n")
	middle := lines[keepStart:keepEnd]

	var important []string
	for _, line := range middle {
		if isSignificant(line) {
			important = append(important, line)
		}
	}

	// Thin by even stride rather than truncating from one end, so the whole
	// middle stays represented.
	maxMiddleLines := maxChars / 80
	if maxMiddleLines > 0 && len(important) > maxMiddleLines {
		step := len(important) / maxMiddleLines
		if step < 1 {
			step = 1
		}
		sampled := make([]string, 0, maxMiddleLines+1)
		for i := 0; i < len(important); i += step {
			sampled = append(sampled, important[i])
		}
		important = sampled
	}

	middleSummary := strings.Join(important, "\n")
	if budget := maxChars * 60 / 100; len(middleSummary) > budget {
		middleSummary = truncateAtRune(middleSummary, budget)
	}

	summary := fmt.Sprintf("%s\n\n[... %d lines summarized to %d key lines ...]\n\n%s\n\n[... %d lines summarized ...]\n\n%s",
		head, len(middle), len(important), middleSummary, len(middle), tail)

	if len(summary) > maxChars {
		const marker = "\n[... truncated ...]"
		cut := maxChars - len(marker)
		if cut < 0 {
			cut = 0
		}
		summary = truncateAtRune(summary, cut) + marker
	}
	return summary
}

// truncateAtRune cuts s to at most n bytes, backing up so the cut never
// splits a multibyte rune.
func truncateAtRune(s string, n int) string {
	if n >= len(s) {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
