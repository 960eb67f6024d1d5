package contexttrack

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"
)

func buildSource(lines int) string {
	var b strings.Builder
	for i := 0; i < lines; i++ {
		switch i % 10 {
		case 0:
			fmt.Fprintf(&b, "func handler%d() {\n", i)
		case 3:
			fmt.Fprintf(&b, "    if x > %d {\n", i)
		case 7:
			fmt.Fprintf(&b, "    // TODO revisit branch %d\n", i)
		default:
			fmt.Fprintf(&b, "    line %d of ordinary body text\n", i)
		}
	}
	return b.String()
}

func TestSummarize_PassthroughUnderBound(t *testing.T) {
	text := "short content"
	if got := Summarize(text, 1000); got != text {
		t.Errorf("Expected unchanged text under the bound, got %q", got)
	}
}

func TestSummarize_NeverExceedsBound(t *testing.T) {
	text := buildSource(2000)
	for _, bound := range []int{200, 1000, 5000, 30000} {
		t.Run(fmt.Sprintf("bound=%d", bound), func(t *testing.T) {
			got := Summarize(text, bound)
			if len(got) > bound {
				t.Errorf("Expected summary <= %d chars, got %d", bound, len(got))
			}
		})
	}
}

func TestSummarize_KeepsHeadAndTailVerbatim(t *testing.T) {
	text := buildSource(1000)
	lines := strings.Split(text, "\n")
	got := Summarize(text, 20000)

	if !strings.HasPrefix(got, lines[0]) {
		t.Errorf("Expected summary to start with the first line %q", lines[0])
	}
	// The final split element is empty (trailing newline); check the last
	// real line survives at the end.
	last := lines[len(lines)-2]
	if !strings.Contains(got, last) {
		t.Errorf("Expected summary to retain the last line %q", last)
	}
}

func TestSummarize_PrefersSignificantLines(t *testing.T) {
	text := buildSource(1000)
	got := Summarize(text, 20000)

	if !strings.Contains(got, "func handler500()") {
		t.Error("Expected a mid-file declaration to survive summarization")
	}
	if !strings.Contains(got, "lines summarized") {
		t.Error("Expected a summarization marker")
	}
}

func TestSummarize_TruncationKeepsValidUTF8(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 200; i++ {
		fmt.Fprintf(&b, "func 日本語ハンドラ%d() { // 説明テキスト\n", i)
	}
	text := b.String()

	for _, bound := range []int{150, 500, 2000} {
		t.Run(fmt.Sprintf("bound=%d", bound), func(t *testing.T) {
			got := Summarize(text, bound)
			if len(got) > bound {
				t.Errorf("Expected summary <= %d chars, got %d", bound, len(got))
			}
			if !utf8.ValidString(got) {
				t.Error("Expected truncation to land on a rune boundary")
			}
		})
	}
}

func TestSummarize_Deterministic(t *testing.T) {
	text := buildSource(1500)
	first := Summarize(text, 4000)
	for i := 0; i < 3; i++ {
		if got := Summarize(text, 4000); got != first {
			t.Fatal("Expected identical output for identical input")
		}
	}
}
