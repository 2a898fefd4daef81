package synthesis

import (
	"strings"
	"testing"
)

func newTestCleaner() *Cleaner {
	return NewCleaner(nil, 0.7)
}

func TestCleanStripsLiteralQuestionEcho(t *testing.T) {
	c := newTestCleaner()
	question := "What is a widget?"
	raw := "What is a widget? Widgets are small mechanical parts used in many assemblies around the world."

	got := c.Clean(question, raw)
	want := "Widgets are small mechanical parts used in many assemblies around the world."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCleanStripsKnownPrefixes(t *testing.T) {
	c := newTestCleaner()
	tests := []struct {
		name string
		raw  string
	}{
		{"question prefix", "Question: what color is it? The device housing is painted a deep industrial green for visibility."},
		{"to answer prefix", "To answer your question: The device housing is painted a deep industrial green for visibility."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Clean("what color is it?", tt.raw)
			if strings.Contains(strings.ToLower(got), "to answer your question") {
				t.Errorf("prefix survived cleaning: %q", got)
			}
			if !strings.Contains(got, "deep industrial green") {
				t.Errorf("answer body lost: %q", got)
			}
		})
	}
}

func TestCleanDropsParaphrasedEcho(t *testing.T) {
	c := newTestCleaner()
	question := "How does the turbine blade cooling system work?"
	raw := "How the turbine blade cooling system works. Cool air is bled from the compressor and routed through internal serpentine channels inside each blade."

	got := c.Clean(question, raw)
	if strings.Contains(got, "How the turbine") {
		t.Errorf("paraphrased echo survived: %q", got)
	}
	if !strings.Contains(got, "serpentine channels") {
		t.Errorf("answer body lost: %q", got)
	}
}

func TestCleanStripsTrailingReferences(t *testing.T) {
	c := newTestCleaner()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "inline references block",
			raw:  "Widgets are small mechanical parts. References: [1] Smith 2020, Widgets.",
			want: "Widgets are small mechanical parts.",
		},
		{
			name: "header on its own line",
			raw:  "Widgets are small mechanical parts.\n\nBibliography\n[1] Smith 2020.\n[2] Jones 2021.",
			want: "Widgets are small mechanical parts.",
		},
		{
			name: "bracketed citation lines without header",
			raw:  "Widgets are small mechanical parts.\n[1] Smith 2020.\n[2] Jones 2021.",
			want: "Widgets are small mechanical parts.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Clean("What is a widget?", tt.raw)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCleanCollapsesBlankLines(t *testing.T) {
	c := newTestCleaner()
	raw := "First paragraph about the mechanism in detail.\n\n\n\nSecond paragraph continues the description further."

	got := c.Clean("irrelevant", raw)
	if strings.Contains(got, "\n\n\n") {
		t.Errorf("blank run survived: %q", got)
	}
	if !strings.Contains(got, "\n\n") {
		t.Errorf("paragraph break lost: %q", got)
	}
}

func TestCleanSafetyValveKeepsRawOnDestructiveEchoRemoval(t *testing.T) {
	c := newTestCleaner()
	question := "What is the project codename?"
	// The whole answer is one echo-like sentence; removing it would leave
	// nothing useful.
	raw := "What is the project codename."

	got := c.Clean(question, raw)
	if got != raw {
		t.Errorf("destructive cleaning not reverted: got %q", got)
	}
}

func TestCleanIsIdempotent(t *testing.T) {
	c := newTestCleaner()
	question := "What is a widget?"
	raws := []string{
		"What is a widget? Widgets are small mechanical parts used in many assemblies. References: [1] Smith.",
		"Widgets are small mechanical parts. References: [1] Smith 2020.",
		"To answer your question: widgets are small mechanical parts used in industrial assembly lines.",
		"Plain answer without any echo or references, long enough to pass every cleaning stage untouched.",
	}

	for _, raw := range raws {
		once := c.Clean(question, raw)
		twice := c.Clean(question, once)
		if once != twice {
			t.Errorf("cleaning not idempotent:\n once: %q\ntwice: %q", once, twice)
		}
	}
}
