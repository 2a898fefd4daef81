package synthesis

import (
	"regexp"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// Cleaning below this length is considered destructive and the raw answer
// is returned instead.
const minCleanedLength = 50

// Cleaner removes question echoes and trailing reference dumps from raw
// engine answers. The pipeline is idempotent: cleaning its own output
// removes nothing further.
type Cleaner struct {
	prefixes      []string
	echoThreshold float64
	metric        *metrics.SorensenDice
}

func NewCleaner(prefixes []string, echoThreshold float64) *Cleaner {
	if len(prefixes) == 0 {
		prefixes = DefaultEchoPrefixes
	}
	return &Cleaner{
		prefixes:      prefixes,
		echoThreshold: echoThreshold,
		metric:        metrics.NewSorensenDice(),
	}
}

func (c *Cleaner) Clean(question, raw string) string {
	base := strings.TrimSpace(raw)

	text := c.stripEchoPrefixes(question, base)
	text = c.dropEchoedLead(question, text)
	if len(text) < minCleanedLength {
		// Echo removal gutted the answer; keep the original lead rather
		// than returning a near-empty response.
		text = base
	}

	text = stripTrailingReferences(text)
	text = collapseBlankLines(text)
	text = strings.TrimSpace(text)

	if text == "" {
		return base
	}
	return text
}

// stripEchoPrefixes removes leading occurrences of the literal question
// and known echo lead-ins, case-insensitively, until none remain.
func (c *Cleaner) stripEchoPrefixes(question, text string) string {
	questionLiteral := strings.TrimSpace(question)

	for {
		trimmed := strings.TrimSpace(text)
		stripped := false

		if questionLiteral != "" &&
			len(trimmed) >= len(questionLiteral) &&
			strings.EqualFold(trimmed[:len(questionLiteral)], questionLiteral) {
			text = trimmed[len(questionLiteral):]
			stripped = true
		}

		if !stripped {
			for _, prefix := range c.prefixes {
				if len(trimmed) >= len(prefix) && strings.EqualFold(trimmed[:len(prefix)], prefix) {
					text = trimmed[len(prefix):]
					stripped = true
					break
				}
			}
		}

		if !stripped {
			return trimmed
		}
	}
}

// dropEchoedLead removes leading sentences that paraphrase the question.
// Exact prefix matching misses reworded echoes; this compares normalized
// strings with the Sorensen-Dice coefficient instead.
func (c *Cleaner) dropEchoedLead(question, text string) string {
	normQuestion := normalizeForComparison(question)
	if normQuestion == "" {
		return text
	}

	for {
		sentences := splitSentences(text)
		if len(sentences) == 0 {
			return text
		}

		if c.similar(sentences[0], normQuestion) {
			text = strings.TrimSpace(strings.Join(sentences[1:], " "))
			continue
		}
		if len(sentences) > 1 && c.similar(sentences[0]+" "+sentences[1], normQuestion) {
			text = strings.TrimSpace(strings.Join(sentences[2:], " "))
			continue
		}
		return text
	}
}

func (c *Cleaner) similar(candidate, normQuestion string) bool {
	normCandidate := normalizeForComparison(candidate)
	if normCandidate == "" {
		return false
	}
	return strutil.Similarity(normCandidate, normQuestion, c.metric) > c.echoThreshold
}

var (
	inlineReferencePattern = regexp.MustCompile(`(?i)\b(references|bibliography|works cited|citations|sources)\s*:`)
	headerReferencePattern = regexp.MustCompile(`(?mi)^\s*(references|bibliography|works cited|citations|sources)\s*\.?\s*$`)
	// Bracketed markers only: bare "1." lines are too often legitimate
	// list items to strip on shape alone.
	citationLinePattern = regexp.MustCompile(`^\s*\[\d+\]`)
)

// stripTrailingReferences cuts the answer at the first reference-section
// marker and then peels off any remaining bracketed citation lines.
func stripTrailingReferences(text string) string {
	if loc := inlineReferencePattern.FindStringIndex(text); loc != nil {
		text = text[:loc[0]]
	}
	if loc := headerReferencePattern.FindStringIndex(text); loc != nil {
		text = text[:loc[0]]
	}

	lines := strings.Split(strings.TrimRight(text, " \t\n"), "\n")
	for len(lines) > 0 {
		last := strings.TrimSpace(lines[len(lines)-1])
		if last != "" && !citationLinePattern.MatchString(last) {
			break
		}
		if last == "" {
			lines = lines[:len(lines)-1]
			continue
		}
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

var blankRunPattern = regexp.MustCompile(`\n[ \t]*\n([ \t]*\n)+`)

func collapseBlankLines(text string) string {
	return blankRunPattern.ReplaceAllString(text, "\n\n")
}

var nonAlphanumericPattern = regexp.MustCompile(`[^a-z0-9]+`)

func normalizeForComparison(s string) string {
	return nonAlphanumericPattern.ReplaceAllString(strings.ToLower(s), "")
}

var sentenceEndPattern = regexp.MustCompile(`([.!?]+)(\s+|$)`)

func splitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var sentences []string
	rest := text
	for {
		loc := sentenceEndPattern.FindStringIndex(rest)
		if loc == nil {
			if trimmed := strings.TrimSpace(rest); trimmed != "" {
				sentences = append(sentences, trimmed)
			}
			return sentences
		}
		sentences = append(sentences, strings.TrimSpace(rest[:loc[1]]))
		rest = rest[loc[1]:]
		if strings.TrimSpace(rest) == "" {
			return sentences
		}
	}
}
