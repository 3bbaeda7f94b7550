// Package sanitize trims operator replies down to a short, in-character line.
package sanitize

import (
	"regexp"
	"strings"
)

const (
	maxStatements = 1
	maxQuestions  = 2
)

var (
	// Sentences that give away an assistant voice, up to their terminating punctuation.
	assistantTells = regexp.MustCompile(`(?i)(Thank you|Thanks|I understand|Certainly|I'd be happy to|Great news|I see|I'm sorry to hear that|Message received|Analyzing next steps)[^.!?]*[.!?]`)

	sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]+`)
)

// Reply strips assistant tells from text and keeps at most one statement
// followed by at most two questions. It never returns an empty string for a
// non-empty input.
func Reply(text string) string {
	cleaned := strings.TrimSpace(assistantTells.ReplaceAllString(text, ""))
	if cleaned == "" {
		return text
	}

	sentences := sentencePattern.FindAllString(cleaned, -1)
	if len(sentences) == 0 {
		sentences = []string{cleaned}
	}

	var statements, questions []string
	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if strings.HasSuffix(s, "?") {
			if len(questions) < maxQuestions {
				questions = append(questions, s)
			}
			continue
		}
		if len(statements) < maxStatements {
			statements = append(statements, s)
		}
	}

	result := strings.TrimSpace(strings.Join(append(statements, questions...), " "))
	if result == "" {
		return cleaned
	}
	return result
}
