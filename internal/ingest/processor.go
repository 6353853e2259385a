package ingest

import (
	"regexp"
	"strings"
	"unicode"
)

// PolicyProcessor normalizes scraped HR policy pages before they are
// uploaded to the knowledge base.
type PolicyProcessor struct {
	multiWhitespace *regexp.Regexp
	htmlTags        *regexp.Regexp
	footnotes       *regexp.Regexp
	sentenceEnd     *regexp.Regexp
}

func NewPolicyProcessor() *PolicyProcessor {
	return &PolicyProcessor{
		multiWhitespace: regexp.MustCompile(`[ \t]+`),
		htmlTags:        regexp.MustCompile(`<[^>]*>`),
		footnotes:       regexp.MustCompile(`\[\d+\]`),
		sentenceEnd:     regexp.MustCompile(`[.!?]+\s+`),
	}
}

// CleanContent strips markup and normalizes whitespace so the stored policy
// text reads as plain prose.
func (p *PolicyProcessor) CleanContent(content string) string {
	content = p.htmlTags.ReplaceAllString(content, "")
	content = p.footnotes.ReplaceAllString(content, "")
	content = p.multiWhitespace.ReplaceAllString(content, " ")

	// Collapse runs of blank lines, keeping paragraph breaks.
	lines := strings.Split(content, "\n")
	var cleaned []string
	emptyLines := 0

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			emptyLines++
			if emptyLines <= 1 {
				cleaned = append(cleaned, "")
			}
		} else {
			emptyLines = 0
			cleaned = append(cleaned, line)
		}
	}

	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}

// SplitIntoChunks breaks a long policy into paragraph-aligned chunks so that
// retrieval returns focused passages instead of whole documents.
func (p *PolicyProcessor) SplitIntoChunks(content string, maxChunkSize int) []string {
	if len(content) <= maxChunkSize {
		return []string{content}
	}

	paragraphs := strings.Split(content, "\n\n")
	var chunks []string
	var current strings.Builder

	for _, paragraph := range paragraphs {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}

		if current.Len() > 0 && current.Len()+len(paragraph)+2 > maxChunkSize {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}

		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(paragraph)
	}

	if current.Len() > 0 {
		chunks = append(chunks, strings.TrimSpace(current.String()))
	}

	// A single oversized paragraph still needs to fit, fall back to sentences.
	var final []string
	for _, chunk := range chunks {
		if len(chunk) <= maxChunkSize {
			final = append(final, chunk)
		} else {
			final = append(final, p.splitBySentences(chunk, maxChunkSize)...)
		}
	}

	return final
}

func (p *PolicyProcessor) splitBySentences(text string, maxSize int) []string {
	sentences := p.sentenceEnd.Split(text, -1)
	var chunks []string
	var current strings.Builder

	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}

		if current.Len() > 0 && current.Len()+len(sentence)+2 > maxSize {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}

		if current.Len() > 0 {
			current.WriteString(". ")
		}
		current.WriteString(sentence)
	}

	if current.Len() > 0 {
		chunks = append(chunks, strings.TrimSpace(current.String()))
	}

	return chunks
}

// Categorize tags a policy document with its HR topic for source labelling.
func (p *PolicyProcessor) Categorize(content string) string {
	lowered := strings.ToLower(content)
	categories := []struct {
		name     string
		keywords []string
	}{
		{"leave", []string{"annual leave", "vacation", "sick leave", "time off", "pto"}},
		{"payroll", []string{"payroll", "salary", "compensation", "payslip"}},
		{"benefits", []string{"benefits", "insurance", "pension", "retirement"}},
		{"conduct", []string{"code of conduct", "harassment", "grievance", "disciplinary"}},
		{"onboarding", []string{"onboarding", "probation", "new hire", "orientation"}},
	}

	for _, category := range categories {
		for _, keyword := range category.keywords {
			if strings.Contains(lowered, keyword) {
				return category.name
			}
		}
	}
	return "general"
}

// CountWords estimates word count in policy text.
func (p *PolicyProcessor) CountWords(text string) int {
	if text == "" {
		return 0
	}

	words := strings.FieldsFunc(text, func(c rune) bool {
		return unicode.IsSpace(c) || unicode.IsPunct(c)
	})

	count := 0
	for _, word := range words {
		if len(strings.TrimSpace(word)) > 1 {
			count++
		}
	}

	return count
}
