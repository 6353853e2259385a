package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanContent_StripsMarkup(t *testing.T) {
	p := NewPolicyProcessor()

	content := "<p>Employees accrue  <b>20 days</b> of annual leave.[1]</p>"
	cleaned := p.CleanContent(content)

	assert.Equal(t, "Employees accrue 20 days of annual leave.", cleaned)
}

func TestCleanContent_CollapsesBlankLines(t *testing.T) {
	p := NewPolicyProcessor()

	content := "Section 1\n\n\n\nSection 2"
	cleaned := p.CleanContent(content)

	assert.Equal(t, "Section 1\n\nSection 2", cleaned)
}

func TestSplitIntoChunks_ShortContentIsOneChunk(t *testing.T) {
	p := NewPolicyProcessor()

	chunks := p.SplitIntoChunks("short policy text", 500)
	assert.Equal(t, []string{"short policy text"}, chunks)
}

func TestSplitIntoChunks_RespectsMaxSize(t *testing.T) {
	p := NewPolicyProcessor()

	paragraph := strings.Repeat("Employees must submit leave requests in advance. ", 10)
	content := paragraph + "\n\n" + paragraph + "\n\n" + paragraph

	chunks := p.SplitIntoChunks(content, 600)
	assert.Greater(t, len(chunks), 1)
	for i, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 600, "chunk %d", i)
		assert.NotEmpty(t, chunk)
	}
}

func TestCategorize(t *testing.T) {
	p := NewPolicyProcessor()

	assert.Equal(t, "leave", p.Categorize("Annual leave accrues monthly."))
	assert.Equal(t, "payroll", p.Categorize("Payroll runs on the 25th."))
	assert.Equal(t, "conduct", p.Categorize("Report harassment to your manager."))
	assert.Equal(t, "general", p.Categorize("Office hours are 9 to 5."))
}

func TestCountWords(t *testing.T) {
	p := NewPolicyProcessor()

	assert.Equal(t, 0, p.CountWords(""))
	assert.Equal(t, 5, p.CountWords("Employees accrue twenty vacation days"))
}
