package blend

import (
	"fmt"
	"strings"
	"unicode"
)

// CLIP packs prompts into fixed 77-position chunks; two positions go to
// the start and end markers, leaving 75 for text.
const chunkCapacity = 75

// EstimateTokens approximates the CLIP token count of a prompt. Words
// shorter than five characters usually map to one token; longer words are
// split by the byte-pair vocabulary roughly every four characters.
// Punctuation tokenizes separately.
func EstimateTokens(text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}

	count := 0
	word := 0
	flush := func() {
		if word == 0 {
			return
		}
		count += (word + 3) / 4
		word = 0
	}
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			flush()
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			word++
		default:
			flush()
			count++
		}
	}
	flush()
	return count
}

// ChunkCounts spreads a token count over 77-position chunks, reporting the
// occupied positions of each.
func ChunkCounts(total int) []int {
	if total <= 0 {
		return nil
	}
	var counts []int
	for total > 0 {
		n := total
		if n > chunkCapacity {
			n = chunkCapacity
		}
		counts = append(counts, n)
		total -= n
	}
	return counts
}

// ReportItem is one labelled prompt channel for the token report.
type ReportItem struct {
	Label string
	Text  string
}

// TokenReport formats per-channel token usage with a chunk breakdown.
// Empty channels are skipped.
func TokenReport(items []ReportItem) string {
	var sections []string
	for _, item := range items {
		counts := ChunkCounts(EstimateTokens(item.Text))
		if len(counts) == 0 {
			continue
		}
		lines := []string{item.Label}
		for i, n := range counts {
			lines = append(lines, fmt.Sprintf("chunk %d: %d tokens", i, n))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}
	return strings.Join(sections, "\n\n")
}

// SavingsReport compares token counts before and after consolidation,
// channel by channel, with a total line.
func SavingsReport(before, after Segments) string {
	channels := []struct {
		name     string
		pre, post string
	}{
		{"quality", before.Quality, after.Quality},
		{"scene", before.Scene, after.Scene},
		{"glamour", before.Glamour, after.Glamour},
		{"body", before.Body, after.Body},
		{"aesthetic", before.Aesthetic, after.Aesthetic},
		{"pose", before.Pose, after.Pose},
	}

	lines := []string{"Token savings (approx):"}
	totalPre, totalPost := 0, 0
	for _, ch := range channels {
		a, b := EstimateTokens(ch.pre), EstimateTokens(ch.post)
		totalPre += a
		totalPost += b
		if a == 0 && b == 0 {
			continue
		}
		saved := a - b
		if saved < 0 {
			saved = 0
		}
		lines = append(lines, fmt.Sprintf("%s: %d -> %d (-%d)", ch.name, a, b, saved))
	}
	totalSaved := totalPre - totalPost
	if totalSaved < 0 {
		totalSaved = 0
	}
	lines = append(lines, fmt.Sprintf("total: %d -> %d (-%d)", totalPre, totalPost, totalSaved))
	return strings.Join(lines, "\n")
}
