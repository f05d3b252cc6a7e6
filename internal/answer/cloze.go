package answer

import "strings"

// DefaultClozeThreshold is the similarity a window must reach to be
// masked when no explicit threshold is configured.
const DefaultClozeThreshold = 0.75

// ClozeMask is the placeholder rendered in place of masked tokens.
const ClozeMask = "____"

// FindClozeSpan locates the tokens of sentence that correspond to one
// of the candidate answers, returning their indices in order. The
// target vocabulary may appear inflected or as a multi-word phrase, so
// a fixed-string search is insufficient: windows of decreasing width
// are slid over the tokenized sentence and scored by similarity
// against each candidate. Checking widths longest-first prefers the
// widest window at each starting position, so a multi-word phrase is
// never masked only in part. Returns nil when no window clears the
// threshold; the sentence is then shown unmasked.
func FindClozeSpan(sentence string, candidateAnswers []string, threshold float64) []int {
	tokens := strings.Fields(sentence)
	if len(tokens) == 0 {
		return nil
	}

	normalized := make([]string, 0, len(candidateAnswers))
	for _, c := range candidateAnswers {
		if n := Normalize(c); n != "" {
			normalized = append(normalized, n)
		}
	}
	if len(normalized) == 0 {
		return nil
	}

	for width := len(tokens); width >= 1; width-- {
		for start := 0; start+width <= len(tokens); start++ {
			window := Normalize(strings.Join(tokens[start:start+width], " "))
			if window == "" {
				continue
			}
			for _, cand := range normalized {
				if Similarity(window, cand) >= threshold {
					span := make([]int, width)
					for i := range span {
						span[i] = start + i
					}
					return span
				}
			}
		}
	}

	return nil
}

// MaskTokens replaces the tokens at the given indices with ClozeMask,
// keeping the rest of the sentence intact.
func MaskTokens(sentence string, indices []int) string {
	if len(indices) == 0 {
		return sentence
	}
	masked := make(map[int]bool, len(indices))
	for _, i := range indices {
		masked[i] = true
	}

	tokens := strings.Fields(sentence)
	for i := range tokens {
		if masked[i] {
			tokens[i] = ClozeMask
		}
	}
	return strings.Join(tokens, " ")
}
