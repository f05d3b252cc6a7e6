// Package answer implements free-text answer validation with
// configurable typo tolerance, character-level diffing for feedback
// display, and cloze span detection for example sentences.
package answer

import (
	"strings"

	"github.com/agext/levenshtein"
)

// Tolerance controls how forgiving free-text comparison is of typos.
type Tolerance string

const (
	ToleranceStrict  Tolerance = "strict"
	ToleranceNormal  Tolerance = "normal"
	ToleranceLenient Tolerance = "lenient"
)

// Similarity thresholds for the fuzzy tolerance levels.
const (
	normalThreshold  = 0.85
	lenientThreshold = 0.70
)

// Result is the outcome of validating a single free-text answer.
type Result struct {
	IsCorrect bool
	// MatchedAnswer is the candidate (in its original casing) that the
	// input matched, empty when the answer is wrong.
	MatchedAnswer string
}

// Normalize prepares text for comparison: trims surrounding space,
// lowercases, strips terminal punctuation and collapses inner runs of
// whitespace.
func Normalize(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = strings.TrimRight(s, ".,!?;:…")
	return strings.Join(strings.Fields(s), " ")
}

// Validate compares userInput against the correct answer and any
// alternates under the given tolerance. Strict requires an exact match
// of normalized forms. Normal and lenient additionally accept inputs
// whose edit-distance similarity to a candidate clears the tolerance
// threshold. Candidates are checked in order (primary answer first),
// so the primary answer wins ties against alternates.
func Validate(userInput, correctAnswer string, alternates []string, tolerance Tolerance) Result {
	user := Normalize(userInput)
	if user == "" {
		return Result{}
	}

	candidates := make([]string, 0, len(alternates)+1)
	candidates = append(candidates, correctAnswer)
	candidates = append(candidates, alternates...)

	for _, cand := range candidates {
		if user == Normalize(cand) {
			return Result{IsCorrect: true, MatchedAnswer: cand}
		}
	}

	threshold, fuzzy := fuzzyThreshold(tolerance)
	if !fuzzy {
		return Result{}
	}

	for _, cand := range candidates {
		if Similarity(user, Normalize(cand)) >= threshold {
			return Result{IsCorrect: true, MatchedAnswer: cand}
		}
	}

	return Result{}
}

// Similarity returns the edit-distance similarity of two strings in
// [0, 1]. Both inputs are expected to be normalized already.
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	return levenshtein.Similarity(a, b, nil)
}

// fuzzyThreshold maps a tolerance to its similarity threshold.
// The second return is false for strict, which permits no fuzz.
func fuzzyThreshold(t Tolerance) (float64, bool) {
	switch t {
	case ToleranceNormal:
		return normalThreshold, true
	case ToleranceLenient:
		return lenientThreshold, true
	default:
		return 0, false
	}
}
