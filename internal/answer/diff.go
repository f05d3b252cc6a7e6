package answer

// DiffState classifies a single character position in a diff.
type DiffState int

const (
	// DiffCorrect means the user typed the expected character.
	DiffCorrect DiffState = iota
	// DiffWrong means the user typed a different character at this position.
	DiffWrong
	// DiffMissing means the expected character is absent from the user's answer.
	DiffMissing
)

// DiffToken is one character position of a feedback diff.
type DiffToken struct {
	// Char is the expected character, empty for surplus user input.
	Char string
	// Got is what the user actually typed at this position, if anything.
	Got string
	State DiffState
}

// Diff aligns the user's answer against the correct answer position by
// position after normalization. This is a plain left-to-right walk for
// feedback rendering, not a general sequence alignment: a mismatched
// character is tagged wrong, an expected character past the end of the
// user's input is tagged missing, and surplus user characters are
// tagged wrong with no expected counterpart.
func Diff(userAnswer, correctAnswer string) []DiffToken {
	user := []rune(Normalize(userAnswer))
	correct := []rune(Normalize(correctAnswer))

	tokens := make([]DiffToken, 0, len(correct))
	for i, want := range correct {
		tok := DiffToken{Char: string(want)}
		switch {
		case i >= len(user):
			tok.State = DiffMissing
		case user[i] == want:
			tok.Got = string(user[i])
			tok.State = DiffCorrect
		default:
			tok.Got = string(user[i])
			tok.State = DiffWrong
		}
		tokens = append(tokens, tok)
	}

	for i := len(correct); i < len(user); i++ {
		tokens = append(tokens, DiffToken{Got: string(user[i]), State: DiffWrong})
	}

	return tokens
}
