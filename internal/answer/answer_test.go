package answer

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Apple  ", "apple"},
		{"cat.", "cat"},
		{"Guten Morgen!", "guten morgen"},
		{"what's   up?", "what's up"},
		{"...", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidate_Strict(t *testing.T) {
	res := Validate("Aple", "apple", nil, ToleranceStrict)
	if res.IsCorrect {
		t.Error("expected strict tolerance to reject a typo")
	}

	res = Validate("Apple", "apple", nil, ToleranceStrict)
	if !res.IsCorrect {
		t.Error("expected exact match (case-insensitive) to pass under strict")
	}
	if res.MatchedAnswer != "apple" {
		t.Errorf("MatchedAnswer = %q, want %q", res.MatchedAnswer, "apple")
	}
}

func TestValidate_Lenient(t *testing.T) {
	res := Validate("Aple", "apple", nil, ToleranceLenient)
	if !res.IsCorrect {
		t.Error("expected lenient tolerance to accept a one-letter typo")
	}
}

func TestValidate_TerminalPunctuation(t *testing.T) {
	for _, tol := range []Tolerance{ToleranceStrict, ToleranceNormal, ToleranceLenient} {
		res := Validate("cat", "cat.", nil, tol)
		if !res.IsCorrect {
			t.Errorf("tolerance %s: expected %q to match %q", tol, "cat", "cat.")
		}
	}
}

func TestValidate_Alternates(t *testing.T) {
	res := Validate("sofa", "couch", []string{"sofa", "settee"}, ToleranceStrict)
	if !res.IsCorrect {
		t.Fatal("expected alternate to match")
	}
	if res.MatchedAnswer != "sofa" {
		t.Errorf("MatchedAnswer = %q, want %q", res.MatchedAnswer, "sofa")
	}
}

func TestValidate_PrefersPrimaryOnTie(t *testing.T) {
	// Input is one edit from both the primary and the alternate; the
	// primary answer must win.
	res := Validate("hause", "haus", []string{"hauses"}, ToleranceLenient)
	if !res.IsCorrect {
		t.Fatal("expected a fuzzy match")
	}
	if res.MatchedAnswer != "haus" {
		t.Errorf("MatchedAnswer = %q, want primary %q", res.MatchedAnswer, "haus")
	}
}

func TestValidate_EmptyInput(t *testing.T) {
	res := Validate("   ", "apple", nil, ToleranceLenient)
	if res.IsCorrect {
		t.Error("expected blank input to be incorrect")
	}
}

func TestValidate_WildlyWrong(t *testing.T) {
	res := Validate("bicycle", "apple", nil, ToleranceLenient)
	if res.IsCorrect {
		t.Error("expected an unrelated word to fail even under lenient")
	}
}

func TestDiff_Positional(t *testing.T) {
	tokens := Diff("aple", "apple")

	// a-p-l-e vs a-p-p-l-e: positions 0,1 correct, 2 wrong (l vs p),
	// 3 wrong (e vs l), 4 missing (e).
	wantStates := []DiffState{DiffCorrect, DiffCorrect, DiffWrong, DiffWrong, DiffMissing}
	if len(tokens) != len(wantStates) {
		t.Fatalf("len(tokens) = %d, want %d", len(tokens), len(wantStates))
	}
	for i, want := range wantStates {
		if tokens[i].State != want {
			t.Errorf("token %d state = %d, want %d", i, tokens[i].State, want)
		}
	}
}

func TestDiff_SurplusInput(t *testing.T) {
	tokens := Diff("cats", "cat")
	if len(tokens) != 4 {
		t.Fatalf("len(tokens) = %d, want 4", len(tokens))
	}
	last := tokens[3]
	if last.State != DiffWrong || last.Char != "" || last.Got != "s" {
		t.Errorf("surplus token = %+v, want wrong/got=s", last)
	}
}

func TestDiff_AllCorrect(t *testing.T) {
	for _, tok := range Diff("Cat.", "cat") {
		if tok.State != DiffCorrect {
			t.Errorf("token %+v not tagged correct", tok)
		}
	}
}
