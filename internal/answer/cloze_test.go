package answer

import "testing"

func TestFindClozeSpan_ExactWord(t *testing.T) {
	span := FindClozeSpan("Der Hund läuft schnell.", []string{"Hund"}, DefaultClozeThreshold)
	if len(span) != 1 || span[0] != 1 {
		t.Errorf("span = %v, want [1]", span)
	}
}

func TestFindClozeSpan_InflectedForm(t *testing.T) {
	// "laufen" appears inflected as "läuft"; fixed-string search would
	// miss it, similarity scoring must not.
	span := FindClozeSpan("Der Hund lauft schnell", []string{"laufen"}, 0.6)
	if len(span) != 1 || span[0] != 2 {
		t.Errorf("span = %v, want [2]", span)
	}
}

func TestFindClozeSpan_MultiWordPhrase(t *testing.T) {
	span := FindClozeSpan("Wir essen heute zu Abend", []string{"zu Abend"}, DefaultClozeThreshold)
	if len(span) != 2 || span[0] != 3 || span[1] != 4 {
		t.Fatalf("span = %v, want [3 4]", span)
	}
}

func TestFindClozeSpan_PrefersWidestWindow(t *testing.T) {
	// Both "ice cream" and "cream" alone would clear the threshold;
	// the widest window must win so the phrase is masked whole.
	span := FindClozeSpan("I like ice cream a lot", []string{"ice cream"}, DefaultClozeThreshold)
	if len(span) != 2 || span[0] != 2 || span[1] != 3 {
		t.Errorf("span = %v, want [2 3]", span)
	}
}

func TestFindClozeSpan_NoMatch(t *testing.T) {
	span := FindClozeSpan("The quick brown fox", []string{"elephant"}, DefaultClozeThreshold)
	if span != nil {
		t.Errorf("span = %v, want nil", span)
	}
}

func TestFindClozeSpan_EmptySentence(t *testing.T) {
	if span := FindClozeSpan("", []string{"word"}, DefaultClozeThreshold); span != nil {
		t.Errorf("span = %v, want nil", span)
	}
}

func TestMaskTokens(t *testing.T) {
	got := MaskTokens("Der Hund läuft schnell.", []int{1})
	want := "Der ____ läuft schnell."
	if got != want {
		t.Errorf("MaskTokens = %q, want %q", got, want)
	}
}

func TestMaskTokens_NoSpan(t *testing.T) {
	sentence := "left as is"
	if got := MaskTokens(sentence, nil); got != sentence {
		t.Errorf("MaskTokens = %q, want unchanged", got)
	}
}
