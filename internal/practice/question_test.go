package practice

import (
	"encoding/json"
	"testing"
)

func TestSessionData_DecodesTaggedVariants(t *testing.T) {
	payload := `{
		"total": 3,
		"mode": "typing",
		"settings": {"tolerance": "normal", "cloze_enabled": true},
		"questions": [
			{"mode": "multiple_choice", "id": "q1", "vocabulary_id": "v1",
			 "prompt": "dog", "options": ["Hund", "Katze"], "correct_index": 0},
			{"mode": "typing", "id": "q2", "vocabulary_id": "v2",
			 "prompt": "cat", "correct_answer": "Katze",
			 "acceptable_answers": ["Kater"], "example_sentence": "Die Katze schläft."},
			{"mode": "matching", "id": "q3", "pair_count": 1, "items": [
				{"id": "a", "pair_id": "p", "side": "source", "text": "dog"},
				{"id": "b", "pair_id": "p", "side": "target", "text": "Hund"}
			]}
		]
	}`

	var data SessionData
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(data.Questions) != 3 {
		t.Fatalf("questions = %d, want 3", len(data.Questions))
	}

	mc, ok := data.Questions[0].(MultipleChoice)
	if !ok {
		t.Fatalf("question 0 = %T, want MultipleChoice", data.Questions[0])
	}
	if mc.CorrectAnswer() != "Hund" {
		t.Errorf("CorrectAnswer = %q, want Hund", mc.CorrectAnswer())
	}

	ty, ok := data.Questions[1].(Typing)
	if !ok {
		t.Fatalf("question 1 = %T, want Typing", data.Questions[1])
	}
	if len(ty.AcceptableAnswers) != 1 || ty.ExampleSentence == "" {
		t.Errorf("typing question = %+v", ty)
	}

	ma, ok := data.Questions[2].(Matching)
	if !ok {
		t.Fatalf("question 2 = %T, want Matching", data.Questions[2])
	}
	if len(ma.Items) != 2 || ma.Items[0].PairID != "p" {
		t.Errorf("matching question = %+v", ma)
	}
}

func TestSessionData_RoundTripsModeTag(t *testing.T) {
	data := SessionData{
		Total: 1,
		Mode:  ModeListening,
		Questions: []Question{
			Listening{ID: "q1", VocabularyID: "v1", AudioURL: "https://cdn/a.mp3",
				CorrectAnswer: "Hund", Translation: "dog"},
		},
	}

	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back SessionData
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := back.Questions[0].(Listening); !ok {
		t.Fatalf("round-tripped question = %T, want Listening", back.Questions[0])
	}
}

func TestSessionData_UnknownModeRejected(t *testing.T) {
	payload := `{"total": 1, "mode": "typing", "questions": [{"mode": "essay", "id": "q1"}]}`
	var data SessionData
	if err := json.Unmarshal([]byte(payload), &data); err == nil {
		t.Fatal("expected unknown question mode to fail decoding")
	}
}

func TestMultipleChoice_OutOfRangeIndex(t *testing.T) {
	q := MultipleChoice{Options: []string{"a", "b"}, CorrectIndex: 7}
	if got := q.CorrectAnswer(); got != "" {
		t.Errorf("CorrectAnswer = %q, want empty for out-of-range index", got)
	}
}
