package practice

import (
	"encoding/json"
	"fmt"

	"vocadrill/internal/matching"
)

// Question is the closed set of question variants. Each variant is
// handled by an explicit type switch; there is no dynamic dispatch on
// the mode string past decoding.
type Question interface {
	Ref() QuestionRef
}

// QuestionRef carries the identifiers shared by every variant.
type QuestionRef struct {
	ID           string
	VocabularyID string
	Mode         Mode
}

// MultipleChoice asks the learner to pick among unique options.
type MultipleChoice struct {
	ID           string   `json:"id"`
	VocabularyID string   `json:"vocabulary_id"`
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
}

func (q MultipleChoice) Ref() QuestionRef {
	return QuestionRef{ID: q.ID, VocabularyID: q.VocabularyID, Mode: ModeMultipleChoice}
}

// CorrectAnswer returns the option at the correct index, empty when the
// index is out of range.
func (q MultipleChoice) CorrectAnswer() string {
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return ""
	}
	return q.Options[q.CorrectIndex]
}

// Typing asks for free-text recall of the target vocabulary.
type Typing struct {
	ID                string   `json:"id"`
	VocabularyID      string   `json:"vocabulary_id"`
	Prompt            string   `json:"prompt"`
	CorrectAnswer     string   `json:"correct_answer"`
	AcceptableAnswers []string `json:"acceptable_answers,omitempty"`
	ExampleSentence   string   `json:"example_sentence,omitempty"`
}

func (q Typing) Ref() QuestionRef {
	return QuestionRef{ID: q.ID, VocabularyID: q.VocabularyID, Mode: ModeTyping}
}

// Listening plays audio and asks for a dictation of what was heard.
type Listening struct {
	ID            string `json:"id"`
	VocabularyID  string `json:"vocabulary_id"`
	AudioURL      string `json:"audio_url"`
	CorrectAnswer string `json:"correct_answer"`
	Translation   string `json:"translation"`
}

func (q Listening) Ref() QuestionRef {
	return QuestionRef{ID: q.ID, VocabularyID: q.VocabularyID, Mode: ModeListening}
}

// Matching holds one round of the pair-matching mini-game. For every
// pair id the item list carries exactly two items, one per side; the
// pair id doubles as the vocabulary id for batch reporting.
type Matching struct {
	ID        string          `json:"id"`
	Items     []matching.Item `json:"items"`
	PairCount int             `json:"pair_count"`
}

func (q Matching) Ref() QuestionRef {
	return QuestionRef{ID: q.ID, Mode: ModeMatching}
}

// SessionData is the locally persisted mirror of a session: the
// immutable question batch plus mode and settings, written by the
// external setup step and read exactly once by the engine.
type SessionData struct {
	Questions []Question
	Total     int
	Mode      Mode
	Direction Direction
	Settings  Settings
}

// sessionDataJSON is the wire shape of SessionData.
type sessionDataJSON struct {
	Questions []json.RawMessage `json:"questions"`
	Total     int               `json:"total"`
	Mode      Mode              `json:"mode"`
	Direction Direction         `json:"direction,omitempty"`
	Settings  Settings          `json:"settings"`
}

// questionEnvelope peeks at the variant tag before full decoding.
type questionEnvelope struct {
	Mode Mode `json:"mode"`
}

// MarshalJSON encodes each question with its mode tag.
func (d SessionData) MarshalJSON() ([]byte, error) {
	out := sessionDataJSON{
		Total:     d.Total,
		Mode:      d.Mode,
		Direction: d.Direction,
		Settings:  d.Settings,
	}
	for _, q := range d.Questions {
		raw, err := marshalQuestion(q)
		if err != nil {
			return nil, err
		}
		out.Questions = append(out.Questions, raw)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the tagged question variants.
func (d *SessionData) UnmarshalJSON(data []byte) error {
	var wire sessionDataJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	d.Total = wire.Total
	d.Mode = wire.Mode
	d.Direction = wire.Direction
	d.Settings = wire.Settings
	d.Questions = d.Questions[:0]

	for i, raw := range wire.Questions {
		q, err := unmarshalQuestion(raw)
		if err != nil {
			return fmt.Errorf("question %d: %w", i, err)
		}
		d.Questions = append(d.Questions, q)
	}
	return nil
}

func marshalQuestion(q Question) (json.RawMessage, error) {
	body, err := json.Marshal(q)
	if err != nil {
		return nil, err
	}
	// Splice the mode tag into the variant's own object.
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	tag, err := json.Marshal(q.Ref().Mode)
	if err != nil {
		return nil, err
	}
	fields["mode"] = tag
	return json.Marshal(fields)
}

func unmarshalQuestion(raw json.RawMessage) (Question, error) {
	var env questionEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}

	switch env.Mode {
	case ModeMultipleChoice:
		var q MultipleChoice
		if err := json.Unmarshal(raw, &q); err != nil {
			return nil, err
		}
		return q, nil
	case ModeTyping:
		var q Typing
		if err := json.Unmarshal(raw, &q); err != nil {
			return nil, err
		}
		return q, nil
	case ModeListening:
		var q Listening
		if err := json.Unmarshal(raw, &q); err != nil {
			return nil, err
		}
		return q, nil
	case ModeMatching:
		var q Matching
		if err := json.Unmarshal(raw, &q); err != nil {
			return nil, err
		}
		return q, nil
	default:
		return nil, fmt.Errorf("unknown question mode %q", env.Mode)
	}
}
