package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vocadrill/internal/practice"
)

func TestSubmitAnswer_PostsJSON(t *testing.T) {
	var gotPath string
	var gotSub practice.AnswerSubmission
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotSub); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	sub := practice.AnswerSubmission{
		SessionID:    "sess-1",
		VocabularyID: "v1",
		Mode:         practice.ModeTyping,
		UserAnswer:   "hund",
		IsCorrect:    true,
		TimeSpentMs:  1200,
	}
	if err := c.SubmitAnswer(context.Background(), sub); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}

	if gotPath != "/api/v1/sessions/sess-1/answers" {
		t.Errorf("path = %q", gotPath)
	}
	if gotSub.VocabularyID != "v1" || !gotSub.IsCorrect {
		t.Errorf("submission = %+v", gotSub)
	}
}

func TestSubmitAnswerBatch_WrapsResults(t *testing.T) {
	var gotBody struct {
		Results []practice.BatchResult `json:"results"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/sessions/sess-1/answers/batch" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	results := []practice.BatchResult{
		{VocabularyID: "p1", IsCorrect: true, TimeSpentMs: 800},
		{VocabularyID: "p2", IsCorrect: false, TimeSpentMs: 2100},
	}
	if err := c.SubmitAnswerBatch(context.Background(), "sess-1", results); err != nil {
		t.Fatalf("SubmitAnswerBatch: %v", err)
	}
	if len(gotBody.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(gotBody.Results))
	}
	if gotBody.Results[1].VocabularyID != "p2" || gotBody.Results[1].IsCorrect {
		t.Errorf("results[1] = %+v", gotBody.Results[1])
	}
}

func TestFinalizeSession_DecodesSummary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			DurationSeconds int `json:"duration_seconds"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if body.DurationSeconds != 92 {
			t.Errorf("duration_seconds = %d", body.DurationSeconds)
		}
		json.NewEncoder(w).Encode(practice.FinalizeResult{
			Correct: 8, Wrong: 2, Total: 10, DurationSeconds: 92, Accuracy: 0.8,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	result, err := c.FinalizeSession(context.Background(), "sess-1", 92)
	if err != nil {
		t.Fatalf("FinalizeSession: %v", err)
	}
	if result.Correct != 8 || result.Accuracy != 0.8 {
		t.Errorf("result = %+v", result)
	}
}

func TestFetchStreakStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/v1/streak" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(practice.StreakStatus{
			CurrentStreak: 4, LongestStreak: 11, PracticedToday: true,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	status, err := c.FetchStreakStatus(context.Background())
	if err != nil {
		t.Fatalf("FetchStreakStatus: %v", err)
	}
	if status.CurrentStreak != 4 || !status.PracticedToday {
		t.Errorf("status = %+v", status)
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(t *testing.T, err error)
	}{
		{
			name:   "server error is unavailable",
			status: http.StatusBadGateway,
			check: func(t *testing.T, err error) {
				var unavail *ErrUnavailable
				if !errors.As(err, &unavail) {
					t.Fatalf("err = %v, want *ErrUnavailable", err)
				}
				if unavail.StatusCode != http.StatusBadGateway {
					t.Errorf("StatusCode = %d", unavail.StatusCode)
				}
			},
		},
		{
			name:   "client error is rejected",
			status: http.StatusUnprocessableEntity,
			check: func(t *testing.T, err error) {
				var rejected *ErrRejected
				if !errors.As(err, &rejected) {
					t.Fatalf("err = %v, want *ErrRejected", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			err := NewClient(srv.URL).SubmitAnswer(context.Background(), practice.AnswerSubmission{SessionID: "s"})
			if err == nil {
				t.Fatal("expected error")
			}
			tt.check(t, err)
		})
	}
}

func TestRateLimited_CarriesRetryAfter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "2")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := NewClient(srv.URL).SubmitAnswer(context.Background(), practice.AnswerSubmission{SessionID: "s"})
	var rl *ErrRateLimited
	if !errors.As(err, &rl) {
		t.Fatalf("err = %v, want *ErrRateLimited", err)
	}
	if rl.RetryAfter != 2*time.Second {
		t.Errorf("RetryAfter = %v", rl.RetryAfter)
	}
}
