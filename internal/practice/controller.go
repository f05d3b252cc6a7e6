package practice

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"vocadrill/internal/answer"
	"vocadrill/internal/countdown"
	"vocadrill/internal/matching"
)

// submitTimeout bounds the fire-and-forget answer and batch reports.
const submitTimeout = 10 * time.Second

// Feedback is what the presentation layer shows after a submit or
// skip.
type Feedback struct {
	IsCorrect     bool
	Skipped       bool
	CorrectAnswer string
	// MatchedAnswer is the candidate the input matched, for correct
	// answers under fuzzy tolerance.
	MatchedAnswer string
	// Diff is the positional character diff, present for wrong
	// free-text answers.
	Diff []answer.DiffToken
}

// Controller is the orchestrating state machine of one practice
// session. It loads the session mirror, serves questions, delegates
// answer checking and the matching round, drives the auto-advance
// countdown and finalizes the session exactly once.
type Controller struct {
	store SessionStore
	guard SessionGuard
	svc   LearningService
	log   *zap.Logger
	now   func() time.Time

	timer *countdown.Timer

	mu            sync.Mutex
	session       Session
	data          *SessionData
	records       []AnswerRecord
	skipped       int
	hintsUsed     int
	questionStart time.Time
	lastFeedback  *Feedback
	round         *matching.Engine
	roundOpts     []matching.Option
	eager         *finisher
	finishing     bool
	finishErr     error
	result        *SessionResult
	streak        *StreakStatus
	onChange      func()

	pendingCountdown *countdownConfig

	submits sync.WaitGroup
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithLogger sets the structured logger.
func WithLogger(log *zap.Logger) ControllerOption {
	return func(c *Controller) { c.log = log }
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) ControllerOption {
	return func(c *Controller) { c.now = now }
}

// WithOnChange registers a callback fired after state transitions that
// happen off the caller's goroutine: auto-advance, round completion
// and eager finish. The presentation layer uses it to re-render.
func WithOnChange(fn func()) ControllerOption {
	return func(c *Controller) { c.onChange = fn }
}

// WithRoundOptions forwards options to matching engines the controller
// creates (tests).
func WithRoundOptions(opts ...matching.Option) ControllerOption {
	return func(c *Controller) { c.roundOpts = opts }
}

// countdownOpts is set by WithCountdown before the timer is built.
type countdownConfig struct {
	seconds  int
	interval time.Duration
}

var defaultCountdown = countdownConfig{seconds: countdown.DefaultSeconds, interval: time.Second}

// WithFeedbackCountdown overrides the feedback countdown length and
// tick interval.
func WithFeedbackCountdown(seconds int, interval time.Duration) ControllerOption {
	return func(c *Controller) { c.pendingCountdown = &countdownConfig{seconds: seconds, interval: interval} }
}

// NewController wires the engine's ports together. The controller is
// inert until Start is called.
func NewController(store SessionStore, guard SessionGuard, svc LearningService, opts ...ControllerOption) *Controller {
	c := &Controller{
		store: store,
		guard: guard,
		svc:   svc,
		log:   zap.NewNop(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	cfg := defaultCountdown
	if c.pendingCountdown != nil {
		cfg = *c.pendingCountdown
	}
	c.timer = countdown.New(cfg.seconds,
		func() { c.autoAdvance() },
		countdown.WithInterval(cfg.interval),
		countdown.WithOnTick(func(int) { c.notify() }),
	)
	return c
}

// Start loads the session mirror and acquires the active-session
// guard. A held guard for a different session yields *ErrSessionActive
// so the caller can redirect back to it; a missing mirror yields
// ErrSessionNotFound so the caller routes to setup.
func (c *Controller) Start(ctx context.Context, sessionID string) error {
	if err := c.guard.Acquire(sessionID); err != nil {
		return err
	}

	data, err := c.store.LoadSession(ctx, sessionID)
	if err != nil {
		if rerr := c.guard.Release(sessionID); rerr != nil {
			c.log.Warn("guard release failed", zap.Error(rerr))
		}
		return err
	}

	total := data.Total
	if total == 0 {
		total = len(data.Questions)
	}

	c.mu.Lock()
	c.data = data
	c.session = Session{
		ID:             sessionID,
		Mode:           data.Mode,
		Direction:      data.Direction,
		TotalQuestions: total,
		StartedAt:      c.now(),
		CurrentIndex:   0,
		Status:         StatusQuestion,
	}
	c.questionStart = c.now()
	c.mu.Unlock()
	return nil
}

// Session returns a snapshot of the session state.
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Current returns the question at the current index. During feedback
// the same question is returned so the presentation layer can keep it
// on screen. A stale or out-of-range index reports ErrNotReady rather
// than failing.
func (c *Controller) Current() (Question, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentLocked()
}

func (c *Controller) currentLocked() (Question, error) {
	if c.data == nil || c.session.Status == StatusLoading || c.session.Status == StatusCompleted {
		return nil, ErrNotReady
	}
	idx := c.session.CurrentIndex
	if idx < 0 || idx >= len(c.data.Questions) {
		return nil, ErrNotReady
	}
	return c.data.Questions[idx], nil
}

// SubmitAnswer validates the raw input for the current non-matching
// question, records the outcome, transitions to feedback and arms the
// auto-advance countdown. On the last question the eager completion is
// started in parallel. The remote report is fire-and-forget: failures
// are logged, never surfaced mid-session.
func (c *Controller) SubmitAnswer(ctx context.Context, rawInput string) (*Feedback, error) {
	return c.record(ctx, rawInput, false)
}

// Skip records the current question as skipped: always incorrect, with
// the empty-answer sentinel, and otherwise behaves like SubmitAnswer.
func (c *Controller) Skip(ctx context.Context) (*Feedback, error) {
	return c.record(ctx, SkipSentinel, true)
}

func (c *Controller) record(ctx context.Context, rawInput string, skip bool) (*Feedback, error) {
	c.mu.Lock()
	if c.session.Status != StatusQuestion {
		c.mu.Unlock()
		return nil, ErrNotReady
	}
	q, err := c.currentLocked()
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}

	correct, alternates, ok := answerKey(q)
	if !ok {
		c.mu.Unlock()
		return nil, ErrNotReady // matching rounds report via CompleteRound
	}

	fb := &Feedback{Skipped: skip, CorrectAnswer: correct}
	if !skip {
		tolerance := c.data.Settings.Tolerance
		if q.Ref().Mode == ModeMultipleChoice {
			tolerance = answer.ToleranceStrict
		}
		res := answer.Validate(rawInput, correct, alternates, tolerance)
		fb.IsCorrect = res.IsCorrect
		fb.MatchedAnswer = res.MatchedAnswer
		if !res.IsCorrect {
			fb.Diff = answer.Diff(rawInput, correct)
		}
	}

	elapsed := int(c.now().Sub(c.questionStart).Milliseconds())
	rec := AnswerRecord{
		VocabularyID:  q.Ref().VocabularyID,
		Mode:          q.Ref().Mode,
		UserAnswer:    rawInput,
		CorrectAnswer: correct,
		IsCorrect:     fb.IsCorrect,
		TimeSpentMs:   elapsed,
		HintCount:     c.hintsUsed,
	}
	c.records = append(c.records, rec)
	if skip {
		c.skipped++
	}
	c.hintsUsed = 0
	c.lastFeedback = fb
	c.session.Status = StatusFeedback

	if c.session.CurrentIndex+1 >= c.session.TotalQuestions {
		c.beginEagerLocked()
	}

	sub := AnswerSubmission{
		SessionID:     c.session.ID,
		VocabularyID:  rec.VocabularyID,
		Mode:          rec.Mode,
		UserAnswer:    rec.UserAnswer,
		CorrectAnswer: rec.CorrectAnswer,
		IsCorrect:     rec.IsCorrect,
		TimeSpentMs:   rec.TimeSpentMs,
		HintCount:     rec.HintCount,
	}
	c.mu.Unlock()

	c.timer.Start()
	c.submitAsync(sub)
	return fb, nil
}

// answerKey extracts the comparison key for a non-matching question.
func answerKey(q Question) (correct string, alternates []string, ok bool) {
	switch q := q.(type) {
	case MultipleChoice:
		return q.CorrectAnswer(), nil, true
	case Typing:
		return q.CorrectAnswer, q.AcceptableAnswers, true
	case Listening:
		return q.CorrectAnswer, nil, true
	default:
		return "", nil, false
	}
}

// Next leaves feedback: it advances to the following question or, past
// the last one, finishes the session. The countdown is reset before
// the state change becomes visible.
func (c *Controller) Next(ctx context.Context) error {
	c.mu.Lock()
	if c.session.Status != StatusFeedback {
		c.mu.Unlock()
		return ErrNotReady
	}
	c.timer.Stop()

	if c.session.CurrentIndex+1 < c.session.TotalQuestions {
		c.session.CurrentIndex++
		c.session.Status = StatusQuestion
		c.questionStart = c.now()
		c.lastFeedback = nil
		c.round = nil
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	return c.Finish(ctx)
}

// autoAdvance is the countdown expiry path. A finalize failure here is
// kept for the presentation layer to offer a retry.
func (c *Controller) autoAdvance() {
	if err := c.Next(context.Background()); err != nil {
		c.log.Warn("auto-advance", zap.Error(err))
	}
	c.notify()
}

// Finish finalizes the session at most once. A finish already in
// flight or completed is a no-op. An eager completion, if one was
// started, is joined instead of issuing a second finalize call. On
// failure the guard flag is released so the user may retry; the
// session is not silently treated as complete.
func (c *Controller) Finish(ctx context.Context) error {
	c.mu.Lock()
	if c.session.Status == StatusCompleted || c.finishing {
		c.mu.Unlock()
		return nil
	}
	c.finishing = true
	eager := c.eager
	sessionID := c.session.ID
	duration := int(c.now().Sub(c.session.StartedAt).Seconds())
	c.mu.Unlock()

	var res *FinalizeResult
	var streak *StreakStatus
	var err error
	if eager != nil {
		res, err = eager.wait(ctx)
		streak = eager.streak
	} else {
		res, err = c.svc.FinalizeSession(ctx, sessionID, duration)
		if err == nil {
			if st, serr := c.svc.FetchStreakStatus(ctx); serr == nil {
				streak = st
			} else {
				c.log.Warn("streak refresh failed", zap.Error(serr))
			}
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.finishing = false

	if err != nil {
		// Consume the failed eager attempt so the retry issues a
		// fresh finalize call.
		c.eager = nil
		c.finishErr = &ErrFinalizeFailed{Err: err}
		return c.finishErr
	}

	c.timer.Stop()
	if rerr := c.guard.Release(sessionID); rerr != nil {
		c.log.Warn("guard release failed", zap.Error(rerr))
	}
	c.session.Status = StatusCompleted
	c.finishErr = nil
	c.streak = streak
	c.result = c.buildResultLocked(duration, res)
	return nil
}

// beginEagerLocked starts the finalize call in parallel with the
// feedback countdown. Fired at most once per session; the call runs on
// a background context because it must outlive the submit that
// triggered it.
func (c *Controller) beginEagerLocked() {
	if c.eager != nil {
		return
	}
	f := newFinisher()
	c.eager = f
	sessionID := c.session.ID
	duration := int(c.now().Sub(c.session.StartedAt).Seconds())
	go func() {
		f.run(context.Background(), c.svc, sessionID, duration)
		c.notify()
	}()
}

// Round returns the matching engine for the current matching question,
// creating it on first access. Its completion callback feeds
// CompleteRound.
func (c *Controller) Round() (*matching.Engine, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session.Status != StatusQuestion {
		return nil, ErrNotReady
	}
	q, err := c.currentLocked()
	if err != nil {
		return nil, err
	}
	mq, ok := q.(Matching)
	if !ok {
		return nil, ErrNotReady
	}

	if c.round == nil {
		c.round = matching.NewEngine(mq.Items, func(outcomes []matching.Outcome, totalTimeMs int) {
			if err := c.CompleteRound(context.Background(), outcomes, totalTimeMs); err != nil {
				c.log.Warn("round completion", zap.Error(err))
			}
			c.notify()
		}, c.roundOpts...)
	}
	return c.round, nil
}

// CompleteRound records a finished matching round and performs the
// same batch-submit plus advance-or-finish logic Next applies to the
// other modes. The batch report is issued before the session advances.
func (c *Controller) CompleteRound(ctx context.Context, results []matching.Outcome, totalTimeMs int) error {
	c.mu.Lock()
	if c.session.Status != StatusQuestion {
		c.mu.Unlock()
		return ErrNotReady
	}
	if _, err := c.currentLocked(); err != nil {
		c.mu.Unlock()
		return err
	}

	batch := make([]BatchResult, 0, len(results))
	for _, o := range results {
		c.records = append(c.records, AnswerRecord{
			VocabularyID: o.PairID,
			Mode:         ModeMatching,
			IsCorrect:    o.IsCorrect,
			TimeSpentMs:  o.TimeSpentMs,
		})
		batch = append(batch, BatchResult{
			VocabularyID: o.PairID,
			IsCorrect:    o.IsCorrect,
			TimeSpentMs:  o.TimeSpentMs,
		})
	}

	sessionID := c.session.ID
	last := c.session.CurrentIndex+1 >= c.session.TotalQuestions
	if last {
		c.beginEagerLocked()
	}
	c.mu.Unlock()

	c.batchAsync(sessionID, batch)

	if !last {
		c.mu.Lock()
		c.session.CurrentIndex++
		c.questionStart = c.now()
		c.round = nil
		c.mu.Unlock()
		return nil
	}
	return c.Finish(ctx)
}

// Quit abandons the session: countdown stopped, guard released, no
// finalize call.
func (c *Controller) Quit(ctx context.Context) error {
	c.mu.Lock()
	c.timer.Stop()
	sessionID := c.session.ID
	c.session.Status = StatusCompleted
	c.mu.Unlock()

	return c.guard.Release(sessionID)
}

// MaskedExample renders the current typing question's example sentence
// with the target span cloze-masked, unless cloze is disabled or no
// span clears the threshold.
func (c *Controller) MaskedExample() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	q, err := c.currentLocked()
	if err != nil {
		return "", false
	}
	tq, ok := q.(Typing)
	if !ok || tq.ExampleSentence == "" {
		return "", false
	}
	if !c.data.Settings.ClozeEnabled {
		return tq.ExampleSentence, true
	}

	candidates := append([]string{tq.CorrectAnswer}, tq.AcceptableAnswers...)
	candidates = append(candidates, tq.Prompt)
	span := answer.FindClozeSpan(tq.ExampleSentence, candidates, answer.DefaultClozeThreshold)
	return answer.MaskTokens(tq.ExampleSentence, span), true
}

// RevealHint counts a hint use for the current question and returns
// the running count. What the hint shows is the presentation layer's
// concern.
func (c *Controller) RevealHint() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session.Status != StatusQuestion {
		return c.hintsUsed
	}
	c.hintsUsed++
	return c.hintsUsed
}

// LastFeedback returns the feedback for the most recent submit or
// skip, nil outside the feedback state.
func (c *Controller) LastFeedback() *Feedback {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastFeedback
}

// FinishError reports a pending finalize failure, for the retry
// affordance.
func (c *Controller) FinishError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.finishErr
}

// Result returns the session summary once the session has completed.
func (c *Controller) Result() (*SessionResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result == nil {
		return nil, false
	}
	r := *c.result
	return &r, true
}

// Streak returns the eagerly refreshed streak status, if the refresh
// succeeded.
func (c *Controller) Streak() (*StreakStatus, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.streak == nil {
		return nil, false
	}
	s := *c.streak
	return &s, true
}

// Remaining exposes the feedback countdown value for display.
func (c *Controller) Remaining() int {
	return c.timer.Remaining()
}

// Records returns a copy of the local answer records.
func (c *Controller) Records() []AnswerRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]AnswerRecord, len(c.records))
	copy(out, c.records)
	return out
}

// buildResultLocked derives the summary from the local records. The
// local tally is authoritative even when remote writes failed, so the
// session stays summarizable offline; the server's FinalizeResult is
// accepted only for fields the local view cannot know.
func (c *Controller) buildResultLocked(durationSeconds int, _ *FinalizeResult) *SessionResult {
	correct := 0
	for _, r := range c.records {
		if r.IsCorrect {
			correct++
		}
	}
	total := len(c.records)
	wrong := total - correct - c.skipped

	res := &SessionResult{
		Correct:         correct,
		Wrong:           wrong,
		Skipped:         c.skipped,
		Total:           total,
		DurationSeconds: durationSeconds,
	}
	if total > 0 {
		res.Accuracy = float64(correct) / float64(total)
	}
	return res
}

// submitAsync fires the per-question report without blocking the
// session. Failures are logged and swallowed; the local record already
// feeds the summary.
func (c *Controller) submitAsync(sub AnswerSubmission) {
	c.submits.Add(1)
	go func() {
		defer c.submits.Done()
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()
		if err := c.svc.SubmitAnswer(ctx, sub); err != nil {
			c.log.Warn("answer submit failed",
				zap.String("vocabulary_id", sub.VocabularyID),
				zap.Error(err),
			)
		}
	}()
}

// batchAsync fires the matching round's batch report, same contract as
// submitAsync.
func (c *Controller) batchAsync(sessionID string, batch []BatchResult) {
	c.submits.Add(1)
	go func() {
		defer c.submits.Done()
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()
		if err := c.svc.SubmitAnswerBatch(ctx, sessionID, batch); err != nil {
			c.log.Warn("batch submit failed",
				zap.String("session_id", sessionID),
				zap.Error(err),
			)
		}
	}()
}

func (c *Controller) notify() {
	if c.onChange != nil {
		c.onChange()
	}
}
