package practice

import "context"

// finisher is one eager completion attempt: the finalize call issued
// while the feedback countdown is still running, so the network
// latency hides behind the countdown UI. Finish joins it instead of
// issuing a duplicate finalize call.
type finisher struct {
	done   chan struct{}
	result *FinalizeResult
	streak *StreakStatus
	err    error
}

func newFinisher() *finisher {
	return &finisher{done: make(chan struct{})}
}

// run performs the finalize call and, on success, the best-effort
// streak refresh needed right after the post-session redirect.
func (f *finisher) run(ctx context.Context, svc LearningService, sessionID string, durationSeconds int) {
	res, err := svc.FinalizeSession(ctx, sessionID, durationSeconds)
	if err == nil {
		if streak, serr := svc.FetchStreakStatus(ctx); serr == nil {
			f.streak = streak
		}
	}
	f.result = res
	f.err = err
	close(f.done)
}

// wait blocks until the eager attempt resolves or ctx is cancelled.
func (f *finisher) wait(ctx context.Context) (*FinalizeResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-f.done:
		return f.result, f.err
	}
}
