// Package matching implements the per-round state machine of the
// pair-matching mini-game: two columns of cards, one source and one
// target per pair, matched by selecting one card from each side.
package matching

import (
	"sync"
	"time"
)

// Side distinguishes the two columns of a matching round.
type Side string

const (
	SideSource Side = "source"
	SideTarget Side = "target"
)

// Item is a single card in a matching round.
type Item struct {
	ID     string `json:"id"`
	PairID string `json:"pair_id"`
	Side   Side   `json:"side"`
	Text   string `json:"text"`
}

// Outcome records the result of one match attempt. One outcome is
// produced per comparison, so a round with no mismatches yields
// exactly one outcome per pair.
type Outcome struct {
	PairID      string
	IsCorrect   bool
	TimeSpentMs int
}

// ItemState describes how a card should be presented.
type ItemState int

const (
	StateIdle ItemState = iota
	StateSelected
	StateMatched
	StateDead
)

// EventKind classifies what a Select call did.
type EventKind int

const (
	// EventIgnored: the card is matched or dead and no longer playable.
	EventIgnored EventKind = iota
	// EventSelected: the card became the pending selection.
	EventSelected
	// EventDeselected: the pending selection was clicked again and cleared.
	EventDeselected
	// EventReplaced: a same-side card replaced the pending selection.
	EventReplaced
	// EventMatched: the two selected cards belong to the same pair.
	EventMatched
	// EventMismatched: the cards belong to different pairs; the first
	// card and its correct partner are now dead.
	EventMismatched
)

// Event is the result of a Select call.
type Event struct {
	Kind EventKind
	// PairID is set for matched and mismatched events; on a mismatch it
	// is the pair of the first-selected card (the pair that died).
	PairID string
}

// SettleDelay is the pause between the last resolved pair and the
// round-complete emit, so the final card flip stays visible.
const SettleDelay = 350 * time.Millisecond

// Engine runs one matching round over a fixed item list.
//
// Mismatch semantics are strict but forgiving: an incorrect guess kills
// the first-selected card and its correct partner, revealing the
// pairing the player committed to, while the wrongly-clicked second
// card stays in play. The wrong-item set therefore always holds an
// even number of ids, and a matched pair never contributes to it.
type Engine struct {
	mu sync.Mutex

	items []Item
	byID  map[string]Item

	selected  *Item
	matched   map[string]bool // pair ids
	wrong     map[string]bool // item ids
	outcomes  []Outcome
	pairStart map[string]time.Time

	started  time.Time
	complete bool
	emitted  bool

	onComplete func(outcomes []Outcome, totalTimeMs int)

	// Injection points for tests.
	now   func() time.Time
	after func(d time.Duration, fn func())
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the engine's time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithScheduler overrides the settle-delay scheduler.
func WithScheduler(after func(d time.Duration, fn func())) Option {
	return func(e *Engine) { e.after = after }
}

// NewEngine creates a round over items. onComplete is invoked exactly
// once, after the settle delay, when every card is either matched or
// dead.
func NewEngine(items []Item, onComplete func(outcomes []Outcome, totalTimeMs int), opts ...Option) *Engine {
	e := &Engine{
		items:      items,
		byID:       make(map[string]Item, len(items)),
		matched:    make(map[string]bool),
		wrong:      make(map[string]bool),
		pairStart:  make(map[string]time.Time),
		onComplete: onComplete,
		now:        time.Now,
		after:      func(d time.Duration, fn func()) { time.AfterFunc(d, fn) },
	}
	for _, opt := range opts {
		opt(e)
	}
	for _, it := range items {
		e.byID[it.ID] = it
	}
	e.started = e.now()
	return e
}

// Items returns the round's cards in their original order.
func (e *Engine) Items() []Item {
	return e.items
}

// Select handles a click on the card with the given id.
func (e *Engine) Select(itemID string) Event {
	e.mu.Lock()

	item, ok := e.byID[itemID]
	if !ok || e.complete || e.matched[item.PairID] || e.wrong[item.ID] {
		e.mu.Unlock()
		return Event{Kind: EventIgnored}
	}

	// First pick.
	if e.selected == nil {
		e.markAttempt(item)
		e.selected = &item
		e.mu.Unlock()
		return Event{Kind: EventSelected}
	}

	first := *e.selected

	// Same card again: clear the selection.
	if first.ID == item.ID {
		e.selected = nil
		e.mu.Unlock()
		return Event{Kind: EventDeselected}
	}

	// Same side: swap the selection, no comparison.
	if first.Side == item.Side {
		e.markAttempt(item)
		e.selected = &item
		e.mu.Unlock()
		return Event{Kind: EventReplaced}
	}

	// Opposite side: compare.
	ev := e.checkMatch(first, item)

	done := e.roundDone()
	if done && !e.complete {
		e.complete = true
	}
	e.mu.Unlock()

	if done {
		e.scheduleEmit()
	}
	return ev
}

// checkMatch resolves a comparison between the pending selection and a
// second card of the opposite side. Caller holds the lock.
func (e *Engine) checkMatch(first, second Item) Event {
	e.markAttempt(second)
	e.selected = nil

	elapsed := int(e.now().Sub(e.pairStart[first.PairID]).Milliseconds())

	if first.PairID == second.PairID {
		e.matched[first.PairID] = true
		e.outcomes = append(e.outcomes, Outcome{PairID: first.PairID, IsCorrect: true, TimeSpentMs: elapsed})
		return Event{Kind: EventMatched, PairID: first.PairID}
	}

	// Kill the committed card and its revealed partner; the second
	// card was merely brushed and stays playable.
	e.wrong[first.ID] = true
	if partner, ok := e.partnerOf(first); ok {
		e.wrong[partner.ID] = true
	}
	e.outcomes = append(e.outcomes, Outcome{PairID: first.PairID, IsCorrect: false, TimeSpentMs: elapsed})
	return Event{Kind: EventMismatched, PairID: first.PairID}
}

// markAttempt captures the per-pair start timestamp the first time a
// card of that pair is touched.
func (e *Engine) markAttempt(item Item) {
	if _, ok := e.pairStart[item.PairID]; !ok {
		e.pairStart[item.PairID] = e.now()
	}
}

// partnerOf finds the card sharing item's pair on the opposite side.
func (e *Engine) partnerOf(item Item) (Item, bool) {
	for _, it := range e.items {
		if it.PairID == item.PairID && it.Side != item.Side {
			return it, true
		}
	}
	return Item{}, false
}

// roundDone reports whether every card is matched or dead.
// Caller holds the lock.
func (e *Engine) roundDone() bool {
	return 2*len(e.matched)+len(e.wrong) == len(e.items)
}

// scheduleEmit fires the completion callback once, after the settle
// delay.
func (e *Engine) scheduleEmit() {
	e.after(SettleDelay, func() {
		e.mu.Lock()
		if e.emitted || e.onComplete == nil {
			e.mu.Unlock()
			return
		}
		e.emitted = true
		outcomes := make([]Outcome, len(e.outcomes))
		copy(outcomes, e.outcomes)
		total := int(e.now().Sub(e.started).Milliseconds())
		cb := e.onComplete
		e.mu.Unlock()

		cb(outcomes, total)
	})
}

// StateOf reports how the card with the given id should render.
func (e *Engine) StateOf(itemID string) ItemState {
	e.mu.Lock()
	defer e.mu.Unlock()

	item, ok := e.byID[itemID]
	if !ok {
		return StateIdle
	}
	switch {
	case e.matched[item.PairID]:
		return StateMatched
	case e.wrong[item.ID]:
		return StateDead
	case e.selected != nil && e.selected.ID == item.ID:
		return StateSelected
	default:
		return StateIdle
	}
}

// ResolvedPairs counts pairs that are no longer in play, matched or
// dead, for progress reporting.
func (e *Engine) ResolvedPairs() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.matched) + len(e.wrong)/2
}

// TotalPairs is the number of pairs in the round.
func (e *Engine) TotalPairs() int {
	return len(e.items) / 2
}

// Complete reports whether every card has been resolved.
func (e *Engine) Complete() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.complete
}

// Outcomes returns a copy of the outcomes recorded so far.
func (e *Engine) Outcomes() []Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Outcome, len(e.outcomes))
	copy(out, e.outcomes)
	return out
}
