// Package game runs the odd-one-out mini-game: nine GIFs of one category
// and one of another are shuffled together and the player has one guess
// at the outsider.
package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/pranshuj73/gifzoo/hasura"
	"github.com/pranshuj73/gifzoo/logger"
)

const (
	// MajorityCount is how many GIFs come from the majority category
	MajorityCount = 9
	// MinorityCount is how many GIFs come from the odd category
	MinorityCount = 1
	// RoundSize is the number of GIFs shown per round
	RoundSize = MajorityCount + MinorityCount
)

// Messages shown to the player
const (
	SuccessMessage = "Well done!! You chose the right one."
	FailureMessage = "Oho!! You chose the wrong one, try the next one."
	LoadingError   = "Error fetching GIFs."
)

var (
	ErrTooFewCategories = errors.New("game needs at least two distinct categories")
	ErrRoundInFlight    = errors.New("a round is already loading")
	ErrNotReady         = errors.New("round is not ready")
	ErrSubmitDisabled   = errors.New("answer already submitted")
	ErrNotSubmitted     = errors.New("nothing to dismiss")
	ErrNotFailed        = errors.New("nothing to retry")
	ErrOutOfRange       = errors.New("selection out of range")
	ErrShortSample      = errors.New("upstream returned too few GIFs")
)

// Fetcher loads a fixed-size sample of one category
type Fetcher interface {
	SampleGifs(ctx context.Context, category string, limit int) ([]hasura.Gif, error)
}

// State is a session's position in the round lifecycle
type State int

const (
	Loading State = iota
	Ready
	Submitted
	Failed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Submitted:
		return "submitted"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Round is one shuffled set of GIFs. Items[OddIndex] is the only item
// drawn from Minority.
type Round struct {
	Items    []hasura.Gif
	OddIndex int
	Majority string
	Minority string
}

// NoticeKind distinguishes the two submission outcomes
type NoticeKind int

const (
	Success NoticeKind = iota
	Failure
)

// Notice is the dismissible feedback raised by Submit
type Notice struct {
	Kind    NoticeKind
	Message string
}

// Snapshot is a consistent copy of session state for rendering
type Snapshot struct {
	State          State
	Round          *Round
	Selected       int // -1 when nothing is selected
	SubmitDisabled bool
	Notice         *Notice
	ErrMessage     string
	Correct        int
	Played         int
}

// Session is one player's game. It is safe for concurrent use.
type Session struct {
	fetcher    Fetcher
	categories []string

	mu             sync.Mutex
	rng            *rand.Rand
	state          State
	fetching       bool
	round          *Round
	selected       int
	submitDisabled bool
	notice         *Notice
	errMessage     string
	correct        int
	played         int
}

// NewSession creates a session in the Loading state; call StartRound to
// fetch the first round. rng drives category choice and shuffling.
func NewSession(fetcher Fetcher, categories []string, rng *rand.Rand) (*Session, error) {
	seen := make(map[string]bool)
	var distinct []string
	for _, c := range categories {
		if c != "" && !seen[c] {
			seen[c] = true
			distinct = append(distinct, c)
		}
	}
	if len(distinct) < 2 {
		return nil, ErrTooFewCategories
	}

	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return &Session{
		fetcher:    fetcher,
		categories: distinct,
		rng:        rng,
		state:      Loading,
		selected:   -1,
	}, nil
}

// StartRound discards the current round and loads a new one
func (s *Session) StartRound(ctx context.Context) error {
	s.mu.Lock()
	if s.fetching {
		s.mu.Unlock()
		return ErrRoundInFlight
	}
	majority, minority := s.beginLocked()
	s.mu.Unlock()

	return s.load(ctx, majority, minority)
}

// Retry starts a new round after a failed one
func (s *Session) Retry(ctx context.Context) error {
	s.mu.Lock()
	if s.state != Failed || s.fetching {
		s.mu.Unlock()
		return ErrNotFailed
	}
	majority, minority := s.beginLocked()
	s.mu.Unlock()

	return s.load(ctx, majority, minority)
}

// Dismiss closes the submission notice, re-enables submitting and starts
// the next round.
func (s *Session) Dismiss(ctx context.Context) error {
	s.mu.Lock()
	if s.state != Submitted || s.fetching {
		s.mu.Unlock()
		return ErrNotSubmitted
	}
	s.submitDisabled = false
	majority, minority := s.beginLocked()
	s.mu.Unlock()

	return s.load(ctx, majority, minority)
}

// beginLocked moves to Loading and draws the two categories
func (s *Session) beginLocked() (string, string) {
	s.fetching = true
	s.state = Loading
	s.round = nil
	s.selected = -1
	s.notice = nil
	s.errMessage = ""

	n := len(s.categories)
	majority := s.categories[s.rng.IntN(n)]
	minority := s.categories[s.rng.IntN(n)]
	for minority == majority {
		minority = s.categories[s.rng.IntN(n)]
	}
	return majority, minority
}

// load fetches both samples in order and builds the round
func (s *Session) load(ctx context.Context, majority, minority string) error {
	logger.Debug("Loading odd-one-out round", map[string]interface{}{
		"majority": majority,
		"minority": minority,
	})

	many, err := s.fetcher.SampleGifs(ctx, majority, MajorityCount)
	if err != nil {
		return s.fail(fmt.Errorf("fetch %s: %w", majority, err))
	}
	if len(many) < MajorityCount {
		return s.fail(fmt.Errorf("fetch %s: got %d of %d: %w", majority, len(many), MajorityCount, ErrShortSample))
	}

	one, err := s.fetcher.SampleGifs(ctx, minority, MinorityCount)
	if err != nil {
		return s.fail(fmt.Errorf("fetch %s: %w", minority, err))
	}
	if len(one) < MinorityCount {
		return s.fail(fmt.Errorf("fetch %s: got %d of %d: %w", minority, len(one), MinorityCount, ErrShortSample))
	}

	items := make([]hasura.Gif, 0, RoundSize)
	items = append(items, many[:MajorityCount]...)
	items = append(items, one[0])

	s.mu.Lock()
	defer s.mu.Unlock()

	odd := len(items) - 1
	s.rng.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
		switch odd {
		case i:
			odd = j
		case j:
			odd = i
		}
	})

	s.round = &Round{
		Items:    items,
		OddIndex: odd,
		Majority: majority,
		Minority: minority,
	}
	s.state = Ready
	s.fetching = false

	logger.Info("Odd-one-out round ready", map[string]interface{}{
		"majority": majority,
		"minority": minority,
		"oddIndex": odd,
	})
	return nil
}

func (s *Session) fail(err error) error {
	logger.Error("Failed to load odd-one-out round", err, nil)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = Failed
	s.fetching = false
	s.errMessage = LoadingError
	return err
}

// Select highlights index i. Only valid while Ready.
func (s *Session) Select(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Ready {
		return ErrNotReady
	}
	if i < 0 || i >= len(s.round.Items) {
		return ErrOutOfRange
	}
	s.selected = i
	return nil
}

// Submit checks the current selection against the odd item. It succeeds
// at most once per round; no selection counts as a wrong answer.
func (s *Session) Submit() (Notice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submitDisabled {
		return Notice{}, ErrSubmitDisabled
	}
	if s.state != Ready {
		return Notice{}, ErrNotReady
	}

	s.submitDisabled = true
	s.played++

	notice := Notice{Kind: Failure, Message: FailureMessage}
	if s.selected >= 0 && s.selected == s.round.OddIndex {
		s.correct++
		notice = Notice{Kind: Success, Message: SuccessMessage}
	}

	s.notice = &notice
	s.state = Submitted

	logger.Info("Odd-one-out answer submitted", map[string]interface{}{
		"selected": s.selected,
		"oddIndex": s.round.OddIndex,
		"correct":  notice.Kind == Success,
	})
	return notice, nil
}

// Snapshot returns a copy of the session state
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		State:          s.state,
		Selected:       s.selected,
		SubmitDisabled: s.submitDisabled,
		ErrMessage:     s.errMessage,
		Correct:        s.correct,
		Played:         s.played,
	}
	if s.round != nil {
		r := *s.round
		r.Items = append([]hasura.Gif(nil), s.round.Items...)
		snap.Round = &r
	}
	if s.notice != nil {
		n := *s.notice
		snap.Notice = &n
	}
	return snap
}

// State returns the current state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
