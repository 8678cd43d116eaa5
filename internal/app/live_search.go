package app

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"quiz-admin-console/internal/domain"
)

// DefaultDebounce is the quiet period after the last search keystroke.
const DefaultDebounce = 300 * time.Millisecond

// Sequencer numbers fetches so that only the latest one may publish.
type Sequencer struct {
	latest atomic.Uint64
}

// Next issues a new request number; it becomes the latest.
func (s *Sequencer) Next() uint64 {
	return s.latest.Add(1)
}

// IsLatest reports whether n is the most recently issued number.
func (s *Sequencer) IsLatest(n uint64) bool {
	return s.latest.Load() == n
}

// PageFetcher loads one page of questions for a search.
type PageFetcher func(ctx context.Context, page int, search string) (domain.QuizPage, error)

// LiveSearch drives the question screen of one connection. Search changes are
// debounced, page changes fetch at once and category changes regroup the last
// page locally. Responses older than the latest issued fetch are dropped.
type LiveSearch struct {
	ctx      context.Context
	fetch    PageFetcher
	publish  func(QuizPageView)
	fail     func(error)
	debounce time.Duration
	seq      Sequencer

	mu        sync.Mutex
	query     ListQuery
	last      *domain.QuizPage
	lastQuery ListQuery
	timer     *time.Timer
	timerGen  uint64
	closed    bool
}

// NewLiveSearch builds the search state. publish and fail are called with the
// state lock held, in order; they must not call back into the LiveSearch.
func NewLiveSearch(ctx context.Context, fetch PageFetcher, debounce time.Duration, publish func(QuizPageView), fail func(error)) *LiveSearch {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if fail == nil {
		fail = func(error) {}
	}
	return &LiveSearch{
		ctx:      ctx,
		fetch:    fetch,
		publish:  publish,
		fail:     fail,
		debounce: debounce,
		query:    ListQuery{}.normalize(),
	}
}

// ForSession binds the live search to a QuizService and a signed-in session.
func (s *QuizService) ForSession(sess domain.Session) PageFetcher {
	return func(ctx context.Context, page int, search string) (domain.QuizPage, error) {
		return s.Page(ctx, sess, page, search)
	}
}

// Query returns the current screen state.
func (l *LiveSearch) Query() ListQuery {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.query
}

// SetSearch records a keystroke. The fetch runs once the input has been quiet
// for the debounce period and always goes back to page 1.
func (l *LiveSearch) SetSearch(search string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.query.Search = search
	l.query.Page = 1
	l.stopTimerLocked()
	gen := l.timerGen
	l.timer = time.AfterFunc(l.debounce, func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.closed || gen != l.timerGen {
			return
		}
		l.timer = nil
		l.startLocked()
	})
}

// SetPage moves to another page immediately. A pending search is folded into
// this fetch.
func (l *LiveSearch) SetPage(page int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	if page < 1 {
		page = 1
	}
	l.query.Page = page
	l.stopTimerLocked()
	l.startLocked()
}

// SetCategory changes the selected category and regroups the last page
// without a fetch.
func (l *LiveSearch) SetCategory(category string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.query = ListQuery{Page: l.query.Page, Search: l.query.Search, Category: category}.normalize()
	if l.last == nil {
		return
	}
	q := l.lastQuery
	q.Category = l.query.Category
	l.publish(Present(*l.last, q))
}

// Load replaces the whole query and fetches immediately.
func (l *LiveSearch) Load(q ListQuery) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.query = q.normalize()
	l.stopTimerLocked()
	l.startLocked()
}

// Refresh re-fetches the current query immediately.
func (l *LiveSearch) Refresh() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.stopTimerLocked()
	l.startLocked()
}

// Close stops pending work; in-flight fetches finish but never publish.
func (l *LiveSearch) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	l.stopTimerLocked()
}

func (l *LiveSearch) stopTimerLocked() {
	l.timerGen++
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
}

func (l *LiveSearch) startLocked() {
	n := l.seq.Next()
	q := l.query
	go l.run(n, q)
}

func (l *LiveSearch) run(n uint64, q ListQuery) {
	page, err := l.fetch(l.ctx, q.Page, q.Search)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || !l.seq.IsLatest(n) {
		return
	}
	if err != nil {
		if l.ctx.Err() == nil {
			l.fail(err)
		}
		return
	}
	l.last = &page
	l.lastQuery = q
	q.Category = l.query.Category
	l.publish(Present(page, q))
}
