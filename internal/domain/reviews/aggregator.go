package reviews

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"festive/internal/params"

	"go.uber.org/zap"
)

const (
	// PageSize is fixed; the site always shows ten reviews per page.
	PageSize = params.DefaultLimit
	// ReconcileDelay is how long after a successful submit the collection is
	// reloaded from the store.
	ReconcileDelay = time.Second
	// FetchError is the only error message a refresh ever reports.
	FetchError = "failed to fetch reviews"
)

var (
	ErrSubmitFailed = errors.New("review was not accepted by the store")
	ErrClosed       = errors.New("review aggregator is closed")
)

// Source is the remote review store.
type Source interface {
	// ListReviews returns the current reviews. It only fails when ctx is done.
	ListReviews(ctx context.Context) ([]Review, error)
	// SubmitReview reports whether the store accepted d.
	SubmitReview(ctx context.Context, d Draft) bool
}

// Snapshot is an immutable view of the aggregator state.
type Snapshot struct {
	Reviews []Review
	Page    int
	Loading bool
	Err     string
	Version uint64
}

// Pagination returns the metadata for page p of the snapshot.
func (s Snapshot) Pagination(p int) params.Pagination {
	pg := params.New(p, PageSize)
	pg.ComputeMeta(len(s.Reviews))
	return pg
}

// Window returns the reviews on page p, or nil when p is out of range.
func (s Snapshot) Window(p int) []Review {
	pg := s.Pagination(p)
	if !pg.InRange() {
		return nil
	}
	lo, hi := pg.Bounds()
	return s.Reviews[lo:hi]
}

// Current returns the reviews on the current page.
func (s Snapshot) Current() []Review {
	return s.Window(s.Page)
}

// Aggregator owns the in-memory review collection. It keeps the collection
// sorted, tracks the current page and reconciles optimistic inserts with the
// remote store.
//
// Every load takes a ticket from a monotonic counter. A load that finishes
// after a newer state has already been applied is dropped.
type Aggregator struct {
	src    Source
	logger *zap.SugaredLogger
	now    func() time.Time
	delay  time.Duration

	mu       sync.Mutex
	all      []Review
	page     int
	inflight int
	err      string
	issued   uint64
	applied  uint64
	closed   bool

	subs    map[int]func(Snapshot)
	nextSub int

	ctx    context.Context
	cancel context.CancelFunc
	timers map[*time.Timer]struct{}
	wg     sync.WaitGroup
}

type Option func(*Aggregator)

func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

func WithReconcileDelay(d time.Duration) Option {
	return func(a *Aggregator) { a.delay = d }
}

// NewAggregator creates an empty aggregator on page 1. Call Refresh to load
// it and Close to release it.
func NewAggregator(src Source, logger *zap.SugaredLogger, opts ...Option) *Aggregator {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	ctx, cancel := context.WithCancel(context.Background())
	a := &Aggregator{
		src:    src,
		logger: logger,
		now:    time.Now,
		delay:  ReconcileDelay,
		page:   1,
		subs:   make(map[int]func(Snapshot)),
		ctx:    ctx,
		cancel: cancel,
		timers: make(map[*time.Timer]struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Refresh reloads the whole collection from the source. The current page is
// kept as is.
func (a *Aggregator) Refresh(ctx context.Context) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return ErrClosed
	}
	a.issued++
	ticket := a.issued
	a.inflight++
	snap := a.snapshotLocked()
	a.mu.Unlock()
	a.publish(snap)

	list, err := a.src.ListReviews(ctx)
	var sorted []Review
	if err == nil {
		sorted = Sorted(list)
	}

	a.mu.Lock()
	a.inflight--
	switch {
	case a.closed:
		a.mu.Unlock()
		return ErrClosed
	case ticket < a.applied:
		a.logger.Debugw("dropping stale review load", "ticket", ticket, "applied", a.applied)
	case err != nil && ctx.Err() != nil:
		// Nobody is waiting for this load any more.
	case err != nil:
		a.err = FetchError
	default:
		a.all = sorted
		a.applied = ticket
		a.err = ""
	}
	snap = a.snapshotLocked()
	a.mu.Unlock()
	a.publish(snap)

	if err != nil {
		return fmt.Errorf("refresh reviews: %w", err)
	}
	return nil
}

// Submit validates d, sends it to the store and on success inserts it at the
// head of the collection before the store has confirmed it. A refresh is
// scheduled to replace the optimistic record with the store's own copy.
func (a *Aggregator) Submit(ctx context.Context, d Draft) (Review, error) {
	clean := d.Sanitize()
	if err := clean.Validate(); err != nil {
		return Review{}, err
	}

	a.mu.Lock()
	closed := a.closed
	a.mu.Unlock()
	if closed {
		return Review{}, ErrClosed
	}

	if !a.src.SubmitReview(ctx, clean) {
		return Review{}, ErrSubmitFailed
	}

	now := a.now()
	rec := Review{
		ID:         fmt.Sprintf("%s_new_%d", clean.Name, now.UnixMilli()),
		Name:       clean.Name,
		StarCount:  clean.StarCount,
		EventType:  clean.EventType,
		Review:     clean.Review,
		DateOfPost: FormatDate(now),
	}

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return Review{}, ErrClosed
	}
	next := make([]Review, 0, len(a.all)+1)
	next = append(next, rec)
	next = append(next, a.all...)
	a.all = Sorted(next)
	a.issued++
	a.applied = a.issued
	a.page = 1
	a.scheduleReconcileLocked()
	snap := a.snapshotLocked()
	a.mu.Unlock()
	a.publish(snap)

	a.logger.Infow("review submitted", "id", rec.ID, "eventtype", rec.EventType)
	return rec, nil
}

func (a *Aggregator) scheduleReconcileLocked() {
	var t *time.Timer
	a.wg.Add(1)
	t = time.AfterFunc(a.delay, func() {
		defer a.wg.Done()
		a.mu.Lock()
		delete(a.timers, t)
		closed := a.closed
		a.mu.Unlock()
		if closed {
			return
		}
		if err := a.Refresh(a.ctx); err != nil && !errors.Is(err, ErrClosed) {
			a.logger.Warnw("reconcile refresh failed", "error", err)
		}
	})
	a.timers[t] = struct{}{}
}

// Run refreshes once immediately and then every interval until ctx is done.
func (a *Aggregator) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := a.Refresh(ctx); err != nil {
			if errors.Is(err, ErrClosed) {
				return nil
			}
			if ctx.Err() == nil {
				a.logger.Errorw("error refreshing reviews", "error", err)
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// GoToPage moves to page p when 1 <= p <= TotalPages. It reports whether
// the page changed; out-of-range requests leave the state alone.
func (a *Aggregator) GoToPage(p int) bool {
	a.mu.Lock()
	pg := params.New(p, PageSize)
	pg.ComputeMeta(len(a.all))
	if p < 1 || p > pg.TotalPages || p == a.page {
		a.mu.Unlock()
		return false
	}
	a.page = p
	snap := a.snapshotLocked()
	a.mu.Unlock()
	a.publish(snap)
	return true
}

func (a *Aggregator) NextPage() bool {
	return a.GoToPage(a.CurrentPage() + 1)
}

func (a *Aggregator) PrevPage() bool {
	return a.GoToPage(a.CurrentPage() - 1)
}

func (a *Aggregator) CurrentPage() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.page
}

// CurrentReviews is the window for the current page.
func (a *Aggregator) CurrentReviews() []Review {
	return a.Snapshot().Current()
}

func (a *Aggregator) TotalPages() int {
	s := a.Snapshot()
	return s.Pagination(s.Page).TotalPages
}

// Snapshot returns a copy of the current state.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

func (a *Aggregator) snapshotLocked() Snapshot {
	return Snapshot{
		Reviews: slices.Clone(a.all),
		Page:    a.page,
		Loading: a.inflight > 0,
		Err:     a.err,
		Version: a.applied,
	}
}

// Subscribe registers fn to receive every state change. Calls happen outside
// the aggregator lock and may come from several goroutines; use
// Snapshot.Version to discard out-of-order deliveries.
func (a *Aggregator) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return func() {}
	}
	id := a.nextSub
	a.nextSub++
	a.subs[id] = fn
	return func() {
		a.mu.Lock()
		delete(a.subs, id)
		a.mu.Unlock()
	}
}

func (a *Aggregator) publish(s Snapshot) {
	a.mu.Lock()
	fns := make([]func(Snapshot), 0, len(a.subs))
	for _, fn := range a.subs {
		fns = append(fns, fn)
	}
	a.mu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}

// Close stops pending reconcile refreshes, waits for any that already
// started and drops all subscribers. It is safe to call more than once.
func (a *Aggregator) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	for t := range a.timers {
		if t.Stop() {
			a.wg.Done()
		}
	}
	a.timers = nil
	a.subs = nil
	a.mu.Unlock()

	a.cancel()
	a.wg.Wait()
}
