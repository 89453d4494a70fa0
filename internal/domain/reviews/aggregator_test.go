package reviews_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"festive/internal/domain/reviews"
	"festive/internal/sheets"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeSource struct {
	mu        sync.Mutex
	list      func(ctx context.Context) ([]reviews.Review, error)
	accept    bool
	drafts    []reviews.Draft
	listCalls int
}

func (f *fakeSource) ListReviews(ctx context.Context) ([]reviews.Review, error) {
	f.mu.Lock()
	f.listCalls++
	list := f.list
	f.mu.Unlock()
	return list(ctx)
}

func (f *fakeSource) SubmitReview(_ context.Context, d reviews.Draft) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.drafts = append(f.drafts, d)
	return f.accept
}

func (f *fakeSource) setList(fn func(ctx context.Context) ([]reviews.Review, error)) {
	f.mu.Lock()
	f.list = fn
	f.mu.Unlock()
}

func (f *fakeSource) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func fixed(rs []reviews.Review) func(context.Context) ([]reviews.Review, error) {
	return func(context.Context) ([]reviews.Review, error) { return rs, nil }
}

func names(rs []reviews.Review) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Name
	}
	return out
}

var testNow = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

func newAggregator(t *testing.T, src reviews.Source, opts ...reviews.Option) *reviews.Aggregator {
	t.Helper()
	opts = append([]reviews.Option{
		reviews.WithClock(func() time.Time { return testNow }),
		reviews.WithReconcileDelay(time.Hour),
	}, opts...)
	agg := reviews.NewAggregator(src, nil, opts...)
	t.Cleanup(agg.Close)
	return agg
}

func TestRefreshOrdersFallbackNewestFirst(t *testing.T) {
	src := &fakeSource{list: fixed(sheets.Fallback())}
	agg := newAggregator(t, src)

	require.NoError(t, agg.Refresh(context.Background()))

	page1 := agg.CurrentReviews()
	require.Len(t, page1, 10)
	assert.Equal(t, "Priya Sharma", page1[0].Name)
	assert.Equal(t, reviews.EventWedding, page1[0].EventType)
	assert.Equal(t, "2024-12-15", page1[0].DateOfPost)
	assert.Equal(t, 2, agg.TotalPages())

	require.True(t, agg.GoToPage(2))
	if diff := cmp.Diff([]string{"Deepa Menon", "Karthik Iyer"}, names(agg.CurrentReviews())); diff != "" {
		t.Errorf("page 2 mismatch (-want +got):\n%s", diff)
	}

	snap := agg.Snapshot()
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.Err)
}

func TestPaginationOutOfRangeIsNoop(t *testing.T) {
	src := &fakeSource{list: fixed(sheets.Fallback())}
	agg := newAggregator(t, src)
	require.NoError(t, agg.Refresh(context.Background()))

	for _, p := range []int{-1, 0, 3, 99} {
		assert.False(t, agg.GoToPage(p), "GoToPage(%d)", p)
		assert.Equal(t, 1, agg.CurrentPage())
	}

	assert.False(t, agg.PrevPage())
	assert.True(t, agg.NextPage())
	assert.Equal(t, 2, agg.CurrentPage())
	assert.False(t, agg.NextPage())
	assert.Equal(t, 2, agg.CurrentPage())
	assert.True(t, agg.PrevPage())
	assert.Equal(t, 1, agg.CurrentPage())
}

func TestRefreshKeepsCurrentPage(t *testing.T) {
	src := &fakeSource{list: fixed(sheets.Fallback())}
	agg := newAggregator(t, src)
	require.NoError(t, agg.Refresh(context.Background()))
	require.True(t, agg.GoToPage(2))

	require.NoError(t, agg.Refresh(context.Background()))

	assert.Equal(t, 2, agg.CurrentPage())
}

func TestSubmitClampsAndInsertsAtHead(t *testing.T) {
	src := &fakeSource{list: fixed(sheets.Fallback()), accept: true}
	agg := newAggregator(t, src)
	require.NoError(t, agg.Refresh(context.Background()))
	require.True(t, agg.GoToPage(2))

	rec, err := agg.Submit(context.Background(), reviews.Draft{
		Name:      "Test U",
		StarCount: 7,
		EventType: "party",
		Review:    "Great food, ten stars basically",
	})
	require.NoError(t, err)

	assert.Equal(t, 5, rec.StarCount)
	assert.Equal(t, "Test U_new_1792229400000", rec.ID)
	assert.Equal(t, "2026-10-17", rec.DateOfPost)
	assert.Equal(t, 1, agg.CurrentPage())

	page1 := agg.CurrentReviews()
	require.NotEmpty(t, page1)
	assert.Equal(t, rec, page1[0])
	assert.Len(t, agg.Snapshot().Reviews, 13)

	require.Len(t, src.drafts, 1)
	assert.Equal(t, 5, src.drafts[0].StarCount)
}

func TestSubmitRejectedLeavesCollection(t *testing.T) {
	src := &fakeSource{list: fixed(sheets.Fallback()), accept: false}
	agg := newAggregator(t, src)
	require.NoError(t, agg.Refresh(context.Background()))
	before := agg.Snapshot()

	_, err := agg.Submit(context.Background(), reviews.Draft{
		Name: "Asha", StarCount: 4, EventType: "wedding", Review: "Food was lovely overall",
	})

	require.ErrorIs(t, err, reviews.ErrSubmitFailed)
	if diff := cmp.Diff(before, agg.Snapshot()); diff != "" {
		t.Errorf("snapshot changed after rejected submit (-before +after):\n%s", diff)
	}
}

func TestSubmitValidationSkipsStore(t *testing.T) {
	src := &fakeSource{list: fixed(nil), accept: true}
	agg := newAggregator(t, src)

	_, err := agg.Submit(context.Background(), reviews.Draft{Name: "   ", Review: "A perfectly long review"})
	var verr *reviews.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "review.name.required", verr.Key())

	_, err = agg.Submit(context.Background(), reviews.Draft{Name: "Asha", Review: "short"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "review.review.too_short", verr.Key())

	assert.Empty(t, src.drafts)
}

func TestReconcileReplacesOptimisticRecord(t *testing.T) {
	src := &fakeSource{list: fixed(sheets.Fallback()), accept: true}
	agg := newAggregator(t, src, reviews.WithReconcileDelay(10*time.Millisecond))
	require.NoError(t, agg.Refresh(context.Background()))

	server := append(sheets.Fallback(), reviews.Review{
		ID: "row_42", Name: "Test U", StarCount: 5, EventType: reviews.EventParty,
		Review: "Great food, ten stars basically", DateOfPost: "2026-10-17",
	})
	src.setList(fixed(server))
	_, err := agg.Submit(context.Background(), reviews.Draft{
		Name: "Test U", StarCount: 5, EventType: "party", Review: "Great food, ten stars basically",
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		head := agg.CurrentReviews()
		return len(head) > 0 && head[0].ID == "row_42"
	}, time.Second, 5*time.Millisecond)

	for _, r := range agg.Snapshot().Reviews {
		assert.False(t, strings.Contains(r.ID, "_new_"), "optimistic record %q survived reconcile", r.ID)
	}
	assert.Len(t, agg.Snapshot().Reviews, 13)
}

func TestStaleRefreshIsDropped(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	old := []reviews.Review{{ID: "old", Name: "Old", Review: "from the slow load", DateOfPost: "2024-01-01"}}
	fresh := []reviews.Review{{ID: "new", Name: "New", Review: "from the fast load", DateOfPost: "2024-02-01"}}

	src := &fakeSource{}
	src.setList(func(context.Context) ([]reviews.Review, error) {
		close(started)
		<-release
		return old, nil
	})
	agg := newAggregator(t, src)

	done := make(chan error, 1)
	go func() { done <- agg.Refresh(context.Background()) }()
	<-started
	assert.True(t, agg.Snapshot().Loading)

	src.setList(fixed(fresh))
	require.NoError(t, agg.Refresh(context.Background()))
	close(release)
	require.NoError(t, <-done)

	snap := agg.Snapshot()
	assert.Equal(t, []string{"New"}, names(snap.Reviews))
	assert.False(t, snap.Loading)
}

func TestRefreshErrorKeepsCollection(t *testing.T) {
	boom := errors.New("boom")
	src := &fakeSource{list: fixed(sheets.Fallback())}
	agg := newAggregator(t, src)
	require.NoError(t, agg.Refresh(context.Background()))

	src.setList(func(context.Context) ([]reviews.Review, error) { return nil, boom })
	err := agg.Refresh(context.Background())
	require.ErrorIs(t, err, boom)

	snap := agg.Snapshot()
	assert.Equal(t, reviews.FetchError, snap.Err)
	assert.Len(t, snap.Reviews, 12)
	assert.False(t, snap.Loading)

	src.setList(fixed(sheets.Fallback()))
	require.NoError(t, agg.Refresh(context.Background()))
	assert.Empty(t, agg.Snapshot().Err)
}

func TestCanceledRefreshIsNotObserved(t *testing.T) {
	src := &fakeSource{list: func(ctx context.Context) ([]reviews.Review, error) { return nil, ctx.Err() }}
	agg := newAggregator(t, src)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, agg.Refresh(ctx), context.Canceled)

	assert.Empty(t, agg.Snapshot().Err)
}

func TestSubscribe(t *testing.T) {
	src := &fakeSource{list: fixed(sheets.Fallback())}
	agg := newAggregator(t, src)

	var mu sync.Mutex
	var got []reviews.Snapshot
	unsubscribe := agg.Subscribe(func(s reviews.Snapshot) {
		mu.Lock()
		got = append(got, s)
		mu.Unlock()
	})

	require.NoError(t, agg.Refresh(context.Background()))
	mu.Lock()
	require.Len(t, got, 2)
	assert.True(t, got[0].Loading)
	assert.False(t, got[1].Loading)
	assert.Len(t, got[1].Reviews, 12)
	assert.Greater(t, got[1].Version, got[0].Version)
	mu.Unlock()

	unsubscribe()
	require.True(t, agg.GoToPage(2))
	mu.Lock()
	assert.Len(t, got, 2)
	mu.Unlock()
}

func TestRunRefreshesUntilCanceled(t *testing.T) {
	src := &fakeSource{list: fixed(sheets.Fallback())}
	agg := newAggregator(t, src)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- agg.Run(ctx, 5*time.Millisecond) }()

	require.Eventually(t, func() bool { return src.calls() >= 3 }, time.Second, time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

func TestCloseStopsPendingReconcile(t *testing.T) {
	src := &fakeSource{list: fixed(sheets.Fallback()), accept: true}
	agg := reviews.NewAggregator(src, nil, reviews.WithReconcileDelay(time.Hour))
	require.NoError(t, agg.Refresh(context.Background()))
	_, err := agg.Submit(context.Background(), reviews.Draft{
		Name: "Asha", StarCount: 5, EventType: "wedding", Review: "Everything was perfect",
	})
	require.NoError(t, err)

	agg.Close()
	agg.Close()

	assert.Equal(t, 1, src.calls())
	require.ErrorIs(t, agg.Refresh(context.Background()), reviews.ErrClosed)
	_, err = agg.Submit(context.Background(), reviews.Draft{
		Name: "Asha", StarCount: 5, EventType: "wedding", Review: "Everything was perfect",
	})
	require.ErrorIs(t, err, reviews.ErrClosed)
}
