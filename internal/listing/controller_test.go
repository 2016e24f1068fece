package listing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/inovacc/vetlink/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// fakeFetcher records every query and answers from a fixed data set.
type fakeFetcher struct {
	mu      sync.Mutex
	queries []model.Query
	total   int
	err     error
}

func (f *fakeFetcher) List(_ context.Context, q model.Query) (model.PageResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.queries = append(f.queries, q)

	if f.err != nil {
		return model.PageResult{}, f.err
	}

	var pets []model.Pet

	for i := q.Page * q.PageSize; i < f.total && i < (q.Page+1)*q.PageSize; i++ {
		pets = append(pets, model.Pet{ID: int64(i + 1), Name: fmt.Sprintf("pet-%d", i+1)})
	}

	return model.PageResult{Pets: pets, Count: f.total}, nil
}

func (f *fakeFetcher) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.queries)
}

// load runs req synchronously and resolves it.
func load(t *testing.T, c *Controller, req Request) {
	t.Helper()

	require.True(t, c.Resolve(c.Run(context.Background(), req)), "response should be applied")
}

func TestNew_Defaults(t *testing.T) {
	c := New(&fakeFetcher{}, Options{})

	assert.Equal(t, model.DefaultQuery(), c.Query())
	assert.Equal(t, StateIdle, c.State())
	assert.False(t, c.Loading())
	assert.Zero(t, c.PageCount())
}

func TestController_SearchAndColumnDoNotIssue(t *testing.T) {
	c := New(&fakeFetcher{}, Options{})
	seq := c.Seq()

	c.SetSearch("lu")
	require.NoError(t, c.SetColumn(model.ColumnOwner))

	assert.Equal(t, seq, c.Seq(), "editing the query must not issue a request")
	assert.Equal(t, StateIdle, c.State())
	assert.Equal(t, "lu", c.Query().Search)
	assert.Equal(t, model.ColumnOwner, c.Query().Column)

	assert.ErrorIs(t, c.SetColumn("usuario_cliente"), model.ErrUnknownColumn)
}

func TestController_SubmitSearchResetsPage(t *testing.T) {
	f := &fakeFetcher{total: 45}
	c := New(f, Options{})
	load(t, c, c.Refresh())

	req, ok := c.SetPage(3)
	require.True(t, ok)
	load(t, c, req)
	require.Equal(t, 3, c.Query().Page)

	c.SetSearch("milo")
	req = c.SubmitSearch()

	assert.Equal(t, 0, req.Query.Page)
	assert.Equal(t, "1", req.Query.Values().Get("page"))
	assert.Equal(t, "milo", req.Query.Values().Get("search"))
}

func TestController_SetPageSizeResetsPage(t *testing.T) {
	f := &fakeFetcher{total: 100}
	c := New(f, Options{})
	load(t, c, c.Refresh())

	req, ok := c.SetPage(4)
	require.True(t, ok)
	load(t, c, req)

	req, err := c.SetPageSize(25)
	require.NoError(t, err)
	assert.Equal(t, 0, req.Query.Page)
	assert.Equal(t, 25, req.Query.PageSize)
	assert.True(t, c.Loading())

	_, err = c.SetPageSize(7)
	assert.ErrorIs(t, err, model.ErrInvalidPageSize)
}

func TestController_SetPageClampsToBounds(t *testing.T) {
	f := &fakeFetcher{total: 23}
	c := New(f, Options{})
	load(t, c, c.Refresh())
	require.Equal(t, 3, c.PageCount())

	req, ok := c.SetPage(99)
	require.True(t, ok)
	assert.Equal(t, 2, req.Query.Page)
	load(t, c, req)

	_, ok = c.NextPage()
	assert.False(t, ok, "already on the last page")

	req, ok = c.PrevPage()
	require.True(t, ok)
	assert.Equal(t, 1, req.Query.Page)
	load(t, c, req)

	req, ok = c.SetPage(-5)
	require.True(t, ok)
	assert.Equal(t, 0, req.Query.Page)
}

func TestController_EmptyResultHasNoPages(t *testing.T) {
	c := New(&fakeFetcher{total: 0}, Options{})
	load(t, c, c.Refresh())

	assert.Equal(t, 0, c.PageCount())
	assert.Equal(t, StateReady, c.State())

	_, ok := c.NextPage()
	assert.False(t, ok)
	assert.Equal(t, 0, c.Query().Page)
}

func TestController_PageIndexStaysInBounds(t *testing.T) {
	for _, size := range model.PageSizes {
		for _, total := range []int{0, 1, size - 1, size, size + 1, 3*size + 2} {
			t.Run(fmt.Sprintf("size=%d/total=%d", size, total), func(t *testing.T) {
				f := &fakeFetcher{total: total}
				c := New(f, Options{Query: model.Query{Column: model.ColumnName, Order: model.Ascending, PageSize: size}})
				load(t, c, c.Refresh())

				wantPages := (total + size - 1) / size
				assert.Equal(t, wantPages, c.PageCount())

				for _, target := range []int{-1, 0, 1, wantPages, wantPages + 10} {
					if req, ok := c.SetPage(target); ok {
						load(t, c, req)
					}

					page := c.Query().Page
					assert.GreaterOrEqual(t, page, 0)
					assert.LessOrEqual(t, page, max(0, wantPages-1))
				}
			})
		}
	}
}

func TestController_ToggleOrderIssuesOncePerToggle(t *testing.T) {
	f := &fakeFetcher{total: 5}
	c := New(f, Options{})

	first := c.ToggleOrder()
	load(t, c, first)
	assert.Equal(t, model.Descending, first.Query.Order)

	second := c.ToggleOrder()
	load(t, c, second)
	assert.Equal(t, model.Ascending, second.Query.Order)

	assert.Equal(t, 2, f.calls())
	assert.Equal(t, first.Seq+1, second.Seq)
}

func TestController_AgeAndOwnerColumnsAreRemapped(t *testing.T) {
	f := &fakeFetcher{}
	c := New(f, Options{})

	require.NoError(t, c.SetColumn(model.ColumnAge))
	assert.Equal(t, "fecha_nacimiento", c.SubmitSearch().Query.Values().Get("column"))

	require.NoError(t, c.SetColumn(model.ColumnOwner))
	assert.Equal(t, "usuario_cliente", c.SubmitSearch().Query.Values().Get("column"))

	require.NoError(t, c.SetColumn(model.ColumnBreed))
	assert.Equal(t, "raza", c.SubmitSearch().Query.Values().Get("column"))
}

func TestController_LoadingFlag(t *testing.T) {
	f := &fakeFetcher{total: 3}
	c := New(f, Options{})

	req := c.Refresh()
	assert.True(t, c.Loading())

	resp := c.Run(context.Background(), req)
	assert.True(t, c.Loading(), "still loading until resolved")

	c.Resolve(resp)
	assert.False(t, c.Loading())
	assert.Equal(t, StateReady, c.State())

	f.err = errors.New("connection refused")
	req = c.Refresh()
	assert.True(t, c.Loading())

	c.Resolve(c.Run(context.Background(), req))
	assert.False(t, c.Loading(), "loading ends on failure too")
	assert.Equal(t, StateFailed, c.State())
}

func TestController_FailureKeepsPreviousRecords(t *testing.T) {
	f := &fakeFetcher{total: 12}
	c := New(f, Options{})
	load(t, c, c.Refresh())

	before := c.Result()
	require.Len(t, before.Pets, 10)

	f.err = errors.New("status 500")
	applied := c.Resolve(c.Run(context.Background(), c.Refresh()))

	assert.True(t, applied)
	assert.Equal(t, StateFailed, c.State())
	assert.EqualError(t, c.Err(), "status 500")
	assert.Equal(t, before, c.Result())

	// a successful retry clears the error
	f.err = nil
	load(t, c, c.Refresh())
	assert.NoError(t, c.Err())
	assert.Equal(t, StateReady, c.State())
}

func TestController_StaleResponseIsDiscarded(t *testing.T) {
	f := &fakeFetcher{total: 40}
	c := New(f, Options{})
	load(t, c, c.Refresh())

	older, ok := c.SetPage(1)
	require.True(t, ok)
	newer, ok := c.SetPage(2)
	require.True(t, ok)

	newerResp := c.Run(context.Background(), newer)
	olderResp := c.Run(context.Background(), older)

	// newer resolves first, then the older one arrives late
	assert.True(t, c.Resolve(newerResp))
	assert.False(t, c.Resolve(olderResp))

	assert.Equal(t, int64(21), c.Result().Pets[0].ID)
	assert.Equal(t, StateReady, c.State())
}

func TestController_StaleResponseWhileNewerInFlight(t *testing.T) {
	f := &fakeFetcher{total: 40}
	c := New(f, Options{})

	older := c.Refresh()
	newer := c.ToggleOrder()

	assert.False(t, c.Resolve(c.Run(context.Background(), older)))
	assert.True(t, c.Loading(), "the newer request is still outstanding")
	assert.Equal(t, StateLoading, c.State())

	assert.True(t, c.Resolve(c.Run(context.Background(), newer)))
	assert.False(t, c.Loading())
}

func TestController_StaleFailureDoesNotMarkFailed(t *testing.T) {
	c := New(&fakeFetcher{total: 3}, Options{})

	older := c.Refresh()
	newer := c.Refresh()

	assert.False(t, c.Resolve(Response{Seq: older.Seq, Err: errors.New("timeout")}))
	assert.True(t, c.Resolve(c.Run(context.Background(), newer)))
	assert.NoError(t, c.Err())
	assert.Equal(t, StateReady, c.State())
}

func TestController_ConcurrentRunsResolveToLatest(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := &fakeFetcher{total: 500}
	c := New(f, Options{})
	load(t, c, c.Refresh())

	const n = 20

	reqs := make([]Request, 0, n)

	for i := 1; i <= n; i++ {
		req, ok := c.SetPage(i)
		require.True(t, ok)
		reqs = append(reqs, req)
	}

	responses := make(chan Response, n)

	var wg sync.WaitGroup

	for _, req := range reqs {
		wg.Add(1)

		go func(req Request) {
			defer wg.Done()
			responses <- c.Run(context.Background(), req)
		}(req)
	}

	wg.Wait()
	close(responses)

	applied := 0

	for resp := range responses {
		if c.Resolve(resp) {
			applied++
		}
	}

	assert.Equal(t, 1, applied)
	assert.Equal(t, n, c.Query().Page)
	assert.Equal(t, int64(n*10+1), c.Result().Pets[0].ID)
}

func TestController_CloseIgnoresLateResponses(t *testing.T) {
	c := New(&fakeFetcher{total: 3}, Options{})

	req := c.Refresh()
	c.Close()

	assert.True(t, c.Closed())
	assert.False(t, c.Resolve(c.Run(context.Background(), req)))
	assert.Empty(t, c.Result().Pets)
}

func TestController_RunHonoursCancellation(t *testing.T) {
	c := New(fetcherFunc(func(ctx context.Context, _ model.Query) (model.PageResult, error) {
		<-ctx.Done()

		return model.PageResult{}, ctx.Err()
	}), Options{})

	ctx, cancel := context.WithCancel(context.Background())
	req := c.Refresh()
	cancel()

	resp := c.Run(ctx, req)
	assert.ErrorIs(t, resp.Err, context.Canceled)
}

type fetcherFunc func(ctx context.Context, q model.Query) (model.PageResult, error)

func (f fetcherFunc) List(ctx context.Context, q model.Query) (model.PageResult, error) {
	return f(ctx, q)
}

func TestLoadState_String(t *testing.T) {
	tests := []struct {
		state LoadState
		want  string
	}{
		{StateIdle, "idle"},
		{StateLoading, "loading"},
		{StateReady, "ready"},
		{StateFailed, "failed"},
		{LoadState(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("LoadState(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
