// Package listing keeps the state of a paginated, searchable, sortable pet
// list in sync with the server.
//
// A Controller owns the current query and a single result slot. Operations
// that change what should be displayed return a Request stamped with a
// sequence number; the caller executes it with Run (possibly on another
// goroutine) and hands the Response back to Resolve. Only the response to
// the most recently issued request is applied, so out-of-order completions
// never overwrite newer data.
//
// The Controller itself is not safe for concurrent use: all methods except
// Run must be called from the goroutine that owns it (the bubbletea Update
// loop in the TUI).
package listing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/inovacc/vetlink/internal/model"
)

// Fetcher loads one page of pets for a query.
type Fetcher interface {
	List(ctx context.Context, q model.Query) (model.PageResult, error)
}

// Request is a listing request issued by the Controller.
type Request struct {
	Seq   uint64
	Query model.Query
}

// Response is the outcome of running a Request.
type Response struct {
	Seq    uint64
	Result model.PageResult
	Err    error
}

// Options configures a Controller.
type Options struct {
	Logger *slog.Logger

	// Query is the initial query; DefaultQuery when zero.
	Query model.Query
}

// Controller is the query state holder and result slot of a pet list.
type Controller struct {
	fetcher Fetcher
	logger  *slog.Logger

	query  model.Query
	result model.PageResult
	state  LoadState
	err    error

	seq    uint64 // last issued
	closed bool
}

// New creates a Controller backed by fetcher.
func New(fetcher Fetcher, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	q := opts.Query
	if q == (model.Query{}) {
		q = model.DefaultQuery()
	}

	return &Controller{
		fetcher: fetcher,
		logger:  logger,
		query:   q,
		state:   StateIdle,
	}
}

// Query returns a snapshot of the current query.
func (c *Controller) Query() model.Query {
	return c.query
}

// Result returns the records currently displayed.
func (c *Controller) Result() model.PageResult {
	return c.result
}

// State returns the load state.
func (c *Controller) State() LoadState {
	return c.state
}

// Loading reports whether the latest request is still in flight.
func (c *Controller) Loading() bool {
	return c.state == StateLoading
}

// Err returns the error of the latest request when it failed.
func (c *Controller) Err() error {
	return c.err
}

// PageCount returns the number of pages for the current result and page size.
func (c *Controller) PageCount() int {
	return model.PageCount(c.result.Count, c.query.PageSize)
}

// Seq returns the sequence number of the most recently issued request.
func (c *Controller) Seq() uint64 {
	return c.seq
}

// SetSearch changes the search text. No request is issued until SubmitSearch.
func (c *Controller) SetSearch(s string) {
	c.query.Search = s
}

// SetColumn changes the search and sort column. No request is issued until
// SubmitSearch.
func (c *Controller) SetColumn(col model.Column) error {
	if _, err := model.ParseColumn(string(col)); err != nil {
		return err
	}

	c.query.Column = col

	return nil
}

// SubmitSearch moves to the first page and issues a request, so every new
// search starts from page one.
func (c *Controller) SubmitSearch() Request {
	c.query.Page = 0

	return c.issue()
}

// SetPage moves to page, clamped to the pages of the current result. A
// request is issued only when the page changes.
func (c *Controller) SetPage(page int) (Request, bool) {
	page = model.ClampPage(page, c.PageCount())
	if page == c.query.Page {
		return Request{}, false
	}

	c.query.Page = page

	return c.issue(), true
}

// NextPage moves forward one page when there is one.
func (c *Controller) NextPage() (Request, bool) {
	return c.SetPage(c.query.Page + 1)
}

// PrevPage moves back one page when there is one.
func (c *Controller) PrevPage() (Request, bool) {
	return c.SetPage(c.query.Page - 1)
}

// SetPageSize changes the page size, returns to the first page and issues a
// request. size must be one of model.PageSizes.
func (c *Controller) SetPageSize(size int) (Request, error) {
	if !model.ValidPageSize(size) {
		return Request{}, fmt.Errorf("%w: %d", model.ErrInvalidPageSize, size)
	}

	c.query.PageSize = size
	c.query.Page = 0

	return c.issue(), nil
}

// ToggleOrder flips the sort order and issues a request.
func (c *Controller) ToggleOrder() Request {
	c.query.Order = c.query.Order.Toggle()

	return c.issue()
}

// Refresh re-issues the current query, e.g. to retry a failure or after a
// record was created.
func (c *Controller) Refresh() Request {
	return c.issue()
}

func (c *Controller) issue() Request {
	c.seq++
	c.state = StateLoading

	return Request{Seq: c.seq, Query: c.query}
}

// Run executes req against the fetcher. It touches no mutable Controller
// state and may be called from any goroutine.
func (c *Controller) Run(ctx context.Context, req Request) Response {
	result, err := c.fetcher.List(ctx, req.Query)
	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, context.Canceled) {
			level = slog.LevelDebug
		}

		c.logger.Log(ctx, level, "pet listing request failed",
			slog.Uint64("seq", req.Seq),
			slog.String("search", req.Query.Search),
			slog.String("column", req.Query.Column.Field()),
			slog.Int("page", req.Query.Page+1),
			slog.String("error", err.Error()),
		)

		return Response{Seq: req.Seq, Err: err}
	}

	c.logger.Debug("pet listing loaded",
		slog.Uint64("seq", req.Seq),
		slog.Int("count", result.Count),
		slog.Int("rows", len(result.Pets)),
	)

	return Response{Seq: req.Seq, Result: result}
}

// Resolve applies resp if it answers the latest issued request and the
// Controller is still open. It reports whether resp was applied. A
// successful response replaces the result slot; a failed one keeps the
// previous records and records the error.
func (c *Controller) Resolve(resp Response) bool {
	if c.closed {
		return false
	}

	if resp.Seq != c.seq {
		c.logger.Debug("discarding stale pet listing response",
			slog.Uint64("seq", resp.Seq),
			slog.Uint64("latest", c.seq),
		)

		return false
	}

	if resp.Err != nil {
		c.state = StateFailed
		c.err = resp.Err

		return true
	}

	c.result = resp.Result
	c.state = StateReady
	c.err = nil

	return true
}

// Close stops the Controller from applying any further response.
func (c *Controller) Close() {
	c.closed = true
}

// Closed reports whether Close was called.
func (c *Controller) Closed() bool {
	return c.closed
}
