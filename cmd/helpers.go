package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/inovacc/vetlink/internal/model"
	"github.com/inovacc/vetlink/internal/petapi"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

// outputJSON encodes data as indented JSON to w
func outputJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(data)
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return term.IsTerminal(int(f.Fd()))
}

func newClient(log *slog.Logger) (*petapi.Client, error) {
	return petapi.New(appConfig.APIBaseURL, petapi.Options{
		Logger:  log,
		Timeout: appConfig.Timeout,
	})
}

// queryFlags are the search, sort and paging flags shared by listing commands.
type queryFlags struct {
	search   string
	column   string
	order    string
	page     int
	pageSize int
	json     bool
}

// register adds the flags to fs. columnHelp describes the accepted columns.
func (f *queryFlags) register(fs *pflag.FlagSet, columnHelp string) {
	fs.StringVarP(&f.search, "search", "s", "", "text to search for (an age in years for the edad column)")
	fs.StringVarP(&f.column, "column", "c", "", columnHelp)
	fs.StringVarP(&f.order, "order", "o", "", "sort order: asc or desc")
	fs.IntVarP(&f.page, "page", "p", 1, "page number, starting at 1")
	fs.IntVar(&f.pageSize, "page-size", 0, fmt.Sprintf("rows per page, one of %v", model.PageSizes))
	fs.BoolVar(&f.json, "json", false, "output as JSON")
}

func (f *queryFlags) pageIndex() (int, error) {
	if f.page < 1 {
		return 0, fmt.Errorf("--page must be at least 1: %d", f.page)
	}

	return f.page - 1, nil
}

// petQuery builds the pet query from the flags on top of cfg's list defaults.
func (f *queryFlags) petQuery(cfg model.Config) (model.Query, error) {
	q := cfg.InitialQuery()
	q.Search = f.search

	if f.column != "" {
		col, err := model.ParseColumn(f.column)
		if err != nil {
			return q, err
		}

		q.Column = col
	}

	if f.order != "" {
		order, err := model.ParseSortOrder(f.order)
		if err != nil {
			return q, err
		}

		q.Order = order
	}

	if f.pageSize != 0 {
		if !model.ValidPageSize(f.pageSize) {
			return q, fmt.Errorf("--page-size must be one of %v: %w: %d", model.PageSizes, model.ErrInvalidPageSize, f.pageSize)
		}

		q.PageSize = f.pageSize
	}

	page, err := f.pageIndex()
	if err != nil {
		return q, err
	}

	q.Page = page

	return q, q.Validate()
}

// ownerQuery builds the client query from the flags.
func (f *queryFlags) ownerQuery(cfg model.Config) (model.OwnerQuery, error) {
	q := model.DefaultOwnerQuery()
	q.Search = f.search
	q.PageSize = cfg.PageSize

	if f.column != "" {
		q.Column = f.column
	}

	if f.order != "" {
		order, err := model.ParseSortOrder(f.order)
		if err != nil {
			return q, err
		}

		q.Order = order
	}

	if f.pageSize != 0 {
		if !model.ValidPageSize(f.pageSize) {
			return q, fmt.Errorf("--page-size must be one of %v: %w: %d", model.PageSizes, model.ErrInvalidPageSize, f.pageSize)
		}

		q.PageSize = f.pageSize
	}

	page, err := f.pageIndex()
	if err != nil {
		return q, err
	}

	q.Page = page

	return q, q.Validate()
}

// pageSummary is the footer printed under interactive tables.
func pageSummary(page, pages, count, size int) string {
	current := 0
	if pages > 0 {
		current = page + 1
	}

	return fmt.Sprintf("Page %d of %d • %d records • %d per page", current, pages, count, size)
}
