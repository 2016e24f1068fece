package server

import (
	"errors"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/inovacc/vetlink/internal/model"
)

// invalidPageDetail is the body detail for a page that does not exist.
const invalidPageDetail = "Invalid page."

var errInvalidPage = errors.New("invalid page")

// pageRequest is the page number and size asked for by a listing call.
type pageRequest struct {
	number int // one-based, 0 means "last"
	size   int
}

// parsePage reads page and page_size. A bad page_size falls back to the
// default and oversized values are capped. A bad page is an error.
func parsePage(c *gin.Context) (pageRequest, error) {
	req := pageRequest{number: 1, size: model.DefaultPageSize}

	if raw := c.Query("page_size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			req.size = min(n, model.MaxPageSize)
		}
	}

	switch raw := c.Query("page"); raw {
	case "":
	case "last":
		req.number = 0
	default:
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return pageRequest{}, errInvalidPage
		}

		req.number = n
	}

	return req, nil
}

// resolve fixes the page number against the total count. The first page
// always exists, even when there are no rows.
func (p pageRequest) resolve(count int) (pageRequest, error) {
	pages := max(1, model.PageCount(count, p.size))

	if p.number == 0 {
		p.number = pages
	}

	if p.number > pages {
		return p, errInvalidPage
	}

	return p, nil
}

func (p pageRequest) offset() int {
	return (p.number - 1) * p.size
}

// pageResponse is the listing envelope.
type pageResponse[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

func newPageResponse[T any](c *gin.Context, p pageRequest, count int, results []T) pageResponse[T] {
	if results == nil {
		results = []T{}
	}

	resp := pageResponse[T]{Count: count, Results: results}

	if p.number*p.size < count {
		next := pageLink(c, p.number+1)
		resp.Next = &next
	}

	if p.number > 1 {
		prev := pageLink(c, p.number-1)
		resp.Previous = &prev
	}

	return resp
}

// pageLink rebuilds the request URL pointing at page. Links to the first
// page drop the page parameter.
func pageLink(c *gin.Context, page int) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}

	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	q := c.Request.URL.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     c.Request.Host,
		Path:     c.Request.URL.Path,
		RawQuery: q.Encode(),
	}

	return u.String()
}
