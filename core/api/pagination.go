package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

// Pagination headers of list responses.
const (
	HeaderStart         = "X-Pagination-Start"
	HeaderNumber        = "X-Pagination-Number"
	HeaderTotal         = "X-Pagination-Total"
	HeaderFilteredTotal = "X-Pagination-Filtered-Total"
)

// ErrNoPagination is returned when a response carries no pagination headers.
var ErrNoPagination = errors.New("response has no pagination headers")

// Pagination describes the page of a list response.
type Pagination struct {
	Start         int
	Number        int
	Total         int
	FilteredTotal int
}

// HasMore reports whether records remain after this page.
func (p Pagination) HasMore() bool {
	return p.Start+p.Number < p.FilteredTotal
}

// ParsePagination reads the pagination headers of a response.
func ParsePagination(h http.Header) (Pagination, error) {
	if h.Get(HeaderFilteredTotal) == "" {
		return Pagination{}, ErrNoPagination
	}

	var (
		p   Pagination
		err error
	)
	fields := []struct {
		header string
		dst    *int
	}{
		{HeaderStart, &p.Start},
		{HeaderNumber, &p.Number},
		{HeaderTotal, &p.Total},
		{HeaderFilteredTotal, &p.FilteredTotal},
	}
	for _, f := range fields {
		raw := h.Get(f.header)
		if *f.dst, err = strconv.Atoi(raw); err != nil {
			return Pagination{}, fmt.Errorf("%s response header value is not an integer (got %q)", f.header, raw)
		}
	}

	return p, nil
}
