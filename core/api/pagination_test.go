package api_test

import (
	"net/http"
	"testing"

	"lair-scanner/core/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func header(start, number, total, filtered string) http.Header {
	h := http.Header{}
	h.Set(api.HeaderStart, start)
	h.Set(api.HeaderNumber, number)
	h.Set(api.HeaderTotal, total)
	h.Set(api.HeaderFilteredTotal, filtered)
	return h
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name    string
		header  http.Header
		want    api.Pagination
		hasMore bool
	}{
		{"FirstOfTwoPages", header("0", "500", "900", "700"), api.Pagination{Start: 0, Number: 500, Total: 900, FilteredTotal: 700}, true},
		{"LastPage", header("500", "500", "900", "700"), api.Pagination{Start: 500, Number: 500, Total: 900, FilteredTotal: 700}, false},
		{"ExactBoundary", header("0", "2", "2", "2"), api.Pagination{Start: 0, Number: 2, Total: 2, FilteredTotal: 2}, false},
		{"Empty", header("0", "500", "0", "0"), api.Pagination{Start: 0, Number: 500}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := api.ParsePagination(tt.header)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.hasMore, got.HasMore())
		})
	}
}

func TestParsePagination_Errors(t *testing.T) {
	_, err := api.ParsePagination(http.Header{})
	assert.ErrorIs(t, err, api.ErrNoPagination)

	_, err = api.ParsePagination(header("zero", "500", "10", "10"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), api.HeaderStart)
}
