package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"lair-scanner/core/models"
)

// FileQuery selects the remote files of a source directory.
type FileQuery struct {
	SourceID  string
	Directory string
}

func (q FileQuery) values() url.Values {
	v := url.Values{
		"type":     {"file"},
		"sourceId": {q.SourceID},
	}
	if q.Directory != "" {
		v["directory"] = []string{q.Directory}
	}
	return v
}

// CountFiles returns the number of remote files matching the query.
func (c *Client) CountFiles(ctx context.Context, q FileQuery) (int, error) {
	query := q.values()
	query["number"] = []string{"0"}

	header, err := c.do(ctx, request{
		method:    http.MethodHead,
		path:      "/media/files",
		query:     query,
		expected:  http.StatusOK,
		operation: "count media files in " + q.Directory,
	})
	if err != nil {
		return 0, err
	}

	p, err := ParsePagination(header)
	if err != nil {
		return 0, err
	}
	return p.FilteredTotal, nil
}

// ListFiles returns one page of remote files with normalized timestamps.
func (c *Client) ListFiles(ctx context.Context, q FileQuery, start, number int) ([]models.File, Pagination, error) {
	query := q.values()
	query["start"] = []string{strconv.Itoa(start)}
	query["number"] = []string{strconv.Itoa(number)}

	var files []models.File
	header, err := c.do(ctx, request{
		method:    http.MethodGet,
		path:      "/media/files",
		query:     query,
		expected:  http.StatusOK,
		operation: "list media files in " + q.Directory,
		out:       &files,
	})
	if err != nil {
		return nil, Pagination{}, err
	}

	p, err := ParsePagination(header)
	if err != nil {
		return nil, Pagination{}, err
	}

	for i := range files {
		files[i].Normalize()
	}
	return files, p, nil
}
