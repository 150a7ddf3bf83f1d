package http

import (
	"context"
	"encoding/json"
	"net/http"
)

// =============================================================================
// PAGINATION STRATEGIES
// =============================================================================

// Paginator handles API pagination.
type Paginator interface {
	// NextPage returns the request for the next page, or nil if done.
	NextPage(ctx context.Context, resp *Response) (*Request, error)
}

// =============================================================================
// ODATA NEXT-LINK PAGINATION
// =============================================================================

// ODataPaginator follows the absolute next link OData services return with
// each partial page. It understands the JSON light ("odata.nextLink",
// "@odata.nextLink") and verbose ("d.__next") spellings.
type ODataPaginator struct {
	pages int
}

// NewODataPaginator creates a next-link paginator.
func NewODataPaginator() *ODataPaginator {
	return &ODataPaginator{}
}

// NextPage returns a request for the next link, or nil on the last page.
func (p *ODataPaginator) NextPage(ctx context.Context, resp *Response) (*Request, error) {
	p.pages++

	var data struct {
		NextLink   string `json:"odata.nextLink"`
		AtNextLink string `json:"@odata.nextLink"`
		Verbose    struct {
			Next string `json:"__next"`
		} `json:"d"`
	}
	if err := json.Unmarshal(resp.Body, &data); err != nil {
		return nil, err
	}

	next := data.NextLink
	if next == "" {
		next = data.AtNextLink
	}
	if next == "" {
		next = data.Verbose.Next
	}
	if next == "" {
		return nil, nil
	}

	return &Request{
		Method: http.MethodGet,
		URL:    next,
	}, nil
}

// Pages returns how many pages have been consumed.
func (p *ODataPaginator) Pages() int {
	return p.pages
}

// =============================================================================
// PAGE DRAINING
// =============================================================================

// FetchAll follows the paginator from first until the last page and collects
// the objects found under resultsKey on every page. Nothing is returned until
// all pages are read.
func (c *Client) FetchAll(ctx context.Context, first *Request, paginator Paginator, resultsKey string) ([]map[string]any, error) {
	var all []map[string]any

	req := first
	for req != nil {
		resp, err := c.Do(ctx, req)
		if err != nil {
			return nil, err
		}

		var data map[string]any
		if err := resp.JSON(&data); err != nil {
			return nil, err
		}

		if results, ok := data[resultsKey]; ok {
			if arr, ok := results.([]any); ok {
				for _, item := range arr {
					if m, ok := item.(map[string]any); ok {
						all = append(all, m)
					}
				}
			}
		}

		req, err = paginator.NextPage(ctx, resp)
		if err != nil {
			return nil, err
		}
	}

	return all, nil
}
