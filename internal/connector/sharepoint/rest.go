package sharepoint

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/nucleus/sharepoint-publisher/internal/connector/http"
	"github.com/nucleus/sharepoint-publisher/internal/endpoint"
)

// =============================================================================
// REST SESSION
// Implements Session over /_api/web with JSON light (nometadata) responses.
// =============================================================================

var _ Session = (*RESTSession)(nil)

const (
	listSelect  = "Id,Title,Description,BaseType"
	fieldSelect = "Title,Description,TypeAsString,InternalName"
	itemPage    = "5000"
)

// RESTSession talks to one site through the SharePoint REST API.
type RESTSession struct {
	client   *http.Client
	webTitle string
}

// NewRESTOpener returns an Opener building REST sessions with the given
// client options.
func NewRESTOpener(opts endpoint.ClientOptions) Opener {
	return func(ctx context.Context, cfg *Config) (Session, error) {
		return OpenREST(ctx, cfg, opts)
	}
}

// OpenREST connects to the site and loads the web to confirm the address and
// credentials are usable.
func OpenREST(ctx context.Context, cfg *Config, opts endpoint.ClientOptions) (*RESTSession, error) {
	httpConfig := http.DefaultClientConfig()
	httpConfig.BaseURL = cfg.SiteURL
	if opts.Timeout > 0 {
		httpConfig.Timeout = opts.Timeout
	}
	if opts.MaxRetries > 0 {
		httpConfig.MaxRetries = opts.MaxRetries
	}
	if opts.RateLimit > 0 {
		httpConfig.RateLimit = opts.RateLimit
	}
	if opts.RateBurst > 0 {
		httpConfig.RateBurst = opts.RateBurst
	}
	if opts.UserAgent != "" {
		httpConfig.UserAgent = opts.UserAgent
	}
	httpConfig.Auth = http.NTLMAuth{
		Domain:   cfg.Domain,
		Username: cfg.Username,
		Password: cfg.Password,
	}
	httpConfig.Headers["Accept"] = "application/json;odata=nometadata"

	s := &RESTSession{client: http.NewClient(httpConfig)}

	var web struct {
		Title string `json:"Title"`
	}
	if err := s.client.GetJSON(ctx, "/_api/web", url.Values{"$select": {"Title"}}, &web); err != nil {
		return nil, fmt.Errorf("load web %s: %w", cfg.SiteURL, err)
	}
	s.webTitle = web.Title

	return s, nil
}

// WebTitle returns the title of the site loaded on open.
func (s *RESTSession) WebTitle() string {
	return s.webTitle
}

// ListCollections returns every list of the site in server order.
func (s *RESTSession) ListCollections(ctx context.Context) ([]Collection, error) {
	items, err := s.client.FetchAll(ctx, &http.Request{
		Path:  "/_api/web/lists",
		Query: url.Values{"$select": {listSelect}},
	}, http.NewODataPaginator(), "value")
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}

	collections := make([]Collection, 0, len(items))
	for _, item := range items {
		collections = append(collections, toCollection(item))
	}
	return collections, nil
}

// ListFields returns the field definitions of a list in server order.
func (s *RESTSession) ListFields(ctx context.Context, collection Collection) ([]Field, error) {
	items, err := s.client.FetchAll(ctx, &http.Request{
		Path:  listPath(collection) + "/fields",
		Query: url.Values{"$select": {fieldSelect}},
	}, http.NewODataPaginator(), "value")
	if err != nil {
		return nil, fmt.Errorf("list fields of %q: %w", collection.Title, err)
	}

	fields := make([]Field, 0, len(items))
	for _, item := range items {
		fields = append(fields, Field{
			Title:        str(item["Title"]),
			Description:  str(item["Description"]),
			TypeKind:     str(item["TypeAsString"]),
			InternalName: str(item["InternalName"]),
		})
	}
	return fields, nil
}

// FetchAllRecords returns every item of a list, following next links until
// the last page.
func (s *RESTSession) FetchAllRecords(ctx context.Context, collection Collection) ([]Record, error) {
	items, err := s.client.FetchAll(ctx, &http.Request{
		Path:  listPath(collection) + "/items",
		Query: url.Values{"$top": {itemPage}},
	}, http.NewODataPaginator(), "value")
	if err != nil {
		return nil, fmt.Errorf("fetch items of %q: %w", collection.Title, err)
	}

	return items, nil
}

// CollectionByTitle resolves a list by its exact title. The server matches
// titles case-insensitively, so a differently cased hit is rejected.
func (s *RESTSession) CollectionByTitle(ctx context.Context, title string) (Collection, error) {
	var item map[string]any
	err := s.client.GetJSON(ctx, byTitlePath(title), url.Values{"$select": {listSelect}}, &item)
	if err != nil {
		var httpErr *http.HTTPError
		if errors.As(err, &httpErr) && httpErr.IsNotFound() {
			return Collection{}, fmt.Errorf("%w: %q", ErrCollectionNotFound, title)
		}
		return Collection{}, fmt.Errorf("get list %q: %w", title, err)
	}
	c := toCollection(item)
	if c.Title != title {
		return Collection{}, fmt.Errorf("%w: %q (server resolved %q)", ErrCollectionNotFound, title, c.Title)
	}
	return c, nil
}

// Close releases the session. The REST session holds no server-side state.
func (s *RESTSession) Close() error {
	return nil
}

func listPath(c Collection) string {
	if c.ID != "" {
		return fmt.Sprintf("/_api/web/lists(guid'%s')", c.ID)
	}
	return byTitlePath(c.Title)
}

func byTitlePath(title string) string {
	quoted := strings.ReplaceAll(title, "'", "''")
	return "/_api/web/lists/GetByTitle('" + url.PathEscape(quoted) + "')"
}

func toCollection(item map[string]any) Collection {
	c := Collection{
		ID:          str(item["Id"]),
		Title:       str(item["Title"]),
		Description: str(item["Description"]),
		Kind:        -1,
	}
	if bt, ok := item["BaseType"].(float64); ok {
		c.Kind = CollectionKind(bt)
	}
	return c
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
