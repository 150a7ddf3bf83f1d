package sharepoint

import (
	"context"
	"errors"
)

// ErrCollectionNotFound is returned when no list carries the requested title.
var ErrCollectionNotFound = errors.New("list not found")

// CollectionKind is the list base type reported by SharePoint.
type CollectionKind int

const (
	KindGenericList     CollectionKind = 0
	KindDocumentLibrary CollectionKind = 1
	KindDiscussionBoard CollectionKind = 3
	KindSurvey          CollectionKind = 4
	KindIssue           CollectionKind = 5
)

func (k CollectionKind) String() string {
	switch k {
	case KindGenericList:
		return "GenericList"
	case KindDocumentLibrary:
		return "DocumentLibrary"
	case KindDiscussionBoard:
		return "DiscussionBoard"
	case KindSurvey:
		return "Survey"
	case KindIssue:
		return "Issue"
	default:
		return "Unknown"
	}
}

// Collection is one list of a site.
type Collection struct {
	ID          string
	Title       string
	Description string
	Kind        CollectionKind
}

// Field is one column definition of a list.
// TypeKind is the type name SharePoint reports (e.g. "Text", "Boolean").
type Field struct {
	Title        string
	Description  string
	TypeKind     string
	InternalName string
}

// Record maps internal field keys to native values.
type Record = map[string]any

// Session is a connection to one site. Implementations must return complete
// results: any paging is drained before a call returns.
type Session interface {
	ListCollections(ctx context.Context) ([]Collection, error)
	ListFields(ctx context.Context, collection Collection) ([]Field, error)
	FetchAllRecords(ctx context.Context, collection Collection) ([]Record, error)
	CollectionByTitle(ctx context.Context, title string) (Collection, error)
	Close() error
}

// Opener establishes a session. Each call gets its own session.
type Opener func(ctx context.Context, cfg *Config) (Session, error)
