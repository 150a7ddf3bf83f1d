package sharepoint

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var errRemote = errors.New("remote unavailable")

// fakeSession serves a fixed site from memory.
type fakeSession struct {
	collections []Collection
	fields      map[string][]Field
	records     map[string][]Record

	failListCollections bool
	failListFields      string
	failFetch           bool
	failByTitle         bool

	mu     sync.Mutex
	calls  []string
	closed int
}

func (s *fakeSession) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
}

func (s *fakeSession) ListCollections(ctx context.Context) ([]Collection, error) {
	s.record("ListCollections")
	if s.failListCollections {
		return nil, errRemote
	}
	return append([]Collection(nil), s.collections...), nil
}

func (s *fakeSession) ListFields(ctx context.Context, c Collection) ([]Field, error) {
	s.record("ListFields:" + c.Title)
	if s.failListFields == c.Title {
		return nil, errRemote
	}
	return append([]Field(nil), s.fields[c.Title]...), nil
}

func (s *fakeSession) FetchAllRecords(ctx context.Context, c Collection) ([]Record, error) {
	s.record("FetchAllRecords:" + c.Title)
	if s.failFetch {
		return nil, errRemote
	}
	return s.records[c.Title], nil
}

func (s *fakeSession) CollectionByTitle(ctx context.Context, title string) (Collection, error) {
	s.record("CollectionByTitle:" + title)
	if s.failByTitle {
		return Collection{}, errRemote
	}
	for _, c := range s.collections {
		if c.Title == title {
			return c, nil
		}
	}
	return Collection{}, fmt.Errorf("list %q does not exist", title)
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

// fakeOpener hands out the same session and counts opens.
type fakeOpener struct {
	session *fakeSession
	err     error

	mu    sync.Mutex
	opens int
	last  *Config
}

func (o *fakeOpener) Open(ctx context.Context, cfg *Config) (Session, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.opens++
	o.last = cfg
	if o.err != nil {
		return nil, o.err
	}
	return o.session, nil
}

// contactsSite is a site with one generic list, one document library and
// one field of every interesting type.
func contactsSite() *fakeSession {
	return &fakeSession{
		collections: []Collection{
			{ID: "1", Title: "Contacts", Description: "People", Kind: KindGenericList},
			{ID: "2", Title: "Documents", Kind: KindDocumentLibrary},
			{ID: "3", Title: "Tasks", Kind: KindGenericList},
		},
		fields: map[string][]Field{
			"Contacts": {
				{Title: "Title", TypeKind: "Text", InternalName: "Title"},
				{Title: "Email Address", Description: "Work email", TypeKind: "Text", InternalName: "Email_x0020_Address"},
			},
			"Documents": {
				{Title: "Name", TypeKind: "File"},
			},
			"Tasks": {
				{Title: "Title", TypeKind: "Text"},
				{Title: "Notes", TypeKind: "Note"},
				{Title: "Done", TypeKind: "Boolean"},
				{Title: "Estimate", TypeKind: "Number"},
				{Title: "Order_0", TypeKind: "Integer"},
				{Title: "UniqueId", TypeKind: "Guid"},
				{Title: "Due", TypeKind: "DateTime"},
				{Title: "AssignedTo", TypeKind: "User"},
				{Title: "Status", TypeKind: "Choice"},
			},
		},
		records: map[string][]Record{
			"Contacts": {
				{"Title": "A", "Email_x0020_Address": "a@x.com"},
			},
			"Tasks": {
				{"Title": "one", "Notes": "n", "Done": true, "Estimate": 1.5, "Order": float64(2), "UniqueId": "g-1"},
				{"Title": "two", "Done": false},
				{"Title": "three", "Due": "2024-01-01"},
			},
		},
	}
}
