package sources

import (
	"context"
	"fmt"
	"sync"

	"github.com/rescale/rescale-browse/internal/api"
	"github.com/rescale/rescale-browse/internal/models"
	"github.com/rescale/rescale-browse/internal/reslist"
)

// FolderLister is the part of api.Client the folder source needs.
type FolderLister interface {
	ListFolderContentsPage(ctx context.Context, folderID string, opts api.PageOptions) (*models.FolderContentsResponse, error)
}

var fileOrdering = map[string]string{
	FieldName:     "name",
	FieldSize:     "decryptedSize",
	FieldOwner:    "owner",
	FieldCreated:  "dateUploaded",
	FieldModified: "dateModified",
}

// FolderSource serves the contents of one folder. Changing the folder or the search
// text changes the collection identity: callers follow up with a ReloadNewID.
type FolderSource struct {
	client FolderLister

	mu       sync.RWMutex
	folderID string
	search   string
}

// NewFolderSource returns a source listing folderID.
func NewFolderSource(client FolderLister, folderID string) *FolderSource {
	return &FolderSource{client: client, folderID: folderID}
}

func (s *FolderSource) FolderID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.folderID
}

func (s *FolderSource) SetFolder(id string) {
	s.mu.Lock()
	s.folderID = id
	s.mu.Unlock()
}

func (s *FolderSource) Search() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.search
}

func (s *FolderSource) SetSearch(text string) {
	s.mu.Lock()
	s.search = text
	s.mu.Unlock()
}

// FetchPage implements reslist.FetchPageFunc.
func (s *FolderSource) FetchPage(ctx context.Context, req reslist.PageRequest) (*reslist.PageResult, error) {
	ordering, err := orderingFor(reslist.SortState{Field: req.SortBy, Direction: req.SortDirection}, fileOrdering)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	folderID, search := s.folderID, s.search
	s.mu.RUnlock()

	// No folder chosen yet: an empty collection.
	if folderID == "" {
		return &reslist.PageResult{}, nil
	}

	return fetchWindow(ctx, req, ordering, search, func(ctx context.Context, opts api.PageOptions) ([]reslist.Item, int, error) {
		page, err := s.client.ListFolderContentsPage(ctx, folderID, opts)
		if err != nil {
			return nil, 0, err
		}
		base := (opts.Page - 1) * opts.PageSize
		items := make([]reslist.Item, len(page.Results))
		for i, e := range page.Results {
			if e.File == nil && e.Folder == nil && e.ID == "" {
				e.ID = fmt.Sprintf("%s:%d", e.Type, base+i)
			}
			items[i] = NewFileItem(e)
		}
		return items, page.Count, nil
	})
}
