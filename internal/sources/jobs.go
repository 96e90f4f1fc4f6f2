package sources

import (
	"context"
	"sync"

	"github.com/rescale/rescale-browse/internal/api"
	"github.com/rescale/rescale-browse/internal/models"
	"github.com/rescale/rescale-browse/internal/reslist"
)

// JobLister is the part of api.Client the job source needs.
type JobLister interface {
	ListJobsPage(ctx context.Context, opts api.PageOptions) (*models.JobListResponse, error)
}

var jobOrdering = map[string]string{
	FieldName:     "name",
	FieldOwner:    "owner",
	FieldStatus:   "jobStatus",
	FieldCreated:  "dateInserted",
	FieldModified: "dateModified",
}

// JobSource serves the user's jobs, optionally filtered by a search text.
type JobSource struct {
	client JobLister

	mu     sync.RWMutex
	search string
}

// NewJobSource returns a source listing all jobs visible to the API key.
func NewJobSource(client JobLister) *JobSource {
	return &JobSource{client: client}
}

func (s *JobSource) Search() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.search
}

func (s *JobSource) SetSearch(text string) {
	s.mu.Lock()
	s.search = text
	s.mu.Unlock()
}

// FetchPage implements reslist.FetchPageFunc.
func (s *JobSource) FetchPage(ctx context.Context, req reslist.PageRequest) (*reslist.PageResult, error) {
	ordering, err := orderingFor(reslist.SortState{Field: req.SortBy, Direction: req.SortDirection}, jobOrdering)
	if err != nil {
		return nil, err
	}
	search := s.Search()

	return fetchWindow(ctx, req, ordering, search, func(ctx context.Context, opts api.PageOptions) ([]reslist.Item, int, error) {
		page, err := s.client.ListJobsPage(ctx, opts)
		if err != nil {
			return nil, 0, err
		}
		items := make([]reslist.Item, len(page.Results))
		for i, j := range page.Results {
			items[i] = NewJobItem(j)
		}
		return items, page.Count, nil
	})
}
