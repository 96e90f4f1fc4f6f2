package cli

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"

	"github.com/rescale/rescale-browse/internal/api"
	"github.com/rescale/rescale-browse/internal/config"
	"github.com/rescale/rescale-browse/internal/models"
	"github.com/rescale/rescale-browse/internal/reslist"
	"github.com/rescale/rescale-browse/internal/sources"
)

type fakeJobs struct {
	mu    sync.Mutex
	n     int
	calls int
}

func (f *fakeJobs) ListJobsPage(ctx context.Context, opts api.PageOptions) (*models.JobListResponse, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	start := (opts.Page - 1) * opts.PageSize
	if start >= f.n && start > 0 {
		return nil, &api.APIError{StatusCode: 404}
	}
	page := &models.JobListResponse{Count: f.n}
	for i := start; i < min(start+opts.PageSize, f.n); i++ {
		page.Results = append(page.Results, models.JobResponse{
			ID:        "j" + strconv.Itoa(i),
			Name:      fmt.Sprintf("job %d", i),
			JobStatus: models.JobStatusContent{Status: models.JobStatusCompleted},
		})
	}
	return page, nil
}

func newTestList(t *testing.T, args ...string) (*cobra.Command, *listOptions) {
	t.Helper()
	opts := &listOptions{}
	cmd := &cobra.Command{Use: "ls"}
	opts.register(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatal(err)
	}
	return cmd, opts
}

func jobListing(n int) listing {
	src := sources.NewJobSource(&fakeJobs{n: n})
	return listing{
		kind:       "jobs",
		fetch:      src.FetchPage,
		strategies: sources.JobStrategies,
		columns:    sources.JobColumns(),
	}
}

func TestRunList_TableWindow(t *testing.T) {
	cmd, opts := newTestList(t, "--offset", "10", "--limit", "5", "--layout", "table")

	var out bytes.Buffer
	if err := runList(context.Background(), cmd, config.Default(), jobListing(42), *opts, &out); err != nil {
		t.Fatalf("runList() error = %v", err)
	}

	s := out.String()
	for i := 10; i < 15; i++ {
		if !strings.Contains(s, fmt.Sprintf("job %d ", i)) {
			t.Errorf("missing job %d in:\n%s", i, s)
		}
	}
	if strings.Contains(s, "job 15") || strings.Contains(s, "job 9 ") {
		t.Errorf("rows outside the window rendered:\n%s", s)
	}
	if !strings.Contains(s, "Showing 11-15 of 42 jobs") {
		t.Errorf("missing summary in:\n%s", s)
	}
	if !strings.Contains(s, "Name ^") {
		t.Errorf("expected ascending name header in:\n%s", s)
	}
}

func TestRunList_Grid(t *testing.T) {
	cmd, opts := newTestList(t, "--limit", "7", "--layout", "grid", "--columns", "3")

	var out bytes.Buffer
	if err := runList(context.Background(), cmd, config.Default(), jobListing(42), *opts, &out); err != nil {
		t.Fatalf("runList() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) < 3 {
		t.Fatalf("expected three grid rows, got:\n%s", out.String())
	}
	for _, want := range []string{"job 0", "job 1", "job 2"} {
		if !strings.Contains(lines[0], want) {
			t.Errorf("first row %q is missing %q", lines[0], want)
		}
	}
	if !strings.Contains(lines[2], "job 6") || strings.Contains(out.String(), "job 7") {
		t.Errorf("third row should hold only job 6:\n%s", out.String())
	}
}

func TestRunList_All(t *testing.T) {
	cmd, opts := newTestList(t, "--all", "--layout", "table")

	var out bytes.Buffer
	if err := runList(context.Background(), cmd, config.Default(), jobListing(2500), *opts, &out); err != nil {
		t.Fatalf("runList() error = %v", err)
	}
	s := out.String()
	if !strings.Contains(s, "job 2499") {
		t.Error("last job not rendered")
	}
	if !strings.Contains(s, "2500 of 2500 jobs selected") {
		t.Errorf("missing selection summary in:\n%s", s[max(len(s)-200, 0):])
	}
}

func TestRunList_Empty(t *testing.T) {
	cmd, opts := newTestList(t)

	var out bytes.Buffer
	if err := runList(context.Background(), cmd, config.Default(), jobListing(0), *opts, &out); err != nil {
		t.Fatalf("runList() error = %v", err)
	}
	if !strings.Contains(out.String(), "No jobs found") {
		t.Errorf("got %q", out.String())
	}
}

func TestListOptions_SortState(t *testing.T) {
	cfg := config.Default()
	cols := sources.JobColumns()

	tests := []struct {
		name    string
		args    []string
		want    reslist.SortState
		wantErr bool
	}{
		{"config default", nil, reslist.SortState{Field: "name", Direction: reslist.Ascending}, false},
		{"desc only", []string{"--desc"}, reslist.SortState{Field: "name", Direction: reslist.Descending}, false},
		{"explicit field", []string{"--sort", "status"}, reslist.SortState{Field: "status", Direction: reslist.Ascending}, false},
		{"explicit desc", []string{"--sort", "created", "--desc"}, reslist.SortState{Field: "created", Direction: reslist.Descending}, false},
		{"not sortable", []string{"--sort", "tags"}, reslist.SortState{}, true},
		{"unknown", []string{"--sort", "colour"}, reslist.SortState{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, opts := newTestList(t, tt.args...)
			got, err := opts.sortState(cmd, cfg, cols)
			if (err != nil) != tt.wantErr {
				t.Fatalf("sortState() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("sortState() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFitColumns(t *testing.T) {
	cols := []reslist.Column{
		{Field: "name", Title: "Name", Width: 400},
		{Field: "size", Title: "Size", Width: 80},
	}
	got := fitColumns(cols, 40)
	if got[1].chars != 10 {
		t.Errorf("size column = %d chars, want 10", got[1].chars)
	}
	if got[0].chars != 40-2-10 {
		t.Errorf("name column = %d chars, want %d", got[0].chars, 40-2-10)
	}
}
