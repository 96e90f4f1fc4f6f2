// Package sources adapts the Rescale list endpoints to the list engine: items that
// satisfy reslist.Item, fetchers that turn index windows into API pages, and the row
// strategies each resource kind is browsed with.
package sources

import (
	"fmt"
	"strings"
	"time"

	"github.com/rescale/rescale-browse/internal/models"
	"github.com/rescale/rescale-browse/internal/reslist"
)

// Row is an item that can render its own cells.
type Row interface {
	reslist.Item
	Label() string
	Field(name string) string
}

// Column fields shared by both resource kinds.
const (
	FieldName     = "name"
	FieldOwner    = "owner"
	FieldCreated  = reslist.SortFieldCreated
	FieldModified = reslist.SortFieldModified
	FieldSize     = "size"
	FieldStatus   = "status"
)

const timeLayout = "2006-01-02 15:04"

// FileItem is one entry of a folder listing: a file or a subfolder.
type FileItem struct {
	Entry    models.FolderEntry
	created  time.Time
	modified time.Time
}

// NewFileItem wraps a folder entry. Entries with neither payload still occupy a row
// so later entries keep their index; they render blank.
func NewFileItem(e models.FolderEntry) *FileItem {
	it := &FileItem{Entry: e}
	switch {
	case e.Folder != nil:
		it.created = models.ParseTimestamp(e.Folder.DateInserted)
		it.modified = models.ParseTimestamp(e.Folder.DateModified)
	case e.File != nil:
		it.created = models.ParseTimestamp(e.File.DateUploaded)
		it.modified = models.ParseTimestamp(e.File.DateModified)
	}
	if it.modified.IsZero() {
		it.modified = it.created
	}
	return it
}

func (f *FileItem) ID() string {
	if f.Entry.Folder != nil {
		return f.Entry.Folder.ID
	}
	if f.Entry.File != nil {
		return f.Entry.File.ID
	}
	return f.Entry.ID
}

func (f *FileItem) CreatedAt() time.Time  { return f.created }
func (f *FileItem) ModifiedAt() time.Time { return f.modified }

// Label is the display name; folders carry a trailing slash.
func (f *FileItem) Label() string {
	if f.Entry.Folder != nil {
		return f.Entry.Folder.Name + "/"
	}
	if f.Entry.File != nil {
		return f.Entry.File.Name
	}
	return ""
}

// Size is the decrypted size in bytes, zero for folders.
func (f *FileItem) Size() int64 {
	if f.Entry.File != nil {
		return f.Entry.File.DecryptedSize
	}
	return 0
}

func (f *FileItem) Field(name string) string {
	switch name {
	case FieldName:
		return f.Label()
	case FieldSize:
		if f.Entry.File == nil {
			return ""
		}
		return FormatFileSize(f.Size())
	case FieldOwner:
		if f.Entry.Folder != nil {
			return f.Entry.Folder.Owner
		}
		if f.Entry.File != nil {
			return f.Entry.File.Owner
		}
	case FieldCreated:
		return formatTime(f.created)
	case FieldModified:
		return formatTime(f.modified)
	}
	return ""
}

// JobItem is one row of the jobs listing.
type JobItem struct {
	Job      models.JobResponse
	created  time.Time
	modified time.Time
}

// NewJobItem wraps a job.
func NewJobItem(j models.JobResponse) *JobItem {
	it := &JobItem{
		Job:      j,
		created:     models.ParseTimestamp(j.CreatedAt),
		modified:    models.ParseTimestamp(j.DateModified),
	}
	if it.modified.IsZero() {
		it.modified = it.created
	}
	return it
}

func (j *JobItem) ID() string             { return j.Job.ID }
func (j *JobItem) CreatedAt() time.Time  { return j.created }
func (j *JobItem) ModifiedAt() time.Time { return j.modified }
func (j *JobItem) Label() string          { return j.Job.Name }

func (j *JobItem) Field(name string) string {
	switch name {
	case FieldName:
		return j.Job.Name
	case FieldStatus:
		return j.Job.JobStatus.Status
	case FieldOwner:
		return j.Job.Owner
	case FieldCreated:
		return formatTime(j.created)
	case FieldModified:
		return formatTime(j.modified)
	case "tags":
		return strings.Join(j.Job.Tags, ", ")
	}
	return ""
}

// FormatFileSize formats a file size in bytes to human-readable format
func FormatFileSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(timeLayout)
}
