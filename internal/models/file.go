package models

import (
	"strings"
	"time"
)

// CloudFile represents a file stored in Rescale cloud storage
type CloudFile struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	TypeID        int    `json:"typeId"`
	IsUploaded    bool   `json:"isUploaded"`
	Owner         string `json:"owner"`
	Path          string `json:"path"`
	DecryptedSize int64  `json:"decryptedSize,omitempty"`
	DateUploaded  string `json:"dateUploaded,omitempty"`
	DateModified  string `json:"dateModified,omitempty"`
}

// Folder represents a Rescale folder
type Folder struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Owner        string `json:"owner"`
	DateInserted string `json:"dateInserted,omitempty"`
	DateModified string `json:"dateModified,omitempty"`
}

// Entry types in a folder contents listing
const (
	EntryTypeFile   = "file"
	EntryTypeFolder = "folder"
)

// FolderEntry is one row of /api/v3/folders/{id}/contents/. The item payload
// depends on Type; File and Folder are filled in after decoding. Entries of any
// other type keep their position in the listing and carry only Type and ID.
type FolderEntry struct {
	Type   string     `json:"type"`
	ID     string     `json:"-"`
	File   *CloudFile `json:"-"`
	Folder *Folder    `json:"-"`
}

// IsFolder reports whether the entry is a folder.
func (e *FolderEntry) IsFolder() bool {
	return e.Type == EntryTypeFolder
}

// FolderContentsResponse represents one page of folder contents
type FolderContentsResponse struct {
	Count   int           `json:"count"`
	Next    *string       `json:"next"`
	Results []FolderEntry `json:"results"`
}

// FileListResponse represents the response from file list API
type FileListResponse struct {
	Count   int         `json:"count"`
	Next    *string     `json:"next"`
	Results []CloudFile `json:"results"`
}

// RootFolders represents user's root folders
type RootFolders struct {
	MyJobs    string `json:"myJobs"`
	MyLibrary string `json:"myLibrary"`
}

// UserProfile represents a user's profile
type UserProfile struct {
	Email string `json:"email"`
}

// ParseTimestamp parses the timestamps the API returns. Both RFC 3339 and the
// microsecond form without a zone ("2025-01-02T03:04:05.123456") appear in the wild;
// the latter is UTC. An empty or unparseable value yields the zero time.
func ParseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02T15:04:05.999999", s); err == nil {
		return t.UTC()
	}
	return time.Time{}
}
