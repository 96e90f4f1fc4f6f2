// Package models defines the Rescale API payloads the browser reads.
package models

// JobResponse represents a job from the API
type JobResponse struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	JobStatus    JobStatusContent `json:"jobStatus"`
	CreatedAt    string           `json:"dateInserted"`
	DateModified string           `json:"dateModified,omitempty"`
	Owner        string           `json:"owner"`
	Tags         []string         `json:"tags,omitempty"`
}

// JobStatusContent represents job status
// Note: the /jobs/ list endpoint returns the status in "content".
type JobStatusContent struct {
	Status string `json:"content"`
	Reason string `json:"statusReason,omitempty"`
}

// JobListResponse represents one page of /api/v3/jobs/
type JobListResponse struct {
	Count   int           `json:"count"`
	Next    *string       `json:"next"`
	Results []JobResponse `json:"results"`
}

// Job status values shown in the browser
const (
	JobStatusCompleted = "Completed"
	JobStatusExecuting = "Executing"
	JobStatusQueued    = "Queued"
	JobStatusStopping  = "Stopping"
	JobStatusFailed    = "Failed"
)

// IsTerminal reports whether the job will not change status again.
func (s JobStatusContent) IsTerminal() bool {
	switch s.Status {
	case JobStatusCompleted, JobStatusFailed:
		return true
	}
	return false
}
