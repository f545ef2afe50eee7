// internal/models/job.go
package models

import "time"

// JobType is how the work is contracted.
type JobType string

const (
	JobTypeFullTime JobType = "full-time"
	JobTypePartTime JobType = "part-time"
	JobTypePerOrder JobType = "per-order"
)

// JobLifecycle tells whether a job still accepts applications. Only the backend
// transitions it.
type JobLifecycle string

const (
	JobActive JobLifecycle = "active"
	JobEnded  JobLifecycle = "ended"
)

// Job is a listing as the backend returns it. Immutable from the portal's side.
type Job struct {
	ID            int64        `json:"id"`
	Title         string       `json:"title"`
	Company       string       `json:"company"`
	Location      string       `json:"location"`
	Salary        int64        `json:"salary"`
	Type          JobType      `json:"type"`
	Lifecycle     JobLifecycle `json:"status"`
	MaxApplicants int          `json:"max_applicants"`
	Deadline      string       `json:"deadline"`
	Contact       string       `json:"contact"`
	Description   string       `json:"description"`
	CreatedAt     time.Time    `json:"created_at"`
	EmployerID    int64        `json:"employer_id"`
}

// AcceptsApplications reports whether the job is open for new applications.
func (j Job) AcceptsApplications() bool {
	return j.Lifecycle == JobActive
}
