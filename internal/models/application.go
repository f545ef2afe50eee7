// internal/models/application.go
package models

import "time"

type ApplicationStatus string

const (
	ApplicationApplied  ApplicationStatus = "applied"
	ApplicationAccepted ApplicationStatus = "accepted"
	ApplicationRejected ApplicationStatus = "rejected"
	ApplicationDone     ApplicationStatus = "done"
)

// Valid reports whether s is one of the known statuses.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationApplied, ApplicationAccepted, ApplicationRejected, ApplicationDone:
		return true
	}
	return false
}

// Application is the current user's application to one job. The backend allows at
// most one per (job, applicant).
type Application struct {
	ID          int64             `json:"id"`
	JobID       int64             `json:"job_id"`
	ApplicantID int64             `json:"applicant_id"`
	Status      ApplicationStatus `json:"status"`
	Rated       bool              `json:"rated"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Rating is the score an applicant or employer leaves for the other side once an
// application is done.
type Rating struct {
	Score   int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

// Valid reports whether the score is within 1..5.
func (r Rating) Valid() bool {
	return r.Score >= 1 && r.Score <= 5
}
