// internal/models/comment.go
package models

import "time"

// Comment is the single accepted shape of a job discussion entry. Payloads using
// other field names are contract violations.
type Comment struct {
	ID         int64     `json:"id"`
	JobID      int64     `json:"job_id"`
	AuthorID   int64     `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}
