// Package types provides the shared domain structs exchanged between the
// store, the HTTP handlers, and the designer. They map one-to-one to the
// persisted rows and to the JSON the API serves.
package types

import "time"

// Form is a persisted form definition. Content holds the serialized
// designer layout; it is opaque to the store and owned by the field
// package's layout codec.
type Form struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Content     string    `json:"content"`
	Published   bool      `json:"published"`
	ShareURL    string    `json:"share_url"`
	Visits      int64     `json:"visits"`
	Submissions int64     `json:"submissions"`
	CreatedAt   time.Time `json:"created_at"`
}

// Submission is one accepted response to a published form. Content is a
// flat JSON object of fieldID -> string value; all values are stored as
// strings regardless of logical type ("true"/"false" for checkboxes,
// ISO dates for date fields).
type Submission struct {
	ID        string    `json:"id"`
	FormID    string    `json:"form_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// FormStats aggregates visit and submission counters, either for a
// single form or across all forms of one owner.
type FormStats struct {
	Visits         int64   `json:"visits"`
	Submissions    int64   `json:"submissions"`
	SubmissionRate float64 `json:"submission_rate"` // percent of visits that submitted
	BounceRate     float64 `json:"bounce_rate"`     // 100 - SubmissionRate
}

// Rate computes submission and bounce rates from raw counters.
func Rate(visits, submissions int64) (submissionRate, bounceRate float64) {
	if visits > 0 {
		submissionRate = float64(submissions) / float64(visits) * 100
	}
	return submissionRate, 100 - submissionRate
}
