package models

import "time"

// EmailTracking is one row of the append-only delivery log. Two rows share a
// SubmissionID per send: the department mail and the confirmation mail.
type EmailTracking struct {
	ID           int64      `db:"id" json:"id"`
	Token        string     `db:"token" json:"token"`
	ToEmail      string     `db:"to_email" json:"to_email"`
	Subject      string     `db:"subject" json:"subject"`
	OwnerID      string     `db:"owner_id" json:"owner_id"`
	SubmissionID string     `db:"submission_id" json:"submission_id"`
	SentAt       time.Time  `db:"sent_at" json:"sent_at"`
	DeliveredAt  *time.Time `db:"delivered_at" json:"delivered_at,omitempty"`
	ReadAt       *time.Time `db:"read_at" json:"read_at,omitempty"`
	ReadCount    int        `db:"read_count" json:"read_count"`
}

// Status summarizes the row for display.
func (t *EmailTracking) Status() string {
	switch {
	case t.ReadAt != nil:
		return "gelezen"
	case t.DeliveredAt != nil:
		return "afgeleverd"
	default:
		return "verzonden"
	}
}
