package dto

import "time"

// TrackingView is one delivery-log row for display.
type TrackingView struct {
	Token        string     `json:"token"`
	ToEmail      string     `json:"to_email"`
	Subject      string     `json:"subject"`
	Status       string     `json:"status"`
	SubmissionID string     `json:"submission_id"`
	SentAt       time.Time  `json:"sent_at"`
	DeliveredAt  *time.Time `json:"delivered_at,omitempty"`
	ReadAt       *time.Time `json:"read_at,omitempty"`
	ReadCount    int        `json:"read_count"`
}
