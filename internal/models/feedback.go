package models

import "time"

// Feedback is a user-submitted rating with free-form comments.
type Feedback struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Rating    int       `json:"rating"`
	Feedback  string    `json:"feedback"`
	CreatedAt time.Time `json:"createdAt"`
}

// SubmitFeedbackRequest is the payload for feedback submission.
type SubmitFeedbackRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Rating   int    `json:"rating"`
	Feedback string `json:"feedback"`
}
