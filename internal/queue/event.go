// Package queue defines message payloads exchanged over the message broker.
package queue

// ConfirmationEmailEvent is published on every signup. The consumer
// turns it into the email carrying the confirmation code; losing one is
// acceptable (the user signs up again and gets a fresh code), which is
// why publishing failures never fail the registration request.
type ConfirmationEmailEvent struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Code     string `json:"code"`
	IssuedAt string `json:"issued_at"`
}
