// Package onetimetoken stores the single-use tokens behind password reset
// and email verification links.
package onetimetoken

import "time"

type Purpose string

const (
	PurposeReset  Purpose = "reset"
	PurposeVerify Purpose = "verify"
)

type Ticket struct {
	Email     string
	Purpose   Purpose
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the ticket is past its expiry at now.
func (t Ticket) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

type Repo interface {
	Upsert(purpose Purpose, token string, ticket Ticket) error
	Get(purpose Purpose, token string) (Ticket, error)
	Delete(purpose Purpose, token string) error
}
