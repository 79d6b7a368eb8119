package onetimetoken

import (
	"sync"

	apperrors "github.com/jrsteele09/go-bookshelf-client/internal/errors"
	"github.com/pkg/errors"
)

var _ Repo = (*InMemoryRepo)(nil)

type InMemoryRepo struct {
	mu      sync.RWMutex
	tickets map[Purpose]map[string]Ticket // purpose -> token -> ticket
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		tickets: make(map[Purpose]map[string]Ticket),
	}
}

func (r *InMemoryRepo) Upsert(purpose Purpose, token string, ticket Ticket) error {
	if purpose == "" {
		return errors.New("[Upsert] purpose is required")
	}
	if token == "" {
		return errors.New("[Upsert] token is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tickets[purpose]; !ok {
		r.tickets[purpose] = make(map[string]Ticket)
	}
	r.tickets[purpose][token] = ticket
	return nil
}

func (r *InMemoryRepo) Get(purpose Purpose, token string) (Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ticket, ok := r.tickets[purpose][token]
	if !ok {
		return Ticket{}, apperrors.ErrNotFound
	}
	return ticket, nil
}

// Delete removes a ticket. Deleting an unknown token is not an error.
func (r *InMemoryRepo) Delete(purpose Purpose, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	purposeTickets, ok := r.tickets[purpose]
	if !ok {
		return nil
	}
	delete(purposeTickets, token)
	if len(purposeTickets) == 0 {
		delete(r.tickets, purpose)
	}
	return nil
}
