package apiclient

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Subscription identifies a registered auth error callback.
type Subscription string

type subscribers struct {
	lock  sync.RWMutex
	order []Subscription
	fns   map[Subscription]func()
}

func newSubscribers() *subscribers {
	return &subscribers{fns: make(map[Subscription]func())}
}

func (s *subscribers) add(fn func()) Subscription {
	id := Subscription(uuid.NewString())
	s.lock.Lock()
	defer s.lock.Unlock()
	s.order = append(s.order, id)
	s.fns[id] = fn
	return id
}

func (s *subscribers) remove(id Subscription) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	if _, ok := s.fns[id]; !ok {
		return false
	}
	delete(s.fns, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *subscribers) len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.fns)
}

// notify calls every subscriber in registration order. A panicking
// subscriber is logged and does not stop the others.
func (s *subscribers) notify(logger zerolog.Logger) {
	s.lock.RLock()
	fns := make([]func(), 0, len(s.order))
	for _, id := range s.order {
		fns = append(fns, s.fns[id])
	}
	s.lock.RUnlock()

	for _, fn := range fns {
		call(logger, fn)
	}
}

func call(logger zerolog.Logger, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("auth error subscriber panicked")
		}
	}()
	fn()
}
