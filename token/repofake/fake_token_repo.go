package tokenfakerepo

import (
	"context"
	"sync"

	apperrors "github.com/jrsteele09/go-bookshelf-client/internal/errors"
	"github.com/jrsteele09/go-bookshelf-client/token"
)

var _ token.Repo = (*FakeTokenRepo)(nil)

// FakeTokenRepo keeps tokens in process memory. Tokens do not survive a restart.
type FakeTokenRepo struct {
	values map[string]string
	lock   sync.RWMutex
}

func NewFakeTokensRepo() *FakeTokenRepo {
	return &FakeTokenRepo{
		values: make(map[string]string),
	}
}

func (tr *FakeTokenRepo) Get(_ context.Context, key string) (string, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()

	v, ok := tr.values[key]
	if !ok {
		return "", apperrors.ErrNotFound
	}
	return v, nil
}

func (tr *FakeTokenRepo) Set(_ context.Context, key, value string) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	tr.values[key] = value
	return nil
}

func (tr *FakeTokenRepo) Delete(_ context.Context, keys ...string) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	for _, k := range keys {
		delete(tr.values, k)
	}
	return nil
}

// Len reports how many keys are stored.
func (tr *FakeTokenRepo) Len() int {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	return len(tr.values)
}
