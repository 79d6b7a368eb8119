package server

import (
	"time"

	"github.com/jrsteele09/go-bookshelf-client/catalog"
	apperrors "github.com/jrsteele09/go-bookshelf-client/internal/errors"
	"github.com/jrsteele09/go-bookshelf-client/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// InitialiseSystem seeds the demo catalog when it is empty and ensures the
// demo account exists.
func (s *Server) InitialiseSystem() error {
	existing, err := s.repos.Catalog.List()
	if err != nil {
		return errors.Wrap(err, "[InitialiseSystem] failed to list catalog")
	}
	if len(existing) == 0 {
		for _, b := range catalog.SeedBooks(time.Now().UTC()) {
			if err := s.repos.Catalog.Upsert(b); err != nil {
				return errors.Wrapf(err, "[InitialiseSystem] failed to seed book %s", b.ID)
			}
		}
		log.Info().Msg("seeded demo catalog")
	}
	return s.ensureDemoUser()
}

func (s *Server) ensureDemoUser() error {
	email, password := s.config.GetDemoUser()
	if email == "" {
		return nil
	}
	if _, err := s.repos.Users.GetByEmail(email); err == nil {
		return nil
	} else if !apperrors.Is(err, apperrors.ErrUserNotFound) {
		return errors.Wrap(err, "[ensureDemoUser] lookup failed")
	}

	hash, err := users.HashPassword(password)
	if err != nil {
		return errors.Wrap(err, "[ensureDemoUser] failed to hash password")
	}
	demo := &users.User{
		Email:        email,
		Name:         "Demo Reader",
		PasswordHash: hash,
		Roles:        []users.RoleType{users.RoleReader},
		Preferences:  users.Preferences{Genres: []string{"science fiction", "fantasy"}, Languages: []string{"en"}},
		DateJoined:   time.Now().UTC(),
		Verified:     true,
	}
	if err := s.repos.Users.Upsert(demo); err != nil {
		return errors.Wrap(err, "[ensureDemoUser] failed to create user")
	}
	log.Info().Str("email", email).Msg("created demo user")
	return nil
}
