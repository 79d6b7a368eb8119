package server

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/jrsteele09/go-bookshelf-client/server/onetimetoken"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const maxJSONBody = 1 << 20

// writeJSON writes v with the given status. Encoding errors are logged only,
// the status line is already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err(err).Msg("failed to encode response")
	}
}

// writeError writes the {"message": ...} error body the client reads.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}

// queryInt reads a positive integer query parameter.
func queryInt(r *http.Request, key string, defaultValue int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v < 1 {
		return defaultValue
	}
	return v
}

func generateRandomString(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "[generateRandomString] failed")
	}
	return hex.EncodeToString(b), nil
}

const oneTimeTokenTTL = time.Hour

// oneTimeTokens issues reset and verification tokens. A token is consumed by
// its first use, expired or not.
type oneTimeTokens struct {
	repo onetimetoken.Repo
}

func newOneTimeTokens(repo onetimetoken.Repo) *oneTimeTokens {
	return &oneTimeTokens{repo: repo}
}

func (o *oneTimeTokens) issue(email string, purpose onetimetoken.Purpose) (string, error) {
	tok, err := generateRandomString(16)
	if err != nil {
		return "", err
	}
	now := time.Now()
	ticket := onetimetoken.Ticket{Email: email, Purpose: purpose, CreatedAt: now, ExpiresAt: now.Add(oneTimeTokenTTL)}
	if err := o.repo.Upsert(purpose, tok, ticket); err != nil {
		return "", errors.Wrap(err, "[issue] failed to store token")
	}
	return tok, nil
}

func (o *oneTimeTokens) consume(tok string, purpose onetimetoken.Purpose) (string, bool) {
	ticket, err := o.repo.Get(purpose, tok)
	if err != nil {
		return "", false
	}
	if err := o.repo.Delete(purpose, tok); err != nil {
		log.Err(err).Msg("failed to delete one-time token")
	}
	if ticket.Expired(time.Now()) {
		return "", false
	}
	return ticket.Email, true
}
