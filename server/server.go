package server

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/mux"
	"github.com/jrsteele09/go-bookshelf-client/catalog"
	"github.com/jrsteele09/go-bookshelf-client/internal/config"
	"github.com/jrsteele09/go-bookshelf-client/server/onetimetoken"
	"github.com/jrsteele09/go-bookshelf-client/token/jwt"
	"github.com/jrsteele09/go-bookshelf-client/token/refresh"
	"github.com/jrsteele09/go-bookshelf-client/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// APIPrefix is where the book API is mounted.
const APIPrefix = "/api"

// Repos holds the mock API's storage. OneTimeTokens defaults to in-memory.
type Repos struct {
	Users         users.Repo
	Catalog       catalog.Repo
	RefreshTokens refresh.Repo
	OneTimeTokens onetimetoken.Repo
}

// Server is an in-memory book catalog backend with the same routes and
// payloads as the production API.
type Server struct {
	env    string
	router *mux.Router
	api    *mux.Router
	routes []string
	config config.Config
	repos  Repos

	preflight http.HandlerFunc

	accessTokens  *jwt.Creator
	refreshTokens *refresh.Manager

	oneTimeTokens *oneTimeTokens

	// stateLock serialises read-modify-write of users and book ratings.
	stateLock sync.Mutex

	avatarsLock sync.Mutex
	avatars     map[string][]byte
}

func New(cfg config.Config, repos Repos) (*Server, error) {
	if repos.Users == nil {
		return nil, errors.New("[server.New] Users repo is required")
	}
	if repos.Catalog == nil {
		return nil, errors.New("[server.New] Catalog repo is required")
	}
	if repos.RefreshTokens == nil {
		return nil, errors.New("[server.New] RefreshTokens repo is required")
	}
	if repos.OneTimeTokens == nil {
		repos.OneTimeTokens = onetimetoken.NewInMemoryRepo()
	}

	s := &Server{
		env:           cfg.GetEnv(),
		router:        mux.NewRouter(),
		config:        cfg,
		repos:         repos,
		accessTokens:  jwt.NewCreator(cfg.GetJWTSecret(), cfg.GetTokenIssuer(), cfg.GetAccessTokenExpiry()),
		refreshTokens: refresh.NewManager(repos.RefreshTokens, 32, cfg.GetRefreshTokenExpiry()),
		oneTimeTokens: newOneTimeTokens(repos.OneTimeTokens),
		avatars:       make(map[string][]byte),
	}
	s.api = s.router.PathPrefix(APIPrefix).Subrouter()

	if err := s.InitialiseSystem(); err != nil {
		return nil, errors.Wrap(err, "[server.New] failed to initialise the system")
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

// ServeHTTP answers CORS preflight for any path and routes everything else.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		s.preflight(w, r)
		return
	}
	s.router.ServeHTTP(w, r)
}

// RegisterRouteFunc registers handler for "METHOD /path" under APIPrefix.
func (s *Server) RegisterRouteFunc(pattern string, handler http.HandlerFunc) {
	method, path, ok := strings.Cut(pattern, " ")
	if !ok {
		path = method
		method = ""
	}
	s.routes = append(s.routes, strings.TrimSpace(method+" "+APIPrefix+path))
	route := s.api.HandleFunc(path, handler)
	if method != "" {
		route.Methods(method)
	}
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		method, path, ok := strings.Cut(route, " ")
		if !ok {
			logRoute("", method)
			continue
		}
		logRoute(method, path)
	}
}

func logRoute(method, path string) {
	log.Info().Msg(fmt.Sprintf("[%-19s] %s", colourMethod(method), path))
}

func colourMethod(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if colour, ok := methodColors[method]; ok {
		return colour + paddedMethod + ResetColor
	}
	return Gray + paddedMethod + ResetColor
}
