package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-storefront/api"
	"github.com/jrsteele09/go-storefront/internal/config"
	"github.com/jrsteele09/go-storefront/kv"
	"github.com/jrsteele09/go-storefront/tenants"
	"github.com/jrsteele09/go-storefront/tenants/tenantcache"
	"github.com/rs/zerolog/log"
)

// Server is the local gateway in front of the storefront stores. Every
// browser profile gets its own namespace of the shared local store.
type Server struct {
	env     string // Environment (e.g., "DEV", "PROD")
	mux     *http.ServeMux
	routes  []string
	config  config.Config
	store   kv.Store
	client  *api.Client
	tenants tenants.Repo
	nowFunc func() time.Time
}

type Option func(*Server)

// WithTenantRepo replaces the cached store info lookup.
func WithTenantRepo(repo tenants.Repo) Option {
	return func(s *Server) {
		s.tenants = repo
	}
}

// WithNowFunc sets the clock used by the session stores (primarily for testing)
func WithNowFunc(now func() time.Time) Option {
	return func(s *Server) {
		s.nowFunc = now
	}
}

func New(c config.Config, store kv.Store, client *api.Client, options ...Option) *Server {
	s := &Server{
		env:    c.GetEnv(),
		mux:    http.NewServeMux(),
		config: c,
		store:  store,
		client: client,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.tenants == nil {
		s.tenants = tenantcache.New(client.Tenants())
	}
	if s.nowFunc == nil {
		s.nowFunc = time.Now
	}

	s.initRoutes()
	s.logRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		method, path, found := strings.Cut(route, " ")
		if !found {
			method, path = "", route
		}
		log.Debug().Msg(coloredMethod(method) + " " + path)
	}
}

func coloredMethod(method string) string {
	padded := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		return "[" + color + padded + ResetColor + "]"
	}
	return "[" + Gray + padded + ResetColor + "]"
}
