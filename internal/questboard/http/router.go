package http

import (
	"log/slog"
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/aussiebroadwan/questboard/api/questboard" // Swagger docs
	"github.com/aussiebroadwan/questboard/internal/questboard/domain"
	"github.com/aussiebroadwan/questboard/internal/questboard/service"
	"github.com/aussiebroadwan/questboard/internal/questboard/store"
	"github.com/aussiebroadwan/questboard/pkg/httpx"
	"github.com/aussiebroadwan/questboard/pkg/jwtx"
	"github.com/aussiebroadwan/questboard/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware
	handler     http.Handler

	keys         *jwtx.KeySet
	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	errors       errorWriter

	store               store.Store
	AuthService         *service.AuthService
	UserService         *service.UserService
	OrganizationService *service.OrganizationService
	QuestService        *service.QuestService
}

// NewRouter builds a router. With legacyErrors set, authentication
// failures are answered with HTTP 200 and {"statusCode": 401}.
func NewRouter(
	keys *jwtx.KeySet,
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
	legacyErrors bool,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		errors:       errorWriter{legacy: legacyErrors},
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerOrganizations()
	r.registerQuests()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())

	r.handler = httpx.Chain(r.Mux, r.middlewares...)
}

// ServeHTTP runs the request through the global middleware chain. Routes
// must have been applied first.
//
//	@title			Questboard API
//	@version		0.1.0
//	@description	Volunteering quests run by organizations. Access tokens are EdDSA-signed JWTs; refresh tokens are opaque and rotate on every use.
//
//	@contact.name	AussieBroadWAN Team
//	@contact.url	https://github.com/aussiebroadwan/questboard
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8080
//	@BasePath		/
//
//	@schemes		http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

// authed wraps h with bearer authentication, optional role checks and a
// per-user rate limit.
func (r *Router) authed(h http.Handler, limit httpx.RateLimitConfig, roles ...string) http.Handler {
	middlewares := []httpx.Middleware{httpx.AuthnMiddleware(r.verifier, r.errors.legacy)}
	if len(roles) > 0 {
		middlewares = append(middlewares, httpx.RequireRole(roles...))
	}
	middlewares = append(middlewares, httpx.RateLimitByUser(limit))
	return httpx.Chain(h, middlewares...)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService, errors: r.errors}

	// Credential endpoints are public; limit by IP to slow down guessing.
	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister), httpx.RateLimitByIP(httpx.StrictLimit)))
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin), httpx.RateLimitByIP(httpx.StrictLimit)))
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh), httpx.RateLimitByIP(httpx.StrictLimit)))

	r.Mux.Handle("POST /v1/auth/logout", r.authed(http.HandlerFunc(h.HandleLogout), httpx.ModerateLimit))
}

func (r *Router) registerUsers() {
	h := &MeHandler{UserService: r.UserService, errors: r.errors}
	r.Mux.Handle("GET /v1/users/me", r.authed(h, httpx.LenientLimit))
}

func (r *Router) registerOrganizations() {
	h := &OrganizationsHandler{OrganizationService: r.OrganizationService, errors: r.errors}

	r.Mux.Handle("GET /v1/organizations", r.authed(http.HandlerFunc(h.HandleList), httpx.LenientLimit))
	r.Mux.Handle("GET /v1/organizations/{id}", r.authed(http.HandlerFunc(h.HandleGet), httpx.LenientLimit))
	r.Mux.Handle("POST /v1/organizations",
		r.authed(http.HandlerFunc(h.HandleCreate), httpx.ModerateLimit, domain.RoleOrganizer))
}

func (r *Router) registerQuests() {
	h := &QuestsHandler{QuestService: r.QuestService, errors: r.errors}

	r.Mux.Handle("GET /v1/quests", r.authed(http.HandlerFunc(h.HandleList), httpx.LenientLimit))
	r.Mux.Handle("GET /v1/quests/{id}", r.authed(http.HandlerFunc(h.HandleGet), httpx.LenientLimit))
	r.Mux.Handle("POST /v1/quests",
		r.authed(http.HandlerFunc(h.HandleCreate), httpx.ModerateLimit, domain.RoleOrganizer))
	r.Mux.Handle("POST /v1/quests/{id}/steps/{stepID}/contributions",
		r.authed(http.HandlerFunc(h.HandleContribute), httpx.ModerateLimit))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion), httpx.RateLimitByIP(httpx.LenientLimit)))
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys), httpx.RateLimitByIP(httpx.LenientLimit)))
}
