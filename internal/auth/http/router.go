package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/actionprice/auth/internal/auth/metrics"
	"github.com/actionprice/auth/internal/auth/pipeline"
	"github.com/actionprice/auth/internal/auth/policy"
	"github.com/actionprice/auth/internal/auth/service"
	"github.com/actionprice/auth/internal/auth/store"
	"github.com/actionprice/auth/pkg/authsdk"
	"github.com/actionprice/auth/pkg/httpx"
	"github.com/actionprice/auth/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/actionprice/auth/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux     *http.ServeMux
	handler http.Handler

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	registry     *prometheus.Registry
	metrics      *metrics.Metrics
	errors       *pipeline.ErrorTranslator

	store       store.Store
	Credentials store.CredentialStore // Optional: set when refresh records live outside the database
	Sessions    *service.SessionService
	UserService *service.UserService
	Policy      *policy.Policy
}

func NewRouter(
	buildVersion string,
	st store.Store,
	registry *prometheus.Registry,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Router {
	return &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		registry:     registry,
		metrics:      m,
		errors:       &pipeline.ErrorTranslator{Metrics: m},
		store:        st,
		Policy:       policy.Default(),
	}
}

// ApplyRoutes registers every route and builds the global middleware chain.
// Sessions and UserService must be set first.
func (r *Router) ApplyRoutes() {
	onLimited := httpx.WithOnLimited(func(req *http.Request) {
		r.metrics.Limited(req.URL.Path)
	})

	p := pipeline.New(
		&pipeline.LoginStage{Sessions: r.Sessions, Errors: r.errors},
		&pipeline.AccessCheckStage{Access: r.Sessions.Access, Users: r.UserService},
		&pipeline.RefreshStage{Sessions: r.Sessions, Errors: r.errors},
	)

	// Login and refresh are answered inside the pipeline, so their limits
	// have to run before it.
	middlewares := []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.ForPath(http.MethodPost, authsdk.PathLogin,
			httpx.RateLimitByIPAndBodyField(httpx.StrictLimit, "username", onLimited)),
		httpx.ForPath(http.MethodPost, authsdk.PathRefresh,
			httpx.RateLimitByIP(httpx.ModerateLimit, onLimited)),
		p.Middleware(),
		r.Policy.Middleware(r.errors),
	}

	r.registerUsers(onLimited)
	r.registerSession(onLimited)
	r.registerSystem(onLimited)

	r.Mux.Handle("GET "+authsdk.PathSwagger, httpSwagger.Handler())

	r.handler = httpx.Chain(r.Mux, middlewares...)
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			ActionPrice Authentication Service API
//	@version		0.1.0
//	@description	Issues short-lived access tokens backed by a rotating refresh token.
//	@description
//	@description				Access and refresh tokens are HS256 JWTs. Each user holds at most one refresh token at a time.
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

func (r *Router) registerUsers(onLimited httpx.RateLimitOption) {
	register := &RegisterHandler{UserService: r.UserService, Errors: r.errors}
	check := &CheckUsernameHandler{UserService: r.UserService, Errors: r.errors}

	// POST /register - strict rate limit by IP (account creation)
	r.Mux.Handle("POST "+authsdk.PathRegister,
		httpx.Chain(register,
			httpx.RateLimitByIP(httpx.StrictLimit, onLimited),
		),
	)
	r.Mux.Handle("POST "+authsdk.PathCheckUsername,
		httpx.Chain(check,
			httpx.RateLimitByIP(httpx.ModerateLimit, onLimited),
		),
	)
}

func (r *Router) registerSession(onLimited httpx.RateLimitOption) {
	logout := &LogoutHandler{Sessions: r.Sessions, Errors: r.errors}
	reissue := &ReissueHandler{Sessions: r.Sessions, Errors: r.errors}

	r.Mux.Handle("POST "+authsdk.PathLogout,
		httpx.Chain(logout,
			httpx.RateLimitByUser(httpx.ModerateLimit, onLimited),
		),
	)
	r.Mux.Handle("POST "+authsdk.PathReissue,
		httpx.Chain(reissue,
			httpx.RateLimitByUser(httpx.ModerateLimit, onLimited),
		),
	)
	r.Mux.Handle("GET "+authsdk.PathMe,
		httpx.Chain(http.HandlerFunc(MeHandler),
			httpx.RateLimitByUser(httpx.LenientLimit, onLimited),
		),
	)
}

func (r *Router) registerSystem(onLimited httpx.RateLimitOption) {
	var credentials Pinger
	if r.Credentials != nil {
		credentials = r.Credentials
	}

	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET "+authsdk.PathLivez,
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit, onLimited),
		),
	)
	r.Mux.Handle("GET "+authsdk.PathReadyz,
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, credentials),
			httpx.RateLimitByIP(httpx.LenientLimit, onLimited),
		),
	)
	r.Mux.Handle("GET "+authsdk.PathMetrics,
		promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry}),
	)
}
