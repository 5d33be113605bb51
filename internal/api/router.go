package api

import (
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/tasktrack/tasktrack-api/docs"
	"github.com/tasktrack/tasktrack-api/internal/api/handler"
	"github.com/tasktrack/tasktrack-api/internal/api/middleware"
	"github.com/tasktrack/tasktrack-api/internal/core/domain"
	"github.com/tasktrack/tasktrack-api/internal/core/ports"
	"github.com/tasktrack/tasktrack-api/internal/infrastructure/storage"
)

// bodyLimit leaves headroom above the 10MB attachment limit for the rest of
// the multipart form.
const bodyLimit = "12M"

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	Log       zerolog.Logger
	Verifier  middleware.TokenVerifier
	Auth      ports.AuthService
	Users     ports.UserService
	Tasks     ports.TaskService
	Health    map[string]handler.Pinger
	UploadDir string
	// TrustProxy takes the client address from X-Forwarded-For. Enable it
	// only behind a proxy that sets the header.
	TrustProxy bool
}

// Access declares who may call a route. Public routes skip authentication;
// otherwise the caller must hold one of Roles (any role when Roles is empty).
type Access struct {
	Public bool
	Roles  domain.RoleSet
}

var (
	publicAccess  = Access{Public: true}
	authenticated = Access{}
	userOnly      = Access{Roles: domain.Roles(domain.RoleUser)}
	adminOnly     = Access{Roles: domain.Roles(domain.RoleAdmin)}
	selfService   = Access{Roles: domain.Roles(domain.RoleUser, domain.RoleAdmin)}
)

// Route is one entry of the API route table.
type Route struct {
	Method  string
	Path    string
	Access  Access
	Handler echo.HandlerFunc
}

// Routes returns the API route table. Every route declares its access rule
// here; nothing is protected implicitly.
func Routes(deps Dependencies) []Route {
	authHandler := handler.NewAuthHandler(deps.Auth)
	userHandler := handler.NewUserHandler(deps.Users)
	taskHandler := handler.NewTaskHandler(deps.Tasks)
	healthHandler := handler.NewHealthHandler(deps.Health)

	routes := []Route{
		// --- Auth ---
		{http.MethodPost, "/auth/login", publicAccess, authHandler.Login},

		// --- Users ---
		{http.MethodPost, "/user", publicAccess, userHandler.Register},
		{http.MethodGet, "/user/current", selfService, userHandler.Current},
		{http.MethodPatch, "/user/current", selfService, userHandler.UpdateCurrent},
		{http.MethodPost, "/user/uploadAvatar", selfService, userHandler.UploadAvatar},
		{http.MethodGet, "/user", adminOnly, userHandler.List},
		{http.MethodGet, "/user/findByUsername/:username", adminOnly, userHandler.FindByUsername},
		{http.MethodGet, "/user/:id", adminOnly, userHandler.Get},
		{http.MethodPatch, "/user/update/:id", adminOnly, userHandler.Update},
		{http.MethodPatch, "/user/:id/toggle-role/:role", adminOnly, userHandler.SetRole},
		{http.MethodDelete, "/user/:id", adminOnly, userHandler.Delete},

		// --- Tasks ---
		{http.MethodPost, "/tasks", userOnly, taskHandler.Create},
		{http.MethodGet, "/tasks", authenticated, taskHandler.List},
		{http.MethodGet, "/tasks/:id", userOnly, taskHandler.Get},
		{http.MethodPatch, "/tasks/:id", userOnly, taskHandler.Update},
		{http.MethodDelete, "/tasks/:id", userOnly, taskHandler.Delete},

		// --- Health probes ---
		{http.MethodGet, "/health", publicAccess, healthHandler.Liveness},        // liveness  – is the process alive?
		{http.MethodGet, "/health/ready", publicAccess, healthHandler.Readiness}, // readiness – are dependencies up?
	}

	// Uploaded avatars and attachments are readable by any authenticated caller.
	if deps.UploadDir != "" {
		routes = append(routes, Route{
			Method:  http.MethodGet,
			Path:    storage.PublicPrefix + "/*",
			Access:  authenticated,
			Handler: echo.StaticDirectoryHandler(os.DirFS(deps.UploadDir), false),
		})
	}
	return routes
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)
	e.IPExtractor = echo.ExtractIPDirect()
	if deps.TrustProxy {
		e.IPExtractor = echo.ExtractIPFromXFFHeader()
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Log))
	e.Use(middleware.HTTPMetrics())
	e.Use(echomiddleware.BodyLimit(bodyLimit))

	authenticate := middleware.Authenticate(deps.Verifier, deps.Log)
	for _, r := range Routes(deps) {
		var chain []echo.MiddlewareFunc
		if !r.Access.Public {
			chain = append(chain, authenticate, middleware.Authorize(r.Access.Roles))
		}
		e.Add(r.Method, r.Path, r.Handler, chain...)
	}

	// --- Operational endpoints ---
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
