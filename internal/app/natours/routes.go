package natours

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/natours/internal/config"
	"github.com/magabrotheeeer/natours/internal/http/cookie"
	"github.com/magabrotheeeer/natours/internal/http/handlers/auth/forgotpassword"
	"github.com/magabrotheeeer/natours/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/natours/internal/http/handlers/auth/resetpassword"
	"github.com/magabrotheeeer/natours/internal/http/handlers/auth/signup"
	"github.com/magabrotheeeer/natours/internal/http/handlers/auth/updatepassword"
	"github.com/magabrotheeeer/natours/internal/http/handlers/health"
	tourcreate "github.com/magabrotheeeer/natours/internal/http/handlers/tours/create"
	tourget "github.com/magabrotheeeer/natours/internal/http/handlers/tours/get"
	tourlist "github.com/magabrotheeeer/natours/internal/http/handlers/tours/list"
	"github.com/magabrotheeeer/natours/internal/http/handlers/tours/monthlyplan"
	tourremove "github.com/magabrotheeeer/natours/internal/http/handlers/tours/remove"
	"github.com/magabrotheeeer/natours/internal/http/handlers/tours/stats"
	tourupdate "github.com/magabrotheeeer/natours/internal/http/handlers/tours/update"
	usercreate "github.com/magabrotheeeer/natours/internal/http/handlers/users/create"
	"github.com/magabrotheeeer/natours/internal/http/handlers/users/deleteme"
	userget "github.com/magabrotheeeer/natours/internal/http/handlers/users/get"
	userlist "github.com/magabrotheeeer/natours/internal/http/handlers/users/list"
	"github.com/magabrotheeeer/natours/internal/http/handlers/users/me"
	userremove "github.com/magabrotheeeer/natours/internal/http/handlers/users/remove"
	"github.com/magabrotheeeer/natours/internal/http/handlers/users/updateme"
	userupdate "github.com/magabrotheeeer/natours/internal/http/handlers/users/update"
	"github.com/magabrotheeeer/natours/internal/http/middlewarectx"
	"github.com/magabrotheeeer/natours/internal/http/response"
	"github.com/magabrotheeeer/natours/internal/metrics"
	"github.com/magabrotheeeer/natours/internal/models"
	authservice "github.com/magabrotheeeer/natours/internal/services/auth"
	tourservice "github.com/magabrotheeeer/natours/internal/services/tours"
	userservice "github.com/magabrotheeeer/natours/internal/services/users"
)

// PollutionWhitelist параметры, которые можно повторять в строке запроса.
var PollutionWhitelist = []string{"duration", "ratingsAverage", "ratingsQuantity", "maxGroupSize", "difficulty", "price"}

// Deps зависимости маршрутов.
type Deps struct {
	Auth    *authservice.Service
	Users   *userservice.Service
	Tours   *tourservice.Service
	Limiter middlewarectx.Limiter
	Checks  map[string]health.Pinger
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, cfg *config.Config, logger *slog.Logger, deps Deps) {
	errs := response.NewErrors(logger, !cfg.IsProduction())
	cookies := cookie.NewIssuer(cfg.JWT.CookieTTL, cfg.IsProduction())
	protect := middlewarectx.Protect(deps.Auth, errs)
	restrictTo := func(roles ...models.Role) func(http.Handler) http.Handler {
		return middlewarectx.RestrictTo(errs, roles...)
	}

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middlewarectx.Recoverer(errs, logger),
		metrics.Middleware,
	)
	if !cfg.IsProduction() {
		r.Use(middleware.Logger)
	}
	r.Use(
		middlewarectx.SecurityHeaders,
		cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORS.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
			ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
			AllowCredentials: false,
			MaxAge:           300,
		}),
	)

	r.NotFound(middlewarectx.NotFound(errs))
	r.MethodNotAllowed(middlewarectx.MethodNotAllowed(errs))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(
			middlewarectx.RateLimit(deps.Limiter, errs, logger),
			middlewarectx.BodyLimit(cfg.HTTPServer.BodyLimit, errs),
			middlewarectx.Sanitize(errs),
			middlewarectx.ParameterPollution(PollutionWhitelist...),
		)

		r.Route("/tours", func(r chi.Router) {
			list := tourlist.New(logger, deps.Tours, errs)
			r.With(tourlist.TopFiveCheap).Get("/top-five-cheap", list.ServeHTTP)
			r.Get("/tour-stats", stats.New(logger, deps.Tours, errs).ServeHTTP)
			r.Get("/{id}", tourget.New(logger, deps.Tours, errs).ServeHTTP)

			r.Group(func(r chi.Router) {
				r.Use(protect)
				r.Get("/", list.ServeHTTP)
				r.With(restrictTo(models.RoleAdmin, models.RoleLeadGuide, models.RoleGuide)).
					Get("/monthly-plan/{year}", monthlyplan.New(logger, deps.Tours, errs).ServeHTTP)

				r.Group(func(r chi.Router) {
					r.Use(restrictTo(models.RoleAdmin, models.RoleLeadGuide))
					r.Post("/", tourcreate.New(logger, deps.Tours, errs).ServeHTTP)
					r.Patch("/{id}", tourupdate.New(logger, deps.Tours, errs).ServeHTTP)
					r.Delete("/{id}", tourremove.New(logger, deps.Tours, errs).ServeHTTP)
				})
			})
		})

		r.Route("/users", func(r chi.Router) {
			// Открытые конечные точки
			r.Post("/signup", signup.New(logger, deps.Auth, cookies, errs).ServeHTTP)
			r.Post("/login", login.New(logger, deps.Auth, cookies, errs).ServeHTTP)
			r.Post("/forgotPassword", forgotpassword.New(logger, deps.Auth, cfg.HTTPServer.PublicURL, errs).ServeHTTP)
			r.Patch("/resetPassword/{token}", resetpassword.New(logger, deps.Auth, cookies, errs).ServeHTTP)
			r.Post("/", usercreate.New(errs).ServeHTTP)

			// Группа с JWT аутентификацией
			r.Group(func(r chi.Router) {
				r.Use(protect)
				r.Patch("/updateMyPassword", updatepassword.New(logger, deps.Auth, cookies, errs).ServeHTTP)
				r.Get("/me", me.New(logger, deps.Users, errs).ServeHTTP)
				r.Patch("/updateMe", updateme.New(logger, deps.Users, errs).ServeHTTP)
				r.Delete("/deleteMe", deleteme.New(logger, deps.Users, errs).ServeHTTP)

				r.Group(func(r chi.Router) {
					r.Use(restrictTo(models.RoleAdmin))
					r.Get("/", userlist.New(logger, deps.Users, errs).ServeHTTP)
					r.Get("/{id}", userget.New(logger, deps.Users, errs).ServeHTTP)
					r.Patch("/{id}", userupdate.New(logger, deps.Users, errs).ServeHTTP)
					r.Delete("/{id}", userremove.New(logger, deps.Users, errs).ServeHTTP)
				})
			})
		})
	})

	r.Get("/health", health.New(logger, deps.Checks).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
