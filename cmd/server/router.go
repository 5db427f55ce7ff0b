package main

import (
	"net/http"
	"time"

	_ "wotmaps-api/docs"
	"wotmaps-api/internal/handlers"
	"wotmaps-api/internal/metrics"
	"wotmaps-api/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// RouterConfig carries everything the router wires together
type RouterConfig struct {
	Auth   *handlers.AuthHandler
	Maps   *handlers.MapsHandler
	Health *handlers.HealthHandler

	Tokens  middleware.TokenVerifier
	Limiter middleware.RateLimiter
	Metrics prometheus.Gatherer

	AllowedOrigins []string
	AuthRateLimit  int
}

// SetupRouter configures and returns the HTTP router with all routes and middleware
func SetupRouter(rc RouterConfig, logger *zap.Logger) *mux.Router {
	router := mux.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.CORS(rc.AllowedOrigins))
	router.Use(middleware.LoggingMiddleware(logger))

	rateLimited := middleware.RateLimitMiddleware(rc.Limiter, logger, rc.AuthRateLimit, time.Minute)
	authenticated := middleware.Authenticate(rc.Tokens, logger)

	api := router.PathPrefix("/api").Subrouter()
	api.Handle("/authenticate", rateLimited(http.HandlerFunc(rc.Auth.HandleAuthenticate))).Methods("POST", "OPTIONS")
	api.Handle("/played-map", authenticated(handlers.RequireIdentity(rc.Maps.HandlePlayedMap))).Methods("POST", "OPTIONS")
	api.HandleFunc("/current-maps", rc.Maps.HandleCurrentMaps).Methods("GET", "OPTIONS")
	api.HandleFunc("/current-servers", rc.Maps.HandleCurrentServers).Methods("GET", "OPTIONS")

	router.HandleFunc("/health", rc.Health.HandleHealth).Methods("GET")
	router.Handle("/metrics", metrics.Handler(rc.Metrics)).Methods("GET")

	// Swagger documentation
	router.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	return router
}
