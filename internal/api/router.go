package api

import (
	"net/http"

	"github.com/Rouzbeh99/Tweeter-like-application/internal/api/handlers"
	"github.com/Rouzbeh99/Tweeter-like-application/internal/auth"
	"github.com/Rouzbeh99/Tweeter-like-application/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(userService services.UserServiceProvider, tweetService services.TweetServiceProvider, issuer *auth.TokenIssuer, corsOrigin string) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration for development
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{corsOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService, issuer)
	tweetHandler := handlers.NewTweetHandler(tweetService)

	r.Route("/user", func(r chi.Router) {
		r.Post("/", userHandler.Create)
		r.Get("/", userHandler.Search)
		r.Post("/users", userHandler.GetUsers)
		r.Put("/follow", userHandler.Follow)
		r.Put("/unFollow", userHandler.UnFollow)
		r.Get("/authenticate", userHandler.Authenticate)
		r.Put("/{username}", userHandler.Update)
		r.Delete("/{username}", userHandler.Delete)
	})

	r.Route("/tweet", func(r chi.Router) {
		r.Post("/", tweetHandler.Create)
		r.Get("/", tweetHandler.Search)
		r.Get("/like", tweetHandler.Like)
		r.Get("/unlike", tweetHandler.UnLike)
		r.Get("/retweet", tweetHandler.Retweet)
		r.Get("/unretweet", tweetHandler.UnRetweet)
		r.Get("/{uuid}", tweetHandler.Get)
		r.Delete("/{uuid}", tweetHandler.Delete)
	})

	// Operational surface
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	return r
}
